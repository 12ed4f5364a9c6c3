package crx

import "encoding/binary"

// crxMagic is "Cr24" read as a little-endian uint32.
const crxMagic = 0x34327243

// Unwrap strips the CRX signature header from a packaged extension and
// returns the embedded ZIP payload. Buffers that do not start with the
// CRX magic are returned unchanged, as are buffers whose header declares
// an offset outside the buffer. No signature verification happens here;
// a corrupt header surfaces later as an archive parse failure.
func Unwrap(raw []byte) []byte {
	if len(raw) < 12 || binary.LittleEndian.Uint32(raw[0:4]) != crxMagic {
		return raw
	}

	offset := 0
	switch binary.LittleEndian.Uint32(raw[4:8]) {
	case 2:
		// CRX2: public key length and signature length follow the version.
		if len(raw) < 16 {
			return raw
		}
		keyLen := binary.LittleEndian.Uint32(raw[8:12])
		sigLen := binary.LittleEndian.Uint32(raw[12:16])
		offset = 16 + int(keyLen) + int(sigLen)
	case 3:
		// CRX3: a single protobuf header length follows the version.
		headerLen := binary.LittleEndian.Uint32(raw[8:12])
		offset = 12 + int(headerLen)
	}

	if offset > 0 && offset < len(raw) {
		return raw[offset:]
	}
	return raw
}
