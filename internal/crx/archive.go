package crx

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"strings"

	secerrors "github.com/crxaudit/crxaudit-cli/internal/shared/errors"
)

// Archive is the read-only view of an extension package the analysis
// pipeline works against.
type Archive interface {
	// Entries returns all entry paths in archive order.
	Entries() []string

	// Has reports whether the archive contains the given entry path.
	Has(path string) bool

	// ReadText returns an entry's content decoded as UTF-8 text.
	ReadText(path string) (string, error)

	// ReadBase64 returns an entry's content as standard base64, used for
	// embedding icons as data URIs.
	ReadBase64(path string) (string, error)
}

// OpenArchive opens raw (already CRX-unwrapped) bytes as a ZIP archive.
func OpenArchive(raw []byte) (Archive, error) {
	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secerrors.ErrInvalidArchive, err)
	}

	ar := &zipArchive{files: make(map[string]*zip.File, len(reader.File))}
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, dup := ar.files[f.Name]; dup {
			continue
		}
		ar.files[f.Name] = f
		ar.names = append(ar.names, f.Name)
	}
	return ar, nil
}

type zipArchive struct {
	names []string
	files map[string]*zip.File
}

func (a *zipArchive) Entries() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

func (a *zipArchive) Has(path string) bool {
	_, ok := a.files[path]
	return ok
}

func (a *zipArchive) ReadText(path string) (string, error) {
	data, err := a.read(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *zipArchive) ReadBase64(path string) (string, error) {
	data, err := a.read(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (a *zipArchive) read(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", secerrors.ErrEntryNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", secerrors.ErrEntryRead, name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", secerrors.ErrEntryRead, name, err)
	}
	return data, nil
}

// SafeEntryPath reports whether an archive entry path stays inside the
// archive root. Paths referenced from manifest fields (icons, locales)
// must pass this before being resolved.
func SafeEntryPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return false
	}
	clean := path.Clean(p)
	return clean != ".." && !strings.HasPrefix(clean, "../")
}

// NormalizeEntryPath strips the leading "./" or "/" forms manifests
// commonly use so the path matches archive entry names.
func NormalizeEntryPath(p string) string {
	p = strings.TrimPrefix(p, "./")
	return strings.TrimPrefix(p, "/")
}
