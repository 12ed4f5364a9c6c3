package errors

import "errors"

// Analysis errors
var (
	// ErrInvalidArchive means the package bytes (after any CRX header strip)
	// cannot be opened as a ZIP archive.
	ErrInvalidArchive = errors.New("package is not a valid archive")
	// ErrManifestNotFound means the archive carries no manifest.json entry.
	ErrManifestNotFound = errors.New("manifest.json not found in package")
	// ErrManifestParse means manifest.json exists but is not valid JSON.
	ErrManifestParse = errors.New("manifest.json is not valid JSON")
	// ErrEntryRead means an individual archive entry could not be decoded.
	ErrEntryRead = errors.New("archive entry could not be read")
	// ErrEntryNotFound means a requested archive entry does not exist.
	ErrEntryNotFound = errors.New("archive entry not found")
	// ErrUnsafeEntryPath means an entry path tries to escape the archive root.
	ErrUnsafeEntryPath = errors.New("archive entry path is not safe")
)

// Store errors
var (
	ErrUnknownStore     = errors.New("unknown extension store")
	ErrEmptyExtensionID = errors.New("extension ID cannot be empty")
	ErrStoreFetch       = errors.New("store request failed")
)
