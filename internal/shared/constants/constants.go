package constants

import "io/fs"

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// MaxUploadBytes caps the package size accepted over the HTTP API.
	MaxUploadBytes = 64 << 20
	// ScanConcurrency bounds the worker pool used when scanning archive entries.
	ScanConcurrency = 8
)
