package fsx

import (
	"context"
	"io"
	"path"
)

// FileSystem abstracts blob storage for candidate documents.
type FileSystem interface {
	// ReadFile reads the full contents of a stored file.
	ReadFile(ctx context.Context, filePath string) ([]byte, error)

	// WriteFile stores data at the given path, overwriting any existing file.
	WriteFile(ctx context.Context, filePath string, data []byte) error

	// WriteFileStream stores data from a reader at the given path.
	WriteFileStream(ctx context.Context, filePath string, r io.Reader) error

	// DeleteFile removes a stored file.
	DeleteFile(ctx context.Context, filePath string) error

	// Join builds a storage path from segments.
	Join(segments ...string) string
}

// JoinPath is the default Join used by implementations.
func JoinPath(segments ...string) string {
	return path.Join(segments...)
}
