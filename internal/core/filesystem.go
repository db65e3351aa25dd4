// Package core holds the small abstractions shared by the discovery packages:
// the filesystem seam used for testing and process-wide defaults.
package core

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Discovery defaults.
const (
	// DefaultMaxDepth is the traversal depth used when none is configured.
	DefaultMaxDepth = 5

	// MaxMarkerFileSize bounds how much of a marker file is read when
	// looking for workspace declarations.
	MaxMarkerFileSize = 1 << 20
)

// FileSystem abstracts the read-only filesystem operations used during discovery.
type FileSystem interface {
	// ReadDir lists the immediate entries of a directory, sorted by name.
	ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error)

	// ReadFile reads a whole file.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Stat follows symlinks.
	Stat(ctx context.Context, path string) (fs.FileInfo, error)

	// Lstat does not follow symlinks.
	Lstat(ctx context.Context, path string) (fs.FileInfo, error)

	// EvalSymlinks returns path with every symlink component resolved.
	EvalSymlinks(ctx context.Context, path string) (string, error)
}

// OSFileSystem implements FileSystem on top of the os package.
type OSFileSystem struct{}

// NewOSFileSystem returns the production FileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Verify OSFileSystem implements FileSystem.
var _ FileSystem = (*OSFileSystem)(nil)

func (OSFileSystem) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadDir(path)
}

func (OSFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// The file may grow between open and read, so bound the read itself.
	data, err := io.ReadAll(io.LimitReader(f, MaxMarkerFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxMarkerFileSize {
		size := int64(len(data))
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}
		return nil, &FileTooLargeError{Path: path, Size: size}
	}
	return data, nil
}

func (OSFileSystem) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(path)
}

func (OSFileSystem) Lstat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Lstat(path)
}

func (OSFileSystem) EvalSymlinks(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(path)
}

// FileTooLargeError is returned when a marker file exceeds MaxMarkerFileSize.
type FileTooLargeError struct {
	Path string
	Size int64
}

func (e *FileTooLargeError) Error() string {
	return "file " + e.Path + " is too large to inspect"
}
