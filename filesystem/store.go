// Package filesystem provides the os.Root backed FileSystem for serve.
// All operations are confined to the root directory by the operating system:
// a path or symlink that leaves the root fails instead of being followed.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/GyrosOfWar/serve"
)

// Store provides read-only file system access below a root directory.
type Store struct {
	root *os.Root
}

// NewStore creates a new Store on the given root.
// The root provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// Stat returns file information for path, following symlinks that stay inside
// the root.
func (s *Store) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.root.Stat(clean(path))
	if err != nil {
		return nil, mapError("stat", path, err)
	}
	return info, nil
}

// ReadDir lists the entries of the directory at path.
func (s *Store) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.root.FS(), clean(path))
	if err != nil {
		return nil, mapError("read dir", path, err)
	}
	return entries, nil
}

// Open opens a file for reading. Returns serve.ErrNotFound if the file does not exist.
func (s *Store) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(clean(path))
	if err != nil {
		return nil, mapError("open", path, err)
	}

	return &ctxFile{ctx: ctx, File: f}, nil
}

// ctxFile stops reads once the request context is done.
type ctxFile struct {
	ctx context.Context
	*os.File
}

func (f *ctxFile) Read(p []byte) (n int, err error) {
	if err := f.ctx.Err(); err != nil {
		return 0, err
	}
	return f.File.Read(p)
}

func clean(p string) string {
	p = path.Clean(strings.TrimPrefix(p, "/"))
	if p == "" || p == "/" {
		return "."
	}
	return p
}

func mapError(op, path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%s %s: %w", op, path, serve.ErrNotFound)
	case isEscape(err):
		return fmt.Errorf("%s %s: %w", op, path, serve.ErrPathEscape)
	default:
		return fmt.Errorf("%w: %s %s: %w", serve.ErrIO, op, path, err)
	}
}

// isEscape reports whether err is os.Root refusing a path or symlink that
// resolves outside the root. The os package does not export a sentinel for it.
func isEscape(err error) bool {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return err != nil && strings.Contains(err.Error(), "path escapes from parent")
}
