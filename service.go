package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"
)

// FileSystem defines the read-only filesystem operations the service needs.
// Paths are slash-separated and relative to the root directory ("." is the root).
//
// All methods accept a context for cancellation. Implementations should return
// ErrNotFound for missing paths, ErrPathEscape for paths that leave the root and
// wrap everything else in ErrIO.
type FileSystem interface {
	// Stat returns file information, following symlinks.
	//
	// Returns:
	//   - fs.FileInfo: information about the target
	//   - error: ErrNotFound if the path does not exist, or other storage errors
	Stat(ctx context.Context, path string) (fs.FileInfo, error)

	// ReadDir returns the entries of a directory. Entry Info reports on the entry
	// itself, not on a symlink's target.
	//
	// Returns:
	//   - []fs.DirEntry: the directory entries in no guaranteed order
	//   - error: ErrNotFound if the directory does not exist, or other storage errors
	ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error)

	// Open opens a file for reading.
	//
	// The caller is responsible for closing the returned ReadSeekCloser.
	// Implementations should return a ReadSeekCloser to support range reads.
	Open(ctx context.Context, path string) (io.ReadSeekCloser, error)
}

// Service resolves request paths below a root directory into files to stream
// or directory listings to render. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	root    string
	fs      FileSystem
	indexer *Indexer
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used to compute entry ages in listings.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.indexer.now = now
	}
}

// NewService creates a Service for root, which must be an absolute directory path.
func NewService(root string, fsys FileSystem, opts ...Option) (*Service, error) {
	if root == "" || !filepath.IsAbs(root) {
		return nil, fmt.Errorf("new service: root must be an absolute path: %q", root)
	}
	if fsys == nil {
		return nil, errors.New("new service: filesystem cannot be nil")
	}

	root = filepath.Clean(root)
	s := &Service{
		root:    root,
		fs:      fsys,
		indexer: NewIndexer(root, fsys),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Root returns the absolute root directory.
func (s *Service) Root() string {
	return s.root
}

// Open resolves urlPath and returns either a file resource or a directory
// listing.
//
// Error types returned:
//   - ErrPathEscape: urlPath resolves outside the root (no filesystem access made)
//   - ErrNotFound: the target does not exist or is not a file or directory
//   - ErrIO: a filesystem operation failed
//   - context.Canceled or context.DeadlineExceeded: ctx is done
func (s *Service) Open(ctx context.Context, urlPath string) (Resource, error) {
	if err := ctx.Err(); err != nil {
		return Resource{}, fmt.Errorf("open: %w", err)
	}

	target, err := Resolve(s.root, urlPath)
	if err != nil {
		return Resource{}, fmt.Errorf("open: %w", err)
	}

	info, err := s.fs.Stat(ctx, target.Rel)
	if err != nil {
		return Resource{}, fmt.Errorf("open %s: %w", target.Rel, err)
	}

	switch {
	case info.Mode().IsRegular():
		slog.Debug("serving file", "path", target.Path)
		rel := target.Rel
		open := func() (io.ReadSeekCloser, error) {
			return s.fs.Open(ctx, rel)
		}
		return Resource{
			Kind: KindFile,
			File: NewFileResource(info.Name(), info.Size(), info.ModTime(), open),
		}, nil

	case info.IsDir():
		listing, err := s.indexer.List(ctx, target, urlPath, target.IsRoot)
		if err != nil {
			return Resource{}, fmt.Errorf("open: %w", err)
		}
		return Resource{Kind: KindDirectory, Listing: &listing}, nil

	default:
		return Resource{}, fmt.Errorf("open %s: unsupported file mode %s: %w", target.Rel, info.Mode().Type(), ErrNotFound)
	}
}
