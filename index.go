package serve

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Indexer builds directory listings for a root directory.
type Indexer struct {
	root string
	fs   FileSystem
	now  func() time.Time
}

// NewIndexer creates an Indexer listing directories below root through fsys.
func NewIndexer(root string, fsys FileSystem) *Indexer {
	return &Indexer{root: root, fs: fsys, now: time.Now}
}

// List enumerates the immediate children of target and assembles the listing
// model. urlPath is the request path the client used; isRoot suppresses the
// parent link.
//
// Dotfiles are skipped. Directories sort before files, then entries sort by
// name. A metadata error on any entry fails the whole listing with ErrIO, no
// partial listing is returned.
func (ix *Indexer) List(ctx context.Context, target Target, urlPath string, isRoot bool) (Listing, error) {
	if err := ctx.Err(); err != nil {
		return Listing{}, fmt.Errorf("list %s: %w", target.Rel, err)
	}

	slog.Debug("listing directory", "path", target.Path)

	dirEntries, err := ix.fs.ReadDir(ctx, target.Rel)
	if err != nil {
		return Listing{}, fmt.Errorf("list %s: %w", target.Rel, err)
	}

	now := ix.now()
	entries := make([]DirEntry, 0, len(dirEntries))

	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return Listing{}, fmt.Errorf("list %s: %w", target.Rel, err)
		}

		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		entry, err := ix.entry(ctx, target, de, now)
		if err != nil {
			return Listing{}, fmt.Errorf("list %s: %w", target.Rel, err)
		}
		entries = append(entries, entry)
	}

	slices.SortStableFunc(entries, compareEntries)

	listing := Listing{
		Entries:     entries,
		BaseDir:     urlPathFor(ix.root, target.Path),
		Breadcrumbs: Breadcrumbs(urlPath),
	}

	if !isRoot {
		parent := ParentPath(urlPath)
		listing.Parent = &parent
	}

	return listing, nil
}

func (ix *Indexer) entry(ctx context.Context, target Target, de fs.DirEntry, now time.Time) (DirEntry, error) {
	name := de.Name()
	rel := path.Join(target.Rel, name)

	info, err := de.Info()
	if err != nil {
		return DirEntry{}, fmt.Errorf("%w: stat %s: %w", ErrIO, rel, err)
	}

	isSymlink := info.Mode()&fs.ModeSymlink != 0
	if isSymlink {
		resolved, statErr := ix.fs.Stat(ctx, rel)
		switch {
		case statErr == nil:
			info = resolved
		case errors.Is(statErr, context.Canceled), errors.Is(statErr, context.DeadlineExceeded):
			return DirEntry{}, statErr
		default:
			// Dangling, escaping or looping links keep their own metadata.
			slog.Debug("unresolvable symlink in listing", "path", rel, "err", statErr)
		}
	}

	entry := DirEntry{
		Name:      name,
		Path:      urlPathFor(ix.root, filepath.Join(target.Path, name)),
		IsDir:     info.IsDir(),
		IsSymlink: isSymlink,
		Size:      info.Size(),
		SizeText:  FormatSize(uint64(max(info.Size(), 0))),
	}

	if mt := info.ModTime(); !mt.IsZero() {
		age := FormatAge(now.Sub(mt))
		entry.ModTime = &mt
		entry.LastModified = &age
	}

	return entry, nil
}

func compareEntries(a, b DirEntry) int {
	if a.IsDir != b.IsDir {
		if a.IsDir {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.Name, b.Name)
}

// ParentPath returns the URL-space parent of urlPath, always starting with "/".
func ParentPath(urlPath string) string {
	clean := path.Clean("/" + strings.Trim(urlPath, "/"))
	return path.Dir(clean)
}

// Breadcrumbs splits urlPath into its normal segments, each paired with the URL
// of that segment. The path is cleaned first, so "a/../b" yields only "b".
func Breadcrumbs(urlPath string) []Breadcrumb {
	crumbs := []Breadcrumb{}
	current := ""

	for _, seg := range strings.Split(path.Clean("/"+urlPath), "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		current += "/" + seg
		crumbs = append(crumbs, Breadcrumb{Name: seg, Path: current})
	}

	return crumbs
}
