package serve

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Resolve maps a URL-space request path onto the filesystem below root.
//
// root must be an absolute, clean path. The check is purely textual: the joined
// and cleaned path must equal root or lie below it. Symlinks are not evaluated and
// no filesystem call is made, so an escaping request never reveals whether the
// path it points at exists.
func Resolve(root, requestPath string) (Target, error) {
	if strings.IndexByte(requestPath, 0) >= 0 {
		return Target{}, fmt.Errorf("resolve %q: %w", requestPath, ErrPathEscape)
	}

	rel := strings.TrimPrefix(filepath.ToSlash(requestPath), "/")
	joined := filepath.Join(root, filepath.FromSlash(rel))

	if joined == root {
		return Target{Path: root, Rel: ".", IsRoot: true}, nil
	}

	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(joined, prefix) {
		return Target{}, fmt.Errorf("resolve %q: %w", requestPath, ErrPathEscape)
	}

	return Target{
		Path: joined,
		Rel:  path.Clean(filepath.ToSlash(strings.TrimPrefix(joined, prefix))),
	}, nil
}

// urlPathFor converts an absolute filesystem path below root into its URL-space
// path. Paths outside root are returned unchanged.
func urlPathFor(root, fsPath string) string {
	rel, err := filepath.Rel(root, fsPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fsPath
	}
	if rel == "." {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}
