package serve_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GyrosOfWar/serve"
)

func TestResolve(t *testing.T) {
	root := filepath.FromSlash("/srv/files")

	tests := []struct {
		name        string
		requestPath string
		wantPath    string
		wantRel     string
		wantRoot    bool
	}{
		{"empty is root", "", "/srv/files", ".", true},
		{"slash is root", "/", "/srv/files", ".", true},
		{"dot is root", ".", "/srv/files", ".", true},
		{"file", "a.txt", "/srv/files/a.txt", "a.txt", false},
		{"nested", "docs/manual/index.txt", "/srv/files/docs/manual/index.txt", "docs/manual/index.txt", false},
		{"leading slash", "/docs", "/srv/files/docs", "docs", false},
		{"trailing slash", "docs/", "/srv/files/docs", "docs", false},
		{"dot segments", "docs/./a/../b", "/srv/files/docs/b", "docs/b", false},
		{"up and back to root", "docs/..", "/srv/files", ".", true},
		{"dotdot prefixed name", "..hidden", "/srv/files/..hidden", "..hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := serve.Resolve(root, tt.requestPath)
			require.NoError(t, err)

			assert.Equal(t, filepath.FromSlash(tt.wantPath), target.Path)
			assert.Equal(t, tt.wantRel, target.Rel)
			assert.Equal(t, tt.wantRoot, target.IsRoot)
		})
	}
}

func TestResolve_Escape(t *testing.T) {
	root := filepath.FromSlash("/srv/files")

	paths := []string{
		"..",
		"../",
		"../etc/passwd",
		"docs/../..",
		"docs/../../files-other",
		"a/b/../../../x",
		"/../etc",
		"a\x00b",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			target, err := serve.Resolve(root, p)

			assert.ErrorIs(t, err, serve.ErrPathEscape)
			assert.Empty(t, target.Path)
		})
	}
}

func TestResolve_SiblingWithSharedPrefix(t *testing.T) {
	_, err := serve.Resolve(filepath.FromSlash("/srv/files"), "../files2/secret")

	assert.ErrorIs(t, err, serve.ErrPathEscape)
}

func TestResolve_FilesystemRoot(t *testing.T) {
	root := filepath.FromSlash("/")

	target, err := serve.Resolve(root, "etc/hosts")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/etc/hosts"), target.Path)

	target, err = serve.Resolve(root, "../..")
	require.NoError(t, err)
	assert.True(t, target.IsRoot)
}
