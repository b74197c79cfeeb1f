package serve_test

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GyrosOfWar/serve"
	"github.com/GyrosOfWar/serve/filesystem"
)

// SpyFileSystem is a mock implementation of serve.FileSystem
type SpyFileSystem struct {
	mock.Mock
}

func (s *SpyFileSystem) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	args := s.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(fs.FileInfo), args.Error(1)
}

func (s *SpyFileSystem) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	args := s.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fs.DirEntry), args.Error(1)
}

func (s *SpyFileSystem) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	args := s.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadSeekCloser), args.Error(1)
}

// fakeInfo is a minimal fs.FileInfo
type fakeInfo struct {
	name string
	mode fs.FileMode
	size int64
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) Mode() fs.FileMode  { return f.mode }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.mode.IsDir() }
func (f fakeInfo) Sys() any           { return nil }

// brokenEntry is a directory entry whose metadata cannot be read
type brokenEntry struct {
	name string
}

func (b brokenEntry) Name() string               { return b.name }
func (b brokenEntry) IsDir() bool                { return false }
func (b brokenEntry) Type() fs.FileMode          { return 0 }
func (b brokenEntry) Info() (fs.FileInfo, error) { return nil, fs.ErrPermission }

// newTestService creates a service over a fresh temp directory populated by files,
// where a key ending in "/" is a directory.
func newTestService(t *testing.T, files map[string]string, opts ...serve.Option) (*serve.Service, string) {
	t.Helper()

	tempDir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(tempDir, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	root, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	s, err := serve.NewService(tempDir, filesystem.NewStore(root), opts...)
	require.NoError(t, err, "new service")
	return s, tempDir
}

func entryNames(l *serve.Listing) []string {
	names := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		names = append(names, e.Name)
	}
	return names
}

func TestNewService_Validation(t *testing.T) {
	_, err := serve.NewService("", new(SpyFileSystem))
	assert.Error(t, err)

	_, err = serve.NewService("relative/dir", new(SpyFileSystem))
	assert.Error(t, err)

	_, err = serve.NewService(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestService_Open_RootListing(t *testing.T) {
	s, _ := newTestService(t, map[string]string{
		"b.txt":   "0123456789",
		"A/":      "",
		".hidden": "secret",
	})

	res, err := s.Open(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, serve.KindDirectory, res.Kind)
	require.NotNil(t, res.Listing)

	assert.Equal(t, []string{"A", "b.txt"}, entryNames(res.Listing))
	assert.Equal(t, "/", res.Listing.BaseDir)
	assert.Nil(t, res.Listing.Parent)
	assert.Empty(t, res.Listing.Breadcrumbs)

	dir := res.Listing.Entries[0]
	assert.True(t, dir.IsDir)
	assert.Equal(t, "/A", dir.Path)

	file := res.Listing.Entries[1]
	assert.False(t, file.IsDir)
	assert.False(t, file.IsSymlink)
	assert.Equal(t, int64(10), file.Size)
	assert.Equal(t, "10 B", file.SizeText)
	assert.Equal(t, "/b.txt", file.Path)
	require.NotNil(t, file.ModTime)
	require.NotNil(t, file.LastModified)
}

func TestService_Open_Sorting(t *testing.T) {
	s, _ := newTestService(t, map[string]string{
		"zeta/":   "",
		"Alpha/":  "",
		"beta/":   "",
		"b.txt":   "",
		"B.txt":   "",
		"a.txt":   "",
		"_x.txt":  "",
		".git/":   "",
		".env":    "",
		"10.txt":  "",
		"9.txt":   "",
		"Zed.txt": "",
	})

	res, err := s.Open(context.Background(), "/")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Alpha", "beta", "zeta",
		"10.txt", "9.txt", "B.txt", "Zed.txt", "_x.txt", "a.txt", "b.txt",
	}, entryNames(res.Listing))

	seenFile := false
	for i, e := range res.Listing.Entries {
		assert.False(t, strings.HasPrefix(e.Name, "."))
		if !e.IsDir {
			seenFile = true
		} else {
			assert.False(t, seenFile, "directory %s listed after a file", e.Name)
		}
		if i > 0 && e.IsDir == res.Listing.Entries[i-1].IsDir {
			assert.LessOrEqual(t, res.Listing.Entries[i-1].Name, e.Name)
		}
	}
}

func TestService_Open_NestedListing(t *testing.T) {
	s, _ := newTestService(t, map[string]string{
		"a/b/c.txt": "hello",
		"a/b/d/":    "",
	})

	res, err := s.Open(context.Background(), "a/b")
	require.NoError(t, err)
	require.Equal(t, serve.KindDirectory, res.Kind)

	l := res.Listing
	assert.Equal(t, []string{"d", "c.txt"}, entryNames(l))
	assert.Equal(t, "/a/b", l.BaseDir)
	require.NotNil(t, l.Parent)
	assert.Equal(t, "/a", *l.Parent)
	assert.Equal(t, []serve.Breadcrumb{
		{Name: "a", Path: "/a"},
		{Name: "b", Path: "/a/b"},
	}, l.Breadcrumbs)
	assert.Equal(t, "/a/b/c.txt", l.Entries[1].Path)
	assert.Equal(t, "/a/b/d", l.Entries[0].Path)
}

func TestService_Open_FirstLevelParentIsRoot(t *testing.T) {
	s, _ := newTestService(t, map[string]string{"docs/readme.md": "x"})

	res, err := s.Open(context.Background(), "docs/")
	require.NoError(t, err)

	require.NotNil(t, res.Listing.Parent)
	assert.Equal(t, "/", *res.Listing.Parent)
	assert.Equal(t, "/docs", res.Listing.BaseDir)
}

func TestService_Open_DotDotBackToRootHasNoParent(t *testing.T) {
	s, _ := newTestService(t, map[string]string{"docs/": ""})

	res, err := s.Open(context.Background(), "docs/..")
	require.NoError(t, err)

	assert.Nil(t, res.Listing.Parent)
	assert.Equal(t, "/", res.Listing.BaseDir)
}

func TestService_Open_EmptyDirectory(t *testing.T) {
	s, _ := newTestService(t, map[string]string{"empty/": ""})

	res, err := s.Open(context.Background(), "empty")
	require.NoError(t, err)

	assert.NotNil(t, res.Listing.Entries)
	assert.Empty(t, res.Listing.Entries)
}

func TestService_Open_File(t *testing.T) {
	s, _ := newTestService(t, map[string]string{"docs/hello.txt": "hello world"})

	res, err := s.Open(context.Background(), "docs/hello.txt")
	require.NoError(t, err)
	require.Equal(t, serve.KindFile, res.Kind)
	require.NotNil(t, res.File)
	assert.Nil(t, res.Listing)

	assert.Equal(t, "hello.txt", res.File.Name)
	assert.Equal(t, int64(11), res.File.Size)
	assert.False(t, res.File.ModTime.IsZero())

	content, err := res.File.Open()
	require.NoError(t, err)
	defer func() { _ = content.Close() }()

	data, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestService_Open_NotFound(t *testing.T) {
	s, _ := newTestService(t, nil)

	_, err := s.Open(context.Background(), "missing.txt")

	assert.ErrorIs(t, err, serve.ErrNotFound)
}

func TestService_Open_PathEscapeMakesNoFilesystemCall(t *testing.T) {
	spy := new(SpyFileSystem)
	s, err := serve.NewService(filepath.FromSlash("/srv/files"), spy)
	require.NoError(t, err)

	_, err = s.Open(context.Background(), "../../etc/passwd")

	assert.ErrorIs(t, err, serve.ErrPathEscape)
	spy.AssertNotCalled(t, "Stat", mock.Anything, mock.Anything)
	spy.AssertNotCalled(t, "ReadDir", mock.Anything, mock.Anything)
	spy.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestService_Open_ContextCanceled(t *testing.T) {
	s, _ := newTestService(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Open(ctx, "")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Open_ListingFailsWholesale(t *testing.T) {
	spy := new(SpyFileSystem)
	s, err := serve.NewService(filepath.FromSlash("/srv/files"), spy)
	require.NoError(t, err)

	spy.On("Stat", mock.Anything, "dir").Return(fakeInfo{name: "dir", mode: fs.ModeDir | 0o755}, nil)
	spy.On("ReadDir", mock.Anything, "dir").Return([]fs.DirEntry{
		fs.FileInfoToDirEntry(fakeInfo{name: "ok.txt", mode: 0o644, size: 1}),
		brokenEntry{name: "broken.txt"},
	}, nil)

	res, err := s.Open(context.Background(), "dir")

	assert.ErrorIs(t, err, serve.ErrIO)
	assert.Nil(t, res.Listing)
	spy.AssertExpectations(t)
}

func TestService_Open_ReadDirError(t *testing.T) {
	spy := new(SpyFileSystem)
	s, err := serve.NewService(filepath.FromSlash("/srv/files"), spy)
	require.NoError(t, err)

	spy.On("Stat", mock.Anything, ".").Return(fakeInfo{name: "files", mode: fs.ModeDir | 0o755}, nil)
	spy.On("ReadDir", mock.Anything, ".").Return(nil, serve.ErrIO)

	_, err = s.Open(context.Background(), "")

	assert.ErrorIs(t, err, serve.ErrIO)
	spy.AssertExpectations(t)
}

func TestService_Open_MissingTimestampIsAbsent(t *testing.T) {
	spy := new(SpyFileSystem)
	s, err := serve.NewService(filepath.FromSlash("/srv/files"), spy)
	require.NoError(t, err)

	spy.On("Stat", mock.Anything, ".").Return(fakeInfo{name: "files", mode: fs.ModeDir | 0o755}, nil)
	spy.On("ReadDir", mock.Anything, ".").Return([]fs.DirEntry{
		fs.FileInfoToDirEntry(fakeInfo{name: "data.bin", mode: 0o644, size: 2_500_000}),
	}, nil)

	res, err := s.Open(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, res.Listing.Entries, 1)
	e := res.Listing.Entries[0]
	assert.Nil(t, e.ModTime)
	assert.Nil(t, e.LastModified)
	assert.Equal(t, "2.50 MB", e.SizeText)
	assert.Equal(t, "/data.bin", e.Path)
}

func TestService_Open_UnsupportedFileType(t *testing.T) {
	spy := new(SpyFileSystem)
	s, err := serve.NewService(filepath.FromSlash("/srv/files"), spy)
	require.NoError(t, err)

	spy.On("Stat", mock.Anything, "fifo").Return(fakeInfo{name: "fifo", mode: fs.ModeNamedPipe}, nil)

	_, err = s.Open(context.Background(), "fifo")

	assert.ErrorIs(t, err, serve.ErrNotFound)
}

func TestService_Open_LastModifiedUsesClock(t *testing.T) {
	modTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s, tempDir := newTestService(t, map[string]string{"old.txt": "x"},
		serve.WithClock(func() time.Time { return modTime.Add(3 * time.Minute) }))

	require.NoError(t, os.Chtimes(filepath.Join(tempDir, "old.txt"), modTime, modTime))

	res, err := s.Open(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, res.Listing.Entries, 1)
	require.NotNil(t, res.Listing.Entries[0].LastModified)
	assert.Equal(t, "3 minutes ago", *res.Listing.Entries[0].LastModified)
	assert.True(t, modTime.Equal(*res.Listing.Entries[0].ModTime))
}

func TestService_Open_Symlinks(t *testing.T) {
	s, tempDir := newTestService(t, map[string]string{
		"real/inner.txt": "abc",
		"file.txt":       "12345",
	})

	outside := t.TempDir()
	require.NoError(t, os.Symlink("real", filepath.Join(tempDir, "dirlink")))
	require.NoError(t, os.Symlink("file.txt", filepath.Join(tempDir, "filelink")))
	require.NoError(t, os.Symlink("nowhere.txt", filepath.Join(tempDir, "dangling")))
	require.NoError(t, os.Symlink(outside, filepath.Join(tempDir, "escape")))
	require.NoError(t, os.Symlink("loop", filepath.Join(tempDir, "loop")))

	res, err := s.Open(context.Background(), "")
	require.NoError(t, err)

	byName := make(map[string]serve.DirEntry)
	for _, e := range res.Listing.Entries {
		byName[e.Name] = e
	}

	assert.True(t, byName["dirlink"].IsDir)
	assert.True(t, byName["dirlink"].IsSymlink)

	assert.False(t, byName["filelink"].IsDir)
	assert.True(t, byName["filelink"].IsSymlink)
	assert.Equal(t, int64(5), byName["filelink"].Size)

	assert.True(t, byName["dangling"].IsSymlink)
	assert.False(t, byName["dangling"].IsDir)

	assert.True(t, byName["escape"].IsSymlink)
	assert.False(t, byName["escape"].IsDir)

	require.Contains(t, byName, "loop")
	assert.True(t, byName["loop"].IsSymlink)
	assert.False(t, byName["loop"].IsDir)

	assert.Equal(t, []string{"dirlink", "real"}, entryNames(res.Listing)[:2])

	_, err = s.Open(context.Background(), "escape")
	assert.ErrorIs(t, err, serve.ErrPathEscape)

	res, err = s.Open(context.Background(), "dirlink")
	require.NoError(t, err)
	assert.Equal(t, []string{"inner.txt"}, entryNames(res.Listing))
}
