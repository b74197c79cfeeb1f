package serve

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Target is a request path resolved against the root directory.
type Target struct {
	// Path is the absolute filesystem path.
	Path string
	// Rel is the slash-separated path relative to the root, "." for the root itself.
	Rel string
	// IsRoot reports whether the target is the root directory.
	IsRoot bool
}

// DirEntry is one row of a directory listing.
type DirEntry struct {
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	IsDir        bool       `json:"is_directory"`
	IsSymlink    bool       `json:"is_symlink"`
	Size         int64      `json:"size_bytes"`
	SizeText     string     `json:"size"`
	ModTime      *time.Time `json:"mod_time,omitempty"`
	LastModified *string    `json:"last_modified,omitempty"`
}

// Breadcrumb is one segment of the path navigation with its cumulative URL.
type Breadcrumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Listing is the view model of a directory index page.
type Listing struct {
	Entries     []DirEntry   `json:"entries"`
	BaseDir     string       `json:"base_dir"`
	Parent      *string      `json:"parent,omitempty"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
}

// ByteRange is a parsed single byte range. Exactly one of End-or-open and Suffix
// applies: a suffix range asks for the last *Suffix bytes and ignores Start.
type ByteRange struct {
	Start  int64
	End    *int64
	Suffix *int64
}

// ServingPlan describes which bytes of a file of Total length to send.
type ServingPlan struct {
	Partial bool
	Start   int64
	End     int64
	Total   int64
}

// Status returns the HTTP status code matching the plan.
func (p ServingPlan) Status() int {
	if p.Partial {
		return http.StatusPartialContent
	}
	return http.StatusOK
}

// Length returns the number of body bytes to send.
func (p ServingPlan) Length() int64 {
	return p.End - p.Start + 1
}

// ContentRange returns the Content-Range header value for a partial plan.
func (p ServingPlan) ContentRange() string {
	if !p.Partial {
		return ""
	}
	return fmt.Sprintf("bytes %d-%d/%d", p.Start, p.End, p.Total)
}

// Credentials is a decoded basic auth username/password pair.
type Credentials struct {
	Username string
	Password string
}

// ResourceKind tells which field of a Resource is set.
type ResourceKind int

const (
	// KindFile is a regular file to stream.
	KindFile ResourceKind = iota + 1
	// KindDirectory is a directory listing to render.
	KindDirectory
)

func (k ResourceKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// FileResource is a regular file ready to be streamed.
type FileResource struct {
	Name    string
	Size    int64
	ModTime time.Time

	open func() (io.ReadSeekCloser, error)
}

// NewFileResource creates a FileResource whose content is opened on demand by open.
func NewFileResource(name string, size int64, modTime time.Time, open func() (io.ReadSeekCloser, error)) *FileResource {
	return &FileResource{Name: name, Size: size, ModTime: modTime, open: open}
}

// Open opens the file content. The caller must close the returned reader.
func (f *FileResource) Open() (io.ReadSeekCloser, error) {
	return f.open()
}

// Resource is the result of opening a request path: exactly one of File and
// Listing is set, as indicated by Kind.
type Resource struct {
	Kind    ResourceKind
	File    *FileResource
	Listing *Listing
}
