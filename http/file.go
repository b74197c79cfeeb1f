package http

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/GyrosOfWar/serve"
)

// serveFile streams f honouring conditional and single range requests.
func serveFile(w http.ResponseWriter, r *http.Request, f *serve.FileResource) {
	etag := generateETag(f.Size, f.ModTime)

	hdr := w.Header()
	hdr.Set("Accept-Ranges", "bytes")
	hdr.Set("ETag", etag)
	if !f.ModTime.IsZero() {
		hdr.Set("Last-Modified", f.ModTime.UTC().Format(http.TimeFormat))
	}

	if checkConditionalRequests(r, etag, f.ModTime) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var requested *serve.ByteRange
	if header := r.Header.Get("Range"); header != "" && r.Method == http.MethodGet && ifRangeMatches(r, etag, f.ModTime) {
		br, ok := serve.ParseRange(header)
		if !ok {
			slog.Debug("ignoring malformed range", "range", header, "path", r.URL.Path)
		}
		requested = br
	}

	plan, err := serve.Negotiate(requested, f.Size)
	if err != nil {
		hdr.Set("Content-Range", fmt.Sprintf("bytes */%d", f.Size))
		HandleError(w, r, err)
		return
	}

	hdr.Set("Content-Type", contentType(f.Name))
	hdr.Set("Content-Length", strconv.FormatInt(plan.Length(), 10))
	if plan.Partial {
		hdr.Set("Content-Range", plan.ContentRange())
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(plan.Status())
		return
	}

	content, err := f.Open()
	if err != nil {
		hdr.Del("Content-Length")
		hdr.Del("Content-Range")
		HandleError(w, r, err)
		return
	}
	defer func() { _ = content.Close() }()

	if plan.Start > 0 {
		if _, err := content.Seek(plan.Start, io.SeekStart); err != nil {
			hdr.Del("Content-Length")
			hdr.Del("Content-Range")
			HandleError(w, r, fmt.Errorf("%w: seek %s: %w", serve.ErrIO, f.Name, err))
			return
		}
	}

	w.WriteHeader(plan.Status())
	if n, err := io.CopyN(w, content, plan.Length()); err != nil {
		slog.Warn("file transfer interrupted", "path", r.URL.Path, "written", n, "err", err)
	}
}

// generateETag creates a strong ETag from the file size and modification time.
// Format: "<size_hex>-<modtime_unixnano_hex>"
func generateETag(size int64, modTime time.Time) string {
	return fmt.Sprintf("\"%x-%x\"", size, modTime.UnixNano())
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// checkConditionalRequests reports whether a 304 Not Modified should be sent.
// If-None-Match takes precedence: If-Modified-Since is only consulted when it
// is absent.
func checkConditionalRequests(r *http.Request, etag string, modTime time.Time) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		if strings.TrimSpace(inm) == "*" {
			return true
		}
		for _, candidate := range strings.Split(inm, ",") {
			if opaqueTag(candidate) == opaqueTag(etag) {
				return true
			}
		}
		return false
	}

	if ims := r.Header.Get("If-Modified-Since"); ims != "" && !modTime.IsZero() {
		since, err := http.ParseTime(ims)
		if err != nil {
			return false
		}
		return !modTime.Truncate(time.Second).After(since.Truncate(time.Second))
	}

	return false
}

// ifRangeMatches reports whether the Range header may be applied. An If-Range
// holding a weak or different validator means the full content is sent.
func ifRangeMatches(r *http.Request, etag string, modTime time.Time) bool {
	ir := strings.TrimSpace(r.Header.Get("If-Range"))
	if ir == "" {
		return true
	}
	if strings.HasPrefix(ir, `"`) {
		return ir == etag
	}
	if strings.HasPrefix(ir, "W/") || modTime.IsZero() {
		return false
	}
	t, err := http.ParseTime(ir)
	if err != nil {
		return false
	}
	return modTime.Truncate(time.Second).Equal(t.Truncate(time.Second))
}

// opaqueTag strips the weak prefix and quotes for weak comparison.
func opaqueTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "W/")
	return strings.Trim(tag, `"`)
}
