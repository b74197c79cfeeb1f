package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/GyrosOfWar/serve"
)

//go:embed templates
var assets embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"urlpath": escapePath,
}).ParseFS(assets, "templates/*.html"))

// escapePath percent-encodes p for use as an href so names containing
// '#', '?' or '%' link to themselves.
func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

type indexPage struct {
	Title   string
	Listing *serve.Listing
}

type errorPage struct {
	Status  int
	Text    string
	Message string
}

// serveListing writes l as JSON for clients that prefer it, as HTML otherwise.
func serveListing(w http.ResponseWriter, r *http.Request, l *serve.Listing) {
	if wantsJSON(r) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := WriteJSON(w, http.StatusOK, l); err != nil {
			slog.Warn("failed to encode listing", "path", r.URL.Path, "err", err)
		}
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "index.html", indexPage{Title: l.BaseDir, Listing: l}); err != nil {
		HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}

// wantsJSON reports whether the request asks for JSON through ?format=json or
// an Accept header ranking application/json above text/html.
func wantsJSON(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "json":
		return true
	case "html":
		return false
	}

	var jsonQ, htmlQ float64
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, params, _ := strings.Cut(part, ";")
		q := qValue(params)
		switch strings.ToLower(strings.TrimSpace(mediaType)) {
		case "application/json":
			jsonQ = max(jsonQ, q)
		case "text/html", "application/xhtml+xml":
			htmlQ = max(htmlQ, q)
		}
	}
	return jsonQ > 0 && jsonQ > htmlQ
}

func qValue(params string) float64 {
	for _, p := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.ToLower(strings.TrimSpace(key)) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || q < 0 {
			return 0
		}
		return min(q, 1)
	}
	return 1
}
