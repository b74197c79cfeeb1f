package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

const fallbackErrorHTML = `<html>
<head><title>500 Internal Server Error</title></head>
<body>
<center><h1>500 Internal Server Error</h1></center>
<hr><center>serve</center>
</body>
</html>`

func writeErrorPage(w http.ResponseWriter, code int, message string) {
	var buf bytes.Buffer
	page := errorPage{Status: code, Text: http.StatusText(code), Message: message}
	if err := templates.ExecuteTemplate(&buf, "error.html", page); err != nil {
		slog.Error("failed to render error page", "error", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, fallbackErrorHTML)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
