package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes an error response, as JSON for JSON clients and as an
// HTML error page otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, code int, errCode, message string) {
	if wantsJSON(r) {
		if err := WriteJSON(w, code, ErrorResponse{
			Error:   errCode,
			Message: message,
		}); err != nil {
			slog.Error("failed to encode error response", "error", err)
		}
		return
	}

	writeErrorPage(w, code, message)
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	attrs := []any{"path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err}
	switch {
	case status.Code >= http.StatusInternalServerError:
		slog.Error("request error", attrs...)
	case status.Warn:
		slog.Warn("request rejected", attrs...)
	default:
		slog.Debug("request error", attrs...)
	}

	WriteError(w, r, status.Code, status.ErrCode, status.Message)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
