package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/GyrosOfWar/serve"
)

// errorStatus is the HTTP rendering of an error.
type errorStatus struct {
	Code    int
	ErrCode string
	Message string
	// Warn marks rejections worth an operator's attention.
	Warn bool
}

// statusFor maps errors from the serve package onto HTTP statuses.
// A path escaping the root is reported as a plain 404 so the response does not
// reveal anything about the layout outside the root.
func statusFor(err error) errorStatus {
	switch {
	case errors.Is(err, serve.ErrPathEscape):
		return errorStatus{http.StatusNotFound, "not_found", "The requested resource was not found.", true}
	case errors.Is(err, serve.ErrNotFound):
		return errorStatus{http.StatusNotFound, "not_found", "The requested resource was not found.", false}
	case errors.Is(err, serve.ErrRangeNotSatisfiable):
		return errorStatus{http.StatusRequestedRangeNotSatisfiable, "range_not_satisfiable", "The requested range is not satisfiable.", false}
	case errors.Is(err, serve.ErrUnauthorized):
		return errorStatus{http.StatusUnauthorized, "unauthorized", "Authentication required.", false}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorStatus{http.StatusServiceUnavailable, "unavailable", "The request was canceled.", false}
	default:
		return errorStatus{http.StatusInternalServerError, "internal_error", "Internal server error", false}
	}
}
