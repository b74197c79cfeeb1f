package serve

import "errors"

var (
	// ErrNotFound is returned when the requested target does not exist
	ErrNotFound = errors.New("not found")
	// ErrPathEscape is returned when a request path resolves outside the root
	ErrPathEscape = errors.New("path escapes root")
	// ErrIO is returned when reading the filesystem fails mid-operation
	ErrIO = errors.New("i/o error")
	// ErrRangeNotSatisfiable is returned when a byte range starts beyond the file
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
	// ErrUnauthorized is returned when basic auth credentials are missing or wrong
	ErrUnauthorized = errors.New("unauthorized")
)
