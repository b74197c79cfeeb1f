// Package http serves a serve.Service over HTTP.
//
// Files are streamed with ETag and Last-Modified validators, conditional
// requests and single byte ranges. Directories render as an HTML index page or
// as JSON for clients that ask for it. Errors render as HTML error pages or
// JSON error objects the same way.
//
// # Routes
//
//   - GET|HEAD /style.css: the embedded stylesheet, never behind auth
//   - GET|HEAD /*: the file or directory index at the request path
//
// Every other method gets 405 Method Not Allowed.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Realm:       "serve",
//	    Credentials: &serve.Credentials{Username: "alice", Password: "secret"}, // nil for public access
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":8000", handler.Router())
//
// # Middleware
//
// The router installs RequestIDMiddleware, AccessLogMiddleware and chi's
// Recoverer on every route, plus CORS when enabled. BasicAuthMiddleware guards
// everything except the stylesheet:
//
//	router.Use(http.BasicAuthMiddleware("serve", creds)) // authenticated
//	router.Use(http.BasicAuthMiddleware("serve", nil))   // public access
package http
