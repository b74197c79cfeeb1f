// Package serve resolves HTTP request paths below a confined root directory into
// files to stream or directory listings to render.
//
// The package is the engine behind the serve command: it maps URL paths onto the
// filesystem without ever escaping the root, builds sorted directory indexes with
// breadcrumbs and human readable sizes and ages, negotiates single byte ranges and
// evaluates optional basic auth credentials. It produces data, not markup; the http
// package renders and streams it.
//
// # Key Components
//
//   - Resolve: textual containment check mapping a request path onto the root
//   - Indexer: directory listing with dotfile filtering and dirs-first ordering
//   - ParseRange / Negotiate: single byte range parsing and clamping
//   - DecodeBasicAuth / CheckAuth: basic auth decoding and the authorization predicate
//   - FormatSize / FormatAge: decimal byte sizes and "3 minutes ago" phrases
//   - Service: combines the above over a FileSystem implementation
//
// # Example Usage
//
//	root, err := os.OpenRoot("/srv/files")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	service, err := serve.NewService("/srv/files", filesystem.NewStore(root))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := service.Open(ctx, "docs/manual")
//	switch res.Kind {
//	case serve.KindFile:
//	    // stream res.File
//	case serve.KindDirectory:
//	    // render res.Listing
//	}
//
// See the filesystem package for the os.Root backed FileSystem and the http package
// for the HTTP handler.
package serve
