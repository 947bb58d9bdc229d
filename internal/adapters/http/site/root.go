// Package site serves the embedded landing page and operator docs.
package site

import (
	"context"
	"net/http"
)

// Register mounts the embedded site on mux. The file server owns the root
// pattern, so it also answers 404 for paths no other route claims.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler())
}

// RootHandler serves the embedded site, for callers composing their own mux.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a handler over the embedded content.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
