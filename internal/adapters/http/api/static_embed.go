package api

import (
	"embed"
	"io/fs"
)

//go:embed static
var apiStaticFS embed.FS

// dashboardFS is the embedded static tree with the static/ prefix stripped.
var dashboardFS = mustSub(apiStaticFS, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
