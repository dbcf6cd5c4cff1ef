// Package web holds the HTML/text templates and static assets served by the app.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html templates/*.txt static
var content embed.FS

// Templates returns the embedded template directory
func Templates() fs.FS {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static returns the embedded static asset directory
func Static() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
