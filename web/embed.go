package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var content embed.FS

// Templates returns the built-in templates rooted at the templates directory.
func Templates() fs.FS {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		panic("web: embedded templates missing: " + err.Error())
	}
	return sub
}
