// Package web embeds the static front end.
package web

import (
	"embed"
	"net/http"
)

//go:embed index.html static
var content embed.FS

// Handler serves the embedded front end. index.html answers "/",
// assets resolve under /static/.
func Handler() http.Handler {
	return http.FileServer(http.FS(content))
}
