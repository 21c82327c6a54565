package http

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

var contentTypes = map[string]string{
	".js":    "application/javascript",
	".mjs":   "application/javascript",
	".css":   "text/css",
	".html":  "text/html",
	".svg":   "image/svg+xml",
	".wasm":  "application/wasm",
	".woff2": "font/woff2",
	".json":  "application/json",
}

// HandleFileServer serves built UI assets. Asset file names are content hashed, so they are
// cached for a year.
func HandleFileServer(fs http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if contentType, ok := contentTypes[strings.ToLower(path.Ext(r.URL.Path))]; ok {
			w.Header().Set("Content-Type", contentType)
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}
}

// HandleIndex serves index.html from staticFileDir for every path the UI router owns.
func HandleIndex(staticFileDir string) http.HandlerFunc {
	index := filepath.Join(staticFileDir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	}
}
