package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPA serves the client build directory with an index.html fallback so the
// client-side router owns every non-API path.
func SPA(buildDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(buildDir))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") {
			http.NotFound(w, r)
			return
		}
		requested := filepath.Join(buildDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(buildDir, "index.html"))
	}
}
