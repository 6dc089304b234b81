package server

import (
	"net/http"
	"path/filepath"
)

// handleHome serves the front-end index file from the configured static dir.
func (ls *LyricsServer) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(ls.config.Server.StaticDir, "index.html"))
}
