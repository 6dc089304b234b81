package server

import (
	"net/http"

	"lyrify/internal/lyrics"
)

// handleLyrics relays GET /api/lyrics?song= to the upstream lyrics API.
// Preflight requests are answered before any other check.
func (ls *LyricsServer) handleLyrics(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodGet {
		ls.respondWithError(w, r, lyrics.NewMethodNotAllowed())
		return
	}

	song := sanitizeInput(r.URL.Query().Get("song"))
	if verr := ls.validateSongQuery(song); verr != nil {
		ls.respondWithError(w, r, verr)
		return
	}

	body, err := ls.lyrics.Fetch(r.Context(), song)
	if err != nil {
		ls.respondWithError(w, r, lyrics.AsProxyError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		ls.logger.WithError(err).Warn("Failed to write lyrics response")
	}
}
