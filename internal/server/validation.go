package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"lyrify/internal/lyrics"
	"lyrify/pkg/models"

	"github.com/sirupsen/logrus"
)

// respondWithError sends the {status:false,message} body for a proxy failure.
// The underlying cause is logged, never returned to the client.
func (ls *LyricsServer) respondWithError(w http.ResponseWriter, r *http.Request, perr *lyrics.ProxyError) {
	logEntry := ls.logger.WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status_code": perr.StatusCode,
		"kind":        perr.Kind,
		"request_id":  w.Header().Get(requestIDHeader),
	})

	if perr.Err != nil {
		logEntry = logEntry.WithError(perr.Err)
	}

	if perr.StatusCode >= 500 {
		logEntry.Error("Lyrify API error")
	} else {
		logEntry.Warn("Client error")
	}

	ls.respondJSON(w, perr.StatusCode, errorBody(perr.Message))
}

// respondJSON writes v as JSON with the given status.
func (ls *LyricsServer) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ls.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

func errorBody(message string) models.ErrorResponse {
	return models.ErrorResponse{Status: false, Message: message}
}

// validateSongQuery rejects queries the upstream should never see. The
// returned error is nil when song is acceptable.
func (ls *LyricsServer) validateSongQuery(song string) *lyrics.ProxyError {
	if song == "" {
		return &lyrics.ProxyError{
			Kind:       lyrics.MissingParameter,
			StatusCode: http.StatusBadRequest,
			Message:    `Required "song" parameter`,
		}
	}

	if len(song) > 1000 {
		return &lyrics.ProxyError{
			Kind:       lyrics.MissingParameter,
			StatusCode: http.StatusBadRequest,
			Message:    `"song" parameter too long (max 1000 characters)`,
		}
	}

	return nil
}

// sanitizeInput strips null bytes and surrounding whitespace.
func sanitizeInput(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
