package server

import (
	"net/http"
	"os"
	"time"
)

// HealthStatus represents operational status for the /health endpoint.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Upstream  string                 `json:"upstream"`
	Static    string                 `json:"static"`
	PublicURL string                 `json:"publicUrl,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// handleHealthCheck returns liveness plus local checks. The upstream is not
// called; only its configured address is reported.
func (ls *LyricsServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Upstream:  ls.config.Upstream.BaseURL,
		Static:    "ok",
		PublicURL: ls.ngrokService.GetPublicURL(),
		Details:   make(map[string]interface{}),
	}

	// A missing static dir only degrades the front-end; the API still works.
	if err := ls.checkStaticHealth(); err != nil {
		health.Status = "degraded"
		health.Static = "error"
		health.Details["static_error"] = err.Error()
	}

	health.Details["upstream_timeout_seconds"] = ls.lyrics.Timeout().Seconds()

	ls.respondJSON(w, http.StatusOK, health)
}

// checkStaticHealth verifies the static directory is readable.
func (ls *LyricsServer) checkStaticHealth() error {
	_, err := os.Stat(ls.config.Server.StaticDir)
	return err
}
