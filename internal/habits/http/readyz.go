package http

import (
	"net/http"
	"os"
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/filestore"
	"github.com/aussiebroadwan/habits/internal/habits/store"
	"github.com/aussiebroadwan/habits/pkg/httpx"
)

// ReadyzHandler reports 503 when the database or the upload directory is
// unavailable.
func ReadyzHandler(startTime time.Time, version string, st store.Store, files *filestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"uploads":  "ok",
		}
		status, code := "ok", http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks["database"] = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}

		if files != nil {
			if _, err := os.Stat(files.Root()); err != nil {
				checks["uploads"] = "error: " + err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
