package http

import (
	"net/http"
	"time"

	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/pkg/httpx"
	"github.com/lightbeamhq/identity/pkg/identitysdk"
)

// ReadyzHandler answers 200 only when the critical dependencies respond.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &identitysdk.HealthChecks{
			Database: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, identitysdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
