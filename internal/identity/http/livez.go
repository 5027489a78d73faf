package http

import (
	"net/http"
	"time"

	"github.com/lightbeamhq/identity/pkg/httpx"
	"github.com/lightbeamhq/identity/pkg/identitysdk"
)

// LivezHandler always answers 200 while the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, identitysdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
