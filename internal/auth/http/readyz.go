package http

import (
	"net/http"
	"time"

	"github.com/devcrm/auth-service/internal/auth/store"
	"github.com/devcrm/auth-service/pkg/httpx"
	"github.com/redis/go-redis/v9"
)

// ReadyzHandler is the readiness probe. The service cannot safely serve auth
// traffic without both the database and Redis, so either failing flips the
// response to 503.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	rdb redis.UniversalClient,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{
			Database: "ok",
			Cache:    "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := rdb.Ping(r.Context()).Err(); err != nil {
			checks.Cache = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
