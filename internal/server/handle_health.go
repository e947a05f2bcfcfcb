package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthResponse maps dependency name to status ("ok" or "error").
type HealthResponse map[string]string

func handleHealth(logger *slog.Logger, store Store, cache *LeaderboardCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := HealthResponse{"store": "ok"}
		status := http.StatusOK

		if err := store.Ping(ctx); err != nil {
			logger.Error("health check failed", "name", "store", "error", err)
			checks["store"] = "error"
			status = http.StatusServiceUnavailable
		}

		if cache != nil {
			checks["redis"] = "ok"
			if err := cache.Ping(ctx); err != nil {
				logger.Error("health check failed", "name", "redis", "error", err)
				checks["redis"] = "error"
				status = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, status, checks)
	}
}
