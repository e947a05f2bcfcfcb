package server

import (
	"log/slog"
	"net/http"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	TotalTime string `json:"totalTime"`
}

type LeaderboardResponse struct {
	Teams []LeaderboardEntry `json:"teams"`
}

func handleLeaderboard(logger *slog.Logger, store Store, cache *LeaderboardCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if entries, hit := cache.Get(r.Context()); hit {
			writeJSON(w, http.StatusOK, LeaderboardResponse{Teams: entries})
			return
		}

		completed, err := store.CompletedTeams(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		entries := make([]LeaderboardEntry, 0, len(completed))
		for i, t := range completed {
			entries = append(entries, LeaderboardEntry{
				Rank:      i + 1,
				Name:      t.Name,
				TotalTime: geoquest.FormatElapsed(t.GameEndTime.Sub(t.GameStartTime)),
			})
		}

		if err := cache.Set(r.Context(), entries); err != nil {
			logger.Warn("caching leaderboard failed", "error", err)
		}

		writeJSON(w, http.StatusOK, LeaderboardResponse{Teams: entries})
	}
}
