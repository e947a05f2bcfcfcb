package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

type ExtractRequest struct {
	Key string `json:"key"`
}

type ExtractResponse struct {
	Rank      int    `json:"rank"`
	TotalTime string `json:"totalTime"` // whole hours:minutes
}

// handleExtract finalizes a team against the game-wide extraction key.
// Repeated correct submissions return the same end time and rank: the
// end-time write is a compare-and-set on null.
func handleExtract(logger *slog.Logger, broker *Broker, store Store, cache *LeaderboardCache, extractionKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		var req ExtractRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Key = strings.TrimSpace(req.Key)

		if subtle.ConstantTimeCompare([]byte(req.Key), []byte(extractionKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid extraction key")
			return
		}

		stamped, err := store.SetGameEnd(r.Context(), team.ID, time.Now().UTC())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Re-read: whichever write won the race, the stored end time is
		// canonical.
		team, err = store.TeamByID(r.Context(), team.ID)
		if err != nil || team.GameEndTime == nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if stamped {
			logger.Info("extraction accepted", "team", team.ID)
			cache.Invalidate(r.Context())
			broker.Publish(team.ID, Event{Type: eventGameEnded, GameEnded: true})
		}

		rank, err := store.RankOf(r.Context(), *team.GameEndTime, team.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		elapsed, _ := team.Elapsed()
		writeJSON(w, http.StatusOK, ExtractResponse{
			Rank:      rank,
			TotalTime: geoquest.FormatElapsed(elapsed),
		})
	}
}
