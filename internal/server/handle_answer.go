package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type AnswerResponse struct {
	Correct      bool `json:"correct"`
	GameComplete bool `json:"gameComplete,omitempty"`
	ClueNumber   int  `json:"clueNumber,omitempty"`
	NextZoneID   int  `json:"nextZoneId,omitempty"`
}

// handleAnswer checks the lore answer for the current zone. A correct
// answer clears the zone; a wrong one leaves all progress untouched.
func handleAnswer(logger *slog.Logger, broker *Broker, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Answer = strings.TrimSpace(req.Answer)
		if req.Answer == "" {
			writeError(w, http.StatusBadRequest, "answer is required")
			return
		}

		zoneID, ok := team.CurrentZoneID()
		if !ok {
			writeError(w, http.StatusConflict, "all zones completed")
			return
		}
		if team.Stage != geoquest.StageVerification {
			writeError(w, http.StatusConflict, "enter the zone code first")
			return
		}

		zone, err := store.ZoneByID(r.Context(), zoneID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !geoquest.AnswerMatches(req.Answer, zone.Answer) {
			if err := store.RecordProgress(r.Context(), team.ID, zone.ID, actionLoreAnswer, false); err != nil {
				logger.Warn("recording progress failed", "team", team.ID, "error", err)
			}
			writeJSON(w, http.StatusUnprocessableEntity, AnswerResponse{Correct: false})
			return
		}

		res, advanced, err := advanceTeam(r.Context(), logger, broker, store, team, geoquest.StageVerification, actionLoreAnswer)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !advanced {
			writeError(w, http.StatusConflict, "zone already cleared")
			return
		}

		writeJSON(w, http.StatusOK, AnswerResponse{
			Correct:      true,
			GameComplete: res.GameComplete,
			ClueNumber:   res.ClueNumber,
			NextZoneID:   res.NextZoneID,
		})
	}
}
