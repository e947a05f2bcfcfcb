package server

import (
	"log/slog"
	"net/http"
)

type SkipResponse struct {
	Skipped      bool   `json:"skipped"`
	GameComplete bool   `json:"gameComplete,omitempty"`
	ClueNumber   int    `json:"clueNumber,omitempty"`
	NextZoneID   int    `json:"nextZoneId,omitempty"`
	NextZoneName string `json:"nextZoneName,omitempty"`
}

// handleSkip advances past the current zone without verification. The
// clue counter still moves, and skipping the final zone still ends the
// game, so timing semantics match a normal clearance.
func handleSkip(logger *slog.Logger, broker *Broker, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		if team.Completed() {
			writeError(w, http.StatusConflict, "all zones completed")
			return
		}

		// The skip is valid from either stage; the guard uses whatever
		// stage the snapshot saw so a racing clearance still wins.
		res, advanced, err := advanceTeam(r.Context(), logger, broker, store, team, team.Stage, actionZoneSkipped)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !advanced {
			writeError(w, http.StatusConflict, "zone already cleared")
			return
		}

		resp := SkipResponse{
			Skipped:      true,
			GameComplete: res.GameComplete,
			ClueNumber:   res.ClueNumber,
			NextZoneID:   res.NextZoneID,
		}
		if res.NextZoneID != 0 {
			if zone, err := store.ZoneByID(r.Context(), res.NextZoneID); err == nil {
				resp.NextZoneName = zone.Name
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
