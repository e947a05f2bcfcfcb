package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type QuitRequest struct {
	AccessCode string `json:"accessCode"`
}

type QuitResponse struct {
	GameEnded bool `json:"gameEnded"`
}

// handleQuit deactivates the calling member. When the last registered
// member goes inactive the game clock stops: game_end_time is stamped
// once and never overwritten, even if quit races the extraction path.
func handleQuit(logger *slog.Logger, broker *Broker, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		var req QuitRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.AccessCode = strings.TrimSpace(req.AccessCode)

		member, ok := team.MemberByCode(req.AccessCode)
		if !ok {
			writeError(w, http.StatusForbidden, "access code does not belong to this team")
			return
		}

		if err := store.SetMemberActive(r.Context(), team.ID, member.Slot, false); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Re-read before the fold: the middleware snapshot predates this
		// write, and a concurrent quit may have deactivated another slot
		// in between. Deciding on the snapshot could leave a fully
		// inactive team with the clock still running.
		team, err := store.TeamByID(r.Context(), team.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		gameEnded := !team.AnyActive()

		slot := member.Slot
		broker.Publish(team.ID, Event{Type: eventMemberQuit, MemberSlot: &slot})

		if gameEnded {
			stopped, err := store.SetGameEnd(r.Context(), team.ID, time.Now().UTC())
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if stopped {
				logger.Info("all members quit, game clock stopped", "team", team.ID)
				broker.Publish(team.ID, Event{Type: eventGameEnded, GameEnded: true})
			}
		}

		writeJSON(w, http.StatusOK, QuitResponse{GameEnded: gameEnded})
	}
}
