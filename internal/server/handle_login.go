package server

import (
	"errors"
	"net/http"
	"strings"
)

type LoginRequest struct {
	AccessCode string `json:"accessCode"`
}

type LoginResponse struct {
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
}

func handleLogin(broker *Broker, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.AccessCode = strings.TrimSpace(req.AccessCode)
		if req.AccessCode == "" {
			writeError(w, http.StatusBadRequest, "accessCode is required")
			return
		}

		team, err := store.TeamByMemberCode(r.Context(), req.AccessCode)
		if errors.Is(err, ErrNotFound) {
			// Same message whether the code is unknown or malformed:
			// callers must not learn which slot would have matched.
			writeError(w, http.StatusUnauthorized, "invalid access code")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		member, ok := team.MemberByCode(req.AccessCode)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid access code")
			return
		}

		if err := store.SetMemberActive(r.Context(), team.ID, member.Slot, true); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		slot := member.Slot
		broker.Publish(team.ID, Event{Type: eventMemberLoggedIn, MemberSlot: &slot})

		writeJSON(w, http.StatusOK, LoginResponse{
			TeamID: team.ID,
			Name:   team.Name,
		})
	}
}
