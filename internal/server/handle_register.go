package server

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tinkerhub/geoquest/internal/geoquest"
	"github.com/tinkerhub/geoquest/internal/mailer"
)

type RegisterRequest struct {
	TeamName     string   `json:"teamName"`
	LeaderName   string   `json:"leaderName"`
	LeaderEmail  string   `json:"leaderEmail"`
	MemberEmails []string `json:"memberEmails"`
}

type RegisterResponse struct {
	TeamID      string   `json:"teamId"`
	LeaderCode  string   `json:"leaderCode"`
	MemberCodes []string `json:"memberCodes"`
	Existing    bool     `json:"existing,omitempty"`
}

// createAttempts bounds retries on cross-team access-code collisions.
const createAttempts = 5

func handleRegister(logger *slog.Logger, store Store, mail mailer.Mailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.TeamName = strings.TrimSpace(req.TeamName)
		req.LeaderName = strings.TrimSpace(req.LeaderName)
		req.LeaderEmail = strings.TrimSpace(strings.ToLower(req.LeaderEmail))
		if req.TeamName == "" || req.LeaderName == "" || req.LeaderEmail == "" {
			writeError(w, http.StatusBadRequest, "teamName, leaderName and leaderEmail are required")
			return
		}
		if len(req.MemberEmails) > geoquest.MaxMembers-1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d member emails allowed", geoquest.MaxMembers-1))
			return
		}

		// Idempotent on team name OR leader email: re-registering
		// returns the existing row instead of duplicating.
		if existing, err := store.TeamByNameOrLeaderEmail(r.Context(), req.TeamName, req.LeaderEmail); err == nil {
			writeJSON(w, http.StatusOK, registerResponseFor(existing, true))
			return
		} else if !errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		zones, err := store.Zones(r.Context())
		if err != nil || len(zones) == 0 {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		zoneIDs := make([]int, len(zones))
		for i, z := range zones {
			zoneIDs[i] = z.ID
		}

		var team geoquest.Team
		for attempt := 0; ; attempt++ {
			team = buildTeam(req, zoneIDs)
			err = store.CreateTeam(r.Context(), team)
			if err == nil {
				break
			}
			if errors.Is(err, ErrTeamExists) {
				// Lost a race with a concurrent registration of the
				// same team; fall back to the idempotent read.
				if existing, lookupErr := store.TeamByNameOrLeaderEmail(r.Context(), req.TeamName, req.LeaderEmail); lookupErr == nil {
					writeJSON(w, http.StatusOK, registerResponseFor(existing, true))
					return
				}
				writeError(w, http.StatusConflict, "team name or leader email already registered")
				return
			}
			if errors.Is(err, ErrCodeTaken) && attempt < createAttempts {
				continue
			}
			logger.Error("registration failed", "team", req.TeamName, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("team registered", "team", team.Name, "id", team.ID, "zones", len(team.ZoneOrder))

		// Best-effort email delivery; never blocks or fails registration.
		recipients := make([]mailer.Recipient, 0, len(team.Members))
		for _, m := range team.Members {
			if m.Registered() {
				recipients = append(recipients, mailer.Recipient{Email: m.Email, Code: m.Code})
			}
		}
		go mail.Notify(recipients, team.Name)

		writeJSON(w, http.StatusCreated, registerResponseFor(team, false))
	}
}

func registerResponseFor(team geoquest.Team, existing bool) RegisterResponse {
	resp := RegisterResponse{
		TeamID:      team.ID,
		MemberCodes: []string{},
		Existing:    existing,
	}
	for _, m := range team.Members {
		if !m.Registered() {
			continue
		}
		if m.Role == geoquest.RoleLeader {
			resp.LeaderCode = m.Code
		} else {
			resp.MemberCodes = append(resp.MemberCodes, m.Code)
		}
	}
	return resp
}

func buildTeam(req RegisterRequest, zoneIDs []int) geoquest.Team {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	// One unique 4-digit code per filled slot. Uniqueness across teams
	// is enforced by the store; collisions there trigger a rebuild.
	codes := make(map[string]struct{}, geoquest.MaxMembers)
	nextCode := func() string {
		for {
			code := fmt.Sprintf("%04d", 1000+rng.IntN(9000))
			if _, dup := codes[code]; !dup {
				codes[code] = struct{}{}
				return code
			}
		}
	}

	members := []geoquest.Member{{
		Slot:   0,
		Role:   geoquest.RoleLeader,
		Email:  req.LeaderEmail,
		Code:   nextCode(),
		Active: true,
	}}
	for i, email := range req.MemberEmails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		members = append(members, geoquest.Member{
			Slot:  i + 1,
			Role:  geoquest.RoleMember,
			Email: email,
			Code:  nextCode(),
		})
	}

	return geoquest.Team{
		ID:            uuid.NewString(),
		Name:          req.TeamName,
		LeaderName:    req.LeaderName,
		Members:       members,
		ZoneOrder:     geoquest.ShuffledOrder(zoneIDs, rng),
		Stage:         geoquest.StageCodeEntry,
		GameStartTime: time.Now().UTC(),
	}
}
