package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

type ctxKey int

const ctxKeyTeam ctxKey = iota

// teamMiddleware resolves {teamID} and loads the team row into the
// request context. Handlers read the loaded snapshot; mutations go
// through the store's guarded updates, so a stale snapshot can only
// turn into a rejected transition, never a lost one.
func teamMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "teamID")
			if id == "" {
				writeError(w, http.StatusNotFound, "team not found")
				return
			}

			team, err := store.TeamByID(r.Context(), id)
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "team not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyTeam, team)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func teamFrom(r *http.Request) geoquest.Team {
	return r.Context().Value(ctxKeyTeam).(geoquest.Team)
}
