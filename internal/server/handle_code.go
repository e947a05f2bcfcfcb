package server

import (
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

type CodeSubmitRequest struct {
	Code string   `json:"code"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

type CodeSubmitResponse struct {
	Accepted       bool     `json:"accepted"`
	Verdict        string   `json:"verdict"` // accepted | wrong_code | too_far
	DistanceMeters int      `json:"distanceMeters,omitempty"`
	Question       string   `json:"question,omitempty"`
	Options        []string `json:"options,omitempty"`
}

// handleCodeSubmit checks the submitted unlock code (and GPS position,
// when supplied) against the team's current zone. Success moves the
// team to the lore/photo stage; the zone index does not move yet.
func handleCodeSubmit(logger *slog.Logger, broker *Broker, store Store, tolerance, fallbackRadius float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		var req CodeSubmitRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Code = strings.TrimSpace(req.Code)
		if req.Code == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}

		zoneID, ok := team.CurrentZoneID()
		if !ok {
			writeError(w, http.StatusConflict, "all zones completed")
			return
		}
		if team.Stage != geoquest.StageCodeEntry {
			writeError(w, http.StatusConflict, "zone already unlocked")
			return
		}

		zone, err := store.ZoneByID(r.Context(), zoneID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Exact match against the current zone's secret only.
		if req.Code != zone.UnlockCode {
			writeJSON(w, http.StatusUnprocessableEntity, CodeSubmitResponse{Verdict: "wrong_code"})
			return
		}

		// Geofence is enforced only when coordinates are supplied;
		// code-only verification stays available without GPS.
		if req.Lat != nil && req.Lng != nil {
			distance, inside := geoquest.CheckGeofence(zone, *req.Lat, *req.Lng, tolerance, fallbackRadius)
			if !inside {
				writeJSON(w, http.StatusUnprocessableEntity, CodeSubmitResponse{
					Verdict:        "too_far",
					DistanceMeters: int(math.Round(distance)),
				})
				return
			}
		}

		unlocked, err := store.BeginVerification(r.Context(), team.ID, team.CurrentZoneIndex)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !unlocked {
			// Another member unlocked or advanced this zone first.
			writeError(w, http.StatusConflict, "zone already unlocked")
			return
		}

		if err := store.RecordProgress(r.Context(), team.ID, zone.ID, actionCodeSubmit, true); err != nil {
			logger.Warn("recording progress failed", "team", team.ID, "error", err)
		}
		broker.Publish(team.ID, Event{Type: eventZoneUnlocked, ZoneID: zone.ID})

		writeJSON(w, http.StatusOK, CodeSubmitResponse{
			Accepted: true,
			Verdict:  "accepted",
			Question: zone.Question,
			Options:  zone.Options,
		})
	}
}
