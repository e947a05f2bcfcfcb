package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tinkerhub/geoquest/internal/geoquest"
	"github.com/tinkerhub/geoquest/internal/photoverify"
)

// maxPhotoBytes caps uploaded image size at 10 MiB.
const maxPhotoBytes = 10 << 20

type PhotoResponse struct {
	Verified         bool    `json:"verified"`
	Confidence       float64 `json:"confidence,omitempty"`
	IdentifiedObject string  `json:"identifiedObject,omitempty"`
	GameComplete     bool    `json:"gameComplete,omitempty"`
	ClueNumber       int     `json:"clueNumber,omitempty"`
	NextZoneID       int     `json:"nextZoneId,omitempty"`
}

// handlePhoto proxies the uploaded image to the external
// object-recognition service. Only a "same" verdict clears the zone;
// an unreachable or failing service is reported upstream-unavailable,
// never treated as success.
func handlePhoto(logger *slog.Logger, broker *Broker, store Store, verifier *photoverify.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		if !verifier.Configured() {
			writeError(w, http.StatusServiceUnavailable, "photo verification is not configured")
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

		r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
		file, _, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "image file is required")
			return
		}
		defer file.Close()

		result, err := verifier.Verify(r.Context(), zoneID, team.ID, file)
		if errors.Is(err, photoverify.ErrUnavailable) {
			logger.Error("photo verification unavailable", "team", team.ID, "zone", zoneID, "error", err)
			writeError(w, http.StatusBadGateway, "verification service unavailable")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !result.Match() {
			if err := store.RecordProgress(r.Context(), team.ID, zoneID, actionPhotoVerify, false); err != nil {
				logger.Warn("recording progress failed", "team", team.ID, "error", err)
			}
			writeJSON(w, http.StatusUnprocessableEntity, PhotoResponse{
				Verified:         false,
				Confidence:       result.Confidence,
				IdentifiedObject: result.IdentifiedObject,
			})
			return
		}

		res, advanced, err := advanceTeam(r.Context(), logger, broker, store, team, geoquest.StageVerification, actionPhotoVerify)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !advanced {
			writeError(w, http.StatusConflict, "zone already cleared")
			return
		}

		writeJSON(w, http.StatusOK, PhotoResponse{
			Verified:         true,
			Confidence:       result.Confidence,
			IdentifiedObject: result.IdentifiedObject,
			GameComplete:     res.GameComplete,
			ClueNumber:       res.ClueNumber,
			NextZoneID:       res.NextZoneID,
		})
	}
}
