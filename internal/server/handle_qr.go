package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

const organizerKeyHeader = "X-Organizer-Key"

// handleZoneQR renders a zone's unlock code as a printable QR PNG for
// organizers to post at the physical site. Guarded by the organizer
// key; this is the only read path that touches a zone secret.
func handleZoneQR(store Store, organizerKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(organizerKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(organizerKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "organizer key required")
			return
		}

		zoneID, err := strconv.Atoi(chi.URLParam(r, "zoneID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid zone id")
			return
		}

		zone, err := store.ZoneByID(r.Context(), zoneID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "zone not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		png, err := qrcode.Encode(zone.UnlockCode, qrcode.Medium, 512)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
