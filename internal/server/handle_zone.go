package server

import (
	"net/http"
	"time"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

// ZoneInfo is the client-facing zone payload. The unlock code and the
// lore answer never leave the server.
type ZoneInfo struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Clue     string   `json:"clue"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type CurrentZoneResponse struct {
	Completed      bool      `json:"completed"`
	StartTime      time.Time `json:"startTime"`
	Stage          string    `json:"stage,omitempty"`
	ZonesRemaining int       `json:"zonesRemaining"`
	Zone           *ZoneInfo `json:"zone,omitempty"`
}

func handleCurrentZone(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		resp := CurrentZoneResponse{
			Completed: team.Completed(),
			StartTime: team.GameStartTime,
		}

		zoneID, ok := team.CurrentZoneID()
		if !ok {
			writeJSON(w, http.StatusOK, resp)
			return
		}

		zone, err := store.ZoneByID(r.Context(), zoneID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp.Stage = string(team.Stage)
		resp.ZonesRemaining = len(team.RemainingZones())
		resp.Zone = sanitizeZone(zone)
		writeJSON(w, http.StatusOK, resp)
	}
}

func sanitizeZone(z geoquest.Zone) *ZoneInfo {
	options := z.Options
	if options == nil {
		options = []string{}
	}
	return &ZoneInfo{
		ID:       z.ID,
		Name:     z.Name,
		Lat:      z.Lat,
		Lng:      z.Lng,
		Clue:     z.Clue,
		Question: z.Question,
		Options:  options,
	}
}
