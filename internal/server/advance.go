package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

type advanceResult struct {
	GameComplete bool
	ClueNumber   int
	NextZoneID   int // zero when the game is complete
}

// advanceTeam performs the zone-clearance transition shared by the lore
// answer, photo verification, and skip paths: one guarded update that
// bumps the clue counter and the zone index together, stamping the end
// time on the final zone. ok is false when a concurrent request already
// moved the team past (fromIndex, fromStage); the caller reports a
// conflict and must not have mutated anything.
func advanceTeam(ctx context.Context, logger *slog.Logger, broker *Broker, store Store,
	team geoquest.Team, fromStage geoquest.Stage, action string) (advanceResult, bool, error) {

	zoneID, _ := team.CurrentZoneID()
	lastZone := team.CurrentZoneIndex == len(team.ZoneOrder)-1

	advanced, err := store.AdvanceZone(ctx, team.ID, team.CurrentZoneIndex, fromStage, lastZone, time.Now().UTC())
	if err != nil {
		return advanceResult{}, false, err
	}
	if !advanced {
		return advanceResult{}, false, nil
	}

	if err := store.RecordProgress(ctx, team.ID, zoneID, action, true); err != nil {
		logger.Warn("recording progress failed", "team", team.ID, "error", err)
	}

	res := advanceResult{
		GameComplete: lastZone,
		ClueNumber:   team.UnlockedClueCount + 1,
	}
	broker.Publish(team.ID, Event{Type: eventZoneCleared, ZoneID: zoneID, ClueNumber: res.ClueNumber})

	if lastZone {
		broker.Publish(team.ID, Event{Type: eventGameCompleted})
	} else {
		res.NextZoneID = team.ZoneOrder[team.CurrentZoneIndex+1]
	}
	return res, true, nil
}
