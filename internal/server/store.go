package server

import (
	"context"
	"errors"
	"time"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrTeamExists signals a registration conflict on team name or
	// leader email.
	ErrTeamExists = errors.New("team already exists")

	// ErrCodeTaken signals an access-code collision with another team.
	// The caller regenerates codes and retries.
	ErrCodeTaken = errors.New("access code already in use")
)

// CompletedTeam is one finished team for the leaderboard, ordered by
// end time.
type CompletedTeam struct {
	ID            string
	Name          string
	GameStartTime time.Time
	GameEndTime   time.Time
}

// Store is the Team Record Store. Implementations must serialize
// mutations per team row: the stage/index transitions and the
// game-end timestamp are compare-and-set operations so racing requests
// cannot lose updates, and game_end_time is write-once.
type Store interface {
	// CreateTeam inserts the team and its member slots atomically.
	CreateTeam(ctx context.Context, team geoquest.Team) error
	TeamByID(ctx context.Context, id string) (geoquest.Team, error)
	TeamByNameOrLeaderEmail(ctx context.Context, name, email string) (geoquest.Team, error)
	TeamByMemberCode(ctx context.Context, code string) (geoquest.Team, error)

	// SetMemberActive claims only the given slot's flag; concurrent
	// logins by other members of the same team are unaffected.
	SetMemberActive(ctx context.Context, teamID string, slot int, active bool) error

	Zones(ctx context.Context) ([]geoquest.Zone, error)
	ZoneByID(ctx context.Context, id int) (geoquest.Zone, error)

	// BeginVerification moves the team from code entry to the lore/photo
	// stage. Guarded on (index, code_entry); returns false if another
	// request got there first.
	BeginVerification(ctx context.Context, teamID string, zoneIndex int) (bool, error)

	// AdvanceZone atomically bumps current_zone_index and
	// unlocked_clue_count and resets the stage, guarded on (fromIndex,
	// fromStage). When lastZone is set it also stamps game_end_time if
	// still null. Returns false if the guard did not match.
	AdvanceZone(ctx context.Context, teamID string, fromIndex int, fromStage geoquest.Stage, lastZone bool, now time.Time) (bool, error)

	// SetGameEnd stamps game_end_time if still null. Returns whether
	// this call performed the write.
	SetGameEnd(ctx context.Context, teamID string, now time.Time) (bool, error)

	// RankOf counts completed teams that finished strictly earlier,
	// tie-broken by id, plus one.
	RankOf(ctx context.Context, endTime time.Time, teamID string) (int, error)
	CompletedTeams(ctx context.Context) ([]CompletedTeam, error)

	Clues(ctx context.Context, upTo int) ([]geoquest.Clue, error)

	// RecordProgress appends to the progress log. Best-effort from the
	// callers' perspective; failures are logged, never fatal.
	RecordProgress(ctx context.Context, teamID string, zoneID int, action string, correct bool) error

	// SeedZones loads zone reference data and clues if none exist yet.
	SeedZones(ctx context.Context, zones []geoquest.Zone, clues []geoquest.Clue) error

	Ping(ctx context.Context) error
}

// Progress log actions.
const (
	actionCodeSubmit  = "CODE_SUBMIT"
	actionLoreAnswer  = "LORE_ANSWER"
	actionPhotoVerify = "PHOTO_VERIFY"
	actionZoneSkipped = "ZONE_SKIPPED"
)
