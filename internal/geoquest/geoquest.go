// Package geoquest defines the core domain types and game math.
// It has zero external dependencies — everything here is pure Go.
package geoquest

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Stage is a team's position inside a single zone: first the unlock
// code, then the lore answer or photo check.
type Stage string

const (
	StageCodeEntry    Stage = "code_entry"
	StageVerification Stage = "verification"
)

type Role string

const (
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

// MaxMembers is the leader plus up to four registered members.
const MaxMembers = 5

type Member struct {
	Slot   int // 0 = leader, 1..4 = members
	Role   Role
	Email  string
	Code   string // 4-digit access code, unique across all teams
	Active bool
}

// Registered reports whether this slot was filled at registration.
func (m Member) Registered() bool {
	return m.Email != ""
}

type Team struct {
	ID                string
	Name              string
	LeaderName        string
	Members           []Member
	ZoneOrder         []int
	CurrentZoneIndex  int
	Stage             Stage
	UnlockedClueCount int
	GameStartTime     time.Time
	GameEndTime       *time.Time
}

// Completed reports whether the team has cleared every zone in its order.
func (t Team) Completed() bool {
	return t.CurrentZoneIndex >= len(t.ZoneOrder)
}

// CurrentZoneID returns the zone at the team's position in its order.
// ok is false once the team has completed all zones.
func (t Team) CurrentZoneID() (int, bool) {
	if t.Completed() {
		return 0, false
	}
	return t.ZoneOrder[t.CurrentZoneIndex], true
}

// RemainingZones returns the tail of the order after the current zone.
func (t Team) RemainingZones() []int {
	if t.Completed() {
		return nil
	}
	return t.ZoneOrder[t.CurrentZoneIndex+1:]
}

// MemberByCode finds the member slot owning the given access code.
func (t Team) MemberByCode(code string) (Member, bool) {
	for _, m := range t.Members {
		if m.Registered() && m.Code == code {
			return m, true
		}
	}
	return Member{}, false
}

// AnyActive folds over the registered slots; unregistered slots are
// vacuously inactive.
func (t Team) AnyActive() bool {
	for _, m := range t.Members {
		if m.Registered() && m.Active {
			return true
		}
	}
	return false
}

// Elapsed is the team's total game duration. ok is false while the
// game is still running.
func (t Team) Elapsed() (time.Duration, bool) {
	if t.GameEndTime == nil {
		return 0, false
	}
	return t.GameEndTime.Sub(t.GameStartTime), true
}

type Zone struct {
	ID           int
	Name         string
	Lat          float64
	Lng          float64
	RadiusMeters float64 // 0 = no radius configured
	UnlockCode   string  // secret, never serialized to clients
	Question     string
	Options      []string
	Answer       string // secret
	Clue         string
}

// Clue is a narrative fragment unlocked per cleared zone, shown in the
// archive in unlock order regardless of which zone was cleared.
type Clue struct {
	Number    int
	Text      string
	ImagePath string
}

// ShuffledOrder returns a uniformly random permutation of ids using
// Fisher–Yates. The input slice is not modified.
func ShuffledOrder(ids []int, r *rand.Rand) []int {
	order := make([]int, len(ids))
	copy(order, ids)
	r.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

// AnswerMatches compares a submitted lore answer against the correct
// one: case-insensitive, whitespace-trimmed exact match.
func AnswerMatches(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

// FormatElapsed renders a duration as whole hours:minutes, e.g. "01:42".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}
