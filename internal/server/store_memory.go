package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

// MemoryStore is the non-persistent Store implementation, selected by
// STORE=memory for demos and tests. A single mutex serializes all
// mutations, which trivially satisfies the per-team ordering rules.
type MemoryStore struct {
	mu       sync.RWMutex
	teams    map[string]*geoquest.Team
	byCode   map[string]string // access code -> team id
	zones    map[int]geoquest.Zone
	clues    []geoquest.Clue
	progress []progressEntry
}

type progressEntry struct {
	TeamID    string
	ZoneID    int
	Action    string
	IsCorrect bool
	CreatedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:  make(map[string]*geoquest.Team),
		byCode: make(map[string]string),
		zones:  make(map[int]geoquest.Zone),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) CreateTeam(_ context.Context, team geoquest.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.teams {
		if t.Name == team.Name || t.Members[0].Email == team.Members[0].Email {
			return ErrTeamExists
		}
	}
	for _, m := range team.Members {
		if !m.Registered() {
			continue
		}
		if _, taken := s.byCode[m.Code]; taken {
			return ErrCodeTaken
		}
	}

	stored := copyTeam(team)
	s.teams[team.ID] = &stored
	for _, m := range stored.Members {
		if m.Registered() {
			s.byCode[m.Code] = team.ID
		}
	}
	return nil
}

func (s *MemoryStore) TeamByID(_ context.Context, id string) (geoquest.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return geoquest.Team{}, ErrNotFound
	}
	return copyTeam(*t), nil
}

func (s *MemoryStore) TeamByNameOrLeaderEmail(_ context.Context, name, email string) (geoquest.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.teams {
		if t.Name == name || t.Members[0].Email == email {
			return copyTeam(*t), nil
		}
	}
	return geoquest.Team{}, ErrNotFound
}

func (s *MemoryStore) TeamByMemberCode(_ context.Context, code string) (geoquest.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return geoquest.Team{}, ErrNotFound
	}
	return copyTeam(*s.teams[id]), nil
}

func (s *MemoryStore) SetMemberActive(_ context.Context, teamID string, slot int, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return ErrNotFound
	}
	for i := range t.Members {
		if t.Members[i].Slot == slot {
			t.Members[i].Active = active
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Zones(_ context.Context) ([]geoquest.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zones := make([]geoquest.Zone, 0, len(s.zones))
	for _, z := range s.zones {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones, nil
}

func (s *MemoryStore) ZoneByID(_ context.Context, id int) (geoquest.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	z, ok := s.zones[id]
	if !ok {
		return geoquest.Zone{}, ErrNotFound
	}
	return z, nil
}

func (s *MemoryStore) BeginVerification(_ context.Context, teamID string, zoneIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return false, ErrNotFound
	}
	if t.CurrentZoneIndex != zoneIndex || t.Stage != geoquest.StageCodeEntry {
		return false, nil
	}
	t.Stage = geoquest.StageVerification
	return true, nil
}

func (s *MemoryStore) AdvanceZone(_ context.Context, teamID string, fromIndex int, fromStage geoquest.Stage, lastZone bool, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return false, ErrNotFound
	}
	if t.CurrentZoneIndex != fromIndex || t.Stage != fromStage {
		return false, nil
	}
	t.CurrentZoneIndex++
	t.UnlockedClueCount++
	t.Stage = geoquest.StageCodeEntry
	if lastZone && t.GameEndTime == nil {
		end := now.UTC()
		t.GameEndTime = &end
	}
	return true, nil
}

func (s *MemoryStore) SetGameEnd(_ context.Context, teamID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return false, ErrNotFound
	}
	if t.GameEndTime != nil {
		return false, nil
	}
	end := now.UTC()
	t.GameEndTime = &end
	return true, nil
}

func (s *MemoryStore) RankOf(_ context.Context, endTime time.Time, teamID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rank := 1
	for id, t := range s.teams {
		if t.GameEndTime == nil {
			continue
		}
		if t.GameEndTime.Before(endTime) || (t.GameEndTime.Equal(endTime) && id < teamID) {
			rank++
		}
	}
	return rank, nil
}

func (s *MemoryStore) CompletedTeams(_ context.Context) ([]CompletedTeam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var teams []CompletedTeam
	for _, t := range s.teams {
		if t.GameEndTime == nil {
			continue
		}
		teams = append(teams, CompletedTeam{
			ID:            t.ID,
			Name:          t.Name,
			GameStartTime: t.GameStartTime,
			GameEndTime:   *t.GameEndTime,
		})
	}
	sort.Slice(teams, func(i, j int) bool {
		if !teams[i].GameEndTime.Equal(teams[j].GameEndTime) {
			return teams[i].GameEndTime.Before(teams[j].GameEndTime)
		}
		return teams[i].ID < teams[j].ID
	})
	return teams, nil
}

func (s *MemoryStore) Clues(_ context.Context, upTo int) ([]geoquest.Clue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var clues []geoquest.Clue
	for _, c := range s.clues {
		if c.Number <= upTo {
			clues = append(clues, c)
		}
	}
	return clues, nil
}

func (s *MemoryStore) RecordProgress(_ context.Context, teamID string, zoneID int, action string, correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, progressEntry{
		TeamID:    teamID,
		ZoneID:    zoneID,
		Action:    action,
		IsCorrect: correct,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *MemoryStore) SeedZones(_ context.Context, zones []geoquest.Zone, clues []geoquest.Clue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.zones) > 0 {
		return nil
	}
	for _, z := range zones {
		s.zones[z.ID] = z
	}
	s.clues = append(s.clues, clues...)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func copyTeam(t geoquest.Team) geoquest.Team {
	c := t
	c.Members = append([]geoquest.Member(nil), t.Members...)
	c.ZoneOrder = append([]int(nil), t.ZoneOrder...)
	if t.GameEndTime != nil {
		end := *t.GameEndTime
		c.GameEndTime = &end
	}
	return c
}
