package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tinkerhub/geoquest/internal/database"
	"github.com/tinkerhub/geoquest/internal/geoquest"
	"github.com/tinkerhub/geoquest/internal/migrations"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewSQLiteStore(db)
}

func fixtureTeam(id, name string) geoquest.Team {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return geoquest.Team{
		ID:         id,
		Name:       name,
		LeaderName: "Lead " + name,
		Members: []geoquest.Member{
			{Slot: 0, Role: geoquest.RoleLeader, Email: name + "-lead@example.com", Code: "1" + id[len(id)-3:], Active: true},
			{Slot: 1, Role: geoquest.RoleMember, Email: name + "-m1@example.com", Code: "2" + id[len(id)-3:]},
		},
		ZoneOrder:     []int{3, 1, 2},
		Stage:         geoquest.StageCodeEntry,
		GameStartTime: start,
	}
}

func TestSQLiteCreateAndLoadTeam(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	team := fixtureTeam("team-001", "Falcons")
	if err := store.CreateTeam(ctx, team); err != nil {
		t.Fatalf("create team: %v", err)
	}

	got, err := store.TeamByID(ctx, "team-001")
	if err != nil {
		t.Fatalf("load team: %v", err)
	}
	if got.Name != "Falcons" || got.LeaderName != "Lead Falcons" {
		t.Errorf("unexpected team: %+v", got)
	}
	if len(got.ZoneOrder) != 3 || got.ZoneOrder[0] != 3 {
		t.Errorf("zone order lost in round trip: %v", got.ZoneOrder)
	}
	if got.Stage != geoquest.StageCodeEntry {
		t.Errorf("expected stage code_entry, got %q", got.Stage)
	}
	if !got.GameStartTime.Equal(team.GameStartTime) {
		t.Errorf("start time lost: %v vs %v", got.GameStartTime, team.GameStartTime)
	}
	if got.GameEndTime != nil {
		t.Error("fresh team must have no end time")
	}
	if len(got.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(got.Members))
	}
	if !got.Members[0].Active || got.Members[1].Active {
		t.Errorf("active flags lost: %+v", got.Members)
	}

	// Lookup by member code and by name/email.
	byCode, err := store.TeamByMemberCode(ctx, team.Members[1].Code)
	if err != nil || byCode.ID != "team-001" {
		t.Errorf("lookup by code: got %v, %v", byCode.ID, err)
	}
	byName, err := store.TeamByNameOrLeaderEmail(ctx, "Falcons", "nobody@example.com")
	if err != nil || byName.ID != "team-001" {
		t.Errorf("lookup by name: got %v, %v", byName.ID, err)
	}
	byEmail, err := store.TeamByNameOrLeaderEmail(ctx, "Nobody", "Falcons-lead@example.com")
	if err != nil || byEmail.ID != "team-001" {
		t.Errorf("lookup by leader email: got %v, %v", byEmail.ID, err)
	}
	if _, err := store.TeamByMemberCode(ctx, "0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown code: expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteUniqueConstraints(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	if err := store.CreateTeam(ctx, fixtureTeam("team-001", "Falcons")); err != nil {
		t.Fatalf("create team: %v", err)
	}

	// Same name.
	dup := fixtureTeam("team-002", "Falcons")
	if err := store.CreateTeam(ctx, dup); !errors.Is(err, ErrTeamExists) {
		t.Errorf("duplicate name: expected ErrTeamExists, got %v", err)
	}

	// Same access code across teams.
	other := fixtureTeam("team-003", "Hawks")
	other.Members[0].Code = "1001" // collides with team-001's leader
	if err := store.CreateTeam(ctx, other); !errors.Is(err, ErrCodeTaken) {
		t.Errorf("duplicate code: expected ErrCodeTaken, got %v", err)
	}
}

func TestSQLiteStageTransitions(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	team := fixtureTeam("team-001", "Falcons")
	if err := store.CreateTeam(ctx, team); err != nil {
		t.Fatalf("create team: %v", err)
	}

	// Unlock succeeds exactly once per zone.
	ok, err := store.BeginVerification(ctx, team.ID, 0)
	if err != nil || !ok {
		t.Fatalf("begin verification: got %v, %v", ok, err)
	}
	ok, _ = store.BeginVerification(ctx, team.ID, 0)
	if ok {
		t.Error("second unlock must lose the compare-and-set")
	}

	// Advance requires the matching index and stage.
	now := time.Now()
	ok, _ = store.AdvanceZone(ctx, team.ID, 1, geoquest.StageVerification, false, now)
	if ok {
		t.Error("advance with a stale index must fail")
	}
	ok, err = store.AdvanceZone(ctx, team.ID, 0, geoquest.StageVerification, false, now)
	if err != nil || !ok {
		t.Fatalf("advance: got %v, %v", ok, err)
	}

	got, _ := store.TeamByID(ctx, team.ID)
	if got.CurrentZoneIndex != 1 || got.Stage != geoquest.StageCodeEntry || got.UnlockedClueCount != 1 {
		t.Errorf("unexpected state after advance: %+v", got)
	}
	if got.GameEndTime != nil {
		t.Error("non-final advance must not stamp an end time")
	}

	// Clearing the final zone stamps the end time.
	store.BeginVerification(ctx, team.ID, 1)
	store.AdvanceZone(ctx, team.ID, 1, geoquest.StageVerification, false, now)
	store.BeginVerification(ctx, team.ID, 2)
	ok, err = store.AdvanceZone(ctx, team.ID, 2, geoquest.StageVerification, true, now)
	if err != nil || !ok {
		t.Fatalf("final advance: got %v, %v", ok, err)
	}
	got, _ = store.TeamByID(ctx, team.ID)
	if got.GameEndTime == nil {
		t.Fatal("final advance must stamp the end time")
	}
}

func TestSQLiteGameEndAndRanking(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	fast := fixtureTeam("team-001", "Fast")
	slow := fixtureTeam("team-002", "Slow")
	for _, team := range []geoquest.Team{fast, slow} {
		if err := store.CreateTeam(ctx, team); err != nil {
			t.Fatalf("create team %s: %v", team.Name, err)
		}
	}

	fastEnd := start.Add(90 * time.Minute)
	slowEnd := start.Add(3 * time.Hour)
	if ok, err := store.SetGameEnd(ctx, "team-002", slowEnd); err != nil || !ok {
		t.Fatalf("set slow end: got %v, %v", ok, err)
	}
	if ok, err := store.SetGameEnd(ctx, "team-001", fastEnd); err != nil || !ok {
		t.Fatalf("set fast end: got %v, %v", ok, err)
	}

	// The end time is write-once.
	if ok, _ := store.SetGameEnd(ctx, "team-001", slowEnd); ok {
		t.Error("second SetGameEnd must be a no-op")
	}
	got, _ := store.TeamByID(ctx, "team-001")
	if !got.GameEndTime.Equal(fastEnd) {
		t.Errorf("end time moved: %v", got.GameEndTime)
	}

	rank, err := store.RankOf(ctx, fastEnd, "team-001")
	if err != nil || rank != 1 {
		t.Errorf("fast rank: got %d, %v", rank, err)
	}
	rank, err = store.RankOf(ctx, slowEnd, "team-002")
	if err != nil || rank != 2 {
		t.Errorf("slow rank: got %d, %v", rank, err)
	}

	completed, err := store.CompletedTeams(ctx)
	if err != nil {
		t.Fatalf("completed teams: %v", err)
	}
	if len(completed) != 2 || completed[0].Name != "Fast" || completed[1].Name != "Slow" {
		t.Errorf("unexpected ordering: %+v", completed)
	}
}

func TestSQLiteSubsecondOrdering(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	first := fixtureTeam("team-001", "First")
	second := fixtureTeam("team-002", "Second")
	for _, team := range []geoquest.Team{first, second} {
		if err := store.CreateTeam(ctx, team); err != nil {
			t.Fatalf("create team %s: %v", team.Name, err)
		}
	}

	// 100 ms vs 120 ms into the same second: stored text must still
	// compare in chronological order.
	firstEnd := start.Add(100 * time.Millisecond)
	secondEnd := start.Add(120 * time.Millisecond)
	if ok, err := store.SetGameEnd(ctx, "team-001", firstEnd); err != nil || !ok {
		t.Fatalf("set first end: got %v, %v", ok, err)
	}
	if ok, err := store.SetGameEnd(ctx, "team-002", secondEnd); err != nil || !ok {
		t.Fatalf("set second end: got %v, %v", ok, err)
	}

	rank, err := store.RankOf(ctx, firstEnd, "team-001")
	if err != nil || rank != 1 {
		t.Errorf("first rank: got %d, %v", rank, err)
	}
	rank, err = store.RankOf(ctx, secondEnd, "team-002")
	if err != nil || rank != 2 {
		t.Errorf("second rank: got %d, %v", rank, err)
	}

	completed, err := store.CompletedTeams(ctx)
	if err != nil {
		t.Fatalf("completed teams: %v", err)
	}
	if len(completed) != 2 || completed[0].Name != "First" || completed[1].Name != "Second" {
		t.Errorf("unexpected ordering: %+v", completed)
	}
	if !completed[0].GameEndTime.Equal(firstEnd) {
		t.Errorf("end time lost precision: %v", completed[0].GameEndTime)
	}
}

func TestSQLiteZonesAndClues(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	if err := store.SeedZones(ctx, campusZones(), storyClues()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Idempotent.
	if err := store.SeedZones(ctx, campusZones(), storyClues()); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	zones, err := store.Zones(ctx)
	if err != nil {
		t.Fatalf("zones: %v", err)
	}
	if len(zones) != 6 {
		t.Fatalf("expected 6 zones, got %d", len(zones))
	}

	zone, err := store.ZoneByID(ctx, 1)
	if err != nil {
		t.Fatalf("zone by id: %v", err)
	}
	if zone.UnlockCode == "" || zone.Answer == "" || len(zone.Options) != 4 {
		t.Errorf("zone round trip lost fields: %+v", zone)
	}
	if _, err := store.ZoneByID(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown zone: expected ErrNotFound, got %v", err)
	}

	clues, err := store.Clues(ctx, 2)
	if err != nil {
		t.Fatalf("clues: %v", err)
	}
	if len(clues) != 2 || clues[0].Number != 1 || clues[1].Number != 2 {
		t.Errorf("expected clues 1..2, got %+v", clues)
	}
}

func TestSQLiteMemberActive(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	team := fixtureTeam("team-001", "Falcons")
	if err := store.CreateTeam(ctx, team); err != nil {
		t.Fatalf("create team: %v", err)
	}

	if err := store.SetMemberActive(ctx, team.ID, 1, true); err != nil {
		t.Fatalf("activate member: %v", err)
	}
	got, _ := store.TeamByID(ctx, team.ID)
	if !got.Members[1].Active {
		t.Error("member activation lost")
	}

	if err := store.SetMemberActive(ctx, team.ID, 9, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown slot: expected ErrNotFound, got %v", err)
	}
}
