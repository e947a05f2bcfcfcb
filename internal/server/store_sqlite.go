package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tinkerhub/geoquest/internal/geoquest"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

var _ Store = (*SQLiteStore)(nil)

// timeLayout keeps a fixed-width fraction so lexicographic comparison
// of the TEXT columns matches chronological order. RFC3339Nano would
// trim trailing zeros and break game_end_time ordering within a second.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

func (s *SQLiteStore) CreateTeam(ctx context.Context, team geoquest.Team) error {
	orderJSON, err := json.Marshal(team.ZoneOrder)
	if err != nil {
		return fmt.Errorf("encoding zone order: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO teams (id, name, leader_name, leader_email, zone_order,
			current_zone_index, stage, unlocked_clue_count, game_start_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, team.ID, team.Name, team.LeaderName, team.Members[0].Email, string(orderJSON),
		team.CurrentZoneIndex, string(team.Stage), team.UnlockedClueCount,
		formatTime(team.GameStartTime))
	if err != nil {
		return uniqueErr(err)
	}

	for _, m := range team.Members {
		if !m.Registered() {
			continue
		}
		active := 0
		if m.Active {
			active = 1
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO members (team_id, slot, role, email, code, active)
			VALUES (?, ?, ?, ?, ?, ?)
		`, team.ID, m.Slot, string(m.Role), m.Email, m.Code, active)
		if err != nil {
			return uniqueErr(err)
		}
	}

	return tx.Commit()
}

// uniqueErr maps SQLite unique-constraint violations to the store's
// sentinel errors.
func uniqueErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "members.code"):
		return ErrCodeTaken
	case strings.Contains(msg, "teams.name"), strings.Contains(msg, "teams.leader_email"):
		return ErrTeamExists
	default:
		return err
	}
}

func (s *SQLiteStore) TeamByID(ctx context.Context, id string) (geoquest.Team, error) {
	return s.loadTeam(ctx, `WHERE t.id = ?`, id)
}

func (s *SQLiteStore) TeamByNameOrLeaderEmail(ctx context.Context, name, email string) (geoquest.Team, error) {
	return s.loadTeam(ctx, `WHERE t.name = ? OR t.leader_email = ?`, name, email)
}

func (s *SQLiteStore) TeamByMemberCode(ctx context.Context, code string) (geoquest.Team, error) {
	var teamID string
	err := s.db.QueryRowContext(ctx, `
		SELECT team_id FROM members WHERE code = ?
	`, code).Scan(&teamID)
	if errors.Is(err, sql.ErrNoRows) {
		return geoquest.Team{}, ErrNotFound
	}
	if err != nil {
		return geoquest.Team{}, err
	}
	return s.TeamByID(ctx, teamID)
}

func (s *SQLiteStore) loadTeam(ctx context.Context, where string, args ...any) (geoquest.Team, error) {
	var (
		t         geoquest.Team
		orderJSON string
		stage     string
		start     string
		end       sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.name, t.leader_name, t.zone_order, t.current_zone_index,
			t.stage, t.unlocked_clue_count, t.game_start_time, t.game_end_time
		FROM teams t `+where,
		args...,
	).Scan(&t.ID, &t.Name, &t.LeaderName, &orderJSON, &t.CurrentZoneIndex,
		&stage, &t.UnlockedClueCount, &start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}

	t.Stage = geoquest.Stage(stage)
	if err := json.Unmarshal([]byte(orderJSON), &t.ZoneOrder); err != nil {
		return t, fmt.Errorf("decoding zone order: %w", err)
	}
	if t.GameStartTime, err = parseTime(start); err != nil {
		return t, fmt.Errorf("parsing game_start_time: %w", err)
	}
	if end.Valid {
		et, err := parseTime(end.String)
		if err != nil {
			return t, fmt.Errorf("parsing game_end_time: %w", err)
		}
		t.GameEndTime = &et
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT slot, role, email, code, active
		FROM members WHERE team_id = ? ORDER BY slot
	`, t.ID)
	if err != nil {
		return t, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m      geoquest.Member
			role   string
			active int
		)
		if err := rows.Scan(&m.Slot, &role, &m.Email, &m.Code, &active); err != nil {
			return t, err
		}
		m.Role = geoquest.Role(role)
		m.Active = active == 1
		t.Members = append(t.Members, m)
	}
	return t, rows.Err()
}

func (s *SQLiteStore) SetMemberActive(ctx context.Context, teamID string, slot int, active bool) error {
	flag := 0
	if active {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE members SET active = ? WHERE team_id = ? AND slot = ?
	`, flag, teamID, slot)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Zones(ctx context.Context) ([]geoquest.Zone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, lat, lng, radius_meters, unlock_code, question, options, answer, clue
		FROM zones ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []geoquest.Zone
	for rows.Next() {
		z, err := scanZone(rows.Scan)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (s *SQLiteStore) ZoneByID(ctx context.Context, id int) (geoquest.Zone, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, lat, lng, radius_meters, unlock_code, question, options, answer, clue
		FROM zones WHERE id = ?
	`, id)
	z, err := scanZone(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return z, ErrNotFound
	}
	return z, err
}

func scanZone(scan func(...any) error) (geoquest.Zone, error) {
	var (
		z           geoquest.Zone
		optionsJSON string
	)
	err := scan(&z.ID, &z.Name, &z.Lat, &z.Lng, &z.RadiusMeters,
		&z.UnlockCode, &z.Question, &optionsJSON, &z.Answer, &z.Clue)
	if err != nil {
		return z, err
	}
	if err := json.Unmarshal([]byte(optionsJSON), &z.Options); err != nil {
		return z, fmt.Errorf("decoding zone options: %w", err)
	}
	return z, nil
}

func (s *SQLiteStore) BeginVerification(ctx context.Context, teamID string, zoneIndex int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams SET stage = ?
		WHERE id = ? AND current_zone_index = ? AND stage = ?
	`, string(geoquest.StageVerification), teamID, zoneIndex, string(geoquest.StageCodeEntry))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *SQLiteStore) AdvanceZone(ctx context.Context, teamID string, fromIndex int, fromStage geoquest.Stage, lastZone bool, now time.Time) (bool, error) {
	last := 0
	if lastZone {
		last = 1
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams SET
			current_zone_index = current_zone_index + 1,
			unlocked_clue_count = unlocked_clue_count + 1,
			stage = ?,
			game_end_time = CASE WHEN ? = 1 AND game_end_time IS NULL THEN ? ELSE game_end_time END
		WHERE id = ? AND current_zone_index = ? AND stage = ?
	`, string(geoquest.StageCodeEntry), last, formatTime(now),
		teamID, fromIndex, string(fromStage))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *SQLiteStore) SetGameEnd(ctx context.Context, teamID string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams SET game_end_time = ?
		WHERE id = ? AND game_end_time IS NULL
	`, formatTime(now), teamID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *SQLiteStore) RankOf(ctx context.Context, endTime time.Time, teamID string) (int, error) {
	var count int
	end := formatTime(endTime)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM teams
		WHERE game_end_time IS NOT NULL
		  AND (game_end_time < ? OR (game_end_time = ? AND id < ?))
	`, end, end, teamID).Scan(&count)
	return count + 1, err
}

func (s *SQLiteStore) CompletedTeams(ctx context.Context) ([]CompletedTeam, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, game_start_time, game_end_time
		FROM teams
		WHERE game_end_time IS NOT NULL
		ORDER BY game_end_time, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []CompletedTeam
	for rows.Next() {
		var (
			t          CompletedTeam
			start, end string
		)
		if err := rows.Scan(&t.ID, &t.Name, &start, &end); err != nil {
			return nil, err
		}
		if t.GameStartTime, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("parsing game_start_time: %w", err)
		}
		if t.GameEndTime, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("parsing game_end_time: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *SQLiteStore) Clues(ctx context.Context, upTo int) ([]geoquest.Clue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, text, image_path
		FROM clues WHERE number <= ? ORDER BY number
	`, upTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clues []geoquest.Clue
	for rows.Next() {
		var c geoquest.Clue
		if err := rows.Scan(&c.Number, &c.Text, &c.ImagePath); err != nil {
			return nil, err
		}
		clues = append(clues, c)
	}
	return clues, rows.Err()
}

func (s *SQLiteStore) RecordProgress(ctx context.Context, teamID string, zoneID int, action string, correct bool) error {
	flag := 0
	if correct {
		flag = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (team_id, zone_id, action, is_correct)
		VALUES (?, ?, ?, ?)
	`, teamID, zoneID, action, flag)
	return err
}

func (s *SQLiteStore) SeedZones(ctx context.Context, zones []geoquest.Zone, clues []geoquest.Clue) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM zones`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, z := range zones {
		optionsJSON, err := json.Marshal(z.Options)
		if err != nil {
			return fmt.Errorf("encoding zone options: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO zones (id, name, lat, lng, radius_meters, unlock_code, question, options, answer, clue)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, z.ID, z.Name, z.Lat, z.Lng, z.RadiusMeters, z.UnlockCode,
			z.Question, string(optionsJSON), z.Answer, z.Clue)
		if err != nil {
			return err
		}
	}
	for _, c := range clues {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clues (number, text, image_path) VALUES (?, ?, ?)
		`, c.Number, c.Text, c.ImagePath); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
