package match

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/coverdrive/scorebook/internal/cricket"
)

// New creates a new MatchStore.
func New(db *sql.DB) MatchStore {
	return &store{
		db: db,
	}
}

// CreateMatch schedules a new match between two teams.
func (s *store) CreateMatch(params CreateMatchParams) (*cricket.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !params.Format.Valid() {
		return nil, cricket.Invalidf("unknown match format %q", params.Format)
	}
	if params.HomeTeamID == "" || params.AwayTeamID == "" || params.VenueID == "" {
		return nil, cricket.Invalidf("home team, away team and venue are required")
	}
	if params.HomeTeamID == params.AwayTeamID {
		return nil, cricket.Invalidf("home and away teams must be different")
	}
	ballsPerOver := params.BallsPerOver
	if ballsPerOver == 0 {
		ballsPerOver = 6
	}
	if ballsPerOver < 4 || ballsPerOver > 8 {
		return nil, cricket.Invalidf("balls per over must be between 4 and 8, got %d", ballsPerOver)
	}
	if params.OversLimit != nil && *params.OversLimit < 1 {
		return nil, cricket.Invalidf("overs limit must be positive")
	}

	now := time.Now().Unix()
	m := &cricket.Match{
		ID:           uuid.NewString(),
		LeagueID:     params.LeagueID,
		HomeTeamID:   params.HomeTeamID,
		AwayTeamID:   params.AwayTeamID,
		VenueID:      params.VenueID,
		StartTime:    params.StartTime,
		Format:       params.Format,
		OversLimit:   params.OversLimit,
		BallsPerOver: ballsPerOver,
		Status:       cricket.StatusScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.Exec(`
		INSERT INTO matches (id, league_id, home_team_id, away_team_id, venue_id, start_time, format, overs_limit, balls_per_over, status, dls_used, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		m.ID, nullString(m.LeagueID), m.HomeTeamID, m.AwayTeamID, m.VenueID, m.StartTime.Unix(), m.Format, m.OversLimit, m.BallsPerOver, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}

	log.Info("Match created", "matchID", m.ID, "format", m.Format)
	return m, nil
}

// GetMatch retrieves a match by id.
func (s *store) GetMatch(matchID string) (*cricket.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getMatch(s.db, matchID)
}

// ListMatches retrieves matches, optionally filtered by league and status.
func (s *store) ListMatches(leagueID string, status cricket.MatchStatus) ([]*cricket.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, league_id, home_team_id, away_team_id, venue_id, start_time, format, overs_limit, balls_per_over, status, result_type, winner_team_id, win_margin, win_type, dls_used, created_at, updated_at
		FROM matches WHERE 1=1`
	args := []any{}
	if leagueID != "" {
		query += " AND league_id = ?"
		args = append(args, leagueID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY start_time DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*cricket.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetToss retrieves the toss for a match, or nil if it has not been taken.
func (s *store) GetToss(matchID string) (*cricket.Toss, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getToss(s.db, matchID)
}

// ConductToss records the coin flip. It can happen once, before the match
// starts.
func (s *store) ConductToss(matchID, winnerTeamID string, decision cricket.TossDecision) (*cricket.Toss, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := getMatch(s.db, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != cricket.StatusScheduled {
		return nil, cricket.Conflictf("toss can only be conducted for scheduled matches")
	}

	existing, err := getToss(s.db, matchID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, cricket.Conflictf("toss has already been conducted")
	}

	if !m.HasTeam(winnerTeamID) {
		return nil, cricket.Invalidf("toss winner must be one of the playing teams")
	}
	if decision != cricket.DecisionBat && decision != cricket.DecisionBowl {
		return nil, cricket.Invalidf("toss decision must be %q or %q", cricket.DecisionBat, cricket.DecisionBowl)
	}

	toss := &cricket.Toss{
		ID:           uuid.NewString(),
		MatchID:      matchID,
		WinnerTeamID: winnerTeamID,
		Decision:     decision,
	}
	_, err = s.db.Exec(`INSERT INTO tosses (id, match_id, winner_team_id, decision) VALUES (?, ?, ?, ?)`,
		toss.ID, toss.MatchID, toss.WinnerTeamID, toss.Decision)
	if err != nil {
		return nil, fmt.Errorf("failed to insert toss: %w", err)
	}

	log.Info("Toss conducted", "matchID", matchID, "winner", winnerTeamID, "decision", decision)
	return toss, nil
}

// StartMatch moves a scheduled match to live. The toss must have been taken.
func (s *store) StartMatch(matchID string) (*cricket.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := getMatch(s.db, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != cricket.StatusScheduled {
		return nil, cricket.Conflictf("only scheduled matches can be started")
	}
	toss, err := getToss(s.db, matchID)
	if err != nil {
		return nil, err
	}
	if toss == nil {
		return nil, cricket.Conflictf("toss must be conducted before starting the match")
	}

	now := time.Now().Unix()
	_, err = s.db.Exec(`UPDATE matches SET status = ?, updated_at = ? WHERE id = ?`, cricket.StatusLive, now, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to start match: %w", err)
	}

	m.Status = cricket.StatusLive
	m.UpdatedAt = now
	log.Info("Match started", "matchID", matchID)
	return m, nil
}

// CompleteMatch moves a live match to completed and freezes the result
// fields. There is no way back.
func (s *store) CompleteMatch(matchID string, result Result) (*cricket.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := getMatch(s.db, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != cricket.StatusLive {
		return nil, cricket.Conflictf("only live matches can be completed")
	}

	switch result.ResultType {
	case cricket.ResultWin:
		if result.WinnerTeamID == "" {
			return nil, cricket.Invalidf("winner team is required for a win result")
		}
		if !m.HasTeam(result.WinnerTeamID) {
			return nil, cricket.Invalidf("winner team must be one of the playing teams")
		}
	case cricket.ResultTie, cricket.ResultDraw, cricket.ResultNoResult:
	default:
		return nil, cricket.Invalidf("unknown result type %q", result.ResultType)
	}

	now := time.Now().Unix()
	_, err = s.db.Exec(`
		UPDATE matches SET status = ?, result_type = ?, winner_team_id = ?, win_margin = ?, win_type = ?, updated_at = ?
		WHERE id = ?`,
		cricket.StatusCompleted, result.ResultType, nullString(result.WinnerTeamID), result.WinMargin, nullString(result.WinType), now, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete match: %w", err)
	}

	m.Status = cricket.StatusCompleted
	m.ResultType = result.ResultType
	m.WinnerTeamID = result.WinnerTeamID
	m.WinMargin = result.WinMargin
	m.WinType = result.WinType
	m.UpdatedAt = now
	log.Info("Match completed", "matchID", matchID, "result", result.ResultType, "winner", result.WinnerTeamID)
	return m, nil
}

// getMatch loads a match without taking the store lock, so it can be shared
// by the mutating operations.
func getMatch(q querier, matchID string) (*cricket.Match, error) {
	row := q.QueryRow(`
		SELECT id, league_id, home_team_id, away_team_id, venue_id, start_time, format, overs_limit, balls_per_over, status, result_type, winner_team_id, win_margin, win_type, dls_used, created_at, updated_at
		FROM matches WHERE id = ?`, matchID)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, cricket.NotFoundf("match %s not found", matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	return m, nil
}

func getToss(q querier, matchID string) (*cricket.Toss, error) {
	var t cricket.Toss
	err := q.QueryRow(`SELECT id, match_id, winner_team_id, decision FROM tosses WHERE match_id = ?`, matchID).
		Scan(&t.ID, &t.MatchID, &t.WinnerTeamID, &t.Decision)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load toss: %w", err)
	}
	return &t, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func scanMatch(scanner interface{ Scan(...any) error }) (*cricket.Match, error) {
	var m cricket.Match
	var leagueID, resultType, winnerTeamID, winType sql.NullString
	var oversLimit, winMargin sql.NullInt64
	var startTime int64
	var dlsUsed int

	err := scanner.Scan(
		&m.ID, &leagueID, &m.HomeTeamID, &m.AwayTeamID, &m.VenueID, &startTime,
		&m.Format, &oversLimit, &m.BallsPerOver, &m.Status, &resultType,
		&winnerTeamID, &winMargin, &winType, &dlsUsed, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.LeagueID = leagueID.String
	m.StartTime = time.Unix(startTime, 0)
	m.ResultType = cricket.ResultType(resultType.String)
	m.WinnerTeamID = winnerTeamID.String
	m.WinType = winType.String
	m.DLSUsed = dlsUsed != 0
	if oversLimit.Valid {
		v := int(oversLimit.Int64)
		m.OversLimit = &v
	}
	if winMargin.Valid {
		v := int(winMargin.Int64)
		m.WinMargin = &v
	}
	return &m, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
