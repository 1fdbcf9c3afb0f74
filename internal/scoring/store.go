package scoring

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/coverdrive/scorebook/internal/cricket"
)

// New creates a new ScoringStore.
func New(db *sql.DB, rules Rules) ScoringStore {
	return &store{
		db:    db,
		rules: rules,
	}
}

// StartInnings opens the next innings of a live match with zeroed totals.
func (s *store) StartInnings(matchID, battingTeamID, bowlingTeamID string, targetRuns *int) (*cricket.Innings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := loadMatchInfo(s.db, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != cricket.StatusLive {
		return nil, cricket.Conflictf("match must be live to start an innings")
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM innings WHERE match_id = ?`, matchID).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count innings: %w", err)
	}
	number := count + 1
	if number > m.Format.MaxInnings() {
		return nil, cricket.Invalidf("cannot start innings %d for %s format", number, m.Format)
	}

	if battingTeamID == bowlingTeamID {
		return nil, cricket.Invalidf("batting and bowling teams must be different")
	}
	if !m.hasTeam(battingTeamID) || !m.hasTeam(bowlingTeamID) {
		return nil, cricket.Invalidf("both teams must be playing in the match")
	}
	if targetRuns != nil && *targetRuns < 0 {
		return nil, cricket.Invalidf("target runs must not be negative")
	}

	in := &cricket.Innings{
		ID:            uuid.NewString(),
		MatchID:       matchID,
		Number:        number,
		BattingTeamID: battingTeamID,
		BowlingTeamID: bowlingTeamID,
		TargetRuns:    targetRuns,
	}
	_, err = s.db.Exec(`
		INSERT INTO innings (id, match_id, number, batting_team_id, bowling_team_id, target_runs)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.MatchID, in.Number, in.BattingTeamID, in.BowlingTeamID, in.TargetRuns)
	if err != nil {
		return nil, fmt.Errorf("failed to insert innings: %w", err)
	}

	log.Info("Innings started", "matchID", matchID, "inningsID", in.ID, "number", number)
	return in, nil
}

// EndInnings marks an innings completed, optionally as a declaration.
func (s *store) EndInnings(inningsID string, isDeclared bool) (*cricket.Innings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := getInnings(s.db, inningsID)
	if err != nil {
		return nil, err
	}
	if in.IsCompleted {
		return nil, cricket.Conflictf("innings is already completed")
	}

	_, err = s.db.Exec(`UPDATE innings SET is_completed = 1, is_declared = ? WHERE id = ?`, isDeclared, inningsID)
	if err != nil {
		return nil, fmt.Errorf("failed to end innings: %w", err)
	}

	in.IsCompleted = true
	in.IsDeclared = isDeclared
	log.Info("Innings ended", "inningsID", inningsID, "declared", isDeclared)
	return in, nil
}

// StartOver opens the next over. The previous over must be completed, and the
// over number may not pass the match's overs limit.
func (s *store) StartOver(inningsID, bowlerID string) (*cricket.Over, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bowlerID == "" {
		return nil, cricket.Invalidf("bowler is required")
	}

	in, err := getInnings(s.db, inningsID)
	if err != nil {
		return nil, err
	}
	if in.IsCompleted {
		return nil, cricket.Conflictf("cannot start an over in a completed innings")
	}

	m, err := loadMatchInfo(s.db, in.MatchID)
	if err != nil {
		return nil, err
	}

	last, err := lastOver(s.db, inningsID)
	if err != nil {
		return nil, err
	}

	number := 1
	if last != nil {
		if !last.IsCompleted {
			return nil, cricket.Conflictf("previous over must be completed before starting a new over")
		}
		if s.rules.EnforceBowlerRotation && last.BowlerID == bowlerID {
			return nil, cricket.Conflictf("bowler cannot bowl consecutive overs")
		}
		number = last.Number + 1
	}
	if m.OversLimit != nil && number > *m.OversLimit {
		return nil, cricket.Conflictf("cannot exceed %d overs limit", *m.OversLimit)
	}

	over := &cricket.Over{
		ID:        uuid.NewString(),
		InningsID: inningsID,
		Number:    number,
		BowlerID:  bowlerID,
	}
	_, err = s.db.Exec(`INSERT INTO overs (id, innings_id, number, bowler_id) VALUES (?, ?, ?, ?)`,
		over.ID, over.InningsID, over.Number, over.BowlerID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert over: %w", err)
	}

	log.Info("Over started", "inningsID", inningsID, "number", number, "bowlerID", bowlerID)
	return over, nil
}

// GetInnings retrieves an innings by id.
func (s *store) GetInnings(inningsID string) (*cricket.Innings, error) {
	return getInnings(s.db, inningsID)
}

// matchInfo is the slice of match state the scoring engine needs.
type matchInfo struct {
	ID           string
	HomeTeamID   string
	AwayTeamID   string
	Format       cricket.Format
	Status       cricket.MatchStatus
	OversLimit   *int
	BallsPerOver int
}

func (m *matchInfo) hasTeam(teamID string) bool {
	return teamID == m.HomeTeamID || teamID == m.AwayTeamID
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func loadMatchInfo(q queryRower, matchID string) (*matchInfo, error) {
	var m matchInfo
	var oversLimit sql.NullInt64
	err := q.QueryRow(`
		SELECT id, home_team_id, away_team_id, format, status, overs_limit, balls_per_over
		FROM matches WHERE id = ?`, matchID).
		Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.Format, &m.Status, &oversLimit, &m.BallsPerOver)
	if err == sql.ErrNoRows {
		return nil, cricket.NotFoundf("match %s not found", matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	if oversLimit.Valid {
		v := int(oversLimit.Int64)
		m.OversLimit = &v
	}
	return &m, nil
}

func getInnings(q queryRower, inningsID string) (*cricket.Innings, error) {
	var in cricket.Innings
	var targetRuns sql.NullInt64
	err := q.QueryRow(`
		SELECT id, match_id, number, batting_team_id, bowling_team_id, target_runs, total_runs, total_wickets, total_overs, extras, is_completed, is_declared
		FROM innings WHERE id = ?`, inningsID).
		Scan(&in.ID, &in.MatchID, &in.Number, &in.BattingTeamID, &in.BowlingTeamID, &targetRuns,
			&in.TotalRuns, &in.TotalWickets, &in.TotalOvers, &in.Extras, &in.IsCompleted, &in.IsDeclared)
	if err == sql.ErrNoRows {
		return nil, cricket.NotFoundf("innings %s not found", inningsID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load innings: %w", err)
	}
	if targetRuns.Valid {
		v := int(targetRuns.Int64)
		in.TargetRuns = &v
	}
	return &in, nil
}

func lastOver(q queryRower, inningsID string) (*cricket.Over, error) {
	var o cricket.Over
	err := q.QueryRow(`
		SELECT id, innings_id, number, bowler_id, legal_balls, runs, wickets, extras, is_completed
		FROM overs WHERE innings_id = ? ORDER BY number DESC LIMIT 1`, inningsID).
		Scan(&o.ID, &o.InningsID, &o.Number, &o.BowlerID, &o.LegalBalls, &o.Runs, &o.Wickets, &o.Extras, &o.IsCompleted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last over: %w", err)
	}
	return &o, nil
}
