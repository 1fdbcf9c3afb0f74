package scorecard

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/stats"
)

// recentOversCount is how many overs the recent-overs strip shows.
const recentOversCount = 6

// New creates a new scorecard service.
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// GetScorecard projects the full scorecard for a match. Everything is read in
// one transaction so a concurrent ball never tears the view.
func (s *Service) GetScorecard(matchID string) (*Scorecard, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := loadMatch(tx, matchID)
	if err != nil {
		return nil, err
	}

	card := &Scorecard{Match: m}

	toss, err := loadToss(tx, matchID)
	if err != nil {
		return nil, err
	}
	if toss != nil {
		card.Toss = &TossView{WinnerTeamID: toss.WinnerTeamID, Decision: toss.Decision}
	}

	innings, err := loadInnings(tx, matchID)
	if err != nil {
		return nil, err
	}
	current := currentInnings(innings)
	if current == nil {
		return card, nil
	}

	view, err := s.projectInnings(tx, m, current)
	if err != nil {
		return nil, err
	}
	card.CurrentInnings = view

	return card, nil
}

// currentInnings picks the first incomplete innings, else the last one.
func currentInnings(innings []*cricket.Innings) *cricket.Innings {
	for _, in := range innings {
		if !in.IsCompleted {
			return in
		}
	}
	if len(innings) == 0 {
		return nil
	}
	return innings[len(innings)-1]
}

func (s *Service) projectInnings(tx *sql.Tx, m *cricket.Match, in *cricket.Innings) (*InningsView, error) {
	balls, err := loadBallEvents(tx, in.ID)
	if err != nil {
		return nil, err
	}
	overs, err := loadOvers(tx, in.ID)
	if err != nil {
		return nil, err
	}

	view := &InningsView{
		ID:            in.ID,
		Number:        in.Number,
		BattingTeamID: in.BattingTeamID,
		BowlingTeamID: in.BowlingTeamID,
		TotalRuns:     in.TotalRuns,
		TotalWickets:  in.TotalWickets,
		TotalOvers:    stats.FormatOvers(in.TotalOvers),
		Extras:        in.Extras,
		TargetRuns:    in.TargetRuns,
		IsCompleted:   in.IsCompleted,
		IsDeclared:    in.IsDeclared,
		RunRate:       stats.RunRate(in.TotalRuns, in.TotalOvers, m.BallsPerOver),
		RecentOvers:   recentOvers(overs, balls),
	}

	if rrr, ok := stats.RequiredRunRate(in.TargetRuns, in.TotalRuns, m.OversLimit, in.TotalOvers, m.BallsPerOver); ok {
		view.RequiredRunRate = &rrr
	}

	// Current batsmen come from the tail of the ledger, not stored state.
	if len(balls) > 0 {
		last := balls[len(balls)-1]
		view.CurrentBatsmen = BatsmenView{
			Striker:    batsmanView(balls, last.StrikerID),
			NonStriker: batsmanView(balls, last.NonStrikerID),
		}
	}

	for _, o := range overs {
		if !o.IsCompleted {
			fig := stats.ComputeBowlingFigures(overs, o.BowlerID, m.BallsPerOver)
			view.CurrentBowler = BowlerView{
				ID:      o.BowlerID,
				Overs:   fig.Overs,
				Runs:    fig.Runs,
				Wickets: fig.Wickets,
				Economy: fig.Economy,
			}
			break
		}
	}
	if view.CurrentBowler.ID == "" {
		view.CurrentBowler.Overs = "0.0"
	}

	return view, nil
}

func batsmanView(balls []cricket.BallEvent, playerID string) BatsmanView {
	fig := stats.ComputeBattingFigures(balls, playerID)
	return BatsmanView{ID: playerID, Runs: fig.Runs, Balls: fig.Balls}
}

// recentOvers renders the last few overs as compact per-ball token lines, in
// the form "12: 1 4 W 0nb 6 2 (13)".
func recentOvers(overs []cricket.Over, balls []cricket.BallEvent) []string {
	if len(overs) == 0 {
		return nil
	}

	byOver := make(map[int][]cricket.BallEvent)
	for _, b := range balls {
		byOver[b.OverNumber] = append(byOver[b.OverNumber], b)
	}

	start := len(overs) - recentOversCount
	if start < 0 {
		start = 0
	}

	var lines []string
	for _, o := range overs[start:] {
		overBalls := byOver[o.Number]
		sort.Slice(overBalls, func(i, j int) bool {
			return overBalls[i].SequenceIndex < overBalls[j].SequenceIndex
		})
		tokens := make([]string, 0, len(overBalls))
		for i := range overBalls {
			tokens = append(tokens, ballToken(&overBalls[i]))
		}
		lines = append(lines, fmt.Sprintf("%d: %s (%d)", o.Number, strings.Join(tokens, " "), o.Runs))
	}
	return lines
}

func ballToken(b *cricket.BallEvent) string {
	switch {
	case b.Wicket != nil:
		return "W"
	case b.Extras.Wide > 0:
		return fmt.Sprintf("%dwd", b.RunsOffBat)
	case b.Extras.NoBall > 0:
		return fmt.Sprintf("%dnb", b.RunsOffBat)
	case b.Boundary == cricket.BoundaryFour:
		return "4"
	case b.Boundary == cricket.BoundarySix:
		return "6"
	default:
		return strconv.Itoa(b.RunsOffBat)
	}
}

func loadMatch(tx *sql.Tx, matchID string) (*cricket.Match, error) {
	var m cricket.Match
	var leagueID, resultType, winnerTeamID, winType sql.NullString
	var oversLimit, winMargin sql.NullInt64
	var startTime int64
	var dlsUsed int

	err := tx.QueryRow(`
		SELECT id, league_id, home_team_id, away_team_id, venue_id, start_time, format, overs_limit, balls_per_over, status, result_type, winner_team_id, win_margin, win_type, dls_used, created_at, updated_at
		FROM matches WHERE id = ?`, matchID).
		Scan(&m.ID, &leagueID, &m.HomeTeamID, &m.AwayTeamID, &m.VenueID, &startTime,
			&m.Format, &oversLimit, &m.BallsPerOver, &m.Status, &resultType,
			&winnerTeamID, &winMargin, &winType, &dlsUsed, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, cricket.NotFoundf("match %s not found", matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
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

func loadToss(tx *sql.Tx, matchID string) (*cricket.Toss, error) {
	var t cricket.Toss
	err := tx.QueryRow(`SELECT id, match_id, winner_team_id, decision FROM tosses WHERE match_id = ?`, matchID).
		Scan(&t.ID, &t.MatchID, &t.WinnerTeamID, &t.Decision)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load toss: %w", err)
	}
	return &t, nil
}

func loadInnings(tx *sql.Tx, matchID string) ([]*cricket.Innings, error) {
	rows, err := tx.Query(`
		SELECT id, match_id, number, batting_team_id, bowling_team_id, target_runs, total_runs, total_wickets, total_overs, extras, is_completed, is_declared
		FROM innings WHERE match_id = ? ORDER BY number ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query innings: %w", err)
	}
	defer rows.Close()

	var innings []*cricket.Innings
	for rows.Next() {
		var in cricket.Innings
		var targetRuns sql.NullInt64
		err := rows.Scan(&in.ID, &in.MatchID, &in.Number, &in.BattingTeamID, &in.BowlingTeamID, &targetRuns,
			&in.TotalRuns, &in.TotalWickets, &in.TotalOvers, &in.Extras, &in.IsCompleted, &in.IsDeclared)
		if err != nil {
			log.Error("Failed to scan innings row", "error", err)
			continue
		}
		if targetRuns.Valid {
			v := int(targetRuns.Int64)
			in.TargetRuns = &v
		}
		innings = append(innings, &in)
	}
	return innings, rows.Err()
}

func loadOvers(tx *sql.Tx, inningsID string) ([]cricket.Over, error) {
	rows, err := tx.Query(`
		SELECT id, innings_id, number, bowler_id, legal_balls, runs, wickets, extras, is_completed
		FROM overs WHERE innings_id = ? ORDER BY number ASC`, inningsID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overs: %w", err)
	}
	defer rows.Close()

	var overs []cricket.Over
	for rows.Next() {
		var o cricket.Over
		if err := rows.Scan(&o.ID, &o.InningsID, &o.Number, &o.BowlerID, &o.LegalBalls, &o.Runs, &o.Wickets, &o.Extras, &o.IsCompleted); err != nil {
			return nil, fmt.Errorf("failed to scan over: %w", err)
		}
		overs = append(overs, o)
	}
	return overs, rows.Err()
}

func loadBallEvents(tx *sql.Tx, inningsID string) ([]cricket.BallEvent, error) {
	rows, err := tx.Query(`
		SELECT b.id, b.innings_id, b.over_number, b.ball_number, b.sequence_index, b.striker_id, b.non_striker_id, b.bowler_id, b.runs_off_bat, b.wide, b.no_ball, b.bye, b.leg_bye, b.penalty, b.boundary, b.free_hit, b.commentary, b.created_at, w.id, w.type, w.dismissed_player_id
		FROM ball_events b
		LEFT JOIN wicket_events w ON w.ball_event_id = b.id
		WHERE b.innings_id = ? ORDER BY b.sequence_index ASC`, inningsID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ball events: %w", err)
	}
	defer rows.Close()

	var balls []cricket.BallEvent
	for rows.Next() {
		var b cricket.BallEvent
		var boundary, commentary, wicketID, wicketType, dismissed sql.NullString
		err := rows.Scan(&b.ID, &b.InningsID, &b.OverNumber, &b.BallNumber, &b.SequenceIndex,
			&b.StrikerID, &b.NonStrikerID, &b.BowlerID, &b.RunsOffBat,
			&b.Extras.Wide, &b.Extras.NoBall, &b.Extras.Bye, &b.Extras.LegBye, &b.Extras.Penalty,
			&boundary, &b.FreeHit, &commentary, &b.CreatedAt, &wicketID, &wicketType, &dismissed)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ball event: %w", err)
		}
		b.Boundary = cricket.Boundary(boundary.String)
		b.Commentary = commentary.String
		if wicketID.Valid {
			b.Wicket = &cricket.WicketEvent{
				ID:                wicketID.String,
				BallEventID:       b.ID,
				InningsID:         b.InningsID,
				Type:              cricket.WicketType(wicketType.String),
				DismissedPlayerID: dismissed.String,
			}
		}
		balls = append(balls, b)
	}
	return balls, rows.Err()
}
