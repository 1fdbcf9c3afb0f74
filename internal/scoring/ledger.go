package scoring

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/stats"
)

// dbtx is the slice of *sql.Tx the ledger helpers need.
type dbtx interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// RecordBall appends a delivery to the innings ledger and recomputes all
// affected aggregates from the full ball set. The whole operation runs under
// the innings' exclusive lock and inside one transaction, so readers never see
// a ball without its aggregates.
func (s *store) RecordBall(inningsID string, ball BallInput, wicket *WicketInput) (*BallResult, error) {
	lock := s.locks.get(inningsID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	in, err := getInnings(tx, inningsID)
	if err != nil {
		return nil, err
	}
	if in.IsCompleted {
		return nil, cricket.Conflictf("cannot record balls in a completed innings")
	}

	m, err := loadMatchInfo(tx, in.MatchID)
	if err != nil {
		return nil, err
	}

	over, err := openOver(tx, inningsID)
	if err != nil {
		return nil, err
	}
	if over == nil {
		return nil, cricket.Conflictf("no active over found, start an over first")
	}

	if err := validateBall(&ball, wicket); err != nil {
		return nil, err
	}

	seq, err := nextSequenceIndex(tx, inningsID)
	if err != nil {
		return nil, err
	}

	// Ball number advances on legal deliveries only; wides and no-balls
	// repeat the number of the last legal ball.
	var legalSoFar int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM ball_events
		WHERE innings_id = ? AND over_number = ? AND wide = 0 AND no_ball = 0`,
		inningsID, over.Number).Scan(&legalSoFar)
	if err != nil {
		return nil, fmt.Errorf("failed to count legal balls: %w", err)
	}

	legal := ball.Extras.Legal()
	ballNumber := legalSoFar
	if legal {
		ballNumber = legalSoFar + 1
		if ballNumber > m.BallsPerOver {
			return nil, cricket.Invalidf("over cannot exceed %d balls", m.BallsPerOver)
		}
	} else if ballNumber == 0 {
		ballNumber = 1
	}

	event := &cricket.BallEvent{
		ID:            uuid.NewString(),
		InningsID:     inningsID,
		OverNumber:    over.Number,
		BallNumber:    ballNumber,
		SequenceIndex: seq,
		StrikerID:     ball.StrikerID,
		NonStrikerID:  ball.NonStrikerID,
		BowlerID:      ball.BowlerID,
		RunsOffBat:    ball.RunsOffBat,
		Extras:        ball.Extras,
		Boundary:      ball.Boundary,
		FreeHit:       ball.FreeHit,
		Commentary:    ball.Commentary,
		CreatedAt:     time.Now().Unix(),
	}
	_, err = tx.Exec(`
		INSERT INTO ball_events (id, innings_id, over_number, ball_number, sequence_index, striker_id, non_striker_id, bowler_id, runs_off_bat, wide, no_ball, bye, leg_bye, penalty, boundary, free_hit, commentary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.InningsID, event.OverNumber, event.BallNumber, event.SequenceIndex,
		event.StrikerID, event.NonStrikerID, event.BowlerID, event.RunsOffBat,
		event.Extras.Wide, event.Extras.NoBall, event.Extras.Bye, event.Extras.LegBye, event.Extras.Penalty,
		nullIfEmpty(string(event.Boundary)), event.FreeHit, nullIfEmpty(event.Commentary), event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ball event: %w", err)
	}

	if wicket != nil {
		we := &cricket.WicketEvent{
			ID:                uuid.NewString(),
			BallEventID:       event.ID,
			InningsID:         inningsID,
			Type:              wicket.Type,
			DismissedPlayerID: wicket.DismissedPlayerID,
			BowlerID:          wicket.BowlerID,
			FielderID:         wicket.FielderID,
			RunOutEnd:         wicket.RunOutEnd,
			BattersCrossed:    wicket.BattersCrossed,
		}
		_, err = tx.Exec(`
			INSERT INTO wicket_events (id, ball_event_id, innings_id, type, dismissed_player_id, bowler_id, fielder_id, run_out_end, batters_crossed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			we.ID, we.BallEventID, we.InningsID, we.Type, we.DismissedPlayerID,
			nullIfEmpty(we.BowlerID), nullIfEmpty(we.FielderID), nullIfEmpty(string(we.RunOutEnd)), we.BattersCrossed)
		if err != nil {
			return nil, fmt.Errorf("failed to insert wicket event: %w", err)
		}
		event.Wicket = we
	}

	overCompleted := legal && ballNumber == m.BallsPerOver
	if overCompleted {
		if _, err := tx.Exec(`UPDATE overs SET is_completed = 1 WHERE id = ?`, over.ID); err != nil {
			return nil, fmt.Errorf("failed to complete over: %w", err)
		}
	}

	updatedOver, err := recomputeOver(tx, inningsID, over.ID, over.Number)
	if err != nil {
		return nil, err
	}
	updatedInnings, completedOvers, err := recomputeInnings(tx, inningsID)
	if err != nil {
		return nil, err
	}

	inningsCompleted, err := applyInningsCompletion(tx, updatedInnings, m, completedOvers)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ball: %w", err)
	}

	log.Info("Ball recorded", "inningsID", inningsID, "over", over.Number, "ball", ballNumber,
		"sequence", seq, "runs", event.TotalRuns(), "wicket", wicket != nil)

	return &BallResult{
		Ball:             event,
		Over:             updatedOver,
		Innings:          updatedInnings,
		OverCompleted:    overCompleted,
		InningsCompleted: inningsCompleted,
	}, nil
}

// UndoLastBall removes the most recent ball event (and its wicket) from the
// innings ledger and recomputes aggregates. Repeated calls keep walking the
// ledger backwards one event at a time; only a completed over directly above
// the removed ball is reopened.
func (s *store) UndoLastBall(inningsID string) (*UndoResult, error) {
	lock := s.locks.get(inningsID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getInnings(tx, inningsID); err != nil {
		return nil, err
	}

	last, err := lastBall(tx, inningsID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, cricket.NotFoundf("no balls to undo")
	}

	if last.Wicket != nil {
		if _, err := tx.Exec(`DELETE FROM wicket_events WHERE id = ?`, last.Wicket.ID); err != nil {
			return nil, fmt.Errorf("failed to delete wicket event: %w", err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM ball_events WHERE id = ?`, last.ID); err != nil {
		return nil, fmt.Errorf("failed to delete ball event: %w", err)
	}

	var over cricket.Over
	err = tx.QueryRow(`
		SELECT id, innings_id, number, bowler_id, legal_balls, runs, wickets, extras, is_completed
		FROM overs WHERE innings_id = ? AND number = ?`, inningsID, last.OverNumber).
		Scan(&over.ID, &over.InningsID, &over.Number, &over.BowlerID, &over.LegalBalls, &over.Runs, &over.Wickets, &over.Extras, &over.IsCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load over for undo: %w", err)
	}

	reopened := false
	if over.IsCompleted {
		if _, err := tx.Exec(`UPDATE overs SET is_completed = 0 WHERE id = ?`, over.ID); err != nil {
			return nil, fmt.Errorf("failed to reopen over: %w", err)
		}
		reopened = true
	}

	if _, err := recomputeOver(tx, inningsID, over.ID, over.Number); err != nil {
		return nil, err
	}
	updatedInnings, _, err := recomputeInnings(tx, inningsID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit undo: %w", err)
	}

	log.Info("Ball undone", "inningsID", inningsID, "sequence", last.SequenceIndex, "overReopened", reopened)

	return &UndoResult{
		RemovedBall:  last,
		Innings:      updatedInnings,
		OverReopened: reopened,
	}, nil
}

func validateBall(ball *BallInput, wicket *WicketInput) error {
	if ball.StrikerID == "" || ball.NonStrikerID == "" || ball.BowlerID == "" {
		return cricket.Invalidf("striker, non-striker and bowler are required")
	}
	if ball.StrikerID == ball.NonStrikerID {
		return cricket.Invalidf("striker and non-striker must be different")
	}
	if ball.RunsOffBat < 0 || ball.RunsOffBat > 6 {
		return cricket.Invalidf("runs off bat must be between 0 and 6, got %d", ball.RunsOffBat)
	}
	if ball.Extras.Negative() {
		return cricket.Invalidf("extras must not be negative")
	}
	if ball.Extras.Wide > 0 && ball.RunsOffBat > 0 {
		return cricket.Invalidf("a wide cannot carry runs off the bat")
	}
	switch ball.Boundary {
	case "", cricket.BoundaryFour, cricket.BoundarySix:
	default:
		return cricket.Invalidf("unknown boundary %q", ball.Boundary)
	}

	if wicket == nil {
		return nil
	}
	if !wicket.Type.Valid() {
		return cricket.Invalidf("unknown wicket type %q", wicket.Type)
	}
	if wicket.DismissedPlayerID == "" {
		return cricket.Invalidf("dismissed player is required")
	}
	if wicket.Type.RequiresBatsman() &&
		wicket.DismissedPlayerID != ball.StrikerID && wicket.DismissedPlayerID != ball.NonStrikerID {
		return cricket.Invalidf("dismissed player must be one of the current batsmen")
	}
	return nil
}

func nextSequenceIndex(tx dbtx, inningsID string) (int, error) {
	var last sql.NullInt64
	err := tx.QueryRow(`SELECT MAX(sequence_index) FROM ball_events WHERE innings_id = ?`, inningsID).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence index: %w", err)
	}
	return int(last.Int64) + 1, nil
}

func openOver(tx dbtx, inningsID string) (*cricket.Over, error) {
	var o cricket.Over
	err := tx.QueryRow(`
		SELECT id, innings_id, number, bowler_id, legal_balls, runs, wickets, extras, is_completed
		FROM overs WHERE innings_id = ? AND is_completed = 0 ORDER BY number DESC LIMIT 1`, inningsID).
		Scan(&o.ID, &o.InningsID, &o.Number, &o.BowlerID, &o.LegalBalls, &o.Runs, &o.Wickets, &o.Extras, &o.IsCompleted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load open over: %w", err)
	}
	return &o, nil
}

// lastBall loads the highest-sequence ball event of the innings, with its
// wicket if any.
func lastBall(tx dbtx, inningsID string) (*cricket.BallEvent, error) {
	var b cricket.BallEvent
	var boundary, commentary sql.NullString
	err := tx.QueryRow(`
		SELECT id, innings_id, over_number, ball_number, sequence_index, striker_id, non_striker_id, bowler_id, runs_off_bat, wide, no_ball, bye, leg_bye, penalty, boundary, free_hit, commentary, created_at
		FROM ball_events WHERE innings_id = ? ORDER BY sequence_index DESC LIMIT 1`, inningsID).
		Scan(&b.ID, &b.InningsID, &b.OverNumber, &b.BallNumber, &b.SequenceIndex,
			&b.StrikerID, &b.NonStrikerID, &b.BowlerID, &b.RunsOffBat,
			&b.Extras.Wide, &b.Extras.NoBall, &b.Extras.Bye, &b.Extras.LegBye, &b.Extras.Penalty,
			&boundary, &b.FreeHit, &commentary, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last ball: %w", err)
	}
	b.Boundary = cricket.Boundary(boundary.String)
	b.Commentary = commentary.String

	var w cricket.WicketEvent
	var wBowler, wFielder, wRunOutEnd sql.NullString
	err = tx.QueryRow(`
		SELECT id, ball_event_id, innings_id, type, dismissed_player_id, bowler_id, fielder_id, run_out_end, batters_crossed
		FROM wicket_events WHERE ball_event_id = ?`, b.ID).
		Scan(&w.ID, &w.BallEventID, &w.InningsID, &w.Type, &w.DismissedPlayerID, &wBowler, &wFielder, &wRunOutEnd, &w.BattersCrossed)
	if err == nil {
		w.BowlerID = wBowler.String
		w.FielderID = wFielder.String
		w.RunOutEnd = cricket.RunOutEnd(wRunOutEnd.String)
		b.Wicket = &w
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load wicket event: %w", err)
	}
	return &b, nil
}

// loadBalls reads the ball events matching the query, with wicket presence
// joined in.
func loadBalls(tx dbtx, query string, args ...any) ([]cricket.BallEvent, error) {
	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ball events: %w", err)
	}
	defer rows.Close()

	var balls []cricket.BallEvent
	for rows.Next() {
		var b cricket.BallEvent
		var wicketID sql.NullString
		err := rows.Scan(&b.ID, &b.RunsOffBat,
			&b.Extras.Wide, &b.Extras.NoBall, &b.Extras.Bye, &b.Extras.LegBye, &b.Extras.Penalty,
			&b.StrikerID, &wicketID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ball event: %w", err)
		}
		if wicketID.Valid {
			b.Wicket = &cricket.WicketEvent{ID: wicketID.String}
		}
		balls = append(balls, b)
	}
	return balls, rows.Err()
}

const ballTotalsColumns = `
	SELECT b.id, b.runs_off_bat, b.wide, b.no_ball, b.bye, b.leg_bye, b.penalty, b.striker_id, w.id
	FROM ball_events b LEFT JOIN wicket_events w ON w.ball_event_id = b.id`

// recomputeOver rebuilds one over's counters from its complete ball set.
func recomputeOver(tx dbtx, inningsID, overID string, overNumber int) (*cricket.Over, error) {
	balls, err := loadBalls(tx, ballTotalsColumns+` WHERE b.innings_id = ? AND b.over_number = ?`, inningsID, overNumber)
	if err != nil {
		return nil, err
	}
	t := stats.ComputeOverTotals(balls)

	_, err = tx.Exec(`UPDATE overs SET runs = ?, wickets = ?, extras = ?, legal_balls = ? WHERE id = ?`,
		t.Runs, t.Wickets, t.Extras, t.LegalBalls, overID)
	if err != nil {
		return nil, fmt.Errorf("failed to update over totals: %w", err)
	}

	var o cricket.Over
	err = tx.QueryRow(`
		SELECT id, innings_id, number, bowler_id, legal_balls, runs, wickets, extras, is_completed
		FROM overs WHERE id = ?`, overID).
		Scan(&o.ID, &o.InningsID, &o.Number, &o.BowlerID, &o.LegalBalls, &o.Runs, &o.Wickets, &o.Extras, &o.IsCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to reload over: %w", err)
	}
	return &o, nil
}

// recomputeInnings rebuilds the innings totals from its complete ball set and
// overs. Returns the refreshed innings and the completed-overs count used by
// the auto-completion check.
func recomputeInnings(tx dbtx, inningsID string) (*cricket.Innings, int, error) {
	balls, err := loadBalls(tx, ballTotalsColumns+` WHERE b.innings_id = ?`, inningsID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(`
		SELECT id, innings_id, number, bowler_id, legal_balls, runs, wickets, extras, is_completed
		FROM overs WHERE innings_id = ? ORDER BY number ASC`, inningsID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query overs: %w", err)
	}
	defer rows.Close()

	var overs []cricket.Over
	for rows.Next() {
		var o cricket.Over
		if err := rows.Scan(&o.ID, &o.InningsID, &o.Number, &o.BowlerID, &o.LegalBalls, &o.Runs, &o.Wickets, &o.Extras, &o.IsCompleted); err != nil {
			return nil, 0, fmt.Errorf("failed to scan over: %w", err)
		}
		overs = append(overs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	t := stats.ComputeInningsTotals(balls, overs)
	completedOvers := 0
	for _, o := range overs {
		if o.IsCompleted {
			completedOvers++
		}
	}

	_, err = tx.Exec(`UPDATE innings SET total_runs = ?, total_wickets = ?, total_overs = ?, extras = ? WHERE id = ?`,
		t.TotalRuns, t.TotalWickets, t.TotalOvers, t.Extras, inningsID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to update innings totals: %w", err)
	}

	in, err := getInnings(tx, inningsID)
	if err != nil {
		return nil, 0, err
	}
	return in, completedOvers, nil
}

// applyInningsCompletion marks the innings completed when any rule holds: all
// ten wickets down, overs limit exhausted, or target reached. Completion is
// idempotent; returns true only when this call completed the innings.
func applyInningsCompletion(tx dbtx, in *cricket.Innings, m *matchInfo, completedOvers int) (bool, error) {
	if in.IsCompleted {
		return false, nil
	}

	complete := false
	switch {
	case in.TotalWickets >= 10:
		complete = true
	case m.OversLimit != nil && completedOvers >= *m.OversLimit:
		complete = true
	case in.TargetRuns != nil && in.TotalRuns >= *in.TargetRuns:
		complete = true
	}
	if !complete {
		return false, nil
	}

	if _, err := tx.Exec(`UPDATE innings SET is_completed = 1 WHERE id = ?`, in.ID); err != nil {
		return false, fmt.Errorf("failed to auto-complete innings: %w", err)
	}
	in.IsCompleted = true
	return true, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
