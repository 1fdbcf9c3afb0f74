package scorecard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/database"
	"github.com/coverdrive/scorebook/internal/match"
	"github.com/coverdrive/scorebook/internal/scorecard"
	"github.com/coverdrive/scorebook/internal/scoring"
)

type fixture struct {
	service *scorecard.Service
	matches match.MatchStore
	scoring scoring.ScoringStore
}

// setupFixture creates a temporary in-memory SQLite database and the stores
// the projection reads behind.
func setupFixture(t *testing.T) (*fixture, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	f := &fixture{
		service: scorecard.New(db),
		matches: match.New(db),
		scoring: scoring.New(db, scoring.Rules{}),
	}
	teardown := func() {
		dbTeardown()
		db.Close()
	}
	return f, teardown
}

func (f *fixture) liveMatch(t *testing.T, oversLimit *int) *cricket.Match {
	t.Helper()
	m, err := f.matches.CreateMatch(match.CreateMatchParams{
		HomeTeamID: "team-a",
		AwayTeamID: "team-b",
		VenueID:    "venue-1",
		StartTime:  time.Now(),
		Format:     cricket.FormatT20,
		OversLimit: oversLimit,
	})
	require.NoError(t, err)
	_, err = f.matches.ConductToss(m.ID, "team-a", cricket.DecisionBat)
	require.NoError(t, err)
	_, err = f.matches.StartMatch(m.ID)
	require.NoError(t, err)
	return m
}

func (f *fixture) record(t *testing.T, inningsID string, ball scoring.BallInput, wicket *scoring.WicketInput) *scoring.BallResult {
	t.Helper()
	result, err := f.scoring.RecordBall(inningsID, ball, wicket)
	require.NoError(t, err)
	return result
}

func TestGetScorecard_NotFound(t *testing.T) {
	f, teardown := setupFixture(t)
	defer teardown()

	_, err := f.service.GetScorecard("missing")
	require.Error(t, err)
	assert.True(t, cricket.IsNotFound(err))
}

func TestGetScorecard_ScheduledMatch(t *testing.T) {
	f, teardown := setupFixture(t)
	defer teardown()

	m, err := f.matches.CreateMatch(match.CreateMatchParams{
		HomeTeamID: "team-a", AwayTeamID: "team-b", VenueID: "v",
		StartTime: time.Now(), Format: cricket.FormatODI,
	})
	require.NoError(t, err)

	card, err := f.service.GetScorecard(m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, card.Match.ID)
	assert.Nil(t, card.Toss)
	assert.Nil(t, card.CurrentInnings)
}

func TestGetScorecard_LiveInnings(t *testing.T) {
	f, teardown := setupFixture(t)
	defer teardown()

	limit := 20
	m := f.liveMatch(t, &limit)
	in, err := f.scoring.StartInnings(m.ID, "team-a", "team-b", nil)
	require.NoError(t, err)
	_, err = f.scoring.StartOver(in.ID, "bowler-1")
	require.NoError(t, err)

	// 1, W, 4, 1wd, 0nb, 6: three batsmen involved, one over still open.
	f.record(t, in.ID, scoring.BallInput{StrikerID: "bat-1", NonStrikerID: "bat-2", BowlerID: "bowler-1", RunsOffBat: 1}, nil)
	f.record(t, in.ID, scoring.BallInput{StrikerID: "bat-2", NonStrikerID: "bat-1", BowlerID: "bowler-1"}, &scoring.WicketInput{
		Type: cricket.WicketBowled, DismissedPlayerID: "bat-2",
	})
	f.record(t, in.ID, scoring.BallInput{StrikerID: "bat-3", NonStrikerID: "bat-1", BowlerID: "bowler-1", RunsOffBat: 4, Boundary: cricket.BoundaryFour}, nil)
	f.record(t, in.ID, scoring.BallInput{StrikerID: "bat-3", NonStrikerID: "bat-1", BowlerID: "bowler-1", Extras: cricket.Extras{Wide: 1}}, nil)
	f.record(t, in.ID, scoring.BallInput{StrikerID: "bat-3", NonStrikerID: "bat-1", BowlerID: "bowler-1", RunsOffBat: 0, Extras: cricket.Extras{NoBall: 1}}, nil)
	f.record(t, in.ID, scoring.BallInput{StrikerID: "bat-3", NonStrikerID: "bat-1", BowlerID: "bowler-1", RunsOffBat: 6, Boundary: cricket.BoundarySix}, nil)

	card, err := f.service.GetScorecard(m.ID)
	require.NoError(t, err)

	require.NotNil(t, card.Toss)
	assert.Equal(t, "team-a", card.Toss.WinnerTeamID)

	view := card.CurrentInnings
	require.NotNil(t, view)
	assert.Equal(t, in.ID, view.ID)
	assert.Equal(t, 13, view.TotalRuns)
	assert.Equal(t, 1, view.TotalWickets)
	assert.Equal(t, "0.4", view.TotalOvers)
	assert.Equal(t, 2, view.Extras)
	// 13 runs off 4 legal balls.
	assert.InDelta(t, 19.5, view.RunRate, 0.0001)
	assert.Nil(t, view.RequiredRunRate)

	// The pair at the crease comes from the last ball.
	assert.Equal(t, "bat-3", view.CurrentBatsmen.Striker.ID)
	assert.Equal(t, 10, view.CurrentBatsmen.Striker.Runs)
	// Wide excluded, no-ball included: 3 balls faced for bat-3.
	assert.Equal(t, 3, view.CurrentBatsmen.Striker.Balls)
	assert.Equal(t, "bat-1", view.CurrentBatsmen.NonStriker.ID)
	assert.Equal(t, 1, view.CurrentBatsmen.NonStriker.Runs)

	assert.Equal(t, "bowler-1", view.CurrentBowler.ID)
	assert.Equal(t, "0.4", view.CurrentBowler.Overs)
	assert.Equal(t, 13, view.CurrentBowler.Runs)
	assert.Equal(t, 1, view.CurrentBowler.Wickets)

	require.Len(t, view.RecentOvers, 1)
	assert.Equal(t, "1: 1 W 4 0wd 0nb 6 (13)", view.RecentOvers[0])
}

func TestGetScorecard_RequiredRunRate(t *testing.T) {
	f, teardown := setupFixture(t)
	defer teardown()

	limit := 20
	m := f.liveMatch(t, &limit)

	first, err := f.scoring.StartInnings(m.ID, "team-a", "team-b", nil)
	require.NoError(t, err)
	_, err = f.scoring.EndInnings(first.ID, false)
	require.NoError(t, err)

	target := 121
	in, err := f.scoring.StartInnings(m.ID, "team-b", "team-a", &target)
	require.NoError(t, err)
	_, err = f.scoring.StartOver(in.ID, "bowler-1")
	require.NoError(t, err)
	f.record(t, in.ID, scoring.BallInput{StrikerID: "bat-1", NonStrikerID: "bat-2", BowlerID: "bowler-1", RunsOffBat: 1}, nil)

	card, err := f.service.GetScorecard(m.ID)
	require.NoError(t, err)

	view := card.CurrentInnings
	require.NotNil(t, view)
	require.NotNil(t, view.TargetRuns)
	require.NotNil(t, view.RequiredRunRate)
	// 120 needed off 19.8333 true overs.
	assert.InDelta(t, 6.05, *view.RequiredRunRate, 0.0001)
}

func TestGetScorecard_RecentOversWindow(t *testing.T) {
	f, teardown := setupFixture(t)
	defer teardown()

	m := f.liveMatch(t, nil)
	in, err := f.scoring.StartInnings(m.ID, "team-a", "team-b", nil)
	require.NoError(t, err)

	// Eight full overs; the strip keeps the last six.
	for over := 0; over < 8; over++ {
		bowler := "bowler-1"
		if over%2 == 1 {
			bowler = "bowler-2"
		}
		_, err = f.scoring.StartOver(in.ID, bowler)
		require.NoError(t, err)
		for i := 0; i < 6; i++ {
			f.record(t, in.ID, scoring.BallInput{StrikerID: "bat-1", NonStrikerID: "bat-2", BowlerID: bowler, RunsOffBat: 1}, nil)
		}
	}

	card, err := f.service.GetScorecard(m.ID)
	require.NoError(t, err)

	view := card.CurrentInnings
	require.NotNil(t, view)
	require.Len(t, view.RecentOvers, 6)
	assert.Equal(t, "3: 1 1 1 1 1 1 (6)", view.RecentOvers[0])
	assert.Equal(t, "8: 1 1 1 1 1 1 (6)", view.RecentOvers[5])
	assert.Equal(t, "8.0", view.TotalOvers)

	// No over is open, so there is no current bowler.
	assert.Empty(t, view.CurrentBowler.ID)
	assert.Equal(t, "0.0", view.CurrentBowler.Overs)
}

func TestGetScorecard_CompletedInningsStaysVisible(t *testing.T) {
	f, teardown := setupFixture(t)
	defer teardown()

	m := f.liveMatch(t, nil)
	in, err := f.scoring.StartInnings(m.ID, "team-a", "team-b", nil)
	require.NoError(t, err)
	_, err = f.scoring.StartOver(in.ID, "bowler-1")
	require.NoError(t, err)
	f.record(t, in.ID, scoring.BallInput{StrikerID: "bat-1", NonStrikerID: "bat-2", BowlerID: "bowler-1", RunsOffBat: 4, Boundary: cricket.BoundaryFour}, nil)

	_, err = f.scoring.EndInnings(in.ID, true)
	require.NoError(t, err)

	card, err := f.service.GetScorecard(m.ID)
	require.NoError(t, err)
	require.NotNil(t, card.CurrentInnings)
	assert.True(t, card.CurrentInnings.IsCompleted)
	assert.True(t, card.CurrentInnings.IsDeclared)
	assert.Equal(t, 4, card.CurrentInnings.TotalRuns)
}
