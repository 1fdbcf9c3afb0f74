package match_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/database"
	"github.com/coverdrive/scorebook/internal/match"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (match.MatchStore, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := match.New(db)
	teardown := func() {
		dbTeardown()
		db.Close()
	}

	return store, teardown
}

func validParams() match.CreateMatchParams {
	return match.CreateMatchParams{
		LeagueID:   "league-1",
		HomeTeamID: "team-a",
		AwayTeamID: "team-b",
		VenueID:    "venue-1",
		StartTime:  time.Now().Add(time.Hour),
		Format:     cricket.FormatT20,
	}
}

func TestCreateMatch(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	t.Run("creates a scheduled match with defaults", func(t *testing.T) {
		m, err := store.CreateMatch(validParams())
		require.NoError(t, err)
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, cricket.StatusScheduled, m.Status)
		assert.Equal(t, 6, m.BallsPerOver)
		assert.Nil(t, m.OversLimit)
	})

	t.Run("honours a custom balls per over", func(t *testing.T) {
		params := validParams()
		params.BallsPerOver = 8
		m, err := store.CreateMatch(params)
		require.NoError(t, err)
		assert.Equal(t, 8, m.BallsPerOver)
	})

	t.Run("rejects identical teams", func(t *testing.T) {
		params := validParams()
		params.AwayTeamID = params.HomeTeamID
		_, err := store.CreateMatch(params)
		require.Error(t, err)
		assert.True(t, cricket.IsValidation(err))
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		params := validParams()
		params.Format = cricket.Format("T5")
		_, err := store.CreateMatch(params)
		require.Error(t, err)
		assert.True(t, cricket.IsValidation(err))
	})

	t.Run("rejects balls per over out of range", func(t *testing.T) {
		params := validParams()
		params.BallsPerOver = 12
		_, err := store.CreateMatch(params)
		require.Error(t, err)
		assert.True(t, cricket.IsValidation(err))
	})
}

func TestGetMatch(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	created, err := store.CreateMatch(validParams())
	require.NoError(t, err)

	fetched, err := store.GetMatch(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "team-a", fetched.HomeTeamID)

	_, err = store.GetMatch("missing")
	require.Error(t, err)
	assert.True(t, cricket.IsNotFound(err))
}

func TestListMatches(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	_, err := store.CreateMatch(validParams())
	require.NoError(t, err)

	other := validParams()
	other.LeagueID = "league-2"
	_, err = store.CreateMatch(other)
	require.NoError(t, err)

	all, err := store.ListMatches("", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byLeague, err := store.ListMatches("league-2", "")
	require.NoError(t, err)
	require.Len(t, byLeague, 1)
	assert.Equal(t, "league-2", byLeague[0].LeagueID)

	live, err := store.ListMatches("", cricket.StatusLive)
	require.NoError(t, err)
	assert.Empty(t, live)
}

func TestConductToss(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	m, err := store.CreateMatch(validParams())
	require.NoError(t, err)

	t.Run("records the toss once", func(t *testing.T) {
		toss, err := store.ConductToss(m.ID, "team-b", cricket.DecisionBowl)
		require.NoError(t, err)
		assert.Equal(t, "team-b", toss.WinnerTeamID)
		assert.Equal(t, cricket.DecisionBowl, toss.Decision)

		fetched, err := store.GetToss(m.ID)
		require.NoError(t, err)
		assert.Equal(t, toss.ID, fetched.ID)
	})

	t.Run("a second toss conflicts", func(t *testing.T) {
		_, err := store.ConductToss(m.ID, "team-a", cricket.DecisionBat)
		require.Error(t, err)
		assert.True(t, cricket.IsConflict(err))
	})

	t.Run("winner must be a playing team", func(t *testing.T) {
		m2, err := store.CreateMatch(validParams())
		require.NoError(t, err)
		_, err = store.ConductToss(m2.ID, "team-z", cricket.DecisionBat)
		require.Error(t, err)
		assert.True(t, cricket.IsValidation(err))
	})
}

func TestStartMatch(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	m, err := store.CreateMatch(validParams())
	require.NoError(t, err)

	t.Run("cannot start before the toss", func(t *testing.T) {
		_, err := store.StartMatch(m.ID)
		require.Error(t, err)
		assert.True(t, cricket.IsConflict(err))
	})

	t.Run("starts after the toss", func(t *testing.T) {
		_, err := store.ConductToss(m.ID, "team-a", cricket.DecisionBat)
		require.NoError(t, err)

		started, err := store.StartMatch(m.ID)
		require.NoError(t, err)
		assert.Equal(t, cricket.StatusLive, started.Status)
	})

	t.Run("cannot start twice", func(t *testing.T) {
		_, err := store.StartMatch(m.ID)
		require.Error(t, err)
		assert.True(t, cricket.IsConflict(err))
	})
}

func TestCompleteMatch(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	startLive := func(t *testing.T) *cricket.Match {
		m, err := store.CreateMatch(validParams())
		require.NoError(t, err)
		_, err = store.ConductToss(m.ID, "team-a", cricket.DecisionBat)
		require.NoError(t, err)
		_, err = store.StartMatch(m.ID)
		require.NoError(t, err)
		return m
	}

	t.Run("completes with a win", func(t *testing.T) {
		m := startLive(t)
		margin := 31
		completed, err := store.CompleteMatch(m.ID, match.Result{
			ResultType:   cricket.ResultWin,
			WinnerTeamID: "team-a",
			WinMargin:    &margin,
			WinType:      "runs",
		})
		require.NoError(t, err)
		assert.Equal(t, cricket.StatusCompleted, completed.Status)
		assert.Equal(t, cricket.ResultWin, completed.ResultType)
		assert.Equal(t, "team-a", completed.WinnerTeamID)
		require.NotNil(t, completed.WinMargin)
		assert.Equal(t, 31, *completed.WinMargin)
	})

	t.Run("completes with a tie", func(t *testing.T) {
		m := startLive(t)
		completed, err := store.CompleteMatch(m.ID, match.Result{ResultType: cricket.ResultTie})
		require.NoError(t, err)
		assert.Equal(t, cricket.ResultTie, completed.ResultType)
		assert.Empty(t, completed.WinnerTeamID)
	})

	t.Run("win requires a winner", func(t *testing.T) {
		m := startLive(t)
		_, err := store.CompleteMatch(m.ID, match.Result{ResultType: cricket.ResultWin})
		require.Error(t, err)
		assert.True(t, cricket.IsValidation(err))
	})

	t.Run("win requires a playing winner", func(t *testing.T) {
		m := startLive(t)
		_, err := store.CompleteMatch(m.ID, match.Result{
			ResultType:   cricket.ResultWin,
			WinnerTeamID: "team-z",
		})
		require.Error(t, err)
		assert.True(t, cricket.IsValidation(err))
	})

	t.Run("only live matches complete", func(t *testing.T) {
		m, err := store.CreateMatch(validParams())
		require.NoError(t, err)
		_, err = store.CompleteMatch(m.ID, match.Result{ResultType: cricket.ResultTie})
		require.Error(t, err)
		assert.True(t, cricket.IsConflict(err))
	})
}
