package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdrive/scorebook/internal/broadcast"
	"github.com/coverdrive/scorebook/internal/config"
	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/database"
	"github.com/coverdrive/scorebook/internal/match"
	"github.com/coverdrive/scorebook/internal/metrics"
	"github.com/coverdrive/scorebook/internal/notifier"
	"github.com/coverdrive/scorebook/internal/pubsub"
	"github.com/coverdrive/scorebook/internal/scorecard"
	"github.com/coverdrive/scorebook/internal/scoring"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) (*Server, *pubsub.MockPubSubClient, *notifier.Mock, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	matchStore := match.New(db)
	scoringStore := scoring.New(db, scoring.Rules{})
	scorecards := scorecard.New(db)
	cfg := config.Config{}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock()
	notif := notifier.NewMock()
	broadcaster := broadcast.New(ps, notif, metricsSvc, scorecards)

	server := NewServer(matchStore, scoringStore, scorecards, metricsSvc, metricsHandler, cfg, broadcaster)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return server, ps, notif, teardown
}

func postJSON(t *testing.T, server *Server, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", url, bytes.NewReader(buf))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func getJSON(t *testing.T, server *Server, url string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if out != nil && rr.Code < 300 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
	}
	return rr
}

// createTestMatch schedules a match over the API and returns it.
func createTestMatch(t *testing.T, server *Server) *cricket.Match {
	t.Helper()
	rr := postJSON(t, server, "/matches", match.CreateMatchParams{
		HomeTeamID: "team-a",
		AwayTeamID: "team-b",
		VenueID:    "venue-1",
		StartTime:  time.Now().Add(time.Hour),
		Format:     cricket.FormatT20,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var m cricket.Match
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	return &m
}

// startTestMatch takes a scheduled match through toss and start.
func startTestMatch(t *testing.T, server *Server, matchID string) {
	t.Helper()
	rr := postJSON(t, server, "/matches/"+matchID+"/toss", conductTossRequest{
		WinnerTeamID: "team-a",
		Decision:     cricket.DecisionBat,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = postJSON(t, server, "/matches/"+matchID+"/start", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

// startTestInnings opens the first innings and its first over.
func startTestInnings(t *testing.T, server *Server, matchID string) *cricket.Innings {
	t.Helper()
	rr := postJSON(t, server, "/matches/"+matchID+"/innings", startInningsRequest{
		BattingTeamID: "team-a",
		BowlingTeamID: "team-b",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var innings cricket.Innings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &innings))

	rr = postJSON(t, server, "/innings/"+innings.ID+"/overs", startOverRequest{BowlerID: "bowler-1"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return &innings
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := getJSON(t, server, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestCreateMatchHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	t.Run("creates a scheduled match", func(t *testing.T) {
		m := createTestMatch(t, server)
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, cricket.StatusScheduled, m.Status)
		assert.Equal(t, 6, m.BallsPerOver)
	})

	t.Run("rejects a match with the same team on both sides", func(t *testing.T) {
		rr := postJSON(t, server, "/matches", match.CreateMatchParams{
			HomeTeamID: "team-a",
			AwayTeamID: "team-a",
			VenueID:    "venue-1",
			StartTime:  time.Now(),
			Format:     cricket.FormatT20,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		rr := postJSON(t, server, "/matches", match.CreateMatchParams{
			HomeTeamID: "team-a",
			AwayTeamID: "team-b",
			VenueID:    "venue-1",
			StartTime:  time.Now(),
			Format:     cricket.Format("T5"),
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetMatchHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	m := createTestMatch(t, server)

	var fetched cricket.Match
	rr := getJSON(t, server, "/matches/"+m.ID, &fetched)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, m.ID, fetched.ID)

	rr = getJSON(t, server, "/matches/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListMatchesHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	createTestMatch(t, server)
	createTestMatch(t, server)

	var matches []*cricket.Match
	rr := getJSON(t, server, "/matches", &matches)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, matches, 2)

	rr = getJSON(t, server, "/matches?status=live", &matches)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMatchLifecycleHandlers(t *testing.T) {
	server, _, notif, teardown := setupTestServer(t)
	defer teardown()

	m := createTestMatch(t, server)

	t.Run("start before toss conflicts", func(t *testing.T) {
		rr := postJSON(t, server, "/matches/"+m.ID+"/start", nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("toss and start", func(t *testing.T) {
		startTestMatch(t, server, m.ID)
		require.Len(t, notif.SendMatchStartedCalls, 1)
		assert.Equal(t, "team-a", notif.SendMatchStartedCalls[0].Toss.WinnerTeamID)
	})

	t.Run("second toss conflicts", func(t *testing.T) {
		rr := postJSON(t, server, "/matches/"+m.ID+"/toss", conductTossRequest{
			WinnerTeamID: "team-b",
			Decision:     cricket.DecisionBowl,
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("complete with a winner", func(t *testing.T) {
		margin := 15
		rr := postJSON(t, server, "/matches/"+m.ID+"/complete", match.Result{
			ResultType:   cricket.ResultWin,
			WinnerTeamID: "team-a",
			WinMargin:    &margin,
			WinType:      "runs",
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var completed cricket.Match
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &completed))
		assert.Equal(t, cricket.StatusCompleted, completed.Status)
		require.Len(t, notif.SendMatchResultCalls, 1)
	})
}

func TestRecordBallHandler(t *testing.T) {
	server, ps, _, teardown := setupTestServer(t)
	defer teardown()

	m := createTestMatch(t, server)
	startTestMatch(t, server, m.ID)
	innings := startTestInnings(t, server, m.ID)

	t.Run("records a legal delivery", func(t *testing.T) {
		rr := postJSON(t, server, "/innings/"+innings.ID+"/balls", recordBallRequest{
			BallInput: scoring.BallInput{
				StrikerID:    "bat-1",
				NonStrikerID: "bat-2",
				BowlerID:     "bowler-1",
				RunsOffBat:   4,
				Boundary:     cricket.BoundaryFour,
			},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var result scoring.BallResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Ball.SequenceIndex)
		assert.Equal(t, 1, result.Ball.BallNumber)
		assert.Equal(t, 4, result.Innings.TotalRuns)
		assert.False(t, result.OverCompleted)

		// Ball update plus scorecard update go out on the wire.
		require.NotEmpty(t, ps.SendMessageCalls)
		assert.Equal(t, pubsub.EventBallUpdate, ps.SendMessageCalls[0].Topic)
	})

	t.Run("rejects striker bowling to themselves", func(t *testing.T) {
		rr := postJSON(t, server, "/innings/"+innings.ID+"/balls", recordBallRequest{
			BallInput: scoring.BallInput{
				StrikerID:    "bat-1",
				NonStrikerID: "bat-1",
				BowlerID:     "bowler-1",
			},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown innings is not found", func(t *testing.T) {
		rr := postJSON(t, server, "/innings/nope/balls", recordBallRequest{
			BallInput: scoring.BallInput{
				StrikerID:    "bat-1",
				NonStrikerID: "bat-2",
				BowlerID:     "bowler-1",
			},
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestUndoLastBallHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	m := createTestMatch(t, server)
	startTestMatch(t, server, m.ID)
	innings := startTestInnings(t, server, m.ID)

	t.Run("undo with no balls is not found", func(t *testing.T) {
		rr := postJSON(t, server, "/innings/"+innings.ID+"/undo", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("undo removes the latest delivery", func(t *testing.T) {
		rr := postJSON(t, server, "/innings/"+innings.ID+"/balls", recordBallRequest{
			BallInput: scoring.BallInput{
				StrikerID:    "bat-1",
				NonStrikerID: "bat-2",
				BowlerID:     "bowler-1",
				RunsOffBat:   6,
				Boundary:     cricket.BoundarySix,
			},
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = postJSON(t, server, "/innings/"+innings.ID+"/undo", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var result scoring.UndoResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, 6, result.RemovedBall.RunsOffBat)
		assert.Equal(t, 0, result.Innings.TotalRuns)
	})
}

func TestEndInningsHandler(t *testing.T) {
	server, _, notif, teardown := setupTestServer(t)
	defer teardown()

	m := createTestMatch(t, server)
	startTestMatch(t, server, m.ID)
	innings := startTestInnings(t, server, m.ID)

	rr := postJSON(t, server, "/innings/"+innings.ID+"/end", endInningsRequest{IsDeclared: true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var closed cricket.Innings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &closed))
	assert.True(t, closed.IsCompleted)
	assert.True(t, closed.IsDeclared)
	require.Len(t, notif.SendInningsSummaryCalls, 1)

	// Closing it again conflicts.
	rr = postJSON(t, server, "/innings/"+innings.ID+"/end", endInningsRequest{})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestScorecardHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	m := createTestMatch(t, server)
	startTestMatch(t, server, m.ID)
	innings := startTestInnings(t, server, m.ID)

	for i := 0; i < 3; i++ {
		rr := postJSON(t, server, "/innings/"+innings.ID+"/balls", recordBallRequest{
			BallInput: scoring.BallInput{
				StrikerID:    "bat-1",
				NonStrikerID: "bat-2",
				BowlerID:     "bowler-1",
				RunsOffBat:   i,
			},
		})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	var card scorecard.Scorecard
	rr := getJSON(t, server, fmt.Sprintf("/matches/%s/scorecard", m.ID), &card)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, m.ID, card.Match.ID)
	require.NotNil(t, card.CurrentInnings)
	assert.Equal(t, 3, card.CurrentInnings.TotalRuns)
	assert.Equal(t, "0.3", card.CurrentInnings.TotalOvers)
	assert.Equal(t, "bowler-1", card.CurrentInnings.CurrentBowler.ID)
}

func TestDryRunSuppressesFanout(t *testing.T) {
	server, ps, notif, teardown := setupTestServer(t)
	defer teardown()

	m := createTestMatch(t, server)

	rr := postJSON(t, server, "/matches/"+m.ID+"/toss", conductTossRequest{
		WinnerTeamID: "team-a",
		Decision:     cricket.DecisionBat,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(t, server, "/matches/"+m.ID+"/start?dry_run=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// The notifier mock still records the call but receives dryRun=true;
	// nothing goes to pub/sub.
	require.Len(t, notif.SendMatchStartedCalls, 1)
	assert.Empty(t, ps.SendMessageCalls)
}
