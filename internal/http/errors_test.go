package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdrive/scorebook/internal/broadcast"
	"github.com/coverdrive/scorebook/internal/config"
	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/match"
	"github.com/coverdrive/scorebook/internal/metrics"
	"github.com/coverdrive/scorebook/internal/notifier"
	"github.com/coverdrive/scorebook/internal/pubsub"
	"github.com/coverdrive/scorebook/internal/scorecard"
	"github.com/coverdrive/scorebook/internal/scoring"
)

type stubScorecardProvider struct{}

func (stubScorecardProvider) GetScorecard(matchID string) (*scorecard.Scorecard, error) {
	return nil, cricket.NotFoundf("match %s not found", matchID)
}

// setupMockServer wires the server against store mocks so handler behavior can
// be tested without a database.
func setupMockServer(t *testing.T) (*Server, *match.MockStore, *scoring.MockStore) {
	t.Helper()

	matches := match.NewMock()
	scoringStore := scoring.NewMock()

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	broadcaster := broadcast.New(pubsub.NewMock(), notifier.NewMock(), metricsSvc, stubScorecardProvider{})

	server := NewServer(matches, scoringStore, stubScorecardProvider{}, metricsSvc, metrics.NewMetricsHandler(reg), config.Config{}, broadcaster)
	return server, matches, scoringStore
}

func TestHandlerErrorMapping(t *testing.T) {
	server, matches, scoringStore := setupMockServer(t)

	t.Run("validation error maps to 400", func(t *testing.T) {
		matches.Reset()
		matches.CompleteMatchFunc = func(matchID string, result match.Result) (*cricket.Match, error) {
			return nil, cricket.Invalidf("a win needs a winning team")
		}
		rr := postJSON(t, server, "/matches/match-1/complete", match.Result{ResultType: cricket.ResultWin})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		require.Len(t, matches.CompleteMatchCalls, 1)
		assert.Equal(t, "match-1", matches.CompleteMatchCalls[0].MatchID)
		assert.Equal(t, cricket.ResultWin, matches.CompleteMatchCalls[0].Result.ResultType)
	})

	t.Run("state conflict maps to 409", func(t *testing.T) {
		matches.Reset()
		matches.StartMatchFunc = func(matchID string) (*cricket.Match, error) {
			return nil, cricket.Conflictf("match %s is already live", matchID)
		}
		rr := postJSON(t, server, "/matches/match-1/start", nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, []string{"match-1"}, matches.StartMatchCalls)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		scoringStore.Reset()
		scoringStore.UndoLastBallFunc = func(inningsID string) (*scoring.UndoResult, error) {
			return nil, cricket.NotFoundf("no balls to undo")
		}
		rr := postJSON(t, server, "/innings/inn-1/undo", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, []string{"inn-1"}, scoringStore.UndoLastBallCalls)
	})

	t.Run("unclassified error maps to 500 without leaking detail", func(t *testing.T) {
		scoringStore.Reset()
		scoringStore.RecordBallFunc = func(inningsID string, ball scoring.BallInput, wicket *scoring.WicketInput) (*scoring.BallResult, error) {
			return nil, errors.New("disk I/O error")
		}
		rr := postJSON(t, server, "/innings/inn-1/balls", recordBallRequest{
			BallInput: scoring.BallInput{StrikerID: "bat-1", NonStrikerID: "bat-2", BowlerID: "bowl-1", RunsOffBat: 1},
		})
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "internal server error")
		assert.NotContains(t, rr.Body.String(), "disk I/O")
		require.Len(t, scoringStore.RecordBallCalls, 1)
		assert.Equal(t, "bat-1", scoringStore.RecordBallCalls[0].Ball.StrikerID)
	})
}

func TestStartOverHandler_PassesBowlerToStore(t *testing.T) {
	server, _, scoringStore := setupMockServer(t)

	rr := postJSON(t, server, "/innings/inn-1/overs", startOverRequest{BowlerID: "bowl-9"})
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Len(t, scoringStore.StartOverCalls, 1)
	assert.Equal(t, "inn-1", scoringStore.StartOverCalls[0].InningsID)
	assert.Equal(t, "bowl-9", scoringStore.StartOverCalls[0].BowlerID)
}
