package http

import (
	"net/http"

	"github.com/coverdrive/scorebook/internal/broadcast"
	"github.com/coverdrive/scorebook/internal/config"
	"github.com/coverdrive/scorebook/internal/match"
	"github.com/coverdrive/scorebook/internal/metrics"
	"github.com/coverdrive/scorebook/internal/scoring"
)

func NewServer(matches match.MatchStore, scoringStore scoring.ScoringStore, scorecards broadcast.ScorecardProvider, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, broadcaster *broadcast.Broadcaster) *Server {
	server := &Server{
		Matches:        matches,
		Scoring:        scoringStore,
		Scorecards:     scorecards,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Broadcast:      broadcaster,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("POST /matches", Chain(s.CreateMatchHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/toss", Chain(s.ConductTossHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/start", Chain(s.StartMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/complete", Chain(s.CompleteMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/innings", Chain(s.StartInningsHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}/scorecard", Chain(s.ScorecardHandler(), paramsMiddleware))

	s.Router.Handle("POST /innings/{id}/overs", Chain(s.StartOverHandler(), paramsMiddleware))
	s.Router.Handle("POST /innings/{id}/balls", Chain(s.RecordBallHandler(), paramsMiddleware))
	s.Router.Handle("POST /innings/{id}/undo", Chain(s.UndoLastBallHandler(), paramsMiddleware))
	s.Router.Handle("POST /innings/{id}/end", Chain(s.EndInningsHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
