package http

import (
	"net/http"

	"github.com/coverdrive/scorebook/internal/broadcast"
	"github.com/coverdrive/scorebook/internal/config"
	"github.com/coverdrive/scorebook/internal/match"
	"github.com/coverdrive/scorebook/internal/metrics"
	"github.com/coverdrive/scorebook/internal/scoring"
)

type Server struct {
	Matches        match.MatchStore
	Scoring        scoring.ScoringStore
	Scorecards     broadcast.ScorecardProvider
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Broadcast      *broadcast.Broadcaster
	Router         *http.ServeMux
}
