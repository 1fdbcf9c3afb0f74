package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		BallsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_balls_recorded_total",
			Help: "The total number of ball events appended to the ledger.",
		}),
		BallsUndone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_balls_undone_total",
			Help: "The total number of ball events removed by undo.",
		}),
		OversCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_overs_completed_total",
			Help: "The total number of overs completed.",
		}),
		InningsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_innings_completed_total",
			Help: "The total number of innings completed.",
		}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_matches_completed_total",
			Help: "The total number of matches completed.",
		}),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cricket_scoring_duration_seconds",
			Help:    "The duration of individual ball-recording operations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricket_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cricket_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.BallsRecorded,
		s.BallsUndone,
		s.OversCompleted,
		s.InningsCompleted,
		s.MatchesCompleted,
		s.ScoringDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncBallsRecorded() {
	s.BallsRecorded.Inc()
}

func (s *Service) IncBallsUndone() {
	s.BallsUndone.Inc()
}

func (s *Service) IncOversCompleted() {
	s.OversCompleted.Inc()
}

func (s *Service) IncInningsCompleted() {
	s.InningsCompleted.Inc()
}

func (s *Service) IncMatchesCompleted() {
	s.MatchesCompleted.Inc()
}

func (s *Service) ObserveScoringDuration(duration float64) {
	s.ScoringDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
