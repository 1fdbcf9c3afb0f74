package broadcast

import (
	"github.com/charmbracelet/log"

	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/metrics"
	"github.com/coverdrive/scorebook/internal/pubsub"
	"github.com/coverdrive/scorebook/internal/scoring"
)

// New creates a new Broadcaster.
func New(ps pubsub.PubSubClient, notifier Notifier, metrics metrics.Metrics, scorecards ScorecardProvider) *Broadcaster {
	return &Broadcaster{
		pubsub:     ps,
		notifier:   notifier,
		metrics:    metrics,
		scorecards: scorecards,
	}
}

// MatchStarted announces that play is underway.
func (b *Broadcaster) MatchStarted(match *cricket.Match, toss *cricket.Toss, dryRun bool) {
	if err := b.notifier.SendMatchStarted(match, toss, dryRun); err != nil {
		log.Error("Failed to send match started notification", "error", err, "matchID", match.ID)
	}
}

// InningsStarted announces a new innings.
func (b *Broadcaster) InningsStarted(matchID string, innings *cricket.Innings, dryRun bool) {
	b.publish(pubsub.EventScorecardUpdate, innings, dryRun)
	b.publishScorecard(matchID, dryRun)
}

// BallRecorded fans out a recorded delivery and any milestones it triggered.
func (b *Broadcaster) BallRecorded(matchID string, result *scoring.BallResult, dryRun bool) {
	b.metrics.IncBallsRecorded()

	b.publish(pubsub.EventBallUpdate, result, dryRun)

	if result.OverCompleted {
		b.metrics.IncOversCompleted()
		b.publish(pubsub.EventOverComplete, result.Over, dryRun)
	}
	if result.InningsCompleted {
		b.metrics.IncInningsCompleted()
		b.publish(pubsub.EventInningsComplete, result.Innings, dryRun)
		if err := b.notifier.SendInningsSummary(result.Innings, dryRun); err != nil {
			log.Error("Failed to send innings summary", "error", err, "inningsID", result.Innings.ID)
		}
	}

	b.publishScorecard(matchID, dryRun)
}

// BallUndone fans out a correction.
func (b *Broadcaster) BallUndone(matchID string, result *scoring.UndoResult, dryRun bool) {
	b.metrics.IncBallsUndone()
	b.publish(pubsub.EventBallUpdate, result, dryRun)
	b.publishScorecard(matchID, dryRun)
}

// InningsEnded announces a manually closed innings.
func (b *Broadcaster) InningsEnded(matchID string, innings *cricket.Innings, dryRun bool) {
	b.metrics.IncInningsCompleted()
	b.publish(pubsub.EventInningsComplete, innings, dryRun)
	if err := b.notifier.SendInningsSummary(innings, dryRun); err != nil {
		log.Error("Failed to send innings summary", "error", err, "inningsID", innings.ID)
	}
	b.publishScorecard(matchID, dryRun)
}

// MatchCompleted announces the final result.
func (b *Broadcaster) MatchCompleted(match *cricket.Match, dryRun bool) {
	b.metrics.IncMatchesCompleted()
	b.publish(pubsub.EventMatchComplete, match, dryRun)
	if err := b.notifier.SendMatchResult(match, dryRun); err != nil {
		log.Error("Failed to send match result notification", "error", err, "matchID", match.ID)
	}
	b.publishScorecard(match.ID, dryRun)
}

func (b *Broadcaster) publish(topic pubsub.EventType, data any, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would publish event", "topic", topic)
		return
	}
	if err := b.pubsub.SendMessage(topic, data); err != nil {
		log.Error("Failed to publish event", "error", err, "topic", topic)
	}
}

func (b *Broadcaster) publishScorecard(matchID string, dryRun bool) {
	card, err := b.scorecards.GetScorecard(matchID)
	if err != nil {
		log.Error("Failed to project scorecard for broadcast", "error", err, "matchID", matchID)
		return
	}
	b.publish(pubsub.EventScorecardUpdate, card, dryRun)
}
