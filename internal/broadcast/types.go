package broadcast

import (
	"github.com/coverdrive/scorebook/internal/metrics"
	"github.com/coverdrive/scorebook/internal/pubsub"
)

// Broadcaster fans scoring milestones out to pub/sub subscribers and Slack.
// Delivery is best-effort: a failed publish is logged and never fails the
// mutation that triggered it.
type Broadcaster struct {
	pubsub     pubsub.PubSubClient
	notifier   Notifier
	metrics    metrics.Metrics
	scorecards ScorecardProvider
}
