package pubsub

import "cloud.google.com/go/pubsub"

// EventType names a domain event topic relayed to the real-time gateway.
type EventType string

const (
	EventBallUpdate      EventType = "ball-update"
	EventOverComplete    EventType = "over-complete"
	EventInningsComplete EventType = "innings-complete"
	EventMatchComplete   EventType = "match-complete"
	EventScorecardUpdate EventType = "scorecard-update"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}
