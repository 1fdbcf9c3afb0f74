package broadcast

import (
	"github.com/coverdrive/scorebook/internal/notifier"
	"github.com/coverdrive/scorebook/internal/scorecard"
)

// ScorecardProvider supplies the projected scorecard published after every
// ledger mutation.
type ScorecardProvider interface {
	GetScorecard(matchID string) (*scorecard.Scorecard, error)
}

// Notifier defines the notification operations required by the broadcaster.
// This is an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
