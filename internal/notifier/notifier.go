package notifier

import "github.com/coverdrive/scorebook/internal/cricket"

// Notifier defines a high-level interface for sending notifications about match milestones.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// When play begins
	SendMatchStarted(match *cricket.Match, toss *cricket.Toss, dryRun bool) error
	// When an innings closes, with its final totals
	SendInningsSummary(innings *cricket.Innings, dryRun bool) error
	// When the result is in
	SendMatchResult(match *cricket.Match, dryRun bool) error
}
