package scoring

import "github.com/coverdrive/scorebook/internal/cricket"

// ScoringStore defines the interface for innings, over and ball ledger
// operations.
type ScoringStore interface {
	StartInnings(matchID, battingTeamID, bowlingTeamID string, targetRuns *int) (*cricket.Innings, error)
	EndInnings(inningsID string, isDeclared bool) (*cricket.Innings, error)
	StartOver(inningsID, bowlerID string) (*cricket.Over, error)
	RecordBall(inningsID string, ball BallInput, wicket *WicketInput) (*BallResult, error)
	UndoLastBall(inningsID string) (*UndoResult, error)
	GetInnings(inningsID string) (*cricket.Innings, error)
}
