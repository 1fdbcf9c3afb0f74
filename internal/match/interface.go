package match

import "github.com/coverdrive/scorebook/internal/cricket"

// MatchStore defines the interface for match lifecycle operations.
type MatchStore interface {
	CreateMatch(params CreateMatchParams) (*cricket.Match, error)
	GetMatch(matchID string) (*cricket.Match, error)
	ListMatches(leagueID string, status cricket.MatchStatus) ([]*cricket.Match, error)
	GetToss(matchID string) (*cricket.Toss, error)
	ConductToss(matchID, winnerTeamID string, decision cricket.TossDecision) (*cricket.Toss, error)
	StartMatch(matchID string) (*cricket.Match, error)
	CompleteMatch(matchID string, result Result) (*cricket.Match, error)
}
