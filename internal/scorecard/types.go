package scorecard

import (
	"database/sql"

	"github.com/coverdrive/scorebook/internal/cricket"
)

// Service assembles read-only scorecard views from the ball ledger. It owns
// no state of its own; everything is projected on demand.
type Service struct {
	db *sql.DB
}

// Scorecard is the full read model for a match.
type Scorecard struct {
	Match          *cricket.Match `json:"match"`
	Toss           *TossView      `json:"toss,omitempty"`
	CurrentInnings *InningsView   `json:"current_innings,omitempty"`
}

// TossView is the toss summary on the scorecard.
type TossView struct {
	WinnerTeamID string               `json:"winner_team_id"`
	Decision     cricket.TossDecision `json:"decision"`
}

// InningsView is the live state of the current innings.
type InningsView struct {
	ID              string       `json:"id"`
	Number          int          `json:"number"`
	BattingTeamID   string       `json:"batting_team_id"`
	BowlingTeamID   string       `json:"bowling_team_id"`
	TotalRuns       int          `json:"total_runs"`
	TotalWickets    int          `json:"total_wickets"`
	TotalOvers      string       `json:"total_overs"`
	Extras          int          `json:"extras"`
	RunRate         float64      `json:"run_rate"`
	RequiredRunRate *float64     `json:"required_run_rate,omitempty"`
	TargetRuns      *int         `json:"target_runs,omitempty"`
	IsCompleted     bool         `json:"is_completed"`
	IsDeclared      bool         `json:"is_declared"`
	CurrentBatsmen  BatsmenView  `json:"current_batsmen"`
	CurrentBowler   BowlerView   `json:"current_bowler"`
	RecentOvers     []string     `json:"recent_overs"`
}

// BatsmenView is the pair at the crease.
type BatsmenView struct {
	Striker    BatsmanView `json:"striker"`
	NonStriker BatsmanView `json:"non_striker"`
}

// BatsmanView is a batsman annotated with their running figures.
type BatsmanView struct {
	ID    string `json:"id"`
	Runs  int    `json:"runs"`
	Balls int    `json:"balls"`
}

// BowlerView is the current bowler annotated with their figures.
type BowlerView struct {
	ID      string  `json:"id"`
	Overs   string  `json:"overs"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Economy float64 `json:"economy"`
}
