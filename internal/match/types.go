package match

import (
	"database/sql"
	"sync"
	"time"

	"github.com/coverdrive/scorebook/internal/cricket"
)

// store handles all database operations for match lifecycle.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// CreateMatchParams are the fields needed to schedule a match.
type CreateMatchParams struct {
	LeagueID     string         `json:"league_id,omitempty"`
	HomeTeamID   string         `json:"home_team_id"`
	AwayTeamID   string         `json:"away_team_id"`
	VenueID      string         `json:"venue_id"`
	StartTime    time.Time      `json:"start_time"`
	Format       cricket.Format `json:"format"`
	OversLimit   *int           `json:"overs_limit,omitempty"`
	BallsPerOver int            `json:"balls_per_over,omitempty"`
}

// Result carries the outcome recorded when a match completes.
type Result struct {
	ResultType   cricket.ResultType `json:"result_type"`
	WinnerTeamID string             `json:"winner_team_id,omitempty"`
	WinMargin    *int               `json:"win_margin,omitempty"`
	WinType      string             `json:"win_type,omitempty"`
}
