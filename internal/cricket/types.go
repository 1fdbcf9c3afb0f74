package cricket

import "time"

// Format is the match format. It decides how many innings a match has and
// whether an overs limit applies by convention.
type Format string

const (
	FormatT20    Format = "T20"
	FormatODI    Format = "ODI"
	FormatTest   Format = "Test"
	FormatT10    Format = "T10"
	FormatCustom Format = "Custom"
)

// MaxInnings returns how many innings the format allows.
func (f Format) MaxInnings() int {
	if f == FormatTest {
		return 4
	}
	return 2
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatT20, FormatODI, FormatTest, FormatT10, FormatCustom:
		return true
	}
	return false
}

// MatchStatus is the lifecycle state of a match. It only ever advances
// scheduled -> live -> completed.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusCompleted MatchStatus = "completed"
)

// TossDecision is what the toss winner chose to do first.
type TossDecision string

const (
	DecisionBat  TossDecision = "bat"
	DecisionBowl TossDecision = "bowl"
)

// ResultType classifies how a match ended.
type ResultType string

const (
	ResultWin      ResultType = "win"
	ResultTie      ResultType = "tie"
	ResultDraw     ResultType = "draw"
	ResultNoResult ResultType = "noResult"
)

// Boundary marks a delivery hit to or over the rope.
type Boundary string

const (
	BoundaryFour Boundary = "four"
	BoundarySix  Boundary = "six"
)

// WicketType is the mode of dismissal.
type WicketType string

const (
	WicketBowled      WicketType = "bowled"
	WicketCaught      WicketType = "caught"
	WicketLBW         WicketType = "lbw"
	WicketRunOut      WicketType = "runOut"
	WicketStumped     WicketType = "stumped"
	WicketHitWicket   WicketType = "hitWicket"
	WicketHandledBall WicketType = "handledBall"
	WicketTimedOut    WicketType = "timedOut"
	WicketRetiredOut  WicketType = "retiredOut"
)

// Valid reports whether w is a known dismissal type.
func (w WicketType) Valid() bool {
	switch w {
	case WicketBowled, WicketCaught, WicketLBW, WicketRunOut, WicketStumped,
		WicketHitWicket, WicketHandledBall, WicketTimedOut, WicketRetiredOut:
		return true
	}
	return false
}

// RequiresBatsman reports whether the dismissed player must be one of the two
// batsmen currently at the crease. Timed out applies to an incoming batsman,
// so it is exempt.
func (w WicketType) RequiresBatsman() bool {
	return w != WicketTimedOut
}

// RunOutEnd says which end was run out.
type RunOutEnd string

const (
	RunOutStriker    RunOutEnd = "striker"
	RunOutNonStriker RunOutEnd = "nonStriker"
)

// Match is a scheduled or played fixture between two teams. Team, venue and
// league ids are opaque references to master data owned elsewhere.
type Match struct {
	ID           string      `json:"id"`
	LeagueID     string      `json:"league_id,omitempty"`
	HomeTeamID   string      `json:"home_team_id"`
	AwayTeamID   string      `json:"away_team_id"`
	VenueID      string      `json:"venue_id"`
	StartTime    time.Time   `json:"start_time"`
	Format       Format      `json:"format"`
	OversLimit   *int        `json:"overs_limit,omitempty"`
	BallsPerOver int         `json:"balls_per_over"`
	Status       MatchStatus `json:"status"`
	ResultType   ResultType  `json:"result_type,omitempty"`
	WinnerTeamID string      `json:"winner_team_id,omitempty"`
	WinMargin    *int        `json:"win_margin,omitempty"`
	WinType      string      `json:"win_type,omitempty"`
	DLSUsed      bool        `json:"dls_used"`
	CreatedAt    int64       `json:"created_at"`
	UpdatedAt    int64       `json:"updated_at"`
}

// HasTeam reports whether teamID is one of the two playing teams.
func (m *Match) HasTeam(teamID string) bool {
	return teamID == m.HomeTeamID || teamID == m.AwayTeamID
}

// Toss records the pre-match coin flip. Immutable once taken.
type Toss struct {
	ID           string       `json:"id"`
	MatchID      string       `json:"match_id"`
	WinnerTeamID string       `json:"winner_team_id"`
	Decision     TossDecision `json:"decision"`
}

// Innings is one team's turn at batting. Totals are maintained by full
// recomputation from the ball ledger after every mutation.
type Innings struct {
	ID            string  `json:"id"`
	MatchID       string  `json:"match_id"`
	Number        int     `json:"number"`
	BattingTeamID string  `json:"batting_team_id"`
	BowlingTeamID string  `json:"bowling_team_id"`
	TargetRuns    *int    `json:"target_runs,omitempty"`
	TotalRuns     int     `json:"total_runs"`
	TotalWickets  int     `json:"total_wickets"`
	TotalOvers    float64 `json:"total_overs"`
	Extras        int     `json:"extras"`
	IsCompleted   bool    `json:"is_completed"`
	IsDeclared    bool    `json:"is_declared"`
}

// Over is a set of deliveries by one bowler. LegalBalls counts deliveries that
// are neither wides nor no-balls.
type Over struct {
	ID          string `json:"id"`
	InningsID   string `json:"innings_id"`
	Number      int    `json:"number"`
	BowlerID    string `json:"bowler_id"`
	LegalBalls  int    `json:"legal_balls"`
	Runs        int    `json:"runs"`
	Wickets     int    `json:"wickets"`
	Extras      int    `json:"extras"`
	IsCompleted bool   `json:"is_completed"`
}

// Extras is the fixed-shape record of runs not credited to the batsman.
type Extras struct {
	Wide    int `json:"wide,omitempty" msgpack:"wide"`
	NoBall  int `json:"no_ball,omitempty" msgpack:"no_ball"`
	Bye     int `json:"bye,omitempty" msgpack:"bye"`
	LegBye  int `json:"leg_bye,omitempty" msgpack:"leg_bye"`
	Penalty int `json:"penalty,omitempty" msgpack:"penalty"`
}

// Total is the sum of all extra runs on the delivery.
func (e Extras) Total() int {
	return e.Wide + e.NoBall + e.Bye + e.LegBye + e.Penalty
}

// Legal reports whether a delivery with these extras counts toward the over.
// Wides and no-balls must be re-bowled.
func (e Extras) Legal() bool {
	return e.Wide == 0 && e.NoBall == 0
}

// Negative reports whether any extra count is below zero.
func (e Extras) Negative() bool {
	return e.Wide < 0 || e.NoBall < 0 || e.Bye < 0 || e.LegBye < 0 || e.Penalty < 0
}

// BallEvent is one entry in the append-only ball ledger. SequenceIndex is the
// ledger's total order: contiguous, ascending, starting at 1 per innings.
type BallEvent struct {
	ID            string       `json:"id"`
	InningsID     string       `json:"innings_id"`
	OverNumber    int          `json:"over_number"`
	BallNumber    int          `json:"ball_number"`
	SequenceIndex int          `json:"sequence_index"`
	StrikerID     string       `json:"striker_id"`
	NonStrikerID  string       `json:"non_striker_id"`
	BowlerID      string       `json:"bowler_id"`
	RunsOffBat    int          `json:"runs_off_bat"`
	Extras        Extras       `json:"extras"`
	Boundary      Boundary     `json:"boundary,omitempty"`
	FreeHit       bool         `json:"free_hit"`
	Commentary    string       `json:"commentary,omitempty"`
	Wicket        *WicketEvent `json:"wicket_event,omitempty"`
	CreatedAt     int64        `json:"created_at"`
}

// TotalRuns is everything the delivery scored: runs off the bat plus extras.
func (b *BallEvent) TotalRuns() int {
	return b.RunsOffBat + b.Extras.Total()
}

// WicketEvent is a dismissal tied 1:1 to a ball event. It is deleted together
// with its parent on undo.
type WicketEvent struct {
	ID                string     `json:"id"`
	BallEventID       string     `json:"ball_event_id"`
	InningsID         string     `json:"innings_id"`
	Type              WicketType `json:"type"`
	DismissedPlayerID string     `json:"dismissed_player_id"`
	BowlerID          string     `json:"bowler_id,omitempty"`
	FielderID         string     `json:"fielder_id,omitempty"`
	RunOutEnd         RunOutEnd  `json:"run_out_end,omitempty"`
	BattersCrossed    bool       `json:"batters_crossed"`
}
