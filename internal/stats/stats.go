// Package stats computes scoring aggregates as pure functions of the ball
// ledger. No incremental state is trusted: every total is a fresh summation
// over the complete event set, which keeps undo trivially consistent.
package stats

import (
	"fmt"
	"math"

	"github.com/coverdrive/scorebook/internal/cricket"
)

// OverTotals are the counters recomputed for a single over.
type OverTotals struct {
	Runs       int
	Wickets    int
	Extras     int
	LegalBalls int
}

// InningsTotals are the counters recomputed for a whole innings. TotalOvers
// uses the scoreboard notation: completed overs plus legal balls in the open
// over divided by ten, so "19.4" means 19 overs and 4 balls.
type InningsTotals struct {
	TotalRuns    int
	TotalWickets int
	TotalOvers   float64
	Extras       int
}

// BattingFigures are a batsman's running score in an innings.
type BattingFigures struct {
	Runs  int `json:"runs"`
	Balls int `json:"balls"`
}

// BowlingFigures are a bowler's running figures in an innings. Overs uses the
// scoreboard notation; Economy is runs per true over.
type BowlingFigures struct {
	Overs   string  `json:"overs"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Economy float64 `json:"economy"`
}

// ComputeOverTotals sums one over's ball events.
func ComputeOverTotals(balls []cricket.BallEvent) OverTotals {
	var t OverTotals
	for i := range balls {
		b := &balls[i]
		t.Runs += b.TotalRuns()
		t.Extras += b.Extras.Total()
		if b.Wicket != nil {
			t.Wickets++
		}
		if b.Extras.Legal() {
			t.LegalBalls++
		}
	}
	return t
}

// ComputeInningsTotals sums an innings' ball events and derives the overs
// notation from its overs.
func ComputeInningsTotals(balls []cricket.BallEvent, overs []cricket.Over) InningsTotals {
	var t InningsTotals
	for i := range balls {
		b := &balls[i]
		t.TotalRuns += b.TotalRuns()
		t.Extras += b.Extras.Total()
		if b.Wicket != nil {
			t.TotalWickets++
		}
	}

	completed := 0
	openBalls := 0
	for _, o := range overs {
		if o.IsCompleted {
			completed++
		} else {
			openBalls = o.LegalBalls
		}
	}
	t.TotalOvers = float64(completed) + float64(openBalls)/10

	return t
}

// ComputeBattingFigures tallies runs and balls faced for one batsman. Wides do
// not count as balls faced; no-balls do.
func ComputeBattingFigures(balls []cricket.BallEvent, playerID string) BattingFigures {
	var f BattingFigures
	for i := range balls {
		b := &balls[i]
		if b.StrikerID != playerID {
			continue
		}
		f.Runs += b.RunsOffBat
		if b.Extras.Wide == 0 {
			f.Balls++
		}
	}
	return f
}

// ComputeBowlingFigures tallies a bowler's figures across their overs.
// Economy converts the balls bowled to true overs before dividing, so the
// scoreboard notation never distorts the rate.
func ComputeBowlingFigures(overs []cricket.Over, bowlerID string, ballsPerOver int) BowlingFigures {
	var runs, wickets, completed, openBalls int
	for _, o := range overs {
		if o.BowlerID != bowlerID {
			continue
		}
		runs += o.Runs
		wickets += o.Wickets
		if o.IsCompleted {
			completed++
		} else {
			openBalls = o.LegalBalls
		}
	}

	trueOvers := float64(completed) + float64(openBalls)/float64(ballsPerOver)
	economy := 0.0
	if trueOvers > 0 {
		economy = round2(float64(runs) / trueOvers)
	}

	return BowlingFigures{
		Overs:   FormatOvers(float64(completed) + float64(openBalls)/10),
		Runs:    runs,
		Wickets: wickets,
		Economy: economy,
	}
}

// TrueOvers converts the scoreboard notation to a real overs count, e.g.
// 19.4 with six balls per over becomes 19.666...
func TrueOvers(notation float64, ballsPerOver int) float64 {
	whole := math.Floor(notation)
	balls := math.Round((notation - whole) * 10)
	return whole + balls/float64(ballsPerOver)
}

// RunRate is runs per true over, rounded to two decimals, zero before the
// first legal ball.
func RunRate(runs int, oversNotation float64, ballsPerOver int) float64 {
	overs := TrueOvers(oversNotation, ballsPerOver)
	if overs == 0 {
		return 0
	}
	return round2(float64(runs) / overs)
}

// RequiredRunRate is the rate the chasing side needs. The second return is
// false when there is no target or no overs limit, which means the figure is
// undefined rather than zero.
func RequiredRunRate(targetRuns *int, currentRuns int, oversLimit *int, oversNotation float64, ballsPerOver int) (float64, bool) {
	if targetRuns == nil || oversLimit == nil {
		return 0, false
	}
	remaining := float64(*oversLimit) - TrueOvers(oversNotation, ballsPerOver)
	if remaining <= 0 {
		return 0, true
	}
	return round2(float64(*targetRuns-currentRuns) / remaining), true
}

// FormatOvers renders the scoreboard notation as "19.4".
func FormatOvers(notation float64) string {
	whole := int(math.Floor(notation))
	balls := int(math.Round((notation - float64(whole)) * 10))
	return fmt.Sprintf("%d.%d", whole, balls)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
