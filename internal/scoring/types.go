package scoring

import (
	"database/sql"
	"sync"

	"github.com/coverdrive/scorebook/internal/cricket"
)

// store handles all database operations for the scoring engine.
type store struct {
	db    *sql.DB
	rules Rules

	// mu guards innings/over lifecycle operations.
	mu sync.Mutex
	// locks serializes ball recording and undo per innings. Sequence
	// assignment and aggregate recomputation are not safe under concurrent
	// mutation of the same innings; different innings proceed in parallel.
	locks inningsLocks
}

// Rules are the configurable format rules the engine enforces.
type Rules struct {
	// EnforceBowlerRotation rejects the bowler of the previous over when a
	// new over starts.
	EnforceBowlerRotation bool
}

// BallInput is the payload for recording a delivery.
type BallInput struct {
	StrikerID    string           `json:"striker_id"`
	NonStrikerID string           `json:"non_striker_id"`
	BowlerID     string           `json:"bowler_id"`
	RunsOffBat   int              `json:"runs_off_bat"`
	Extras       cricket.Extras   `json:"extras"`
	Boundary     cricket.Boundary `json:"boundary,omitempty"`
	FreeHit      bool             `json:"free_hit,omitempty"`
	Commentary   string           `json:"commentary,omitempty"`
}

// WicketInput is the payload for a dismissal on a delivery.
type WicketInput struct {
	Type              cricket.WicketType `json:"type"`
	DismissedPlayerID string             `json:"dismissed_player_id"`
	BowlerID          string             `json:"bowler_id,omitempty"`
	FielderID         string             `json:"fielder_id,omitempty"`
	RunOutEnd         cricket.RunOutEnd  `json:"run_out_end,omitempty"`
	BattersCrossed    bool               `json:"batters_crossed,omitempty"`
}

// BallResult is what RecordBall returns: the appended event plus the freshly
// recomputed over and innings state, with completion flags for the broadcast
// layer.
type BallResult struct {
	Ball             *cricket.BallEvent `json:"ball_event"`
	Over             *cricket.Over      `json:"over"`
	Innings          *cricket.Innings   `json:"innings"`
	OverCompleted    bool               `json:"over_completed"`
	InningsCompleted bool               `json:"innings_completed"`
}

// UndoResult is what UndoLastBall returns.
type UndoResult struct {
	RemovedBall  *cricket.BallEvent `json:"removed_ball"`
	Innings      *cricket.Innings   `json:"innings"`
	OverReopened bool               `json:"over_reopened"`
}

// inningsLocks hands out one mutex per innings id.
type inningsLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *inningsLocks) get(inningsID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := l.locks[inningsID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[inningsID] = lock
	}
	return lock
}
