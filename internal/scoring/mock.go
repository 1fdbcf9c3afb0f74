package scoring

import (
	"sync"

	"github.com/coverdrive/scorebook/internal/cricket"
)

// MockStore is a mock implementation of the ScoringStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	StartInningsFunc func(matchID, battingTeamID, bowlingTeamID string, targetRuns *int) (*cricket.Innings, error)
	EndInningsFunc   func(inningsID string, isDeclared bool) (*cricket.Innings, error)
	StartOverFunc    func(inningsID, bowlerID string) (*cricket.Over, error)
	RecordBallFunc   func(inningsID string, ball BallInput, wicket *WicketInput) (*BallResult, error)
	UndoLastBallFunc func(inningsID string) (*UndoResult, error)
	GetInningsFunc   func(inningsID string) (*cricket.Innings, error)

	// Call records
	RecordBallCalls []struct {
		InningsID string
		Ball      BallInput
		Wicket    *WicketInput
	}
	UndoLastBallCalls []string
	StartOverCalls    []struct {
		InningsID string
		BowlerID  string
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordBallCalls = nil
	m.UndoLastBallCalls = nil
	m.StartOverCalls = nil
}

func (m *MockStore) StartInnings(matchID, battingTeamID, bowlingTeamID string, targetRuns *int) (*cricket.Innings, error) {
	if m.StartInningsFunc != nil {
		return m.StartInningsFunc(matchID, battingTeamID, bowlingTeamID, targetRuns)
	}
	return &cricket.Innings{MatchID: matchID, BattingTeamID: battingTeamID, BowlingTeamID: bowlingTeamID, Number: 1}, nil
}

func (m *MockStore) EndInnings(inningsID string, isDeclared bool) (*cricket.Innings, error) {
	if m.EndInningsFunc != nil {
		return m.EndInningsFunc(inningsID, isDeclared)
	}
	return &cricket.Innings{ID: inningsID, IsCompleted: true, IsDeclared: isDeclared}, nil
}

func (m *MockStore) StartOver(inningsID, bowlerID string) (*cricket.Over, error) {
	m.mu.Lock()
	m.StartOverCalls = append(m.StartOverCalls, struct {
		InningsID string
		BowlerID  string
	}{inningsID, bowlerID})
	m.mu.Unlock()
	if m.StartOverFunc != nil {
		return m.StartOverFunc(inningsID, bowlerID)
	}
	return &cricket.Over{InningsID: inningsID, BowlerID: bowlerID, Number: 1}, nil
}

func (m *MockStore) RecordBall(inningsID string, ball BallInput, wicket *WicketInput) (*BallResult, error) {
	m.mu.Lock()
	m.RecordBallCalls = append(m.RecordBallCalls, struct {
		InningsID string
		Ball      BallInput
		Wicket    *WicketInput
	}{inningsID, ball, wicket})
	m.mu.Unlock()
	if m.RecordBallFunc != nil {
		return m.RecordBallFunc(inningsID, ball, wicket)
	}
	return &BallResult{
		Ball:    &cricket.BallEvent{InningsID: inningsID},
		Over:    &cricket.Over{InningsID: inningsID},
		Innings: &cricket.Innings{ID: inningsID},
	}, nil
}

func (m *MockStore) UndoLastBall(inningsID string) (*UndoResult, error) {
	m.mu.Lock()
	m.UndoLastBallCalls = append(m.UndoLastBallCalls, inningsID)
	m.mu.Unlock()
	if m.UndoLastBallFunc != nil {
		return m.UndoLastBallFunc(inningsID)
	}
	return &UndoResult{
		RemovedBall: &cricket.BallEvent{InningsID: inningsID},
		Innings:     &cricket.Innings{ID: inningsID},
	}, nil
}

func (m *MockStore) GetInnings(inningsID string) (*cricket.Innings, error) {
	if m.GetInningsFunc != nil {
		return m.GetInningsFunc(inningsID)
	}
	return &cricket.Innings{ID: inningsID}, nil
}
