package match

import (
	"sync"

	"github.com/coverdrive/scorebook/internal/cricket"
)

// MockStore is a mock implementation of the MatchStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateMatchFunc   func(params CreateMatchParams) (*cricket.Match, error)
	GetMatchFunc      func(matchID string) (*cricket.Match, error)
	ListMatchesFunc   func(leagueID string, status cricket.MatchStatus) ([]*cricket.Match, error)
	GetTossFunc       func(matchID string) (*cricket.Toss, error)
	ConductTossFunc   func(matchID, winnerTeamID string, decision cricket.TossDecision) (*cricket.Toss, error)
	StartMatchFunc    func(matchID string) (*cricket.Match, error)
	CompleteMatchFunc func(matchID string, result Result) (*cricket.Match, error)

	// Call records
	CreateMatchCalls []CreateMatchParams
	ConductTossCalls []struct {
		MatchID      string
		WinnerTeamID string
		Decision     cricket.TossDecision
	}
	StartMatchCalls    []string
	CompleteMatchCalls []struct {
		MatchID string
		Result  Result
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
	m.CreateMatchCalls = nil
	m.ConductTossCalls = nil
	m.StartMatchCalls = nil
	m.CompleteMatchCalls = nil
}

func (m *MockStore) CreateMatch(params CreateMatchParams) (*cricket.Match, error) {
	m.mu.Lock()
	m.CreateMatchCalls = append(m.CreateMatchCalls, params)
	m.mu.Unlock()
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(params)
	}
	return &cricket.Match{}, nil
}

func (m *MockStore) GetMatch(matchID string) (*cricket.Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return &cricket.Match{ID: matchID}, nil
}

func (m *MockStore) ListMatches(leagueID string, status cricket.MatchStatus) ([]*cricket.Match, error) {
	if m.ListMatchesFunc != nil {
		return m.ListMatchesFunc(leagueID, status)
	}
	return nil, nil
}

func (m *MockStore) GetToss(matchID string) (*cricket.Toss, error) {
	if m.GetTossFunc != nil {
		return m.GetTossFunc(matchID)
	}
	return nil, nil
}

func (m *MockStore) ConductToss(matchID, winnerTeamID string, decision cricket.TossDecision) (*cricket.Toss, error) {
	m.mu.Lock()
	m.ConductTossCalls = append(m.ConductTossCalls, struct {
		MatchID      string
		WinnerTeamID string
		Decision     cricket.TossDecision
	}{matchID, winnerTeamID, decision})
	m.mu.Unlock()
	if m.ConductTossFunc != nil {
		return m.ConductTossFunc(matchID, winnerTeamID, decision)
	}
	return &cricket.Toss{MatchID: matchID, WinnerTeamID: winnerTeamID, Decision: decision}, nil
}

func (m *MockStore) StartMatch(matchID string) (*cricket.Match, error) {
	m.mu.Lock()
	m.StartMatchCalls = append(m.StartMatchCalls, matchID)
	m.mu.Unlock()
	if m.StartMatchFunc != nil {
		return m.StartMatchFunc(matchID)
	}
	return &cricket.Match{ID: matchID, Status: cricket.StatusLive}, nil
}

func (m *MockStore) CompleteMatch(matchID string, result Result) (*cricket.Match, error) {
	m.mu.Lock()
	m.CompleteMatchCalls = append(m.CompleteMatchCalls, struct {
		MatchID string
		Result  Result
	}{matchID, result})
	m.mu.Unlock()
	if m.CompleteMatchFunc != nil {
		return m.CompleteMatchFunc(matchID, result)
	}
	return &cricket.Match{ID: matchID, Status: cricket.StatusCompleted}, nil
}
