package notifier

import (
	"sync"

	"github.com/coverdrive/scorebook/internal/cricket"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendMatchStartedFunc   func(match *cricket.Match, toss *cricket.Toss, dryRun bool) error
	SendInningsSummaryFunc func(innings *cricket.Innings, dryRun bool) error
	SendMatchResultFunc    func(match *cricket.Match, dryRun bool) error

	// Call records
	SendMatchStartedCalls []struct {
		Match *cricket.Match
		Toss  *cricket.Toss
	}
	SendInningsSummaryCalls []*cricket.Innings
	SendMatchResultCalls    []*cricket.Match
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchStartedCalls = nil
	m.SendInningsSummaryCalls = nil
	m.SendMatchResultCalls = nil
}

func (m *Mock) SendMatchStarted(match *cricket.Match, toss *cricket.Toss, dryRun bool) error {
	m.mu.Lock()
	m.SendMatchStartedCalls = append(m.SendMatchStartedCalls, struct {
		Match *cricket.Match
		Toss  *cricket.Toss
	}{match, toss})
	m.mu.Unlock()
	if m.SendMatchStartedFunc != nil {
		return m.SendMatchStartedFunc(match, toss, dryRun)
	}
	return nil
}

func (m *Mock) SendInningsSummary(innings *cricket.Innings, dryRun bool) error {
	m.mu.Lock()
	m.SendInningsSummaryCalls = append(m.SendInningsSummaryCalls, innings)
	m.mu.Unlock()
	if m.SendInningsSummaryFunc != nil {
		return m.SendInningsSummaryFunc(innings, dryRun)
	}
	return nil
}

func (m *Mock) SendMatchResult(match *cricket.Match, dryRun bool) error {
	m.mu.Lock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, match)
	m.mu.Unlock()
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(match, dryRun)
	}
	return nil
}
