package metrics

import "sync"

// Mock is a no-op Metrics implementation that counts calls for assertions.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	BallsRecordedCalls    int
	BallsUndoneCalls      int
	OversCompletedCalls   int
	InningsCompletedCalls int
	MatchesCompletedCalls int
	ScoringDurations      []float64
	SlackNotifSentCalls   int
	SlackNotifFailedCalls int
	StartupTimes          []float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncBallsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BallsRecordedCalls++
}

func (m *Mock) IncBallsUndone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BallsUndoneCalls++
}

func (m *Mock) IncOversCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OversCompletedCalls++
}

func (m *Mock) IncInningsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InningsCompletedCalls++
}

func (m *Mock) IncMatchesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesCompletedCalls++
}

func (m *Mock) ObserveScoringDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScoringDurations = append(m.ScoringDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifSentCalls++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifFailedCalls++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimes = append(m.StartupTimes, duration)
}
