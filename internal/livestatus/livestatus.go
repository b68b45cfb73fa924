// Package livestatus publishes the current proctoring state of each
// learner so a supervisor can watch sessions as they run.
package livestatus

import (
	"context"
	"sync"
	"time"
)

// Status is the latest known state of one learner's session.
type Status struct {
	UserID           string    `json:"user_id"`
	SessionID        string    `json:"session_id"`
	Phase            string    `json:"phase"`
	Mode             string    `json:"mode"`
	Topic            string    `json:"topic"`
	StepIndex        int       `json:"step_index"`
	TotalQuestions   int       `json:"total_questions"`
	Score            int       `json:"score"`
	MonitoringActive bool      `json:"monitoring_active"`
	ConfusionScore   *int      `json:"confusion_score,omitempty"`
	Mood             string    `json:"mood,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Board stores one Status per learner.
type Board interface {
	Put(ctx context.Context, st Status) error
	// Get returns nil when the learner has no live status.
	Get(ctx context.Context, userID string) (*Status, error)
	Clear(ctx context.Context, userID string) error
	Close() error
}

// Nop ignores all writes.
type Nop struct{}

func (Nop) Put(context.Context, Status) error { return nil }
func (Nop) Get(context.Context, string) (*Status, error) { return nil, nil }
func (Nop) Clear(context.Context, string) error { return nil }
func (Nop) Close() error { return nil }

// Memory keeps statuses in a map.
type Memory struct {
	mu       sync.Mutex
	statuses map[string]Status
}

func NewMemory() *Memory { return &Memory{statuses: make(map[string]Status)} }

func (m *Memory) Put(_ context.Context, st Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[st.UserID] = st
	return nil
}

func (m *Memory) Get(_ context.Context, userID string) (*Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.statuses[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (m *Memory) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.statuses, userID)
	return nil
}

func (m *Memory) Close() error { return nil }
