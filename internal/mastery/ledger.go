// Package mastery keeps per-subject mastery scores for a learner.
package mastery

import (
	"context"
	"fmt"
)

const (
	MinScore = 0
	MaxScore = 100
)

// ScoreRepo loads and stores the latest score for a subject key.
type ScoreRepo interface {
	// LoadMasteryScore returns (score, true) when the learner has a score
	// for the key.
	LoadMasteryScore(ctx context.Context, userID, subjectKey string) (int, bool, error)
	StoreMasteryScore(ctx context.Context, userID, subjectKey string, score int) error
}

// Change records how a subject moved during the current session.
type Change struct {
	SubjectKey string
	Before     int
	After      int
	Answers    int
}

// Delta is After - Before.
func (c Change) Delta() int { return c.After - c.Before }

// Ledger applies score deltas for one learner. It caches only the values
// touched in the current session. Not safe for concurrent use; the session
// engine drives it from a single goroutine.
type Ledger struct {
	repo    ScoreRepo
	userID  string
	current map[string]int
	changes map[string]*Change
	order   []string
}

// NewLedger creates a ledger for userID backed by repo.
func NewLedger(repo ScoreRepo, userID string) *Ledger {
	return &Ledger{
		repo:    repo,
		userID:  userID,
		current: make(map[string]int),
		changes: make(map[string]*Change),
	}
}

// UserID returns the learner the ledger belongs to.
func (l *Ledger) UserID() string { return l.userID }

// Score returns the learner's score for subjectKey. Unknown subjects
// score 0.
func (l *Ledger) Score(ctx context.Context, subjectKey string) (int, error) {
	if v, ok := l.current[subjectKey]; ok {
		return v, nil
	}
	if l.repo == nil {
		return MinScore, nil
	}
	v, ok, err := l.repo.LoadMasteryScore(ctx, l.userID, subjectKey)
	if err != nil {
		return 0, fmt.Errorf("load mastery %q: %w", subjectKey, err)
	}
	if !ok {
		return MinScore, nil
	}
	v = Clamp(v)
	l.current[subjectKey] = v
	return v, nil
}

// ApplyDelta adds delta to the subject's score, clamps it to [0,100] and
// forwards the new value to the repo. The in-memory value is updated even
// when the repo write fails so the session stays consistent.
func (l *Ledger) ApplyDelta(ctx context.Context, subjectKey string, delta int) (int, error) {
	before, err := l.Score(ctx, subjectKey)
	if err != nil {
		return 0, err
	}
	after := Clamp(before + delta)
	l.current[subjectKey] = after

	ch, ok := l.changes[subjectKey]
	if !ok {
		ch = &Change{SubjectKey: subjectKey, Before: before}
		l.changes[subjectKey] = ch
		l.order = append(l.order, subjectKey)
	}
	ch.After = after
	ch.Answers++

	if l.repo != nil {
		if err := l.repo.StoreMasteryScore(ctx, l.userID, subjectKey, after); err != nil {
			return after, fmt.Errorf("store mastery %q: %w", subjectKey, err)
		}
	}
	return after, nil
}

// Changes returns the subjects touched this session in first-touch order.
func (l *Ledger) Changes() []Change {
	out := make([]Change, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, *l.changes[k])
	}
	return out
}

// Forget drops all cached values and recorded changes.
func (l *Ledger) Forget() {
	l.current = make(map[string]int)
	l.changes = make(map[string]*Change)
	l.order = nil
}

// Clamp bounds v to [MinScore, MaxScore].
func Clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
