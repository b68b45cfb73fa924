package history

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/store"
)

type fakeSource struct {
	events  []store.SessionEvent
	reports []store.SessionReport
	queries []string
}

func (f *fakeSource) QuerySessionEvents(context.Context, store.QueryOpts) ([]store.SessionEvent, error) {
	return f.events, nil
}

func (f *fakeSource) QuerySessionReports(_ context.Context, opts store.QueryOpts) ([]store.SessionReport, error) {
	f.queries = append(f.queries, opts.SessionID)
	return f.reports, nil
}

func event(user, id, action string, score, total int) store.SessionEvent {
	return store.SessionEvent{
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		SessionEventData: store.SessionEventData{
			SessionID: id, UserID: user, Action: action, Mode: "exam", Topic: "rivers",
			TotalQuestions: total, Score: score,
		},
	}
}

func intp(v int) *int { return &v }

func TestHistory_ListsEndedSessionsForUser(t *testing.T) {
	src := &fakeSource{events: []store.SessionEvent{
		event("ada", "s2", session.ActionFinish, 4, 5),
		event("ada", "s2", session.ActionStart, 0, 5),
		event("bob", "s3", session.ActionFinish, 1, 5),
		event("ada", "s1", session.ActionAbandon, 0, 5),
	}}
	h := New(src, "ada")
	h.Update(h.Init()())

	require.Len(t, h.sessions, 2)
	view := h.View(120, 30)
	assert.Contains(t, view, "4/5  80%")
	assert.Contains(t, view, "abandoned at 1/5")
	assert.NotContains(t, view, "1/5  20%")
}

func TestHistory_ExpandLoadsAttentionOnce(t *testing.T) {
	src := &fakeSource{
		events: []store.SessionEvent{event("ada", "s1", session.ActionFinish, 3, 5)},
		reports: []store.SessionReport{
			{SessionReportData: store.SessionReportData{Kind: "attention", StepIndex: 1, ConfusionScore: intp(72), Mood: "confused"}},
			{SessionReportData: store.SessionReportData{Kind: "complete"}},
		},
	}
	h := New(src, "ada")
	h.Update(h.Init()())

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Contains(t, h.View(120, 30), "Loading...")
	h.Update(cmd())

	view := h.View(120, 30)
	assert.Contains(t, view, "Q2  confusion  72  confused")

	// Collapse and expand again: cached.
	h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"s1"}, src.queries)
}

func TestHistory_Empty(t *testing.T) {
	h := New(&fakeSource{}, "ada")
	h.Update(h.Init()())
	assert.Contains(t, h.View(120, 30), "No sessions yet")
}
