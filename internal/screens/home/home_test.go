package home

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwatch/internal/router"
	"github.com/abhisek/quizwatch/internal/store"
	sess "github.com/abhisek/quizwatch/internal/session"
)

func scores(s ...store.MasteryScore) func(context.Context) ([]store.MasteryScore, error) {
	return func(context.Context) ([]store.MasteryScore, error) { return s, nil }
}

func TestHome_StatsCountMastered(t *testing.T) {
	h := New(Options{
		Engine:     sess.New(sess.Config{}),
		Scores:     scores(store.MasteryScore{SubjectKey: "a", Score: 90}, store.MasteryScore{SubjectKey: "b", Score: 40}),
		CameraName: "ffmpeg:/dev/video0",
	})
	cmd := h.Init()
	require.NotNil(t, cmd)
	h.Update(cmd())

	assert.Equal(t, 2, h.subjects)
	assert.Equal(t, 1, h.mastered)
	assert.Contains(t, h.View(120, 40), "1 MASTERED")
}

func TestHome_ResumeRefreshes(t *testing.T) {
	var list []store.MasteryScore
	h := New(Options{Scores: func(context.Context) ([]store.MasteryScore, error) { return list, nil }})
	h.Update(h.Init()())
	assert.Equal(t, 0, h.subjects)

	list = append(list, store.MasteryScore{SubjectKey: "a", Score: 10})
	h.Update(h.Resume()())
	assert.Equal(t, 1, h.subjects)
}

func TestHome_StatsError(t *testing.T) {
	h := New(Options{Scores: func(context.Context) ([]store.MasteryScore, error) { return nil, errors.New("boom") }})
	h.Update(h.Init()())
	assert.Contains(t, h.View(120, 40), "boom")
}

func TestHome_StartPushesSetup(t *testing.T) {
	h := New(Options{Engine: sess.New(sess.Config{})})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "New Session", msg.Screen.Title())
}

func TestHome_StartDisabledWithoutEngine(t *testing.T) {
	h := New(Options{})
	// START SESSION and HISTORY are disabled.
	assert.Equal(t, 2, h.menu.Selected)
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Mastery", msg.Screen.Title())
}

type emptyHistory struct{}

func (emptyHistory) QuerySessionEvents(context.Context, store.QueryOpts) ([]store.SessionEvent, error) {
	return nil, nil
}

func (emptyHistory) QuerySessionReports(context.Context, store.QueryOpts) ([]store.SessionReport, error) {
	return nil, nil
}

func TestHome_HistoryPushesScreen(t *testing.T) {
	h := New(Options{History: emptyHistory{}, UserID: "ada"})
	require.False(t, h.menu.Items[1].Disabled)
	assert.Equal(t, 1, h.menu.Selected)

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "History", msg.Screen.Title())
}

func TestHome_Mascot(t *testing.T) {
	assert.Equal(t, MascotAlert, New(Options{CameraName: "none"}).mascot())
	assert.Equal(t, MascotIdle, New(Options{CameraName: "file:still.jpg"}).mascot())
}

func TestHome_CompactView(t *testing.T) {
	h := New(Options{Notice: "No LLM API key configured"})
	view := h.View(60, 16)
	assert.Contains(t, view, "Q · U · I · Z")
	assert.Contains(t, view, "No LLM API key configured")
}
