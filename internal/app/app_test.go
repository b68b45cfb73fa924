package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwatch/internal/router"
	"github.com/abhisek/quizwatch/internal/screen"
	"github.com/abhisek/quizwatch/internal/ui/layout"
)

type backScreen struct {
	handles bool
	keys    []string
	closed  int
}

func (s *backScreen) Init() tea.Cmd        { return nil }
func (s *backScreen) View(int, int) string { return "back" }
func (s *backScreen) Title() string        { return "Back" }
func (s *backScreen) HandlesBack() bool    { return s.handles }
func (s *backScreen) Status() string       { return "● REC" }
func (s *backScreen) Close() tea.Cmd       { s.closed++; return nil }

func (s *backScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Y", Description: "Yes"}}
}

func (s *backScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		s.keys = append(s.keys, k.String())
	}
	return s, nil
}

func model(top screen.Screen) AppModel {
	m := newAppModel(Deps{UserID: "ada"})
	m.router.Push(top)
	return m
}

func TestEscPopsByDefault(t *testing.T) {
	top := &backScreen{}
	m := model(top)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
	assert.Empty(t, top.keys)
}

func TestEscForwardedToBackHandler(t *testing.T) {
	top := &backScreen{handles: true}
	m := model(top)

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, []string{"esc"}, top.keys)
}

func TestEscAtRootIsNoop(t *testing.T) {
	m := newAppModel(Deps{UserID: "ada"})
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
}

func TestFooterUsesScreenHints(t *testing.T) {
	top := &backScreen{}
	m := model(top)
	hints := m.footerHints(top)
	require.Len(t, hints, 2)
	assert.Equal(t, "Y", hints[0].Key)
	assert.Equal(t, "Ctrl+C", hints[1].Key)
}

func TestStatusFallsBackToUser(t *testing.T) {
	m := newAppModel(Deps{UserID: "ada"})
	assert.Equal(t, "ada", m.status(m.router.Active()))

	top := &backScreen{}
	m.router.Push(top)
	assert.Equal(t, "● REC", m.status(top))
}

func TestRunNowClosesScreens(t *testing.T) {
	a, b := &backScreen{}, &backScreen{}
	m := model(a)
	m.router.Push(b)
	runNow(m.router.CloseAll())
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
}
