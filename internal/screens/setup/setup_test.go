package setup

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwatch/internal/quiz"
	"github.com/abhisek/quizwatch/internal/router"
	sess "github.com/abhisek/quizwatch/internal/session"
)

func press(s *SetupScreen, code rune, text string) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: code, Text: text})
	return cmd
}

func typeText(s *SetupScreen, text string) {
	for _, r := range text {
		press(s, r, string(r))
	}
}

func TestSetup_FullFlowPushesSession(t *testing.T) {
	s := New(sess.New(sess.Config{}), Defaults{Mode: quiz.ModeDiscovery, Questions: 5})
	assert.Equal(t, 1, s.modes.Selected)

	press(s, tea.KeyDown, "")
	press(s, tea.KeyEnter, "")
	assert.Equal(t, quiz.ModeExam, s.mode)
	assert.Equal(t, stepTopic, s.step)

	typeText(s, "rivers")
	press(s, tea.KeyEnter, "")
	require.Equal(t, stepCount, s.step)

	cmd := press(s, tea.KeyEnter, "")
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Exam Session", msg.Screen.Title())
}

func TestSetup_EmptyTopicRejected(t *testing.T) {
	s := New(sess.New(sess.Config{}), Defaults{Mode: quiz.ModeCurriculum})
	press(s, tea.KeyEnter, "")
	press(s, tea.KeyEnter, "")

	assert.Equal(t, stepTopic, s.step)
	assert.Equal(t, "Enter a topic.", s.errMsg)
}

func TestSetup_CountOutOfRange(t *testing.T) {
	s := New(sess.New(sess.Config{}), Defaults{Mode: quiz.ModeCurriculum, Topic: "ratios", Questions: 5})
	press(s, tea.KeyEnter, "")
	press(s, tea.KeyEnter, "")
	require.Equal(t, stepCount, s.step)

	s.count.SetValue("42")
	assert.Nil(t, press(s, tea.KeyEnter, ""))
	assert.Contains(t, s.errMsg, "between 1 and 20")
}

func TestSetup_TabGoesBack(t *testing.T) {
	s := New(sess.New(sess.Config{}), Defaults{Mode: quiz.ModeCurriculum, Topic: "ratios"})
	press(s, tea.KeyEnter, "")
	require.Equal(t, stepTopic, s.step)
	press(s, tea.KeyTab, "")
	assert.Equal(t, stepMode, s.step)
}

func TestSetup_DefaultsClamped(t *testing.T) {
	s := New(sess.New(sess.Config{}), Defaults{Mode: quiz.ModeExam, Questions: 99})
	assert.Equal(t, "20", s.count.Value())
}
