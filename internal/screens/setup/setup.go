// Package setup collects the mode, topic and question count for a session.
package setup

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/quiz"
	"github.com/abhisek/quizwatch/internal/router"
	"github.com/abhisek/quizwatch/internal/screen"
	sessionscreen "github.com/abhisek/quizwatch/internal/screens/session"
	sess "github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/ui/components"
	"github.com/abhisek/quizwatch/internal/ui/layout"
	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// Defaults pre-fill the form.
type Defaults struct {
	Mode      quiz.Mode
	Topic     string
	Questions int
}

type step int

const (
	stepMode step = iota
	stepTopic
	stepCount
)

// SetupScreen is a three-step form that launches a session.
type SetupScreen struct {
	engine *sess.Engine
	step   step
	mode   quiz.Mode
	modes  components.Menu
	topic  components.TextInput
	count  components.TextInput
	errMsg string
}

var (
	_ screen.Screen          = (*SetupScreen)(nil)
	_ screen.KeyHintProvider = (*SetupScreen)(nil)
)

// New creates the setup form.
func New(engine *sess.Engine, d Defaults) *SetupScreen {
	s := &SetupScreen{engine: engine, mode: d.Mode}

	items := make([]components.MenuItem, 0, len(quiz.Modes))
	selected := 0
	for i, m := range quiz.Modes {
		m := m
		if m == d.Mode {
			selected = i
		}
		items = append(items, components.MenuItem{
			Label:  fmt.Sprintf("%-11s", m.Label()),
			Detail: modeBlurb(m),
			Action: func() tea.Cmd { return s.chooseMode(m) },
		})
	}
	s.modes = components.NewMenu(items)
	s.modes.Selected = selected

	s.topic = components.NewTextInput("e.g. fractions, photosynthesis", 80)
	s.topic.SetValue(d.Topic)

	n := d.Questions
	if n <= 0 {
		n = 5
	}
	s.count = components.NewNumberInput(sess.MinQuestions, sess.MaxQuestions, sess.ClampQuestions(n))
	return s
}

func modeBlurb(m quiz.Mode) string {
	switch m {
	case quiz.ModeCurriculum:
		return "difficulty follows your mastery"
	case quiz.ModeDiscovery:
		return "explore any topic at medium difficulty"
	case quiz.ModeExam:
		return "hard, exam-style questions"
	}
	return ""
}

func (s *SetupScreen) Init() tea.Cmd { return nil }

func (s *SetupScreen) Title() string { return "New Session" }

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	if s.step == stepMode {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Mode"},
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Next"},
		{Key: "Tab", Description: "Previous"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) chooseMode(m quiz.Mode) tea.Cmd {
	s.mode = m
	s.step = stepTopic
	return s.topic.Init()
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, isKey := msg.(tea.KeyMsg)
	if isKey && kmsg.String() == "tab" && s.step > stepMode {
		s.step--
		s.errMsg = ""
		return s, nil
	}

	var cmd tea.Cmd
	switch s.step {
	case stepMode:
		s.modes, cmd = s.modes.Update(msg)
	case stepTopic:
		if isKey && kmsg.String() == "enter" {
			if strings.TrimSpace(s.topic.Value()) == "" {
				s.errMsg = "Enter a topic."
				return s, nil
			}
			s.errMsg = ""
			s.step = stepCount
			return s, s.count.Init()
		}
		s.topic, cmd = s.topic.Update(msg)
	case stepCount:
		if isKey && kmsg.String() == "enter" {
			return s, s.launch()
		}
		s.count, cmd = s.count.Update(msg)
	}
	return s, cmd
}

func (s *SetupScreen) launch() tea.Cmd {
	n, ok := s.count.Int()
	if !ok {
		s.errMsg = fmt.Sprintf("Choose between %d and %d questions.", sess.MinQuestions, sess.MaxQuestions)
		return nil
	}
	s.errMsg = ""
	topic := strings.TrimSpace(s.topic.Value())
	next := sessionscreen.New(s.engine, s.mode, topic, n)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	label := func(st step, text string) string {
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if s.step == st {
			style = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
		}
		return style.Render(text)
	}

	b.WriteString(label(stepMode, "1. Mode"))
	b.WriteString("\n")
	if s.step == stepMode {
		b.WriteString(s.modes.View())
	} else {
		b.WriteString("    " + theme.Body.Render(s.mode.Label()) + "\n")
	}
	b.WriteString("\n")

	topicLabel := "2. Topic"
	if s.mode == quiz.ModeCurriculum {
		topicLabel = "2. Concept"
	}
	b.WriteString(label(stepTopic, topicLabel))
	b.WriteString("\n")
	if s.step >= stepTopic {
		b.WriteString("    " + s.topic.View() + "\n")
	}
	b.WriteString("\n")

	b.WriteString(label(stepCount, fmt.Sprintf("3. Questions (%d-%d)", sess.MinQuestions, sess.MaxQuestions)))
	b.WriteString("\n")
	if s.step >= stepCount {
		b.WriteString("    " + s.count.View() + "\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	card := theme.Card.Width(min(width-8, 76)).Render(b.String())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, card)
}
