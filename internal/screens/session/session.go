package session

import (
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizwatch/internal/quiz"
	"github.com/abhisek/quizwatch/internal/router"
	"github.com/abhisek/quizwatch/internal/screen"
	sess "github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/ui/components"
	"github.com/abhisek/quizwatch/internal/ui/layout"
)

// SessionScreen drives one practice session on a shared engine.
type SessionScreen struct {
	engine *sess.Engine
	mode   quiz.Mode
	topic  string
	total  int

	cursor     int
	consentBtn int // 0 allow, 1 deny
	quitAsk    bool
	errMsg     string
	notice     string
	done       bool
}

var (
	_ screen.Screen          = (*SessionScreen)(nil)
	_ screen.KeyHintProvider = (*SessionScreen)(nil)
	_ screen.StatusProvider  = (*SessionScreen)(nil)
	_ screen.BackHandler     = (*SessionScreen)(nil)
	_ screen.Closer          = (*SessionScreen)(nil)
)

// New creates a session screen. The engine must be idle.
func New(engine *sess.Engine, mode quiz.Mode, topic string, total int) *SessionScreen {
	return &SessionScreen{engine: engine, mode: mode, topic: topic, total: total}
}

func (s *SessionScreen) Init() tea.Cmd {
	if err := s.engine.Configure(s.mode, s.topic, s.total); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	cmd, err := s.engine.Start()
	if err != nil {
		s.errMsg = err.Error()
	}
	return cmd
}

func (s *SessionScreen) Title() string {
	return s.mode.Label() + " Session"
}

func (s *SessionScreen) HandlesBack() bool { return true }

// Close abandons the session if it is still running.
func (s *SessionScreen) Close() tea.Cmd {
	if s.done {
		return nil
	}
	s.done = true
	cmd, _ := s.engine.Reset()
	return cmd
}

func (s *SessionScreen) Status() string {
	snap := s.engine.Snapshot()
	return components.MonitorBadge(snap.MonitoringActive, snap.ConsentGranted, snap.CameraErr)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.quitAsk {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	snap := s.engine.Snapshot()
	switch snap.Phase {
	case sess.PhaseAwaitingConsent:
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	case sess.PhaseActive:
		if snap.Question == nil {
			return []layout.KeyHint{
				{Key: "R", Description: "Retry"},
				{Key: "Esc", Description: "Quit"},
			}
		}
		if snap.Answer == sess.Submitted {
			return []layout.KeyHint{
				{Key: "Enter", Description: "Next"},
				{Key: "E", Description: "Explain"},
				{Key: "Esc", Description: "Quit"},
			}
		}
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Move"},
			{Key: "A-F", Description: "Pick"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return nil
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		cmd := s.handleKey(kmsg.String())
		return s, tea.Batch(cmd, s.checkFinished())
	}
	cmd := s.engine.Update(msg)
	return s, tea.Batch(cmd, s.checkFinished())
}

// checkFinished swaps in the summary once the last answer has been
// acknowledged. The engine is reset afterwards so the next session starts
// from idle.
func (s *SessionScreen) checkFinished() tea.Cmd {
	if s.done || s.engine.Snapshot().Phase != sess.PhaseFinished {
		return nil
	}
	sum := s.engine.Summary()
	s.done = true
	reset, _ := s.engine.Reset()
	return tea.Batch(reset, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: newSummaryScreen(sum)}
	})
}

func (s *SessionScreen) handleKey(key string) tea.Cmd {
	if s.errMsg != "" {
		return pop
	}
	if s.quitAsk {
		switch key {
		case "y", "Y":
			s.quitAsk = false
			return pop
		case "n", "N", "esc":
			s.quitAsk = false
		}
		return nil
	}

	snap := s.engine.Snapshot()
	switch snap.Phase {
	case sess.PhaseAwaitingConsent:
		return s.handleConsentKey(key)
	case sess.PhaseActive:
		if key == "esc" {
			s.quitAsk = true
			return nil
		}
		if snap.Question == nil {
			if key == "r" || key == "R" {
				return s.do(s.engine.Start())
			}
			return nil
		}
		if snap.Answer == sess.Submitted {
			return s.handleSubmittedKey(key)
		}
		return s.handleQuestionKey(key, snap.Question)
	case sess.PhaseIdle:
		return pop
	}
	return nil
}

func (s *SessionScreen) handleConsentKey(key string) tea.Cmd {
	switch key {
	case "left", "h", "right", "l", "tab":
		s.consentBtn = 1 - s.consentBtn
		return nil
	case "y", "Y":
		return s.decide(true)
	case "n", "N":
		return s.decide(false)
	case "enter":
		return s.decide(s.consentBtn == 0)
	case "esc":
		return pop
	}
	return nil
}

// decide answers the consent prompt. A refusal ends this attempt and goes
// back to setup.
func (s *SessionScreen) decide(allow bool) tea.Cmd {
	cmd, err := s.engine.GrantConsent(allow)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	if !allow {
		return tea.Batch(cmd, pop)
	}
	s.cursor = 0
	return cmd
}

func (s *SessionScreen) handleQuestionKey(key string, q *sess.LiveQuestion) tea.Cmd {
	n := len(q.Options)
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
		return nil
	case "down", "j":
		if s.cursor < n-1 {
			s.cursor++
		}
		return nil
	case "space":
		return s.do(s.engine.SelectOption(s.cursor))
	case "enter":
		if q.Selected < 0 || q.Selected != s.cursor {
			if cmd, err := s.engine.SelectOption(s.cursor); err != nil {
				s.notice = err.Error()
				return cmd
			}
		}
		s.notice = ""
		return s.do(s.engine.SubmitAnswer())
	}
	if i, ok := components.OptionIndex(key, n); ok {
		s.cursor = i
		return s.do(s.engine.SelectOption(i))
	}
	return nil
}

func (s *SessionScreen) handleSubmittedKey(key string) tea.Cmd {
	switch key {
	case "e", "E":
		return s.do(s.engine.RequestExplanation())
	case "enter", "n", "N", "space":
		s.cursor = 0
		return s.do(s.engine.NextStep())
	}
	return nil
}

// do surfaces operation errors as a transient notice; a rejected
// operation never ends the session.
func (s *SessionScreen) do(cmd tea.Cmd, err error) tea.Cmd {
	switch {
	case err == nil:
		s.notice = ""
	case errors.Is(err, sess.ErrNoSelection):
		s.notice = "Pick an option first."
	default:
		s.notice = err.Error()
	}
	return cmd
}

func pop() tea.Msg { return router.PopScreenMsg{} }
