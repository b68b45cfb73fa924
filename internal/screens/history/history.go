package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/attention"
	"github.com/abhisek/quizwatch/internal/quiz"
	"github.com/abhisek/quizwatch/internal/screen"
	"github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/store"
	"github.com/abhisek/quizwatch/internal/ui/layout"
	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// Source is the slice of the event log the screen reads.
type Source interface {
	QuerySessionEvents(ctx context.Context, opts store.QueryOpts) ([]store.SessionEvent, error)
	QuerySessionReports(ctx context.Context, opts store.QueryOpts) ([]store.SessionReport, error)
}

const scanLimit = 500

type historyLoadedMsg struct {
	Sessions []store.SessionEvent
	Err      error
}

type reportsLoadedMsg struct {
	SessionID string
	Reports   []store.SessionReport
	Err       error
}

// HistoryScreen lists past sessions, newest first. Enter expands a
// session into its attention readings.
type HistoryScreen struct {
	source   Source
	userID   string
	sessions []store.SessionEvent
	reports  map[string][]store.SessionReport
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen for one learner.
func New(source Source, userID string) *HistoryScreen {
	return &HistoryScreen{
		source:   source,
		userID:   userID,
		reports:  make(map[string][]store.SessionReport),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	source, user := s.source, s.userID
	return func() tea.Msg {
		events, err := source.QuerySessionEvents(context.Background(), store.QueryOpts{Limit: scanLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		var ended []store.SessionEvent
		for _, e := range events {
			if e.UserID != user {
				continue
			}
			if e.Action == session.ActionFinish || e.Action == session.ActionAbandon {
				ended = append(ended, e)
			}
		}
		return historyLoadedMsg{Sessions: ended}
	}
}

func (s *HistoryScreen) loadReports(sessionID string) tea.Cmd {
	source := s.source
	return func() tea.Msg {
		reps, err := source.QuerySessionReports(context.Background(), store.QueryOpts{SessionID: sessionID})
		return reportsLoadedMsg{SessionID: sessionID, Reports: reps, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case reportsLoadedMsg:
		if msg.Err == nil {
			s.reports[msg.SessionID] = msg.Reports
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected >= len(s.sessions) {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			id := s.sessions[s.selected].SessionID
			if _, ok := s.reports[id]; s.expanded[s.selected] && !ok {
				return s, s.loadReports(id)
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, ev := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(prefix+sessionLine(ev))))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, line := range s.detailLines(ev.SessionID) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func sessionLine(ev store.SessionEvent) string {
	date := ev.Timestamp.Local().Format("Jan 02, 2006 15:04")
	mode := quiz.Mode(ev.Mode).Label()
	topic := ev.Topic
	if topic == "" {
		topic = "-"
	}
	if ev.Action == session.ActionAbandon {
		return fmt.Sprintf("%s  %-10s  %-20s  abandoned at %d/%d",
			date, mode, topic, ev.StepIndex+1, ev.TotalQuestions)
	}
	var accuracy float64
	if ev.TotalQuestions > 0 {
		accuracy = float64(ev.Score) / float64(ev.TotalQuestions) * 100
	}
	return fmt.Sprintf("%s  %-10s  %-20s  %d/%d  %.0f%%",
		date, mode, topic, ev.Score, ev.TotalQuestions, accuracy)
}

func (s *HistoryScreen) detailLines(sessionID string) []string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	reps, ok := s.reports[sessionID]
	if !ok {
		return []string{dim.Render("    Loading...")}
	}

	var lines []string
	for _, r := range reps {
		if r.Kind != string(session.ReportAttention) || r.ConfusionScore == nil {
			continue
		}
		mood := attention.ParseMood(r.Mood)
		line := fmt.Sprintf("    Q%d  confusion %3d  %s", r.StepIndex+1, *r.ConfusionScore, mood)
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ConfusionColor(*r.ConfusionScore)).Render(line))
	}
	if len(lines) == 0 {
		return []string{dim.Render("    No attention readings this session")}
	}
	return lines
}
