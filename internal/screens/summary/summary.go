package summary

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/mastery"
	"github.com/abhisek/quizwatch/internal/quiz"
	"github.com/abhisek/quizwatch/internal/router"
	"github.com/abhisek/quizwatch/internal/screen"
	"github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/ui/layout"
	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	summary session.Summary
}

var (
	_ screen.Screen          = (*SummaryScreen)(nil)
	_ screen.KeyHintProvider = (*SummaryScreen)(nil)
	_ screen.BackHandler     = (*SummaryScreen)(nil)
)

// New creates a new SummaryScreen.
func New(summary session.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) HandlesBack() bool { return true }

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func line(width int, fg color.Color, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(fg).
		Render(text)
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Session complete!"))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(line(width, theme.TextDim,
		fmt.Sprintf("%s · %s · %d:%02d", sum.Mode.Label(), sum.Topic, mins, secs)))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Questions: %d        Correct: %d        Accuracy: %.0f%%",
		sum.Answered, sum.Correct, sum.Accuracy*100)
	b.WriteString(line(width, theme.Text, stats))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", max(min(width-8, 60), 0)))

	section := func(title string) {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(title)))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")
	}

	if len(sum.ByDifficulty) > 0 {
		section("By difficulty")
		for _, d := range []quiz.Difficulty{quiz.Easy, quiz.Medium, quiz.Hard} {
			r, ok := sum.ByDifficulty[d]
			if !ok {
				continue
			}
			b.WriteString(line(width, theme.Text, fmt.Sprintf("%-8s %d/%d correct", d, r.Correct, r.Attempted)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sum.Mastery) > 0 {
		section("Mastery")
		changes := append([]mastery.Change(nil), sum.Mastery...)
		sort.Slice(changes, func(i, j int) bool { return changes[i].SubjectKey < changes[j].SubjectKey })
		for _, c := range changes {
			fg := theme.Text
			switch {
			case c.Delta() > 0:
				fg = theme.Success
			case c.Delta() < 0:
				fg = theme.Error
			}
			band := mastery.BandFor(c.After)
			b.WriteString(line(width, fg, fmt.Sprintf("%s %s  %d → %d (%+d)",
				band.Icon(), c.SubjectKey, c.Before, c.After, c.Delta())))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	section("Monitoring")
	if sum.Monitored {
		b.WriteString(line(width, theme.Text, fmt.Sprintf("%d evidence frames · %d attention samples",
			sum.EvidenceFrames, sum.AttentionSamples)))
	} else {
		b.WriteString(line(width, theme.TextDim, "Not monitored"))
	}
	return b.String()
}
