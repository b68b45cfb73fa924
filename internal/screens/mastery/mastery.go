// Package mastery lists the learner's mastery scores per subject.
package mastery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/screen"
	"github.com/abhisek/quizwatch/internal/store"
	"github.com/abhisek/quizwatch/internal/ui/components"
	"github.com/abhisek/quizwatch/internal/ui/layout"
	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// Lister loads every score for the current learner.
type Lister func(ctx context.Context) ([]store.MasteryScore, error)

type scoresLoadedMsg struct {
	scores []store.MasteryScore
	err    error
}

// MasteryScreen shows one progress bar per subject, highest score first.
type MasteryScreen struct {
	list    Lister
	scores  []store.MasteryScore
	err     error
	loading bool
	offset  int
}

var (
	_ screen.Screen          = (*MasteryScreen)(nil)
	_ screen.KeyHintProvider = (*MasteryScreen)(nil)
	_ screen.Resumer         = (*MasteryScreen)(nil)
)

// New creates the screen. A nil lister shows an empty list.
func New(list Lister) *MasteryScreen {
	return &MasteryScreen{list: list}
}

func (m *MasteryScreen) Init() tea.Cmd { return m.load() }

// Resume reloads when a screen above is popped.
func (m *MasteryScreen) Resume() tea.Cmd { return m.load() }

func (m *MasteryScreen) load() tea.Cmd {
	if m.list == nil {
		return nil
	}
	m.loading = true
	list := m.list
	return func() tea.Msg {
		scores, err := list(context.Background())
		return scoresLoadedMsg{scores: scores, err: err}
	}
}

func (m *MasteryScreen) Title() string { return "Mastery" }

func (m *MasteryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (m *MasteryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case scoresLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.scores = sortScores(msg.scores)
		m.offset = 0
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < len(m.scores)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func sortScores(in []store.MasteryScore) []store.MasteryScore {
	out := append([]store.MasteryScore(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SubjectKey < out[j].SubjectKey
	})
	return out
}

func (m *MasteryScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var body string
	switch {
	case m.err != nil:
		body = lipgloss.NewStyle().Foreground(theme.Error).Render("Could not load mastery: " + m.err.Error())
	case m.loading && len(m.scores) == 0:
		body = dim.Render("Loading...")
	case len(m.scores) == 0:
		body = dim.Render("No mastery yet. Finish a session to start tracking.")
	default:
		body = m.renderRows(cw-6, max(height-8, 1))
	}

	return components.CabinetFrame(components.ArcadeCard(body, cw), width, height)
}

func (m *MasteryScreen) renderRows(w, rows int) string {
	end := min(m.offset+rows, len(m.scores))
	lines := make([]string, 0, end-m.offset)
	for _, sc := range m.scores[m.offset:end] {
		label := fmt.Sprintf("%-16s", truncate(sc.SubjectKey, 16))
		lines = append(lines, components.MasteryMeter(label, sc.Score, w).View())
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
