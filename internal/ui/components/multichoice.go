package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// OptionLabel returns the letter shown next to option i.
func OptionLabel(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// OptionIndex maps a typed key ("a", "B", "1") to an option index.
func OptionIndex(key string, n int) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	var i int
	switch {
	case c >= 'a' && c <= 'z':
		i = int(c - 'a')
	case c >= 'A' && c <= 'Z':
		i = int(c - 'A')
	case c >= '1' && c <= '9':
		i = int(c - '1')
	default:
		return 0, false
	}
	if i >= n {
		return 0, false
	}
	return i, true
}

// MultiChoice renders the options of a multiple-choice question. Before
// submission the cursor and the picked option are highlighted; afterwards
// the correct option is green and a wrong pick is red.
type MultiChoice struct {
	Options      []string
	Cursor       int
	Selected     int // -1 when nothing is picked
	Submitted    bool
	CorrectIndex int
}

func (m MultiChoice) View() string {
	lines := make([]string, 0, len(m.Options))
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Submitted {
			prefix = "▸ "
		}
		mark := " "
		if i == m.Selected {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, OptionLabel(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Submitted && i == m.CorrectIndex:
			style = theme.Correct
		case m.Submitted && i == m.Selected:
			style = theme.Incorrect
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}
