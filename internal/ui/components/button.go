package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// KeyButton is an inline action labelled with the key that triggers it,
// e.g. "[y] Allow camera".
type KeyButton struct {
	Key     string
	Label   string
	Focused bool
}

var (
	keyButtonFocused = lipgloss.NewStyle().
				Background(theme.Primary).
				Foreground(theme.Text).
				Bold(true).
				Padding(0, 2)

	keyButtonIdle = lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 2)
)

// View renders the button.
func (b KeyButton) View() string {
	text := b.Label
	if b.Key != "" {
		text = "[" + b.Key + "] " + text
	}
	if b.Focused {
		return keyButtonFocused.Render("▸ " + text)
	}
	return keyButtonIdle.Render(text)
}
