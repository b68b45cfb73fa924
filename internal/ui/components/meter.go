package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/mastery"
	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// Meter is a horizontal bar for a 0-100 value with a trailing readout.
type Meter struct {
	Label string
	Value int
	Width int
	Fill  color.Color
}

// MasteryMeter colours the bar by the score's mastery band and prefixes
// the label with the band icon.
func MasteryMeter(subject string, score, width int) Meter {
	band := mastery.BandFor(score)
	return Meter{
		Label: band.Icon() + " " + subject,
		Value: score,
		Width: width,
		Fill:  theme.BandColor(band),
	}
}

// View renders the meter in exactly Width cells (the bar shrinks to fit,
// never below four cells).
func (m Meter) View() string {
	v := min(max(m.Value, 0), 100)
	fill := m.Fill
	if fill == nil {
		fill = theme.Secondary
	}

	label := ""
	if m.Label != "" {
		label = theme.Body.Render(m.Label) + "  "
	}
	readout := theme.Dim.Render(fmt.Sprintf(" %3d", v))

	bar := max(m.Width-lipgloss.Width(label)-lipgloss.Width(readout), 4)
	filled := bar * v / 100

	return label +
		lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", bar-filled)) +
		readout
}
