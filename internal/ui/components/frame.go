package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/ui/theme"
)

const (
	maxContentWidth = 60
	minContentWidth = 20
)

// ContentWidth is the inner width shared by every box inside a
// CabinetFrame so their edges line up. It leaves room for the frame
// border and padding.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, minContentWidth), maxContentWidth)
}

var (
	cabinetStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(theme.Primary).
			Align(lipgloss.Center, lipgloss.Center)

	arcadeCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Align(lipgloss.Center).
			Padding(1, 2)
)

// CabinetFrame draws the double border around a full screen and centers
// content inside it.
func CabinetFrame(content string, width, height int) string {
	return cabinetStyle.Width(width - 2).Height(height - 2).Render(content)
}

// ArcadeCard boxes content at content width cw.
func ArcadeCard(content string, cw int) string {
	return arcadeCardStyle.Width(cw - 2).Render(content)
}
