package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// MonitorBadge renders the camera indicator shown in the header.
func MonitorBadge(active, consent bool, cameraErr error) string {
	switch {
	case active:
		return lipgloss.NewStyle().Foreground(theme.Recording).Bold(true).Render("● REC")
	case cameraErr != nil:
		return lipgloss.NewStyle().Foreground(theme.Warning).Render("◌ no camera")
	case consent:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("○ paused")
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render("○ off")
}
