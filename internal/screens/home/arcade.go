package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/ui/theme"
)

const arcadeTitleFull = ` ██████╗ ██╗   ██╗██╗███████╗
██╔═══██╗██║   ██║██║╚══███╔╝
██║   ██║██║   ██║██║  ███╔╝
██║▄▄ ██║██║   ██║██║ ███╔╝
╚██████╔╝╚██████╔╝██║███████╗
 ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝
         W  A  T  C  H`

const arcadeTitleCompact = "Q · U · I · Z · W · A · T · C · H"

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Highlight).
		Bold(true)

	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar renders the dashboard stats in a double-bordered box.
func renderStatsBar(subjects, mastered int, cameraName string, cw int, compact bool) string {
	subjectStyle := lipgloss.NewStyle().Foreground(theme.Info).Bold(true)
	masteredStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			subjectStyle.Render(fmt.Sprintf("◆%d", subjects)),
			masteredStyle.Render(fmt.Sprintf("★%d", mastered)),
			cameraText(cameraName, true),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			subjectStyle.Render(fmt.Sprintf("◆ %d SUBJECTS", subjects)),
			masteredStyle.Render(fmt.Sprintf("★ %d MASTERED", mastered)),
			cameraText(cameraName, false),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Info).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func cameraText(name string, compact bool) string {
	if name == "" || name == "none" {
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if compact {
			return style.Render("◌")
		}
		return style.Render("◌ NO CAMERA")
	}
	style := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	if compact {
		return style.Render("◉")
	}
	return style.Render("◉ " + strings.ToUpper(name))
}

func renderNotice(text string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ " + text)
}

func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
