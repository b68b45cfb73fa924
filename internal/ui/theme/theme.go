// Package theme holds the palette and shared styles. Colours are picked
// to stay readable on dark terminals.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/mastery"
)

var (
	Primary   = lipgloss.Color("#8B5CF6") // violet
	Secondary = lipgloss.Color("#14B8A6") // teal
	Accent    = lipgloss.Color("#F97316") // orange
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Warning   = lipgloss.Color("#EAB308")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")

	Highlight = lipgloss.Color("#FACC15") // selected menu buttons
	Info      = lipgloss.Color("#22D3EE") // stats and titles

	// Recording marks live camera monitoring.
	Recording = lipgloss.Color("#EF4444")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// BandColor is the fill colour for a mastery band.
func BandColor(b mastery.Band) color.Color {
	switch b {
	case mastery.BandMastered:
		return Success
	case mastery.BandProficient:
		return Secondary
	case mastery.BandLearning:
		return Warning
	default:
		return TextDim
	}
}

// ConfusionColor grades a 0-100 confusion score: calm, watch, struggling.
func ConfusionColor(score int) color.Color {
	switch {
	case score >= 70:
		return Error
	case score >= 40:
		return Warning
	default:
		return Success
	}
}
