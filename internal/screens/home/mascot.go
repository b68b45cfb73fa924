package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle     MascotVariant = iota // camera ready
	MascotWatching                      // monitoring a session
	MascotAlert                         // no camera configured
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ?!? │
└─────┘`

const mascotWatching = `┌─────┐
│ ◎ ◎ │ ●
│  ▽  │
│ ?!? │
└─────┘`

const mascotAlert = `┌─────┐
│ - - │ !
│  ▽  │
│ ?!? │
└─────┘`

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch v {
	case MascotWatching:
		art = mascotWatching
		fg = theme.Recording
	case MascotAlert:
		art = mascotAlert
		fg = theme.Accent
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
