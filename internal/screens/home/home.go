package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizwatch/internal/mastery"
	"github.com/abhisek/quizwatch/internal/router"
	"github.com/abhisek/quizwatch/internal/screen"
	"github.com/abhisek/quizwatch/internal/screens/history"
	masteryscreen "github.com/abhisek/quizwatch/internal/screens/mastery"
	"github.com/abhisek/quizwatch/internal/screens/setup"
	sess "github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/ui/components"
)

// Options configures the home screen.
type Options struct {
	Engine     *sess.Engine
	Scores     masteryscreen.Lister
	History    history.Source
	UserID     string
	CameraName string
	Defaults   setup.Defaults
	// Notice is shown under the menu, e.g. a missing API key warning.
	Notice string
}

type statsMsg struct {
	subjects int
	mastered int
	err      error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	opts     Options
	menu     components.Menu
	subjects int
	mastered int
	statsErr error
}

var (
	_ screen.Screen  = (*HomeScreen)(nil)
	_ screen.Resumer = (*HomeScreen)(nil)
)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts}
	items := []components.MenuItem{
		{Label: "START SESSION", Disabled: opts.Engine == nil, Action: func() tea.Cmd {
			next := setup.New(opts.Engine, opts.Defaults)
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}},
		{Label: "HISTORY", Disabled: opts.History == nil, Action: func() tea.Cmd {
			next := history.New(opts.History, opts.UserID)
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}},
		{Label: "MASTERY", Action: func() tea.Cmd {
			next := masteryscreen.New(opts.Scores)
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// Resume refreshes the stats after a session or the mastery list is closed.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	list := h.opts.Scores
	if list == nil {
		return nil
	}
	return func() tea.Msg {
		scores, err := list(context.Background())
		if err != nil {
			return statsMsg{err: err}
		}
		msg := statsMsg{subjects: len(scores)}
		for _, sc := range scores {
			if mastery.BandFor(sc.Score) == mastery.BandMastered {
				msg.mastered++
			}
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(statsMsg); ok {
		h.statsErr = m.err
		if m.err == nil {
			h.subjects, h.mastered = m.subjects, m.mastered
		}
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) mascot() MascotVariant {
	switch {
	case h.opts.CameraName == "" || h.opts.CameraName == "none":
		return MascotAlert
	case h.opts.Engine != nil && h.opts.Engine.MonitoringActive():
		return MascotWatching
	default:
		return MascotIdle
	}
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer.
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(h.mascot(), cw))
	}
	sections = append(sections, renderStatsBar(h.subjects, h.mastered, h.opts.CameraName, cw, compact))

	sections = append(sections, h.menu.ArcadeView(cw, compact))

	if h.opts.Notice != "" {
		sections = append(sections, renderNotice(h.opts.Notice, cw))
	} else if h.statsErr != nil {
		sections = append(sections, renderNotice("Could not load mastery: "+h.statsErr.Error(), cw))
	}

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
