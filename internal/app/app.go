package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/router"
	"github.com/abhisek/quizwatch/internal/screen"
	"github.com/abhisek/quizwatch/internal/screens/home"
	sess "github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/ui/layout"
)

// Deps are the long-lived services the TUI runs on. Engine is closed on
// exit; the home screen only starts sessions when Home.Engine is set.
type Deps struct {
	Engine *sess.Engine
	UserID string
	Home   home.Options
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	userID string
	width  int
	height int
}

func newAppModel(deps Deps) AppModel {
	return AppModel{
		router: router.New(home.New(deps.Home)),
		userID: deps.UserID,
	}
}

func (m AppModel) Init() tea.Cmd {
	if root := m.router.Active(); root != nil {
		return root.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Sequence(m.router.CloseAll(), tea.Quit)
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(active), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) status(active screen.Screen) string {
	if sp, ok := active.(screen.StatusProvider); ok {
		return sp.Status()
	}
	return m.userID
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if hp, ok := active.(screen.KeyHintProvider); ok {
		return append(hp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and releases the session on exit.
func Run(deps Deps) error {
	p := tea.NewProgram(newAppModel(deps))
	final, err := p.Run()
	if m, ok := final.(AppModel); ok {
		// Screens still open when the menu quits are closed here so an
		// in-flight session is journaled as abandoned.
		runNow(m.router.CloseAll())
	}
	if deps.Engine != nil {
		deps.Engine.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

// runNow executes cmd synchronously, expanding batches. Messages are dropped.
func runNow(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			runNow(c)
		}
	}
}
