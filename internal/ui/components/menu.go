package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Detail is shown dimmed beside the
// label of the highlighted item only.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list with a cursor that skips disabled items and
// wraps at both ends. Digits 1-9 jump to and activate an item.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu puts the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move steps the cursor by dir (+1 or -1) to the next enabled item.
func (m *Menu) move(dir int) {
	n := len(m.Items)
	for i := 1; i <= n; i++ {
		next := ((m.Selected+dir*i)%n + n) % n
		if !m.Items[next].Disabled {
			m.Selected = next
			return
		}
	}
}

// Update handles navigation and activation keys.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		return m, m.activate(m.Selected)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.Items) && !m.Items[i].Disabled {
				m.Selected = i
				return m, m.activate(i)
			}
		}
	}
	return m, nil
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

// View renders the menu as an indented list.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		switch {
		case item.Disabled:
			b.WriteString(theme.Dim.Render("    " + item.Label))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + item.Label))
			if item.Detail != "" {
				b.WriteString("  " + theme.Dim.Render(item.Detail))
			}
		default:
			b.WriteString(theme.Body.Render("    " + item.Label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

const arcadeButtonWidth = 22

// ArcadeView renders each item as a bordered button centered in width.
// compact drops the borders for short terminals.
func (m Menu) ArcadeView(width int, compact bool) string {
	base := lipgloss.NewStyle().Width(arcadeButtonWidth).Align(lipgloss.Center).Padding(0, 1)
	if !compact {
		base = base.Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border)
	}
	selected := base.Bold(true).Foreground(theme.BgDark).Background(theme.Highlight)
	if !compact {
		selected = selected.BorderForeground(theme.Highlight)
	}

	rows := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		switch {
		case item.Disabled:
			rows = append(rows, base.Foreground(theme.TextDim).Render(item.Label))
		case i == m.Selected:
			rows = append(rows, selected.Render("▸ "+item.Label))
		default:
			rows = append(rows, base.Foreground(theme.Text).Render(item.Label))
		}
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(strings.Join(rows, "\n"))
}
