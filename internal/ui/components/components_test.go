package components

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionIndex(t *testing.T) {
	tests := []struct {
		key  string
		n    int
		want int
		ok   bool
	}{
		{"a", 4, 0, true},
		{"D", 4, 3, true},
		{"e", 4, 0, false},
		{"2", 4, 1, true},
		{"0", 4, 0, false},
		{"enter", 4, 0, false},
	}
	for _, tt := range tests {
		got, ok := OptionIndex(tt.key, tt.n)
		assert.Equal(t, tt.ok, ok, tt.key)
		if ok {
			assert.Equal(t, tt.want, got, tt.key)
		}
	}
}

func TestMultiChoiceView(t *testing.T) {
	mc := MultiChoice{Options: []string{"3", "4", "5"}, Cursor: 1, Selected: -1}
	out := mc.View()
	assert.Contains(t, out, "▸   B)  4")
	assert.Equal(t, 3, strings.Count(out, "\n")+1)

	mc.Selected, mc.Submitted, mc.CorrectIndex = 0, true, 1
	out = mc.View()
	assert.NotContains(t, out, "▸")
	assert.Contains(t, out, "● A)  3")
}

func TestMonitorBadge(t *testing.T) {
	assert.Contains(t, MonitorBadge(true, true, nil), "REC")
	assert.Contains(t, MonitorBadge(false, true, errors.New("x")), "no camera")
	assert.Contains(t, MonitorBadge(false, true, nil), "paused")
	assert.Contains(t, MonitorBadge(false, false, nil), "off")
}

func TestMenu_SkipsDisabledAndWraps(t *testing.T) {
	var fired string
	action := func(name string) func() tea.Cmd {
		return func() tea.Cmd { fired = name; return nil }
	}
	m := NewMenu([]MenuItem{
		{Label: "start", Disabled: true},
		{Label: "history", Action: action("history")},
		{Label: "mastery", Action: action("mastery")},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 2, m.Selected)
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, m.Selected, "wraps past the disabled first item")
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 2, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: '1', Text: "1"})
	assert.Equal(t, 2, m.Selected, "digit for a disabled item is ignored")
	assert.Empty(t, fired)

	m, _ = m.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	assert.Equal(t, 1, m.Selected)
	assert.Equal(t, "history", fired)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "mastery", fired)
}

func TestMenu_DetailOnlyOnSelected(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "Curriculum", Detail: "follows mastery"},
		{Label: "Exam", Detail: "fixed difficulty"},
	})
	out := m.View()
	assert.Contains(t, out, "follows mastery")
	assert.NotContains(t, out, "fixed difficulty")
}

func TestMenu_AllDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a", Disabled: true}})
	assert.Equal(t, 0, m.Selected)
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestMeter(t *testing.T) {
	m := MasteryMeter("algebra", 85, 40)
	out := m.View()
	assert.Equal(t, 40, lipgloss.Width(out))
	assert.Contains(t, out, "● algebra")
	assert.Contains(t, out, " 85")

	over := Meter{Value: 140, Width: 20}.View()
	assert.Contains(t, over, "100")
	assert.Equal(t, 20, lipgloss.Width(over))
}

func TestNumberInput(t *testing.T) {
	in := NewNumberInput(3, 20, 5)
	n, ok := in.Int()
	require.True(t, ok)
	assert.Equal(t, 5, n)

	in, _ = in.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	assert.Equal(t, "5", in.Value(), "letters are dropped")

	in.SetValue("42")
	_, ok = in.Int()
	assert.False(t, ok)
	assert.Contains(t, in.View(), "✗")

	text := NewTextInput("topic", 10)
	text.SetValue("12")
	_, ok = text.Int()
	assert.False(t, ok, "free text never parses as a number")
}

func TestKeyButton(t *testing.T) {
	assert.Contains(t, KeyButton{Key: "y", Label: "Allow", Focused: true}.View(), "▸ [y] Allow")
	idle := KeyButton{Label: "No thanks"}.View()
	assert.Contains(t, idle, "No thanks")
	assert.NotContains(t, idle, "▸")
}
