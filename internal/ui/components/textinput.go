package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with the app styling. A number input
// accepts digits only and flags values outside its range as you type.
type TextInput struct {
	Model textinput.Model

	numeric bool
	lo, hi  int
}

// NewTextInput creates a focused free-text input.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Focus()
	return TextInput{Model: ti}
}

// NewNumberInput creates a focused digits-only input for [lo, hi],
// prefilled with value.
func NewNumberInput(lo, hi, value int) TextInput {
	t := NewTextInput(strconv.Itoa(lo), len(strconv.Itoa(hi)))
	t.numeric, t.lo, t.hi = true, lo, hi
	t.Model.SetValue(strconv.Itoa(value))
	return t
}

// Init starts the cursor blinking.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update forwards msg to the wrapped input, dropping non-digit runes for
// number inputs.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && t.numeric {
		if key := kmsg.String(); len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input. Number inputs show a cross while out of range.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.numeric && t.Value() != "" {
		if _, ok := t.Int(); !ok {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the raw text.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the text.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// Int parses a number input and reports whether it lies in range.
func (t TextInput) Int() (int, bool) {
	n, err := strconv.Atoi(t.Model.Value())
	if err != nil || !t.numeric {
		return 0, false
	}
	return n, n >= t.lo && n <= t.hi
}
