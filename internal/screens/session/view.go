package session

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwatch/internal/quiz"
	sess "github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/ui/components"
	"github.com/abhisek/quizwatch/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.quitAsk {
		return renderQuitConfirm(width)
	}
	snap := s.engine.Snapshot()
	switch snap.Phase {
	case sess.PhaseAwaitingConsent:
		return s.renderConsent(width, snap)
	case sess.PhaseActive:
		return s.renderActive(width, snap)
	}
	return centered(width, theme.TextDim).Render("\n\n\n  Preparing your session...")
}

func centered(width int, fg color.Color) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(fg)
}

// renderConsent renders the camera consent modal.
func (s *SessionScreen) renderConsent(width int, snap sess.Snapshot) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Camera monitoring"))
	b.WriteString("\n\n")
	body := fmt.Sprintf(
		"This %s session on %q can use your camera while a question is open.\n\n"+
			"Every 10 seconds a still frame is stored as evidence, and a frame is\n"+
			"analysed for signs of confusion every %s.\n\n"+
			"Frames are only taken while you are answering. You can decline and\n"+
			"choose again next time.",
		strings.ToLower(snap.Mode.Label()), snap.Topic, sess.AnalysisInterval(snap.Mode))
	b.WriteString(theme.Body.Render(body))
	b.WriteString("\n\n")

	allow := components.KeyButton{Key: "y", Label: "Allow camera", Focused: s.consentBtn == 0}
	deny := components.KeyButton{Key: "n", Label: "No thanks", Focused: s.consentBtn == 1}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, allow.View(), "   ", deny.View()))

	card := theme.Card.Width(min(width-8, 76)).Render(b.String())
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, card)
}

// renderActive renders the info line, the question or its loading state,
// and the post-answer feedback.
func (s *SessionScreen) renderActive(width int, snap sess.Snapshot) string {
	var b strings.Builder
	b.WriteString(renderInfoLine(width, snap))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	q := snap.Question
	switch {
	case q == nil && snap.Err != nil:
		b.WriteString(renderFetchError(width, snap.Err))
	case q == nil:
		b.WriteString(centered(width, theme.TextDim).Render("Generating question..."))
	default:
		b.WriteString(centered(width, theme.Text).Bold(true).Render(q.Prompt))
		b.WriteString("\n\n")
		mc := components.MultiChoice{
			Options:      q.Options,
			Cursor:       s.cursor,
			Selected:     q.Selected,
			Submitted:    q.Submitted,
			CorrectIndex: q.CorrectIndex,
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, mc.View()))
		if snap.Answer == sess.Submitted {
			b.WriteString("\n\n")
			b.WriteString(s.renderFeedback(width, snap))
		}
	}

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(centered(width, theme.Warning).Render(s.notice))
	}
	if snap.CameraErr != nil && snap.ConsentGranted {
		b.WriteString("\n\n")
		b.WriteString(centered(width, theme.TextDim).Render("Camera unavailable, continuing without monitoring."))
	}
	return b.String()
}

func renderInfoLine(width int, snap sess.Snapshot) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s", snap.Topic))

	parts := []string{
		fmt.Sprintf("Q %d/%d", snap.StepIndex, snap.TotalQuestions),
		lipgloss.NewStyle().Foreground(theme.Success).Render("✓") + fmt.Sprintf(" %d", snap.Score),
	}
	if snap.Question != nil {
		parts = append(parts, string(snap.Question.Difficulty))
	}
	if snap.ConfusionIndex != nil {
		parts = append(parts, confusionLabel(*snap.ConfusionIndex))
	}
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(strings.Join(parts, "  "))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line
}

func confusionLabel(v int) string {
	return lipgloss.NewStyle().Foreground(theme.ConfusionColor(v)).Render(fmt.Sprintf("confusion %d", v))
}

func renderFetchError(width int, err error) string {
	msg := "Could not load the question."
	if errors.Is(err, sess.ErrRateLimited) {
		msg = "The question service is busy."
	}
	return centered(width, theme.Error).Render(msg) + "\n" +
		centered(width, theme.TextDim).Render("Press R to try again.")
}

func (s *SessionScreen) renderFeedback(width int, snap sess.Snapshot) string {
	var b strings.Builder
	if snap.LastCorrect {
		b.WriteString(centered(width, theme.Success).Bold(true).Render("Correct!"))
	} else {
		b.WriteString(centered(width, theme.Error).Bold(true).Render("Not quite"))
	}
	if n := len(snap.Answers); n > 0 {
		b.WriteString("\n")
		b.WriteString(centered(width, theme.TextDim).Render(fmt.Sprintf("Mastery now %d", snap.Answers[n-1].MasteryAfter)))
	}
	b.WriteString("\n\n")

	switch {
	case snap.Explanation != nil:
		b.WriteString(renderExplanation(width, snap.Explanation))
	case snap.ExplanationLoading:
		b.WriteString(centered(width, theme.TextDim).Render("Fetching explanation..."))
	case snap.ExplanationErr != nil:
		b.WriteString(centered(width, theme.Error).Render("Explanation unavailable. Press E to retry."))
	}

	b.WriteString("\n\n")
	next := "Press Enter for the next question"
	if snap.StepIndex >= snap.TotalQuestions {
		next = "Press Enter to finish"
	}
	b.WriteString(centered(width, theme.TextDim).Render(next))
	return b.String()
}

func renderExplanation(width int, exp *quiz.Explanation) string {
	var b strings.Builder
	b.WriteString(exp.Summary)
	for i, step := range exp.Steps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, step)
	}
	if exp.Takeaway != "" {
		b.WriteString("\n\n" + exp.Takeaway)
	}
	box := lipgloss.NewStyle().Width(min(width-8, 70)).Foreground(theme.Text).Render(b.String())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width, theme.Text).Bold(true).Render("End session early?"))
	b.WriteString("\n")
	b.WriteString(centered(width, theme.TextDim).Render("Answers so far are kept; the camera is released."))
	b.WriteString("\n\n")
	b.WriteString(centered(width, theme.Success).Render("[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(centered(width, theme.Primary).Render("[N] No, keep going"))
	return b.String()
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return centered(width, theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
