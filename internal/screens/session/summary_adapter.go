package session

import (
	"github.com/abhisek/quizwatch/internal/screen"
	"github.com/abhisek/quizwatch/internal/screens/summary"
	sess "github.com/abhisek/quizwatch/internal/session"
)

// newSummaryScreen creates the summary screen shown after the last step.
func newSummaryScreen(s sess.Summary) screen.Screen {
	return summary.New(s)
}
