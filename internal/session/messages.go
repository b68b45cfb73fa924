package session

import (
	"github.com/abhisek/quizwatch/internal/attention"
	"github.com/abhisek/quizwatch/internal/quiz"
)

// Messages carry the epoch they were issued under; Reset bumps the epoch
// so results from a torn-down session are dropped.

type tickMsg struct {
	kind  cycleKind
	token uint64
}

type questionReadyMsg struct {
	epoch    uint64
	seq      uint64
	question *quiz.Question
	err      error
}

type explanationReadyMsg struct {
	epoch       uint64
	step        int
	explanation *quiz.Explanation
	err         error
}

type attentionReadyMsg struct {
	epoch     uint64
	step      int
	sample    *attention.Sample
	err       error
	reportErr error
}

type evidenceStoredMsg struct {
	epoch uint64
	step  int
	err   error
}

type persistedMsg struct {
	op  string
	err error
}
