package session

import (
	"time"

	"github.com/abhisek/quizwatch/internal/attention"
	"github.com/abhisek/quizwatch/internal/quiz"
)

// Phase is the top-level engine state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingConsent
	PhaseActive
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingConsent:
		return "awaiting-consent"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// AnswerState is the sub-state of PhaseActive.
type AnswerState int

const (
	Unanswered AnswerState = iota
	Submitted
)

func (a AnswerState) String() string {
	if a == Submitted {
		return "submitted"
	}
	return "unanswered"
}

const (
	MinQuestions = 1
	MaxQuestions = 20
)

// ClampQuestions bounds n to [MinQuestions, MaxQuestions].
func ClampQuestions(n int) int {
	if n < MinQuestions {
		return MinQuestions
	}
	if n > MaxQuestions {
		return MaxQuestions
	}
	return n
}

// LiveQuestion is the question currently shown to the learner.
type LiveQuestion struct {
	*quiz.Question

	// Selected is the chosen option index, -1 until the learner picks one.
	Selected  int
	Submitted bool
	ServedAt  time.Time
}

// AnswerResult records one graded step.
type AnswerResult struct {
	StepIndex    int
	Prompt       string
	Difficulty   quiz.Difficulty
	ChosenIndex  int
	CorrectIndex int
	Correct      bool
	MasteryAfter int
	TimeTaken    time.Duration
}

// Snapshot is a read-only view of the engine for rendering.
type Snapshot struct {
	SessionID      string
	Phase          Phase
	Answer         AnswerState
	Mode           quiz.Mode
	Topic          string
	StepIndex      int
	TotalQuestions int
	Score          int

	ConsentGranted   bool
	MonitoringActive bool
	CameraErr        error

	Question      *LiveQuestion
	LastAttention *attention.Sample
	// ConfusionIndex is nil until the first non-exam sample arrives.
	ConfusionIndex *int

	Loading            bool
	Err                error
	Explanation        *quiz.Explanation
	ExplanationLoading bool
	ExplanationErr     error

	EvidenceFrames   int
	AttentionSamples int
	LastCorrect      bool
	Answers          []AnswerResult
	StartedAt        time.Time
	FinishedAt       time.Time
}
