package session

import (
	"time"

	"github.com/abhisek/quizwatch/internal/quiz"
)

// DifficultyFor picks the difficulty of the next question. Exam is always
// hard and Discovery always medium; Curriculum follows the concept's
// mastery score.
func DifficultyFor(mode quiz.Mode, mastery int) quiz.Difficulty {
	switch mode {
	case quiz.ModeExam:
		return quiz.Hard
	case quiz.ModeCurriculum:
		switch {
		case mastery < 50:
			return quiz.Easy
		case mastery < 80:
			return quiz.Medium
		default:
			return quiz.Hard
		}
	default:
		return quiz.Medium
	}
}

// MasteryDelta is the score change applied after an answer.
func MasteryDelta(mode quiz.Mode, correct bool) int {
	if mode == quiz.ModeCurriculum {
		if correct {
			return 10
		}
		return -5
	}
	if correct {
		return 5
	}
	return -2
}

// Timing holds the monitoring cadences.
type Timing struct {
	Evidence          time.Duration
	AttentionExam     time.Duration
	AttentionPractice time.Duration
}

// DefaultTiming returns the production cadences.
func DefaultTiming() Timing {
	return Timing{
		Evidence:          10 * time.Second,
		AttentionExam:     45 * time.Second,
		AttentionPractice: 75 * time.Second,
	}
}

// AnalysisInterval returns the attention cadence for mode.
func (t Timing) AnalysisInterval(mode quiz.Mode) time.Duration {
	if mode == quiz.ModeExam {
		return t.AttentionExam
	}
	return t.AttentionPractice
}

// EvidenceInterval is the default evidence cadence.
func EvidenceInterval() time.Duration { return DefaultTiming().Evidence }

// AnalysisInterval is the default attention cadence for mode.
func AnalysisInterval(mode quiz.Mode) time.Duration { return DefaultTiming().AnalysisInterval(mode) }
