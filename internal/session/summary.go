package session

import (
	"time"

	"github.com/abhisek/quizwatch/internal/mastery"
	"github.com/abhisek/quizwatch/internal/quiz"
)

// Summary contains end-of-session statistics for display.
type Summary struct {
	SessionID        string
	Mode             quiz.Mode
	Topic            string
	TotalQuestions   int
	Answered         int
	Correct          int
	Accuracy         float64
	Duration         time.Duration
	Mastery          []mastery.Change
	Monitored        bool
	AttentionSamples int
	EvidenceFrames   int
	ByDifficulty     map[quiz.Difficulty]DifficultyResult
}

// DifficultyResult tallies answers at one difficulty.
type DifficultyResult struct {
	Attempted int
	Correct   int
}

// BuildSummary derives the summary from a snapshot and the ledger changes.
func BuildSummary(s Snapshot, changes []mastery.Change) Summary {
	sum := Summary{
		SessionID:        s.SessionID,
		Mode:             s.Mode,
		Topic:            s.Topic,
		TotalQuestions:   s.TotalQuestions,
		Answered:         len(s.Answers),
		Correct:          s.Score,
		Mastery:          changes,
		Monitored:        s.ConsentGranted && (s.AttentionSamples > 0 || s.EvidenceFrames > 0),
		AttentionSamples: s.AttentionSamples,
		EvidenceFrames:   s.EvidenceFrames,
		ByDifficulty:     make(map[quiz.Difficulty]DifficultyResult),
	}
	if sum.Answered > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(sum.Answered)
	}
	if !s.StartedAt.IsZero() {
		end := s.FinishedAt
		if end.IsZero() {
			end = time.Now()
		}
		sum.Duration = end.Sub(s.StartedAt)
	}
	for _, a := range s.Answers {
		r := sum.ByDifficulty[a.Difficulty]
		r.Attempted++
		if a.Correct {
			r.Correct++
		}
		sum.ByDifficulty[a.Difficulty] = r
	}
	return sum
}
