package quiz

import (
	"fmt"
	"strings"
)

// Mode selects how a practice session picks difficulty and scores mastery.
type Mode string

const (
	// ModeCurriculum practices a named concept; difficulty follows mastery.
	ModeCurriculum Mode = "curriculum"

	// ModeDiscovery explores a free-text topic at medium difficulty.
	ModeDiscovery Mode = "discovery"

	// ModeExam serves hard, exam-style questions on a topic.
	ModeExam Mode = "exam"
)

// Modes lists every mode in menu order.
var Modes = []Mode{ModeCurriculum, ModeDiscovery, ModeExam}

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeCurriculum, ModeDiscovery, ModeExam:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want curriculum, discovery or exam)", s)
}

// Label returns the display name.
func (m Mode) Label() string {
	switch m {
	case ModeCurriculum:
		return "Curriculum"
	case ModeDiscovery:
		return "Discovery"
	case ModeExam:
		return "Exam"
	}
	return string(m)
}

// Difficulty is the requested question difficulty.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// SubjectKey names the mastery record a session scores against. Curriculum
// sessions score the concept; the other modes score the free-text topic.
func SubjectKey(mode Mode, topic string) string {
	t := strings.ToLower(strings.Join(strings.Fields(topic), " "))
	if mode == ModeCurriculum {
		return "concept/" + t
	}
	return "topic/" + t
}

// Question is a generated multiple-choice question.
type Question struct {
	Prompt       string
	Options      []string
	CorrectIndex int
	Difficulty   Difficulty
	Topic        string
	Mode         Mode
}

// IsCorrect reports whether option i is the correct answer.
func (q *Question) IsCorrect(i int) bool {
	return i == q.CorrectIndex
}

// Explanation is shown after the learner answers.
type Explanation struct {
	Summary  string
	Steps    []string
	Takeaway string
}

// GenerateInput holds all context needed to generate a question.
type GenerateInput struct {
	Topic      string
	Mode       Mode
	Difficulty Difficulty

	// PriorQuestions holds prompts already asked in this session, used
	// for deduplication in the prompt.
	PriorQuestions []string
}

// ExplainInput describes an answered question to explain.
type ExplainInput struct {
	Question    *Question
	ChosenIndex int
}
