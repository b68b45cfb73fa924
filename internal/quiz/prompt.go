package quiz

import (
	"fmt"
	"strings"
)

const questionSystemPrompt = `You write multiple-choice practice questions for a learner.

Rules:
- Write exactly one question about the given subject at the requested difficulty.
- The prompt must be self-contained and answerable without images.
- Give between 2 and 6 options (4 is typical). Exactly one option is correct.
- Distractors should reflect plausible misconceptions, not random values.
- Options must be distinct. Do not use "all of the above" or "none of the above".
- Do not repeat any question from the "already asked" list.`

const explanationSystemPrompt = `You explain the answer to a multiple-choice practice question.

Rules:
- State why the correct option is right in one or two sentences.
- If the learner chose a wrong option, name the misconception behind it.
- Keep steps short and concrete; at most 5 steps.
- End with one sentence the learner should remember.`

// modeGuidance tells the model how the session mode frames the subject.
func modeGuidance(m Mode) string {
	switch m {
	case ModeCurriculum:
		return "The subject is a curriculum concept. Test understanding of that concept specifically."
	case ModeExam:
		return "This is exam practice. Write an exam-style item that requires multi-step reasoning."
	default:
		return "The subject is a free-text topic the learner is exploring. Any aspect of it is fair game."
	}
}

// buildQuestionMessage constructs the user message for question generation.
func buildQuestionMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	subject := "Topic"
	if input.Mode == ModeCurriculum {
		subject = "Concept"
	}
	fmt.Fprintf(&b, "%s: %s\n", subject, input.Topic)
	fmt.Fprintf(&b, "Mode: %s\n", input.Mode)
	fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	b.WriteString(modeGuidance(input.Mode))
	b.WriteString("\n\nAlready asked in this session:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	return b.String()
}

// buildExplainMessage constructs the user message for an explanation.
func buildExplainMessage(input ExplainInput) string {
	q := input.Question
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", q.Topic)
	fmt.Fprintf(&b, "Question: %s\n", q.Prompt)
	b.WriteString("Options:\n")
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%c. %s\n", 'A'+i, opt)
	}
	fmt.Fprintf(&b, "Correct option: %c\n", 'A'+q.CorrectIndex)
	if input.ChosenIndex >= 0 && input.ChosenIndex < len(q.Options) {
		fmt.Fprintf(&b, "Learner chose: %c", 'A'+input.ChosenIndex)
		if q.IsCorrect(input.ChosenIndex) {
			b.WriteString(" (correct)")
		} else {
			b.WriteString(" (incorrect)")
		}
	}
	return b.String()
}

// buildDedup formats prior questions for the prompt, keeping the most
// recent max entries. Returns "None" if there are none.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
