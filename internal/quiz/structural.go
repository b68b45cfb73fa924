package quiz

import (
	"fmt"
	"strings"
)

const (
	maxPromptLen = 500
	maxOptionLen = 200
	minOptions   = 2
	maxOptions   = 6
)

// StructuralValidator checks lengths, option counts and the answer index.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}

	switch {
	case strings.TrimSpace(q.Prompt) == "":
		return fail("prompt is empty")
	case len(q.Prompt) > maxPromptLen:
		return fail(fmt.Sprintf("prompt exceeds %d characters", maxPromptLen))
	case len(q.Options) < minOptions:
		return fail(fmt.Sprintf("need at least %d options, got %d", minOptions, len(q.Options)))
	case len(q.Options) > maxOptions:
		return fail(fmt.Sprintf("at most %d options allowed, got %d", maxOptions, len(q.Options)))
	case q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options):
		return fail(fmt.Sprintf("correct_index %d out of range", q.CorrectIndex))
	}
	return nil
}

// OptionsValidator rejects blank, overlong or duplicate options.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	seen := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		norm := strings.ToLower(strings.TrimSpace(opt))
		if norm == "" {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %d is blank", i), Retryable: true}
		}
		if len(opt) > maxOptionLen {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %d exceeds %d characters", i, maxOptionLen), Retryable: true}
		}
		if seen[norm] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate option %q", opt), Retryable: true}
		}
		seen[norm] = true
	}
	return nil
}

// RepeatValidator rejects a prompt identical to one already asked.
type RepeatValidator struct{}

func (v *RepeatValidator) Name() string { return "repeat" }

func (v *RepeatValidator) Validate(q *Question, input GenerateInput) *ValidationError {
	norm := strings.ToLower(strings.TrimSpace(q.Prompt))
	for _, p := range input.PriorQuestions {
		if strings.ToLower(strings.TrimSpace(p)) == norm {
			return &ValidationError{Validator: v.Name(), Message: "question repeats an earlier one", Retryable: true}
		}
	}
	return nil
}
