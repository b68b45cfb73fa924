// Package quiz generates practice questions and post-answer explanations.
package quiz

import "context"

// Generator produces questions and explanations.
type Generator interface {
	// GenerateQuestion produces a single validated question.
	GenerateQuestion(ctx context.Context, input GenerateInput) (*Question, error)

	// GenerateExplanation explains an answered question.
	GenerateExplanation(ctx context.Context, input ExplainInput) (*Explanation, error)
}
