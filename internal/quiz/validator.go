package quiz

import "fmt"

// Validator checks a generated question. Implementations are stateless.
type Validator interface {
	// Name returns a short identifier, e.g. "structural".
	Name() string

	// Validate returns nil if the question passes.
	Validate(q *Question, input GenerateInput) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool // whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
