package session

import (
	"errors"
	"fmt"

	"github.com/abhisek/quizwatch/internal/llm"
)

var (
	// ErrInvalidTransition is returned, with state untouched, when an
	// operation is not valid in the current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNoSelection is returned by SubmitAnswer before an option is picked.
	ErrNoSelection = fmt.Errorf("%w: no option selected", ErrInvalidTransition)

	// ErrRateLimited means the content service asked us to back off.
	ErrRateLimited = errors.New("content service rate limited")

	// ErrTransientFetch covers every other failed external call.
	ErrTransientFetch = errors.New("fetch failed")
)

// TransitionError describes a rejected operation.
type TransitionError struct {
	Op     string
	Phase  Phase
	Answer AnswerState
	Reason string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s: not allowed in %s", e.Op, e.Phase)
	if e.Phase == PhaseActive {
		msg += "/" + e.Answer.String()
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Retryable reports whether err is a fetch failure the user may retry.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransientFetch)
}

func classifyFetch(op string, err error) error {
	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) {
		return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransientFetch, err)
}
