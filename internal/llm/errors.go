package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit is an HTTP 429 from the backend. RetryAfter is zero when
// the backend gave no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers outages, network failures and any other
// non-429 transport error. It is also what an exhausted mock returns.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return "LLM provider unavailable: " + e.Err.Error()
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse carries output that failed JSON or schema checks.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return "invalid LLM response: " + e.Err.Error()
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means structured output was cut off mid-document.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrRefused means the model or its safety filter declined the request.
// Asking again with the same camera frame gets the same answer.
type ErrRefused struct {
	Reason string
}

func (e *ErrRefused) Error() string {
	if e.Reason == "" {
		return "LLM request refused"
	}
	return "LLM request refused: " + e.Reason
}

// Permanent reports whether repeating the identical request cannot
// succeed: refusals and truncation.
func Permanent(err error) bool {
	var (
		refused *ErrRefused
		maxTok  *ErrMaxTokensExceeded
	)
	return errors.As(err, &refused) || errors.As(err, &maxTok)
}
