package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// Normalized stop reasons reported in Response.StopReason.
const (
	stopEnd       = "end"
	stopMaxTokens = "max_tokens"
	stopRefused   = "refused"
)

// completion is a provider reply reduced to what the shared checks need.
type completion struct {
	text   string
	stop   string
	reason string // provider wording when stop is stopRefused
	usage  Usage
	model  string
}

// finish turns a completion into a Response. Refusals and truncated
// structured output become typed errors so the retry layer can skip
// them; schema violations surface as *ErrInvalidResponse.
func finish(req Request, c completion) (*Response, error) {
	content := json.RawMessage(c.text)

	switch {
	case c.stop == stopRefused:
		return nil, &ErrRefused{Reason: c.reason}
	case c.stop == stopMaxTokens && req.Schema != nil:
		return nil, &ErrMaxTokensExceeded{Content: content}
	case c.text == "":
		return nil, &ErrInvalidResponse{Err: errors.New("empty response")}
	}

	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}

	if c.usage.TotalTokens == 0 {
		c.usage.TotalTokens = c.usage.InputTokens + c.usage.OutputTokens
	}
	return &Response{
		Content:    content,
		Usage:      c.usage,
		Model:      c.model,
		StopReason: c.stop,
	}, nil
}

// classifyStatus maps an HTTP status from a provider SDK error onto the
// package's error types. Anything unrecognized counts as unavailable.
func classifyStatus(status int, wait time.Duration, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{RetryAfter: wait, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names are taken as literal IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}

// retryAfter reads the Retry-After header (seconds) from a 429 response.
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
