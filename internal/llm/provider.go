// Package llm talks to the hosted language models that write questions,
// explain answers and read proctoring frames. Every backend returns JSON
// that has already been checked against the caller's schema.
package llm

import (
	"context"
	"encoding/json"
)

// Purposes tag requests for retry budgets and the request log.
const (
	PurposeQuestion    = "question-gen"
	PurposeExplanation = "explanation"
	PurposeAttention   = "attention"
)

// Provider generates one schema-checked completion per call.
type Provider interface {
	// Generate runs req. With a Schema the returned Content is a JSON
	// object that validates against it; without one Content is the raw
	// text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model name.
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema selects the backend's structured output mode.
	Schema *Schema

	MaxTokens int

	// Temperature in [0,1]. Zero is deterministic.
	Temperature float64
}

// Message is one turn. Images only travel on user turns.
type Message struct {
	Role    Role
	Content string
	Images  []Image
}

// UserTurn builds a user message with optional image attachments.
func UserTurn(text string, images ...Image) Message {
	return Message{Role: RoleUser, Content: text, Images: images}
}

// Image is an inline attachment such as a camera frame.
type Image struct {
	MIMEType string
	Data     []byte
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema document. Name doubles as the tool or
// response-format name on backends that need one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a finished completion.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is what actually served the request, which can differ from
	// ModelID on routers.
	Model string

	// StopReason is one of "end", "max_tokens" or "refused".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
