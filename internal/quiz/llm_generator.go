package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/quizwatch/internal/llm"
)

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

type questionOutput struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Difficulty   string   `json:"difficulty"`
}

type explanationOutput struct {
	Summary  string   `json:"summary"`
	Steps    []string `json:"steps"`
	Takeaway string   `json:"takeaway"`
}

// GenerateQuestion produces a single question for the given input.
func (g *LLMGenerator) GenerateQuestion(ctx context.Context, input GenerateInput) (*Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestion)

	req := llm.Request{
		System:      questionSystemPrompt,
		Messages:    []llm.Message{llm.UserTurn(buildQuestionMessage(input, g.config))},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	q := &Question{
		Prompt:       strings.TrimSpace(raw.Prompt),
		Options:      raw.Options,
		CorrectIndex: raw.CorrectIndex,
		// The requested difficulty is authoritative; the model's label is
		// only checked by the schema.
		Difficulty: input.Difficulty,
		Topic:      input.Topic,
		Mode:       input.Mode,
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(q, input); verr != nil {
			return nil, verr
		}
	}

	return q, nil
}

// GenerateExplanation explains an answered question.
func (g *LLMGenerator) GenerateExplanation(ctx context.Context, input ExplainInput) (*Explanation, error) {
	if input.Question == nil {
		return nil, fmt.Errorf("explain: no question")
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeExplanation)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      explanationSystemPrompt,
		Messages:    []llm.Message{llm.UserTurn(buildExplainMessage(input))},
		Schema:      ExplanationSchema,
		MaxTokens:   g.config.ExplanationMaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM explanation failed: %w", err)
	}

	var raw explanationOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if strings.TrimSpace(raw.Summary) == "" {
		return nil, &ValidationError{Validator: "explanation", Message: "summary is empty", Retryable: true}
	}

	steps := raw.Steps
	if len(steps) > 5 {
		steps = steps[:5]
	}
	return &Explanation{Summary: raw.Summary, Steps: steps, Takeaway: raw.Takeaway}, nil
}
