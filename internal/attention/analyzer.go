package attention

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/abhisek/quizwatch/internal/camera"
	"github.com/abhisek/quizwatch/internal/llm"
)

// AnalyzerConfig holds configuration for the LLM analyzer.
type AnalyzerConfig struct {
	MaxTokens int

	// Timeout bounds one analysis call. Attention results are advisory, so
	// a slow provider must not pile requests up behind the next tick.
	Timeout time.Duration
}

// DefaultAnalyzerConfig returns sensible defaults.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MaxTokens: 200,
		Timeout:   30 * time.Second,
	}
}

// LLMAnalyzer rates frames with a vision-capable LLM.
type LLMAnalyzer struct {
	provider llm.Provider
	cfg      AnalyzerConfig
	now      func() time.Time
}

// NewLLMAnalyzer creates an analyzer backed by provider.
func NewLLMAnalyzer(provider llm.Provider, cfg AnalyzerConfig) *LLMAnalyzer {
	return &LLMAnalyzer{provider: provider, cfg: cfg, now: time.Now}
}

type sampleOutput struct {
	ConfusionScore int    `json:"confusion_score"`
	Mood           string `json:"mood"`
	Summary        string `json:"summary"`
}

// FrameContext describes what the learner is doing when the frame is taken.
type FrameContext struct {
	Mode      string
	Topic     string
	StepIndex int
	Answered  bool
}

// AnalyzeFrame sends the frame to the provider and returns a sample.
func (a *LLMAnalyzer) AnalyzeFrame(ctx context.Context, frame camera.Frame, fc FrameContext) (*Sample, error) {
	if len(frame.Data) == 0 {
		return nil, fmt.Errorf("analyze frame: empty frame")
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeAttention)
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	msg, err := buildFrameMessage(fc)
	if err != nil {
		return nil, fmt.Errorf("build attention prompt: %w", err)
	}

	mime := frame.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	resp, err := a.provider.Generate(ctx, llm.Request{
		System:    attentionSystemPrompt,
		Messages:  []llm.Message{llm.UserTurn(msg, llm.Image{MIMEType: mime, Data: frame.Data})},
		Schema:    SampleSchema,
		MaxTokens: a.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM attention analysis failed: %w", err)
	}

	var raw sampleOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse attention response: %w", err)
	}

	captured := frame.CapturedAt
	if captured.IsZero() {
		captured = a.now()
	}
	return &Sample{
		ConfusionScore: ClampScore(raw.ConfusionScore),
		Mood:           ParseMood(raw.Mood),
		Summary:        raw.Summary,
		CapturedAt:     captured,
	}, nil
}

const attentionSystemPrompt = `You look at a single webcam frame of a learner taking a practice quiz and estimate how confused they appear.

Instructions:
- Judge only visible cues: gaze, posture, facial expression, hands near face.
- Never identify the person or comment on their appearance.
- If no face is visible, use mood "absent" and a confusion score of 0.
- Keep the summary to one sentence.`

var frameTemplate = template.Must(template.New("frame").Parse(`Session mode: {{.Mode}}
Subject: {{.Topic}}
Question number: {{.StepIndex}}
{{if .Answered}}The learner has already answered this question.{{else}}The learner is working on this question.{{end}}
Rate the attached frame.`))

func buildFrameMessage(fc FrameContext) (string, error) {
	var buf bytes.Buffer
	if err := frameTemplate.Execute(&buf, fc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
