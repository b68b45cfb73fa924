package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/quizwatch/internal/llm"
)

func validQuestionJSON() json.RawMessage {
	return json.RawMessage(`{
		"prompt": "Which gas do plants absorb during photosynthesis?",
		"options": ["Oxygen", "Carbon dioxide", "Nitrogen", "Helium"],
		"correct_index": 1,
		"difficulty": "easy"
	}`)
}

func TestGenerateQuestion(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON()})
	gen := New(mock, DefaultConfig())

	q, err := gen.GenerateQuestion(context.Background(), GenerateInput{
		Topic:      "photosynthesis",
		Mode:       ModeCurriculum,
		Difficulty: Easy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Prompt != "Which gas do plants absorb during photosynthesis?" {
		t.Errorf("unexpected prompt: %q", q.Prompt)
	}
	if len(q.Options) != 4 || !q.IsCorrect(1) || q.IsCorrect(0) {
		t.Errorf("unexpected options/answer: %+v", q)
	}
	if q.Difficulty != Easy || q.Mode != ModeCurriculum || q.Topic != "photosynthesis" {
		t.Errorf("input context not carried: %+v", q)
	}

	call := mock.Calls[0]
	if call.Schema != QuestionSchema {
		t.Error("expected question schema on request")
	}
	if !strings.Contains(call.Messages[0].Content, "Concept: photosynthesis") {
		t.Errorf("curriculum prompt should name the concept:\n%s", call.Messages[0].Content)
	}
}

func TestGenerateQuestion_RequestedDifficultyWins(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON()})
	gen := New(mock, DefaultConfig())

	q, err := gen.GenerateQuestion(context.Background(), GenerateInput{
		Topic: "biology", Mode: ModeExam, Difficulty: Hard,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Difficulty != Hard {
		t.Fatalf("difficulty = %q, want hard", q.Difficulty)
	}
}

func TestGenerateQuestion_ValidationFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"prompt": "Pick one",
		"options": ["A", "B"],
		"correct_index": 5,
		"difficulty": "medium"
	}`)})
	gen := New(mock, DefaultConfig())

	_, err := gen.GenerateQuestion(context.Background(), GenerateInput{Topic: "x", Mode: ModeDiscovery, Difficulty: Medium})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if verr.Validator != "structural" || !verr.Retryable {
		t.Fatalf("unexpected validation error: %+v", verr)
	}
}

func TestGenerateQuestion_ProviderErrorWrapped(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	gen := New(mock, DefaultConfig())

	_, err := gen.GenerateQuestion(context.Background(), GenerateInput{Topic: "x", Mode: ModeExam, Difficulty: Hard})
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected wrapped ErrRateLimit, got %v", err)
	}
}

func TestGenerateQuestion_PurposeLabel(t *testing.T) {
	var purpose string
	p := purposeRecorder{fn: func(ctx context.Context) { purpose = llm.PurposeFrom(ctx) }, content: validQuestionJSON()}
	gen := New(p, DefaultConfig())

	if _, err := gen.GenerateQuestion(context.Background(), GenerateInput{Topic: "x", Mode: ModeDiscovery, Difficulty: Medium}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purpose != "question-gen" {
		t.Fatalf("purpose = %q", purpose)
	}
}

type purposeRecorder struct {
	fn      func(context.Context)
	content json.RawMessage
}

func (p purposeRecorder) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.fn(ctx)
	return &llm.Response{Content: p.content}, nil
}

func (p purposeRecorder) ModelID() string { return "recorder" }

func TestGenerateExplanation(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"summary": "Plants take in carbon dioxide and release oxygen.",
		"steps": ["a", "b", "c", "d", "e", "f", "g"],
		"takeaway": "CO2 in, O2 out."
	}`)})
	gen := New(mock, DefaultConfig())

	q := &Question{
		Prompt:       "Which gas do plants absorb?",
		Options:      []string{"Oxygen", "Carbon dioxide"},
		CorrectIndex: 1,
		Topic:        "photosynthesis",
	}
	exp, err := gen.GenerateExplanation(context.Background(), ExplainInput{Question: q, ChosenIndex: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exp.Steps) != 5 {
		t.Errorf("expected steps capped at 5, got %d", len(exp.Steps))
	}
	msg := mock.Calls[0].Messages[0].Content
	if !strings.Contains(msg, "Learner chose: A (incorrect)") || !strings.Contains(msg, "Correct option: B") {
		t.Errorf("unexpected explain message:\n%s", msg)
	}
}

func TestGenerateExplanation_EmptySummary(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"summary":" ","steps":[],"takeaway":""}`)})
	gen := New(mock, DefaultConfig())

	_, err := gen.GenerateExplanation(context.Background(), ExplainInput{
		Question: &Question{Prompt: "p", Options: []string{"a", "b"}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
