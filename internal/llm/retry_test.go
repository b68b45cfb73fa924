package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var okContent = json.RawMessage(`{"ok":true}`)

func TestRetry(t *testing.T) {
	down := func() MockResponse { return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}} }
	invalid := func() MockResponse {
		return MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}}
	}

	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "first attempt succeeds",
			responses: []MockResponse{{Content: okContent}},
			wantCalls: 1,
		},
		{
			name:      "transient then success",
			responses: []MockResponse{down(), {Content: okContent}},
			wantCalls: 2,
		},
		{
			name:      "all attempts fail",
			responses: []MockResponse{down(), down(), down()},
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name:      "max tokens is not retried",
			responses: []MockResponse{{Err: &ErrMaxTokensExceeded{Content: json.RawMessage(`{}`)}}},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:      "invalid response retried once",
			responses: []MockResponse{invalid(), invalid(), {Content: okContent}},
			wantErr:   true,
			wantCalls: 2,
		},
		{
			name:      "refusal is not retried",
			responses: []MockResponse{{Err: &ErrRefused{Reason: "content_filter"}}, {Content: okContent}},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name: "rate limit honors retry-after",
			responses: []MockResponse{
				{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
				{Content: okContent},
			},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			p := WithRetry(mock, retryConfig())

			resp, err := p.Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(resp.Content) != string(okContent) {
				t.Fatalf("unexpected content: %s", resp.Content)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, mock.CallCount())
			}
		})
	}
}

func TestRetry_CancelledContextStopsRetrying(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: okContent},
	)
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_PurposeAttempts(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
	cfg := retryConfig()
	cfg.PurposeAttempts = map[string]int{"attention": 1, "question-gen": 0}

	tests := []struct {
		purpose   string
		wantCalls int
	}{
		{"attention", 1},
		{"question-gen", 1}, // a zero budget still makes one call
		{"explanation", 3},
	}
	for _, tt := range tests {
		t.Run(tt.purpose, func(t *testing.T) {
			mock := NewMockProvider(down, down, down)
			p := WithRetry(mock, cfg)

			_, err := p.Generate(WithPurpose(context.Background(), tt.purpose), Request{})
			if err == nil {
				t.Fatal("expected error")
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, mock.CallCount())
			}
		})
	}
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), retryConfig())
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}
