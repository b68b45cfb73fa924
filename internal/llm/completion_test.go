package llm

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestFinish(t *testing.T) {
	schema := &Schema{Name: "ok-flag", Definition: map[string]any{
		"type":       "object",
		"properties": map[string]any{"ok": map[string]any{"type": "boolean"}},
		"required":   []any{"ok"},
	}}

	tests := []struct {
		name    string
		req     Request
		c       completion
		wantErr any
	}{
		{
			name: "valid structured reply",
			req:  Request{Schema: schema},
			c:    completion{text: `{"ok":true}`, stop: stopEnd, usage: Usage{InputTokens: 5, OutputTokens: 2}},
		},
		{
			name:    "refusal",
			req:     Request{Schema: schema},
			c:       completion{stop: stopRefused, reason: "refusal"},
			wantErr: new(*ErrRefused),
		},
		{
			name:    "truncated structured reply",
			req:     Request{Schema: schema},
			c:       completion{text: `{"ok":tr`, stop: stopMaxTokens},
			wantErr: new(*ErrMaxTokensExceeded),
		},
		{
			name: "truncated free text is kept",
			req:  Request{},
			c:    completion{text: "partial", stop: stopMaxTokens},
		},
		{
			name:    "empty text",
			req:     Request{},
			c:       completion{stop: stopEnd},
			wantErr: new(*ErrInvalidResponse),
		},
		{
			name:    "schema violation",
			req:     Request{Schema: schema},
			c:       completion{text: `{"ok":"yes"}`, stop: stopEnd},
			wantErr: new(*ErrInvalidResponse),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := finish(tt.req, tt.c)
			if tt.wantErr != nil {
				if err == nil || !errors.As(err, tt.wantErr) {
					t.Fatalf("expected %T, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(resp.Content) != tt.c.text || resp.StopReason != tt.c.stop {
				t.Fatalf("unexpected response: %+v", resp)
			}
			if resp.Usage.TotalTokens != tt.c.usage.InputTokens+tt.c.usage.OutputTokens {
				t.Fatalf("total tokens not filled: %+v", resp.Usage)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("boom")

	var rl *ErrRateLimit
	if err := classifyStatus(http.StatusTooManyRequests, 3*time.Second, cause); !errors.As(err, &rl) || rl.RetryAfter != 3*time.Second {
		t.Fatalf("429 = %v", err)
	}

	var unavail *ErrProviderUnavailable
	for _, status := range []int{http.StatusBadGateway, http.StatusBadRequest, 0} {
		if err := classifyStatus(status, 0, cause); !errors.As(err, &unavail) || !errors.Is(err, cause) {
			t.Fatalf("%d = %v", status, err)
		}
	}
}
