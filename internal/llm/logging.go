package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/quizwatch/internal/store"
)

// maxLoggedBody caps stored request and response text.
const maxLoggedBody = 32 << 10

// EventSink receives one record per LLM request.
type EventSink interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider is a decorator that records every LLM request.
type LoggingProvider struct {
	inner    Provider
	provider string
	sink     EventSink
}

// WithLogging wraps p so that each call is written to sink, tagged with
// the backend name, the purpose and the session from ctx.
func WithLogging(p Provider, provider string, sink EventSink) Provider {
	return &LoggingProvider{inner: p, provider: provider, sink: sink}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		SessionID:   SessionFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: clip(serializeRequest(req)),
	}
	if resp != nil {
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.ResponseBody = clip(string(resp.Content))
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// The record outlives a cancelled session, and a failed write never
	// fails the request.
	if logErr := l.sink.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		slog.Warn("failed to log LLM request event", "purpose", data.Purpose, "err", logErr)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func clip(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + fmt.Sprintf("\n[truncated %d bytes]", len(s)-maxLoggedBody)
}

// serializeRequest renders a request for the log. Image bytes are
// evidence and are replaced by a size marker.
func serializeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n", m.Role, m.Content)
		for _, img := range m.Images {
			fmt.Fprintf(&b, "[image %s, %d bytes]\n", img.MIMEType, len(img.Data))
		}
		b.WriteString("\n")
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
