package cmd

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/quizwatch/internal/store"
)

func TestWriteLLMEvents(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	events := []store.LLMEvent{
		{ID: 3, Timestamp: ts, LLMRequestEventData: store.LLMRequestEventData{
			Purpose: "attention", SessionID: "0f5c2d7e-aaaa", Model: "gemini-2.5-flash", Success: false,
		}},
		{ID: 2, Timestamp: ts, LLMRequestEventData: store.LLMRequestEventData{
			Purpose: "question-gen", Model: "gpt-4o-mini", InputTokens: 120, Success: true,
		}},
	}

	var b strings.Builder
	writeLLMEvents(&b, events, "")
	out := b.String()
	assert.Contains(t, out, "0f5c2d7e ")
	assert.NotContains(t, out, "0f5c2d7e-aaaa")
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "question-gen  -")

	b.Reset()
	writeLLMEvents(&b, events, "attention")
	assert.NotContains(t, b.String(), "question-gen")

	b.Reset()
	writeLLMEvents(&b, events, "explanation")
	assert.Equal(t, "No LLM events found.\n", b.String())
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0042", formatCost(0.0042))
	assert.Equal(t, "$1.50", formatCost(1.5))
}

func TestWriteLLMEvent(t *testing.T) {
	e := &store.LLMEvent{ID: 7, Timestamp: time.Now(), LLMRequestEventData: store.LLMRequestEventData{
		Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "attention", SessionID: "s-42",
		ErrorMessage: "LLM request refused: SAFETY", RequestBody: "[user]\nlook\n",
	}}

	var b strings.Builder
	writeLLMEvent(&b, e)
	out := b.String()
	assert.Contains(t, out, "Session:  s-42")
	assert.Contains(t, out, "Error:    LLM request refused: SAFETY")
	assert.Contains(t, out, "[user]\nlook")
	assert.Contains(t, out, "RESPONSE")
	assert.Contains(t, out, "(not captured)")
}

func TestWriteLLMUsage(t *testing.T) {
	var b strings.Builder
	writeLLMUsage(&b, nil, nil)
	assert.Equal(t, "No LLM usage recorded yet.\n", b.String())

	b.Reset()
	writeLLMUsage(&b,
		[]store.LLMPurposeUsage{{Purpose: "attention", Calls: 2, InputTokens: 1000, OutputTokens: 100}},
		[]store.LLMModelUsage{
			{Model: "gpt-4o-mini", Calls: 1, InputTokens: 1_000_000},
			{Model: "homebrew-vision", Calls: 1},
		})
	out := b.String()
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "$0.15")
	assert.Contains(t, out, "Pricing unavailable for: homebrew-vision")
}

func TestBuildVersion(t *testing.T) {
	none := func() (*debug.BuildInfo, bool) { return nil, false }
	installed := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}}, true
	}

	assert.Equal(t, "v1.0.0", buildVersion("v1.0.0", installed))
	assert.Equal(t, "v0.4.0", buildVersion("", installed))
	assert.Equal(t, "(devel)", buildVersion("", none))
}
