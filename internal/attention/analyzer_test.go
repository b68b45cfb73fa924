package attention

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwatch/internal/camera"
	"github.com/abhisek/quizwatch/internal/llm"
)

func jpegFrame() camera.Frame {
	return camera.Frame{
		Data:       []byte{0xff, 0xd8, 0xff, 0xd9},
		MIMEType:   "image/jpeg",
		CapturedAt: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
	}
}

func TestAnalyzeFrame(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"confusion_score":72,"mood":"confused","summary":"Frowning at the screen."}`),
	})
	a := NewLLMAnalyzer(mock, DefaultAnalyzerConfig())

	s, err := a.AnalyzeFrame(context.Background(), jpegFrame(), FrameContext{Mode: "exam", Topic: "algebra", StepIndex: 3})
	require.NoError(t, err)
	assert.Equal(t, 72, s.ConfusionScore)
	assert.Equal(t, MoodConfused, s.Mood)
	assert.Equal(t, jpegFrame().CapturedAt, s.CapturedAt)

	req := mock.Calls[0]
	require.Len(t, req.Messages, 1)
	require.Len(t, req.Messages[0].Images, 1)
	assert.Equal(t, "image/jpeg", req.Messages[0].Images[0].MIMEType)
	assert.Same(t, SampleSchema, req.Schema)
	assert.True(t, strings.Contains(req.Messages[0].Content, "Question number: 3"))
	assert.True(t, strings.Contains(req.Messages[0].Content, "working on this question"))
}

func TestAnalyzeFrame_NormalizesOutput(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"confusion_score":140,"mood":"sleepy","summary":""}`),
	})
	a := NewLLMAnalyzer(mock, DefaultAnalyzerConfig())
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	frame := jpegFrame()
	frame.CapturedAt = time.Time{}
	frame.MIMEType = ""

	s, err := a.AnalyzeFrame(context.Background(), frame, FrameContext{Answered: true})
	require.NoError(t, err)
	assert.Equal(t, 100, s.ConfusionScore)
	assert.Equal(t, MoodNeutral, s.Mood)
	assert.Equal(t, fixed, s.CapturedAt)
	assert.Equal(t, "image/jpeg", mock.Calls[0].Messages[0].Images[0].MIMEType)
}

func TestAnalyzeFrame_Errors(t *testing.T) {
	a := NewLLMAnalyzer(llm.NewMockProvider(), DefaultAnalyzerConfig())
	_, err := a.AnalyzeFrame(context.Background(), camera.Frame{}, FrameContext{})
	require.Error(t, err)

	rl := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	_, err = NewLLMAnalyzer(rl, DefaultAnalyzerConfig()).AnalyzeFrame(context.Background(), jpegFrame(), FrameContext{})
	var rlErr *llm.ErrRateLimit
	assert.ErrorAs(t, err, &rlErr)
}

func TestClampAndParse(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-4))
	assert.Equal(t, 55, ClampScore(55))
	assert.Equal(t, 100, ClampScore(101))
	assert.Equal(t, MoodAbsent, ParseMood(" Absent "))
	assert.Equal(t, MoodNeutral, ParseMood(""))
}
