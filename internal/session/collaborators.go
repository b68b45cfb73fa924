package session

import (
	"context"
	"time"

	"github.com/abhisek/quizwatch/internal/attention"
	"github.com/abhisek/quizwatch/internal/camera"
	"github.com/abhisek/quizwatch/internal/quiz"
)

// ContentService produces questions and explanations.
type ContentService interface {
	GenerateQuestion(ctx context.Context, input quiz.GenerateInput) (*quiz.Question, error)
	GenerateExplanation(ctx context.Context, input quiz.ExplainInput) (*quiz.Explanation, error)
}

// AttentionAnalyzer rates one camera frame.
type AttentionAnalyzer interface {
	AnalyzeFrame(ctx context.Context, frame camera.Frame, fc attention.FrameContext) (*attention.Sample, error)
}

// EvidenceFrame is a raw frame handed to persistence for audit.
type EvidenceFrame struct {
	SessionID  string
	Mode       quiz.Mode
	StepIndex  int
	MIMEType   string
	Data       []byte
	CapturedAt time.Time
}

// ReportKind labels session report entries.
type ReportKind string

const (
	ReportAttention ReportKind = "attention"
	ReportComplete  ReportKind = "complete"
)

// Report is one entry for the session report sink.
type Report struct {
	SessionID string
	Kind      ReportKind
	Mode      quiz.Mode
	Topic     string
	StepIndex int
	Sample    *attention.Sample
	Score     int
	Total     int
	Timestamp time.Time
}

// Persistence receives evidence frames and report entries.
type Persistence interface {
	StoreEvidenceFrame(ctx context.Context, userID string, frame EvidenceFrame) error
	AppendSessionReport(ctx context.Context, userID string, report Report) error
}

// Lifecycle actions.
const (
	ActionStart   = "start"
	ActionStep    = "step"
	ActionFinish  = "finish"
	ActionAbandon = "abandon"
)

// LifecycleEvent records a session transition.
type LifecycleEvent struct {
	SessionID      string
	Action         string
	Mode           quiz.Mode
	Topic          string
	TotalQuestions int
	StepIndex      int
	Score          int
	ConsentGranted bool
}

// AnswerRecord records one graded answer.
type AnswerRecord struct {
	SessionID    string
	SubjectKey   string
	AnswerResult
	MasteryDelta int
}

// Journal is an optional audit trail of lifecycle, answers and snapshots.
type Journal interface {
	RecordLifecycle(ctx context.Context, userID string, ev LifecycleEvent) error
	RecordAnswer(ctx context.Context, userID string, rec AnswerRecord) error
	SaveSnapshot(ctx context.Context, userID string, snap Snapshot) error
}
