package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int    // max results (0 = unlimited)
	After     int64  // sequence > After
	Before    int64  // sequence < Before
	SessionID string // restrict to one session when set
}

// SnapshotData captures the engine-visible session state at a point in time.
type SnapshotData struct {
	Version          int    `json:"version"`
	SessionID        string `json:"session_id"`
	UserID           string `json:"user_id"`
	Phase            string `json:"phase"`
	Mode             string `json:"mode"`
	Topic            string `json:"topic"`
	StepIndex        int    `json:"step_index"`
	TotalQuestions   int    `json:"total_questions"`
	Score            int    `json:"score"`
	MonitoringActive bool   `json:"monitoring_active"`
	ConfusionIndex   int    `json:"confusion_index"`
}

// Snapshot represents a point-in-time capture of session state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages session state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string // empty for calls made outside a session
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates token usage per purpose label.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage per model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Session actions.
const (
	ActionStart   = "start"
	ActionStep    = "step"
	ActionFinish  = "finish"
	ActionAbandon = "abandon"
)

// SessionEventData records a session lifecycle transition.
type SessionEventData struct {
	SessionID      string
	UserID         string
	Action         string
	Mode           string
	Topic          string
	TotalQuestions int
	StepIndex      int
	Score          int
	ConsentGranted bool
}

// SessionEvent is a stored session lifecycle event.
type SessionEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// AnswerEventData records one graded answer.
type AnswerEventData struct {
	SessionID    string
	UserID       string
	SubjectKey   string
	StepIndex    int
	Difficulty   string
	Prompt       string
	ChosenIndex  int
	CorrectIndex int
	Correct      bool
	MasteryDelta int
	MasteryAfter int
	TimeTakenMs  int64
}

// SessionReportData is one entry of the session report log. Attention
// reports carry the analyzed sample; lifecycle reports leave it nil.
type SessionReportData struct {
	SessionID      string
	UserID         string
	Kind           string
	Mode           string
	StepIndex      int
	ConfusionScore *int
	Mood           string
	Summary        string
	Payload        string // JSON
	Timestamp      time.Time
}

// SessionReport is a stored report entry.
type SessionReport struct {
	ID       int
	Sequence int64
	SessionReportData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)

	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error)
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	CountAnswers(ctx context.Context, sessionID string) (total, correct int, err error)

	AppendSessionReport(ctx context.Context, data SessionReportData) error
	QuerySessionReports(ctx context.Context, opts QueryOpts) ([]SessionReport, error)
}

// MasteryScore is one learner's score for a subject key.
type MasteryScore struct {
	UserID     string
	SubjectKey string
	Score      int
	UpdatedAt  time.Time
}

// MasteryRepo stores the latest mastery score per (user, subject).
type MasteryRepo interface {
	// Get returns (score, true) when a score exists.
	Get(ctx context.Context, userID, subjectKey string) (int, bool, error)
	Put(ctx context.Context, userID, subjectKey string, score int) error
	List(ctx context.Context, userID string) ([]MasteryScore, error)
	DeleteUser(ctx context.Context, userID string) (int64, error)
}

// EvidenceRecord indexes one evidence frame whose payload lives in a
// blob store under ObjectKey.
type EvidenceRecord struct {
	ID         int
	Sequence   int64
	CapturedAt time.Time
	SessionID  string
	UserID     string
	Mode       string
	StepIndex  int
	MIMEType   string
	SizeBytes  int
	ObjectKey  string
}

// EvidenceRepo indexes evidence frames.
type EvidenceRepo interface {
	Insert(ctx context.Context, rec EvidenceRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]EvidenceRecord, error)
}
