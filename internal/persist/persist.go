// Package persist is the storage side of a session: it implements the
// engine's persistence and journal contracts and the mastery score repo on
// top of SQLite, a blob store, a message broker and the live status board.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/quizwatch/internal/blob"
	"github.com/abhisek/quizwatch/internal/events"
	"github.com/abhisek/quizwatch/internal/livestatus"
	"github.com/abhisek/quizwatch/internal/mastery"
	"github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/store"
)

// DefaultKeepSnapshots is how many session snapshots are retained.
const DefaultKeepSnapshots = 200

// Config selects the backends. Store and Blobs are required; a nil
// Publisher or Board disables that fan-out.
type Config struct {
	Store         *store.Store
	Blobs         blob.Store
	Publisher     events.Publisher
	Board         livestatus.Board
	Logger        *slog.Logger
	KeepSnapshots int
}

// Service writes session data to every configured backend. SQLite and the
// blob store are authoritative; the broker and the board are best effort.
type Service struct {
	events   store.EventRepo
	snaps    store.SnapshotRepo
	scores   store.MasteryRepo
	evidence store.EvidenceRepo
	blobs    blob.Store
	pub      events.Publisher
	board    livestatus.Board
	log      *slog.Logger
	keep     int
}

var (
	_ session.Persistence = (*Service)(nil)
	_ session.Journal     = (*Service)(nil)
	_ mastery.ScoreRepo   = (*Service)(nil)
)

// New creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("persist: store is required")
	}
	if cfg.Blobs == nil {
		return nil, fmt.Errorf("persist: blob store is required")
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.Nop{}
	}
	if cfg.Board == nil {
		cfg.Board = livestatus.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.KeepSnapshots <= 0 {
		cfg.KeepSnapshots = DefaultKeepSnapshots
	}
	return &Service{
		events:   cfg.Store.EventRepo(),
		snaps:    cfg.Store.SnapshotRepo(),
		scores:   cfg.Store.MasteryRepo(),
		evidence: cfg.Store.EvidenceRepo(),
		blobs:    cfg.Blobs,
		pub:      cfg.Publisher,
		board:    cfg.Board,
		log:      cfg.Logger,
		keep:     cfg.KeepSnapshots,
	}, nil
}

// Close releases the broker and board connections.
func (s *Service) Close() error {
	perr := s.pub.Close()
	berr := s.board.Close()
	if perr != nil {
		return perr
	}
	return berr
}

func (s *Service) publish(ctx context.Context, key string, payload any) {
	if err := s.pub.Publish(ctx, key, payload); err != nil {
		s.log.Warn("event not published", "key", key, "err", err)
	}
}

// LoadMasteryScore implements mastery.ScoreRepo.
func (s *Service) LoadMasteryScore(ctx context.Context, userID, subjectKey string) (int, bool, error) {
	return s.scores.Get(ctx, userID, subjectKey)
}

type masteryUpdated struct {
	UserID     string `json:"user_id"`
	SubjectKey string `json:"subject_key"`
	Score      int    `json:"score"`
}

// StoreMasteryScore implements mastery.ScoreRepo.
func (s *Service) StoreMasteryScore(ctx context.Context, userID, subjectKey string, score int) error {
	if err := s.scores.Put(ctx, userID, subjectKey, score); err != nil {
		return err
	}
	s.publish(ctx, events.KeyMasteryUpdated, masteryUpdated{UserID: userID, SubjectKey: subjectKey, Score: score})
	return nil
}

type evidenceStored struct {
	UserID     string `json:"user_id"`
	SessionID  string `json:"session_id"`
	Mode       string `json:"mode"`
	StepIndex  int    `json:"step_index"`
	ObjectKey  string `json:"object_key"`
	SizeBytes  int    `json:"size_bytes"`
	CapturedAt int64  `json:"captured_at_ms"`
}

// StoreEvidenceFrame uploads the payload and indexes it. When indexing
// fails the uploaded object is removed so no payload is left unindexed.
func (s *Service) StoreEvidenceFrame(ctx context.Context, userID string, f session.EvidenceFrame) error {
	key, err := s.blobs.Put(ctx, blob.EvidenceKey(f.SessionID, f.StepIndex, f.CapturedAt, f.MIMEType), f.MIMEType, f.Data)
	if err != nil {
		return fmt.Errorf("store evidence payload: %w", err)
	}
	rec := store.EvidenceRecord{
		CapturedAt: f.CapturedAt,
		SessionID:  f.SessionID,
		UserID:     userID,
		Mode:       string(f.Mode),
		StepIndex:  f.StepIndex,
		MIMEType:   f.MIMEType,
		SizeBytes:  len(f.Data),
		ObjectKey:  key,
	}
	if err := s.evidence.Insert(ctx, rec); err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.log.Warn("orphaned evidence object", "key", key, "err", derr)
		}
		return err
	}
	s.publish(ctx, events.KeyEvidenceStored, evidenceStored{
		UserID:     userID,
		SessionID:  f.SessionID,
		Mode:       string(f.Mode),
		StepIndex:  f.StepIndex,
		ObjectKey:  key,
		SizeBytes:  len(f.Data),
		CapturedAt: f.CapturedAt.UnixMilli(),
	})
	return nil
}

type reportPayload struct {
	Topic string `json:"topic,omitempty"`
	Score int    `json:"score"`
	Total int    `json:"total"`
}

type sessionReport struct {
	UserID         string `json:"user_id"`
	SessionID      string `json:"session_id"`
	Kind           string `json:"kind"`
	Mode           string `json:"mode"`
	StepIndex      int    `json:"step_index"`
	ConfusionScore *int   `json:"confusion_score,omitempty"`
	Mood           string `json:"mood,omitempty"`
	Score          int    `json:"score"`
	Total          int    `json:"total"`
}

// AppendSessionReport appends to the report log and updates the board.
func (s *Service) AppendSessionReport(ctx context.Context, userID string, r session.Report) error {
	payload, err := json.Marshal(reportPayload{Topic: r.Topic, Score: r.Score, Total: r.Total})
	if err != nil {
		return fmt.Errorf("encode report payload: %w", err)
	}
	data := store.SessionReportData{
		SessionID: r.SessionID,
		UserID:    userID,
		Kind:      string(r.Kind),
		Mode:      string(r.Mode),
		StepIndex: r.StepIndex,
		Payload:   string(payload),
		Timestamp: r.Timestamp,
	}
	if r.Sample != nil {
		score := r.Sample.ConfusionScore
		data.ConfusionScore = &score
		data.Mood = string(r.Sample.Mood)
		data.Summary = r.Sample.Summary
	}
	if err := s.events.AppendSessionReport(ctx, data); err != nil {
		return err
	}

	s.publish(ctx, events.KeySessionReport, sessionReport{
		UserID:         userID,
		SessionID:      r.SessionID,
		Kind:           data.Kind,
		Mode:           data.Mode,
		StepIndex:      r.StepIndex,
		ConfusionScore: data.ConfusionScore,
		Mood:           data.Mood,
		Score:          r.Score,
		Total:          r.Total,
	})

	if r.Kind == session.ReportAttention && r.Sample != nil {
		s.updateBoard(ctx, userID, func(st *livestatus.Status) {
			st.SessionID = r.SessionID
			st.ConfusionScore = data.ConfusionScore
			st.Mood = data.Mood
		})
	}
	return nil
}

// RecordLifecycle implements session.Journal.
func (s *Service) RecordLifecycle(ctx context.Context, userID string, ev session.LifecycleEvent) error {
	err := s.events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:      ev.SessionID,
		UserID:         userID,
		Action:         ev.Action,
		Mode:           string(ev.Mode),
		Topic:          ev.Topic,
		TotalQuestions: ev.TotalQuestions,
		StepIndex:      ev.StepIndex,
		Score:          ev.Score,
		ConsentGranted: ev.ConsentGranted,
	})
	if err != nil {
		return err
	}
	if ev.Action == session.ActionFinish || ev.Action == session.ActionAbandon {
		if err := s.board.Clear(ctx, userID); err != nil {
			s.log.Warn("live status not cleared", "user", userID, "err", err)
		}
	}
	return nil
}

// RecordAnswer implements session.Journal.
func (s *Service) RecordAnswer(ctx context.Context, userID string, rec session.AnswerRecord) error {
	return s.events.AppendAnswerEvent(ctx, store.AnswerEventData{
		SessionID:    rec.SessionID,
		UserID:       userID,
		SubjectKey:   rec.SubjectKey,
		StepIndex:    rec.StepIndex,
		Difficulty:   string(rec.Difficulty),
		Prompt:       rec.Prompt,
		ChosenIndex:  rec.ChosenIndex,
		CorrectIndex: rec.CorrectIndex,
		Correct:      rec.Correct,
		MasteryDelta: rec.MasteryDelta,
		MasteryAfter: rec.MasteryAfter,
		TimeTakenMs:  rec.TimeTaken.Milliseconds(),
	})
}

// SnapshotVersion is written into every stored snapshot.
const SnapshotVersion = 1

// SaveSnapshot implements session.Journal.
func (s *Service) SaveSnapshot(ctx context.Context, userID string, snap session.Snapshot) error {
	data := SnapshotData(userID, snap)
	if err := s.snaps.Save(ctx, &store.Snapshot{Timestamp: time.Now(), Data: data}); err != nil {
		return err
	}
	if err := s.snaps.Prune(ctx, s.keep); err != nil {
		s.log.Warn("snapshot prune failed", "err", err)
	}

	if snap.Phase == session.PhaseActive {
		s.updateBoard(ctx, userID, func(st *livestatus.Status) {
			st.SessionID = snap.SessionID
			st.Phase = snap.Phase.String()
			st.Mode = string(snap.Mode)
			st.Topic = snap.Topic
			st.StepIndex = snap.StepIndex
			st.TotalQuestions = snap.TotalQuestions
			st.Score = snap.Score
			st.MonitoringActive = snap.MonitoringActive
		})
	}
	return nil
}

// SnapshotData converts an engine snapshot into its stored form.
func SnapshotData(userID string, snap session.Snapshot) store.SnapshotData {
	d := store.SnapshotData{
		Version:          SnapshotVersion,
		SessionID:        snap.SessionID,
		UserID:           userID,
		Phase:            snap.Phase.String(),
		Mode:             string(snap.Mode),
		Topic:            snap.Topic,
		StepIndex:        snap.StepIndex,
		TotalQuestions:   snap.TotalQuestions,
		Score:            snap.Score,
		MonitoringActive: snap.MonitoringActive,
	}
	if snap.ConfusionIndex != nil {
		d.ConfusionIndex = *snap.ConfusionIndex
	}
	return d
}

func (s *Service) updateBoard(ctx context.Context, userID string, apply func(*livestatus.Status)) {
	st, err := s.board.Get(ctx, userID)
	if err != nil {
		s.log.Warn("live status read failed", "user", userID, "err", err)
		return
	}
	if st == nil {
		st = &livestatus.Status{UserID: userID}
	}
	apply(st)
	st.UpdatedAt = time.Now().UTC()
	if err := s.board.Put(ctx, *st); err != nil {
		s.log.Warn("live status write failed", "user", userID, "err", err)
	}
}
