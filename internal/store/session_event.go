package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, sessionEventsTable.Name,
		[]string{"timestamp", "session_id", "user_id", "action", "mode", "topic",
			"total_questions", "step_index", "score", "consent_granted"},
		[]any{time.Now().UTC(), data.SessionID, data.UserID, data.Action, data.Mode, data.Topic,
			data.TotalQuestions, data.StepIndex, data.Score, data.ConsentGranted},
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	s := page(sqlite.Select("id", "sequence", "timestamp", "session_id", "user_id", "action", "mode",
		"topic", "total_questions", "step_index", "score", "consent_granted").
		From(sqlite.Table(sessionEventsTable.Name)), opts)

	var out []SessionEvent
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		var e SessionEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.UserID, &e.Action, &e.Mode,
			&e.Topic, &e.TotalQuestions, &e.StepIndex, &e.Score, &e.ConsentGranted); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	err := r.insert(ctx, answerEventsTable.Name,
		[]string{"timestamp", "session_id", "user_id", "subject_key", "step_index", "difficulty", "prompt",
			"chosen_index", "correct_index", "correct", "mastery_delta", "mastery_after", "time_taken_ms"},
		[]any{time.Now().UTC(), data.SessionID, data.UserID, data.SubjectKey, data.StepIndex, data.Difficulty,
			data.Prompt, data.ChosenIndex, data.CorrectIndex, data.Correct, data.MasteryDelta,
			data.MasteryAfter, data.TimeTakenMs},
	)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) CountAnswers(ctx context.Context, sessionID string) (int, int, error) {
	s := sqlite.Select(entsql.Count("*"), entsql.Sum("correct")).
		From(sqlite.Table(answerEventsTable.Name)).
		Where(entsql.EQ("session_id", sessionID))

	var (
		total   int
		correct sql.NullInt64
	)
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		return rows.Scan(&total, &correct)
	})
	if err != nil {
		return 0, 0, fmt.Errorf("count answers: %w", err)
	}
	return total, int(correct.Int64), nil
}

func (r *eventRepo) AppendSessionReport(ctx context.Context, data SessionReportData) error {
	ts := data.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	payload := data.Payload
	if payload == "" {
		payload = "{}"
	}

	var confusion sql.NullInt64
	if data.ConfusionScore != nil {
		confusion = sql.NullInt64{Int64: int64(*data.ConfusionScore), Valid: true}
	}

	err := r.insert(ctx, sessionReportsTable.Name,
		[]string{"timestamp", "session_id", "user_id", "kind", "mode", "step_index",
			"confusion_score", "mood", "summary", "payload"},
		[]any{ts.UTC(), data.SessionID, data.UserID, data.Kind, data.Mode, data.StepIndex,
			confusion, data.Mood, data.Summary, payload},
	)
	if err != nil {
		return fmt.Errorf("save session report: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionReports(ctx context.Context, opts QueryOpts) ([]SessionReport, error) {
	s := page(sqlite.Select("id", "sequence", "timestamp", "session_id", "user_id", "kind", "mode",
		"step_index", "confusion_score", "mood", "summary", "payload").
		From(sqlite.Table(sessionReportsTable.Name)), opts)

	var out []SessionReport
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		var (
			rep       SessionReport
			confusion sql.NullInt64
		)
		if err := rows.Scan(&rep.ID, &rep.Sequence, &rep.Timestamp, &rep.SessionID, &rep.UserID, &rep.Kind,
			&rep.Mode, &rep.StepIndex, &confusion, &rep.Mood, &rep.Summary, &rep.Payload); err != nil {
			return err
		}
		if confusion.Valid {
			v := int(confusion.Int64)
			rep.ConfusionScore = &v
		}
		out = append(out, rep)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session reports: %w", err)
	}
	return out, nil
}
