package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// eventColumns returns the id, sequence and timestamp columns every event
// table carries. The sequence is global so rows of different kinds can be
// interleaved in order.
func eventColumns(tsName string) (*schema.Column, *schema.Column, *schema.Column) {
	return &schema.Column{Name: "id", Type: field.TypeInt, Increment: true},
		&schema.Column{Name: "sequence", Type: field.TypeInt64, Unique: true},
		&schema.Column{Name: tsName, Type: field.TypeTime}
}

func str(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString}
}

func strDefault(name, def string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Default: def}
}

func integer(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt}
}

func boolean(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeBool}
}

var (
	llmRequestEventsColumns = func() []*schema.Column {
		id, seq, ts := eventColumns("timestamp")
		return []*schema.Column{
			id, seq, ts,
			str("provider"),
			str("model"),
			str("purpose"),
			strDefault("session_id", ""),
			{Name: "input_tokens", Type: field.TypeInt, Default: 0},
			{Name: "output_tokens", Type: field.TypeInt, Default: 0},
			{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
			boolean("success"),
			strDefault("error_message", ""),
			strDefault("request_body", ""),
			strDefault("response_body", ""),
		}
	}()
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
		},
	}

	sessionEventsColumns = func() []*schema.Column {
		id, seq, ts := eventColumns("timestamp")
		return []*schema.Column{
			id, seq, ts,
			str("session_id"),
			str("user_id"),
			str("action"),
			str("mode"),
			str("topic"),
			integer("total_questions"),
			integer("step_index"),
			integer("score"),
			boolean("consent_granted"),
		}
	}()
	sessionEventsTable = &schema.Table{
		Name:       "session_events",
		Columns:    sessionEventsColumns,
		PrimaryKey: []*schema.Column{sessionEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionevent_session_id", Columns: []*schema.Column{sessionEventsColumns[3]}},
		},
	}

	answerEventsColumns = func() []*schema.Column {
		id, seq, ts := eventColumns("timestamp")
		return []*schema.Column{
			id, seq, ts,
			str("session_id"),
			str("user_id"),
			str("subject_key"),
			integer("step_index"),
			str("difficulty"),
			str("prompt"),
			integer("chosen_index"),
			integer("correct_index"),
			boolean("correct"),
			integer("mastery_delta"),
			integer("mastery_after"),
			{Name: "time_taken_ms", Type: field.TypeInt64},
		}
	}()
	answerEventsTable = &schema.Table{
		Name:       "answer_events",
		Columns:    answerEventsColumns,
		PrimaryKey: []*schema.Column{answerEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answerevent_session_id", Columns: []*schema.Column{answerEventsColumns[3]}},
			{Name: "answerevent_user_id_subject_key", Columns: []*schema.Column{answerEventsColumns[4], answerEventsColumns[5]}},
		},
	}

	sessionReportsColumns = func() []*schema.Column {
		id, seq, ts := eventColumns("timestamp")
		return []*schema.Column{
			id, seq, ts,
			str("session_id"),
			str("user_id"),
			str("kind"),
			str("mode"),
			integer("step_index"),
			{Name: "confusion_score", Type: field.TypeInt, Nullable: true},
			strDefault("mood", ""),
			strDefault("summary", ""),
			strDefault("payload", "{}"),
		}
	}()
	sessionReportsTable = &schema.Table{
		Name:       "session_reports",
		Columns:    sessionReportsColumns,
		PrimaryKey: []*schema.Column{sessionReportsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionreport_session_id", Columns: []*schema.Column{sessionReportsColumns[3]}},
		},
	}

	evidenceFramesColumns = func() []*schema.Column {
		id, seq, ts := eventColumns("captured_at")
		return []*schema.Column{
			id, seq, ts,
			str("session_id"),
			str("user_id"),
			str("mode"),
			integer("step_index"),
			str("mime_type"),
			integer("size_bytes"),
			str("object_key"),
		}
	}()
	evidenceFramesTable = &schema.Table{
		Name:       "evidence_frames",
		Columns:    evidenceFramesColumns,
		PrimaryKey: []*schema.Column{evidenceFramesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "evidenceframe_session_id", Columns: []*schema.Column{evidenceFramesColumns[3]}},
		},
	}

	masteryScoresColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		str("user_id"),
		str("subject_key"),
		integer("score"),
		{Name: "updated_at", Type: field.TypeTime},
	}
	masteryScoresTable = &schema.Table{
		Name:       "mastery_scores",
		Columns:    masteryScoresColumns,
		PrimaryKey: []*schema.Column{masteryScoresColumns[0]},
		Indexes: []*schema.Index{
			{Name: "masteryscore_user_id_subject_key", Unique: true, Columns: []*schema.Column{masteryScoresColumns[1], masteryScoresColumns[2]}},
		},
	}

	snapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "data", Type: field.TypeJSON},
	}
	snapshotsTable = &schema.Table{
		Name:       "snapshots",
		Columns:    snapshotsColumns,
		PrimaryKey: []*schema.Column{snapshotsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "snapshot_timestamp", Columns: []*schema.Column{snapshotsColumns[2]}},
		},
	}

	globalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	globalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    globalSequenceColumns,
		PrimaryKey: []*schema.Column{globalSequenceColumns[0]},
	}

	// tables lists every table the store owns, in creation order.
	tables = []*schema.Table{
		llmRequestEventsTable,
		sessionEventsTable,
		answerEventsTable,
		sessionReportsTable,
		evidenceFramesTable,
		masteryScoresTable,
		snapshotsTable,
		globalSequenceTable,
	}
)

// migrate brings the database up to the declared tables. Running it against
// an already migrated database is a no-op.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
