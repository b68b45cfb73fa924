package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type evidenceRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *evidenceRepo) Insert(ctx context.Context, rec EvidenceRecord) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("save evidence frame: %w", err)
	}

	query, args := sqlite.Insert(evidenceFramesTable.Name).
		Columns("sequence", "captured_at", "session_id", "user_id", "mode", "step_index",
			"mime_type", "size_bytes", "object_key").
		Values(seqNum, rec.CapturedAt.UTC(), rec.SessionID, rec.UserID, rec.Mode, rec.StepIndex,
			rec.MIMEType, rec.SizeBytes, rec.ObjectKey).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save evidence frame: %w", err)
	}
	return nil
}

func (r *evidenceRepo) ListBySession(ctx context.Context, sessionID string) ([]EvidenceRecord, error) {
	s := sqlite.Select("id", "sequence", "captured_at", "session_id", "user_id", "mode", "step_index",
		"mime_type", "size_bytes", "object_key").
		From(sqlite.Table(evidenceFramesTable.Name)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence")

	var out []EvidenceRecord
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		var rec EvidenceRecord
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.CapturedAt, &rec.SessionID, &rec.UserID, &rec.Mode,
			&rec.StepIndex, &rec.MIMEType, &rec.SizeBytes, &rec.ObjectKey); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list evidence frames: %w", err)
	}
	return out, nil
}
