package store

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo with the snapshot data stored as JSON.
type snapshotRepo struct {
	drv *entsql.Driver
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	query, args := sqlite.Insert(snapshotsTable.Name).
		Columns("sequence", "timestamp", "data").
		Values(snap.Sequence, snap.Timestamp.UTC(), string(data)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// newestFirst selects snapshot columns with the most recent row first.
func newestFirst(columns ...string) *entsql.Selector {
	return sqlite.Select(columns...).
		From(sqlite.Table(snapshotsTable.Name)).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id"))
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	var latest *Snapshot
	err := query(ctx, r.drv, newestFirst("id", "sequence", "timestamp", "data").Limit(1), func(rows *entsql.Rows) error {
		var (
			s    Snapshot
			data string
		)
		if err := rows.Scan(&s.ID, &s.Sequence, &s.Timestamp, &data); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
			return fmt.Errorf("unmarshal snapshot data: %w", err)
		}
		latest = &s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	return latest, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	var ids []any
	if keep > 0 {
		err := query(ctx, r.drv, newestFirst("id").Limit(keep), func(rows *entsql.Rows) error {
			var id int
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return fmt.Errorf("prune snapshots: %w", err)
		}
	}

	query, args := sqlite.Delete(snapshotsTable.Name).
		Where(entsql.NotIn("id", ids...)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
