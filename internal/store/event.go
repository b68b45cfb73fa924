package store

import (
	"context"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence shared by every
// event table, so LLM calls, answers, reports and evidence frames can be
// ordered against each other. ent has no atomic counter, so the single row
// of global_sequence is bumped with UPDATE ... RETURNING under a mutex.
type sequenceCounter struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

// newSequenceCounter seeds the counter row if this is a fresh database.
func newSequenceCounter(ctx context.Context, drv *entsql.Driver) (*sequenceCounter, error) {
	query, args := sqlite.Insert(globalSequenceTable.Name).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if err := drv.Exec(ctx, query, args, nil); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{drv: drv}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	query, args := sqlite.Update(globalSequenceTable.Name).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Returning("next_val").
		Query()

	var rows entsql.Rows
	if err := sc.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	next, err := entsql.ScanInt64(rows)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next - 1, nil
}

// eventRepo implements EventRepo on ent's SQL builders and the global sequence.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

// insert stamps the next sequence number onto an insert and runs it.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := sqlite.Insert(table).
		Columns(append([]string{"sequence"}, cols...)...).
		Values(append([]any{seqNum}, vals...)...).
		Query()
	return r.drv.Exec(ctx, query, args, nil)
}

// page applies the sequence window, newest first, shared by event queries.
func page(s *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if opts.SessionID != "" {
		s.Where(entsql.EQ("session_id", opts.SessionID))
	}
	if opts.After > 0 {
		s.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		s.Where(entsql.LT("sequence", opts.Before))
	}
	s.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		s.Limit(opts.Limit)
	}
	return s
}

// query runs a built select and hands each row to scan.
func query(ctx context.Context, drv *entsql.Driver, s *entsql.Selector, scan func(*entsql.Rows) error) error {
	q, args := s.Query()
	var rows entsql.Rows
	if err := drv.Query(ctx, q, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
