package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose", "session_id", "input_tokens",
	"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, llmRequestEventsTable.Name,
		[]string{"timestamp", "provider", "model", "purpose", "session_id", "input_tokens",
			"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body"},
		[]any{time.Now().UTC(), data.Provider, data.Model, data.Purpose, data.SessionID, data.InputTokens,
			data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody},
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	s := page(sqlite.Select(llmEventColumns...).From(sqlite.Table(llmRequestEventsTable.Name)), opts)

	var out []LLMEvent
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return err
		}
		out = append(out, *e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	s := sqlite.Select(llmEventColumns...).
		From(sqlite.Table(llmRequestEventsTable.Name)).
		Where(entsql.EQ("id", id))

	var found *LLMEvent
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		e, err := scanLLMEvent(rows)
		found = e
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return found, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error) {
	s := sqlite.Select("purpose", entsql.Count("*"), entsql.Sum("input_tokens"), entsql.Sum("output_tokens"), entsql.Avg("latency_ms")).
		From(sqlite.Table(llmRequestEventsTable.Name)).
		GroupBy("purpose").
		OrderBy("purpose")

	var out []LLMPurposeUsage
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		var (
			u       LLMPurposeUsage
			in, o   sql.NullInt64
			latency sql.NullFloat64
		)
		if err := rows.Scan(&u.Purpose, &u.Calls, &in, &o, &latency); err != nil {
			return err
		}
		u.InputTokens, u.OutputTokens = int(in.Int64), int(o.Int64)
		u.AvgLatencyMs = int64(latency.Float64)
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	s := sqlite.Select("model", entsql.Count("*"), entsql.Sum("input_tokens"), entsql.Sum("output_tokens")).
		From(sqlite.Table(llmRequestEventsTable.Name)).
		Where(entsql.EQ("success", true)).
		GroupBy("model").
		OrderBy("model")

	var out []LLMModelUsage
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		var (
			u     LLMModelUsage
			in, o sql.NullInt64
		)
		if err := rows.Scan(&u.Model, &u.Calls, &in, &o); err != nil {
			return err
		}
		u.InputTokens, u.OutputTokens = int(in.Int64), int(o.Int64)
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return out, nil
}

func scanLLMEvent(rows *entsql.Rows) (*LLMEvent, error) {
	var e LLMEvent
	err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose, &e.SessionID,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if err != nil {
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	return &e, nil
}
