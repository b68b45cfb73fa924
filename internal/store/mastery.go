package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type masteryRepo struct {
	drv *entsql.Driver
}

func (r *masteryRepo) Get(ctx context.Context, userID, subjectKey string) (int, bool, error) {
	s := sqlite.Select("score").
		From(sqlite.Table(masteryScoresTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Where(entsql.EQ("subject_key", subjectKey))

	var (
		score int
		found bool
	)
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&score)
	})
	if err != nil {
		return 0, false, fmt.Errorf("get mastery score: %w", err)
	}
	return score, found, nil
}

// Put upserts the score for (userID, subjectKey). Scores outside 0..100
// are rejected.
func (r *masteryRepo) Put(ctx context.Context, userID, subjectKey string, score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("put mastery score: %d out of range [0, 100]", score)
	}

	query, args := sqlite.Insert(masteryScoresTable.Name).
		Columns("user_id", "subject_key", "score", "updated_at").
		Values(userID, subjectKey, score, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "subject_key"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("score")
				u.SetExcluded("updated_at")
			}),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("put mastery score: %w", err)
	}
	return nil
}

func (r *masteryRepo) List(ctx context.Context, userID string) ([]MasteryScore, error) {
	s := sqlite.Select("user_id", "subject_key", "score", "updated_at").
		From(sqlite.Table(masteryScoresTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("subject_key")

	var out []MasteryScore
	err := query(ctx, r.drv, s, func(rows *entsql.Rows) error {
		var m MasteryScore
		if err := rows.Scan(&m.UserID, &m.SubjectKey, &m.Score, &m.UpdatedAt); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list mastery scores: %w", err)
	}
	return out, nil
}

func (r *masteryRepo) DeleteUser(ctx context.Context, userID string) (int64, error) {
	query, args := sqlite.Delete(masteryScoresTable.Name).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("delete mastery scores: %w", err)
	}
	return res.RowsAffected()
}
