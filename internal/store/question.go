package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/dailydrill/internal/catalog"
)

// questionRepo implements QuestionRepo.
type questionRepo struct {
	drv *entsql.Driver
}

func (r *questionRepo) Upsert(ctx context.Context, qs []catalog.Question) (int, error) {
	if len(qs) == 0 {
		return 0, nil
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin question upsert: %w", err)
	}
	now := time.Now().UTC()
	for _, q := range qs {
		lists, err := json.Marshal(q.Lists)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("marshal lists for %s: %w", q.ID, err)
		}
		query, args := builder().Insert(QuestionsTable.Name).
			Columns("id", "title", "topic", "difficulty", "lists", "position", "updated_at").
			Values(q.ID, q.Title, q.Topic, string(q.Difficulty), lists, q.Order, now).
			OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("upsert question %s: %w", q.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit question upsert: %w", err)
	}
	return len(qs), nil
}

func (r *questionRepo) All(ctx context.Context) ([]catalog.Question, error) {
	query, args := builder().Select("id", "title", "topic", "difficulty", "lists", "position").
		From(entsql.Table(QuestionsTable.Name)).
		OrderBy("position", "id").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var qs []catalog.Question
	for rows.Next() {
		var (
			q     catalog.Question
			diff  string
			lists []byte
		)
		if err := rows.Scan(&q.ID, &q.Title, &q.Topic, &diff, &lists, &q.Order); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Difficulty = catalog.Difficulty(diff)
		if len(lists) > 0 {
			if err := json.Unmarshal(lists, &q.Lists); err != nil {
				return nil, fmt.Errorf("unmarshal lists for %s: %w", q.ID, err)
			}
		}
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return qs, nil
}
