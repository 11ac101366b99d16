package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// sequenceCounter hands out the global monotonic sequence number for the
// lifecycle log. Timestamps from different processes may tie or go
// backwards; the sequence gives every event a total order, so a reader
// can resume from the last sequence it saw.
//
// Uses raw SQL because the query builder has no atomic counters. The mutex
// serializes within the process; the RETURNING clause makes the increment
// atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *eventRepo) Append(ctx context.Context, e *BatchEvent) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.ID = uuid.NewString()
	e.Sequence = seqNum

	var batchID, detail any
	if e.BatchID != "" {
		batchID = e.BatchID
	}
	if len(e.Detail) > 0 {
		detail = []byte(e.Detail)
	}

	query, args := builder().Insert(BatchEventsTable.Name).
		Columns("id", "sequence", "timestamp", "user_id", "batch_id", "kind", "detail").
		Values(e.ID, e.Sequence, e.Timestamp.UTC(), e.UserID, batchID, e.Kind, detail).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save batch event: %w", err)
	}
	return nil
}

func (r *eventRepo) Query(ctx context.Context, userID string, opts QueryOpts) ([]BatchEvent, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}

	sel := builder().Select("id", "sequence", "timestamp", "user_id", "batch_id", "kind", "detail").
		From(entsql.Table(BatchEventsTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("sequence"))
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query batch events: %w", err)
	}
	defer rows.Close()

	var events []BatchEvent
	for rows.Next() {
		var (
			e       BatchEvent
			batchID sql.NullString
			detail  []byte
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.UserID, &batchID, &e.Kind, &detail); err != nil {
			return nil, fmt.Errorf("scan batch event: %w", err)
		}
		// Time bounds are applied here; stored timestamps are not
		// lexically comparable across offsets.
		if !opts.From.IsZero() && e.Timestamp.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && e.Timestamp.After(opts.To) {
			continue
		}
		e.BatchID = batchID.String
		e.Detail = detail
		events = append(events, e)
		if opts.Limit > 0 && len(events) >= opts.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch events: %w", err)
	}
	return events, nil
}
