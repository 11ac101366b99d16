package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/dailydrill/internal/batch"
)

// batchRepo implements BatchRepo. The batch body is a JSON document; the
// stale flag and expiry live in their own columns so they can be updated
// and swept without decoding it.
type batchRepo struct {
	drv *entsql.Driver
}

func (r *batchRepo) Get(ctx context.Context, userID, date string) (*batch.Batch, error) {
	query, args := builder().Select("data", "stale").
		From(entsql.Table(DailyBatchesTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("batch_date", date))).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query batch: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query batch: %w", err)
		}
		return nil, nil
	}
	var (
		data  []byte
		stale bool
	)
	if err := rows.Scan(&data, &stale); err != nil {
		return nil, fmt.Errorf("scan batch: %w", err)
	}

	var b batch.Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("unmarshal batch: %w", err)
	}
	b.Stale = stale
	return &b, nil
}

func (r *batchRepo) Create(ctx context.Context, b *batch.Batch) (bool, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return false, fmt.Errorf("marshal batch: %w", err)
	}

	query, args := builder().Insert(DailyBatchesTable.Name).
		Columns("id", "user_id", "batch_date", "batch_type", "data", "stale", "expires_at", "created_at", "updated_at").
		Values(b.ID, b.UserID, b.Date, string(b.Type), data, b.Stale, b.ExpiresAt.UTC(), b.CreatedAt.UTC(), b.UpdatedAt.UTC()).
		OnConflict(entsql.ConflictColumns("user_id", "batch_date"), entsql.DoNothing()).
		Query()

	var res entsql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("create batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create batch: %w", err)
	}
	return n > 0, nil
}

func (r *batchRepo) Save(ctx context.Context, b *batch.Batch) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	query, args := builder().Update(DailyBatchesTable.Name).
		Set("batch_type", string(b.Type)).
		Set("data", data).
		Set("stale", b.Stale).
		Set("expires_at", b.ExpiresAt.UTC()).
		Set("updated_at", b.UpdatedAt.UTC()).
		Where(entsql.EQ("id", b.ID)).
		Query()

	var res entsql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save batch: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save batch %s: %w", b.ID, ErrNotFound)
	}
	return nil
}

func (r *batchRepo) MarkStale(ctx context.Context, userID, date string) (bool, error) {
	n, err := r.markStale(ctx, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("batch_date", date)))
	return n > 0, err
}

func (r *batchRepo) MarkStaleForDate(ctx context.Context, date string) (int, error) {
	return r.markStale(ctx, entsql.EQ("batch_date", date))
}

func (r *batchRepo) markStale(ctx context.Context, where *entsql.Predicate) (int, error) {
	query, args := builder().Update(DailyBatchesTable.Name).
		Set("stale", true).
		Where(where).
		Query()

	var res entsql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("mark batch stale: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark batch stale: %w", err)
	}
	return int(n), nil
}

func (r *batchRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query, args := builder().Select("id", "expires_at").
		From(entsql.Table(DailyBatchesTable.Name)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("query batch expiry: %w", err)
	}
	// Stored timestamps carry an offset, so expiry is compared in Go.
	var expired []any
	for rows.Next() {
		var (
			id        string
			expiresAt time.Time
		)
		if err := rows.Scan(&id, &expiresAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan batch expiry: %w", err)
		}
		if !now.Before(expiresAt) {
			expired = append(expired, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate batch expiry: %w", err)
	}
	rows.Close()

	if len(expired) == 0 {
		return 0, nil
	}
	query, args = builder().Delete(DailyBatchesTable.Name).
		Where(entsql.In("id", expired...)).
		Query()

	var res entsql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("delete expired batches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired batches: %w", err)
	}
	return int(n), nil
}
