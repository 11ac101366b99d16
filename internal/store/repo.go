package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhisek/dailydrill/internal/batch"
	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/history"
	"github.com/abhisek/dailydrill/internal/profile"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// QuestionRepo manages the question catalog.
type QuestionRepo interface {
	// Upsert inserts or replaces questions by ID and returns how many
	// were written.
	Upsert(ctx context.Context, qs []catalog.Question) (int, error)

	// All returns every question in catalog order.
	All(ctx context.Context) ([]catalog.Question, error)
}

// HistoryRepo manages solve records and their session log.
type HistoryRepo interface {
	// FindByUser returns every record for a user with sessions attached
	// in chronological order.
	FindByUser(ctx context.Context, userID string) ([]*history.Record, error)

	// Get returns one record, or nil if the user never attempted it.
	Get(ctx context.Context, userID, questionID string) (*history.Record, error)

	// Save writes the record aggregates and appends s to the session log
	// when non-nil. Both happen in one transaction.
	Save(ctx context.Context, r *history.Record, s *history.Session) error

	// DistinctSolvedQuestionIDs returns the question IDs with a record.
	DistinctSolvedQuestionIDs(ctx context.Context, userID string) (map[string]bool, error)
}

// ProfileRepo manages user profiles.
type ProfileRepo interface {
	// Get returns the profile, or nil if none exists.
	Get(ctx context.Context, userID string) (*profile.Profile, error)

	// Save inserts or replaces the profile.
	Save(ctx context.Context, p *profile.Profile) error
}

// BatchRepo manages daily batches. A user has at most one batch per date.
type BatchRepo interface {
	// Get returns the user's batch for date, or nil if none exists.
	Get(ctx context.Context, userID, date string) (*batch.Batch, error)

	// Create inserts b unless the user already has a batch for its date.
	// It reports whether b was inserted.
	Create(ctx context.Context, b *batch.Batch) (bool, error)

	// Save overwrites an existing batch.
	Save(ctx context.Context, b *batch.Batch) error

	// MarkStale flags the user's batch for date. It reports whether a
	// batch existed.
	MarkStale(ctx context.Context, userID, date string) (bool, error)

	// MarkStaleForDate flags every batch for date and returns the count.
	MarkStaleForDate(ctx context.Context, date string) (int, error)

	// DeleteExpired removes batches whose expiry is at or before now and
	// returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Event kinds recorded in the batch lifecycle log.
const (
	EventBatchCreated     = "batch_created"
	EventBatchRefreshed   = "batch_refreshed"
	EventSelectiveRefresh = "selective_refresh"
	EventQuestionComplete = "question_completed"
	EventBatchStale       = "batch_stale"
	EventWeightsAdjusted  = "weights_adjusted"
	EventSolveRecorded    = "solve_recorded"
)

// BatchEvent is one entry in the append-only lifecycle log.
type BatchEvent struct {
	ID        string
	Sequence  int64
	Timestamp time.Time
	UserID    string
	BatchID   string
	Kind      string
	Detail    json.RawMessage
}

// EventRepo provides append and query access to lifecycle events.
type EventRepo interface {
	// Append records e, assigning its ID and sequence number. A zero
	// timestamp is set to the current time.
	Append(ctx context.Context, e *BatchEvent) error

	// Query returns a user's events, newest first.
	Query(ctx context.Context, userID string, opts QueryOpts) ([]BatchEvent, error)
}

// ErrNotFound is returned by writes that target a missing row. Lookups
// that may legitimately miss return nil instead.
var ErrNotFound = errors.New("not found")
