// Package engine exposes the daily recommendation operations on top of
// the stores: batch lifecycle, completion tracking, profile updates and
// weight adaptation.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/dailydrill/internal/adaptive"
	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/batch"
	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/history"
	"github.com/abhisek/dailydrill/internal/logger"
	"github.com/abhisek/dailydrill/internal/profile"
	"github.com/abhisek/dailydrill/internal/recommend"
	"github.com/abhisek/dailydrill/internal/store"
)

// Options wires a Service.
type Options struct {
	Questions store.QuestionRepo
	History   store.HistoryRepo
	Profiles  store.ProfileRepo
	Batches   store.BatchRepo
	Events    store.EventRepo

	Logger *logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// Location decides calendar days and batch expiry. Defaults to
	// time.Local.
	Location *time.Location

	Batch        batch.Config
	Recommend    recommend.Config
	Adaptive     adaptive.Config
	AnalyzerMode analysis.Mode
}

// Service implements the engine operations. Same-user calls are expected
// to be serialized by the caller.
type Service struct {
	questions store.QuestionRepo
	history   store.HistoryRepo
	profiles  store.ProfileRepo
	batches   store.BatchRepo
	events    store.EventRepo

	log        *logger.Logger
	clock      func() time.Time
	loc        *time.Location
	batchCfg   batch.Config
	recCfg     recommend.Config
	mode       analysis.Mode
	controller *adaptive.Controller

	mu    sync.Mutex
	index *catalog.Index
}

// NewService creates a Service from opts.
func NewService(opts Options) *Service {
	s := &Service{
		questions:  opts.Questions,
		history:    opts.History,
		profiles:   opts.Profiles,
		batches:    opts.Batches,
		events:     opts.Events,
		log:        opts.Logger,
		clock:      opts.Now,
		loc:        opts.Location,
		batchCfg:   opts.Batch,
		recCfg:     opts.Recommend,
		mode:       analysis.New(opts.AnalyzerMode).Mode(),
		controller: adaptive.New(opts.Adaptive),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// BatchInfo describes the batch behind a response.
type BatchInfo struct {
	ID            string            `json:"id"`
	Date          string            `json:"date"`
	Type          batch.Type        `json:"batch_type"`
	RefreshCount  int               `json:"refresh_count"`
	LastRefreshAt *time.Time        `json:"last_refresh_at,omitempty"`
	GeneratedAt   time.Time         `json:"generated_at"`
	ExpiresAt     time.Time         `json:"expires_at"`
	Stale         bool              `json:"stale"`
	Metadata      batch.Metadata    `json:"metadata"`
	Eligibility   batch.Eligibility `json:"refresh"`
}

// DailyRecommendations is the response of GetDailyRecommendations.
type DailyRecommendations struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Completed       []batch.Completion         `json:"questions_completed"`
	Analysis        *analysis.Analysis         `json:"analysis"`
	Progress        batch.Progress             `json:"progress"`
	Batch           BatchInfo                  `json:"batch_info"`
}

// CompletionResult is the response of MarkCompleted.
type CompletionResult struct {
	Progress    batch.Progress    `json:"progress"`
	CanRefresh  bool              `json:"can_refresh"`
	Eligibility batch.Eligibility `json:"refresh"`
}

// RefreshResult is the response of ReplaceCompleted and ForceRefresh.
type RefreshResult struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Completed       []batch.Completion         `json:"questions_completed"`
	Progress        batch.Progress             `json:"progress"`
	Batch           BatchInfo                  `json:"batch_info"`
	// Replaced counts newly generated recommendations.
	Replaced int `json:"replaced"`
}

func (s *Service) now() time.Time {
	return s.clock().In(s.loc)
}

func validateUser(op, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid(op, "user id is required")
	}
	return nil
}

func validateTimeSpent(op string, timeSpent *float64) error {
	if timeSpent != nil && *timeSpent < 0 {
		return invalid(op, "time spent must not be negative, got %v", *timeSpent)
	}
	return nil
}

// GetDailyRecommendations returns today's batch, creating it on first
// request. An existing batch is regenerated when forceRefresh is set or
// when the refresh eligibility check allows it. A count of zero uses the
// configured batch size.
func (s *Service) GetDailyRecommendations(ctx context.Context, userID string, count int, forceRefresh bool) (*DailyRecommendations, error) {
	const op = "get daily recommendations"
	if err := validateUser(op, userID); err != nil {
		return nil, err
	}
	if count < 0 || (s.recCfg.MaxCount > 0 && count > s.recCfg.MaxCount) {
		return nil, invalid(op, "count must be between 1 and %d, got %d", s.recCfg.MaxCount, count)
	}

	now := s.now()
	b, err := s.batches.Get(ctx, userID, batch.DateKey(now))
	if err != nil {
		return nil, unavailable(op, err)
	}

	switch {
	case b == nil:
		if b, err = s.createBatch(ctx, op, userID, count, now); err != nil {
			return nil, err
		}
	case forceRefresh:
		if err := s.fullRefresh(ctx, op, b, count, now); err != nil {
			return nil, err
		}
	default:
		if s.batchCfg.ShouldRefresh(b, now).Allowed {
			if err := s.fullRefresh(ctx, op, b, count, now); err != nil {
				return nil, err
			}
		}
	}

	return &DailyRecommendations{
		Recommendations: b.Recommendations,
		Completed:       b.Completed,
		Analysis:        b.Analysis,
		Progress:        b.Progress(),
		Batch:           s.batchInfo(b, now),
	}, nil
}

// MarkCompleted records a completion in today's batch. Marking the same
// question again replaces the earlier completion. Questions that were
// never part of the batch are NotFound.
func (s *Service) MarkCompleted(ctx context.Context, userID, questionID string, timeSpent *float64, success bool) (*CompletionResult, error) {
	const op = "mark completed"
	if err := validateUser(op, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(questionID) == "" {
		return nil, invalid(op, "question id is required")
	}
	if err := validateTimeSpent(op, timeSpent); err != nil {
		return nil, err
	}

	now := s.now()
	b, err := s.todaysBatch(ctx, op, userID, now)
	if err != nil {
		return nil, err
	}
	if !b.Contains(questionID) && !b.IsCompleted(questionID) {
		return nil, notFound(op, "question %s is not in today's batch", questionID)
	}

	if err := s.complete(ctx, op, b, batch.Completion{
		QuestionID:  questionID,
		CompletedAt: now,
		TimeSpent:   timeSpent,
		Success:     success,
	}); err != nil {
		return nil, err
	}

	e := s.batchCfg.ShouldRefresh(b, now)
	return &CompletionResult{
		Progress:    b.Progress(),
		CanRefresh:  e.Allowed,
		Eligibility: e,
	}, nil
}

// ReplaceCompleted swaps the completed recommendations of today's batch
// for new ones and leaves the rest untouched.
func (s *Service) ReplaceCompleted(ctx context.Context, userID string) (*RefreshResult, error) {
	const op = "replace completed"
	if err := validateUser(op, userID); err != nil {
		return nil, err
	}

	now := s.now()
	b, err := s.todaysBatch(ctx, op, userID, now)
	if err != nil {
		return nil, err
	}

	replaced := 0
	if b.Progress().Completed > 0 {
		st, err := s.loadState(ctx, op, userID, s.mode, now)
		if err != nil {
			return nil, err
		}
		replaced = s.manager(st.index).SelectiveRefresh(b, st.inputs(userID, 0, now))
		if err := s.batches.Save(ctx, b); err != nil {
			return nil, unavailable(op, err)
		}

		s.log.Info("batch selectively refreshed",
			"user_id", userID, "batch_id", b.ID,
			"kept", b.Metadata.CarriedOver, "replaced", replaced)
		if err := s.appendEvent(ctx, op, userID, b.ID, store.EventSelectiveRefresh, b.Metadata, now); err != nil {
			return nil, err
		}
	}

	return &RefreshResult{
		Recommendations: b.Recommendations,
		Completed:       b.Completed,
		Progress:        b.Progress(),
		Batch:           s.batchInfo(b, now),
		Replaced:        replaced,
	}, nil
}

// ForceRefresh regenerates today's batch if the refresh rules allow it
// and returns *RefreshDeniedError otherwise.
func (s *Service) ForceRefresh(ctx context.Context, userID string) (*RefreshResult, error) {
	const op = "force refresh"
	if err := validateUser(op, userID); err != nil {
		return nil, err
	}

	now := s.now()
	b, err := s.todaysBatch(ctx, op, userID, now)
	if err != nil {
		return nil, err
	}

	e := s.batchCfg.ShouldRefresh(b, now)
	if !e.Allowed {
		s.log.Info("refresh denied",
			"user_id", userID, "batch_id", b.ID,
			"reasons", e.Reasons, "next_refresh_available", e.NextRefreshAvailable)
		return nil, &RefreshDeniedError{Eligibility: e}
	}
	if err := s.fullRefresh(ctx, op, b, 0, now); err != nil {
		return nil, err
	}

	return &RefreshResult{
		Recommendations: b.Recommendations,
		Completed:       b.Completed,
		Progress:        b.Progress(),
		Batch:           s.batchInfo(b, now),
		Replaced:        b.Metadata.Replaced,
	}, nil
}

// MarkStale flags today's batch so the next read may regenerate it.
func (s *Service) MarkStale(ctx context.Context, userID string) error {
	const op = "mark stale"
	if err := validateUser(op, userID); err != nil {
		return err
	}

	now := s.now()
	date := batch.DateKey(now)
	ok, err := s.batches.MarkStale(ctx, userID, date)
	if err != nil {
		return unavailable(op, err)
	}
	if !ok {
		return notFound(op, "no batch for user %s on %s", userID, date)
	}

	s.log.Info("batch marked stale", "user_id", userID, "batch_date", date)
	return s.appendEvent(ctx, op, userID, "", store.EventBatchStale, map[string]string{"batch_date": date}, now)
}

// SweepExpired deletes batches past their expiry and returns how many
// were removed.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	const op = "sweep expired"
	n, err := s.batches.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, unavailable(op, err)
	}
	s.log.Info("expired batches swept", "deleted", n)
	return n, nil
}

func (s *Service) todaysBatch(ctx context.Context, op, userID string, now time.Time) (*batch.Batch, error) {
	date := batch.DateKey(now)
	b, err := s.batches.Get(ctx, userID, date)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if b == nil {
		return nil, notFound(op, "no batch for user %s on %s", userID, date)
	}
	return b, nil
}

func (s *Service) createBatch(ctx context.Context, op, userID string, count int, now time.Time) (*batch.Batch, error) {
	st, err := s.loadState(ctx, op, userID, s.mode, now)
	if err != nil {
		return nil, err
	}

	b := s.manager(st.index).Create(st.inputs(userID, count, now))
	created, err := s.batches.Create(ctx, b)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if !created {
		// Another request created today's batch first.
		existing, err := s.batches.Get(ctx, userID, b.Date)
		if err != nil {
			return nil, unavailable(op, err)
		}
		if existing == nil {
			return nil, unavailable(op, errors.New("batch missing after create conflict"))
		}
		return existing, nil
	}

	s.log.Info("batch created",
		"user_id", userID, "batch_id", b.ID,
		"count", len(b.Recommendations), "user_level", st.analysis.UserLevel)
	detail := map[string]any{"batch_date": b.Date, "count": len(b.Recommendations)}
	if err := s.appendEvent(ctx, op, userID, b.ID, store.EventBatchCreated, detail, now); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) fullRefresh(ctx context.Context, op string, b *batch.Batch, count int, now time.Time) error {
	st, err := s.loadState(ctx, op, b.UserID, s.mode, now)
	if err != nil {
		return err
	}

	s.manager(st.index).FullRefresh(b, st.inputs(b.UserID, count, now))
	if err := s.batches.Save(ctx, b); err != nil {
		return unavailable(op, err)
	}

	s.log.Info("batch refreshed",
		"user_id", b.UserID, "batch_id", b.ID, "refresh_count", b.RefreshCount,
		"carried_over", b.Metadata.CarriedOver, "replaced", b.Metadata.Replaced)
	detail := map[string]any{
		"refresh_count": b.RefreshCount,
		"carried_over":  b.Metadata.CarriedOver,
		"replaced":      b.Metadata.Replaced,
	}
	return s.appendEvent(ctx, op, b.UserID, b.ID, store.EventBatchRefreshed, detail, now)
}

func (s *Service) complete(ctx context.Context, op string, b *batch.Batch, c batch.Completion) error {
	b.MarkCompleted(c)
	if err := s.batches.Save(ctx, b); err != nil {
		return unavailable(op, err)
	}

	p := b.Progress()
	s.log.Info("question completed",
		"user_id", b.UserID, "batch_id", b.ID, "question_id", c.QuestionID,
		"completed", p.Completed, "total", p.Total)
	detail := map[string]any{"question_id": c.QuestionID, "success": c.Success}
	return s.appendEvent(ctx, op, b.UserID, b.ID, store.EventQuestionComplete, detail, c.CompletedAt)
}

func (s *Service) manager(idx *catalog.Index) *batch.Manager {
	return batch.NewManager(recommend.NewGenerator(idx, s.recCfg), s.batchCfg)
}

func (s *Service) batchInfo(b *batch.Batch, now time.Time) BatchInfo {
	return BatchInfo{
		ID:            b.ID,
		Date:          b.Date,
		Type:          b.Type,
		RefreshCount:  b.RefreshCount,
		LastRefreshAt: b.LastRefreshAt,
		GeneratedAt:   b.GeneratedAt,
		ExpiresAt:     b.ExpiresAt,
		Stale:         b.Stale,
		Metadata:      b.Metadata,
		Eligibility:   s.batchCfg.ShouldRefresh(b, now),
	}
}

func (s *Service) appendEvent(ctx context.Context, op, userID, batchID, kind string, detail any, at time.Time) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("%s: marshal %s event: %w", op, kind, err)
	}
	e := &store.BatchEvent{
		Timestamp: at,
		UserID:    userID,
		BatchID:   batchID,
		Kind:      kind,
		Detail:    raw,
	}
	if err := s.events.Append(ctx, e); err != nil {
		return unavailable(op, err)
	}
	return nil
}

// catalog returns the cached question index, loading it on first use.
func (s *Service) catalog(ctx context.Context) (*catalog.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		return s.index, nil
	}
	qs, err := s.questions.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s.index = catalog.NewIndex(qs)
	return s.index, nil
}

func (s *Service) invalidateCatalog() {
	s.mu.Lock()
	s.index = nil
	s.mu.Unlock()
}

// learnerState is everything a generation pass reads.
type learnerState struct {
	index    *catalog.Index
	records  []*history.Record
	solved   map[string]bool
	profile  *profile.Profile
	analysis *analysis.Analysis
}

func (st *learnerState) inputs(userID string, count int, now time.Time) batch.Inputs {
	return batch.Inputs{
		UserID:   userID,
		Analysis: st.analysis,
		Weights:  st.profile.EffectiveWeights(),
		Solved:   st.solved,
		Count:    count,
		Now:      now,
	}
}

func (s *Service) loadState(ctx context.Context, op, userID string, mode analysis.Mode, now time.Time) (*learnerState, error) {
	idx, err := s.catalog(ctx)
	if err != nil {
		return nil, unavailable(op, err)
	}
	records, err := s.history.FindByUser(ctx, userID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	solved, err := s.history.DistinctSolvedQuestionIDs(ctx, userID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	p, err := s.ensureProfile(ctx, op, userID, records, now)
	if err != nil {
		return nil, err
	}

	a := analysis.New(mode).Analyze(analysis.Input{
		UserID:            userID,
		Records:           records,
		CatalogTopics:     len(idx.DistinctTopics()),
		TopicTotals:       idx.CountPerTopic(),
		SufficientData:    p.Adaptation.SufficientData,
		Weights:           p.EffectiveWeights(),
		RecentSuccessRate: p.RecentPerformance.RecentSuccessRate,
	}, now)

	return &learnerState{
		index:    idx,
		records:  records,
		solved:   solved,
		profile:  p,
		analysis: a,
	}, nil
}
