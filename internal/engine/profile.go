package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/abhisek/dailydrill/internal/adaptive"
	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/batch"
	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/history"
	"github.com/abhisek/dailydrill/internal/profile"
	"github.com/abhisek/dailydrill/internal/store"
	"github.com/abhisek/dailydrill/internal/strategy"
)

// SessionUpdate is the response of UpdateProfileAfterSession.
type SessionUpdate struct {
	RecentPerformance   profile.RecentPerformance `json:"recent_performance"`
	ShouldAdjustWeights bool                      `json:"should_adjust_weights"`
	Decision            adaptive.Decision         `json:"decision"`
}

// SolveInput describes one solve to record.
type SolveInput struct {
	UserID     string
	QuestionID string
	// SolvedAt defaults to now.
	SolvedAt  time.Time
	TimeSpent *float64
	Success   bool
	// Strategy defaults to the strategy that put the question in today's
	// batch, if any.
	Strategy strategy.Name
}

// SolveResult is the response of RecordSolve.
type SolveResult struct {
	Record  *history.Record `json:"record"`
	Session history.Session `json:"session"`
	Profile SessionUpdate   `json:"profile"`
	// Progress is set when the question was part of today's batch.
	Progress *batch.Progress `json:"progress,omitempty"`
}

// Adjustment is the response of AdjustWeights.
type Adjustment struct {
	Adjusted bool              `json:"adjusted"`
	Decision adaptive.Decision `json:"decision"`
	Previous strategy.Weights  `json:"previous"`
	Weights  strategy.Weights  `json:"weights"`
}

// ImportResult is the response of ImportCatalog.
type ImportResult struct {
	Imported     int `json:"imported"`
	StaleBatches int `json:"stale_batches"`
}

// UpdateProfileAfterSession folds one outcome into the learner's rolling
// performance window and reports whether the weights are due for an
// adjustment. Weights are not changed.
func (s *Service) UpdateProfileAfterSession(ctx context.Context, userID, questionID string, success bool, timeSpent *float64, strat strategy.Name) (*SessionUpdate, error) {
	const op = "update profile after session"
	if err := validateUser(op, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(questionID) == "" {
		return nil, invalid(op, "question id is required")
	}
	if err := validateTimeSpent(op, timeSpent); err != nil {
		return nil, err
	}
	if strat != "" {
		if _, err := strategy.Parse(string(strat)); err != nil {
			return nil, invalid(op, "%v", err)
		}
	}

	now := s.now()
	p, err := s.loadProfile(ctx, op, userID, now)
	if err != nil {
		return nil, err
	}
	return s.updateProfile(ctx, op, p, profile.Outcome{
		QuestionID: questionID,
		Success:    success,
		TimeSpent:  timeSpent,
		Strategy:   strat,
		At:         now,
	}, now)
}

func (s *Service) updateProfile(ctx context.Context, op string, p *profile.Profile, o profile.Outcome, now time.Time) (*SessionUpdate, error) {
	p.RecordOutcome(o)
	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, unavailable(op, err)
	}

	d := s.controller.Evaluate(p, now)
	s.log.Debug("profile updated",
		"user_id", p.UserID, "question_id", o.QuestionID,
		"recent_success_rate", p.RecentPerformance.RecentSuccessRate,
		"should_adjust", d.Adjust, "reason", d.Reason)
	return &SessionUpdate{
		RecentPerformance:   p.RecentPerformance,
		ShouldAdjustWeights: d.Adjust,
		Decision:            d,
	}, nil
}

// RecordSolve appends a solve session to the learner's history, updates
// the profile, and marks the question completed in today's batch when it
// is part of it.
func (s *Service) RecordSolve(ctx context.Context, in SolveInput) (*SolveResult, error) {
	const op = "record solve"
	if err := validateUser(op, in.UserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.QuestionID) == "" {
		return nil, invalid(op, "question id is required")
	}
	if err := validateTimeSpent(op, in.TimeSpent); err != nil {
		return nil, err
	}
	if in.Strategy != "" {
		if _, err := strategy.Parse(string(in.Strategy)); err != nil {
			return nil, invalid(op, "%v", err)
		}
	}

	now := s.now()
	solvedAt := now
	if !in.SolvedAt.IsZero() {
		solvedAt = in.SolvedAt.In(s.loc)
	}
	if solvedAt.After(now) {
		return nil, invalid(op, "solve time %s is in the future", solvedAt.Format(time.RFC3339))
	}

	idx, err := s.catalog(ctx)
	if err != nil {
		return nil, unavailable(op, err)
	}
	q, ok := idx.Get(in.QuestionID)
	if !ok {
		return nil, notFound(op, "question %s is not in the catalog", in.QuestionID)
	}

	// The profile is built from history before the new session is
	// written so the solve is counted once.
	p, err := s.loadProfile(ctx, op, in.UserID, now)
	if err != nil {
		return nil, err
	}

	b, err := s.batches.Get(ctx, in.UserID, batch.DateKey(now))
	if err != nil {
		return nil, unavailable(op, err)
	}
	strat := in.Strategy
	if strat == "" && b != nil {
		for _, r := range b.Recommendations {
			if r.QuestionID == q.ID {
				strat = r.Strategy
				break
			}
		}
	}

	rec, err := s.history.Get(ctx, in.UserID, q.ID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if rec == nil {
		rec = history.NewRecord(in.UserID, q)
	}
	session := rec.AddSession(history.Attempt{
		SolvedAt:      solvedAt,
		TimeSpent:     in.TimeSpent,
		Success:       in.Success,
		RecommendedBy: strat,
	})
	if err := s.history.Save(ctx, rec, &session); err != nil {
		return nil, unavailable(op, err)
	}

	s.log.Info("solve recorded",
		"user_id", in.UserID, "question_id", q.ID,
		"success", in.Success, "solve_count", rec.SolveCount, "strategy", strat)
	batchID := ""
	if b != nil {
		batchID = b.ID
	}
	detail := map[string]any{"question_id": q.ID, "success": in.Success, "solve_count": rec.SolveCount}
	if err := s.appendEvent(ctx, op, in.UserID, batchID, store.EventSolveRecorded, detail, now); err != nil {
		return nil, err
	}

	update, err := s.updateProfile(ctx, op, p, profile.Outcome{
		QuestionID: q.ID,
		Success:    in.Success,
		TimeSpent:  in.TimeSpent,
		Strategy:   strat,
		At:         solvedAt,
	}, now)
	if err != nil {
		return nil, err
	}

	res := &SolveResult{Record: rec, Session: session, Profile: *update}
	if b != nil && b.Contains(q.ID) {
		if err := s.complete(ctx, op, b, batch.Completion{
			QuestionID:  q.ID,
			CompletedAt: now,
			TimeSpent:   in.TimeSpent,
			Success:     in.Success,
		}); err != nil {
			return nil, err
		}
		progress := b.Progress()
		res.Progress = &progress
	}
	return res, nil
}

// AdjustWeights applies the weight controller to the learner's profile
// and persists the result when it changed anything.
func (s *Service) AdjustWeights(ctx context.Context, userID string) (*Adjustment, error) {
	const op = "adjust weights"
	if err := validateUser(op, userID); err != nil {
		return nil, err
	}

	now := s.now()
	p, err := s.loadProfile(ctx, op, userID, now)
	if err != nil {
		return nil, err
	}

	d := s.controller.Evaluate(p, now)
	res := &Adjustment{Decision: d, Previous: p.Weights, Weights: p.Weights}
	entry := s.controller.Adjust(p, now)
	if entry == nil {
		s.log.Debug("weights unchanged", "user_id", userID, "reason", d.Reason)
		return res, nil
	}

	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, unavailable(op, err)
	}
	res.Adjusted = true
	res.Weights = p.Weights

	s.log.Info("weights adjusted",
		"user_id", userID, "reason", entry.Reason, "score", entry.PerformanceScore)
	detail := map[string]any{
		"reason":   entry.Reason,
		"score":    entry.PerformanceScore,
		"previous": entry.Previous,
		"weights":  p.Weights,
	}
	if err := s.appendEvent(ctx, op, userID, "", store.EventWeightsAdjusted, detail, now); err != nil {
		return nil, err
	}
	return res, nil
}

// Analyze returns a fresh analysis using mode (the configured mode when
// empty) and caches its headline metrics on the profile.
func (s *Service) Analyze(ctx context.Context, userID string, mode analysis.Mode) (*analysis.Analysis, error) {
	const op = "analyze"
	if err := validateUser(op, userID); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = s.mode
	}
	if _, err := analysis.ParseMode(string(mode)); err != nil {
		return nil, invalid(op, "%v", err)
	}

	now := s.now()
	st, err := s.loadState(ctx, op, userID, mode, now)
	if err != nil {
		return nil, err
	}
	st.profile.RefreshMetrics(st.analysis, now)
	if err := s.profiles.Save(ctx, st.profile); err != nil {
		return nil, unavailable(op, err)
	}
	return st.analysis, nil
}

// Profile returns the learner's profile, creating it from history on
// first access.
func (s *Service) Profile(ctx context.Context, userID string) (*profile.Profile, error) {
	const op = "get profile"
	if err := validateUser(op, userID); err != nil {
		return nil, err
	}
	return s.loadProfile(ctx, op, userID, s.now())
}

// ImportCatalog upserts the questions of f and marks today's batches
// stale so they pick up the new catalog.
func (s *Service) ImportCatalog(ctx context.Context, f *catalog.File) (*ImportResult, error) {
	const op = "import catalog"
	if f == nil || len(f.Questions) == 0 {
		return nil, invalid(op, "catalog file has no questions")
	}

	n, err := s.questions.Upsert(ctx, f.Questions)
	if err != nil {
		return nil, unavailable(op, err)
	}
	s.invalidateCatalog()

	date := batch.DateKey(s.now())
	stale, err := s.batches.MarkStaleForDate(ctx, date)
	if err != nil {
		return nil, unavailable(op, err)
	}

	s.log.Info("catalog imported", "version", f.Version, "questions", n, "stale_batches", stale)
	return &ImportResult{Imported: n, StaleBatches: stale}, nil
}

// Questions returns the catalog questions matching f.
func (s *Service) Questions(ctx context.Context, f catalog.Filter) ([]catalog.Question, error) {
	idx, err := s.catalog(ctx)
	if err != nil {
		return nil, unavailable("list questions", err)
	}
	return idx.Filter(f), nil
}

// Events returns the learner's lifecycle events, newest first.
func (s *Service) Events(ctx context.Context, userID string, limit int) ([]store.BatchEvent, error) {
	const op = "list events"
	if err := validateUser(op, userID); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, invalid(op, "limit must not be negative, got %d", limit)
	}
	evs, err := s.events.Query(ctx, userID, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, unavailable(op, err)
	}
	return evs, nil
}

func (s *Service) loadProfile(ctx context.Context, op, userID string, now time.Time) (*profile.Profile, error) {
	records, err := s.history.FindByUser(ctx, userID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	return s.ensureProfile(ctx, op, userID, records, now)
}

// ensureProfile returns the stored profile or creates one from records.
func (s *Service) ensureProfile(ctx context.Context, op, userID string, records []*history.Record, now time.Time) (*profile.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if p != nil {
		return p, nil
	}

	p = profile.FromHistory(userID, records, now)
	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, unavailable(op, err)
	}
	s.log.Info("profile created",
		"user_id", userID, "total_solves", p.Adaptation.TotalSolves,
		"sufficient_data", p.Adaptation.SufficientData)
	return p, nil
}

// IsRefreshDenied reports whether err is a refused refresh and returns
// its eligibility.
func IsRefreshDenied(err error) (batch.Eligibility, bool) {
	var d *RefreshDeniedError
	if errors.As(err, &d) {
		return d.Eligibility, true
	}
	return batch.Eligibility{}, false
}
