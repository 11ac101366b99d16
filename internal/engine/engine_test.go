package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/dailydrill/internal/adaptive"
	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/batch"
	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/profile"
	"github.com/abhisek/dailydrill/internal/recommend"
	"github.com/abhisek/dailydrill/internal/store"
	"github.com/abhisek/dailydrill/internal/strategy"
)

const user = "learner-1"

type fixture struct {
	svc   *Service
	store *store.Store
	now   time.Time
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	st, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{store: st, now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	f.svc = NewService(Options{
		Questions:    st.QuestionRepo(),
		History:      st.HistoryRepo(),
		Profiles:     st.ProfileRepo(),
		Batches:      st.BatchRepo(),
		Events:       st.EventRepo(),
		Now:          func() time.Time { return f.now },
		Location:     time.UTC,
		Batch:        batch.DefaultConfig(),
		Recommend:    recommend.DefaultConfig(),
		Adaptive:     adaptive.DefaultConfig(),
		AnalyzerMode: analysis.ModeBreadthAware,
	})

	_, err = f.svc.ImportCatalog(context.Background(), testCatalog())
	require.NoError(t, err)
	return f
}

func testCatalog() *catalog.File {
	topics := []string{"arrays", "graphs", "strings"}
	var qs []catalog.Question
	order := 0
	for _, topic := range topics {
		for i := 1; i <= 4; i++ {
			order++
			qs = append(qs, catalog.Question{
				ID: fmt.Sprintf("%s-e%d", topic, i), Title: fmt.Sprintf("%s easy %d", topic, i),
				Topic: topic, Difficulty: catalog.Easy, Lists: []string{"core"}, Order: order,
			})
		}
		for i := 1; i <= 2; i++ {
			order++
			qs = append(qs, catalog.Question{
				ID: fmt.Sprintf("%s-m%d", topic, i), Title: fmt.Sprintf("%s medium %d", topic, i),
				Topic: topic, Difficulty: catalog.Medium, Lists: []string{"core"}, Order: order,
			})
		}
	}
	return &catalog.File{Version: "v1.0.0", Questions: qs}
}

func recIDs(recs []recommend.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.QuestionID
	}
	return out
}

func eventKinds(t *testing.T, f *fixture) []string {
	t.Helper()
	evs, err := f.svc.Events(context.Background(), user, 0)
	require.NoError(t, err)
	kinds := make([]string, len(evs))
	for i, e := range evs {
		kinds[i] = e.Kind
	}
	return kinds
}

func TestGetDailyRecommendations_NoHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)

	require.NotEmpty(t, got.Recommendations)
	assert.LessOrEqual(t, len(got.Recommendations), 5)
	seen := map[string]bool{}
	for _, r := range got.Recommendations {
		assert.Equal(t, catalog.Easy, r.Difficulty, r.QuestionID)
		assert.False(t, seen[r.QuestionID], "duplicate %s", r.QuestionID)
		seen[r.QuestionID] = true
	}
	assert.Equal(t, analysis.Beginner, got.Analysis.UserLevel)
	assert.False(t, got.Analysis.AdaptiveFeatures.Enabled)
	assert.Equal(t, batch.TypeDaily, got.Batch.Type)
	assert.Equal(t, "2026-03-02", got.Batch.Date)
	assert.Equal(t, time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC), got.Batch.ExpiresAt.UTC())
	assert.False(t, got.Batch.Eligibility.Allowed)
	assert.Equal(t, 0, got.Progress.Completed)

	p, err := f.svc.Profile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, strategy.DefaultWeights(), p.Weights)
}

func TestGetDailyRecommendations_ReusesTodaysBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	f.advance(time.Hour)
	second, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)

	assert.Equal(t, first.Batch.ID, second.Batch.ID)
	assert.Equal(t, recIDs(first.Recommendations), recIDs(second.Recommendations))
	assert.Equal(t, []string{store.EventBatchCreated}, eventKinds(t, f))

	// A new calendar day gets a new batch.
	f.advance(24 * time.Hour)
	third, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	assert.NotEqual(t, first.Batch.ID, third.Batch.ID)
	assert.Equal(t, "2026-03-03", third.Batch.Date)
}

func TestGetDailyRecommendations_Deterministic(t *testing.T) {
	a := newFixture(t)
	b := newFixture(t)
	ctx := context.Background()

	ra, err := a.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	rb, err := b.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	assert.Equal(t, recIDs(ra.Recommendations), recIDs(rb.Recommendations))
}

func TestGetDailyRecommendations_AutoRefreshWhenAllCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	firstIDs := recIDs(got.Recommendations)
	for _, id := range firstIDs {
		f.advance(time.Minute)
		_, err := f.svc.MarkCompleted(ctx, user, id, nil, true)
		require.NoError(t, err)
	}

	f.advance(time.Minute)
	again, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	assert.Equal(t, got.Batch.ID, again.Batch.ID)
	assert.Equal(t, 1, again.Batch.RefreshCount)
	assert.Equal(t, batch.TypeRefresh, again.Batch.Type)
	for _, r := range again.Recommendations {
		assert.NotContains(t, firstIDs, r.QuestionID)
	}
	assert.Len(t, again.Recommendations, 5)
	assert.Equal(t, 0, again.Progress.Completed)
	assert.Contains(t, eventKinds(t, f), store.EventBatchRefreshed)
}

func TestGetDailyRecommendations_AutoRefreshAfterEnoughCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	ids := recIDs(got.Recommendations)

	f.advance(time.Hour)
	for _, id := range ids[:2] {
		_, err := f.svc.MarkCompleted(ctx, user, id, nil, true)
		require.NoError(t, err)
	}

	again, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	assert.Equal(t, got.Batch.ID, again.Batch.ID)
	assert.Equal(t, 1, again.Batch.RefreshCount)
	assert.Equal(t, batch.TypeRefresh, again.Batch.Type)
	for _, r := range again.Recommendations {
		assert.NotContains(t, ids[:2], r.QuestionID)
	}

	// Completed items left the list but may still be marked again.
	_, err = f.svc.MarkCompleted(ctx, user, ids[0], nil, false)
	require.NoError(t, err)
}

func TestGetDailyRecommendations_AutoRefreshWhenAged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)

	f.advance(7 * time.Hour)
	again, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	assert.Equal(t, got.Batch.ID, again.Batch.ID)
	assert.Equal(t, 1, again.Batch.RefreshCount)
	assert.Equal(t, batch.TypeRefresh, again.Batch.Type)
	require.NotNil(t, again.Batch.LastRefreshAt)
	assert.True(t, again.Batch.LastRefreshAt.Equal(f.now))
}

func TestGetDailyRecommendations_ForceRefreshBypassesEligibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, true)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Batch.RefreshCount)
	require.NotNil(t, got.Batch.LastRefreshAt)
	assert.True(t, got.Batch.LastRefreshAt.Equal(f.now))
}

func TestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	neg := -1.0

	tests := []struct {
		name string
		call func() error
	}{
		{"empty user", func() error {
			_, err := f.svc.GetDailyRecommendations(ctx, " ", 5, false)
			return err
		}},
		{"negative count", func() error {
			_, err := f.svc.GetDailyRecommendations(ctx, user, -1, false)
			return err
		}},
		{"count above max", func() error {
			_, err := f.svc.GetDailyRecommendations(ctx, user, 51, false)
			return err
		}},
		{"empty question", func() error {
			_, err := f.svc.MarkCompleted(ctx, user, "", nil, true)
			return err
		}},
		{"negative time spent", func() error {
			_, err := f.svc.MarkCompleted(ctx, user, "arrays-e1", &neg, true)
			return err
		}},
		{"unknown strategy", func() error {
			_, err := f.svc.UpdateProfileAfterSession(ctx, user, "arrays-e1", true, nil, "guesswork")
			return err
		}},
		{"future solve", func() error {
			_, err := f.svc.RecordSolve(ctx, SolveInput{UserID: user, QuestionID: "arrays-e1", SolvedAt: f.now.Add(time.Hour)})
			return err
		}},
		{"unknown analyzer mode", func() error {
			_, err := f.svc.Analyze(ctx, user, "psychic")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
}

func TestNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.MarkCompleted(ctx, user, "arrays-e1", nil, true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.ReplaceCompleted(ctx, user)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.ForceRefresh(ctx, user)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.MarkStale(ctx, user), ErrNotFound)
	_, err = f.svc.RecordSolve(ctx, SolveInput{UserID: user, QuestionID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreFailureIsUnavailable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	_, err := f.svc.GetDailyRecommendations(context.Background(), user, 5, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMarkCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	ids := recIDs(got.Recommendations)
	require.Len(t, ids, 5)

	f.advance(30 * time.Minute)
	spent := 12.5
	res, err := f.svc.MarkCompleted(ctx, user, ids[0], &spent, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.Completed)
	assert.False(t, res.CanRefresh)

	// Marking the same question again does not double count.
	res, err = f.svc.MarkCompleted(ctx, user, ids[0], nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.Completed)

	f.advance(30 * time.Minute)
	res, err = f.svc.MarkCompleted(ctx, user, ids[1], nil, true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Progress.Completed)
	assert.Equal(t, 3, res.Progress.Remaining)
	assert.InDelta(t, 40.0, res.Progress.Percentage, 1e-9)
	assert.False(t, res.Progress.IsComplete)
	assert.True(t, res.CanRefresh)
	assert.True(t, res.Eligibility.Conditions.EnoughCompleted)
}

func TestMarkCompleted_OutsideBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	require.NotContains(t, recIDs(got.Recommendations), "graphs-m2")

	_, err = f.svc.MarkCompleted(ctx, user, "graphs-m2", nil, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	b, err := f.store.BatchRepo().Get(ctx, user, got.Batch.Date)
	require.NoError(t, err)
	assert.Empty(t, b.Completed)
}

func TestReplaceCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	ids := recIDs(got.Recommendations)
	require.Len(t, ids, 5)

	for _, id := range ids[:3] {
		_, err := f.svc.MarkCompleted(ctx, user, id, nil, true)
		require.NoError(t, err)
	}

	res, err := f.svc.ReplaceCompleted(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Replaced)
	assert.Equal(t, batch.TypeSelectiveRefresh, res.Batch.Type)
	assert.Equal(t, 0, res.Batch.RefreshCount)
	require.Len(t, res.Recommendations, 5)
	assert.Equal(t, ids[3:], recIDs(res.Recommendations[:2]))
	for i, r := range res.Recommendations[:2] {
		assert.Equal(t, got.Recommendations[3+i].Strategy, r.Strategy)
		assert.False(t, r.AdaptiveContext.IsCarriedOver)
	}
	for _, r := range res.Recommendations[2:] {
		assert.NotContains(t, ids, r.QuestionID)
	}
	assert.Equal(t, 2, res.Batch.Metadata.CarriedOver)
	assert.Equal(t, 3, res.Batch.Metadata.Replaced)
	assert.Contains(t, eventKinds(t, f), store.EventSelectiveRefresh)
}

func TestReplaceCompleted_NothingCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	res, err := f.svc.ReplaceCompleted(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Replaced)
	assert.Equal(t, recIDs(got.Recommendations), recIDs(res.Recommendations))
	assert.Equal(t, batch.TypeDaily, res.Batch.Type)
}

func TestForceRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)

	_, err = f.svc.ForceRefresh(ctx, user)
	require.Error(t, err)
	e, denied := IsRefreshDenied(err)
	require.True(t, denied)
	assert.False(t, e.Allowed)
	assert.NotEmpty(t, e.Reasons)

	ids := recIDs(got.Recommendations)
	for _, id := range ids[:2] {
		_, err := f.svc.MarkCompleted(ctx, user, id, nil, true)
		require.NoError(t, err)
	}
	f.advance(time.Hour)
	res, err := f.svc.ForceRefresh(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Batch.RefreshCount)
	assert.Equal(t, batch.TypeRefresh, res.Batch.Type)
	for _, r := range res.Recommendations {
		assert.NotContains(t, ids[:2], r.QuestionID)
	}

	// Cooldown applies right after a refresh.
	f.advance(10 * time.Minute)
	_, err = f.svc.ForceRefresh(ctx, user)
	e, denied = IsRefreshDenied(err)
	require.True(t, denied)
	assert.True(t, e.Conditions.CooldownActive)
	assert.True(t, e.NextRefreshAvailable.Equal(f.now.Add(50*time.Minute)))
}

func TestMarkStaleTriggersRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	require.NoError(t, f.svc.MarkStale(ctx, user))

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Batch.RefreshCount)
	assert.False(t, got.Batch.Stale)
	assert.Contains(t, eventKinds(t, f), store.EventBatchStale)
}

func TestImportCatalogMarksTodayStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)

	extra := &catalog.File{Version: "v1.1.0", Questions: []catalog.Question{
		{ID: "trees-e1", Title: "Max Depth", Topic: "trees", Difficulty: catalog.Easy, Lists: []string{"core"}, Order: 100},
	}}
	res, err := f.svc.ImportCatalog(ctx, extra)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.StaleBatches)

	qs, err := f.svc.Questions(ctx, catalog.Filter{Topics: []string{"trees"}})
	require.NoError(t, err)
	require.Len(t, qs, 1)

	_, err = f.svc.ImportCatalog(ctx, &catalog.File{Version: "v1.0.0"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordSolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)
	target := got.Recommendations[0]

	f.advance(2 * time.Hour)
	spent := 20.0
	res, err := f.svc.RecordSolve(ctx, SolveInput{UserID: user, QuestionID: target.QuestionID, TimeSpent: &spent, Success: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Record.SolveCount)
	assert.Equal(t, target.Strategy, res.Session.Context.RecommendedBy)
	require.NotNil(t, res.Progress)
	assert.Equal(t, 1, res.Progress.Completed)
	require.Len(t, res.Profile.RecentPerformance.Outcomes, 1)
	assert.False(t, res.Profile.ShouldAdjustWeights)

	// A second solve of a question outside the batch appends to history only.
	f.advance(time.Hour)
	res, err = f.svc.RecordSolve(ctx, SolveInput{UserID: user, QuestionID: "graphs-m2", Success: false, Strategy: strategy.General})
	require.NoError(t, err)
	assert.Nil(t, res.Progress)

	p, err := f.svc.Profile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Adaptation.TotalSolves)
	assert.InDelta(t, 0.5, p.RecentPerformance.RecentSuccessRate, 1e-9)

	recs, err := f.store.HistoryRepo().FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	kinds := eventKinds(t, f)
	assert.Contains(t, kinds, store.EventSolveRecorded)
	assert.Contains(t, kinds, store.EventQuestionComplete)
}

func TestUpdateProfileAfterSessionKeepsWeights(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := profile.New(user, f.now)
	p.Adaptation.TotalSolves = 30
	p.Adaptation.SufficientData = true
	require.NoError(t, f.store.ProfileRepo().Save(ctx, p))

	var last *SessionUpdate
	for i := 0; i < 4; i++ {
		f.advance(time.Minute)
		u, err := f.svc.UpdateProfileAfterSession(ctx, user, "arrays-e1", false, nil, strategy.WeakArea)
		require.NoError(t, err)
		last = u
	}
	assert.True(t, last.ShouldAdjustWeights)
	assert.Equal(t, adaptive.ReasonPoor, last.Decision.Reason)
	assert.Equal(t, profile.StreakFailure, last.RecentPerformance.Streak.Type)
	assert.Equal(t, 4, last.RecentPerformance.Streak.Count)

	stored, err := f.store.ProfileRepo().Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, strategy.DefaultWeights(), stored.Weights)
	assert.Equal(t, 34, stored.Adaptation.TotalSolves)
}

func TestAdjustWeights(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// New learners never adjust.
	res, err := f.svc.AdjustWeights(ctx, user)
	require.NoError(t, err)
	assert.False(t, res.Adjusted)
	assert.Equal(t, adaptive.ReasonInsufficientData, res.Decision.Reason)

	p, err := f.store.ProfileRepo().Get(ctx, user)
	require.NoError(t, err)
	p.Adaptation.TotalSolves = 25
	p.Adaptation.SufficientData = true
	p.RecentPerformance.RecentSuccessRate = 0.2
	require.NoError(t, f.store.ProfileRepo().Save(ctx, p))

	res, err = f.svc.AdjustWeights(ctx, user)
	require.NoError(t, err)
	require.True(t, res.Adjusted)
	assert.Equal(t, adaptive.ReasonPoor, res.Decision.Reason)
	assert.Equal(t, strategy.DefaultWeights(), res.Previous)
	assert.Greater(t, res.Weights.WeakArea, res.Previous.WeakArea)
	assert.LessOrEqual(t, math.Abs(res.Weights.Sum()-1), 0.001)

	stored, err := f.store.ProfileRepo().Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, res.Weights, stored.Weights)
	require.Len(t, stored.AdjustmentHistory, 1)
	assert.Contains(t, eventKinds(t, f), store.EventWeightsAdjusted)

	// Cooldown blocks an immediate second adjustment.
	f.advance(24 * time.Hour)
	res, err = f.svc.AdjustWeights(ctx, user)
	require.NoError(t, err)
	assert.False(t, res.Adjusted)
	assert.Equal(t, adaptive.ReasonCooldown, res.Decision.Reason)
}

func TestAnalyzeRefreshesProfileMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordSolve(ctx, SolveInput{UserID: user, QuestionID: "arrays-e1", Success: true})
	require.NoError(t, err)

	for _, mode := range []analysis.Mode{"", analysis.ModeSimple} {
		a, err := f.svc.Analyze(ctx, user, mode)
		require.NoError(t, err)
		assert.Equal(t, 1, a.TotalSolved)
		assert.Equal(t, analysis.Beginner, a.UserLevel)
	}

	p, err := f.svc.Profile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Metrics.TotalSolved)
	require.NotNil(t, p.Adaptation.LastAnalysisAt)
	assert.True(t, p.Adaptation.LastAnalysisAt.Equal(f.now))
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetDailyRecommendations(ctx, user, 5, false)
	require.NoError(t, err)

	n, err := f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	f.advance(22 * time.Hour)
	n, err = f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
