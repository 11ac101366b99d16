package batch

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/recommend"
	"github.com/abhisek/dailydrill/internal/strategy"
)

// Config holds the refresh thresholds.
type Config struct {
	// MinCompleted completions make a batch refreshable.
	MinCompleted int `yaml:"min_completed"`
	// StaleAfter is the batch age at which it becomes refreshable.
	StaleAfter time.Duration `yaml:"stale_after"`
	// Cooldown blocks a refresh this soon after the previous one unless
	// every recommendation is completed.
	Cooldown time.Duration `yaml:"cooldown"`
	// TargetCount is the batch size used when a request gives none.
	TargetCount int `yaml:"target_count"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinCompleted: 2,
		StaleAfter:   6 * time.Hour,
		Cooldown:     time.Hour,
		TargetCount:  5,
	}
}

// Generator produces recommendations. *recommend.Generator satisfies it.
type Generator interface {
	Generate(req recommend.Request) []recommend.Recommendation
}

// Inputs is the learner state a batch is built from.
type Inputs struct {
	UserID   string
	Analysis *analysis.Analysis
	Weights  strategy.Weights
	// Solved holds the learner's solved question IDs.
	Solved map[string]bool
	// Count is the batch size; zero uses Config.TargetCount.
	Count int
	Now   time.Time
}

// Conditions are the individual refresh triggers.
type Conditions struct {
	EnoughCompleted bool `json:"enough_completed"`
	Aged            bool `json:"aged"`
	AllCompleted    bool `json:"all_completed"`
	Stale           bool `json:"stale"`
	CooldownActive  bool `json:"cooldown_active"`
}

// Eligibility is the outcome of a refresh check.
type Eligibility struct {
	Allowed              bool       `json:"allowed"`
	Reasons              []string   `json:"reasons"`
	Conditions           Conditions `json:"conditions"`
	NextRefreshAvailable time.Time  `json:"next_refresh_available"`
}

// Manager applies lifecycle transitions to batches. It never touches
// storage; callers load and save.
type Manager struct {
	gen Generator
	cfg Config
}

// NewManager creates a manager.
func NewManager(gen Generator, cfg Config) *Manager {
	return &Manager{gen: gen, cfg: cfg}
}

// Config returns the manager's thresholds.
func (m *Manager) Config() Config {
	return m.cfg
}

func (m *Manager) count(in Inputs) int {
	if in.Count > 0 {
		return in.Count
	}
	return m.cfg.TargetCount
}

// Create builds today's batch from scratch.
func (m *Manager) Create(in Inputs) *Batch {
	count := m.count(in)
	recs := m.gen.Generate(recommend.Request{
		Analysis: in.Analysis,
		Weights:  in.Weights,
		Count:    count,
		Solved:   in.Solved,
		Now:      in.Now,
	})

	return &Batch{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Date:            DateKey(in.Now),
		Recommendations: recs,
		Analysis:        in.Analysis,
		Completed:       []Completion{},
		TargetCount:     count,
		Type:            TypeDaily,
		GeneratedAt:     in.Now,
		ExpiresAt:       ExpiryFor(in.Now),
		CreatedAt:       in.Now,
		UpdatedAt:       in.Now,
	}
}

// ShouldRefresh evaluates the refresh triggers for b at now.
func (m *Manager) ShouldRefresh(b *Batch, now time.Time) Eligibility {
	return m.cfg.ShouldRefresh(b, now)
}

// ShouldRefresh evaluates the refresh triggers for b at now. Refresh is
// allowed when any trigger holds and the cooldown has passed; finishing
// every recommendation lifts the cooldown.
func (cfg Config) ShouldRefresh(b *Batch, now time.Time) Eligibility {
	p := b.Progress()
	c := Conditions{
		EnoughCompleted: p.Completed >= cfg.MinCompleted,
		Aged:            now.Sub(b.GeneratedAt) >= cfg.StaleAfter,
		AllCompleted:    p.IsComplete,
		Stale:           b.Stale,
	}
	if b.LastRefreshAt != nil && now.Sub(*b.LastRefreshAt) < cfg.Cooldown {
		c.CooldownActive = true
	}

	e := Eligibility{
		Conditions:           c,
		Reasons:              []string{},
		NextRefreshAvailable: now,
	}
	triggered := c.EnoughCompleted || c.Aged || c.AllCompleted || c.Stale
	e.Allowed = triggered && (!c.CooldownActive || c.AllCompleted)

	if c.EnoughCompleted {
		e.Reasons = append(e.Reasons, fmt.Sprintf("%d of %d questions completed", p.Completed, p.Total))
	}
	if c.Aged {
		e.Reasons = append(e.Reasons, fmt.Sprintf("batch is older than %s", cfg.StaleAfter))
	}
	if c.AllCompleted {
		e.Reasons = append(e.Reasons, "all questions completed")
	}
	if c.Stale {
		e.Reasons = append(e.Reasons, "batch marked stale")
	}
	if !triggered {
		e.Reasons = append(e.Reasons, fmt.Sprintf("complete at least %d questions or wait until the batch is %s old", cfg.MinCompleted, cfg.StaleAfter))
	}
	if c.CooldownActive && !c.AllCompleted {
		e.Reasons = append(e.Reasons, fmt.Sprintf("refreshed less than %s ago", cfg.Cooldown))
		e.NextRefreshAvailable = b.LastRefreshAt.Add(cfg.Cooldown)
	}
	return e
}

// FullRefresh regenerates b against a fresh analysis. Uncompleted items
// that are still relevant are carried over; completed items leave the
// list but keep their completion entries.
func (m *Manager) FullRefresh(b *Batch, in Inputs) {
	count := b.TargetCount
	if in.Count > 0 {
		count = in.Count
	}
	if count <= 0 {
		count = m.cfg.TargetCount
	}

	var kept []recommend.Recommendation
	for _, r := range b.pending() {
		if len(kept) >= count {
			break
		}
		if StillRelevant(r, in.Analysis) {
			kept = append(kept, r.CarryOver())
		}
	}

	fresh := m.gen.Generate(recommend.Request{
		Analysis: in.Analysis,
		Weights:  in.Weights,
		Count:    count - len(kept),
		Solved:   in.Solved,
		InBatch:  b.knownIDs(),
		Now:      in.Now,
	})

	recs := append(kept, fresh...)
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() > recs[j].Priority.Rank()
	})

	now := in.Now
	b.Recommendations = recs
	b.Analysis = in.Analysis
	b.TargetCount = count
	b.Type = TypeRefresh
	b.RefreshCount++
	b.LastRefreshAt = &now
	b.GeneratedAt = now
	b.Stale = false
	b.Metadata.CarriedOver = len(kept)
	b.Metadata.Replaced = len(fresh)
	b.Metadata.Satisfaction = 0
	b.UpdatedAt = now
}

// SelectiveRefresh replaces only the completed recommendations. The
// uncompleted ones are kept verbatim and in place. It returns the
// number of replacements generated.
func (m *Manager) SelectiveRefresh(b *Batch, in Inputs) int {
	pending := b.pending()
	done := len(b.Recommendations) - len(pending)
	if done == 0 {
		return 0
	}

	fresh := m.gen.Generate(recommend.Request{
		Analysis: in.Analysis,
		Weights:  in.Weights,
		Count:    done,
		Solved:   in.Solved,
		InBatch:  b.knownIDs(),
		Now:      in.Now,
	})

	b.Recommendations = append(pending, fresh...)
	b.Analysis = in.Analysis
	b.Type = TypeSelectiveRefresh
	b.Metadata.CarriedOver = len(pending)
	b.Metadata.Replaced = len(fresh)
	b.Metadata.Satisfaction = 0
	b.UpdatedAt = in.Now
	return len(fresh)
}
