// Package adaptive rewrites a learner's strategy weights from observed
// performance, gated by data sufficiency and a cooldown.
package adaptive

import (
	"math"
	"time"

	"github.com/abhisek/dailydrill/internal/profile"
)

// Reasons recorded in the adjustment history and returned by Evaluate.
const (
	ReasonInsufficientData = "insufficient_data"
	ReasonCooldown         = "cooldown"
	ReasonStable           = "stable_performance"
	ReasonPoor             = "poor_performance"
	ReasonGood             = "good_performance"
)

// Config holds the controller thresholds.
type Config struct {
	Cooldown      time.Duration `yaml:"cooldown"`
	PoorThreshold float64       `yaml:"poor_threshold"`
	GoodThreshold float64       `yaml:"good_threshold"`
	// Tolerance is how far the weight sum may drift from 1 before the
	// vector is rescaled.
	Tolerance float64 `yaml:"tolerance"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Cooldown:      7 * 24 * time.Hour,
		PoorThreshold: 0.4,
		GoodThreshold: 0.8,
		Tolerance:     0.001,
	}
}

// Decision is the outcome of evaluating a profile.
type Decision struct {
	Adjust bool    `json:"adjust"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
}

// Controller evaluates and applies weight adjustments.
type Controller struct {
	cfg Config
}

// New creates a controller.
func New(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// Evaluate decides whether p's weights should change at now.
func (c *Controller) Evaluate(p *profile.Profile, now time.Time) Decision {
	score := p.RecentPerformance.RecentSuccessRate
	d := Decision{Score: score}

	switch {
	case !p.Adaptation.SufficientData:
		d.Reason = ReasonInsufficientData
	case p.Adaptation.LastWeightAdjustment != nil && now.Sub(*p.Adaptation.LastWeightAdjustment) < c.cfg.Cooldown:
		d.Reason = ReasonCooldown
	case score < c.cfg.PoorThreshold:
		d.Adjust, d.Reason = true, ReasonPoor
	case score > c.cfg.GoodThreshold:
		d.Adjust, d.Reason = true, ReasonGood
	default:
		d.Reason = ReasonStable
	}
	return d
}

// ShouldAdjust reports whether Adjust would change p at now.
func (c *Controller) ShouldAdjust(p *profile.Profile, now time.Time) bool {
	return c.Evaluate(p, now).Adjust
}

// Adjust applies the performance rule to p when Evaluate allows it. The
// prior weights are appended to the history before mutation. It returns
// the history entry, or nil when nothing changed.
func (c *Controller) Adjust(p *profile.Profile, now time.Time) *profile.WeightAdjustment {
	d := c.Evaluate(p, now)
	if !d.Adjust {
		return nil
	}

	entry := profile.WeightAdjustment{
		Previous:         p.Weights,
		At:               now,
		Reason:           d.Reason,
		PerformanceScore: d.Score,
	}
	p.AdjustmentHistory = append(p.AdjustmentHistory, entry)

	w := p.Weights
	switch d.Reason {
	case ReasonPoor:
		w.WeakArea = math.Min(w.WeakArea+0.1, 0.7)
		w.Progressive = math.Max(w.Progressive-0.1, 0.1)
		w.SpacedRepetition = math.Min(w.SpacedRepetition+0.05, 0.5)
	case ReasonGood:
		w.Progressive = math.Min(w.Progressive+0.1, 0.6)
		w.WeakArea = math.Max(w.WeakArea-0.05, 0.1)
		w.Exploration = math.Min(w.Exploration+0.05, 0.2)
	}
	if math.Abs(w.Sum()-1) > c.cfg.Tolerance {
		w = w.Normalized()
	}

	p.Weights = w
	p.Adaptation.LastWeightAdjustment = &now
	p.UpdatedAt = now
	return &entry
}
