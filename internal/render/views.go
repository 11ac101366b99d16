package render

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/batch"
	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/engine"
	"github.com/abhisek/dailydrill/internal/profile"
	"github.com/abhisek/dailydrill/internal/recommend"
	"github.com/abhisek/dailydrill/internal/store"
	"github.com/abhisek/dailydrill/internal/strategy"
)

const timeLayout = "2006-01-02 15:04"

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 72

func field(label, value string) string {
	return Label.Render(label) + Body.Render(value)
}

func progressLine(p batch.Progress, width int) string {
	bar := NewProgressBar(fmt.Sprintf("%d/%d done", p.Completed, p.Total), p.Percentage/100, true, width)
	return bar.View()
}

func recommendationTable(recs []recommend.Recommendation, completed []batch.Completion) string {
	done := make(map[string]batch.Completion, len(completed))
	for _, c := range completed {
		done[c.QuestionID] = c
	}

	rows := make([][]string, 0, len(recs))
	for i, r := range recs {
		mark := " "
		if c, ok := done[r.QuestionID]; ok {
			mark = "✓"
			if !c.Success {
				mark = "✗"
			}
		}
		name := r.Title
		if r.AdaptiveContext.IsCarriedOver {
			name += " ↺"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1), mark, r.QuestionID, name, r.Topic,
			string(r.Difficulty), string(r.Strategy), r.Reason,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers("#", "", "ID", "Question", "Topic", "Level", "Strategy", "Why").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || row < 0 || row >= len(recs) {
				return lipgloss.NewStyle().Padding(0, 1).Foreground(Primary).Bold(true)
			}
			r := recs[row]
			switch col {
			case 1:
				return Done.Padding(0, 1)
			case 3:
				return PriorityColor(r.Priority).Padding(0, 1)
			case 5:
				return DifficultyColor(r.Difficulty).Padding(0, 1)
			case 7:
				return Subtitle.Padding(0, 1)
			}
			return Body.Padding(0, 1)
		})
	return t.String()
}

func batchSummary(info engine.BatchInfo) string {
	lines := []string{
		field("Batch", fmt.Sprintf("%s (%s)", info.Date, info.Type)),
		field("Generated", info.GeneratedAt.Local().Format(timeLayout)),
		field("Expires", info.ExpiresAt.Local().Format(timeLayout)),
	}
	if info.RefreshCount > 0 {
		lines = append(lines, field("Refreshes", fmt.Sprintf("%d, %d kept, %d new",
			info.RefreshCount, info.Metadata.CarriedOver, info.Metadata.Replaced)))
	}
	if info.Stale {
		lines = append(lines, Warning.Render("Batch is stale and will be regenerated on the next request."))
	}
	return strings.Join(lines, "\n")
}

// Daily renders today's recommendations.
func Daily(d *engine.DailyRecommendations, width int) string {
	parts := []string{Title.Render("Today's practice")}
	if d.Analysis != nil {
		parts = append(parts, Subtitle.Render(fmt.Sprintf("Level: %s · %d solved · streak %d",
			d.Analysis.UserLevel, d.Analysis.TotalSolved, d.Analysis.Streak.CurrentStreak)))
	}
	if len(d.Recommendations) == 0 {
		parts = append(parts, Hint.Render("No questions to recommend. Import a catalog with `dailydrill catalog import`."))
	} else {
		parts = append(parts, recommendationTable(d.Recommendations, d.Completed))
	}
	parts = append(parts,
		progressLine(d.Progress, width),
		batchSummary(d.Batch),
		Eligibility(d.Batch.Eligibility),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Refresh renders the result of a selective or full refresh.
func Refresh(r *engine.RefreshResult, width int) string {
	heading := fmt.Sprintf("Refreshed: %d new", r.Replaced)
	if r.Replaced == 0 {
		heading = "Nothing to replace"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		Title.Render(heading),
		recommendationTable(r.Recommendations, r.Completed),
		progressLine(r.Progress, width),
		batchSummary(r.Batch),
	)
}

// Completion renders the result of marking a question done.
func Completion(questionID string, r *engine.CompletionResult, width int) string {
	msg := Done.Render("✓ " + questionID + " completed")
	if r.Progress.IsComplete {
		msg += Body.Render("  All done for today!")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		msg,
		progressLine(r.Progress, width),
		Eligibility(r.Eligibility),
	)
}

// Eligibility renders a refresh check.
func Eligibility(e batch.Eligibility) string {
	if e.Allowed {
		return Done.Render("Refresh available") + Subtitle.Render(": "+strings.Join(e.Reasons, "; "))
	}
	s := Hint.Render("Refresh not available: " + strings.Join(e.Reasons, "; "))
	if e.Conditions.CooldownActive {
		s += Hint.Render(" (next at " + e.NextRefreshAvailable.Local().Format("15:04") + ")")
	}
	return s
}

// Solve renders a recorded solve.
func Solve(r *engine.SolveResult) string {
	status := Done.Render("✓ solved")
	if !r.Session.Success {
		status = Failed.Render("✗ attempted")
	}
	lines := []string{
		status + Body.Render(fmt.Sprintf(" %s (%s, %s)", r.Record.Title, r.Record.Topic, r.Record.Difficulty)),
		field("Attempts", fmt.Sprintf("%d", r.Record.SolveCount)),
		field("Recent success", fmt.Sprintf("%.0f%%", r.Profile.RecentPerformance.RecentSuccessRate*100)),
	}
	if r.Progress != nil {
		lines = append(lines, field("Today", fmt.Sprintf("%d/%d done", r.Progress.Completed, r.Progress.Total)))
	}
	if r.Profile.ShouldAdjustWeights {
		lines = append(lines, Warning.Render("Weights are due for adjustment: run `dailydrill profile adjust`."))
	}
	return strings.Join(lines, "\n")
}

func weightLines(w strategy.Weights, width int) []string {
	var lines []string
	for _, n := range strategy.All() {
		bar := NewProgressBar(fmt.Sprintf("%-18s", n), w.Get(n), true, width)
		lines = append(lines, bar.View())
	}
	return lines
}

// Profile renders a learner profile card.
func Profile(p *profile.Profile, width int) string {
	rp := p.RecentPerformance
	lines := []string{
		Title.Render(p.UserID),
		field("Total solves", fmt.Sprintf("%d", p.Adaptation.TotalSolves)),
		field("Adaptive", fmt.Sprintf("%v", p.Adaptation.SufficientData)),
		field("Recent success", fmt.Sprintf("%.0f%% over %d", rp.RecentSuccessRate*100, len(rp.Outcomes))),
	}
	if rp.Streak.Count > 0 {
		lines = append(lines, field("Streak", fmt.Sprintf("%d %s", rp.Streak.Count, rp.Streak.Type)))
	}
	if p.TimePreferences.OptimalTimeOfDay != "" {
		lines = append(lines, field("Best time", string(p.TimePreferences.OptimalTimeOfDay)))
	}
	if p.Metrics.UserLevel != "" {
		lines = append(lines, field("Level", string(p.Metrics.UserLevel)))
	}
	if p.Adaptation.LastWeightAdjustment != nil {
		lines = append(lines, field("Last adjusted", p.Adaptation.LastWeightAdjustment.Local().Format(timeLayout)))
	}
	lines = append(lines, "", Subtitle.Render("Strategy weights"))
	lines = append(lines, weightLines(p.EffectiveWeights(), width-4)...)
	return Card.Render(strings.Join(lines, "\n"))
}

// Adjustment renders the result of a weight adjustment.
func Adjustment(a *engine.Adjustment, width int) string {
	if !a.Adjusted {
		return Hint.Render(fmt.Sprintf("Weights unchanged (%s, recent success %.0f%%).",
			strings.ReplaceAll(a.Decision.Reason, "_", " "), a.Decision.Score*100))
	}
	lines := []string{Done.Render(fmt.Sprintf("Weights adjusted for %s.", strings.ReplaceAll(a.Decision.Reason, "_", " ")))}
	lines = append(lines, weightLines(a.Weights, width)...)
	return strings.Join(lines, "\n")
}

// Analysis renders an analysis snapshot.
func Analysis(a *analysis.Analysis) string {
	lines := []string{
		Title.Render("Analysis") + Subtitle.Render(fmt.Sprintf(" (%s)", a.Mode)),
		field("Level", string(a.UserLevel)),
		field("Solved", fmt.Sprintf("%d (%d attempts)", a.TotalSolved, a.TotalAttempts)),
		field("Last 7 days", fmt.Sprintf("%d", a.RecentActivity)),
		field("Streak", fmt.Sprintf("%d days (best %d)", a.Streak.CurrentStreak, a.Streak.LongestStreak)),
		field("Best time", string(a.OptimalTimeOfDay)),
	}
	if len(a.WeakAreas) > 0 {
		lines = append(lines, field("Weak", strings.Join(a.WeakAreas, ", ")))
	}
	if len(a.StrongAreas) > 0 {
		lines = append(lines, field("Strong", strings.Join(a.StrongAreas, ", ")))
	}
	for _, sq := range a.StrugglingQuestions {
		lines = append(lines, Warning.Render(fmt.Sprintf("Struggling: %s (%s) solved %d times", sq.QuestionID, sq.Topic, sq.SolveCount)))
	}

	if len(a.TopicMastery) > 0 {
		topics := make([]string, 0, len(a.TopicMastery))
		for t := range a.TopicMastery {
			topics = append(topics, t)
		}
		sort.Strings(topics)

		rows := make([][]string, 0, len(topics))
		for _, t := range topics {
			m := a.TopicMastery[t]
			rows = append(rows, []string{
				t, string(m.Level), fmt.Sprintf("%d/%d", m.Progress.Completed, m.Progress.Total),
				fmt.Sprintf("%.0f%%", m.SolveRate*100), fmt.Sprintf("%.1f", m.AvgAttempts),
			})
		}
		lines = append(lines, table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(Border)).
			Headers("Topic", "Mastery", "Solved", "Rate", "Avg tries").
			Rows(rows...).
			String())
	}
	return strings.Join(lines, "\n")
}

// Questions renders catalog questions.
func Questions(qs []catalog.Question) string {
	if len(qs) == 0 {
		return Hint.Render("No questions match.")
	}
	rows := make([][]string, 0, len(qs))
	for _, q := range qs {
		rows = append(rows, []string{q.ID, q.Title, q.Topic, string(q.Difficulty), strings.Join(q.Lists, ",")})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers("ID", "Title", "Topic", "Level", "Lists").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || row < 0 || row >= len(qs) {
				return lipgloss.NewStyle().Padding(0, 1).Foreground(Primary).Bold(true)
			}
			if col == 3 {
				return DifficultyColor(qs[row].Difficulty).Padding(0, 1)
			}
			return Body.Padding(0, 1)
		}).
		String()
}

// Events renders lifecycle events, newest first.
func Events(evs []store.BatchEvent) string {
	if len(evs) == 0 {
		return Hint.Render("No events recorded.")
	}
	var b strings.Builder
	for _, e := range evs {
		fmt.Fprintf(&b, "%-5d  %-16s  %-20s  %s\n",
			e.Sequence, e.Timestamp.Local().Format(timeLayout), e.Kind, string(e.Detail))
	}
	return strings.TrimRight(b.String(), "\n")
}
