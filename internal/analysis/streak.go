package analysis

import (
	"sort"
	"time"

	"github.com/abhisek/dailydrill/internal/history"
)

// StreakInfo describes consecutive active days.
type StreakInfo struct {
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
	TotalActiveDays  int        `json:"total_active_days"`
}

// dayNumber maps a civil date in loc to a monotonically increasing day
// index, independent of DST transitions.
func dayNumber(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// activeDays returns the set of day numbers with at least one solve.
func activeDays(records []*history.Record, loc *time.Location) map[int64]bool {
	days := make(map[int64]bool)
	for _, r := range records {
		if len(r.Sessions) == 0 {
			if !r.FirstSolvedAt.IsZero() {
				days[dayNumber(r.FirstSolvedAt, loc)] = true
			}
			if !r.LastUpdatedAt.IsZero() {
				days[dayNumber(r.LastUpdatedAt, loc)] = true
			}
			continue
		}
		for _, s := range r.Sessions {
			days[dayNumber(s.SolvedAt, loc)] = true
		}
	}
	return days
}

// computeStreak walks active days. The current streak counts back from
// today; a quiet today does not break it, a quiet yesterday does. Days
// after today are ignored.
func computeStreak(records []*history.Record, now time.Time) StreakInfo {
	loc := now.Location()
	today := dayNumber(now, loc)

	days := activeDays(records, loc)
	var sorted []int64
	for d := range days {
		if d <= today {
			sorted = append(sorted, d)
		}
	}
	if len(sorted) == 0 {
		return StreakInfo{}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	info := StreakInfo{TotalActiveDays: len(sorted)}

	last := sorted[len(sorted)-1]
	lastDate := time.Unix(last*86400, 0).UTC()
	lastDate = time.Date(lastDate.Year(), lastDate.Month(), lastDate.Day(), 0, 0, 0, 0, loc)
	info.LastActivityDate = &lastDate

	run := 1
	info.LongestStreak = 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > info.LongestStreak {
			info.LongestStreak = run
		}
	}

	cursor := today
	if !days[cursor] {
		cursor--
	}
	for days[cursor] {
		info.CurrentStreak++
		cursor--
	}

	return info
}
