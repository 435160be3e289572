package stats

import (
	"time"

	"github.com/2beens/bodyforecast/internal/training"
)

const (
	DefaultWeekCount = 4
	week             = 7 * 24 * time.Hour
)

// WeeklyCounts buckets sessions into rolling 7 day windows ending at now.
// Index 0 is the oldest window. Sessions dated after now are not counted.
func WeeklyCounts(sessions []training.WorkoutSession, now time.Time, weekCount int) []int {
	if weekCount <= 0 {
		weekCount = DefaultWeekCount
	}

	counts := make([]int, weekCount)
	for _, s := range sessions {
		idx := weekIndex(now.Sub(s.Date))
		if idx >= 0 && idx < weekCount {
			counts[weekCount-1-idx]++
		}
	}
	return counts
}

// weekIndex is floor(d / week), negative durations round towards -inf.
func weekIndex(d time.Duration) int {
	idx := int(d / week)
	if d < 0 && d%week != 0 {
		idx--
	}
	return idx
}

// CountSince counts the sessions dated at or after since.
func CountSince(sessions []training.WorkoutSession, since time.Time) int {
	count := 0
	for _, s := range sessions {
		if !s.Date.Before(since) {
			count++
		}
	}
	return count
}

// StartOfWeek is the local midnight of the Sunday starting the week of t.
func StartOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
