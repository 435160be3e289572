package stats

import (
	"sort"
	"time"

	"github.com/2beens/bodyforecast/internal/training"
)

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func newDayKey(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{year: y, month: m, day: d}
}

// ordinal is the number of days since the unix epoch, independent of DST.
func (k dayKey) ordinal() int {
	return int(time.Date(k.year, k.month, k.day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// StreakDays counts the consecutive training days ending today or yesterday.
// Days are calendar days in the location of today.
func StreakDays(sessions []training.WorkoutSession, today time.Time) int {
	if len(sessions) == 0 {
		return 0
	}

	loc := today.Location()
	seen := make(map[int]bool, len(sessions))
	days := make([]int, 0, len(sessions))
	for _, s := range sessions {
		ord := newDayKey(s.Date.In(loc)).ordinal()
		if seen[ord] {
			continue
		}
		seen[ord] = true
		days = append(days, ord)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))

	diff := newDayKey(today).ordinal() - days[0]
	if diff < 0 {
		diff = -diff
	}
	if diff > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] != 1 {
			break
		}
		streak++
	}
	return streak
}
