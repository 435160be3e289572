package stats

import (
	"sort"

	"github.com/2beens/bodyforecast/internal/training"
)

// sortedByDateDesc returns a copy of sessions, newest first. Equal dates are
// ordered by id so the result does not depend on the input order.
func sortedByDateDesc(sessions []training.WorkoutSession) []training.WorkoutSession {
	sorted := make([]training.WorkoutSession, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

// sortedByDateAsc returns a copy of sessions, oldest first, equal dates ordered by id.
func sortedByDateAsc(sessions []training.WorkoutSession) []training.WorkoutSession {
	sorted := make([]training.WorkoutSession, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
