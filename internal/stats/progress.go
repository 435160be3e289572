package stats

import (
	"time"

	"github.com/2beens/bodyforecast/internal/training"
)

// DefaultTrackedExercises are charted on the progress screen.
var DefaultTrackedExercises = []string{"ベンチプレス", "スクワット", "デッドリフト"}

type ProgressPoint struct {
	Date      time.Time `json:"date"`
	MaxWeight float64   `json:"maxWeight"`
}

// ExerciseProgress builds, per tracked exercise, the heaviest set of every
// session containing it, oldest first. Entries without any weight are skipped.
// Sessions sharing a date are ordered by id.
func ExerciseProgress(sessions []training.WorkoutSession, tracked []string) map[string][]ProgressPoint {
	progress := make(map[string][]ProgressPoint, len(tracked))
	for _, name := range tracked {
		progress[name] = []ProgressPoint{}
	}

	for _, s := range sortedByDateAsc(sessions) {
		for _, ex := range s.Exercises {
			series, ok := progress[ex.Name]
			if !ok {
				continue
			}
			maxWeight := 0.0
			for _, set := range ex.Sets {
				if set.Weight > maxWeight {
					maxWeight = set.Weight
				}
			}
			if maxWeight == 0 {
				continue
			}
			progress[ex.Name] = append(series, ProgressPoint{Date: s.Date, MaxWeight: maxWeight})
		}
	}

	return progress
}
