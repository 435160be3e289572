package stats

import (
	"time"

	"github.com/2beens/bodyforecast/internal/training"
)

// TrainingSummary is the snapshot of training history stored with a body projection.
type TrainingSummary struct {
	TotalWorkouts          int                `json:"totalWorkouts"`
	LastWeekWorkouts       int                `json:"lastWeekWorkouts"`
	TotalExercises         int                `json:"totalExercises"`
	AvgExercisesPerWorkout float64            `json:"avgExercisesPerWorkout"`
	TotalSets              int                `json:"totalSets"`
	AvgReps                float64            `json:"avgReps"`
	TopMuscleGroups        []MuscleGroupTally `json:"topMuscleGroups"`
}

// DominantMuscleGroup returns the most trained group, nil without history.
func (s TrainingSummary) DominantMuscleGroup() *MuscleGroupTally {
	if len(s.TopMuscleGroups) == 0 {
		return nil
	}
	return &s.TopMuscleGroups[0]
}

func Summarize(sessions []training.WorkoutSession, now time.Time) TrainingSummary {
	summary := TrainingSummary{
		TotalWorkouts:    len(sessions),
		LastWeekWorkouts: WeeklyCounts(sessions, now, 1)[0],
	}
	for _, s := range sessions {
		summary.TotalExercises += len(s.Exercises)
	}
	if summary.TotalWorkouts > 0 {
		summary.AvgExercisesPerWorkout = float64(summary.TotalExercises) / float64(summary.TotalWorkouts)
	}

	totals := OverallTotals(sessions)
	summary.TotalSets = totals.TotalSets
	if totals.TotalSets > 0 {
		summary.AvgReps = float64(totals.TotalReps) / float64(totals.TotalSets)
	}

	summary.TopMuscleGroups = MuscleGroupTallies(sessions)
	if len(summary.TopMuscleGroups) > 3 {
		summary.TopMuscleGroups = summary.TopMuscleGroups[:3]
	}
	return summary
}
