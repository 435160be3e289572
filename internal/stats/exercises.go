package stats

import (
	"math"
	"sort"

	"github.com/2beens/bodyforecast/internal/training"
)

type ExerciseStat struct {
	Name      string `json:"name"`
	TotalSets int    `json:"totalSets"`
	TotalReps int    `json:"totalReps"`
	AvgReps   int    `json:"avgReps"`
}

// ExerciseStats aggregates sets and reps per distinct exercise name, in the
// order names are first seen walking the sessions newest first.
func ExerciseStats(sessions []training.WorkoutSession) []ExerciseStat {
	byName := map[string]*ExerciseStat{}
	var order []string
	for _, s := range sortedByDateDesc(sessions) {
		for _, ex := range s.Exercises {
			st, ok := byName[ex.Name]
			if !ok {
				st = &ExerciseStat{Name: ex.Name}
				byName[ex.Name] = st
				order = append(order, ex.Name)
			}
			for _, set := range ex.Sets {
				st.TotalSets++
				st.TotalReps += set.Reps
			}
		}
	}

	result := make([]ExerciseStat, 0, len(order))
	for _, name := range order {
		st := byName[name]
		if st.TotalSets > 0 {
			st.AvgReps = int(math.Round(float64(st.TotalReps) / float64(st.TotalSets)))
		}
		result = append(result, *st)
	}
	return result
}

// TopExercises returns at most n exercises with the most sets, ties keep
// their first seen order.
func TopExercises(sessions []training.WorkoutSession, n int) []ExerciseStat {
	all := ExerciseStats(sessions)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TotalSets > all[j].TotalSets
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Totals is the overall number of sets and the mean reps per set rounded
// to the nearest integer, 0 without sets.
type Totals struct {
	TotalSets   int `json:"totalSets"`
	TotalReps   int `json:"totalReps"`
	AverageReps int `json:"averageReps"`
}

func OverallTotals(sessions []training.WorkoutSession) Totals {
	var t Totals
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			for _, set := range ex.Sets {
				t.TotalSets++
				t.TotalReps += set.Reps
			}
		}
	}
	if t.TotalSets > 0 {
		t.AverageReps = int(math.Round(float64(t.TotalReps) / float64(t.TotalSets)))
	}
	return t
}

type MuscleGroupTally struct {
	Group    MuscleGroup `json:"group"`
	Name     string      `json:"name"`
	SetCount int         `json:"setCount"`
}

// MuscleGroupTallies counts sets per muscle group, most trained first.
func MuscleGroupTallies(sessions []training.WorkoutSession) []MuscleGroupTally {
	counts := map[MuscleGroup]int{}
	var order []MuscleGroup
	for _, s := range sortedByDateDesc(sessions) {
		for _, ex := range s.Exercises {
			group := ClassifyMuscleGroup(ex.Name)
			if _, ok := counts[group]; !ok {
				order = append(order, group)
			}
			counts[group] += len(ex.Sets)
		}
	}

	tallies := make([]MuscleGroupTally, 0, len(order))
	for _, g := range order {
		tallies = append(tallies, MuscleGroupTally{
			Group:    g,
			Name:     g.MuscleName(),
			SetCount: counts[g],
		})
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].SetCount > tallies[j].SetCount
	})
	return tallies
}
