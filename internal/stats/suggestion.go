package stats

import (
	"math/rand"

	"github.com/2beens/bodyforecast/internal/training"
)

// Picker is the random source used to pick a suggestion, *rand.Rand satisfies it.
type Picker interface {
	Intn(n int) int
}

// GlobalRand picks with the package level math/rand source, safe for concurrent use.
type GlobalRand struct{}

func (GlobalRand) Intn(n int) int {
	return rand.Intn(n)
}

type Suggestion struct {
	MuscleGroup MuscleGroup `json:"muscleGroup"`
	Label       string      `json:"label"`
	Exercises   []string    `json:"exercises"`
}

var suggestedExercises = map[MuscleGroup][]string{
	MuscleGroupChest:     {"ベンチプレス", "ダンベルフライ", "プッシュアップ"},
	MuscleGroupBack:      {"ラットプルダウン", "ローイング", "デッドリフト"},
	MuscleGroupLegs:      {"スクワット", "レッグプレス", "レッグエクステンション"},
	MuscleGroupShoulders: {"ショルダープレス", "サイドレイズ", "フロントレイズ"},
	MuscleGroupArms:      {"バイセップカール", "トライセップエクステンション", "ハンマーカール"},
	MuscleGroupAbs:       {"クランチ", "プランク", "レッグレイズ"},
}

// SuggestNextWorkout picks at random one muscle group not trained in the latest
// session. It returns nil without sessions or when every group was covered.
func SuggestNextWorkout(sessions []training.WorkoutSession, rnd Picker) *Suggestion {
	if len(sessions) == 0 {
		return nil
	}
	latest := sortedByDateDesc(sessions)[0]

	covered := map[MuscleGroup]bool{}
	for _, ex := range latest.Exercises {
		covered[ClassifyMuscleGroup(ex.Name)] = true
	}

	var candidates []MuscleGroup
	for _, g := range SuggestableMuscleGroups {
		if !covered[g] {
			candidates = append(candidates, g)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	group := candidates[rnd.Intn(len(candidates))]
	exercises := make([]string, len(suggestedExercises[group]))
	copy(exercises, suggestedExercises[group])
	return &Suggestion{
		MuscleGroup: group,
		Label:       group.Label(),
		Exercises:   exercises,
	}
}
