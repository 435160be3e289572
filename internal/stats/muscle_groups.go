package stats

import "strings"

type MuscleGroup string

const (
	MuscleGroupChest     MuscleGroup = "chest"
	MuscleGroupBack      MuscleGroup = "back"
	MuscleGroupLegs      MuscleGroup = "legs"
	MuscleGroupShoulders MuscleGroup = "shoulders"
	MuscleGroupArms      MuscleGroup = "arms"
	MuscleGroupAbs       MuscleGroup = "abs"
	MuscleGroupOther     MuscleGroup = "other"
)

// SuggestableMuscleGroups is the universe the next workout is picked from, in order.
var SuggestableMuscleGroups = []MuscleGroup{
	MuscleGroupChest,
	MuscleGroupBack,
	MuscleGroupLegs,
	MuscleGroupShoulders,
	MuscleGroupArms,
	MuscleGroupAbs,
}

var muscleGroupLabels = map[MuscleGroup]string{
	MuscleGroupChest:     "胸",
	MuscleGroupBack:      "背中",
	MuscleGroupLegs:      "脚",
	MuscleGroupShoulders: "肩",
	MuscleGroupArms:      "腕",
	MuscleGroupAbs:       "腹筋",
	MuscleGroupOther:     "その他",
}

var muscleNames = map[MuscleGroup]string{
	MuscleGroupChest:     "胸筋",
	MuscleGroupBack:      "背筋",
	MuscleGroupLegs:      "脚筋",
	MuscleGroupShoulders: "肩筋",
	MuscleGroupArms:      "腕筋",
	MuscleGroupAbs:       "腹筋",
	MuscleGroupOther:     "その他",
}

// Label is the short display name of the group.
func (g MuscleGroup) Label() string {
	if l, ok := muscleGroupLabels[g]; ok {
		return l
	}
	return string(g)
}

// MuscleName names the muscle itself, used when describing training focus.
func (g MuscleGroup) MuscleName() string {
	if n, ok := muscleNames[g]; ok {
		return n
	}
	return string(g)
}

type MuscleKeywords struct {
	Group    MuscleGroup
	Keywords []string
}

// DefaultMuscleKeywords is checked in order, the first group with a keyword
// contained in the exercise name wins.
var DefaultMuscleKeywords = []MuscleKeywords{
	{Group: MuscleGroupChest, Keywords: []string{"ベンチ", "プッシュ"}},
	{Group: MuscleGroupLegs, Keywords: []string{"スクワット", "レッグ"}},
	{Group: MuscleGroupBack, Keywords: []string{"デッド", "ロー"}},
	{Group: MuscleGroupArms, Keywords: []string{"カール", "アーム"}},
	{Group: MuscleGroupShoulders, Keywords: []string{"ショルダー", "プレス"}},
	{Group: MuscleGroupAbs, Keywords: []string{"アブ", "クランチ"}},
}

// ClassifyMuscleGroup maps a free text exercise name to a muscle group using
// DefaultMuscleKeywords. Matching is case-sensitive substring containment.
func ClassifyMuscleGroup(exerciseName string) MuscleGroup {
	return ClassifyMuscleGroupWith(DefaultMuscleKeywords, exerciseName)
}

func ClassifyMuscleGroupWith(table []MuscleKeywords, exerciseName string) MuscleGroup {
	for _, mk := range table {
		for _, kw := range mk.Keywords {
			if strings.Contains(exerciseName, kw) {
				return mk.Group
			}
		}
	}
	return MuscleGroupOther
}
