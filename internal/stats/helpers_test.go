package stats

import (
	"math/rand"
	"testing"
	"time"

	"github.com/2beens/bodyforecast/internal/training"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, time.March, 13, 15, 0, 0, 0, time.UTC)

func daysAgo(days int) time.Time {
	return testNow.AddDate(0, 0, -days)
}

func session(id string, date time.Time, exercises ...training.ExerciseEntry) training.WorkoutSession {
	return training.WorkoutSession{
		ID:        id,
		UserID:    "user-1",
		Date:      date,
		Exercises: exercises,
		CreatedAt: date,
	}
}

func entry(name string, reps ...int) training.ExerciseEntry {
	e := training.ExerciseEntry{Name: name, Sets: []training.ExerciseSet{}}
	for _, r := range reps {
		e.Sets = append(e.Sets, training.ExerciseSet{Reps: r})
	}
	return e
}

func weighted(name string, weights ...float64) training.ExerciseEntry {
	e := training.ExerciseEntry{Name: name}
	for _, w := range weights {
		e.Sets = append(e.Sets, training.ExerciseSet{Reps: 5, Weight: w})
	}
	return e
}

type fixedPicker struct {
	index int
	gotN  int
}

func (p *fixedPicker) Intn(n int) int {
	p.gotN = n
	if p.index >= n {
		return n - 1
	}
	return p.index
}

// assertOrderIndependent checks that compute gives the same result for
// every shuffle of sessions.
func assertOrderIndependent(t *testing.T, sessions []training.WorkoutSession, compute func([]training.WorkoutSession) any) {
	t.Helper()
	expected := compute(sessions)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]training.WorkoutSession, len(sessions))
		copy(shuffled, sessions)
		rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, expected, compute(shuffled))
	}
}
