package training

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidWorkout = errors.New("invalid workout")

// ExerciseSet is a single set of an exercise.
type ExerciseSet struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// ExerciseEntry is one exercise performed during a session. Name is free text.
type ExerciseEntry struct {
	Name string        `json:"name"`
	Sets []ExerciseSet `json:"sets"`
}

// WorkoutSession is immutable once stored.
type WorkoutSession struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Date      time.Time       `json:"date"`
	Exercises []ExerciseEntry `json:"exercises"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SetInput is the client representation of a set, reps are mandatory.
type SetInput struct {
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"weight"`
}

type ExerciseInput struct {
	Name string     `json:"name"`
	Sets []SetInput `json:"sets"`
}

type NewWorkoutRequest struct {
	Date      *time.Time      `json:"date"`
	Exercises []ExerciseInput `json:"exercises"`
	Note      string          `json:"note"`
}

// ToSession validates the request and converts it into a session owned by userID.
// Every exercise needs a name and every set needs reps, a missing weight is 0.
func (r NewWorkoutRequest) ToSession(userID string, now time.Time) (*WorkoutSession, error) {
	if len(r.Exercises) == 0 {
		return nil, ErrInvalidWorkout
	}

	session := &WorkoutSession{
		UserID:    userID,
		Date:      now,
		Note:      strings.TrimSpace(r.Note),
		CreatedAt: now,
		Exercises: make([]ExerciseEntry, 0, len(r.Exercises)),
	}
	if r.Date != nil && !r.Date.IsZero() {
		session.Date = *r.Date
	}

	for _, ex := range r.Exercises {
		name := strings.TrimSpace(ex.Name)
		if name == "" {
			return nil, ErrInvalidWorkout
		}
		entry := ExerciseEntry{
			Name: name,
			Sets: make([]ExerciseSet, 0, len(ex.Sets)),
		}
		for _, s := range ex.Sets {
			if s.Reps == nil {
				return nil, ErrInvalidWorkout
			}
			set := ExerciseSet{Reps: *s.Reps}
			if s.Weight != nil {
				set.Weight = *s.Weight
			}
			if set.Reps < 0 || set.Weight < 0 {
				return nil, ErrInvalidWorkout
			}
			entry.Sets = append(entry.Sets, set)
		}
		session.Exercises = append(session.Exercises, entry)
	}

	return session, nil
}
