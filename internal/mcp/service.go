package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/bodyforecast/internal/measurements"
	"github.com/2beens/bodyforecast/internal/stats"
	"github.com/2beens/bodyforecast/internal/training"
)

// WorkoutsRepo provides the full workout history of a user.
type WorkoutsRepo interface {
	ListAll(ctx context.Context, userID string) ([]training.WorkoutSession, error)
}

// MeasurementsRepo provides the body measurements of a user, oldest first.
type MeasurementsRepo interface {
	List(ctx context.Context, userID string) ([]measurements.BodyMeasurement, error)
}

// statsService is used by Handler, kept as an interface for testability.
type statsService interface {
	Summary(ctx context.Context, userID string) (*stats.TrainingSummary, error)
	WeeklyCounts(ctx context.Context, userID string, weeks int) ([]int, error)
	Streak(ctx context.Context, userID string) (int, error)
	TopExercises(ctx context.Context, userID string, n int) ([]stats.ExerciseStat, error)
	ExerciseProgress(ctx context.Context, userID string, names []string) (map[string][]stats.ProgressPoint, error)
	SuggestNextWorkout(ctx context.Context, userID string) (*stats.Suggestion, error)
	BodyMeasurements(ctx context.Context, userID string) ([]measurements.BodyMeasurement, error)
}

// StatsService computes training statistics for a single user on demand.
type StatsService struct {
	workouts     WorkoutsRepo
	measurements MeasurementsRepo
	rnd          stats.Picker
	nowFunc      func() time.Time
}

func NewStatsService(workoutsRepo WorkoutsRepo, measurementsRepo MeasurementsRepo, rnd stats.Picker) *StatsService {
	return &StatsService{
		workouts:     workoutsRepo,
		measurements: measurementsRepo,
		rnd:          rnd,
		nowFunc:      time.Now,
	}
}

func (s *StatsService) history(ctx context.Context, userID string) ([]training.WorkoutSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	sessions, err := s.workouts.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return sessions, nil
}

func (s *StatsService) Summary(ctx context.Context, userID string) (*stats.TrainingSummary, error) {
	sessions, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := stats.Summarize(sessions, s.nowFunc())
	return &summary, nil
}

// WeeklyCounts returns workouts per week, oldest week first. A non-positive weeks
// falls back to the default of four.
func (s *StatsService) WeeklyCounts(ctx context.Context, userID string, weeks int) ([]int, error) {
	sessions, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	if weeks <= 0 {
		weeks = stats.DefaultWeekCount
	}
	return stats.WeeklyCounts(sessions, s.nowFunc(), weeks), nil
}

func (s *StatsService) Streak(ctx context.Context, userID string) (int, error) {
	sessions, err := s.history(ctx, userID)
	if err != nil {
		return 0, err
	}
	return stats.StreakDays(sessions, s.nowFunc()), nil
}

func (s *StatsService) TopExercises(ctx context.Context, userID string, n int) ([]stats.ExerciseStat, error) {
	sessions, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 3
	}
	return stats.TopExercises(sessions, n), nil
}

// ExerciseProgress returns the max-weight series per exercise name; with no names
// the default tracked lifts are used.
func (s *StatsService) ExerciseProgress(ctx context.Context, userID string, names []string) (map[string][]stats.ProgressPoint, error) {
	sessions, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = stats.DefaultTrackedExercises
	}
	return stats.ExerciseProgress(sessions, names), nil
}

func (s *StatsService) SuggestNextWorkout(ctx context.Context, userID string) (*stats.Suggestion, error) {
	sessions, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	return stats.SuggestNextWorkout(sessions, s.rnd), nil
}

func (s *StatsService) BodyMeasurements(ctx context.Context, userID string) ([]measurements.BodyMeasurement, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	list, err := s.measurements.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	return list, nil
}
