package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/bodyforecast/internal/goals"
	"github.com/2beens/bodyforecast/internal/measurements"
	"github.com/2beens/bodyforecast/internal/stats"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/internal/training"
)

const TopExercisesCount = 3

type workoutHistory interface {
	ListAll(ctx context.Context, userID string) ([]training.WorkoutSession, error)
}

type measurementHistory interface {
	List(ctx context.Context, userID string) ([]measurements.BodyMeasurement, error)
}

type goalLister interface {
	List(ctx context.Context, userID string) ([]goals.Goal, error)
}

// BodyPoint is one measurement of the body chart, ascending by date.
type BodyPoint struct {
	Date              time.Time `json:"date"`
	Weight            *float64  `json:"weight,omitempty"`
	BodyFatPercentage *float64  `json:"bodyFatPercentage,omitempty"`
}

type Progress struct {
	WeeklyCounts     []int                            `json:"weeklyCounts"`
	Totals           stats.Totals                     `json:"totals"`
	TopExercises     []stats.ExerciseStat             `json:"topExercises"`
	ExerciseProgress map[string][]stats.ProgressPoint `json:"exerciseProgress"`
	Body             []BodyPoint                      `json:"body"`
	Goals            []goals.Goal                     `json:"goals"`
}

type ProgressService struct {
	workouts     workoutHistory
	measurements measurementHistory
	goals        goalLister
	tracked      []string
	nowFunc      func() time.Time
}

func NewProgressService(
	workoutsRepo workoutHistory,
	measurementsRepo measurementHistory,
	goalsRepo goalLister,
) *ProgressService {
	return &ProgressService{
		workouts:     workoutsRepo,
		measurements: measurementsRepo,
		goals:        goalsRepo,
		tracked:      stats.DefaultTrackedExercises,
		nowFunc:      time.Now,
	}
}

func (s *ProgressService) Progress(ctx context.Context, userID string) (_ *Progress, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.insights.progress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions, err := s.workouts.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}
	body, err := s.measurements.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load measurements: %w", err)
	}
	userGoals, err := s.goals.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}

	progress := &Progress{
		WeeklyCounts:     stats.WeeklyCounts(sessions, s.nowFunc(), stats.DefaultWeekCount),
		Totals:           stats.OverallTotals(sessions),
		TopExercises:     stats.TopExercises(sessions, TopExercisesCount),
		ExerciseProgress: stats.ExerciseProgress(sessions, s.tracked),
		Body:             make([]BodyPoint, 0, len(body)),
		Goals:            userGoals,
	}
	if progress.Goals == nil {
		progress.Goals = []goals.Goal{}
	}
	for _, m := range body {
		progress.Body = append(progress.Body, BodyPoint{
			Date:              m.Date,
			Weight:            m.Weight,
			BodyFatPercentage: m.BodyFatPercentage,
		})
	}
	return progress, nil
}
