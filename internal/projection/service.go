package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/bodyforecast/internal/media"
	"github.com/2beens/bodyforecast/internal/stats"
	"github.com/2beens/bodyforecast/internal/telemetry/metrics"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/internal/training"

	log "github.com/sirupsen/logrus"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type workoutHistory interface {
	ListAll(ctx context.Context, userID string) ([]training.WorkoutSession, error)
}

type simulationsRepo interface {
	Add(ctx context.Context, sim Simulation) (*Simulation, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]Simulation, error)
	Latest(ctx context.Context, userID string) (*Simulation, error)
}

type ServiceParams struct {
	Uploader       media.Uploader
	Generator      Generator
	Workouts       workoutHistory
	Simulations    simulationsRepo
	PlaceholderURL string
	Metrics        *metrics.Manager
}

type Service struct {
	uploader       media.Uploader
	generator      Generator
	workouts       workoutHistory
	simulations    simulationsRepo
	placeholderURL string
	metricsManager *metrics.Manager
	nowFunc        func() time.Time
}

func NewService(params ServiceParams) *Service {
	return &Service{
		uploader:       params.Uploader,
		generator:      params.Generator,
		workouts:       params.Workouts,
		simulations:    params.Simulations,
		placeholderURL: params.PlaceholderURL,
		metricsManager: params.Metrics,
		nowFunc:        time.Now,
	}
}

func (s *Service) countOutcome(outcome string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterProjections.WithLabelValues(outcome).Inc()
	}
}

// Project runs the projection flow: store the current body image, summarize the
// training history, ask the model, and persist the simulation. Earlier steps are
// not undone when a later one fails.
func (s *Service) Project(ctx context.Context, userID string, image []byte) (_ *Simulation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.projection.project")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := s.nowFunc()

	originalURL, err := s.uploader.Upload(ctx, image, media.BodyImagePath(userID, now.UnixMilli()))
	if err != nil {
		s.countOutcome("upload_error")
		return nil, fmt.Errorf("upload current body image: %w", err)
	}

	sessions, err := s.workouts.ListAll(ctx, userID)
	if err != nil {
		s.countOutcome("history_error")
		return nil, fmt.Errorf("load workout history: %w", err)
	}
	summary := stats.Summarize(sessions, now)

	text, err := s.generator.Generate(ctx, BuildPrompt(summary, originalURL))
	if err != nil {
		s.countOutcome("provider_error")
		return nil, fmt.Errorf("generate projection: %w", err)
	}

	sim, err := s.simulations.Add(ctx, Simulation{
		UserID:           userID,
		OriginalImageURL: originalURL,
		ImageURL:         s.placeholderURL,
		ProjectionText:   text,
		WorkoutStats:     summary,
		CreatedAt:        now,
	})
	if err != nil {
		s.countOutcome("store_error")
		return nil, fmt.Errorf("store simulation: %w", err)
	}

	s.countOutcome("ok")
	log.Debugf("new simulation for [%s]: %s (%d workouts)", userID, sim.ID, summary.TotalWorkouts)
	return sim, nil
}

func (s *Service) Recent(ctx context.Context, userID string) ([]Simulation, error) {
	return s.simulations.ListRecent(ctx, userID, RecentSimulationsLimit)
}

func (s *Service) Latest(ctx context.Context, userID string) (*Simulation, error) {
	return s.simulations.Latest(ctx, userID)
}
