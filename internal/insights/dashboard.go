package insights

import (
	"context"
	"sync"
	"time"

	"github.com/2beens/bodyforecast/internal/goals"
	"github.com/2beens/bodyforecast/internal/projection"
	"github.com/2beens/bodyforecast/internal/stats"
	"github.com/2beens/bodyforecast/internal/telemetry/metrics"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/internal/training"

	log "github.com/sirupsen/logrus"
)

const DefaultDashboardWorkoutsLimit = 5

const (
	slotWorkouts   = "workouts"
	slotGoals      = "goals"
	slotSimulation = "simulation"
)

type recentWorkouts interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]training.WorkoutSession, error)
}

type upcomingGoals interface {
	Upcoming(ctx context.Context, userID string) ([]goals.Goal, error)
}

type latestSimulation interface {
	Latest(ctx context.Context, userID string) (*projection.Simulation, error)
}

// Dashboard is the home screen view. Slots whose fetch failed are left empty
// and named in FailedSections.
type Dashboard struct {
	TotalWorkouts       int                       `json:"totalWorkouts"`
	ThisWeekWorkouts    int                       `json:"thisWeekWorkouts"`
	StreakDays          int                       `json:"streakDays"`
	Suggestion          *stats.Suggestion         `json:"suggestion,omitempty"`
	RecentWorkouts      []training.WorkoutSession `json:"recentWorkouts"`
	UpcomingGoals       []goals.Goal              `json:"upcomingGoals"`
	LatestSimulation    *projection.Simulation    `json:"latestSimulation,omitempty"`
	MotivationalMessage string                    `json:"motivationalMessage"`
	FailedSections      []string                  `json:"failedSections,omitempty"`
}

type DashboardServiceParams struct {
	Workouts      recentWorkouts
	Goals         upcomingGoals
	Simulations   latestSimulation
	Motivation    *MotivationManager
	WorkoutsLimit int
	Metrics       *metrics.Manager
}

type DashboardService struct {
	workouts       recentWorkouts
	goals          upcomingGoals
	simulations    latestSimulation
	motivation     *MotivationManager
	workoutsLimit  int
	metricsManager *metrics.Manager
	picker         stats.Picker
	nowFunc        func() time.Time
}

func NewDashboardService(params DashboardServiceParams) *DashboardService {
	limit := params.WorkoutsLimit
	if limit <= 0 {
		limit = DefaultDashboardWorkoutsLimit
	}
	motivation := params.Motivation
	if motivation == nil {
		motivation = NewDefaultMotivationManager()
	}
	return &DashboardService{
		workouts:       params.Workouts,
		goals:          params.Goals,
		simulations:    params.Simulations,
		motivation:     motivation,
		workoutsLimit:  limit,
		metricsManager: params.Metrics,
		picker:         stats.GlobalRand{},
		nowFunc:        time.Now,
	}
}

// Dashboard fetches recent workouts, upcoming goals and the latest simulation
// concurrently. Each fetch fails on its own and never fails the whole view.
// Totals and the streak are computed over the fetched recent workouts.
func (s *DashboardService) Dashboard(ctx context.Context, userID string) *Dashboard {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.insights.dashboard")
	defer span.End()

	var (
		wg sync.WaitGroup

		workouts    []training.WorkoutSession
		workoutsErr error
		upcoming    []goals.Goal
		goalsErr    error
		latest      *projection.Simulation
		latestErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		workouts, workoutsErr = s.workouts.ListRecent(ctx, userID, s.workoutsLimit)
	}()
	go func() {
		defer wg.Done()
		upcoming, goalsErr = s.goals.Upcoming(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		latest, latestErr = s.simulations.Latest(ctx, userID)
	}()
	wg.Wait()

	now := s.nowFunc()
	dashboard := &Dashboard{
		RecentWorkouts:      []training.WorkoutSession{},
		UpcomingGoals:       []goals.Goal{},
		MotivationalMessage: s.motivation.RandomMessage(),
	}

	if workoutsErr != nil {
		s.slotFailed(dashboard, slotWorkouts, userID, workoutsErr)
	} else if workouts != nil {
		dashboard.RecentWorkouts = workouts
	}
	if goalsErr != nil {
		s.slotFailed(dashboard, slotGoals, userID, goalsErr)
	} else if upcoming != nil {
		dashboard.UpcomingGoals = upcoming
	}
	if latestErr != nil {
		s.slotFailed(dashboard, slotSimulation, userID, latestErr)
	} else {
		dashboard.LatestSimulation = latest
	}

	dashboard.TotalWorkouts = len(dashboard.RecentWorkouts)
	dashboard.ThisWeekWorkouts = stats.CountSince(dashboard.RecentWorkouts, stats.StartOfWeek(now))
	dashboard.StreakDays = stats.StreakDays(dashboard.RecentWorkouts, now)
	dashboard.Suggestion = stats.SuggestNextWorkout(dashboard.RecentWorkouts, s.picker)

	return dashboard
}

func (s *DashboardService) slotFailed(d *Dashboard, slot, userID string, err error) {
	log.Errorf("dashboard [%s] fetch for %s: %s", slot, userID, err)
	if s.metricsManager != nil {
		s.metricsManager.CounterDashboardFetchFailure.WithLabelValues(slot).Inc()
	}
	d.FailedSections = append(d.FailedSections, slot)
}
