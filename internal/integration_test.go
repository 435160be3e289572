//go:build integration_test || all_tests

package internal

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/config"
	"github.com/2beens/bodyforecast/internal/goals"
	"github.com/2beens/bodyforecast/internal/insights"
	"github.com/2beens/bodyforecast/internal/measurements"
	"github.com/2beens/bodyforecast/internal/training"
	"github.com/2beens/bodyforecast/internal/users"
)

const (
	itServerPort = 9100
	itServerHost = "127.0.0.1"
)

var itServerEndpoint = fmt.Sprintf("http://%s:%d", itServerHost, itServerPort)

type IntegrationTestSuite struct {
	suite.Suite

	DB         *sql.DB
	dockerPool *dockertest.Pool
	server     *Server
	teardown   []func()
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.teardown = make([]func(), 0)

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	var err error
	s.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = s.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	redisPort, err := s.redisSetup()
	if err != nil {
		s.cleanup()
		log.Fatalf("failed to setup redis: %s", err)
	}

	pgPort, err := s.postgresSetup()
	if err != nil {
		s.cleanup()
		log.Fatalf("failed to setup postgres: %s", err)
	}

	mediaDir, err := os.MkdirTemp("", "bodyforecast-media")
	if err != nil {
		s.cleanup()
		log.Fatalf("create media dir: %s", err)
	}
	s.teardown = append(s.teardown, func() {
		_ = os.RemoveAll(mediaDir)
	})

	cfg := getIntegrationTestConfig(redisPort, pgPort, mediaDir)
	s.server, err = NewServer(ctx, NewServerParams{
		Config:                  cfg,
		VersionInfo:             "test-version-info",
		MCPSecret:               "test-mcp-secret",
		GeminiAPIKey:            "test",
		HoneycombTracingEnabled: false,
	})
	if err != nil {
		s.cleanup()
		log.Fatalf("new server: %s", err)
	}

	s.server.Serve(cfg.Host, cfg.Port)

	if err := s.dockerPool.Retry(func() error {
		resp, err := http.Get(itServerEndpoint + "/")
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}); err != nil {
		s.cleanup()
		log.Fatalf("server not reachable: %s", err)
	}
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.cleanup()
}

func (s *IntegrationTestSuite) cleanup() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			fmt.Printf(" --> test suite db close error: %s\n", err)
		}
	}
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func getIntegrationTestConfig(redisPort, postgresPort, mediaDir string) *config.Config {
	return &config.Config{
		Host:                       itServerHost,
		Port:                       itServerPort,
		RedisHost:                  "localhost",
		RedisPort:                  redisPort,
		PostgresPort:               postgresPort,
		PostgresHost:               "localhost",
		PostgresDBName:             "bodyforecast",
		PostgresUser:               "postgres",
		PrometheusMetricsHost:      itServerHost,
		PrometheusMetricsPort:      "9101",
		AuthRateLimitAllowedPerMin: 100,
		MediaBackend:               "disk",
		MediaDiskRootPath:          mediaDir,
		MediaPublicBaseURL:         itServerEndpoint,
		MediaMaxUploadBytes:        1 << 20,
		GeminiBaseURL:              "http://127.0.0.1:1",
		GeminiModel:                "gemini-pro",
		ProjectionPlaceholderURL:   "https://example.com/future-body.jpg",
		DashboardWorkoutsLimit:     5,
	}
}

func (s *IntegrationTestSuite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := redisResource.Close(); err != nil {
			fmt.Printf("redis teardown: %s\n", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (s *IntegrationTestSuite) postgresSetup() (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=bodyforecast",
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := pgResource.Close(); err != nil {
			fmt.Printf("postgres teardown: %s\n", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf("postgres://postgres@localhost:%s/bodyforecast?sslmode=disable", pgPort)
	s.DB, err = sql.Open("postgres", dsn)
	if err != nil {
		return "", fmt.Errorf("open db conn: %s", err)
	}

	if err := s.dockerPool.Retry(s.DB.Ping); err != nil {
		return "", fmt.Errorf("ping db: %s", err)
	}

	return pgPort, nil
}

func (s *IntegrationTestSuite) doRequest(method, path, token string, body any) *http.Response {
	t := s.T()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, itServerEndpoint+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (s *IntegrationTestSuite) decode(resp *http.Response, v any) {
	t := s.T()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func (s *IntegrationTestSuite) register(weight float64) auth.SessionResponse {
	t := s.T()
	password := gofakeit.Password(true, true, true, false, false, 10)
	resp := s.doRequest(http.MethodPost, "/auth/register", "", auth.RegisterRequest{
		Email:           strings.ToLower(gofakeit.Email()),
		Password:        password,
		ConfirmPassword: password,
		DisplayName:     gofakeit.FirstName(),
		Weight:          &weight,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session auth.SessionResponse
	s.decode(resp, &session)
	require.NotEmpty(t, session.Token)
	return session
}

func (s *IntegrationTestSuite) TestRegisterLoginLogout() {
	t := s.T()

	email := strings.ToLower(gofakeit.Email())
	resp := s.doRequest(http.MethodPost, "/auth/register", "", auth.RegisterRequest{
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
		DisplayName:     "Taro",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// same email again
	resp = s.doRequest(http.MethodPost, "/auth/register", "", auth.RegisterRequest{
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
		DisplayName:     "Jiro",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = s.doRequest(http.MethodPost, "/auth/login", "", auth.LoginRequest{Email: email, Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = s.doRequest(http.MethodPost, "/auth/login", "", auth.LoginRequest{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session auth.SessionResponse
	s.decode(resp, &session)

	resp = s.doRequest(http.MethodGet, "/auth/me", session.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var account auth.Account
	s.decode(resp, &account)
	assert.Equal(t, email, account.Email)
	assert.Equal(t, "Taro", account.DisplayName)

	resp = s.doRequest(http.MethodPost, "/auth/logout", session.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.doRequest(http.MethodGet, "/auth/me", session.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *IntegrationTestSuite) TestMeasurementSyncsProfileWeight() {
	t := s.T()
	session := s.register(72)

	resp := s.doRequest(http.MethodGet, "/profile", session.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile users.Profile
	s.decode(resp, &profile)
	require.NotNil(t, profile.Weight)
	assert.Equal(t, 72.0, *profile.Weight)

	weight := 70.5
	resp = s.doRequest(http.MethodPost, "/measurements", session.Token, measurements.NewMeasurementRequest{Weight: &weight})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.doRequest(http.MethodGet, "/profile", session.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s.decode(resp, &profile)
	require.NotNil(t, profile.Weight)
	assert.Equal(t, 70.5, *profile.Weight)

	resp = s.doRequest(http.MethodPost, "/measurements", session.Token, measurements.NewMeasurementRequest{Notes: "no weight"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *IntegrationTestSuite) TestGoalsLifecycle() {
	t := s.T()
	session := s.register(65)

	target := 100.0
	targetDate := time.Now().AddDate(0, 3, 0).UTC()
	resp := s.doRequest(http.MethodPost, "/goals", session.Token, goals.NewGoalRequest{
		Title:       "ベンチプレス100kg",
		Category:    "strength",
		TargetValue: &target,
		TargetDate:  &targetDate,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var goal goals.Goal
	s.decode(resp, &goal)
	assert.False(t, goal.Completed)
	require.NotNil(t, goal.CurrentValue)
	assert.Equal(t, 0.0, *goal.CurrentValue)

	// reaching the target does not complete the goal
	current := 100.0
	resp = s.doRequest(http.MethodPatch, "/goals/"+goal.ID, session.Token, goals.UpdateGoalRequest{CurrentValue: &current})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s.decode(resp, &goal)
	assert.False(t, goal.Completed)

	resp = s.doRequest(http.MethodGet, "/goals/upcoming", session.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var upcoming []goals.Goal
	s.decode(resp, &upcoming)
	assert.Len(t, upcoming, 1)

	completed := true
	resp = s.doRequest(http.MethodPatch, "/goals/"+goal.ID, session.Token, goals.UpdateGoalRequest{Completed: &completed})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.doRequest(http.MethodGet, "/goals/upcoming", session.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upcoming = nil
	s.decode(resp, &upcoming)
	assert.Empty(t, upcoming)

	other := s.register(80)
	resp = s.doRequest(http.MethodPatch, "/goals/"+goal.ID, other.Token, goals.UpdateGoalRequest{Completed: &completed})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *IntegrationTestSuite) TestWorkoutsProgressAndDashboard() {
	t := s.T()
	session := s.register(75)

	for i, weight := range []float64{60, 70} {
		reps := 8
		w := weight
		date := time.Now().AddDate(0, 0, -i)
		resp := s.doRequest(http.MethodPost, "/workouts", session.Token, training.NewWorkoutRequest{
			Date: &date,
			Exercises: []training.ExerciseInput{{
				Name: "ベンチプレス",
				Sets: []training.SetInput{{Reps: &reps, Weight: &w}, {Reps: &reps, Weight: &w}},
			}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := s.doRequest(http.MethodGet, "/progress", session.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var progress insights.Progress
	s.decode(resp, &progress)
	assert.Equal(t, 4, progress.Totals.TotalSets)
	assert.Equal(t, 32, progress.Totals.TotalReps)
	require.Len(t, progress.TopExercises, 1)
	assert.Equal(t, "ベンチプレス", progress.TopExercises[0].Name)
	require.Len(t, progress.ExerciseProgress["ベンチプレス"], 2)
	assert.Equal(t, 70.0, progress.ExerciseProgress["ベンチプレス"][0].MaxWeight)
	assert.Equal(t, 60.0, progress.ExerciseProgress["ベンチプレス"][1].MaxWeight)

	resp = s.doRequest(http.MethodGet, "/dashboard", session.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dashboard insights.Dashboard
	s.decode(resp, &dashboard)
	assert.Equal(t, 2, dashboard.TotalWorkouts)
	assert.Equal(t, 2, dashboard.StreakDays)
	assert.Empty(t, dashboard.FailedSections)
	require.NotNil(t, dashboard.Suggestion)
	assert.NotEqual(t, "chest", string(dashboard.Suggestion.MuscleGroup))

	resp = s.doRequest(http.MethodGet, "/simulations/latest", session.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
