package training

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/telemetry/metrics"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=training_test

type workoutsRepo interface {
	Add(ctx context.Context, session WorkoutSession) (*WorkoutSession, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]WorkoutSession, error)
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 200

	MsgWorkoutIncomplete = "すべての種目と回数を入力してください"
)

type Handler struct {
	repo           workoutsRepo
	metricsManager *metrics.Manager
	nowFunc        func() time.Time
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
		nowFunc:        time.Now,
	}
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req NewWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	workout, err := req.ToSession(session.UserID, h.nowFunc())
	if err != nil {
		if errors.Is(err, ErrInvalidWorkout) {
			http.Error(w, MsgWorkoutIncomplete, http.StatusBadRequest)
			return
		}
		log.Errorf("new workout for %s: %s", session.UserID, err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	added, err := h.repo.Add(ctx, *workout)
	if err != nil {
		log.Errorf("failed to add workout for %s: %s", session.UserID, err)
		http.Error(w, "ワークアウトの保存に失敗しました", http.StatusInternalServerError)
		return
	}

	if h.metricsManager != nil {
		h.metricsManager.CounterWorkoutsSaved.Inc()
	}
	log.Debugf("new workout added for [%s]: %s, %d exercises", session.UserID, added.ID, len(added.Exercises))

	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	limit := DefaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit (has to be a positive number)", http.StatusBadRequest)
			return
		}
		limit = min(parsed, MaxListLimit)
	}

	workouts, err := h.repo.ListRecent(ctx, session.UserID, limit)
	if err != nil {
		log.Errorf("list workouts for %s: %s", session.UserID, err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, workouts)
}
