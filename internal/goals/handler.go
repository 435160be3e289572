package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=goals_mocks_test.go -package=goals_test

type goalsRepo interface {
	Add(ctx context.Context, goal Goal) (*Goal, error)
	List(ctx context.Context, userID string) ([]Goal, error)
	Upcoming(ctx context.Context, userID string) ([]Goal, error)
	Update(ctx context.Context, userID, goalID string, fields map[string]any) (*Goal, error)
}

const MsgTitleRequired = "目標タイトルは必須項目です"

type Handler struct {
	repo    goalsRepo
	nowFunc func() time.Time
}

func NewHandler(repo goalsRepo) *Handler {
	return &Handler{
		repo:    repo,
		nowFunc: time.Now,
	}
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.add")
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

	var req NewGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("new goal, unmarshal json params: %s", err)
		http.Error(w, "add goal failed", http.StatusBadRequest)
		return
	}

	goal, err := req.ToGoal(session.UserID, h.nowFunc())
	if err != nil {
		http.Error(w, MsgTitleRequired, http.StatusBadRequest)
		return
	}

	added, err := h.repo.Add(ctx, *goal)
	if err != nil {
		log.Errorf("failed to add goal for %s: %s", session.UserID, err)
		http.Error(w, "目標の保存に失敗しました", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	list, err := h.repo.List(ctx, session.UserID)
	if err != nil {
		log.Errorf("list goals for %s: %s", session.UserID, err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, list)
}

func (h *Handler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.upcoming")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	list, err := h.repo.Upcoming(ctx, session.UserID)
	if err != nil {
		log.Errorf("upcoming goals for %s: %s", session.UserID, err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, list)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.update")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	goalID := mux.Vars(r)["id"]
	if goalID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("update goal, unmarshal json params: %s", err)
		http.Error(w, "update goal failed", http.StatusBadRequest)
		return
	}

	fields, err := req.Fields()
	if err != nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	goal, err := h.repo.Update(ctx, session.UserID, goalID, fields)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("update goal %s for %s: %s", goalID, session.UserID, err)
		http.Error(w, "目標の更新に失敗しました", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, goal)
}
