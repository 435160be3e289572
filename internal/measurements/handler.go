package measurements

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/telemetry/metrics"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=measurements_mocks_test.go -package=measurements_test

type measurementsRepo interface {
	Add(ctx context.Context, m BodyMeasurement) (*BodyMeasurement, error)
	List(ctx context.Context, userID string) ([]BodyMeasurement, error)
}

type weightUpdater interface {
	UpdateWeight(ctx context.Context, userID string, weight float64) error
}

const MsgWeightRequired = "体重は必須項目です"

type Handler struct {
	repo           measurementsRepo
	profiles       weightUpdater
	metricsManager *metrics.Manager
	nowFunc        func() time.Time
}

func NewHandler(repo measurementsRepo, profiles weightUpdater, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		profiles:       profiles,
		metricsManager: metricsManager,
		nowFunc:        time.Now,
	}
}

// HandleAdd stores a measurement, then copies its weight to the user profile.
// The two writes are independent, a failed profile sync does not undo the measurement.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.add")
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

	var req NewMeasurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("new measurement, unmarshal json params: %s", err)
		http.Error(w, "add measurement failed", http.StatusBadRequest)
		return
	}

	m, err := req.ToMeasurement(session.UserID, h.nowFunc())
	if err != nil {
		if errors.Is(err, ErrWeightRequired) {
			http.Error(w, MsgWeightRequired, http.StatusBadRequest)
			return
		}
		http.Error(w, "体脂肪率が正しくありません", http.StatusBadRequest)
		return
	}

	added, err := h.repo.Add(ctx, *m)
	if err != nil {
		log.Errorf("failed to add measurement for %s: %s", session.UserID, err)
		http.Error(w, "測定値の保存に失敗しました", http.StatusInternalServerError)
		return
	}
	if h.metricsManager != nil {
		h.metricsManager.CounterMeasurementsSaved.Inc()
	}

	if err := h.profiles.UpdateWeight(ctx, session.UserID, *added.Weight); err != nil {
		log.Errorf("sync profile weight for %s: %s", session.UserID, err)
		http.Error(w, "プロフィールの体重更新に失敗しました", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.list")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	list, err := h.repo.List(ctx, session.UserID)
	if err != nil {
		log.Errorf("list measurements for %s: %s", session.UserID, err)
		http.Error(w, "failed to get measurements", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, list)
}
