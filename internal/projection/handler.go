package projection

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/media"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	log "github.com/sirupsen/logrus"
)

type projector interface {
	Project(ctx context.Context, userID string, image []byte) (*Simulation, error)
	Recent(ctx context.Context, userID string) ([]Simulation, error)
	Latest(ctx context.Context, userID string) (*Simulation, error)
}

const (
	imageFormField = "image"

	MsgImageRequired    = "現在の画像をアップロードしてください"
	MsgGenerationFailed = "画像生成中にエラーが発生しました。もう一度お試しください。"
)

type Handler struct {
	service        projector
	maxUploadBytes int64
}

func NewHandler(service projector, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.simulations.create")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	image, err := media.ReadMultipartFile(w, r, imageFormField, h.maxUploadBytes)
	if err != nil {
		log.Debugf("simulation image upload for %s: %s", session.UserID, err)
		http.Error(w, MsgImageRequired, http.StatusBadRequest)
		return
	}

	sim, err := h.service.Project(ctx, session.UserID, image)
	if err != nil {
		log.Errorf("projection for %s: %s", session.UserID, err)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrProvider) {
			status = http.StatusBadGateway
		}
		http.Error(w, MsgGenerationFailed, status)
		return
	}

	pkg.WriteJSON(w, sim, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.simulations.list")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	list, err := h.service.Recent(ctx, session.UserID)
	if err != nil {
		log.Errorf("list simulations for %s: %s", session.UserID, err)
		http.Error(w, "failed to get simulations", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, list)
}

func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.simulations.latest")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	sim, err := h.service.Latest(ctx, session.UserID)
	if err != nil {
		log.Errorf("latest simulation for %s: %s", session.UserID, err)
		http.Error(w, "failed to get simulation", http.StatusInternalServerError)
		return
	}
	if sim == nil {
		http.Error(w, "no simulations yet", http.StatusNotFound)
		return
	}

	pkg.WriteJSONOK(w, sim)
}
