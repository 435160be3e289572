package insights

import (
	"context"
	"net/http"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	log "github.com/sirupsen/logrus"
)

type dashboardProvider interface {
	Dashboard(ctx context.Context, userID string) *Dashboard
}

type progressProvider interface {
	Progress(ctx context.Context, userID string) (*Progress, error)
}

type Handler struct {
	dashboard dashboardProvider
	progress  progressProvider
}

func NewHandler(dashboard dashboardProvider, progress progressProvider) *Handler {
	return &Handler{
		dashboard: dashboard,
		progress:  progress,
	}
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.insights.dashboard")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteJSONOK(w, h.dashboard.Dashboard(ctx, session.UserID))
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.insights.progress")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	progress, err := h.progress.Progress(ctx, session.UserID)
	if err != nil {
		log.Errorf("progress for %s: %s", session.UserID, err)
		http.Error(w, "failed to get progress", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, progress)
}
