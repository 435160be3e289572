package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/media"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

type profilesRepo interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, fields map[string]any) error
	UpdatePhotoURL(ctx context.Context, userID, photoURL string) error
}

// accountNamer keeps the account display name in sync with the profile.
type accountNamer interface {
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

const photoFormField = "photo"

type PhotoResponse struct {
	PhotoURL string `json:"photoURL"`
}

type Handler struct {
	repo           profilesRepo
	accounts       accountNamer
	uploader       media.Uploader
	maxUploadBytes int64
	nowFunc        func() time.Time
}

func NewHandler(
	repo profilesRepo,
	accounts accountNamer,
	uploader media.Uploader,
	maxUploadBytes int64,
) *Handler {
	return &Handler{
		repo:           repo,
		accounts:       accounts,
		uploader:       uploader,
		maxUploadBytes: maxUploadBytes,
		nowFunc:        time.Now,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.get")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	profile, err := h.repo.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		log.Errorf("get profile %s: %s", session.UserID, err)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, profile)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.update")
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

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("update profile, unmarshal json params: %s", err)
		http.Error(w, "update profile failed", http.StatusBadRequest)
		return
	}

	fields, err := req.Fields()
	if err != nil {
		http.Error(w, "プロフィールの入力内容が正しくありません", http.StatusBadRequest)
		return
	}
	if len(fields) == 0 {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	if err := h.repo.Update(ctx, session.UserID, fields); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		log.Errorf("update profile %s: %s", session.UserID, err)
		http.Error(w, "プロフィールの更新に失敗しました", http.StatusInternalServerError)
		return
	}

	if name, ok := fields["displayName"].(string); ok && h.accounts != nil {
		// separate write, the profile document stays updated when this fails
		if err := h.accounts.UpdateDisplayName(ctx, session.UserID, name); err != nil {
			log.Errorf("sync account display name %s: %s", session.UserID, err)
		}
	}

	profile, err := h.repo.Get(ctx, session.UserID)
	if err != nil {
		log.Errorf("get updated profile %s: %s", session.UserID, err)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, profile)
}

// HandleUploadPhoto stores the multipart "photo" file and records its URL on the
// profile. The upload is not rolled back when the profile update fails.
func (h *Handler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.photo")
	defer span.End()

	session := auth.SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	data, err := media.ReadMultipartFile(w, r, photoFormField, h.maxUploadBytes)
	if err != nil {
		log.Errorf("profile photo upload %s: %s", session.UserID, err)
		http.Error(w, "invalid photo upload", http.StatusBadRequest)
		return
	}

	path := media.ProfilePhotoPath(session.UserID, h.nowFunc().UnixMilli())
	photoURL, err := h.uploader.Upload(ctx, data, path)
	if err != nil {
		log.Errorf("upload profile photo %s: %s", session.UserID, err)
		http.Error(w, "写真のアップロードに失敗しました", http.StatusInternalServerError)
		return
	}

	if err := h.repo.UpdatePhotoURL(ctx, session.UserID, photoURL); err != nil {
		log.Errorf("store profile photo url %s: %s", session.UserID, err)
		http.Error(w, "プロフィールの更新に失敗しました", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, PhotoResponse{PhotoURL: photoURL})
}
