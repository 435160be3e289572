package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	log "github.com/sirupsen/logrus"
)

type RegisterRequest struct {
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	DisplayName     string   `json:"displayName"`
	Age             *int     `json:"age"`
	Gender          string   `json:"gender"`
	Height          *float64 `json:"height"`
	Weight          *float64 `json:"weight"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ConfirmResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type SessionResponse struct {
	Token   string   `json:"token"`
	UserID  string   `json:"userId"`
	Account *Account `json:"account,omitempty"`
}

type authService interface {
	Register(ctx context.Context, email, password, displayName string) (*Account, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	CurrentUser(ctx context.Context, session *Session) (*Account, error)
}

// profileCreator stores the user profile document of a freshly registered account.
type profileCreator interface {
	CreateFromRegistration(ctx context.Context, account *Account, req RegisterRequest) error
}

type Handler struct {
	service  authService
	profiles profileCreator
}

func NewHandler(service authService, profiles profileCreator) *Handler {
	return &Handler{
		service:  service,
		profiles: profiles,
	}
}

// TokenFromRequest reads the bearer token of the Authorization header.
func TokenFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword), errors.Is(err, ErrResetTokenInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrSessionNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return false
	}
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	var req RegisterRequest
	if !decodeJSON(r, &req) {
		http.Error(w, MsgRegisterFailed, http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.DisplayName) == "" {
		http.Error(w, MsgRegisterRequiredFields, http.StatusBadRequest)
		return
	}
	if req.Password != req.ConfirmPassword {
		http.Error(w, MsgPasswordMismatch, http.StatusBadRequest)
		return
	}
	if len([]rune(req.Password)) < MinPasswordLength {
		http.Error(w, MsgPasswordTooShort, http.StatusBadRequest)
		return
	}

	account, err := h.service.Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		log.Errorf("register: %s", err)
		http.Error(w, Message(err, MsgRegisterFailed), statusFor(err))
		return
	}

	// the account stays even if the profile document cannot be written
	if err := h.profiles.CreateFromRegistration(ctx, account, req); err != nil {
		log.Errorf("register: create profile for %s: %s", account.ID, err)
		http.Error(w, MsgRegisterFailed, http.StatusInternalServerError)
		return
	}

	session, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.Errorf("register: sign in %s: %s", account.ID, err)
		http.Error(w, Message(err, MsgLoginFailed), statusFor(err))
		return
	}

	pkg.WriteJSON(w, SessionResponse{
		Token:   session.Token,
		UserID:  session.UserID,
		Account: account,
	}, http.StatusCreated)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	var req LoginRequest
	if !decodeJSON(r, &req) {
		http.Error(w, MsgLoginFailed, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		http.Error(w, MsgLoginRequiredFields, http.StatusBadRequest)
		return
	}

	session, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Errorf("login: %s", err)
		} else {
			log.Tracef("login rejected: %s", err)
		}
		http.Error(w, Message(err, MsgLoginFailed), statusFor(err))
		return
	}

	pkg.WriteJSONOK(w, SessionResponse{
		Token:  session.Token,
		UserID: session.UserID,
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	session := SessionFromContext(ctx)
	if session == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	if err := h.service.Logout(ctx, session.Token); err != nil {
		log.Errorf("logout %s: %s", session.UserID, err)
		http.Error(w, "logout failed", statusFor(err))
		return
	}

	pkg.WriteResponse(w, pkg.ContentType.Text, "logged-out", http.StatusOK)
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.resetPassword")
	defer span.End()

	var req ResetPasswordRequest
	if !decodeJSON(r, &req) || strings.TrimSpace(req.Email) == "" {
		http.Error(w, MsgResetRequiredEmail, http.StatusBadRequest)
		return
	}

	if err := h.service.ResetPassword(ctx, req.Email); err != nil {
		log.Errorf("reset password: %s", err)
		http.Error(w, Message(err, MsgResetFailed), statusFor(err))
		return
	}

	pkg.WriteResponse(w, pkg.ContentType.Text, "reset-requested", http.StatusAccepted)
}

func (h *Handler) HandleConfirmReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.confirmReset")
	defer span.End()

	var req ConfirmResetRequest
	if !decodeJSON(r, &req) || req.Token == "" {
		http.Error(w, MsgResetFailed, http.StatusBadRequest)
		return
	}
	if len([]rune(req.NewPassword)) < MinPasswordLength {
		http.Error(w, MsgPasswordTooShort, http.StatusBadRequest)
		return
	}

	if err := h.service.ConfirmPasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		log.Errorf("confirm password reset: %s", err)
		http.Error(w, Message(err, MsgResetFailed), statusFor(err))
		return
	}

	pkg.WriteResponse(w, pkg.ContentType.Text, "password-updated", http.StatusOK)
}

func (h *Handler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.me")
	defer span.End()

	account, err := h.service.CurrentUser(ctx, SessionFromContext(ctx))
	if err != nil {
		log.Errorf("current user: %s", err)
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}
	if account == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	pkg.WriteJSONOK(w, account)
}
