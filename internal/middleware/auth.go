package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=../middleware/mocks_test.go -package=middleware_test

type sessionChecker interface {
	Session(ctx context.Context, token string) (*auth.Session, error)
}

type AuthMiddlewareHandler struct {
	mcpSecret            string
	sessions             sessionChecker
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(
	mcpSecret string,
	sessions sessionChecker,
) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		mcpSecret: mcpSecret,
		sessions:  sessions,
		allowedPaths: map[string]bool{
			"/":                      true,
			"/version":               true,
			"/auth/register":         true,
			"/auth/login":            true,
			"/auth/password/reset":   true,
			"/auth/password/confirm": true,
		},
		allowedPathsPrefixes: []string{
			"/media/",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, PATCH, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			// MCP clients authenticate with a shared secret, not a user session
			if strings.HasPrefix(r.URL.Path, "/mcp") {
				secret := r.Header.Get("X-MCP-Secret")
				if h.mcpSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.mcpSecret)) != 1 {
					reqIp, _ := pkg.ReadUserIP(r)
					log.Warnf("[auth middleware] unauthorized mcp request from %s", reqIp)
					http.Error(w, "no can do", http.StatusUnauthorized)
					span.SetStatus(codes.Error, "mcp-secret-mismatch")
					return
				}
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			token := auth.TokenFromRequest(r)
			if token == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			session, err := h.sessions.Session(ctx, token)
			if err != nil {
				if errors.Is(err, auth.ErrSessionNotFound) {
					log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
					span.SetStatus(codes.Error, "not-logged")
				} else {
					log.Errorf("[failed session check] => %s: %s", r.URL.Path, err)
					span.SetStatus(codes.Error, "check-session-err")
					span.RecordError(err)
				}
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithSession(r.Context(), session)))
		})
	}
}
