package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth

const (
	DefaultSessionTTL       = 24 * 7 * time.Hour
	DefaultResetTokenTTL    = time.Hour
	MinPasswordLength       = 6
	tokenLength             = 35
	sessionKeyPrefix        = "bodyforecast-session||"
	userSessionsKeyPrefix   = "bodyforecast-user-sessions||"
	passwordResetKeyPrefix  = "bodyforecast-password-reset||"
	sessionValueSeparator   = "|"
	maxDisplayNameRuneCount = 100
)

type accountsRepo interface {
	Create(ctx context.Context, account Account) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// ResetNotifier delivers password reset tokens to the account owner.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

type Service struct {
	accounts      accountsRepo
	redisClient   *redis.Client
	sessionTTL    time.Duration
	resetTokenTTL time.Duration
	notifier      ResetNotifier
	// injectable for unit tests
	RandStringFunc func(s int) (string, error)
	NowFunc        func() time.Time
}

type NewServiceParams struct {
	Accounts      accountsRepo
	RedisClient   *redis.Client
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	Notifier      ResetNotifier
}

func NewService(params NewServiceParams) *Service {
	if params.SessionTTL <= 0 {
		params.SessionTTL = DefaultSessionTTL
	}
	if params.ResetTokenTTL <= 0 {
		params.ResetTokenTTL = DefaultResetTokenTTL
	}
	if params.Notifier == nil {
		params.Notifier = LogResetNotifier{}
	}
	return &Service{
		accounts:       params.Accounts,
		redisClient:    params.RedisClient,
		sessionTTL:     params.SessionTTL,
		resetTokenTTL:  params.ResetTokenTTL,
		notifier:       params.Notifier,
		RandStringFunc: pkg.GenerateRandomString,
		NowFunc:        time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *Service) Register(ctx context.Context, email, password, displayName string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len([]rune(password)) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	displayName = strings.TrimSpace(displayName)
	if r := []rune(displayName); len(r) > maxDisplayNameRuneCount {
		displayName = string(r[:maxDisplayNameRuneCount])
	}

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, Account{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    s.NowFunc(),
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("auth service: new account registered: %s", account.ID)
	return account, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkg.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.RandStringFunc(tokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	session := &Session{
		Token:     token,
		UserID:    account.ID,
		CreatedAt: s.NowFunc(),
	}
	if err := s.redisClient.Set(ctx, sessionKeyPrefix+token, encodeSession(session), s.sessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	if err := s.redisClient.SAdd(ctx, userSessionsKeyPrefix+account.ID, token).Err(); err != nil {
		return nil, fmt.Errorf("index session: %w", err)
	}

	return session, nil
}

// Session resolves a token to its session, ErrSessionNotFound when unknown or expired.
func (s *Service) Session(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	val, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	session, err := decodeSession(token, val)
	if err != nil {
		return nil, err
	}
	if s.NowFunc().Sub(session.CreatedAt) > s.sessionTTL {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.logout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	session, err := s.Session(ctx, token)
	if err != nil {
		return err
	}

	if err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.redisClient.SRem(ctx, userSessionsKeyPrefix+session.UserID, token).Err(); err != nil {
		return fmt.Errorf("unindex session: %w", err)
	}

	return nil
}

// ResetPassword issues a reset token for the account of email. Unknown emails
// are not reported to the caller.
func (s *Service) ResetPassword(ctx context.Context, email string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.resetPassword")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	email, err = normalizeEmail(email)
	if err != nil {
		return err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			log.Debugf("auth service: password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.RandStringFunc(tokenLength)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	if err := s.redisClient.Set(ctx, passwordResetKeyPrefix+token, account.ID, s.resetTokenTTL).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	return s.notifier.SendPasswordReset(ctx, account.Email, token)
}

// ConfirmPasswordReset sets a new password and signs the account out everywhere.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.confirmPasswordReset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len([]rune(newPassword)) < MinPasswordLength {
		return ErrWeakPassword
	}

	// consumed atomically, a token can be confirmed only once
	userID, err := s.redisClient.GetDel(ctx, passwordResetKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	passwordHash, err := pkg.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePasswordHash(ctx, userID, passwordHash); err != nil {
		return err
	}

	tokens, err := s.redisClient.SMembers(ctx, userSessionsKeyPrefix+userID).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKeyPrefix+t)
	}
	keys = append(keys, userSessionsKeyPrefix+userID)
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}

	return nil
}

// CurrentUser returns the account behind the session, nil for an anonymous request.
func (s *Service) CurrentUser(ctx context.Context, session *Session) (*Account, error) {
	if session == nil {
		return nil, nil
	}
	return s.accounts.GetByID(ctx, session.UserID)
}

func encodeSession(session *Session) string {
	return session.UserID + sessionValueSeparator + strconv.FormatInt(session.CreatedAt.Unix(), 10)
}

func decodeSession(token, val string) (*Session, error) {
	userID, createdAtStr, found := strings.Cut(val, sessionValueSeparator)
	if !found || userID == "" {
		return nil, fmt.Errorf("malformed session value: %q", val)
	}
	createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed session created at: %w", err)
	}
	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}

type LogResetNotifier struct{}

func (LogResetNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	log.Infof("password reset requested for %s", email)
	log.Debugf("password reset token for %s: %s", email, token)
	return nil
}
