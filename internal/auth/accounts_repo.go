package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Account holds the credentials of a user. Profile data lives in the users collection.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

const accountsSchema = `
CREATE TABLE IF NOT EXISTS account (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	display_name  TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type AccountsRepo struct {
	db *pgxpool.Pool
}

func NewAccountsRepo(db *pgxpool.Pool) *AccountsRepo {
	return &AccountsRepo{
		db: db,
	}
}

func (r *AccountsRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, accountsSchema); err != nil {
		return fmt.Errorf("ensure account schema: %w", err)
	}
	return nil
}

func (r *AccountsRepo) Create(ctx context.Context, account Account) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	account.ID = uuid.NewString()
	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO account (id, email, display_name, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5);`,
		account.ID, account.Email, account.DisplayName, account.PasswordHash, account.CreatedAt,
	); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return &account, nil
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.getByID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *AccountsRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.updatePassword")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `UPDATE account SET password_hash = $2 WHERE id = $1;`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountsRepo) UpdateDisplayName(ctx context.Context, id, displayName string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.updateDisplayName")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `UPDATE account SET display_name = $2 WHERE id = $1;`, id, displayName)
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountsRepo) getOne(ctx context.Context, where string, arg any) (*Account, error) {
	var a Account
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM account `+where+`;`,
		arg,
	).Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.CreatedAt); err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}
