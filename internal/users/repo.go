package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/store"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
)

var ErrProfileNotFound = errors.New("profile not found")

type Repo struct {
	docs    store.DocStore
	nowFunc func() time.Time
}

func NewRepo(docs store.DocStore) *Repo {
	return &Repo{
		docs:    docs,
		nowFunc: time.Now,
	}
}

// CreateFromRegistration stores the profile of a freshly registered account.
func (r *Repo) CreateFromRegistration(ctx context.Context, account *auth.Account, req auth.RegisterRequest) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := r.nowFunc()
	profile := Profile{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Age:         req.Age,
		Gender:      req.Gender,
		Height:      req.Height,
		Weight:      req.Weight,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.docs.Set(ctx, store.CollectionUsers, account.ID, profile); err != nil {
		return fmt.Errorf("set profile %s: %w", account.ID, err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, userID string) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rec, err := r.docs.Get(ctx, store.CollectionUsers, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	var profile Profile
	if err := rec.Decode(&profile); err != nil {
		return nil, err
	}
	profile.ID = rec.ID
	return &profile, nil
}

// Update merges fields into the profile and bumps updatedAt.
func (r *Repo) Update(ctx context.Context, userID string, fields map[string]any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	partial := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		partial[k] = v
	}
	partial["updatedAt"] = r.nowFunc()

	if err := r.docs.Update(ctx, store.CollectionUsers, userID, partial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("update profile %s: %w", userID, err)
	}
	return nil
}

func (r *Repo) UpdateWeight(ctx context.Context, userID string, weight float64) error {
	return r.Update(ctx, userID, map[string]any{"weight": weight})
}

func (r *Repo) UpdatePhotoURL(ctx context.Context, userID, photoURL string) error {
	return r.Update(ctx, userID, map[string]any{"photoURL": photoURL})
}
