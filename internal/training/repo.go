package training

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/bodyforecast/internal/store"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
)

// MaxHistory caps the number of sessions loaded for full history aggregations.
const MaxHistory = 1000

type Repo struct {
	docs store.DocStore
}

func NewRepo(docs store.DocStore) *Repo {
	return &Repo{
		docs: docs,
	}
}

func (r *Repo) Add(ctx context.Context, session WorkoutSession) (_ *WorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	session.ID = ""
	id, err := r.docs.Create(ctx, store.CollectionWorkouts, session)
	if err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	session.ID = id
	return &session, nil
}

// ListRecent returns the newest sessions of the user, date desc.
func (r *Repo) ListRecent(ctx context.Context, userID string, limit int) (_ []WorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list-recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.list(ctx, store.Query{
		Collection: store.CollectionWorkouts,
		Filters:    []store.Filter{store.Where("userId", store.OpEq, userID)},
		OrderBy:    &store.OrderBy{Field: "date", Kind: store.KindTime, Desc: true},
		Limit:      limit,
	})
}

// ListAll returns up to MaxHistory sessions of the user, date desc.
func (r *Repo) ListAll(ctx context.Context, userID string) ([]WorkoutSession, error) {
	return r.ListRecent(ctx, userID, MaxHistory)
}

// ListSince returns sessions dated at or after since, date desc.
func (r *Repo) ListSince(ctx context.Context, userID string, since time.Time) (_ []WorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list-since")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.list(ctx, store.Query{
		Collection: store.CollectionWorkouts,
		Filters: []store.Filter{
			store.Where("userId", store.OpEq, userID),
			store.Where("date", store.OpGte, since),
		},
		OrderBy: &store.OrderBy{Field: "date", Kind: store.KindTime, Desc: true},
		Limit:   MaxHistory,
	})
}

func (r *Repo) list(ctx context.Context, q store.Query) ([]WorkoutSession, error) {
	records, err := r.docs.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}

	sessions := make([]WorkoutSession, 0, len(records))
	for _, rec := range records {
		var s WorkoutSession
		if err := rec.Decode(&s); err != nil {
			return nil, err
		}
		s.ID = rec.ID
		sessions = append(sessions, s)
	}
	return sessions, nil
}
