package goals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/bodyforecast/internal/store"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
)

const (
	UpcomingLimit = 3
	MaxGoals      = 500
)

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

func (r *Repo) Add(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	goal.ID = ""
	id, err := r.docs.Create(ctx, store.CollectionGoals, goal)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	goal.ID = id
	return &goal, nil
}

// List returns all goals of the user, newest first.
func (r *Repo) List(ctx context.Context, userID string) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.query(ctx, store.Query{
		Collection: store.CollectionGoals,
		Filters:    []store.Filter{store.Where("userId", store.OpEq, userID)},
		OrderBy:    &store.OrderBy{Field: "createdAt", Kind: store.KindTime, Desc: true},
		Limit:      MaxGoals,
	})
}

// Upcoming returns the open goals with the nearest target dates. Goals without
// a target date come last.
func (r *Repo) Upcoming(ctx context.Context, userID string) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.upcoming")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.query(ctx, store.Query{
		Collection: store.CollectionGoals,
		Filters: []store.Filter{
			store.Where("userId", store.OpEq, userID),
			store.Where("completed", store.OpEq, false),
		},
		OrderBy: &store.OrderBy{Field: "targetDate", Kind: store.KindTime},
		Limit:   UpcomingLimit,
	})
}

// Update applies a manual progress update to a goal owned by userID.
func (r *Repo) Update(ctx context.Context, userID, goalID string, fields map[string]any) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	goal, err := r.get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotFound
	}

	partial := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		partial[k] = v
	}
	partial["updatedAt"] = r.nowFunc()

	if err := r.docs.Update(ctx, store.CollectionGoals, goalID, partial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("update goal %s: %w", goalID, err)
	}
	return r.get(ctx, goalID)
}

func (r *Repo) get(ctx context.Context, goalID string) (*Goal, error) {
	rec, err := r.docs.Get(ctx, store.CollectionGoals, goalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("get goal %s: %w", goalID, err)
	}
	var goal Goal
	if err := rec.Decode(&goal); err != nil {
		return nil, err
	}
	goal.ID = rec.ID
	return &goal, nil
}

func (r *Repo) query(ctx context.Context, q store.Query) ([]Goal, error) {
	records, err := r.docs.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	list := make([]Goal, 0, len(records))
	for _, rec := range records {
		var goal Goal
		if err := rec.Decode(&goal); err != nil {
			return nil, err
		}
		goal.ID = rec.ID
		list = append(list, goal)
	}
	return list, nil
}
