package projection

import (
	"context"
	"fmt"

	"github.com/2beens/bodyforecast/internal/store"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
)

const RecentSimulationsLimit = 5

type Repo struct {
	docs store.DocStore
}

func NewRepo(docs store.DocStore) *Repo {
	return &Repo{
		docs: docs,
	}
}

func (r *Repo) Add(ctx context.Context, sim Simulation) (_ *Simulation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.simulations.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sim.ID = ""
	id, err := r.docs.Create(ctx, store.CollectionSimulations, sim)
	if err != nil {
		return nil, fmt.Errorf("create simulation: %w", err)
	}
	sim.ID = id
	return &sim, nil
}

// ListRecent returns the newest simulations of the user, createdAt desc.
func (r *Repo) ListRecent(ctx context.Context, userID string, limit int) (_ []Simulation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.simulations.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	records, err := r.docs.Query(ctx, store.Query{
		Collection: store.CollectionSimulations,
		Filters:    []store.Filter{store.Where("userId", store.OpEq, userID)},
		OrderBy:    &store.OrderBy{Field: "createdAt", Kind: store.KindTime, Desc: true},
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query simulations: %w", err)
	}

	list := make([]Simulation, 0, len(records))
	for _, rec := range records {
		var sim Simulation
		if err := rec.Decode(&sim); err != nil {
			return nil, err
		}
		sim.ID = rec.ID
		list = append(list, sim)
	}
	return list, nil
}

// Latest returns the newest simulation of the user, nil if there is none.
func (r *Repo) Latest(ctx context.Context, userID string) (*Simulation, error) {
	list, err := r.ListRecent(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}
