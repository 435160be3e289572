package measurements

import (
	"context"
	"fmt"

	"github.com/2beens/bodyforecast/internal/store"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
)

const MaxHistory = 1000

type Repo struct {
	docs         store.DocStore
	historyLimit int
}

func NewRepo(docs store.DocStore) *Repo {
	return &Repo{
		docs:         docs,
		historyLimit: MaxHistory,
	}
}

func (r *Repo) Add(ctx context.Context, m BodyMeasurement) (_ *BodyMeasurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	m.ID = ""
	id, err := r.docs.Create(ctx, store.CollectionMeasurements, m)
	if err != nil {
		return nil, fmt.Errorf("create measurement: %w", err)
	}
	m.ID = id
	return &m, nil
}

// List returns the newest measurements of the user, at most MaxHistory,
// ascending by date for charting.
func (r *Repo) List(ctx context.Context, userID string) (_ []BodyMeasurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	records, err := r.docs.Query(ctx, store.Query{
		Collection: store.CollectionMeasurements,
		Filters:    []store.Filter{store.Where("userId", store.OpEq, userID)},
		OrderBy:    &store.OrderBy{Field: "date", Kind: store.KindTime, Desc: true},
		Limit:      r.historyLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}

	list := make([]BodyMeasurement, len(records))
	for i, rec := range records {
		var m BodyMeasurement
		if err := rec.Decode(&m); err != nil {
			return nil, err
		}
		m.ID = rec.ID
		// newest first from the store, oldest first for the chart
		list[len(records)-1-i] = m
	}
	return list, nil
}
