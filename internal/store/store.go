package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	CollectionUsers        = "users"
	CollectionWorkouts     = "workouts"
	CollectionMeasurements = "bodyMeasurements"
	CollectionGoals        = "goals"
	CollectionSimulations  = "simulations"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrUnknownCollection = errors.New("unknown collection")
)

var knownCollections = map[string]bool{
	CollectionUsers:        true,
	CollectionWorkouts:     true,
	CollectionMeasurements: true,
	CollectionGoals:        true,
	CollectionSimulations:  true,
}

type Op string

const (
	OpEq  Op = "=="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// Filter compares a top level document field with Value. The kind of Value
// (string, bool, number or time.Time) decides how the field is compared.
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindTime
)

type OrderBy struct {
	Field string
	Kind  Kind
	Desc  bool
}

type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    *OrderBy
	// Limit <= 0 means no limit.
	Limit int
}

// Record is a raw stored document. Callers decode it into their domain types.
type Record struct {
	ID   string
	Data json.RawMessage
}

func (r Record) Decode(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode record %s: %w", r.ID, err)
	}
	return nil
}

// DocStore is the persistence gateway. Documents are grouped in collections,
// and every by-user query filters on userId. There are no cross collection transactions.
type DocStore interface {
	Query(ctx context.Context, q Query) ([]Record, error)
	Get(ctx context.Context, collection, id string) (*Record, error)
	// Create stores the document under a newly generated id and returns it.
	Create(ctx context.Context, collection string, doc any) (string, error)
	// Set creates or replaces the document stored under id.
	Set(ctx context.Context, collection, id string, doc any) error
	// Update merges partial into the top level fields of an existing document.
	Update(ctx context.Context, collection, id string, partial map[string]any) error
}

func (q Query) validate() error {
	if !knownCollections[q.Collection] {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, q.Collection)
	}
	for _, f := range q.Filters {
		if err := f.validate(); err != nil {
			return err
		}
	}
	if q.OrderBy != nil && q.OrderBy.Field == "" {
		return fmt.Errorf("%w: empty order field", ErrInvalidQuery)
	}
	return nil
}

func (f Filter) validate() error {
	if f.Field == "" {
		return fmt.Errorf("%w: empty filter field", ErrInvalidQuery)
	}
	switch f.Op {
	case OpEq, OpLt, OpLte, OpGt, OpGte:
	default:
		return fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, f.Op)
	}
	if _, err := kindOf(f.Value); err != nil {
		return err
	}
	return nil
}

// kindOf normalizes supported filter values, bool is reported as KindText
// with its own SQL cast handled by the caller.
func kindOf(v any) (Kind, error) {
	switch v.(type) {
	case string, bool:
		return KindText, nil
	case int, int32, int64, float32, float64:
		return KindNumber, nil
	case time.Time:
		return KindTime, nil
	default:
		return KindText, fmt.Errorf("%w: unsupported filter value %T", ErrInvalidQuery, v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func checkCollection(collection string) error {
	if !knownCollections[collection] {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return nil
}
