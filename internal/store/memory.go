package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a DocStore kept in process memory, used by tests and local runs
// without postgres. Filters and ordering follow the same rules as PsqlStore.
type MemoryStore struct {
	mutex       sync.RWMutex
	collections map[string][]*memoryDoc
}

type memoryDoc struct {
	id   string
	data json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: map[string][]*memoryDoc{},
	}
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	type candidate struct {
		doc    *memoryDoc
		fields map[string]any
	}
	var candidates []candidate
	for _, doc := range s.collections[q.Collection] {
		fields := map[string]any{}
		if err := json.Unmarshal(doc.data, &fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", q.Collection, doc.id, err)
		}
		matches := true
		for _, f := range q.Filters {
			if !matchFilter(fields[f.Field], f) {
				matches = false
				break
			}
		}
		if matches {
			candidates = append(candidates, candidate{doc: doc, fields: fields})
		}
	}

	if ob := q.OrderBy; ob != nil {
		sort.SliceStable(candidates, func(i, j int) bool {
			a, aOk := sortValue(candidates[i].fields[ob.Field], ob.Kind)
			b, bOk := sortValue(candidates[j].fields[ob.Field], ob.Kind)
			// missing values always last
			if !aOk || !bOk {
				return aOk && !bOk
			}
			c := compareValues(a, b)
			if ob.Desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}

	records := make([]Record, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, Record{ID: c.doc.id, Data: cloneRaw(c.doc.data)})
	}
	return records, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	doc := s.find(collection, id)
	if doc == nil {
		return nil, ErrNotFound
	}
	return &Record{ID: doc.id, Data: cloneRaw(doc.data)}, nil
}

func (s *MemoryStore) Create(_ context.Context, collection string, doc any) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], &memoryDoc{id: id, data: data})
	return id, nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, doc any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing := s.find(collection, id); existing != nil {
		existing.data = data
		return nil
	}
	s.collections[collection] = append(s.collections[collection], &memoryDoc{id: id, data: data})
	return nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, partial map[string]any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	doc := s.find(collection, id)
	if doc == nil {
		return ErrNotFound
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(doc.data, &fields); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	for k, v := range partial {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal field %s: %w", k, err)
		}
		fields[k] = raw
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	doc.data = data
	return nil
}

func (s *MemoryStore) find(collection, id string) *memoryDoc {
	for _, doc := range s.collections[collection] {
		if doc.id == id {
			return doc
		}
	}
	return nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	c := make(json.RawMessage, len(raw))
	copy(c, raw)
	return c
}

func matchFilter(fieldValue any, f Filter) bool {
	var want any
	switch v := f.Value.(type) {
	case string:
		want = v
	case bool:
		want = v
	case time.Time:
		want = v
	default:
		n, ok := toFloat(v)
		if !ok {
			return false
		}
		want = n
	}

	got, ok := coerce(fieldValue, want)
	if !ok {
		return false
	}

	c := compareValues(got, want)
	switch f.Op {
	case OpEq:
		return c == 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	default:
		return false
	}
}

// coerce converts a decoded JSON value to the type of want.
func coerce(fieldValue any, want any) (any, bool) {
	if fieldValue == nil {
		return nil, false
	}
	switch want.(type) {
	case time.Time:
		s, ok := fieldValue.(string)
		if !ok {
			return nil, false
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		return t, err == nil
	case float64:
		n, ok := fieldValue.(float64)
		return n, ok
	case bool:
		b, ok := fieldValue.(bool)
		return b, ok
	default:
		s, ok := fieldValue.(string)
		return s, ok
	}
}

func sortValue(fieldValue any, kind Kind) (any, bool) {
	switch kind {
	case KindTime:
		return coerce(fieldValue, time.Time{})
	case KindNumber:
		return coerce(fieldValue, float64(0))
	default:
		return coerce(fieldValue, "")
	}
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		return av.Compare(b.(time.Time))
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	default:
		return strings.Compare(a.(string), b.(string))
	}
}
