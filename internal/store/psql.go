package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const schema = `
CREATE TABLE IF NOT EXISTS document (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS document_user_id_idx ON document (collection, (data->>'userId'));
`

var fieldNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// PsqlStore keeps every collection in a single JSONB document table.
type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func (s *PsqlStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure document schema: %w", err)
	}
	return nil
}

func (s *PsqlStore) Query(ctx context.Context, q Query) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.store.query")
	span.SetAttributes(attribute.String("collection", q.Collection))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sql, args, err := buildQuerySQL(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		records = append(records, Record{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func (s *PsqlStore) Get(ctx context.Context, collection, id string) (_ *Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.store.get")
	span.SetAttributes(attribute.String("collection", collection))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	var data []byte
	if err := s.db.QueryRow(
		ctx,
		`SELECT data FROM document WHERE collection = $1 AND id = $2;`,
		collection, id,
	).Scan(&data); err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	return &Record{ID: id, Data: data}, nil
}

func (s *PsqlStore) Create(ctx context.Context, collection string, doc any) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.store.create")
	span.SetAttributes(attribute.String("collection", collection))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := checkCollection(collection); err != nil {
		return "", err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	id := uuid.NewString()
	if _, err := s.db.Exec(
		ctx,
		`INSERT INTO document (collection, id, data) VALUES ($1, $2, $3::jsonb);`,
		collection, id, data,
	); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}

	return id, nil
}

func (s *PsqlStore) Set(ctx context.Context, collection, id string, doc any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.store.set")
	span.SetAttributes(attribute.String("collection", collection))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := checkCollection(collection); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if _, err := s.db.Exec(
		ctx,
		`INSERT INTO document (collection, id, data) VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now();`,
		collection, id, data,
	); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}

	return nil
}

func (s *PsqlStore) Update(ctx context.Context, collection, id string, partial map[string]any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.store.update")
	span.SetAttributes(attribute.String("collection", collection))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := checkCollection(collection); err != nil {
		return err
	}

	data, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("marshal partial document: %w", err)
	}

	tag, err := s.db.Exec(
		ctx,
		`UPDATE document SET data = data || $3::jsonb, updated_at = now()
			WHERE collection = $1 AND id = $2;`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// buildQuerySQL translates q into a parametrized SELECT over the document table.
func buildQuerySQL(q Query) (string, []any, error) {
	if err := q.validate(); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	args := []any{q.Collection}
	sb.WriteString("SELECT id, data FROM document WHERE collection = $1")

	for _, f := range q.Filters {
		if !fieldNameRegex.MatchString(f.Field) {
			return "", nil, fmt.Errorf("%w: bad field name %q", ErrInvalidQuery, f.Field)
		}
		args = append(args, f.Field)
		expr := fieldExpr(len(args), f.Value)
		args = append(args, f.Value)
		fmt.Fprintf(&sb, " AND %s %s $%d", expr, sqlOp(f.Op), len(args))
	}

	if q.OrderBy != nil {
		if !fieldNameRegex.MatchString(q.OrderBy.Field) {
			return "", nil, fmt.Errorf("%w: bad field name %q", ErrInvalidQuery, q.OrderBy.Field)
		}
		args = append(args, q.OrderBy.Field)
		direction := "ASC"
		if q.OrderBy.Desc {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s NULLS LAST, created_at, id", castExpr(len(args), q.OrderBy.Kind), direction)
	} else {
		sb.WriteString(" ORDER BY created_at, id")
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	sb.WriteString(";")

	return sb.String(), args, nil
}

func fieldExpr(fieldArg int, value any) string {
	if _, ok := value.(bool); ok {
		return fmt.Sprintf("(data->>$%d)::boolean", fieldArg)
	}
	kind, _ := kindOf(value)
	return castExpr(fieldArg, kind)
}

func castExpr(fieldArg int, kind Kind) string {
	switch kind {
	case KindTime:
		return fmt.Sprintf("(data->>$%d)::timestamptz", fieldArg)
	case KindNumber:
		return fmt.Sprintf("(data->>$%d)::numeric", fieldArg)
	default:
		return fmt.Sprintf("(data->>$%d)", fieldArg)
	}
}

func sqlOp(op Op) string {
	if op == OpEq {
		return "="
	}
	return string(op)
}
