package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"reflect"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// uniqueViolation is the SQLSTATE for unique constraint violations
const uniqueViolation = "23505"

var sortFieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresStore keeps every collection in a single JSONB documents table
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresStore opens a pgx-backed connection pool and verifies it
func NewPostgresStore(ctx context.Context, dsn string, timeout time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{db: db, timeout: timeout}
	if err := store.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// DB exposes the pool for migrations
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Collection(name string) Collection {
	return &postgresCollection{db: s.db, name: name, timeout: s.timeout}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	return s.db.Close()
}

type postgresCollection struct {
	db      *sql.DB
	name    string
	timeout time.Duration
}

func (c *postgresCollection) FindOne(ctx context.Context, filter Filter, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	match, err := encodeJSON(filter)
	if err != nil {
		return err
	}

	query := `
		SELECT body
		FROM documents
		WHERE collection = $1 AND body @> $2::jsonb
		LIMIT 1
	`

	var body []byte
	if err := c.db.QueryRowContext(ctx, query, c.name, match).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return classifyPostgresError(err)
	}

	return json.Unmarshal(body, out)
}

func (c *postgresCollection) Find(ctx context.Context, filter Filter, opts FindOptions, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	match, err := encodeJSON(filter)
	if err != nil {
		return err
	}

	orderBy, err := postgresOrderBy(opts)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		SELECT body
		FROM documents
		WHERE collection = $1 AND body @> $2::jsonb
		ORDER BY %s
	`, orderBy)
	args := []interface{}{c.name, match}

	if opts.Limit > 0 {
		query += " LIMIT $3"
		args = append(args, opts.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return classifyPostgresError(err)
	}
	defer rows.Close()

	bodies := []json.RawMessage{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return fmt.Errorf("failed to scan document: %w", err)
		}
		bodies = append(bodies, json.RawMessage(body))
	}

	if err := rows.Err(); err != nil {
		return classifyPostgresError(err)
	}

	return decodeAll(bodies, out)
}

func (c *postgresCollection) Insert(ctx context.Context, doc interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, fields, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	id, ok := fields["id"].(string)
	if !ok || id == "" {
		return errors.New("document must have a string id")
	}

	createdAt := time.Now().UTC()
	if raw, ok := fields["created_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			createdAt = parsed
		}
	}

	query := `
		INSERT INTO documents (collection, id, body, created_at)
		VALUES ($1, $2, $3::jsonb, $4)
	`

	if _, err := c.db.ExecContext(ctx, query, c.name, id, body, createdAt); err != nil {
		return classifyPostgresError(err)
	}

	return nil
}

func (c *postgresCollection) Update(ctx context.Context, filter Filter, set Fields) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	match, err := encodeJSON(filter)
	if err != nil {
		return 0, err
	}
	patch, err := encodeJSON(set)
	if err != nil {
		return 0, err
	}

	// Top-level jsonb concatenation has the same semantics as a $set
	query := `
		UPDATE documents
		SET body = body || $3::jsonb
		WHERE collection = $1 AND body @> $2::jsonb
	`

	result, err := c.db.ExecContext(ctx, query, c.name, match, patch)
	if err != nil {
		return 0, classifyPostgresError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (c *postgresCollection) Upsert(ctx context.Context, filter Filter, set Fields) error {
	id, ok := filter["id"].(string)
	if !ok || id == "" {
		return errors.New("upsert filter must contain id")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	merged := make(map[string]interface{}, len(filter)+len(set))
	for k, v := range filter {
		merged[k] = v
	}
	for k, v := range set {
		merged[k] = v
	}

	body, err := encodeJSON(merged)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (collection, id, body, created_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (collection, id)
		DO UPDATE SET body = documents.body || EXCLUDED.body
	`

	if _, err := c.db.ExecContext(ctx, query, c.name, id, body); err != nil {
		return classifyPostgresError(err)
	}

	return nil
}

func (c *postgresCollection) Delete(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	match, err := encodeJSON(filter)
	if err != nil {
		return 0, err
	}

	query := `
		DELETE FROM documents
		WHERE ctid IN (
			SELECT ctid FROM documents
			WHERE collection = $1 AND body @> $2::jsonb
			LIMIT 1
		)
	`

	result, err := c.db.ExecContext(ctx, query, c.name, match)
	if err != nil {
		return 0, classifyPostgresError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func postgresOrderBy(opts FindOptions) (string, error) {
	if opts.SortBy == "" {
		return "created_at ASC, id ASC", nil
	}
	if !sortFieldPattern.MatchString(opts.SortBy) {
		return "", fmt.Errorf("invalid sort field %q", opts.SortBy)
	}

	direction := "ASC"
	if opts.Order == SortDesc {
		direction = "DESC"
	}

	// created_at is mirrored into a typed column so timestamps sort chronologically
	if opts.SortBy == "created_at" {
		return fmt.Sprintf("created_at %s, id ASC", direction), nil
	}
	return fmt.Sprintf("body->'%s' %s, id ASC", opts.SortBy, direction), nil
}

func encodeJSON(v interface{}) ([]byte, error) {
	if v == nil || (reflect.ValueOf(v).Kind() == reflect.Map && reflect.ValueOf(v).IsNil()) {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return b, nil
}

func encodeDocument(doc interface{}) ([]byte, map[string]interface{}, error) {
	body, err := encodeJSON(doc)
	if err != nil {
		return nil, nil, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, nil, fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	return body, fields, nil
}

func decodeAll(bodies []json.RawMessage, out interface{}) error {
	joined, err := json.Marshal(bodies)
	if err != nil {
		return fmt.Errorf("failed to collect documents: %w", err)
	}
	return json.Unmarshal(joined, out)
}

func classifyPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || pgconn.Timeout(err) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return unavailable(err)
	}

	return err
}
