package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/folio/internal/store"
)

var tracer = otel.Tracer("folio/store/sqlite")

// windowModel is the database row for the windows table.
type windowModel struct {
	ID        string
	Fields    string // JSON encoded
	Payload   []byte // nullable
	UpdatedAt int64  // Unix timestamp
}

// Store implements store.Store on a SQLite database. Put runs a
// read-merge-write inside a transaction so concurrent partial updates
// cannot lose fields.
type Store struct {
	db *DB
}

// New wraps an open database in the repository.
func New(db *DB) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Put(ctx context.Context, id string, fields store.Fields, payload []byte, opts store.PutOptions) error {
	ctx, span := tracer.Start(ctx, "store.Put", trace.WithAttributes(
		attribute.String("window.id", id),
		attribute.Bool("payload.included", opts.IncludePayload),
	))
	defer span.End()

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var model windowModel
	err = tx.QueryRowContext(ctx,
		`SELECT id, fields, payload, updated_at FROM windows WHERE id = ?`, id,
	).Scan(&model.ID, &model.Fields, &model.Payload, &model.UpdatedAt)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading window %s: %w", id, err)
	}

	merged := store.Fields{}
	if exists && model.Fields != "" {
		if err := json.Unmarshal([]byte(model.Fields), &merged); err != nil {
			return fmt.Errorf("decoding stored fields for %s: %w", id, err)
		}
	}
	merged = store.MergeFields(merged, fields)

	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding fields for %s: %w", id, err)
	}

	now := time.Now().Unix()
	if opts.IncludePayload {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO windows (id, fields, payload, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET fields = excluded.fields, payload = excluded.payload, updated_at = excluded.updated_at`,
			id, string(encoded), payload, now,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO windows (id, fields, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
			id, string(encoded), now,
		)
	}
	if err != nil {
		return fmt.Errorf("writing window %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing window %s: %w", id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (store.Stored, error) {
	ctx, span := tracer.Start(ctx, "store.Get", trace.WithAttributes(
		attribute.String("window.id", id),
	))
	defer span.End()

	var model windowModel
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, fields, payload, updated_at FROM windows WHERE id = ?`, id,
	).Scan(&model.ID, &model.Fields, &model.Payload, &model.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Stored{}, store.ErrNotFound
	}
	if err != nil {
		return store.Stored{}, fmt.Errorf("reading window %s: %w", id, err)
	}
	return model.toStored()
}

func (s *Store) GetAll(ctx context.Context) ([]store.Stored, error) {
	ctx, span := tracer.Start(ctx, "store.GetAll")
	defer span.End()

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, fields, payload, updated_at FROM windows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing windows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.Stored
	for rows.Next() {
		var model windowModel
		if err := rows.Scan(&model.ID, &model.Fields, &model.Payload, &model.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning window row: %w", err)
		}
		entry, err := model.toStored()
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating window rows: %w", err)
	}
	span.SetAttributes(attribute.Int("window.count", len(out)))
	return out, nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "store.Remove", trace.WithAttributes(
		attribute.String("window.id", id),
	))
	defer span.End()

	if _, err := s.db.conn.ExecContext(ctx, `DELETE FROM windows WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing window %s: %w", id, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "store.Clear")
	defer span.End()

	if _, err := s.db.conn.ExecContext(ctx, `DELETE FROM windows`); err != nil {
		return fmt.Errorf("clearing windows: %w", err)
	}
	return nil
}

func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

func (s *Store) Preference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (m *windowModel) toStored() (store.Stored, error) {
	fields := store.Fields{}
	if m.Fields != "" {
		if err := json.Unmarshal([]byte(m.Fields), &fields); err != nil {
			return store.Stored{}, fmt.Errorf("decoding stored fields for %s: %w", m.ID, err)
		}
	}
	return store.Stored{ID: m.ID, Fields: fields, Payload: m.Payload}, nil
}
