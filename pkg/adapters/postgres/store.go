package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aretw0/skillgraph/pkg/domain"
)

// Schema creates the documents table. Migrate runs it.
const Schema = `
CREATE TABLE IF NOT EXISTS skillgraph_documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	document   JSONB NOT NULL
);`

// Store implements ports.GraphStore using PostgreSQL via pgx.
type Store struct {
	db *pgxpool.Pool
}

// New creates a Store backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Connect opens a pool for dsn and runs Migrate.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}

// Save upserts the document as JSONB.
func (s *Store) Save(ctx context.Context, doc *domain.GraphDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("postgres store: document id cannot be empty")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO skillgraph_documents (id, name, document, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, document = EXCLUDED.document, updated_at = now()`,
		doc.ID, doc.Name, data)
	if err != nil {
		return fmt.Errorf("failed to save graph %q: %w", doc.ID, err)
	}
	return nil
}

// Load reads the document by ID.
func (s *Store) Load(ctx context.Context, id string) (*domain.GraphDocument, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT document FROM skillgraph_documents WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("graph %q: %w", id, domain.ErrGraphNotFound)
		}
		return nil, fmt.Errorf("failed to load graph %q: %w", id, err)
	}

	var doc domain.GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph %q: %w", id, err)
	}
	return &doc, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM skillgraph_documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete graph %q: %w", id, err)
	}
	return nil
}

// List returns all IDs in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM skillgraph_documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.db.Close()
}
