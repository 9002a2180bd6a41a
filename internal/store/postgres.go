package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresBackend stores documents in the scheduler_documents table.
// The column is JSON rather than JSONB so that the timetable keeps its key order.
type PostgresBackend struct {
	pool      *pgxpool.Pool
	namespace string
}

func NewPostgresBackend(pool *pgxpool.Pool, namespace string) *PostgresBackend {
	return &PostgresBackend{pool: pool, namespace: namespace}
}

// EnsureSchema creates the documents table when missing.
func (backend *PostgresBackend) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := backend.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scheduler_documents (
			namespace  TEXT        NOT NULL,
			key        TEXT        NOT NULL,
			document   JSON        NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (namespace, key)
		)`)
	if err != nil {
		return fmt.Errorf("creating scheduler_documents: %w", err)
	}
	return nil
}

func (backend *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var document string
	err := backend.pool.QueryRow(ctx,
		`SELECT document::text FROM scheduler_documents WHERE namespace = $1 AND key = $2`,
		backend.namespace, key,
	).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("querying document %v: %w", key, err)
	}
	return []byte(document), nil
}

func (backend *PostgresBackend) Put(ctx context.Context, key string, document []byte) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := backend.pool.Exec(ctx, `
		INSERT INTO scheduler_documents (namespace, key, document, updated_at)
		VALUES ($1, $2, $3::json, NOW())
		ON CONFLICT (namespace, key) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		backend.namespace, key, string(document),
	)
	if err != nil {
		return fmt.Errorf("upserting document %v: %w", key, err)
	}
	return nil
}
