package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

// PostgresStore keeps each collection as one jsonb row in the snapshots
// table. The layout stays the same four full-array JSON documents as the
// file store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Load(ctx context.Context, col store.Collection) ([]byte, bool, error) {
	var raw []byte
	err := p.pool.
		QueryRow(ctx, `SELECT data FROM snapshots WHERE collection = $1`, string(col)).
		Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (p *PostgresStore) Save(ctx context.Context, col store.Collection, data []byte) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO snapshots (collection, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (collection) DO UPDATE SET
		  data = EXCLUDED.data, updated_at = now()
	`, string(col), data)
	return err
}

func (p *PostgresStore) Reset(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM snapshots`)
	return err
}
