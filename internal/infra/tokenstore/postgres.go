package tokenstore

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// tokenKey is the fixed primary key of the singleton row. It mirrors the
// original single-document layout of the store.
const tokenKey = "token"

const schema = `
CREATE TABLE IF NOT EXISTS spotify_token (
	id            TEXT PRIMARY KEY,
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres is a Store backed by a PostgreSQL table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres token store and ensures the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database URL")
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ensure token table")
	}

	return &Postgres{pool: pool}, nil
}

// Get returns the stored token, or (nil, nil) when the row is absent.
func (p *Postgres) Get(ctx context.Context) (*Token, error) {
	var token Token
	err := p.pool.QueryRow(ctx,
		`SELECT access_token, refresh_token FROM spotify_token WHERE id = $1`,
		tokenKey,
	).Scan(&token.AccessToken, &token.RefreshToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read token")
	}
	return &token, nil
}

// Set overwrites the token row.
func (p *Postgres) Set(ctx context.Context, token Token) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO spotify_token (id, access_token, refresh_token, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			updated_at    = NOW()`,
		tokenKey, token.AccessToken, token.RefreshToken,
	)
	if err != nil {
		return errors.Wrap(err, "failed to write token")
	}
	return nil
}

// Close closes the underlying connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
