package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the pool with the repositories built on it.
type Store struct {
	Pool *pgxpool.Pool
}

func NewPool(ctx context.Context, dsn string, maxConns, minConns int32, maxConnLife time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = maxConnLife
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) Users() *UserRepository { return NewUserRepository(s.Pool) }

func (s *Store) Communities() *CommunityRepository { return NewCommunityRepository(s.Pool) }

func (s *Store) Ping(ctx context.Context) error { return s.Pool.Ping(ctx) }

// Truncate empties every table. Used by tests and the seed command.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `TRUNCATE experience_points, users, communities`)
	return err
}

func (s *Store) Close() { s.Pool.Close() }
