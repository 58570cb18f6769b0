package infrastructure

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
	"github.com/oksasatya/go-community-leaderboard/internal/infrastructure/memory"
	"github.com/oksasatya/go-community-leaderboard/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/go-community-leaderboard/internal/infrastructure/postgres"
)

// Backend is the storage selected by STORE_DRIVER.
type Backend struct {
	Driver      string
	Users       repository.UserRepository
	Communities repository.CommunityRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (b *Backend) Ping(ctx context.Context) error { return b.ping(ctx) }

func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects the configured backend. Postgres migrations and mongo
// indexes are applied before it returns.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		s, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoTimeout)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(context.Background())
			return nil, err
		}
		return &Backend{Driver: cfg.StoreDriver, Users: s.Users(), Communities: s.Communities(), ping: s.Ping, close: s.Close}, nil

	case config.StorePostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		s := pginfra.NewStore(pool)
		return &Backend{
			Driver:      cfg.StoreDriver,
			Users:       s.Users(),
			Communities: s.Communities(),
			ping:        s.Ping,
			close:       func(context.Context) error { s.Close(); return nil },
		}, nil

	case config.StoreMemory:
		s := memory.NewStore()
		return &Backend{Driver: cfg.StoreDriver, Users: s.Users(), Communities: s.Communities(), ping: s.Ping}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
