package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/config"
	"github.com/hotelmend/ticket-service/internal/persistence/docstore"
)

// Backends holds the connections opened for the configured drivers.
type Backends struct {
	Documents docstore.Store
	Postgres  *Postgres
	Redis     *Redis
}

// Check is a named dependency ping used by readiness reporting.
type Check struct {
	Name string
	Ping func(context.Context) error
}

// Open connects the document store and, when any component needs it, Redis.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backends, error) {
	b := &Backends{}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if _, err := RunMigrations(ctx, pg.Pool(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		b.Postgres = pg
		b.Documents = docstore.NewPostgres(pg.Pool())
	case config.DriverSQLite:
		store, err := docstore.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("opened sqlite store", zap.String("path", cfg.Store.SQLitePath))
		b.Documents = store
	default:
		logger.Warn("using in-memory document store; data is lost on restart")
		b.Documents = docstore.NewMemory()
	}

	registryOnRedis := cfg.Registry.Driver == config.DriverRedis
	if registryOnRedis || cfg.Suggest.CacheTTLSec > 0 {
		r, err := NewRedis(ctx, cfg.Redis, registryOnRedis, logger)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.Redis = r
	}
	return b, nil
}

// Checks lists one check per opened backend.
func (b *Backends) Checks() []Check {
	checks := []Check{{Name: "documents", Ping: b.Documents.Ping}}
	if b.Redis != nil {
		checks = append(checks, Check{Name: "redis", Ping: b.Redis.Ping})
	}
	return checks
}

// Close releases every opened backend.
func (b *Backends) Close() {
	if b == nil {
		return
	}
	if b.Documents != nil {
		_ = b.Documents.Close()
	}
	b.Postgres.Close()
	b.Redis.Close()
}
