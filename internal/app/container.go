// Package app assembles the services shared by the API server and the
// operator CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/auth"
	"github.com/hotelmend/ticket-service/internal/config"
	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/events"
	"github.com/hotelmend/ticket-service/internal/observability"
	"github.com/hotelmend/ticket-service/internal/persistence"
	"github.com/hotelmend/ticket-service/internal/repository"
	"github.com/hotelmend/ticket-service/internal/seed"
	"github.com/hotelmend/ticket-service/internal/service"
	"github.com/hotelmend/ticket-service/internal/worker"
)

const activityCapacity = 200

// Container holds the wired services.
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Backends    *persistence.Backends
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Tokens      *auth.TokenManager
	Locations   *service.ReferenceService
	RepairTypes *service.ReferenceService
	Engine      *service.TicketEngine
	Suggester   *service.SuggestionService
	Access      *service.AccessService
	Activity    *service.ActivityService

	sink *events.KafkaSink
}

// New opens the configured backends and builds every service. The ticket
// set is loaded before it returns.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	backends, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Backends:   backends,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    observability.NewMetrics(),
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
	}
	c.Activity = service.NewActivityService(c.Dispatcher, logger.Named("activity"), activityCapacity)
	c.sink = worker.StartActivityWorker(c.Dispatcher, c.Activity, cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)

	store := backends.Documents
	c.Locations = service.NewReferenceService(repository.NewReferenceRepository(store, domain.ReferenceLocations), c.Dispatcher, logger.Named("reference"))
	c.RepairTypes = service.NewReferenceService(repository.NewReferenceRepository(store, domain.ReferenceRepairTypes), c.Dispatcher, logger.Named("reference"))

	c.Engine = service.NewTicketEngine(service.TicketEngineDependencies{
		TicketRepo:  repository.NewTicketRepository(store),
		HistoryRepo: repository.NewTicketHistoryRepository(store),
		Locations:   c.Locations,
		RepairTypes: c.RepairTypes,
		Dispatcher:  c.Dispatcher,
		Metrics:     c.Metrics,
		Logger:      logger.Named("engine"),
	})
	if err := c.Engine.Load(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("load tickets: %w", err)
	}

	var cache repository.SuggestionCache
	if backends.Redis != nil && cfg.Suggest.CacheTTLSec > 0 {
		cache = repository.NewRedisSuggestionCache(backends.Redis.Client, cfg.Suggest.CacheKeySpace,
			time.Duration(cfg.Suggest.CacheTTLSec)*time.Second)
	}
	c.Suggester = service.NewSuggestionService(service.SuggestionDependencies{
		Source:     c.Engine,
		Cache:      cache,
		Latency:    time.Duration(cfg.Suggest.LatencyMS) * time.Millisecond,
		Timeout:    time.Duration(cfg.Suggest.TimeoutMS) * time.Millisecond,
		MaxResults: cfg.Suggest.MaxResults,
		Logger:     logger.Named("suggest"),
		Metrics:    c.Metrics,
	})

	codes := repository.NewMemoryAccessCodeRepository()
	if cfg.Registry.Driver == config.DriverRedis {
		codes = repository.NewRedisAccessCodeRepository(backends.Redis.Client, cfg.Registry.Key)
	}
	c.Access, err = service.NewAccessService(cfg.Auth, service.AccessDependencies{
		CodeRepo:   codes,
		Tokens:     c.Tokens,
		Dispatcher: c.Dispatcher,
		Logger:     logger.Named("access"),
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	for _, problem := range c.Access.ConfigProblems() {
		logger.Warn("access disabled", zap.String("reason", problem))
	}
	return c, nil
}

// SeedDefaults fills empty reference lists from SEED_FILE or the built-in
// defaults.
func (c *Container) SeedDefaults(ctx context.Context) error {
	lists, err := seed.Load(c.Config.Seed.File)
	if err != nil {
		return err
	}
	return seed.Apply(ctx, lists, c.Locations, c.RepairTypes, c.Logger)
}

// Close flushes the event sink and releases the backends.
func (c *Container) Close() {
	if c.sink != nil {
		if err := c.sink.Close(); err != nil {
			c.Logger.Warn("close kafka sink", zap.Error(err))
		}
	}
	c.Backends.Close()
}
