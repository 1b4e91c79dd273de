package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/example/storefront/config"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// Module owns the Redis client shared by the catalog cache and the
// checkout rate limiter.
type Module struct {
	cfg    config.RedisConfig
	client *redis.Client
	store  Store
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the cache module. An empty address selects the no-op
// store.
func NewModule(cfg config.RedisConfig, logger types.Logger) *Module {
	m := &Module{cfg: cfg, logger: logger.WithModule("cache")}
	if cfg.Addr == "" {
		m.store = &Noop{}
		return m
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	m.store = NewRedis(m.client, cfg.Prefix, cfg.TTL)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Start checks connectivity. An unreachable Redis is logged, not fatal:
// reads fall through to the database.
func (m *Module) Start(ctx context.Context) error {
	if m.client == nil {
		m.logger.Info("Cache module started", "backend", "none")
		return nil
	}
	if err := m.store.Ping(ctx); err != nil {
		m.logger.Warn("Redis unreachable, catalog reads will hit the database", "addr", m.cfg.Addr, "error", err)
	}
	m.logger.Info("Cache module started", "backend", "redis", "addr", m.cfg.Addr, "prefix", m.cfg.Prefix, "ttl", m.cfg.TTL)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	m.logger.Info("Cache module stopped")
	return nil
}

// Health pings Redis.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{Healthy: true, Message: "disabled"}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("redis ping failed: %v", err)}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// Store returns the cache store.
func (m *Module) Store() Store {
	return m.store
}

// Client returns the Redis client, or nil when Redis is disabled.
func (m *Module) Client() *redis.Client {
	return m.client
}
