package database

import (
	"context"
	"fmt"

	"github.com/cx-tal-miterani/booking-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// Connection is an opened store together with the clients behind it
type Connection struct {
	Store Store
	// Redis is set only for the redis backend
	Redis   *redis.Client
	closers []func()
}

func (c *Connection) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Open connects the backend selected by cfg.Store.Backend
func Open(ctx context.Context, cfg *config.Config) (*Connection, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return &Connection{Store: NewMemoryStore()}, nil

	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		return &Connection{
			Store:   NewRedisStore(client, cfg.Store.KeyPrefix),
			Redis:   client,
			closers: []func(){func() { client.Close() }},
		}, nil

	case config.BackendPostgres:
		pool, err := NewPool(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(pool, cfg.Store.KeyPrefix)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &Connection{Store: store, closers: []func(){pool.Close}}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
