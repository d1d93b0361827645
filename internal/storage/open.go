package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Backends accepted by Open.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Prefix        string
	DB            *gorm.DB
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open builds the configured store. The returned close func releases any
// connection the store owns.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), noop, nil
	case BackendPostgres:
		if opts.DB == nil {
			return nil, nil, fmt.Errorf("storage: postgres backend needs a database connection")
		}
		return NewGormStore(opts.DB, opts.Prefix), noop, nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("storage: redis at %s: %w", opts.RedisAddr, err)
		}
		return NewRedisStore(client, opts.Prefix), client.Close, nil
	}
	return nil, nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
}
