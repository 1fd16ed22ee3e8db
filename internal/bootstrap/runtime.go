// Package bootstrap connects the process to its backing services.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"firenet/internal/cache"
	"firenet/internal/config"
	"firenet/internal/database"
	"firenet/internal/repository"
	"firenet/internal/repository/mongostore"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Runtime bundles the connections a process runs on. Redis and NATS are nil
// when not configured or not reachable.
type Runtime struct {
	Store *repository.Store
	Redis *redis.Client
	Nats  *nats.Conn
}

// InitRuntime opens the configured document store and the optional Redis and
// NATS connections. Only a store failure is fatal.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Store: store}

	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: Redis unavailable, continuing without cache and cross-instance feed: %v", err)
		} else {
			rt.Redis = rdb
		}
	}

	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL,
			nats.Name("firenet-api"),
			nats.Timeout(5*time.Second),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					log.Printf("NATS disconnected: %v", err)
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				log.Printf("NATS reconnected to %s", c.ConnectedUrl())
			}),
		)
		if err != nil {
			log.Printf("WARNING: NATS unavailable, post events will not be forwarded: %v", err)
		} else {
			rt.Nats = nc
		}
	}

	return rt, nil
}

// OpenStore connects the document store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("document store connection failed: %w", err)
		}
		return mongostore.New(client, db), nil
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return repository.NewGormStore(db), nil
	}
}

// Close releases every connection. NATS is drained so buffered events are
// flushed first.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Nats != nil {
		if err := rt.Nats.Drain(); err != nil {
			errs = append(errs, fmt.Errorf("drain nats: %w", err))
		}
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if rt.Store != nil && rt.Store.Backend != nil {
		if err := rt.Store.Backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", rt.Store.Backend.Name(), err))
		}
	}
	return errors.Join(errs...)
}
