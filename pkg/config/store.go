package config

import (
	"context"

	"github.com/spookydecs/circuitry/pkg/observability"
	"github.com/spookydecs/circuitry/pkg/store"
	mongostore "github.com/spookydecs/circuitry/pkg/store/mongo"
	redisstore "github.com/spookydecs/circuitry/pkg/store/redis"
)

// OpenStore connects the configured backend and wraps it so that every
// call is reported to hooks, invalid records are dropped and reported to
// onInvalid, and reads are retried store.retry_attempts times.
// hooks and onInvalid may be nil.
func (c *Config) OpenStore(ctx context.Context, hooks observability.StoreHooks, onInvalid func(error)) (store.Store, error) {
	base, err := c.openBackend(ctx, onInvalid)
	if err != nil {
		return nil, err
	}

	s := store.WithHooks(base, hooks)
	s = store.WithValidation(s, onInvalid)
	if c.Store.RetryAttempts > 1 {
		policy := store.DefaultRetryPolicy
		policy.Attempts = c.Store.RetryAttempts
		s = store.WithRetry(s, policy)
	}
	return s, nil
}

func (c *Config) openBackend(ctx context.Context, onInvalid func(error)) (store.Store, error) {
	switch c.Store.Backend {
	case BackendMemory:
		return store.NewMemory(), nil
	case BackendMongo:
		return mongostore.Connect(ctx, c.Store.MongoURI, c.Store.MongoDatabase)
	case BackendRedis:
		rs, err := redisstore.Dial(ctx, c.Store.RedisAddr, c.Store.RedisPrefix)
		if err != nil {
			return nil, err
		}
		rs.OnInvalid(onInvalid)
		return rs, nil
	default:
		return store.NewFile(c.Store.Path)
	}
}
