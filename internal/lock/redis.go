package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"go-construction-inventory/internal/config"
)

// Redis serializes identities across processes through redislock.
type Redis struct {
	locker *redislock.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewRedis(client redis.UniversalClient, ttl time.Duration, logger *logrus.Logger) *Redis {
	return &Redis{locker: redislock.New(client), ttl: ttl, logger: logger}
}

func (r *Redis) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)

	// wait at most one ttl for the whole set
	waitCtx, cancel := context.WithTimeout(ctx, r.ttl)
	defer cancel()

	opts := &redislock.Options{RetryStrategy: redislock.LinearBackoff(25 * time.Millisecond)}
	held := make([]*redislock.Lock, 0, len(keys))
	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				config.LogError(r.logger, "lock", "Unlock", "release redis lock", held[i].Key(), err)
			}
		}
	}

	for _, k := range keys {
		l, err := r.locker.Obtain(waitCtx, k, r.ttl, opts)
		if err != nil {
			unlock()
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrNotObtained
			}
			return nil, err
		}
		held = append(held, l)
	}
	return unlock, nil
}

// New returns a Redis locker when an address is configured and reachable, otherwise a Local one.
func New(ctx context.Context, cfg config.RedisConfig, logger *logrus.Logger) (Locker, func() error) {
	if cfg.Address == "" {
		logger.Info("REDIS_ADDRESS not set; using in-process inventory locks")
		return NewLocal(), func() error { return nil }
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		config.LogError(logger, "lock", "New", "redis ping failed, using in-process locks", cfg.Address, err)
		_ = rdb.Close()
		return NewLocal(), func() error { return nil }
	}

	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	logger.WithField("addr", cfg.Address).Info("connected to redis for inventory locks")
	return NewRedis(rdb, ttl, logger), rdb.Close
}
