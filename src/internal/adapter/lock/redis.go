package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:ledger-loan:"

var _ domain.Locker = (*RedisLocker)(nil)

type RedisOptions struct {
	Expiry      time.Duration
	Tries       int
	RetryDelay  time.Duration
	DriftFactor float64
}

func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Expiry:      10 * time.Second,
		Tries:       32,
		RetryDelay:  50 * time.Millisecond,
		DriftFactor: 0.01,
	}
}

// RedisLocker holds per-aggregate locks in Redis so several service instances
// share one set of critical sections.
type RedisLocker struct {
	redsync *redsync.Redsync
	opts    RedisOptions
}

func NewRedisLocker(client redis.UniversalClient, opts RedisOptions) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if opts.Expiry <= 0 || opts.Tries < 1 || opts.RetryDelay < 0 {
		return nil, fmt.Errorf("invalid redis lock options: %+v", opts)
	}

	return &RedisLocker{
		redsync: redsync.New(goredis.NewPool(client)),
		opts:    opts,
	}, nil
}

func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	ordered := orderedKeys(keys)
	held := make([]*redsync.Mutex, 0, len(ordered))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			mutex := held[i]
			if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
				logger.Warn("redis lock release failed", logger.Fields{
					"lockKey":  mutex.Name(),
					"unlockOk": ok,
					"reason":   fmt.Sprint(err),
				})
			}
		}
	}

	for _, key := range ordered {
		mutex := l.redsync.NewMutex(
			keyPrefix+key,
			redsync.WithExpiry(l.opts.Expiry),
			redsync.WithTries(l.opts.Tries),
			redsync.WithRetryDelay(l.opts.RetryDelay),
			redsync.WithDriftFactor(l.opts.DriftFactor),
		)
		if err := mutex.LockContext(ctx); err != nil {
			release()
			if isContention(err) {
				return nil, fmt.Errorf("%w: lock %s is busy", domain.ErrConcurrentModification, key)
			}
			logger.Error("redis lock acquire failed", err, logger.Fields{"lockKey": key})
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		held = append(held, mutex)
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

func isContention(err error) bool {
	return errors.Is(err, redsync.ErrFailed) || strings.Contains(err.Error(), "lock already taken")
}
