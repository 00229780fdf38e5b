// Package lock provides named, non-blocking locks used to keep two accrual
// runs from overlapping. With Redis configured the lock spans processes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"github.com/redis/go-redis/v9"
	"strings"
	"sync"
	"time"
)

var ErrNotAcquired = errors.New("lock is held by another owner")

const defaultExpiry = 30 * time.Minute

type Locker interface {
	// WithLock runs fn while holding key, or returns ErrNotAcquired right away.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(rdb)),
		expiry: defaultExpiry,
	}
}

// WithExpiry bounds how long a crashed holder can keep the lock.
func (l *RedisLocker) WithExpiry(d time.Duration) *RedisLocker {
	l.expiry = d
	return l
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) || strings.Contains(err.Error(), "lock already taken") {
			return ErrNotAcquired
		}
		return fmt.Errorf("error acquiring lock %s: %w", key, err)
	}

	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			logger.Log.Warn("error releasing lock", logger.String("key", key), logger.Error(err))
		}
	}()

	return fn(ctx)
}

// LocalLocker is the single-process fallback.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if l.held[key] {
		l.mu.Unlock()
		return ErrNotAcquired
	}
	l.held[key] = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}()

	return fn(ctx)
}
