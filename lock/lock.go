package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "lock:"

// releaseScript deletes the lock only when the stored owner token matches.
// A client-side get-then-delete would race: the TTL can expire and another
// caller acquire the key between the two commands.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end
`

var releaseLua = redis.NewScript(releaseScript)

// Lock is a non-blocking distributed mutual-exclusion primitive over a
// shared Redis store. Mutual exclusion comes entirely from the store's
// atomic set-if-absent and the compare-and-delete script; there is no
// in-process state beyond the owner token returned to the caller.
//
// There is no renewal: when the protected operation outlives the TTL the
// key expires and a third party can acquire the lock mid-operation.
type Lock struct {
	client     *redis.Client
	defaultTTL time.Duration
	logger     *zap.Logger
}

// New wraps client. defaultTTL applies when TryAcquire is called with a
// non-positive ttl; a nil logger disables logging.
func New(client *redis.Client, defaultTTL time.Duration, logger *zap.Logger) *Lock {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lock{client: client, defaultTTL: defaultTTL, logger: logger}
}

// TryAcquire attempts a single atomic set-if-absent of "lock:"+key with a
// fresh random owner token and the given TTL. It returns the owner token
// and true on success; contention and store errors both report false with
// no retry. Callers implement their own backoff.
func (l *Lock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool) {
	if ttl <= 0 {
		ttl = l.defaultTTL
	}

	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, owner, ttl).Result()
	if err != nil {
		l.logger.Error("lock acquire failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	if !ok {
		l.logger.Debug("lock contended", zap.String("key", key))
		return "", false
	}

	l.logger.Debug("lock acquired", zap.String("key", key), zap.Duration("ttl", ttl))
	return owner, true
}

// Release deletes "lock:"+key only if it still stores owner, in one
// server-side script, and reports whether the delete happened. A false
// return means the lock expired, was never held, or belongs to someone
// else; in every case the other holder's lock is left intact.
func (l *Lock) Release(ctx context.Context, key, owner string) bool {
	if owner == "" {
		return false
	}

	res, err := releaseLua.Run(ctx, l.client, []string{keyPrefix + key}, owner).Int64()
	if err != nil {
		l.logger.Error("lock release failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if res == 0 {
		l.logger.Warn("lock not released, expired or owned by another caller",
			zap.String("key", key))
		return false
	}

	l.logger.Debug("lock released", zap.String("key", key))
	return true
}

// WithLock acquires key, runs op while holding it, and releases in a
// deferred block so the release happens on every exit path. The bool
// reports whether op ran at all; err is whatever op returned.
func (l *Lock) WithLock(ctx context.Context, key string, ttl time.Duration, op func(ctx context.Context) error) (ran bool, err error) {
	owner, ok := l.TryAcquire(ctx, key, ttl)
	if !ok {
		return false, nil
	}
	defer l.Release(ctx, key, owner)

	return true, op(ctx)
}
