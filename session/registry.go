package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "token:"

// ErrNotKnown is returned by Subject for tokens absent from the registry.
var ErrNotKnown = errors.New("session: token not known")

// Registry maps issued access tokens to their subject in a shared Redis
// store. Tokens stay cryptographically valid until their own expiry; the
// registry exists so logout can revoke one early. Validators that want the
// stricter check combine signature validation with IsKnown.
type Registry struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRegistry wraps client. A nil logger disables logging.
func NewRegistry(client *redis.Client, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{client: client, logger: logger}
}

// Remember records token→subjectID with the given TTL, which should match
// the token's own lifetime so the entry dies with the token.
func (r *Registry) Remember(ctx context.Context, token string, subjectID int64, ttl time.Duration) error {
	if err := r.client.Set(ctx, keyPrefix+token, subjectID, ttl).Err(); err != nil {
		return fmt.Errorf("session: remember token: %w", err)
	}
	return nil
}

// Forget removes the token's registry entry. Forgetting an unknown token
// is not an error; logout is idempotent.
func (r *Registry) Forget(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session: forget token: %w", err)
	}
	r.logger.Debug("token revoked")
	return nil
}

// IsKnown reports whether the token is still registered. Store errors are
// returned so the caller can fail closed.
func (r *Registry) IsKnown(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("session: registry lookup: %w", err)
	}
	return n > 0, nil
}

// Subject returns the subject id recorded for token, or ErrNotKnown.
func (r *Registry) Subject(ctx context.Context, token string) (int64, error) {
	val, err := r.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotKnown
	}
	if err != nil {
		return 0, fmt.Errorf("session: registry lookup: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("session: corrupt registry entry: %w", err)
	}
	return id, nil
}
