package authkit

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openthedoor/authkit/jwt"
	"github.com/openthedoor/authkit/lock"
	"github.com/openthedoor/authkit/password"
	"github.com/openthedoor/authkit/rbac"
	"github.com/openthedoor/authkit/session"
)

// Builder assembles an Engine. Configure it with the With* methods and
// call Build once.
type Builder struct {
	config Config
	redis  *redis.Client

	users  UserProvider
	store  rbac.Store
	hasher password.Hasher
	logger *zap.Logger
}

// New returns a Builder with default configuration.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the shared store used by the session registry and the
// distributed lock. Required unless the validation mode is jwt-only and
// the lock is never used.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserProvider sets the credential lookup used by the login flow.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.users = up
	return b
}

// WithAssignmentStore sets the role/permission assignment reader. Without
// it, tokens are issued with empty snapshots and guards evaluate whatever
// the token carries.
func (b *Builder) WithAssignmentStore(store rbac.Store) *Builder {
	b.store = store
	return b
}

// WithPasswordHasher overrides the default argon2id hasher.
func (b *Builder) WithPasswordHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and wires the Engine.
func (b *Builder) Build() (*Engine, error) {
	if err := b.config.validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("authkit: user provider is required")
	}
	if b.redis == nil && b.config.ValidationMode == ModeStrict {
		return nil, errors.New("authkit: strict validation requires redis")
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	hasher := b.hasher
	if hasher == nil {
		var err error
		hasher, err = password.NewArgon2(password.DefaultConfig())
		if err != nil {
			return nil, err
		}
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:     []byte(b.config.JWT.Secret),
		AccessTTL:  b.config.JWT.AccessTTL,
		RefreshTTL: b.config.JWT.RefreshTTL,
		Issuer:     b.config.JWT.Issuer,
		Audience:   b.config.JWT.Audience,
		Leeway:     b.config.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  b.config,
		tokens:  tokens,
		users:   b.users,
		hasher:  hasher,
		logger:  logger,
		guard:   rbac.NewGuard(logger),
		metrics: NewMetrics(b.config.Metrics),
	}

	if b.store != nil {
		engine.resolver = rbac.NewResolver(b.store, logger)
	}
	if b.redis != nil {
		engine.registry = session.NewRegistry(b.redis, logger)
		engine.locks = lock.New(b.redis, b.config.Lock.DefaultTTL, logger)
	}

	return engine, nil
}
