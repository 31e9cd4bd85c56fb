package authkit

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBuildRejectsInvalidConfig(t *testing.T) {
	users := &fakeUsers{records: map[string]*UserRecord{}}

	if _, err := New().WithUserProvider(users).Build(); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestBuildRequiresUserProvider(t *testing.T) {
	if _, err := New().WithConfig(engineTestConfig()).Build(); err == nil {
		t.Fatal("expected error for missing user provider")
	}
}

func TestBuildStrictModeRequiresRedis(t *testing.T) {
	users := &fakeUsers{records: map[string]*UserRecord{}}

	if _, err := New().WithConfig(engineTestConfig()).WithUserProvider(users).Build(); err == nil {
		t.Fatal("expected error without redis in strict mode")
	}
}

func TestBuildJWTOnlyWithoutRedis(t *testing.T) {
	cfg := engineTestConfig()
	cfg.ValidationMode = ModeJWTOnly
	users := &fakeUsers{records: map[string]*UserRecord{}}

	engine, err := New().WithConfig(cfg).WithUserProvider(users).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if engine.Registry() != nil || engine.Locks() != nil {
		t.Fatal("expected no redis-backed components")
	}
	if engine.Tokens() == nil || engine.Guard() == nil {
		t.Fatal("expected token manager and guard")
	}
	// Without an assignment store the fresh guard falls back to the
	// snapshot guard.
	if engine.FreshGuard() != engine.Guard() {
		t.Fatal("expected snapshot guard without a store")
	}
}

func TestBuildWiresRedisComponents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	users := &fakeUsers{records: map[string]*UserRecord{}}
	engine, err := New().
		WithConfig(engineTestConfig()).
		WithRedis(rdb).
		WithUserProvider(users).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if engine.Registry() == nil || engine.Locks() == nil {
		t.Fatal("expected registry and lock to be wired")
	}
	if engine.Resolver() != nil {
		t.Fatal("expected no resolver without an assignment store")
	}
}
