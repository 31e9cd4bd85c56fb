// Package authkit is an embeddable authentication and authorization
// toolkit for multi-tenant services. It issues and validates HS256 JWTs
// carrying a role/permission snapshot, keeps a revocable session
// registry in redis, resolves effective permissions through a pluggable
// assignment store, and ships HTTP middleware that enforces login, role,
// and permission requirements per route.
//
// Construct an Engine through the Builder:
//
//	engine, err := authkit.New().
//		WithConfig(cfg).
//		WithRedis(client).
//		WithUserProvider(users).
//		WithAssignmentStore(store).
//		Build()
//
// The sub-packages are usable on their own: jwt for the token service,
// rbac for permission resolution and guarding, menu for permission-aware
// navigation trees, lock for the redis distributed lock, session for the
// token registry, identity for the request-scoped principal, and
// password for argon2id hashing.
package authkit
