// Package rbac resolves role-based access rights and gates protected
// operations.
//
// The Resolver expands a subject's assigned roles into effective role and
// permission sets by reading the assignment tables through a Store
// implemented by the persistence layer. The Guard evaluates declarative
// requirements (login required; permission or role lists combined with AND
// or OR) against the current request identity and reports failures as a
// structured Denied outcome that distinguishes authentication from
// authorization failures.
package rbac
