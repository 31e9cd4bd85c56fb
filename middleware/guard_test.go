package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authkit "github.com/openthedoor/authkit"
	"github.com/openthedoor/authkit/identity"
	"github.com/openthedoor/authkit/password"
	"github.com/openthedoor/authkit/rbac"
)

type staticUsers struct {
	user *authkit.UserRecord
}

func (s *staticUsers) FindByUsername(_ context.Context, tenantID, username string) (*authkit.UserRecord, error) {
	if s.user != nil && s.user.TenantID == tenantID && s.user.Username == username {
		return s.user, nil
	}
	return nil, authkit.ErrUserNotFound
}

type staticAssignments struct{}

func (staticAssignments) RolesBySubject(context.Context, int64) ([]rbac.Role, error) {
	return []rbac.Role{{ID: 1, Code: "editor", Status: rbac.StatusActive}}, nil
}

func (staticAssignments) PermissionsByRoles(context.Context, []int64) ([]rbac.Permission, error) {
	return []rbac.Permission{{ID: 1, Code: "doc:edit", Status: rbac.StatusActive}}, nil
}

// newGuardedEngine returns an engine plus a valid access token for its
// single user dave.
func newGuardedEngine(t *testing.T) (*authkit.Engine, string) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hasher, err := password.NewArgon2(password.Config{
		Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	hash, err := hasher.Hash("pw")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	cfg := authkit.DefaultConfig()
	cfg.JWT.Secret = "middleware-test-secret"

	engine, err := authkit.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(&staticUsers{user: &authkit.UserRecord{
			ID: 7, Username: "dave", TenantID: "t1",
			PasswordHash: hash, Status: authkit.UserStatusActive,
		}}).
		WithAssignmentStore(staticAssignments{}).
		WithPasswordHasher(hasher).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := engine.Login(context.Background(), "t1", "dave", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return engine, res.AccessToken
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateInjectsPrincipal(t *testing.T) {
	engine, token := newGuardedEngine(t)

	var seen *identity.Principal
	handler := Authenticate(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.Username != "dave" || seen.UserID != 7 {
		t.Fatalf("unexpected principal %+v", seen)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	engine, token := newGuardedEngine(t)
	handler := Authenticate(engine)(okHandler())

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + token},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthenticateRevokedToken(t *testing.T) {
	engine, token := newGuardedEngine(t)
	if err := engine.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	handler := Authenticate(engine)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked token, got %d", rec.Code)
	}

	// JWT-only routes keep accepting it until exp.
	handler = AuthenticateJWTOnly(engine)(okHandler())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on jwt-only route, got %d", rec.Code)
	}
}

func TestRequirePermissions(t *testing.T) {
	engine, token := newGuardedEngine(t)

	newRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	granted := Authenticate(engine)(
		RequirePermissions(engine.Guard(), rbac.AND, "doc:edit")(okHandler()))
	rec := httptest.NewRecorder()
	granted.ServeHTTP(rec, newRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with granted permission, got %d", rec.Code)
	}

	denied := Authenticate(engine)(
		RequirePermissions(engine.Guard(), rbac.AND, "doc:edit", "doc:delete")(okHandler()))
	rec = httptest.NewRecorder()
	denied.ServeHTTP(rec, newRequest())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing permission, got %d", rec.Code)
	}

	anyOf := Authenticate(engine)(
		RequirePermissions(engine.Guard(), rbac.OR, "doc:edit", "doc:delete")(okHandler()))
	rec = httptest.NewRecorder()
	anyOf.ServeHTTP(rec, newRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 under OR, got %d", rec.Code)
	}
}

func TestRequireRolesAndLogin(t *testing.T) {
	engine, token := newGuardedEngine(t)

	// No principal in context at all: 401, not 403.
	bare := RequireLogin(engine.Guard())(okHandler())
	rec := httptest.NewRecorder()
	bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	roleOK := Authenticate(engine)(
		RequireRoles(engine.Guard(), rbac.AND, "editor")(okHandler()))
	rec = httptest.NewRecorder()
	roleOK.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with held role, got %d", rec.Code)
	}

	roleDenied := Authenticate(engine)(
		RequireRoles(engine.Guard(), rbac.AND, "owner")(okHandler()))
	rec = httptest.NewRecorder()
	roleDenied.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing role, got %d", rec.Code)
	}
}

func TestRequireDescriptor(t *testing.T) {
	engine, token := newGuardedEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	handler := Authenticate(engine)(
		Require(engine.Guard(), rbac.Requirement{
			Login:       true,
			Logic:       rbac.AND,
			Permissions: []string{"doc:edit"},
			Roles:       []string{"editor"},
		})(okHandler()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestNilEngineRejects(t *testing.T) {
	handler := Authenticate(nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
