package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes access tokens from refresh tokens inside the
// signed claim set.
type TokenType string

const (
	// TypeAccess marks short-lived tokens presented on every request.
	TypeAccess TokenType = "access"
	// TypeRefresh marks long-lived tokens accepted only by the refresh flow.
	TypeRefresh TokenType = "refresh"
)

// Typed parse failures. Callers that only need a yes/no answer can treat
// any of them as "invalid token"; the distinction exists for diagnostics.
var (
	ErrMissingToken = errors.New("jwt: missing token")
	ErrMalformed    = errors.New("jwt: malformed token")
	ErrExpired      = errors.New("jwt: token expired")
	ErrBadSignature = errors.New("jwt: signature verification failed")
	ErrUnsupported  = errors.New("jwt: unsupported token")
	ErrWrongType    = errors.New("jwt: unexpected token type")
)

// Config carries the static signing parameters. Instances are set once at
// construction and never mutated afterwards.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Audience   string
	Leeway     time.Duration
}

// Identity is the subject snapshot embedded into a token at issuance.
type Identity struct {
	UserID      int64
	Username    string
	TenantID    string
	UserType    int
	Roles       []string
	Permissions []string
}

// Claims is the full claim set carried by every token issued here. The
// roles/permissions snapshot is frozen at issuance; it is not re-checked
// against the assignment tables until the token is reissued.
type Claims struct {
	UserID      int64     `json:"userId"`
	TenantID    string    `json:"tenantId"`
	TokenType   TokenType `json:"tokenType"`
	UserType    int       `json:"userType,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Identity rebuilds the subject snapshot from parsed claims.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:      c.UserID,
		Username:    c.Subject,
		TenantID:    c.TenantID,
		UserType:    c.UserType,
		Roles:       c.Roles,
		Permissions: c.Permissions,
	}
}

// Username returns the subject claim, which carries the login name.
func (c *Claims) Username() string {
	return c.Subject
}

// Manager issues and verifies HMAC-SHA256 signed tokens. It is a pure
// cryptographic transform plus clock comparison; no storage or network
// side effects.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: hs256 requires a signing secret")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwt: invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwt: invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// AccessTTL exposes the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.config.AccessTTL
}

// IssueAccess builds and signs an access token for the given subject with
// the effective role and permission codes embedded as a snapshot.
func (m *Manager) IssueAccess(id Identity) (string, error) {
	return m.issue(id, TypeAccess, m.config.AccessTTL)
}

// IssueRefresh builds and signs a refresh token. It carries the same
// snapshot as the access token so a later refresh can mint a new access
// token without a database lookup.
func (m *Manager) IssueRefresh(id Identity) (string, error) {
	return m.issue(id, TypeRefresh, m.config.RefreshTTL)
}

func (m *Manager) issue(id Identity, kind TokenType, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:      id.UserID,
		TenantID:    id.TenantID,
		TokenType:   kind,
		UserType:    id.UserType,
		Roles:       id.Roles,
		Permissions: id.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Parse verifies the signature, structure, and expiry of token and returns
// its claims. Failures are reported as one of the typed sentinel errors so
// callers can log the specific kind while still treating every one of them
// as "not authenticated".
func (m *Manager) Parse(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, normalizeError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// ParseType parses token and additionally requires its tokenType claim to
// match want. The refresh flow uses it to reject access tokens.
func (m *Manager) ParseType(token string, want TokenType) (*Claims, error) {
	claims, err := m.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != want {
		return nil, ErrWrongType
	}
	return claims, nil
}

// Validate reports whether token parses cleanly. Convenience wrapper for
// callers that do not need the claims.
func (m *Manager) Validate(token string) bool {
	_, err := m.Parse(token)
	return err == nil
}

// ExtractUserID returns the userId claim. Fails on any invalid token.
func (m *Manager) ExtractUserID(token string) (int64, error) {
	claims, err := m.Parse(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ExtractUsername returns the subject claim. Fails on any invalid token.
func (m *Manager) ExtractUsername(token string) (string, error) {
	claims, err := m.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractTenantID returns the tenantId claim. Fails on any invalid token.
func (m *Manager) ExtractTenantID(token string) (string, error) {
	claims, err := m.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.TenantID, nil
}

// ExpiringSoon reports whether token has less than threshold of lifetime
// left. Unparseable tokens report true so callers refresh rather than keep
// presenting a token that is about to be rejected.
func (m *Manager) ExpiringSoon(token string, threshold time.Duration) bool {
	claims, err := m.Parse(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) < threshold
}

// FromHeader strips prefix (e.g. "Bearer ") from an Authorization header
// value. Returns false when the header is empty or carries a different
// scheme.
func FromHeader(value, prefix string) (string, bool) {
	if !strings.HasPrefix(value, prefix) {
		return "", false
	}
	token := value[len(prefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

func normalizeError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		// issuer or audience mismatch, missing exp, unexpected algorithm
		// and the rest of the claim validation failures.
		return ErrUnsupported
	}
}
