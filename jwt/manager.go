package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalid is the single opaque verification failure. The wrapped detail
// is for logs only.
var ErrInvalid = errors.New("invalid token")

// Config holds the signer configuration. The secret is symmetric key
// material of at least 256 bits, loaded once at startup.
type Config struct {
	Secret    []byte
	AccessTTL time.Duration
	Issuer    string
	Audience  string
	Leeway    time.Duration
}

// Manager signs and verifies access tokens with a single algorithm fixed at
// construction. Managers are immutable and safe for concurrent use.
type Manager struct {
	config Config
}

// AccessClaims is the claims set carried by every access token. Subject is
// the login identifier; Role is the authority scope.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewManager validates the configuration and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("secret must be at least 256 bits")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if cfg.Audience == "" {
		return nil, errors.New("audience is required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	cfg.Secret = append([]byte(nil), cfg.Secret...)
	return &Manager{config: cfg}, nil
}

// CreateAccess issues a signed token for the given subject and role. Each
// token gets a random unique ID, issued-at = now and expiry = now + TTL.
func (m *Manager) CreateAccess(subject, role string) (string, error) {
	now := time.Now()

	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// ParseAccess verifies signature, issuer, audience and expiry, in that
// order of trust. Any failure returns an error wrapping [ErrInvalid].
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalid
	}

	return claims, nil
}

// TTL exposes the configured access-token lifetime (cookie Max-Age needs it).
func (m *Manager) TTL() time.Duration {
	return m.config.AccessTTL
}
