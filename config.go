package authgate

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine and its HTTP surface. Build a
// value with [DefaultConfig], adjust, then pass it to [Builder.WithConfig].
// Configs are treated as immutable after Build.
type Config struct {
	JWT         JWTConfig
	Refresh     RefreshConfig
	Security    SecurityConfig
	Password    PasswordConfig
	Cookie      CookieConfig
	CSRF        CSRFConfig
	ForwardAuth ForwardAuthConfig
}

// JWTConfig configures the access-token signer. The key is symmetric
// (HS256) and must be at least 256 bits; it is loaded once at startup and
// never logged.
type JWTConfig struct {
	Secret    []byte
	AccessTTL time.Duration
	Issuer    string
	Audience  string
	Leeway    time.Duration
}

// RefreshConfig configures the opaque refresh-token store.
type RefreshConfig struct {
	TTL time.Duration
}

// SecurityConfig configures brute-force lockout.
//
// FailOpen controls behavior when the attempt store is unreachable during a
// lockout check. The default (false) rejects the login: skipping the guard
// would let an attacker brute-force through a Redis outage. Setting it true
// trades that protection for availability and must be a deliberate choice.
type SecurityConfig struct {
	MaxLoginAttempts int
	LockoutWindow    time.Duration
	LockoutDuration  time.Duration
	FailOpen         bool
}

// PasswordConfig tunes Argon2id hashing. Memory is in KiB.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// CookieConfig names the token cookies and fixes their shared attributes.
// Clearing repeats exactly the same attributes with Max-Age=0; browsers
// silently ignore clears whose attributes differ from the set.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Domain      string
	Secure      bool
}

// CSRFConfig configures double-submit protection. The cookie is readable by
// script (not HttpOnly) so the client can echo it in the header.
type CSRFConfig struct {
	CookieName string
	HeaderName string
}

// ForwardAuthConfig configures the /auth/verify gate. LoginURL is the page
// anonymous callers are redirected to, with the original destination
// percent-encoded into a returnUrl query parameter.
type ForwardAuthConfig struct {
	LoginURL string
}

const (
	minAccessTTL  = time.Minute
	maxAccessTTL  = time.Hour
	minRefreshTTL = time.Hour
	maxRefreshTTL = 30 * 24 * time.Hour
	minSecretLen  = 32
)

// DefaultConfig returns the baseline configuration. The JWT secret is left
// empty on purpose and must be provided by the caller.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 15 * time.Minute,
			Issuer:    "authgate",
			Audience:  "authgate-clients",
			Leeway:    30 * time.Second,
		},
		Refresh: RefreshConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Security: SecurityConfig{
			MaxLoginAttempts: 5,
			LockoutWindow:    15 * time.Minute,
			LockoutDuration:  15 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Cookie: CookieConfig{
			AccessName:  "access_token",
			RefreshName: "refresh_token",
			Secure:      true,
		},
		CSRF: CSRFConfig{
			CookieName: "XSRF-TOKEN",
			HeaderName: "X-XSRF-TOKEN",
		},
		ForwardAuth: ForwardAuthConfig{
			LoginURL: "/login",
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	return out
}

// Validate checks bounds the rest of the engine relies on.
func (c Config) Validate() error {
	if len(c.JWT.Secret) < minSecretLen {
		return errors.New("jwt secret must be at least 256 bits")
	}
	if c.JWT.AccessTTL < minAccessTTL || c.JWT.AccessTTL > maxAccessTTL {
		return errors.New("access token TTL must be between 1 minute and 1 hour")
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		return errors.New("jwt issuer and audience are required")
	}
	if c.Refresh.TTL < minRefreshTTL || c.Refresh.TTL > maxRefreshTTL {
		return errors.New("refresh token TTL must be between 1 hour and 30 days")
	}
	if c.Security.MaxLoginAttempts < 1 {
		return errors.New("max login attempts must be at least 1")
	}
	if c.Security.LockoutWindow <= 0 || c.Security.LockoutDuration <= 0 {
		return errors.New("lockout window and duration must be positive")
	}
	if c.Cookie.AccessName == "" || c.Cookie.RefreshName == "" {
		return errors.New("cookie names are required")
	}
	if c.Cookie.AccessName == c.Cookie.RefreshName {
		return errors.New("access and refresh cookie names must differ")
	}
	if c.CSRF.CookieName == "" || c.CSRF.HeaderName == "" {
		return errors.New("csrf cookie and header names are required")
	}
	if c.ForwardAuth.LoginURL == "" {
		return errors.New("forward-auth login URL is required")
	}
	return nil
}
