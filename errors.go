package authgate

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrInvalidCredentials is returned on identifier/password mismatch.
	// It deliberately does not distinguish "unknown user" from "wrong password".
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is returned while an identifier is under brute-force
	// lockout. Use [AsLockout] to recover the remaining duration.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountDisabled is returned when the account exists but is disabled.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrIdentifierConflict is returned by Register when the email is taken.
	ErrIdentifierConflict = errors.New("identifier already in use")
	// ErrSessionExpired is returned when a refresh token cannot be resolved:
	// expired, rotated away, revoked, or never issued. The reason is not
	// distinguished.
	ErrSessionExpired = errors.New("session expired")
	// ErrTokenInvalid collapses every access-token validation failure
	// (malformed, forged, wrong issuer or audience, expired) into a single
	// opaque result. The distinct reason is logged, never surfaced.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrUserNotFound is returned by UserProvider implementations when no
	// account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrPasswordMismatch is returned by ChangePassword when the current
	// password does not verify.
	ErrPasswordMismatch = errors.New("current password incorrect")
	// ErrPasswordConfirmation is returned by ChangePassword when the new
	// password and its confirmation differ.
	ErrPasswordConfirmation = errors.New("password confirmation does not match")
	// ErrStoreUnavailable is returned when the shared key-value store or the
	// credential store cannot be reached. Login and refresh fail closed on it.
	ErrStoreUnavailable = errors.New("backing store unavailable")
)

// LockoutError carries the remaining lockout duration alongside
// [ErrAccountLocked].
type LockoutError struct {
	RetryAfter time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("account locked, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *LockoutError) Unwrap() error { return ErrAccountLocked }

// AsLockout extracts the lockout detail from an error chain, if present.
func AsLockout(err error) (*LockoutError, bool) {
	var le *LockoutError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
