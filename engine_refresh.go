package authgate

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authgate/refresh"
)

// Refresh exchanges a raw refresh token for a brand-new token pair. The
// presented token is consumed by the exchange: the old pair is deleted when
// the new one is issued, so a replayed token resolves to nothing and the
// client must log in again. Unresolvable tokens fail with [ErrSessionExpired]
// regardless of why they are unresolvable.
func (e *Engine) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if rawToken == "" {
		return nil, ErrSessionExpired
	}

	userID, err := e.refreshStore.Resolve(ctx, rawToken)
	if err != nil {
		if errors.Is(err, refresh.ErrNotFound) {
			e.metricInc(MetricRefreshExpired)
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Account deleted since issuance; drop the orphaned pair.
			if revokeErr := e.refreshStore.Revoke(ctx, userID); revokeErr != nil {
				e.log.Warn().Err(revokeErr).Msg("orphan refresh revoke failed")
			}
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !user.Enabled {
		return nil, ErrAccountDisabled
	}

	result, err := e.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricRefreshSuccess)
	return result, nil
}

// Logout revokes the user's refresh token. It is idempotent and never
// fails on store errors: trapping a user in a broken session is worse than
// leaving a TTL-bound entry behind, so failures are logged and swallowed.
// Cookie clearing is the transport layer's job and happens regardless.
func (e *Engine) Logout(ctx context.Context, userID string) {
	if e == nil || userID == "" {
		return
	}
	if err := e.refreshStore.Revoke(ctx, userID); err != nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("logout revoke failed")
	}
	e.metricInc(MetricLogout)
}
