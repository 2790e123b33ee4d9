package authgate

import (
	"context"
	"errors"
	"fmt"
)

// UpdateProfile delegates the core-profile mutation to the credential
// store. Changing the email changes the login identifier: outstanding
// access tokens still carry the old subject, which no longer resolves, so
// the client has to re-authenticate after an email change.
func (e *Engine) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (UserRecord, error) {
	if e == nil {
		return UserRecord{}, ErrEngineNotReady
	}
	update.Email = normalizeIdentifier(update.Email)

	user, err := e.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, ErrIdentifierConflict) || errors.Is(err, ErrUserNotFound) {
			return UserRecord{}, err
		}
		return UserRecord{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return user, nil
}

// UpdatePreferences delegates the locale/theme mutation to the credential
// store.
func (e *Engine) UpdatePreferences(ctx context.Context, userID string, update PreferencesUpdate) (UserRecord, error) {
	if e == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	user, err := e.users.UpdatePreferences(ctx, userID, update)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return UserRecord{}, err
		}
		return UserRecord{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return user, nil
}

// ChangePassword verifies the current password, checks the confirmation,
// stores the new hash and revokes the active refresh token. Revocation is
// deliberate: a password change usually means the old credential is
// suspected compromised, so other agents holding the refresh token are
// forced to re-authenticate.
func (e *Engine) ChangePassword(ctx context.Context, userID, current, newPass, confirmation string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if newPass != confirmation {
		return ErrPasswordConfirmation
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.hasher.Verify(current, user.PasswordHash)
	if err != nil || !ok {
		return ErrPasswordMismatch
	}

	hash, err := e.hasher.Hash(newPass)
	if err != nil {
		return err
	}
	if err := e.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := e.refreshStore.Revoke(ctx, userID); err != nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("post-change refresh revoke failed")
	}
	return nil
}
