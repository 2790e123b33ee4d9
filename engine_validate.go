package authgate

import "context"

// Authenticate validates an access token and resolves the current
// principal. The claims subject is the login identifier; the account is
// re-read from the credential store so disabled accounts drop out within
// one access-token lifetime. Every token defect surfaces as the single
// opaque [ErrTokenInvalid]; the concrete reason is logged at debug level.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (UserRecord, error) {
	if e == nil {
		return UserRecord{}, ErrEngineNotReady
	}
	if accessToken == "" {
		return UserRecord{}, ErrTokenInvalid
	}

	claims, err := e.jwtManager.ParseAccess(accessToken)
	if err != nil {
		e.metricInc(MetricTokenInvalid)
		e.log.Debug().Err(err).Msg("access token rejected")
		return UserRecord{}, ErrTokenInvalid
	}

	user, err := e.users.GetUserByIdentifier(ctx, claims.Subject)
	if err != nil {
		e.metricInc(MetricTokenInvalid)
		return UserRecord{}, ErrTokenInvalid
	}
	if !user.Enabled {
		return UserRecord{}, ErrAccountDisabled
	}

	return user, nil
}

// VerifyAccess is the forward-auth decision primitive. It validates the
// token without touching any mutable state and reports the resolved role.
// The caller (the gate handler) maps the outcome to 302/403/200.
func (e *Engine) VerifyAccess(ctx context.Context, accessToken string) (UserRecord, error) {
	return e.Authenticate(ctx, accessToken)
}
