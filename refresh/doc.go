// Package refresh manages the opaque refresh-token lifecycle in Redis.
//
// Raw tokens never touch the store. Two SHA-256-keyed entries exist per
// principal, both bound to the same TTL:
//
//	refresh_token::<hash(raw)>            -> userID
//	user_refresh_token::<hash(userID)>    -> hash(raw)
//
// The reverse index makes revocation by principal possible and enforces the
// single-active-session policy: issuing always revokes the previous pair
// first. Rotation is single-use, never sliding: a resolved token must be
// replaced, so a stolen token is good for at most one exchange.
package refresh
