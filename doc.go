// Package authgate is the authentication and session-management core for a
// multi-service deployment sitting behind a reverse proxy.
//
// It verifies credentials against a pluggable [UserProvider], issues short
// lived signed access tokens and opaque rotating refresh tokens, enforces
// brute-force lockout with Redis-backed TTL counters, and answers
// forward-auth decisions for the proxy.
//
// The [Engine] is built once at startup via the [Builder]:
//
//	engine, err := authgate.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithUserProvider(provider).
//		Build()
//
// The HTTP surface (cookies, CSRF double-submit, the /auth/verify gate) lives
// in the httpapi subpackage; persistence adapters live under userstore.
package authgate
