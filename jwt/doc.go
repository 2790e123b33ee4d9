// Package jwt creates and verifies the compact signed access tokens issued
// by the engine.
//
// Tokens are stateless: validity is purely a function of the HS256 signature
// and the registered claims (issuer, audience, expiry). Every verification
// failure collapses into [ErrInvalid]; the internal reason is only suitable
// for logging and must never reach a client, which would otherwise gain an
// oracle distinguishing expired from forged tokens.
package jwt
