// Package httpapi exposes the engine over HTTP: the /auth endpoints, the
// /users/me account surface, the forward-auth gate consumed by the reverse
// proxy, cookie transport for both tokens and double-submit CSRF
// protection.
//
// Tokens travel only in HttpOnly Secure SameSite=Strict cookies; scripts
// never see them. The CSRF cookie is the one exception: the double-submit
// pattern requires the client to read it back into a header.
package httpapi
