package httpapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// csrf implements double-submit protection. A script-readable cookie holds
// a random value; state-changing requests must echo it in the configured
// header. Cross-site pages cannot read the cookie, so they cannot forge the
// header.
//
// Validation is skipped for the /auth endpoints (no session exists yet to
// bind the token to) and for health/metadata reads. Safe methods are never
// validated but still receive a token cookie so the client has one to echo
// later.
func (a *API) csrf() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(a.config.CSRF.CookieName)
		if err != nil || cookie.Value == "" {
			token, genErr := newCSRFToken()
			if genErr != nil {
				a.abortError(c, 500, "Internal Server Error", "an unexpected error occurred")
				return
			}
			a.setCSRFCookie(c, token)
			cookie = &http.Cookie{Value: token}
		}

		if !mutatingMethod(c.Request.Method) || csrfExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		header := c.GetHeader(a.config.CSRF.HeaderName)
		if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
			a.abortError(c, 403, "Access Denied", "missing or mismatched CSRF token")
			return
		}

		c.Next()
	}
}

// setCSRFCookie writes the token cookie. Unlike the session cookies it is
// not HttpOnly: the client must be able to read it back into the header.
func (a *API) setCSRFCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     a.config.CSRF.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   a.config.Cookie.Domain,
		Secure:   a.config.Cookie.Secure,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
}

func mutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func csrfExempt(path string) bool {
	return strings.HasPrefix(path, "/auth/") || path == "/healthz"
}

func newCSRFToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
