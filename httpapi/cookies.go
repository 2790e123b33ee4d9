package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authgate "github.com/MrEthical07/authgate"
)

// cookieWriter mints and clears the token cookies. Both operations emit the
// exact same attribute set: browsers silently ignore a clear whose
// attributes differ from the original Set-Cookie.
type cookieWriter struct {
	config authgate.CookieConfig
}

func (w cookieWriter) set(c *gin.Context, name, value string, maxAge time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   w.config.Domain,
		MaxAge:   int(maxAge.Seconds()),
		Secure:   w.config.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (w cookieWriter) clear(c *gin.Context, name string) {
	// MaxAge < 0 serializes as Max-Age=0, the immediate-expiry form.
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   w.config.Domain,
		MaxAge:   -1,
		Secure:   w.config.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// setAuthCookies binds a freshly issued token pair to the response. Cookie
// lifetimes mirror the token lifetimes.
func (a *API) setAuthCookies(c *gin.Context, result *authgate.LoginResult) {
	a.cookies.set(c, a.config.Cookie.AccessName, result.AccessToken, a.config.JWT.AccessTTL)
	a.cookies.set(c, a.config.Cookie.RefreshName, result.RefreshToken, a.config.Refresh.TTL)
}

func (a *API) clearAuthCookies(c *gin.Context) {
	a.cookies.clear(c, a.config.Cookie.AccessName)
	a.cookies.clear(c, a.config.Cookie.RefreshName)
}

// accessTokenFrom extracts the access token: the HttpOnly cookie first,
// then the standard Authorization header as a fallback for API clients.
func (a *API) accessTokenFrom(c *gin.Context) string {
	if cookie, err := c.Request.Cookie(a.config.Cookie.AccessName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	const bearer = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(bearer) && header[:len(bearer)] == bearer {
		return header[len(bearer):]
	}
	return ""
}
