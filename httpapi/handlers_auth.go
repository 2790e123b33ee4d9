package httpapi

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	authgate "github.com/MrEthical07/authgate"
)

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required,max=50"`
	LastName  string `json:"lastName" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=200"`
	Locale    string `json:"locale" binding:"omitempty,bcp47_language_tag"`
	Theme     string `json:"theme" binding:"omitempty,oneof=light dark"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenRefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (a *API) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, http.StatusBadRequest, "Invalid Input", err.Error())
		return
	}

	result, err := a.engine.Register(c.Request.Context(), authgate.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Locale:    req.Locale,
		Theme:     req.Theme,
	})
	if err != nil {
		a.abortMapped(c, err)
		return
	}

	a.setAuthCookies(c, result)
	c.JSON(http.StatusCreated, toUserView(result.User))
}

func (a *API) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, http.StatusBadRequest, "Invalid Input", err.Error())
		return
	}

	result, err := a.engine.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		a.abortMapped(c, err)
		return
	}

	a.setAuthCookies(c, result)
	c.JSON(http.StatusOK, toUserView(result.User))
}

// logout clears the cookies no matter what happens upstream. Revocation is
// best effort by design: a dead Redis must not trap the user in a session.
func (a *API) logout(c *gin.Context) {
	if user, ok := principal(c); ok {
		a.engine.Logout(c.Request.Context(), user.UserID)
	}
	a.clearAuthCookies(c)
	c.Status(http.StatusOK)
}

func (a *API) refreshToken(c *gin.Context) {
	cookie, err := c.Request.Cookie(a.config.Cookie.RefreshName)
	if err != nil || cookie.Value == "" {
		a.abortError(c, http.StatusNotFound, "Resource Not Found", "refresh token missing")
		return
	}

	result, err := a.engine.Refresh(c.Request.Context(), cookie.Value)
	if err != nil {
		a.abortMapped(c, err)
		return
	}

	a.setAuthCookies(c, result)
	c.JSON(http.StatusOK, tokenRefreshResponse{AccessToken: result.AccessToken})
}

// verify is the forward-auth gate. The reverse proxy calls it on every
// proxied request and treats any 2xx as allow, anything else as deny. It
// mutates nothing and disables caching so stale decisions never apply.
//
//	anonymous            -> 302 to the login page, returnUrl = original URL
//	authenticated, USER  -> 403
//	authenticated, ADMIN -> 200, empty body
func (a *API) verify(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	token := a.accessTokenFrom(c)
	if token == "" {
		c.Redirect(http.StatusFound, a.loginRedirectURL(c))
		return
	}

	user, err := a.engine.VerifyAccess(c.Request.Context(), token)
	if err != nil {
		c.Redirect(http.StatusFound, a.loginRedirectURL(c))
		return
	}

	if user.Role != authgate.RoleAdmin {
		c.Status(http.StatusForbidden)
		return
	}
	c.Status(http.StatusOK)
}

// loginRedirectURL rebuilds the original destination from the proxy's
// X-Forwarded-* headers so the user lands back where they started after
// authenticating.
func (a *API) loginRedirectURL(c *gin.Context) string {
	proto := c.GetHeader("X-Forwarded-Proto")
	host := c.GetHeader("X-Forwarded-Host")
	uri := c.GetHeader("X-Forwarded-Uri")

	if proto == "" || host == "" {
		return a.config.ForwardAuth.LoginURL
	}

	original := proto + "://" + host + uri
	return a.config.ForwardAuth.LoginURL + "?returnUrl=" + url.QueryEscape(original)
}
