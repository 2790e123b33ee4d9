package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authgate "github.com/MrEthical07/authgate"
)

// errorResponse is the single error payload shape returned by the API:
// a stable short error title, a human message, and the request path. Stack
// traces and internal reasons never appear here.
type errorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

func (a *API) abortError(c *gin.Context, status int, title, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     title,
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}

// abortMapped translates engine errors into HTTP responses. Unknown errors
// collapse into a generic 500; the detail is logged, not returned.
func (a *API) abortMapped(c *gin.Context, err error) {
	if lockout, ok := authgate.AsLockout(err); ok {
		seconds := int(lockout.RetryAfter.Seconds())
		c.Header("Retry-After", fmt.Sprintf("%d", seconds))
		a.abortError(c, http.StatusTooManyRequests, "Account Locked",
			fmt.Sprintf("too many failed attempts, retry in %d seconds", seconds))
		return
	}

	switch {
	case errors.Is(err, authgate.ErrInvalidCredentials):
		a.abortError(c, http.StatusUnauthorized, "Bad Credentials", "invalid email or password")
	case errors.Is(err, authgate.ErrAccountDisabled):
		a.abortError(c, http.StatusUnauthorized, "Account Disabled", "this account is disabled")
	case errors.Is(err, authgate.ErrIdentifierConflict):
		a.abortError(c, http.StatusConflict, "Data Conflict", "email is already in use")
	case errors.Is(err, authgate.ErrSessionExpired):
		a.abortError(c, http.StatusNotFound, "Resource Not Found", "refresh token not found, please login again")
	case errors.Is(err, authgate.ErrTokenInvalid):
		a.abortError(c, http.StatusUnauthorized, "Unauthorized", "invalid or expired session")
	case errors.Is(err, authgate.ErrUserNotFound):
		a.abortError(c, http.StatusNotFound, "Resource Not Found", "user not found")
	case errors.Is(err, authgate.ErrPasswordMismatch),
		errors.Is(err, authgate.ErrPasswordConfirmation):
		a.abortError(c, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, authgate.ErrStoreUnavailable):
		a.abortError(c, http.StatusServiceUnavailable, "Service Unavailable", "please try again later")
	default:
		a.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		a.abortError(c, http.StatusInternalServerError, "Internal Server Error", "an unexpected error occurred")
	}
}

// userView is the public representation of an account. The password hash
// never leaves the server.
type userView struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Enabled   bool      `json:"enabled"`
	Locale    string    `json:"locale"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserView(u authgate.UserRecord) userView {
	return userView{
		ID:        u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
		Enabled:   u.Enabled,
		Locale:    u.Locale,
		Theme:     u.Theme,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
