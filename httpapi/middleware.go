package httpapi

import (
	"github.com/gin-gonic/gin"

	authgate "github.com/MrEthical07/authgate"
)

const principalKey = "httpapi.principal"

// requireAuth resolves the current principal from the access token and
// aborts with 401 when there is none. The resolved record is stashed in the
// request context for handlers.
func (a *API) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := a.accessTokenFrom(c)
		if token == "" {
			a.abortError(c, 401, "Unauthorized", "authentication required")
			return
		}

		user, err := a.engine.Authenticate(c.Request.Context(), token)
		if err != nil {
			a.abortError(c, 401, "Unauthorized", "invalid or expired session")
			return
		}

		c.Set(principalKey, user)
		c.Next()
	}
}

// principal returns the authenticated user stored by requireAuth.
func principal(c *gin.Context) (authgate.UserRecord, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return authgate.UserRecord{}, false
	}
	user, ok := value.(authgate.UserRecord)
	return user, ok
}
