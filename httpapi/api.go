package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authgate "github.com/MrEthical07/authgate"
)

// API wires the engine to its HTTP surface.
type API struct {
	engine  *authgate.Engine
	config  authgate.Config
	cookies cookieWriter
	log     zerolog.Logger
}

// New creates the API. Cookie, CSRF and forward-auth settings are read from
// the engine's configuration.
func New(engine *authgate.Engine, log zerolog.Logger) *API {
	cfg := engine.Config()
	return &API{
		engine:  engine,
		config:  cfg,
		cookies: cookieWriter{config: cfg.Cookie},
		log:     log.With().Str("component", "httpapi").Logger(),
	}
}

// Router builds the gin engine with all routes and middleware mounted.
func (a *API) Router() *gin.Engine {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(a.recovery())
	router.Use(a.csrf())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", a.register)
		auth.POST("/login", a.login)
		auth.POST("/logout", a.requireAuth(), a.logout)
		auth.POST("/refresh-token", a.refreshToken)
		auth.GET("/verify", a.verify)
	}

	users := router.Group("/users", a.requireAuth())
	{
		users.GET("/me", a.currentUser)
		users.PUT("/me/profile", a.updateProfile)
		users.PATCH("/me/preferences", a.updatePreferences)
		users.PUT("/me/password", a.changePassword)
	}

	return router
}

// recovery is the single boundary for unhandled panics. Internals are
// logged; the client only ever sees the generic payload.
func (a *API) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				a.log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("handler panic")
				a.abortError(c, 500, "Internal Server Error", "an unexpected error occurred")
			}
		}()
		c.Next()
	}
}
