// Command authgated runs the authentication service.
//
// Configuration comes from the environment (optionally a .env file or an
// authgate.yaml next to the binary), prefixed AUTHGATE_. The only required
// setting is AUTHGATE_JWT_SECRET, at least 32 bytes. Without
// AUTHGATE_DATABASE_URL the service falls back to the in-memory user store,
// which is for development only.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	authgate "github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/httpapi"
	"github.com/MrEthical07/authgate/password"
	"github.com/MrEthical07/authgate/userstore/memory"
	"github.com/MrEthical07/authgate/userstore/postgres"
)

func main() {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AUTHGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("authgate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			stderrFatal("read config: " + err.Error())
		}
	}

	log := newLogger(v.GetString("log.level"))

	cfg := authgate.DefaultConfig()
	cfg.JWT.Secret = []byte(v.GetString("jwt.secret"))
	cfg.JWT.AccessTTL = v.GetDuration("jwt.access_ttl")
	cfg.JWT.Issuer = v.GetString("jwt.issuer")
	cfg.JWT.Audience = v.GetString("jwt.audience")
	cfg.Refresh.TTL = v.GetDuration("refresh.ttl")
	cfg.Security.MaxLoginAttempts = v.GetInt("security.max_login_attempts")
	cfg.Security.LockoutWindow = v.GetDuration("security.lockout_window")
	cfg.Security.LockoutDuration = v.GetDuration("security.lockout_duration")
	cfg.Security.FailOpen = v.GetBool("security.fail_open")
	cfg.Cookie.Domain = v.GetString("cookie.domain")
	cfg.Cookie.Secure = v.GetBool("cookie.secure")
	cfg.ForwardAuth.LoginURL = v.GetString("forward_auth.login_url")

	rdb := redis.NewClient(&redis.Options{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("redis unreachable")
	}
	cancel()

	provider, cleanup, err := buildProvider(v, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("user store init failed")
	}
	defer cleanup()

	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(provider).
		WithLogger(log).
		Build()
	if err != nil {
		log.Fatal().Err(err).Msg("engine build failed")
	}

	api := httpapi.New(engine, log)
	server := &http.Server{
		Addr:         v.GetString("server.addr"),
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.issuer", "authgate")
	v.SetDefault("jwt.audience", "authgate-clients")
	v.SetDefault("refresh.ttl", 7*24*time.Hour)
	v.SetDefault("security.max_login_attempts", 5)
	v.SetDefault("security.lockout_window", 15*time.Minute)
	v.SetDefault("security.lockout_duration", 15*time.Minute)
	v.SetDefault("security.fail_open", false)
	v.SetDefault("cookie.secure", true)
	v.SetDefault("forward_auth.login_url", "/login")
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// buildProvider picks the credential store: PostgreSQL when a database URL
// is configured, the in-memory store otherwise. The memory path can seed a
// single admin account for development via AUTHGATE_SEED_EMAIL and
// AUTHGATE_SEED_PASSWORD.
func buildProvider(v *viper.Viper, cfg authgate.Config, log zerolog.Logger) (authgate.UserProvider, func(), error) {
	if databaseURL := v.GetString("database.url"); databaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := postgres.Open(ctx, databaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	log.Warn().Msg("no database configured, using in-memory user store")
	store := memory.NewStore()

	seedEmail := v.GetString("seed.email")
	seedPassword := v.GetString("seed.password")
	if seedEmail != "" && seedPassword != "" {
		hasher, err := password.NewArgon2(password.Config{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, func() {}, err
		}
		hash, err := hasher.Hash(seedPassword)
		if err != nil {
			return nil, func() {}, err
		}
		now := time.Now().UTC()
		store.Seed(authgate.UserRecord{
			UserID:       "seed-admin",
			FirstName:    "Admin",
			LastName:     "User",
			Email:        seedEmail,
			PasswordHash: hash,
			Role:         authgate.RoleAdmin,
			Enabled:      true,
			Locale:       "en",
			Theme:        "dark",
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		log.Info().Str("email", seedEmail).Msg("seeded admin account")
	}

	return store, func() {}, nil
}

func stderrFatal(msg string) {
	os.Stderr.WriteString(msg + "\n")
	os.Exit(1)
}
