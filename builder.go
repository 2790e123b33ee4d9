package authgate

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/authgate/internal/rate"
	"github.com/MrEthical07/authgate/jwt"
	"github.com/MrEthical07/authgate/password"
	"github.com/MrEthical07/authgate/refresh"
)

// Builder assembles an [Engine]. Builders are single-use.
type Builder struct {
	config       Config
	redis        redis.UniversalClient
	userProvider UserProvider
	log          zerolog.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		log:    zerolog.Nop(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the shared key-value store used by the refresh store and
// the attempt guard.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider sets the credential store adapter.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = log
	return b
}

// Build validates the configuration and wires the engine. The signing key
// is loaded here, once; it is never logged.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.userProvider == nil {
		return nil, errors.New("user provider is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret:    b.config.JWT.Secret,
		AccessTTL: b.config.JWT.AccessTTL,
		Issuer:    b.config.JWT.Issuer,
		Audience:  b.config.JWT.Audience,
		Leeway:    b.config.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	guard := rate.New(b.redis, rate.Config{
		MaxAttempts:     b.config.Security.MaxLoginAttempts,
		LockoutWindow:   b.config.Security.LockoutWindow,
		LockoutDuration: b.config.Security.LockoutDuration,
		FailOpen:        b.config.Security.FailOpen,
	})

	return &Engine{
		config:       b.config,
		jwtManager:   jwtManager,
		refreshStore: refresh.NewStore(b.redis, b.config.Refresh.TTL),
		guard:        guard,
		hasher:       hasher,
		users:        b.userProvider,
		metrics:      newMetrics(),
		log:          b.log.With().Str("component", "authgate").Logger(),
	}, nil
}
