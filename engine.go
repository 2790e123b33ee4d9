package authgate

import (
	"github.com/rs/zerolog"

	"github.com/MrEthical07/authgate/internal/rate"
	"github.com/MrEthical07/authgate/jwt"
	"github.com/MrEthical07/authgate/password"
	"github.com/MrEthical07/authgate/refresh"
)

// Engine is the authentication orchestrator. It composes the token signer,
// refresh store, attempt guard and credential store behind the operations
// the HTTP surface exposes. Engines are immutable after Build and safe for
// concurrent use; all cross-request state lives in Redis.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	refreshStore *refresh.Store
	guard        *rate.Guard
	hasher       *password.Argon2
	users        UserProvider
	metrics      *Metrics
	log          zerolog.Logger
}

// Config returns a copy of the engine configuration. The HTTP layer reads
// cookie, CSRF and forward-auth settings from it.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// MetricsSnapshot returns the current values of the engine counters.
func (e *Engine) MetricsSnapshot() map[MetricID]uint64 {
	if e == nil {
		return map[MetricID]uint64{}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
