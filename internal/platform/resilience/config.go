package resilience

import (
	"fmt"
	"time"

	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
)

// CircuitBreakerConfig guards one upstream, such as a quote provider. Zero
// numeric fields fall back to DefaultCircuitBreakerConfig.
type CircuitBreakerConfig struct {
	Enabled bool
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold int
	// OpenTimeout is how long calls are refused before trial calls start.
	OpenTimeout time.Duration
	// HalfOpenMaxReq trial calls must all succeed to close the circuit.
	HalfOpenMaxReq int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// Validate rejects explicitly configured values that Normalized would
// otherwise replace without notice.
func (c CircuitBreakerConfig) Validate() error {
	switch {
	case c.FailureThreshold < 1:
		return fmt.Errorf("failure threshold must be >= 1, got %d", c.FailureThreshold)
	case c.OpenTimeout <= 0:
		return fmt.Errorf("open timeout must be positive, got %s", c.OpenTimeout)
	case c.HalfOpenMaxReq < 1:
		return fmt.Errorf("half-open trial calls must be >= 1, got %d", c.HalfOpenMaxReq)
	}
	return nil
}

func (c CircuitBreakerConfig) Normalized() CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaults.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return c
}

// BreakerFromConfig returns nil when the breaker is disabled; Execute treats a
// nil breaker as pass-through.
func BreakerFromConfig(cfg CircuitBreakerConfig, c clock.Clock) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return NewCircuitBreaker(cfg, c)
}
