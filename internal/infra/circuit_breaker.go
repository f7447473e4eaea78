package infra

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling the gateway while the breaker
// is tripped. Callers surface it as "pago no disponible".
var ErrCircuitOpen = errors.New("circuit breaker is open")

type cbState int

const (
	cbClosed cbState = iota
	cbOpen
	cbHalfOpen
)

// CircuitBreakerConfig tunes when the breaker trips and recovers.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures before tripping
	SuccessThreshold int           // successful probes required to close again
	OpenTimeout      time.Duration // time tripped before allowing a probe
}

// DefaultCBConfig is tuned for Webpay: trip after 5 straight failures, stay
// closed to traffic for a minute, then require 2 clean probes.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      time.Minute,
	}
}

// CircuitBreaker guards the Webpay HTTP client so a gateway outage fails
// checkouts fast instead of stacking up timeouts. Closed passes calls
// through; open rejects them; half-open lets probes test recovery.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu          sync.Mutex
	state       cbState
	failures    int
	successes   int
	lastFailure time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{cfg: cfg}
}

// Execute runs fn unless the breaker is open, recording the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.acquire() {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

// acquire checks the state, moving open → half-open once the timeout has
// elapsed, and reports whether the call may proceed.
func (cb *CircuitBreaker) acquire() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == cbOpen {
		if time.Since(cb.lastFailure) < cb.cfg.OpenTimeout {
			return false
		}
		cb.state = cbHalfOpen
		cb.successes = 0
	}
	return true
}

func (cb *CircuitBreaker) recordFailure() {
	cb.failures++
	cb.lastFailure = time.Now()

	switch cb.state {
	case cbClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.state = cbOpen
			cb.successes = 0
		}
	case cbHalfOpen:
		// probe failed, trip again
		cb.state = cbOpen
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	switch cb.state {
	case cbClosed:
		cb.failures = 0
	case cbHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = cbClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}
