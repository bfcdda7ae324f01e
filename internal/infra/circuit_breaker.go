package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Closed → Open → Half-Open breaker guarding the datastore. While open, every
// statement fails immediately with ErrCircuitOpen instead of waiting on a dead
// connection, which lets read endpoints degrade fast.
//
// States:
//   - Closed:    normal operation, statements pass through
//   - Open:      all statements fail immediately
//   - Half-Open: probes allowed through to test recovery

// CBState represents the current circuit breaker state.
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

// String returns a human-readable state name (for health endpoints / logs).
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds tunable parameters.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures to trip open (default: 5)
	SuccessThreshold int           // consecutive successes in half-open to close (default: 2)
	OpenTimeout      time.Duration // how long to stay open before probing (default: 30s)
}

// DefaultCBConfig returns the defaults used for the datastore.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// CircuitBreaker implements the pattern with thread-safe state transitions.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CBState
	failureCount     int
	successCount     int
	lastFailureTime  time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

// NewCircuitBreaker creates a CB in Closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{
		state:            CBClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
	}
}

// State returns the current CB state (safe for concurrent reads).
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

// currentState applies the open → half-open timeout (must be called under lock).
func (cb *CircuitBreaker) currentState() CBState {
	if cb.state == CBOpen && time.Since(cb.lastFailureTime) >= cb.openTimeout {
		cb.state = CBHalfOpen
		cb.successCount = 0
	}
	return cb.state
}

// Allow returns ErrCircuitOpen when calls must fail fast.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.currentState() == CBOpen {
		return ErrCircuitOpen
	}
	return nil
}

// Record feeds the outcome of an allowed call back into the breaker.
// Only connectivity failures count; a constraint violation is a success as
// far as reachability goes.
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil && IsUnavailable(err) {
		cb.onFailure()
		return
	}
	cb.onSuccess()
}

// Execute runs fn through the circuit breaker.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.Allow(); err != nil {
		return err
	}
	err := fn()
	cb.Record(err)
	return err
}

// onFailure records a failure (must be called under lock).
func (cb *CircuitBreaker) onFailure() {
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	switch cb.state {
	case CBClosed:
		if cb.failureCount >= cb.failureThreshold {
			cb.state = CBOpen
			cb.successCount = 0
			log.Warn().Int("failures", cb.failureCount).Msg("datastore circuit opened")
		}
	case CBHalfOpen:
		// Probe failed, back to open
		cb.state = CBOpen
		cb.failureCount = 0
	}
}

// onSuccess records a success (must be called under lock).
func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failureCount = 0
	case CBHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = CBClosed
			cb.failureCount = 0
			cb.successCount = 0
			log.Info().Msg("datastore circuit closed")
		}
	}
}

// ── GORM integration ──────────────────────────────────────────────────────────

const breakerSkipKey = "papeleria:breaker_rejected"

// RegisterDatastoreBreaker hooks cb around every GORM statement kind.
func RegisterDatastoreBreaker(db *gorm.DB, cb *CircuitBreaker) error {
	before := func(tx *gorm.DB) {
		if err := cb.Allow(); err != nil {
			tx.InstanceSet(breakerSkipKey, true)
			_ = tx.AddError(err)
		}
	}
	after := func(tx *gorm.DB) {
		if rejected, ok := tx.InstanceGet(breakerSkipKey); ok && rejected.(bool) {
			return
		}
		cb.Record(tx.Error)
	}

	cbs := db.Callback()
	steps := []struct {
		name   string
		before func(string) error
		after  func(string) error
	}{
		{"create", func(n string) error { return cbs.Create().Before("gorm:create").Register(n, before) },
			func(n string) error { return cbs.Create().After("gorm:create").Register(n, after) }},
		{"query", func(n string) error { return cbs.Query().Before("gorm:query").Register(n, before) },
			func(n string) error { return cbs.Query().After("gorm:query").Register(n, after) }},
		{"update", func(n string) error { return cbs.Update().Before("gorm:update").Register(n, before) },
			func(n string) error { return cbs.Update().After("gorm:update").Register(n, after) }},
		{"delete", func(n string) error { return cbs.Delete().Before("gorm:delete").Register(n, before) },
			func(n string) error { return cbs.Delete().After("gorm:delete").Register(n, after) }},
		{"row", func(n string) error { return cbs.Row().Before("gorm:row").Register(n, before) },
			func(n string) error { return cbs.Row().After("gorm:row").Register(n, after) }},
		{"raw", func(n string) error { return cbs.Raw().Before("gorm:raw").Register(n, before) },
			func(n string) error { return cbs.Raw().After("gorm:raw").Register(n, after) }},
	}
	for _, s := range steps {
		if err := s.before("breaker:before_" + s.name); err != nil {
			return err
		}
		if err := s.after("breaker:after_" + s.name); err != nil {
			return err
		}
	}
	return nil
}
