package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the explorer has failed repeatedly and
// calls are rejected without touching the network.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state.
type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Failing, rejecting requests
	StateHalfOpen              // Probing whether the explorer recovered
)

// Breaker guards one explorer endpoint shared by concurrently fetched
// streams. Once a stream exhausts the explorer, sibling streams fail fast
// instead of each burning through their own retry budget.
type Breaker struct {
	name string
	now  func() time.Time

	mu            sync.Mutex
	state         State
	failures      int
	probes        int
	openedAt      time.Time
	threshold     int
	probesToClose int
	cooldown      time.Duration
	onStateChange func(from, to State)
}

// Config configures a circuit breaker.
type Config struct {
	Name             string        // label used in ErrCircuitOpen wrapping
	FailureThreshold int           // consecutive failures before opening (default: 5)
	SuccessThreshold int           // successful probes before closing (default: 1)
	OpenTimeout      time.Duration // cooldown before a probe is allowed (default: 30s)
	OnStateChange    func(from, to State)
}

func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &Breaker{
		name:          cfg.Name,
		now:           time.Now,
		state:         StateClosed,
		threshold:     cfg.FailureThreshold,
		probesToClose: cfg.SuccessThreshold,
		cooldown:      cfg.OpenTimeout,
		onStateChange: cfg.OnStateChange,
	}
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cooldown {
			if b.name != "" {
				return fmt.Errorf("%s: %w", b.name, ErrCircuitOpen)
			}
			return ErrCircuitOpen
		}
		b.transition(StateHalfOpen)
	}
	return nil
}

// Record feeds the outcome of a call that Allow let through. countable tells
// the breaker whether a failure reflects explorer health (transient transport
// failures do; decoding errors or bad input do not).
func (b *Breaker) Record(err error, countable bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		if b.state == StateHalfOpen {
			b.probes++
			if b.probes >= b.probesToClose {
				b.transition(StateClosed)
			}
		}
		return
	}
	if !countable {
		return
	}

	b.failures++
	switch b.state {
	case StateHalfOpen:
		b.openedAt = b.now()
		b.transition(StateOpen)
	case StateClosed:
		if b.failures >= b.threshold {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
	}
}

// State returns the current state without advancing it.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.probes = 0
	if to == StateClosed {
		b.failures = 0
	}
	if b.onStateChange != nil {
		b.onStateChange(from, to)
	}
}

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
