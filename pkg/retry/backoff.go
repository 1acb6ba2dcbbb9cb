package retry

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes exponential retry delays with optional jitter. Jitter
// spreads retry times to avoid synchronized retry storms when many sends
// fail at once.
type Backoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultBackoff returns the production backoff policy: 1s initial delay
// doubling up to 30s, with ±10% jitter.
func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

// jitterFactor is the relative spread applied around the computed delay.
const jitterFactor = 0.1

// Delay returns the wait before the next attempt. Attempt starts at 1 for
// the delay after the first failure.
// Formula: min(InitialDelay * Multiplier^(attempt-1), MaxDelay), then ±10%.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := b.InitialDelay
	if initial == 0 {
		initial = time.Second
	}
	maxDelay := b.MaxDelay
	if maxDelay == 0 {
		maxDelay = 30 * time.Second
	}
	multiplier := b.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}

	delay := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}

	if b.Jitter {
		delay *= 1 + (rand.Float64()*2-1)*jitterFactor
	}

	return time.Duration(delay)
}
