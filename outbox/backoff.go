package outbox

import (
	"math/rand"
	"time"
)

// Backoff computes the delay before the next publication attempt,
// based on the number of attempts performed so far.
type Backoff func(attempts int) time.Duration

// ConstantBackoff returns a Backoff policy with a fixed delay.
func ConstantBackoff(delay time.Duration) Backoff {
	return func(int) time.Duration { return delay }
}

// ExponentialBackoff returns a Backoff policy that doubles the base delay at
// every attempt, capped at max. The policy is deterministic: compose it with
// WithJitter for production use to avoid thundering herds of retries.
func ExponentialBackoff(base, max time.Duration) Backoff {
	return func(attempts int) time.Duration {
		if attempts < 1 {
			attempts = 1
		}

		delay := base
		for i := 1; i < attempts; i++ {
			delay *= 2
			if delay >= max {
				return max
			}
		}

		if delay > max {
			return max
		}

		return delay
	}
}

// WithJitter decorates a Backoff policy adding a random delay
// up to the provided fraction (0..1) of the computed one.
func WithJitter(backoff Backoff, fraction float64) Backoff {
	return func(attempts int) time.Duration {
		delay := backoff(attempts)
		jitter := time.Duration(rand.Int63n(int64(float64(delay)*fraction) + 1))

		return delay + jitter
	}
}
