// Package retry implements the exponential backoff policy used around
// external encode and transcription calls.
package retry

import (
	"context"
	"time"
)

// Policy retries a function with exponentially growing delays:
// InitialDelay, 2*InitialDelay, 4*InitialDelay, ...
type Policy struct {
	Attempts     int
	InitialDelay time.Duration

	// Sleep is swappable for tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// Default is the policy for transient encode failures: three attempts
// starting at two seconds (2s, 4s between attempts).
func Default() Policy {
	return Policy{Attempts: 3, InitialDelay: 2 * time.Second}
}

// Do runs fn until it succeeds or the attempts are exhausted, returning
// the last error. Context cancellation stops the retries early.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	delay := p.InitialDelay
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if ctx.Err() != nil {
			return err
		}
		sleep(delay)
		delay *= 2
	}
	return err
}
