package stealth

import (
	"context"
	"math/rand"
	"time"
)

// BoundsFunc supplies the current inter-action delay bounds in seconds. It is
// called on every draw so configuration edits take effect on the next wait.
type BoundsFunc func() (min, max int)

// Delays produces randomized pauses between automated actions. Every draw is
// independent and uniform within the configured bounds.
type Delays struct {
	bounds BoundsFunc
}

// NewDelays creates a timing policy backed by the given bounds source.
func NewDelays(bounds BoundsFunc) *Delays {
	return &Delays{bounds: bounds}
}

// Next returns a uniformly random delay in [min, max] seconds, re-reading the
// bounds from the source.
func (d *Delays) Next() time.Duration {
	min, max := d.bounds()
	return RandomSeconds(min, max)
}

// Wait sleeps for Next() or until ctx is cancelled, whichever comes first.
func (d *Delays) Wait(ctx context.Context) error {
	timer := time.NewTimer(d.Next())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RandomSeconds returns a random duration between min and max seconds.
func RandomSeconds(min, max int) time.Duration {
	if min >= max {
		return time.Duration(min) * time.Second
	}
	n := rand.Intn(max-min+1) + min
	return time.Duration(n) * time.Second
}

// RandomMillis returns a random duration between min and max milliseconds.
func RandomMillis(min, max int) time.Duration {
	if min >= max {
		return time.Duration(min) * time.Millisecond
	}
	n := rand.Intn(max-min+1) + min
	return time.Duration(n) * time.Millisecond
}

// SleepMillis pauses briefly, for micro-delays between UI interactions.
func SleepMillis(min, max int) {
	time.Sleep(RandomMillis(min, max))
}
