package feed

import (
	"context"
	"time"
)

// Gate enforces a minimum interval between successive operations against
// remote hosts. It is a fixed-interval gate, not a token bucket: batches
// here are strictly sequential and the requirement is a lower bound on the
// gap between requests.
type Gate struct {
	interval time.Duration
	last     time.Time
}

func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Wait blocks until the configured interval has elapsed since the previous
// call. The first call never blocks.
func (g *Gate) Wait(ctx context.Context) error {
	if !g.last.IsZero() {
		if remaining := g.interval - time.Since(g.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()

			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	g.last = time.Now()
	return nil
}
