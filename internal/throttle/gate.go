package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate spaces outbound platform calls at least interval apart.
// One Gate is shared by every component that writes to the platform.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate returns a gate admitting one call per interval. A non-positive interval disables pacing.
func NewGate(interval time.Duration) *Gate {
	if interval <= 0 {
		return &Gate{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Gate{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call may proceed or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}
