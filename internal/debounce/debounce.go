// Package debounce rate-limits repeated work such as render refreshes
// during a brush drag or a burst of live samples.
package debounce

import (
	"github.com/distributed-system-analysis/jschart/internal/observability"

	"golang.org/x/time/rate"
)

// Debouncer coalesces bursts of requests for the same work into at most one
// run per rate-limiter token. Requests denied by the limiter stay pending so
// Flush can settle them at shutdown.
//
// Not safe for concurrent use; callers keep one debouncer per goroutine.
type Debouncer struct {
	limiter *rate.Limiter
	pending bool
	stopped bool
	logger  *observability.CoreLogger
}

func NewDebouncer(
	eventRate rate.Limit,
	burstSize int,
	logger *observability.CoreLogger,
) *Debouncer {
	return &Debouncer{
		limiter: rate.NewLimiter(eventRate, burstSize),
		logger:  logger,
	}
}

// Trigger requests a run of f, executing it now if the rate limiter allows
// and leaving the request pending otherwise.
func (d *Debouncer) Trigger(f func()) {
	if d == nil || d.stopped {
		return
	}
	d.pending = true
	if !d.limiter.Allow() {
		return
	}
	f()
	d.pending = false
}

// Flush runs f now if a denied Trigger left work pending, regardless of the
// rate limit.
func (d *Debouncer) Flush(f func()) {
	if d == nil || d.stopped || !d.pending {
		return
	}
	d.logger.Debug("debounce: flushing pending work")
	f()
	d.pending = false
}

// Stop makes all future debounce operations no-ops.
func (d *Debouncer) Stop() {
	d.stopped = true
}
