// Package waitingtest provides fake implementations of waiting primitives.
package waitingtest

import (
	"sync"

	"github.com/distributed-system-analysis/jschart/internal/waiting"
)

// FakeDelay is a Delay whose channels fire when Tick is called, letting a
// test drive a polling loop without sleeping.
type FakeDelay struct {
	mu      sync.Mutex
	waiters []chan struct{}

	// If false, panic on the next Wait.
	allowsWait bool

	isZero bool
}

func NewFakeDelay() *FakeDelay {
	return &FakeDelay{allowsWait: true}
}

// Tick fires every channel handed out by Wait so far. A tick with no waiter
// is lost, matching a real timer that fires before anyone listens.
func (d *FakeDelay) Tick(allowMoreWait bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.allowsWait = allowMoreWait
	for _, ch := range d.waiters {
		close(ch)
	}
	d.waiters = nil
}

// SetZero makes all current and future waits complete immediately.
func (d *FakeDelay) SetZero() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.isZero = true
	for _, ch := range d.waiters {
		close(ch)
	}
	d.waiters = nil
}

var _ waiting.Delay = &FakeDelay{}

func (d *FakeDelay) IsZero() bool {
	if d == nil {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isZero
}

func (d *FakeDelay) Wait() (<-chan struct{}, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan struct{})
	if d.isZero {
		close(ch)
		return ch, func() {}
	}
	if !d.allowsWait {
		panic("waitingtest: Wait() after the final Tick()")
	}

	d.waiters = append(d.waiters, ch)
	return ch, func() {}
}
