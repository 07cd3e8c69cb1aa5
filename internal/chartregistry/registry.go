// Package chartregistry owns the ordered collection of charts on a page.
//
// Cross-chart operations such as "apply x-axis zoom to all" take the
// registry explicitly; there is no ambient global chart list.
package chartregistry

import (
	"sync"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/domainscale"
)

// Handle is a chart's stable index in its registry, assigned at
// registration and used for all later lookups.
type Handle int

// Entry pairs a chart's data model with its axis scale state. Err records a
// construction failure, which is local to the one chart.
type Entry struct {
	Chart *chartdata.Chart
	Axes  *domainscale.Axes
	Err   error
}

// Registry is the append-only chart collection. Registration may happen
// from concurrent page-setup code; entries are never removed.
type Registry struct {
	mu      sync.Mutex
	entries []*Entry
}

func New() *Registry {
	return &Registry{}
}

// Register adds a chart and returns its handle.
func (r *Registry) Register(c *chartdata.Chart) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, &Entry{Chart: c})
	return Handle(len(r.entries) - 1)
}

// Get returns the entry for a handle, or nil for an unknown handle.
func (r *Registry) Get(h Handle) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h < 0 || int(h) >= len(r.entries) {
		return nil
	}
	return r.entries[h]
}

// Entries returns a snapshot of all registered entries in handle order.
func (r *Registry) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
