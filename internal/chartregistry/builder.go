package chartregistry

import (
	"golang.org/x/sync/errgroup"

	"github.com/distributed-system-analysis/jschart/internal/domainscale"
	"github.com/distributed-system-analysis/jschart/internal/observability"
	"github.com/distributed-system-analysis/jschart/internal/sourceloader"
)

// Builder brings every registered chart to its complete state: data loaded,
// axes computed, view constructed.
//
// Data loads overlap freely across charts, but the construct step runs one
// chart at a time so peak view-construction work stays bounded. The page is
// complete once every chart's work settles, success or failure; a failed
// chart records its error and never stalls the others.
type Builder struct {
	registry *Registry
	loader   *sourceloader.Loader
	logger   *observability.CoreLogger

	// PlotWidth and PlotHeight size each chart's plot area in pixels.
	PlotWidth  float64
	PlotHeight float64
}

func NewBuilder(
	registry *Registry,
	loader *sourceloader.Loader,
	logger *observability.CoreLogger,
) *Builder {
	return &Builder{
		registry:   registry,
		loader:     loader,
		logger:     logger,
		PlotWidth:  760,
		PlotHeight: 420,
	}
}

// BuildAll loads and constructs every registered chart. construct is called
// serially, one chart at a time in settle order, and may be nil when no
// view layer is attached (tests). BuildAll returns when all charts settle.
func (b *Builder) BuildAll(construct func(Handle, *Entry) error) {
	entries := b.registry.Entries()

	constructQueue := NewConstructQueue()

	group := &errgroup.Group{}
	for i, entry := range entries {
		group.Go(func() error {
			b.loadOne(Handle(i), entry)
			constructQueue.Enqueue(func() {
				b.constructOne(Handle(i), entry, construct)
			})
			return nil
		})
	}
	_ = group.Wait()

	constructQueue.Drain()
}

func (b *Builder) loadOne(h Handle, entry *Entry) {
	// Entries registered as already failed (bad configuration) keep their
	// original error.
	if entry.Err != nil {
		return
	}
	if err := b.loader.Load(entry.Chart); err != nil {
		b.logger.CaptureError(err, "chart", int(h))
		entry.Err = err
	}
}

func (b *Builder) constructOne(h Handle, entry *Entry, construct func(Handle, *Entry) error) {
	if entry.Err != nil {
		return
	}
	axes, err := domainscale.NewAxes(entry.Chart, b.PlotWidth, b.PlotHeight)
	if err != nil {
		b.logger.CaptureError(err, "chart", int(h))
		entry.Err = err
		return
	}
	entry.Axes = axes

	if construct == nil {
		return
	}
	if err := construct(h, entry); err != nil {
		b.logger.CaptureError(err, "chart", int(h))
		entry.Err = err
	}
}
