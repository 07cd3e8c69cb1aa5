// Package interaction owns a chart's gesture state machine: click-drag
// selection zoom, axis brushes, +/- zoom controls, cursor tracking, and
// highlight/hide semantics. All methods run on the event dispatch
// goroutine; a chart's State record is the single source of truth.
package interaction

import (
	"math"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/chartregistry"
	"github.com/distributed-system-analysis/jschart/internal/domainscale"
)

// Mode is the controller's gesture state.
type Mode int

const (
	Idle Mode = iota
	DraggingSelection
	BrushingX
	BrushingY
)

// Point is a pixel-space position within the plot area.
type Point struct {
	X float64
	Y float64
}

// Rect is a pixel-space rectangle; Min/Max are normalized on access.
type Rect struct {
	A Point
	B Point
}

// Controller drives one chart's interactions. Cross-chart operations reach
// sibling charts through the registry.
type Controller struct {
	chart    *chartdata.Chart
	axes     *domainscale.Axes
	registry *chartregistry.Registry
	handle   chartregistry.Handle

	mode      Mode
	selection Rect

	lastMouse    Point
	hasLastMouse bool

	cursor *cursorTracker

	// onViewChange fires after any mutation that requires a redraw. The
	// host wires it to the render surface, usually through a debouncer.
	onViewChange func()
}

func NewController(
	registry *chartregistry.Registry,
	handle chartregistry.Handle,
) *Controller {
	entry := registry.Get(handle)
	return &Controller{
		chart:    entry.Chart,
		axes:     entry.Axes,
		registry: registry,
		handle:   handle,
		cursor:   newCursorTracker(entry.Chart),
	}
}

// OnViewChange registers the redraw hook.
func (c *Controller) OnViewChange(fn func()) {
	c.onViewChange = fn
}

func (c *Controller) Mode() Mode { return c.mode }

// Selection returns the current selection rectangle while dragging.
func (c *Controller) Selection() (Rect, bool) {
	return c.selection, c.mode == DraggingSelection
}

// CursorValues returns the per-dataset values resolved for the last cursor
// position, in dataset index order. The side table renders them.
func (c *Controller) CursorValues() []CursorValue {
	return c.cursor.values
}

// MouseDown inside the plot area anchors a selection rectangle.
func (c *Controller) MouseDown(p Point) {
	if !c.inPlot(p) {
		return
	}
	c.mode = DraggingSelection
	c.selection = Rect{A: p, B: p}
}

// MouseMove grows the selection while dragging and, regardless of mode,
// re-resolves the nearest datapoint per visible dataset.
func (c *Controller) MouseMove(p Point) {
	if c.mode == DraggingSelection {
		c.selection.B = p
	}
	c.trackCursor(p)
	c.notify()
}

// MouseUp completes a selection drag. A nonzero-extent rectangle zooms both
// axes to its data-space bounds; a zero-extent release is a click, not a
// zoom.
func (c *Controller) MouseUp(p Point) {
	if c.mode != DraggingSelection {
		return
	}
	c.mode = Idle
	c.selection.B = p

	if c.selection.A.X == c.selection.B.X || c.selection.A.Y == c.selection.B.Y {
		c.notify()
		return
	}

	xLo, xHi := orderedPair(
		c.axes.X.Chart.Invert(c.selection.A.X),
		c.axes.X.Chart.Invert(c.selection.B.X))
	yLo, yHi := orderedPair(
		c.axes.Y.Chart.Invert(c.selection.A.Y),
		c.axes.Y.Chart.Invert(c.selection.B.Y))

	c.axes.X.Chart.SetDomain(xLo, xHi)
	c.axes.Y.Chart.SetDomain(yLo, yHi)
	c.chart.State.UserXZoomed = true
	c.chart.State.UserYZoomed = true

	c.ReplayMouseMove()
	c.notify()
}

// MouseLeave clears cursor state when the pointer exits the plot.
func (c *Controller) MouseLeave() {
	c.chart.State.CursorInPlot = false
	c.chart.State.CursorValue = math.NaN()
	c.cursor.clear()
	c.notify()
}

// BrushX sets the chart x-domain from an overview brush extent in zoom-scale
// pixel space. An empty brush snaps the axis back to the full domain.
func (c *Controller) BrushX(loPx, hiPx float64) {
	c.mode = BrushingX
	defer func() { c.mode = Idle }()

	if loPx == hiPx {
		c.axes.X.Reset()
		c.chart.State.UserXZoomed = false
		c.ReplayMouseMove()
		c.notify()
		return
	}
	lo, hi := orderedPair(c.axes.X.Zoom.Invert(loPx), c.axes.X.Zoom.Invert(hiPx))
	c.axes.X.Chart.SetDomain(lo, hi)
	c.chart.State.UserXZoomed = true
	c.notify()
}

// BrushY is BrushX for the y axis.
func (c *Controller) BrushY(loPx, hiPx float64) {
	c.mode = BrushingY
	defer func() { c.mode = Idle }()

	if loPx == hiPx {
		c.axes.Y.Reset()
		c.chart.State.UserYZoomed = false
		c.ReplayMouseMove()
		c.notify()
		return
	}
	lo, hi := orderedPair(c.axes.Y.Zoom.Invert(loPx), c.axes.Y.Zoom.Invert(hiPx))
	c.axes.Y.Chart.SetDomain(lo, hi)
	c.chart.State.UserYZoomed = true
	c.notify()
}

// ZoomIn narrows both chart extents toward their centers by the fixed rate.
func (c *Controller) ZoomIn() {
	c.axes.X.ZoomIn()
	c.axes.Y.ZoomIn()
	c.chart.State.UserXZoomed = true
	c.chart.State.UserYZoomed = true
	c.notify()
}

// ZoomOut widens both chart extents, clamped to the full zoom domains.
func (c *Controller) ZoomOut() {
	c.axes.X.ZoomOut()
	c.axes.Y.ZoomOut()
	c.chart.State.UserXZoomed = true
	c.chart.State.UserYZoomed = true
	c.notify()
}

// ResetZoom restores both chart scales to the full zoom domain and clears
// the user-zoom flags.
func (c *Controller) ResetZoom() {
	c.axes.X.Reset()
	c.axes.Y.Reset()
	c.chart.State.UserXZoomed = false
	c.chart.State.UserYZoomed = false
	c.ReplayMouseMove()
	c.notify()
}

// ApplyXZoomToAll copies this chart's x chart-domain to every sibling whose
// data model matches, whose x zoom scale has the same domain type (both
// time-based or both not), and whose full x-domain is identical. Mismatched
// charts are skipped, not errored.
func (c *Controller) ApplyXZoomToAll() {
	lo, hi := c.axes.X.Chart.Domain()
	fullLo, fullHi := c.axes.X.Zoom.Domain()

	for i, entry := range c.registry.Entries() {
		if chartregistry.Handle(i) == c.handle {
			continue
		}
		if entry.Axes == nil || entry.Err != nil {
			continue
		}
		if entry.Chart.Options.DataModel != c.chart.Options.DataModel {
			continue
		}
		if entry.Axes.X.Zoom.IsTime() != c.axes.X.Zoom.IsTime() {
			continue
		}
		otherLo, otherHi := entry.Axes.X.Zoom.Domain()
		if otherLo != fullLo || otherHi != fullHi {
			continue
		}
		entry.Axes.X.Chart.SetDomain(lo, hi)
		entry.Chart.State.UserXZoomed = true
	}
	c.notify()
}

// RefreshData recomputes domains after the data model changed (live append,
// visibility toggle) and keeps cursor state consistent with the new view.
func (c *Controller) RefreshData() {
	c.axes.Refresh(c.chart)
	c.ReplayMouseMove()
	c.notify()
}

// ReplayMouseMove re-resolves cursor state at the last pointer position, as
// if the mouse moved, so displayed values track view and data changes.
func (c *Controller) ReplayMouseMove() {
	if !c.hasLastMouse {
		return
	}
	c.trackCursor(c.lastMouse)
}

func (c *Controller) trackCursor(p Point) {
	c.lastMouse = p
	c.hasLastMouse = true

	inPlot := c.inPlot(p)
	c.chart.State.CursorInPlot = inPlot
	if !inPlot {
		c.chart.State.CursorValue = math.NaN()
		c.cursor.clear()
		return
	}

	dataX := c.axes.X.Chart.Invert(p.X)
	c.cursor.resolve(dataX)
	c.chart.State.CursorValue = dataX
}

func (c *Controller) inPlot(p Point) bool {
	x0, x1 := c.axes.X.Chart.Range()
	y0, y1 := c.axes.Y.Chart.Range()
	xLo, xHi := orderedPair(x0, x1)
	yLo, yHi := orderedPair(y0, y1)
	return p.X >= xLo && p.X <= xHi && p.Y >= yLo && p.Y <= yHi
}

func (c *Controller) notify() {
	if c.onViewChange != nil {
		c.onViewChange()
	}
}

func orderedPair(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}
