package domainscale

import (
	"math"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
)

// Overscale is the headroom added above the tallest visible sample so the
// top of a series doesn't touch the plot border.
const Overscale = 0.02

// ZoomRate is the fraction of the current extent each +/- click moves every
// boundary toward or away from the extent's center.
const ZoomRate = 0.03

// Axis couples the two scales of one chart axis.
type Axis struct {
	// Chart is the scale of the rendered view; pan and zoom mutate only
	// its domain.
	Chart *Scale

	// Zoom spans the full data domain. The overview brush renders against
	// it and every pan/zoom clamps to it.
	Zoom *Scale
}

// Axes is the x/y axis state of one chart, kept alongside the chart by the
// registry so the data model stays independent of view geometry.
type Axes struct {
	X Axis
	Y Axis
}

// NewAxes builds axis state for a plot area of the given pixel size. The y
// range is inverted since pixel y grows downward.
func NewAxes(c *chartdata.Chart, plotWidth, plotHeight float64) (*Axes, error) {
	xKind, err := ParseKind(c.Options.X.Scale, c.TimeBased())
	if err != nil {
		return nil, err
	}
	yKind, err := ParseKind(c.Options.Y.Scale, false)
	if err != nil {
		return nil, err
	}

	a := &Axes{
		X: Axis{
			Chart: NewScale(xKind, 0, 1, 0, plotWidth),
			Zoom:  NewScale(xKind, 0, 1, 0, plotWidth),
		},
		Y: Axis{
			Chart: NewScale(yKind, 0, 1, plotHeight, 0),
			Zoom:  NewScale(yKind, 0, 1, plotHeight, 0),
		},
	}
	a.Refresh(c)
	return a, nil
}

// Refresh recomputes both full domains from the chart's datasets. The zoom
// scales always take the new full domain; each chart scale follows unless
// the user has zoomed that axis, in which case the zoomed view is preserved.
func (a *Axes) Refresh(c *chartdata.Chart) {
	xMin, xMax := computeXDomain(c)
	yMin, yMax := computeYDomain(c, a.Y.Chart.Kind())

	a.X.Zoom.SetDomain(xMin, xMax)
	a.Y.Zoom.SetDomain(yMin, yMax)
	if !c.State.UserXZoomed {
		a.X.Chart.SetDomain(xMin, xMax)
	}
	if !c.State.UserYZoomed {
		a.Y.Chart.SetDomain(yMin, yMax)
	}
}

// ZoomIn narrows an axis's chart extent toward its center by ZoomRate.
func (ax *Axis) ZoomIn() {
	lo, hi := ax.Chart.Domain()
	step := (hi - lo) * ZoomRate
	domLo, domHi := ax.Zoom.Domain()
	lo, hi = ClampExtent(lo+step, hi-step, domLo, domHi)
	ax.Chart.SetDomain(lo, hi)
}

// ZoomOut widens an axis's chart extent away from its center by ZoomRate,
// clamped to the full zoom domain.
func (ax *Axis) ZoomOut() {
	lo, hi := ax.Chart.Domain()
	step := (hi - lo) * ZoomRate
	domLo, domHi := ax.Zoom.Domain()
	lo, hi = ClampExtent(lo-step, hi+step, domLo, domHi)
	ax.Chart.SetDomain(lo, hi)
}

// Reset restores the chart scale to the full zoom domain.
func (ax *Axis) Reset() {
	lo, hi := ax.Zoom.Domain()
	ax.Chart.SetDomain(lo, hi)
}

func computeXDomain(c *chartdata.Chart) (float64, float64) {
	min, max := math.NaN(), math.NaN()
	for _, ds := range c.Datasets {
		if ds.Hidden || len(ds.Points) == 0 {
			continue
		}
		// Points are x-sorted, so the ends bound the series.
		lo, hi := ds.Points[0].X, ds.Points[len(ds.Points)-1].X
		if math.IsNaN(min) || lo < min {
			min = lo
		}
		if math.IsNaN(max) || hi > max {
			max = hi
		}
	}
	min, max = Normalize(min, max)
	return override(min, max, c.Options.X)
}

func computeYDomain(c *chartdata.Chart, kind Kind) (float64, float64) {
	var min, max float64
	if c.Options.Stacked {
		min, max = stackedYBounds(c)
	} else {
		min, max = rawYBounds(c)
		// Baseline-anchored charts read better starting at zero.
		if kind != Log && !math.IsNaN(min) && min > 0 {
			min = 0
		}
	}
	min, max = Normalize(min, max)
	if c.Options.Y.Max == nil {
		max += (max - min) * Overscale
	}
	return override(min, max, c.Options.Y)
}

func rawYBounds(c *chartdata.Chart) (float64, float64) {
	min, max := math.NaN(), math.NaN()
	for _, ds := range c.Datasets {
		if ds.Hidden {
			continue
		}
		for _, p := range ds.Points {
			if math.IsNaN(min) || p.Y < min {
				min = p.Y
			}
			if math.IsNaN(max) || p.Y > max {
				max = p.Y
			}
		}
	}
	return min, max
}

// stackedYBounds accumulates per-x totals over visible datasets, so the
// domain covers the full cumulative band rather than any single series.
func stackedYBounds(c *chartdata.Chart) (float64, float64) {
	totals := map[float64]float64{}
	for _, ds := range c.Datasets {
		if ds.Hidden {
			continue
		}
		for _, p := range ds.Points {
			totals[p.X] += p.Y
		}
	}
	if len(totals) == 0 {
		return math.NaN(), math.NaN()
	}
	min, max := 0.0, math.Inf(-1)
	for _, t := range totals {
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	return min, max
}

func override(min, max float64, opts chartdata.AxisOptions) (float64, float64) {
	if opts.Min != nil {
		min = *opts.Min
	}
	if opts.Max != nil {
		max = *opts.Max
	}
	return min, max
}
