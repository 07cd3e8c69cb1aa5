// Package render draws a chart headlessly: an SVG vector surface with
// incrementally cached layers, a PNG raster snapshot, and the visible-domain
// CSV export. View styling lives here, keyed by dataset identity, so the
// data model carries no render state.
package render

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/domainscale"
	"github.com/distributed-system-analysis/jschart/internal/interaction"
	"github.com/distributed-system-analysis/jschart/internal/stacklayout"
)

const (
	marginLeft   = 70
	marginRight  = 20
	marginTop    = 30
	marginBottom = 40
	tickCount    = 6
)

// Surface renders one chart. The axis and legend layers are cached between
// renders and rebuilt only when the domains or dataset flags they depend on
// change; the series layer is rebuilt every render.
type Surface struct {
	chart *chartdata.Chart
	axes  *domainscale.Axes

	width  int
	height int

	styles *styleTable

	cachedAxisLayer   string
	cachedAxisKey     [4]float64
	cachedLegendLayer string
	cachedLegendKey   string
}

func NewSurface(chart *chartdata.Chart, axes *domainscale.Axes) *Surface {
	// The x range runs 0..width; the y range is inverted and runs height..0.
	_, plotW := axes.X.Chart.Range()
	plotH, _ := axes.Y.Chart.Range()
	return &Surface{
		chart:  chart,
		axes:   axes,
		width:  int(plotW) + marginLeft + marginRight,
		height: int(plotH) + marginTop + marginBottom,
		styles: newStyleTable(),
	}
}

// RenderSVG draws the full chart. The optional cursor values and selection
// rectangle come from the interaction controller.
func (s *Surface) RenderSVG(
	cursor []interaction.CursorValue,
	selection *interaction.Rect,
) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+"\n",
		s.width, s.height)

	fmt.Fprintf(&b,
		`<text x="%d" y="18" font-size="14" text-anchor="middle">%s</text>`+"\n",
		s.width/2, escape(s.chart.Options.Title))
	if s.chart.State.LoadErrors > 0 {
		fmt.Fprintf(&b,
			`<text x="%d" y="18" fill="red" font-size="11">Load Errors: %d</text>`+"\n",
			s.width-110, s.chart.State.LoadErrors)
	}

	fmt.Fprintf(&b, `<g transform="translate(%d,%d)">`+"\n", marginLeft, marginTop)
	b.WriteString(s.axisLayer())
	b.WriteString(s.seriesLayer())
	b.WriteString(s.cursorLayer(cursor))
	b.WriteString(s.selectionLayer(selection))
	b.WriteString("</g>\n")

	b.WriteString(s.legendLayer())
	b.WriteString("</svg>\n")
	return b.String()
}

func (s *Surface) axisLayer() string {
	xLo, xHi := s.axes.X.Chart.Domain()
	yLo, yHi := s.axes.Y.Chart.Domain()
	key := [4]float64{xLo, xHi, yLo, yHi}
	if s.cachedAxisLayer != "" && key == s.cachedAxisKey {
		return s.cachedAxisLayer
	}

	_, plotW := s.axes.X.Chart.Range()
	plotH, _ := s.axes.Y.Chart.Range()

	var b strings.Builder
	b.WriteString(`<g class="axes" stroke="#333" font-size="10">` + "\n")
	fmt.Fprintf(&b, `<line x1="0" y1="%.0f" x2="%.0f" y2="%.0f"/>`+"\n",
		plotH, plotW, plotH)
	fmt.Fprintf(&b, `<line x1="0" y1="0" x2="0" y2="%.0f"/>`+"\n", plotH)

	for _, t := range ticks(s.axes.X.Chart, tickCount) {
		px := s.axes.X.Chart.Map(t)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.0f" x2="%.1f" y2="%.0f"/>`+"\n",
			px, plotH, px, plotH+5)
		fmt.Fprintf(&b,
			`<text x="%.1f" y="%.0f" text-anchor="middle" stroke="none">%s</text>`+"\n",
			px, plotH+18, tickLabel(s.axes.X.Chart, t))
	}
	for _, t := range ticks(s.axes.Y.Chart, tickCount) {
		py := s.axes.Y.Chart.Map(t)
		fmt.Fprintf(&b, `<line x1="-5" y1="%.1f" x2="0" y2="%.1f"/>`+"\n", py, py)
		fmt.Fprintf(&b,
			`<text x="-8" y="%.1f" text-anchor="end" stroke="none">%s</text>`+"\n",
			py+3, tickLabel(s.axes.Y.Chart, t))
	}
	b.WriteString("</g>\n")

	s.cachedAxisLayer = b.String()
	s.cachedAxisKey = key
	return s.cachedAxisLayer
}

func (s *Surface) seriesLayer() string {
	var b strings.Builder
	b.WriteString(`<g class="series">` + "\n")
	if s.chart.Options.Stacked {
		s.stackedPaths(&b)
	} else {
		s.linePaths(&b)
	}
	b.WriteString("</g>\n")
	return b.String()
}

func (s *Surface) linePaths(b *strings.Builder) {
	for _, ds := range s.chart.Datasets {
		if ds.Hidden {
			continue
		}
		lb, ub := s.visibleRange(ds)
		if ub-lb <= 0 {
			continue
		}
		style := s.styles.For(ds)
		width := 1.5
		if ds.Highlighted {
			width = 3
		}
		b.WriteString(`<path fill="none" stroke="` + style.Color + `"`)
		fmt.Fprintf(b, ` stroke-width="%.1f" d="`, width)
		for i := lb; i < ub; i++ {
			cmd := "L"
			if i == lb {
				cmd = "M"
			}
			fmt.Fprintf(b, "%s%.1f %.1f", cmd,
				s.axes.X.Chart.Map(ds.Points[i].X),
				s.axes.Y.Chart.Map(ds.Points[i].Y))
		}
		b.WriteString(`"/>` + "\n")
	}
}

func (s *Surface) stackedPaths(b *strings.Builder) {
	bands := stacklayout.Compute(s.chart.Datasets)
	for i, ds := range s.chart.Datasets {
		if ds.Hidden {
			continue
		}
		lb, ub := s.visibleRange(ds)
		if ub-lb <= 0 {
			continue
		}
		style := s.styles.For(ds)
		b.WriteString(`<path stroke="none" fill="` + style.Color + `" fill-opacity="0.8" d="`)
		// Top edge left to right, then the bottom edge back.
		for j := lb; j < ub; j++ {
			cmd := "L"
			if j == lb {
				cmd = "M"
			}
			fmt.Fprintf(b, "%s%.1f %.1f", cmd,
				s.axes.X.Chart.Map(ds.Points[j].X),
				s.axes.Y.Chart.Map(bands[i][j].Y1))
		}
		for j := ub - 1; j >= lb; j-- {
			fmt.Fprintf(b, "L%.1f %.1f",
				s.axes.X.Chart.Map(ds.Points[j].X),
				s.axes.Y.Chart.Map(bands[i][j].Y0))
		}
		b.WriteString(`Z"/>` + "\n")
	}
}

func (s *Surface) cursorLayer(cursor []interaction.CursorValue) string {
	if len(cursor) == 0 || !s.chart.State.CursorInPlot {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<g class="cursor">` + "\n")
	for _, cv := range cursor {
		style := s.styles.For(cv.Dataset)
		fmt.Fprintf(&b,
			`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n",
			s.axes.X.Chart.Map(cv.Point.X),
			s.axes.Y.Chart.Map(cv.Point.Y),
			style.Color)
	}
	b.WriteString("</g>\n")
	return b.String()
}

func (s *Surface) selectionLayer(selection *interaction.Rect) string {
	if selection == nil {
		return ""
	}
	xLo := math.Min(selection.A.X, selection.B.X)
	yLo := math.Min(selection.A.Y, selection.B.Y)
	w := math.Abs(selection.B.X - selection.A.X)
	h := math.Abs(selection.B.Y - selection.A.Y)
	return fmt.Sprintf(
		`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#4682b4" fill-opacity="0.3"/>`+"\n",
		xLo, yLo, w, h)
}

func (s *Surface) legendLayer() string {
	key := legendKey(s.chart)
	if s.cachedLegendLayer != "" && key == s.cachedLegendKey {
		return s.cachedLegendLayer
	}

	plotH, _ := s.axes.Y.Chart.Range()
	var b strings.Builder
	fmt.Fprintf(&b, `<g class="legend" transform="translate(%d,%.0f)" font-size="10">`+"\n",
		marginLeft, plotH+float64(marginTop)+30)
	x := 0
	for _, ds := range s.chart.Datasets {
		style := s.styles.For(ds)
		opacity := 1.0
		if ds.Hidden {
			opacity = 0.3
		}
		fmt.Fprintf(&b,
			`<rect x="%d" y="-8" width="10" height="10" fill="%s" opacity="%.1f"/>`+"\n",
			x, style.Color, opacity)
		weight := "normal"
		if ds.Highlighted {
			weight = "bold"
		}
		fmt.Fprintf(&b,
			`<text x="%d" y="0" font-weight="%s" opacity="%.1f">%s</text>`+"\n",
			x+14, weight, opacity, escape(ds.Name))
		x += 14 + 7*len(ds.Name) + 12
	}
	b.WriteString("</g>\n")

	s.cachedLegendLayer = b.String()
	s.cachedLegendKey = key
	return s.cachedLegendLayer
}

// visibleRange returns the [lb, ub) index window of points inside the
// current x chart-domain, by binary search on the x-sorted series.
func (s *Surface) visibleRange(ds *chartdata.Dataset) (int, int) {
	xLo, xHi := s.axes.X.Chart.Domain()
	lb := searchX(ds.Points, xLo)
	ub := searchX(ds.Points, math.Nextafter(xHi, math.Inf(1)))
	return lb, ub
}

func searchX(points []chartdata.Datapoint, x float64) int {
	return sort.Search(len(points), func(i int) bool {
		return points[i].X >= x
	})
}

func legendKey(c *chartdata.Chart) string {
	var b strings.Builder
	for _, ds := range c.Datasets {
		fmt.Fprintf(&b, "%s:%t:%t;", ds.Name, ds.Hidden, ds.Highlighted)
	}
	return b.String()
}

// ticks returns tick positions covering a scale's domain: powers of ten for
// log scales, a 1/2/5 progression otherwise.
func ticks(scale *domainscale.Scale, n int) []float64 {
	lo, hi := scale.Domain()
	if scale.Kind() == domainscale.Log {
		var out []float64
		for e := math.Floor(math.Log10(lo)); e <= math.Ceil(math.Log10(hi)); e++ {
			t := math.Pow(10, e)
			if t >= lo && t <= hi {
				out = append(out, t)
			}
		}
		return out
	}

	step := niceStep((hi - lo) / float64(n))
	if step <= 0 {
		return []float64{lo}
	}
	var out []float64
	for t := math.Ceil(lo/step) * step; t <= hi; t += step {
		out = append(out, t)
	}
	return out
}

func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag < 1.5:
		return mag
	case raw/mag < 3.5:
		return 2 * mag
	case raw/mag < 7.5:
		return 5 * mag
	}
	return 10 * mag
}

func tickLabel(scale *domainscale.Scale, t float64) string {
	if scale.IsTime() {
		return time.UnixMilli(int64(t)).UTC().Format("15:04:05")
	}
	return strings.TrimRight(strings.TrimRight(
		fmt.Sprintf("%.3f", t), "0"), ".")
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
