package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/interaction"
)

// FormatStat renders a mean or median, substituting the no-samples sentinel
// for a statistic that was never computable.
func FormatStat(v float64) string {
	if math.IsNaN(v) {
		return chartdata.NoSamplesLabel
	}
	return strings.TrimRight(strings.TrimRight(
		fmt.Sprintf("%.4f", v), "0"), ".")
}

// RenderSideTable draws the per-dataset table beside the chart: name, mean,
// median, and the current value under the cursor. Rows for hidden datasets
// are dimmed; histogram charts add the percentile columns.
func (s *Surface) RenderSideTable(cursor []interaction.CursorValue) string {
	current := map[*chartdata.Dataset]float64{}
	for _, cv := range cursor {
		current[cv.Dataset] = cv.Point.Y
	}

	histogram := s.chart.Options.DataModel == chartdata.ModelHistogram

	var b strings.Builder
	b.WriteString(`<g class="side-table" font-size="10">` + "\n")
	header := `<text x="0" y="0" font-weight="bold">name  mean  median  current</text>`
	if histogram {
		header = `<text x="0" y="0" font-weight="bold">name  mean  median  p90  p95  p99  p9999</text>`
	}
	b.WriteString(header + "\n")

	y := 14
	for _, ds := range s.chart.Datasets {
		style := s.styles.For(ds)
		opacity := 1.0
		if ds.Hidden {
			opacity = 0.3
		}

		var row string
		if histogram && ds.Histogram != nil {
			h := ds.Histogram
			row = fmt.Sprintf("%s  %s  %s  %s  %s  %s  %s",
				escape(ds.Name), FormatStat(h.Mean), FormatStat(h.Median),
				FormatStat(h.P90), FormatStat(h.P95),
				FormatStat(h.P99), FormatStat(h.P9999))
		} else {
			cur := "-"
			if v, ok := current[ds]; ok {
				cur = FormatStat(v)
			}
			row = fmt.Sprintf("%s  %s  %s  %s",
				escape(ds.Name), FormatStat(ds.Mean), FormatStat(ds.Median), cur)
		}

		fmt.Fprintf(&b,
			`<text x="0" y="%d" fill="%s" opacity="%.1f">%s</text>`+"\n",
			y, style.Color, opacity, row)
		y += 14
	}
	b.WriteString("</g>\n")
	return b.String()
}
