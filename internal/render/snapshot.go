package render

import (
	"fmt"

	"github.com/spf13/afero"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// SnapshotPNG rasterizes the current view to a PNG image: visible datasets
// only, restricted to the chart-scale domains. go-chart needs at least two
// points to stroke a series, so shorter ones are skipped.
func (s *Surface) SnapshotPNG(fs afero.Fs, path string) error {
	xLo, xHi := s.axes.X.Chart.Domain()
	yLo, yHi := s.axes.Y.Chart.Domain()

	var series []chart.Series
	for _, ds := range s.chart.Datasets {
		if ds.Hidden {
			continue
		}
		lb, ub := s.visibleRange(ds)
		if ub-lb < 2 {
			continue
		}
		xs := make([]float64, 0, ub-lb)
		ys := make([]float64, 0, ub-lb)
		for i := lb; i < ub; i++ {
			xs = append(xs, ds.Points[i].X)
			ys = append(ys, ds.Points[i].Y)
		}
		color := drawing.ColorFromHex(s.styles.For(ds).Color[1:])
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Name,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: color, StrokeWidth: 1.5},
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("render: no drawable series in the visible domain")
	}

	ch := chart.Chart{
		Title:  s.chart.Options.Title,
		Width:  s.width,
		Height: s.height,
		XAxis:  chart.XAxis{Range: &chart.ContinuousRange{Min: xLo, Max: xHi}},
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: yLo, Max: yHi}},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("render: creating PNG snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := ch.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render: rasterizing snapshot: %w", err)
	}
	return nil
}
