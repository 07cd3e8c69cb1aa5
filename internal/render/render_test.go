package render_test

import (
	"math"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/domainscale"
	"github.com/distributed-system-analysis/jschart/internal/render"
)

func surfaceFor(t *testing.T, opts chartdata.Options, series map[string][][2]float64) (*render.Surface, *chartdata.Chart, *domainscale.Axes) {
	t.Helper()
	c := chartdata.NewChart(opts)
	i := 0
	for _, name := range []string{"a", "b", "c"} {
		points, ok := series[name]
		if !ok {
			continue
		}
		ds := chartdata.NewDataset(i, name)
		for _, xy := range points {
			ds.Append(chartdata.NewDatapoint(xy[0], xy[1]))
		}
		ds.SortByX()
		ds.ComputeStats()
		c.Datasets = append(c.Datasets, ds)
		i++
	}
	c.State.VisibleDatasets = len(c.Datasets)

	axes, err := domainscale.NewAxes(c, 400, 200)
	require.NoError(t, err)
	return render.NewSurface(c, axes), c, axes
}

func TestRenderSVG(t *testing.T) {
	surface, _, _ := surfaceFor(t,
		chartdata.Options{Title: "throughput", DataModel: chartdata.ModelXY},
		map[string][][2]float64{
			"a": {{0, 1}, {1, 3}, {2, 2}},
			"b": {{0, 2}, {1, 2}, {2, 4}},
		})

	svg := surface.RenderSVG(nil, nil)

	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "throughput")
	assert.Contains(t, svg, `class="axes"`)
	assert.Contains(t, svg, `class="legend"`)
	// One path per visible dataset.
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.NotContains(t, svg, "Load Errors")
}

func TestRenderSVG_HiddenDatasetsSkipped(t *testing.T) {
	surface, c, _ := surfaceFor(t,
		chartdata.Options{DataModel: chartdata.ModelXY},
		map[string][][2]float64{
			"a": {{0, 1}, {1, 3}},
			"b": {{0, 2}, {1, 2}},
		})
	c.SetHidden(c.Datasets[0], true)

	svg := surface.RenderSVG(nil, nil)
	assert.Equal(t, 1, strings.Count(svg, "<path"))
}

func TestRenderSVG_LoadErrorsLabel(t *testing.T) {
	surface, c, _ := surfaceFor(t,
		chartdata.Options{DataModel: chartdata.ModelXY},
		map[string][][2]float64{"a": {{0, 1}, {1, 3}}})
	c.State.LoadErrors = 2

	assert.Contains(t, surface.RenderSVG(nil, nil), "Load Errors: 2")
}

func TestRenderSVG_StackedAreas(t *testing.T) {
	surface, _, _ := surfaceFor(t,
		chartdata.Options{DataModel: chartdata.ModelXY, Stacked: true},
		map[string][][2]float64{
			"a": {{0, 1}, {1, 3}},
			"b": {{0, 2}, {1, 2}},
		})

	svg := surface.RenderSVG(nil, nil)
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.Contains(t, svg, `fill-opacity="0.8"`)
}

func TestExportCSV_VisibleDomainOnly(t *testing.T) {
	surface, _, axes := surfaceFor(t,
		chartdata.Options{DataModel: chartdata.ModelXY},
		map[string][][2]float64{
			"a": {{0, 1}, {1, 2}},
			"b": {{1, 5}, {2, 6}},
		})

	// Zoom so x=2 falls outside the visible domain.
	axes.X.Chart.SetDomain(0, 1.5)

	fs := afero.NewMemMapFs()
	require.NoError(t, surface.ExportCSV(fs, "out.csv"))

	data, err := afero.ReadFile(fs, "out.csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "x,a,b", lines[0])
	// Sparse cells stay blank, and x=2 is excluded.
	assert.Equal(t, "0,1,", lines[1])
	assert.Equal(t, "1,2,5", lines[2])
}

func TestSnapshotPNG(t *testing.T) {
	surface, _, _ := surfaceFor(t,
		chartdata.Options{Title: "snap", DataModel: chartdata.ModelXY},
		map[string][][2]float64{"a": {{0, 1}, {1, 3}, {2, 2}}})

	fs := afero.NewMemMapFs()
	require.NoError(t, surface.SnapshotPNG(fs, "snap.png"))

	data, err := afero.ReadFile(fs, "snap.png")
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestFormatStat(t *testing.T) {
	assert.Equal(t, chartdata.NoSamplesLabel, render.FormatStat(math.NaN()))
	assert.Equal(t, "2.5", render.FormatStat(2.5))
	assert.Equal(t, "3", render.FormatStat(3.0))
}

func TestRenderSideTable(t *testing.T) {
	surface, _, _ := surfaceFor(t,
		chartdata.Options{DataModel: chartdata.ModelXY},
		map[string][][2]float64{"a": {{0, 1}, {1, 3}}})

	table := surface.RenderSideTable(nil)
	assert.Contains(t, table, "a  2  2")
}
