package sourceloader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distributed-system-analysis/jschart/internal/sourceloader"
)

func TestParsePacked(t *testing.T) {
	packed := "--- JSChart Packed Plot File V1 ---\n" +
		"#LABEL:A\n0 1\n1 3\n" +
		"--- JSChart Packed Plot File V1 ---\n" +
		"#LABEL:B\n0 2\n1 2\n"

	datasets := sourceloader.ParsePacked([]byte(packed))
	require.Len(t, datasets, 2)

	assert.Equal(t, "A", datasets[0].Name)
	assert.Equal(t, "B", datasets[1].Name)
	require.Len(t, datasets[0].Points, 2)
	assert.Equal(t, 1.0, datasets[0].Points[0].Y)
	assert.Equal(t, 3.0, datasets[0].Points[1].Y)

	datasets[0].ComputeStats()
	datasets[1].ComputeStats()
	assert.Equal(t, 2.0, datasets[0].Mean)
	assert.Equal(t, 2.0, datasets[1].Mean)
}

func TestParsePlotFile(t *testing.T) {
	ds := sourceloader.ParsePlotFile(3, "fallback", []byte("#LABEL:iops\n1 10\n2 20\n"))
	assert.Equal(t, 3, ds.Index)
	assert.Equal(t, "iops", ds.Name)
	require.Len(t, ds.Points, 2)

	// Without a label line the fallback name sticks.
	ds = sourceloader.ParsePlotFile(0, "fallback", []byte("1 10\n"))
	assert.Equal(t, "fallback", ds.Name)
}

func TestParsePlotFile_SkipsGarbageRows(t *testing.T) {
	ds := sourceloader.ParsePlotFile(0, "x", []byte("1 10\nnot numbers\n\n2 20\n3\n"))
	require.Len(t, ds.Points, 2)
	assert.Equal(t, 20.0, ds.Points[1].Y)
}

func TestParseCSV_SparseCells(t *testing.T) {
	datasets, err := sourceloader.ParseCSV([]byte("x,a,b\n0,1,\n1,2,5\n2,,6\n"), false)
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	a, b := datasets[0], datasets[1]
	assert.Equal(t, "a", a.Name)
	require.Len(t, a.Points, 2)
	assert.Equal(t, [2]float64{0, 1}, [2]float64{a.Points[0].X, a.Points[0].Y})
	assert.Equal(t, [2]float64{1, 2}, [2]float64{a.Points[1].X, a.Points[1].Y})

	assert.Equal(t, "b", b.Name)
	require.Len(t, b.Points, 2)
	assert.Equal(t, [2]float64{1, 5}, [2]float64{b.Points[0].X, b.Points[0].Y})
	assert.Equal(t, [2]float64{2, 6}, [2]float64{b.Points[1].X, b.Points[1].Y})
}

func TestParseCSV_DualTimestamp(t *testing.T) {
	data := "ts_a,a,ts_b,b\n100,1,105,2\n200,3,,\n"
	datasets, err := sourceloader.ParseCSV([]byte(data), true)
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	assert.Equal(t, "a", datasets[0].Name)
	require.Len(t, datasets[0].Points, 2)
	assert.Equal(t, 100.0, datasets[0].Points[0].Timestamp)
	require.Len(t, datasets[1].Points, 1)
	assert.Equal(t, 105.0, datasets[1].Points[0].X)
}

func TestParseCSV_DualTimestampOddColumns(t *testing.T) {
	_, err := sourceloader.ParseCSV([]byte("ts,a,b\n1,2,3\n"), true)
	assert.ErrorContains(t, err, "odd column count")
}

func TestParseJSONSeries(t *testing.T) {
	payload := `{
		"data_series_names": ["time", "reads", "writes"],
		"x_axis_series": "time",
		"data": [[0, 10, 20], [1, 11, 21], [2, NaN, 22]]
	}`
	series, err := sourceloader.ParseJSONSeries([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 0, series.XAxisIndex)

	datasets := series.Datasets()
	require.Len(t, datasets, 2)
	assert.Equal(t, "reads", datasets[0].Name)
	assert.Equal(t, "writes", datasets[1].Name)
	require.Len(t, datasets[1].Points, 3)
	assert.Equal(t, [2]float64{2, 22},
		[2]float64{datasets[1].Points[2].X, datasets[1].Points[2].Y})
}

func TestParseJSONSeries_MissingXAxis(t *testing.T) {
	payload := `{"data_series_names": ["a"], "x_axis_series": "time", "data": []}`
	_, err := sourceloader.ParseJSONSeries([]byte(payload))
	assert.ErrorContains(t, err, "x_axis_series")
}
