package liveupdate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distributed-system-analysis/jschart/internal/chartapi"
	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/chartregistry"
	"github.com/distributed-system-analysis/jschart/internal/domainscale"
	"github.com/distributed-system-analysis/jschart/internal/interaction"
	"github.com/distributed-system-analysis/jschart/internal/liveupdate"
	"github.com/distributed-system-analysis/jschart/internal/observability"
	"github.com/distributed-system-analysis/jschart/internal/sourceloader"
	"github.com/distributed-system-analysis/jschart/internal/waiting"
	"github.com/distributed-system-analysis/jschart/internal/waitingtest"
)

func liveChart(t *testing.T, opts chartdata.Options) (*chartdata.Chart, *interaction.Controller) {
	t.Helper()

	c := chartdata.NewChart(opts)
	ds := chartdata.NewDataset(0, "reads")
	for i, y := range []float64{5, 7, 6} {
		p := chartdata.NewDatapoint(float64(1000+i), y)
		p.Timestamp = p.X
		ds.Append(p)
	}
	ds.ComputeStats()
	c.Datasets = append(c.Datasets, ds)
	c.State.VisibleDatasets = 1

	registry := chartregistry.New()
	h := registry.Register(c)
	axes, err := domainscale.NewAxes(c, 100, 100)
	require.NoError(t, err)
	registry.Get(h).Axes = axes
	return c, interaction.NewController(registry, h)
}

func deltaSeries(t *testing.T, rows [][]float64) *sourceloader.JSONSeries {
	t.Helper()
	return &sourceloader.JSONSeries{
		Names:      []string{"time", "reads"},
		XAxis:      "time",
		XAxisIndex: 0,
		Rows:       rows,
	}
}

func TestApply_AppendsAndRecomputes(t *testing.T) {
	c, ctrl := liveChart(t, chartdata.Options{DataModel: chartdata.ModelTimeseries})
	sched := liveupdate.NewScheduler(c, ctrl, nil, waiting.NoDelay(), observability.NewNoOpLogger())

	sched.Apply(deltaSeries(t, [][]float64{{1003, 9}, {1004, 3}}))

	ds := c.Datasets[0]
	require.Len(t, ds.Points, 5)
	assert.Equal(t, 1004.0, ds.Points[4].X)
	assert.Equal(t, 1004.0, ds.Points[4].Timestamp)
	assert.Equal(t, 6.0, ds.Mean)
	assert.Equal(t, 9.0, ds.MaxY)
	assert.Equal(t, 1004.0, c.LastTimestamp())
}

func TestApply_TrimsHistoryAndRescansMax(t *testing.T) {
	c, ctrl := liveChart(t, chartdata.Options{
		DataModel: chartdata.ModelTimeseries,
		Live:      chartdata.LiveOptions{History: 3},
	})
	sched := liveupdate.NewScheduler(c, ctrl, nil, waiting.NoDelay(), observability.NewNoOpLogger())

	// The initial max (7 at x=1001) falls off the retained window.
	sched.Apply(deltaSeries(t, [][]float64{{1003, 4}, {1004, 2}}))

	ds := c.Datasets[0]
	require.Len(t, ds.Points, 3)
	assert.Equal(t, 1002.0, ds.Points[0].X)
	assert.Equal(t, 6.0, ds.MaxY)
	assert.Equal(t, 4.0, ds.Mean)
}

func TestApply_OutOfOrderDeltaStaysSorted(t *testing.T) {
	c, ctrl := liveChart(t, chartdata.Options{DataModel: chartdata.ModelTimeseries})
	sched := liveupdate.NewScheduler(c, ctrl, nil, waiting.NoDelay(), observability.NewNoOpLogger())

	sched.Apply(deltaSeries(t, [][]float64{{2000, 9}, {1500, 3}}))

	ds := c.Datasets[0]
	require.Len(t, ds.Points, 5)
	for i := 1; i < len(ds.Points); i++ {
		assert.LessOrEqual(t, ds.Points[i-1].X, ds.Points[i].X)
	}
	assert.Equal(t, 1500.0, ds.Points[3].X)
	assert.Equal(t, 2000.0, ds.Points[4].X)
	assert.Equal(t, 2000.0, c.LastTimestamp())
	assert.Equal(t, 6.0, ds.Mean)
}

func TestApply_OutOfOrderDeltaTrimsOldestByX(t *testing.T) {
	c, ctrl := liveChart(t, chartdata.Options{
		DataModel: chartdata.ModelTimeseries,
		Live:      chartdata.LiveOptions{History: 4},
	})
	sched := liveupdate.NewScheduler(c, ctrl, nil, waiting.NoDelay(), observability.NewNoOpLogger())

	sched.Apply(deltaSeries(t, [][]float64{{2000, 9}, {1500, 3}}))

	// Trimming happens after the sort, so the dropped sample is the oldest
	// by x, not the first delta row.
	ds := c.Datasets[0]
	require.Len(t, ds.Points, 4)
	assert.Equal(t, 1001.0, ds.Points[0].X)
	assert.Equal(t, 9.0, ds.MaxY)
}

func TestApply_UnknownSeriesIgnored(t *testing.T) {
	c, ctrl := liveChart(t, chartdata.Options{DataModel: chartdata.ModelTimeseries})
	sched := liveupdate.NewScheduler(c, ctrl, nil, waiting.NoDelay(), observability.NewNoOpLogger())

	sched.Apply(&sourceloader.JSONSeries{
		Names:      []string{"time", "writes"},
		XAxis:      "time",
		XAxisIndex: 0,
		Rows:       [][]float64{{1003, 1}},
	})

	assert.Len(t, c.Datasets[0].Points, 3)
	assert.Len(t, c.Datasets, 1)
}

func TestApply_KeepsUserZoom(t *testing.T) {
	c, ctrl := liveChart(t, chartdata.Options{DataModel: chartdata.ModelTimeseries})
	ctrl.BrushX(25, 75)
	sched := liveupdate.NewScheduler(c, ctrl, nil, waiting.NoDelay(), observability.NewNoOpLogger())

	sched.Apply(deltaSeries(t, [][]float64{{1003, 9}}))

	// RefreshData must not clobber the zoomed chart domain.
	assert.True(t, c.State.UserXZoomed)
}

func TestPauseResume(t *testing.T) {
	c, ctrl := liveChart(t, chartdata.Options{DataModel: chartdata.ModelTimeseries})
	sched := liveupdate.NewScheduler(c, ctrl, nil, waiting.NoDelay(), observability.NewNoOpLogger())

	sched.Pause()
	assert.False(t, c.State.LiveUpdate)
	sched.Resume()
	assert.True(t, c.State.LiveUpdate)
}

func TestRun_PollsOnTick(t *testing.T) {
	// Only the first poll returns samples, so the chart mutates exactly once
	// and later polls are read-only.
	var polled atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/live.json", func(w http.ResponseWriter, r *http.Request) {
		rows := "[]"
		if polled.CompareAndSwap(false, true) {
			// The delta fetch carries the newest timestamp seen so far.
			assert.Equal(t, "1002", r.URL.Query().Get("time"))
			rows = "[[2000, 11]]"
		}
		_, _ = w.Write([]byte(`{
			"data_series_names": ["time", "reads"],
			"x_axis_series": "time",
			"data": ` + rows + `
		}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	base, err := url.Parse(server.URL)
	require.NoError(t, err)
	client := chartapi.New(base).NewClient(chartapi.NewRetryClient())

	c, ctrl := liveChart(t, chartdata.Options{
		DataModel: chartdata.ModelTimeseries,
		Source:    chartdata.SourceOptions{Kind: chartdata.SourceJSON, URL: "/live.json"},
	})

	applied := make(chan struct{}, 1)
	ctrl.OnViewChange(func() {
		select {
		case applied <- struct{}{}:
		default:
		}
	})

	delay := waitingtest.NewFakeDelay()
	sched := liveupdate.NewScheduler(c, ctrl, client, delay, observability.NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Run(ctx)
	}()

	// Keep ticking until the delta lands; a tick with no waiter is lost.
	require.Eventually(t, func() bool {
		delay.Tick(true)
		select {
		case <-applied:
			return true
		default:
			return false
		}
	}, 5*time.Second, 5*time.Millisecond)

	require.Len(t, c.Datasets[0].Points, 4)
	assert.Equal(t, 11.0, c.Datasets[0].Points[3].Y)

	cancel()
	<-done
}
