// Package liveupdate polls a streaming JSON source and folds new samples
// into a chart without disturbing interaction state.
package liveupdate

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/distributed-system-analysis/jschart/internal/chartapi"
	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/interaction"
	"github.com/distributed-system-analysis/jschart/internal/observability"
	"github.com/distributed-system-analysis/jschart/internal/sourceloader"
	"github.com/distributed-system-analysis/jschart/internal/waiting"
)

// Scheduler issues a delta fetch per tick, keyed by the newest timestamp
// across the chart's datasets, and replays the last cursor position so
// displayed values stay current without a real mouse event.
type Scheduler struct {
	chart      *chartdata.Chart
	controller *interaction.Controller
	client     *chartapi.Client
	delay      waiting.Delay
	logger     *observability.CoreLogger

	paused atomic.Bool
}

func NewScheduler(
	chart *chartdata.Chart,
	controller *interaction.Controller,
	client *chartapi.Client,
	delay waiting.Delay,
	logger *observability.CoreLogger,
) *Scheduler {
	return &Scheduler{
		chart:      chart,
		controller: controller,
		client:     client,
		delay:      delay,
		logger:     logger,
	}
}

// Run polls until the context is canceled. Each tick is skipped while
// paused; pausing never touches accumulated dataset state.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		tick, cancel := s.delay.Wait()
		select {
		case <-ctx.Done():
			cancel()
			return
		case <-tick:
		}

		if s.paused.Load() {
			continue
		}
		s.pollOnce()
	}
}

// Pause stops issuing delta fetches; the timer keeps running.
func (s *Scheduler) Pause() {
	s.paused.Store(true)
	s.chart.State.LiveUpdate = false
}

// Resume restarts delta fetches.
func (s *Scheduler) Resume() {
	s.paused.Store(false)
	s.chart.State.LiveUpdate = true
}

func (s *Scheduler) pollOnce() {
	query := url.Values{}
	last := s.chart.LastTimestamp()
	if !math.IsNaN(last) {
		query.Set("time", strconv.FormatFloat(last, 'f', -1, 64))
	}
	for k, v := range s.chart.Options.Live.QueryArgs {
		query.Set(k, v)
	}

	body, err := s.client.Get(s.chart.Options.Source.URL, query)
	if err != nil {
		// A missed poll is not an error state; the next tick retries.
		s.logger.Warn("liveupdate: delta fetch failed", "error", err)
		return
	}
	series, err := sourceloader.ParseJSONSeries(body)
	if err != nil {
		s.logger.Warn("liveupdate: bad delta payload", "error", err)
		return
	}

	s.Apply(series)
}

// Apply appends a delta's samples to the matching datasets, trims history
// past the configured length, recomputes statistics, and refreshes domains
// and cursor state. Exported so tests can drive the scheduler without HTTP.
func (s *Scheduler) Apply(series *sourceloader.JSONSeries) {
	byName := map[string]*chartdata.Dataset{}
	for _, ds := range s.chart.Datasets {
		byName[ds.Name] = ds
	}

	timeBased := s.chart.TimeBased()
	appended := false
	for col, name := range series.Names {
		if col == series.XAxisIndex {
			continue
		}
		ds, ok := byName[name]
		if !ok {
			continue
		}
		for _, row := range series.Rows {
			if col >= len(row) || series.XAxisIndex >= len(row) {
				continue
			}
			p := chartdata.NewDatapoint(row[series.XAxisIndex], row[col])
			if timeBased {
				p.Timestamp = p.X
			}
			ds.Append(p)
			appended = true
		}
	}
	if !appended {
		return
	}

	history := s.chart.Options.Live.History
	for _, ds := range s.chart.Datasets {
		// A delta only promises samples newer than the fetch key, not that
		// rows arrive x-ascending; domain and cursor lookups need sorted
		// points.
		ds.SortByX()
		if history > 0 && len(ds.Points) > history {
			ds.Points = ds.Points[len(ds.Points)-history:]
			recomputeMaxY(ds)
		}
		ds.ComputeStats()
		if s.chart.Options.DataModel == chartdata.ModelHistogram {
			ds.Histogram = chartdata.ComputeHistogram(ds.Points)
		}
	}

	s.controller.RefreshData()
}

// recomputeMaxY rescans after trimming, since the running max may have
// belonged to a dropped sample.
func recomputeMaxY(ds *chartdata.Dataset) {
	ds.MaxY = math.Inf(-1)
	for _, p := range ds.Points {
		if p.Y > ds.MaxY {
			ds.MaxY = p.Y
		}
	}
}
