// Package sourceloader fetches and parses chart data resources into
// datasets. Loads for one chart run under a bounded-concurrency task queue
// whose barrier always drains: a failed fetch yields a placeholder dataset,
// never an aborted chart.
package sourceloader

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/distributed-system-analysis/jschart/internal/chartapi"
	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/observability"
)

// resourceCacheSize bounds the per-loader cache of fetched resource bodies.
// Static sources shared by several charts on one page load once.
const resourceCacheSize = 32

type Loader struct {
	client *chartapi.Client
	cache  *lru.Cache
	logger *observability.CoreLogger
}

func New(client *chartapi.Client, logger *observability.CoreLogger) *Loader {
	cache, _ := lru.New(resourceCacheSize)
	return &Loader{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// Load selects the chart's loading strategy, runs it to completion, prunes
// failed sources, and computes per-dataset statistics. On return the chart
// is ready for domain computation and rendering.
func (l *Loader) Load(c *chartdata.Chart) error {
	switch c.Options.Source.Kind {
	case chartdata.SourcePacked:
		l.loadPacked(c)
	case chartdata.SourcePlotFiles:
		l.loadPlotFiles(c)
	case chartdata.SourceCSV:
		if err := l.loadCSV(c); err != nil {
			return err
		}
	case chartdata.SourceJSON:
		l.loadJSON(c)
	default:
		return fmt.Errorf("sourceloader: unsupported source kind %q",
			c.Options.Source.Kind)
	}

	l.pruneEmpty(c)
	l.finalize(c)
	return nil
}

// fetch returns a resource body, serving repeat loads from the LRU cache.
func (l *Loader) fetch(ref string) ([]byte, error) {
	if cached, ok := l.cache.Get(ref); ok {
		return cached.([]byte), nil
	}
	body, err := l.client.Get(ref, nil)
	if err != nil {
		return nil, err
	}
	l.cache.Add(ref, body)
	return body, nil
}

// placeholder is the zero-sample dataset substituted for a failed source.
// It is pruned once the chart's queue drains and counted as a load error.
func placeholder(index int, ref string) *chartdata.Dataset {
	return chartdata.NewDataset(index, "Error loading "+ref)
}

func (l *Loader) loadPacked(c *chartdata.Chart) {
	ref := c.Options.Source.URL
	queue := NewTaskQueue(0)
	queue.Go(func() {
		body, err := l.fetch(ref)
		if err != nil {
			l.logger.Warn("sourceloader: packed fetch failed",
				"url", ref, "error", err)
			c.Datasets = []*chartdata.Dataset{placeholder(0, ref)}
			return
		}
		c.Datasets = ParsePacked(body)
	})
	queue.Wait()
}

func (l *Loader) loadPlotFiles(c *chartdata.Chart) {
	refs := c.Options.Source.URLs
	slots := make([]*chartdata.Dataset, len(refs))

	// Unbounded fetch parallelism; dataset identity comes from the slot,
	// not from completion order.
	queue := NewTaskQueue(0)
	for i, ref := range refs {
		queue.Go(func() {
			body, err := l.fetch(ref)
			if err != nil {
				l.logger.Warn("sourceloader: plot fetch failed",
					"url", ref, "error", err)
				slots[i] = placeholder(i, ref)
				return
			}
			slots[i] = ParsePlotFile(i, ref, body)
		})
	}
	queue.Wait()

	c.Datasets = slots
}

// loadCSV processes CSV resources strictly in order: each file's column
// assignment depends on having parsed every earlier header first.
func (l *Loader) loadCSV(c *chartdata.Chart) error {
	refs := c.Options.Source.URLs
	if len(refs) == 0 {
		refs = []string{c.Options.Source.URL}
	}

	var shapeErr error
	queue := NewTaskQueue(1)
	queue.Go(func() {
		for _, ref := range refs {
			body, err := l.fetch(ref)
			if err != nil {
				l.logger.Warn("sourceloader: CSV fetch failed",
					"url", ref, "error", err)
				c.Datasets = append(c.Datasets,
					placeholder(len(c.Datasets), ref))
				continue
			}
			parsed, err := ParseCSV(body, c.Options.Source.CSVTimeseries)
			if err != nil {
				// Malformed shape abandons the chart's construction.
				shapeErr = err
				return
			}
			for _, ds := range parsed {
				ds.Index = len(c.Datasets)
				c.Datasets = append(c.Datasets, ds)
			}
		}
	})
	queue.Wait()

	return shapeErr
}

func (l *Loader) loadJSON(c *chartdata.Chart) {
	ref := c.Options.Source.URL
	queue := NewTaskQueue(0)
	queue.Go(func() {
		body, err := l.fetch(ref)
		if err != nil {
			l.logger.Warn("sourceloader: JSON fetch failed",
				"url", ref, "error", err)
			c.Datasets = []*chartdata.Dataset{placeholder(0, ref)}
			return
		}
		series, err := ParseJSONSeries(body)
		if err != nil {
			l.logger.Warn("sourceloader: bad JSON series",
				"url", ref, "error", err)
			c.Datasets = []*chartdata.Dataset{placeholder(0, ref)}
			return
		}
		c.Datasets = series.Datasets()
	})
	queue.Wait()
}

// pruneEmpty drops zero-value datasets (placeholders and sources that
// parsed to nothing) and counts them as load errors.
func (l *Loader) pruneEmpty(c *chartdata.Chart) {
	kept := c.Datasets[:0]
	for _, ds := range c.Datasets {
		if !ds.HasSamples() {
			c.State.LoadErrors++
			continue
		}
		kept = append(kept, ds)
	}
	c.Datasets = kept
	for i, ds := range c.Datasets {
		ds.Index = i
	}
}

// finalize orders points, computes statistics, applies the optional
// mean sort and hide-below threshold, and settles the visible count.
func (l *Loader) finalize(c *chartdata.Chart) {
	for _, ds := range c.Datasets {
		ds.SortByX()
		if c.TimeBased() {
			stampFromX(ds)
		}
		ds.ComputeStats()
		if c.Options.DataModel == chartdata.ModelHistogram {
			ds.Histogram = chartdata.ComputeHistogram(ds.Points)
		}
	}

	if c.Options.SortDatasets {
		c.SortDatasetsByMean()
	}

	c.State.VisibleDatasets = len(c.Datasets)
	if c.Options.HideBelow != nil {
		for _, ds := range c.Datasets {
			if ds.SortValue() < *c.Options.HideBelow {
				c.SetHidden(ds, true)
			}
		}
	}
}

// stampFromX backfills wall-clock timestamps on time-based charts whose
// source format has no separate timestamp column.
func stampFromX(ds *chartdata.Dataset) {
	for i := range ds.Points {
		if !ds.Points[i].HasTimestamp() {
			ds.Points[i].Timestamp = ds.Points[i].X
		}
	}
}
