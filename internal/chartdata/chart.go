package chartdata

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DataModel selects how a chart's samples are interpreted.
type DataModel string

const (
	ModelXY         DataModel = "xy"
	ModelTimeseries DataModel = "timeseries"
	ModelHistogram  DataModel = "histogram"
)

// ParseDataModel validates a data model name from configuration.
func ParseDataModel(s string) (DataModel, error) {
	switch DataModel(s) {
	case ModelXY, ModelTimeseries, ModelHistogram:
		return DataModel(s), nil
	}
	return "", fmt.Errorf("chartdata: unsupported data model %q", s)
}

// NoSelection is the ChartSelection value when no dataset holds the
// highlight lock.
const NoSelection = -1

// State is the mutable view state of one chart. Event handlers treat it as
// the single source of truth; it is only ever touched from one goroutine.
type State struct {
	UserXZoomed bool
	UserYZoomed bool

	// ChartSelection is the index of the dataset holding the highlight
	// lock, or NoSelection.
	ChartSelection int

	// CursorValue is the data-space x under the cursor; CursorInPlot is
	// false when the cursor left the plot area.
	CursorValue  float64
	CursorInPlot bool

	LiveUpdate      bool
	VisibleDatasets int

	// LoadErrors counts sources that failed to load and were pruned.
	LoadErrors int
}

// AxisOptions are explicit per-axis overrides from the page configuration.
type AxisOptions struct {
	// Min and Max override the computed domain bounds when non-nil.
	Min *float64
	Max *float64

	// Scale is "linear", "log", or "time". Empty means linear ("time" is
	// implied for the x axis of a timeseries chart).
	Scale string
}

// SourceKind selects the loading strategy for a chart.
type SourceKind string

const (
	SourcePacked    SourceKind = "packed"
	SourcePlotFiles SourceKind = "plotfiles"
	SourceCSV       SourceKind = "csv"
	SourceJSON      SourceKind = "json"
)

// SourceOptions describes where a chart's data comes from.
type SourceOptions struct {
	Kind SourceKind

	// URL is the resource for the packed, csv, and json strategies.
	URL string

	// URLs are the per-series resources for the plotfiles strategy; slot i
	// becomes dataset i regardless of fetch completion order.
	URLs []string

	// CSVTimeseries treats CSV columns as (timestamp_ms, value) pairs per
	// series instead of a shared x column.
	CSVTimeseries bool
}

// LiveOptions configures the live update scheduler.
type LiveOptions struct {
	// Interval between delta fetches; zero disables live updates.
	Interval time.Duration

	// History caps each dataset's point count; oldest samples are trimmed
	// beyond it. Zero means unbounded.
	History int

	// QueryArgs are extra query parameters carried on every delta fetch.
	QueryArgs map[string]string
}

// Options is the immutable per-chart configuration.
type Options struct {
	Title     string
	DataModel DataModel
	Stacked   bool

	X AxisOptions
	Y AxisOptions

	Source SourceOptions
	Live   LiveOptions

	// SortDatasets orders datasets descending by mean once loading settles.
	SortDatasets bool

	// HideBelow hides every dataset whose mean is under the threshold once
	// loading settles.
	HideBelow *float64
}

// Chart aggregates the datasets and view state of one chart. Axis scale
// state lives in the domainscale package, keyed to the chart by the
// registry, so this package stays renderable-agnostic.
type Chart struct {
	Options  Options
	Datasets []*Dataset
	State    State
}

// NewChart returns an empty chart with idle state.
func NewChart(opts Options) *Chart {
	return &Chart{
		Options: opts,
		State: State{
			ChartSelection: NoSelection,
			CursorValue:    math.NaN(),
			LiveUpdate:     opts.Live.Interval > 0,
		},
	}
}

// SetHidden flips a dataset's hidden flag and maintains the
// VisibleDatasets counter atomically with the flag change.
func (c *Chart) SetHidden(ds *Dataset, hidden bool) {
	if ds.Hidden == hidden {
		return
	}
	ds.Hidden = hidden
	if hidden {
		c.State.VisibleDatasets--
	} else {
		c.State.VisibleDatasets++
	}
}

// VisibleCount recounts datasets with hidden == false. State.VisibleDatasets
// must always agree with it; tests use the recount to verify the invariant.
func (c *Chart) VisibleCount() int {
	n := 0
	for _, ds := range c.Datasets {
		if !ds.Hidden {
			n++
		}
	}
	return n
}

// SortDatasetsByMean orders datasets descending by their sort value and
// reassigns indices. Called once after the loading barrier settles.
func (c *Chart) SortDatasetsByMean() {
	sort.SliceStable(c.Datasets, func(i, j int) bool {
		a, b := c.Datasets[i].SortValue(), c.Datasets[j].SortValue()
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		if math.IsNaN(a) {
			return false
		}
		return a > b
	})
	for i, ds := range c.Datasets {
		ds.Index = i
	}
}

// LastTimestamp returns the newest timestamp across all datasets, or NaN
// when no point carries one. The live update scheduler keys delta fetches
// off it.
func (c *Chart) LastTimestamp() float64 {
	last := math.NaN()
	for _, ds := range c.Datasets {
		ts := ds.LastTimestamp()
		if math.IsNaN(ts) {
			continue
		}
		if math.IsNaN(last) || ts > last {
			last = ts
		}
	}
	return last
}

// TimeBased reports whether the chart's x axis carries wall-clock values.
func (c *Chart) TimeBased() bool {
	return c.Options.DataModel == ModelTimeseries || c.Options.X.Scale == "time"
}
