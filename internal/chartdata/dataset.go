package chartdata

import (
	"math"
	"sort"
)

// NoSamplesLabel is shown in place of a mean or median when a dataset
// loaded zero values.
const NoSamplesLabel = "No Samples"

// Dataset is one logical series of a chart.
//
// Index is the dataset's position within its chart; it is reassigned when
// the chart sorts datasets by mean after loading completes. A dataset never
// moves to a different chart.
type Dataset struct {
	Index int
	Name  string

	// Points are sorted by X ascending for plotted series.
	Points []Datapoint

	// Mean and Median are NaN until ComputeStats runs, and stay NaN for a
	// dataset with zero points (rendered as NoSamplesLabel).
	Mean   float64
	Median float64

	// MaxY is the running maximum Y, maintained as points are appended so
	// live updates and threshold filters don't rescan the series.
	MaxY float64

	Hidden      bool
	Highlighted bool

	// Histogram is set only for histogram-model charts.
	Histogram *HistogramStats
}

// NewDataset returns an empty dataset at the given slot.
func NewDataset(index int, name string) *Dataset {
	return &Dataset{
		Index:  index,
		Name:   name,
		Mean:   math.NaN(),
		Median: math.NaN(),
		MaxY:   math.Inf(-1),
	}
}

// Append adds a point and maintains the running max.
func (d *Dataset) Append(p Datapoint) {
	d.Points = append(d.Points, p)
	if p.Y > d.MaxY {
		d.MaxY = p.Y
	}
}

// HasSamples reports whether the dataset loaded at least one value.
func (d *Dataset) HasSamples() bool {
	return len(d.Points) > 0
}

// SortByX orders points by ascending X. Loaders call this once per dataset
// before stats are computed.
func (d *Dataset) SortByX() {
	sort.SliceStable(d.Points, func(i, j int) bool {
		return d.Points[i].X < d.Points[j].X
	})
}

// ComputeStats fills Mean and Median from the current points. With zero
// points both stay NaN.
func (d *Dataset) ComputeStats() {
	if len(d.Points) == 0 {
		d.Mean = math.NaN()
		d.Median = math.NaN()
		return
	}

	sum := 0.0
	ys := make([]float64, len(d.Points))
	for i, p := range d.Points {
		sum += p.Y
		ys[i] = p.Y
	}
	sort.Float64s(ys)

	d.Mean = sum / float64(len(ys))
	d.Median = medianOfSorted(ys)
}

// SortValue is the magnitude used for descending sort and threshold filters:
// the histogram mean when histogram stats exist, the plain mean otherwise.
func (d *Dataset) SortValue() float64 {
	if d.Histogram != nil {
		return d.Histogram.Mean
	}
	return d.Mean
}

// LastTimestamp returns the newest timestamp in the series, or NaN when no
// point carries one.
func (d *Dataset) LastTimestamp() float64 {
	for i := len(d.Points) - 1; i >= 0; i-- {
		if d.Points[i].HasTimestamp() {
			return d.Points[i].Timestamp
		}
	}
	return math.NaN()
}

func medianOfSorted(ys []float64) float64 {
	n := len(ys)
	if n%2 == 1 {
		return ys[n/2]
	}
	return (ys[n/2-1] + ys[n/2]) / 2
}
