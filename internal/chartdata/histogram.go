package chartdata

import "math"

// HistogramStats summarizes a histogram-model dataset, where each point is a
// bucket: X is the bucket value and Y is the sample count in that bucket.
type HistogramStats struct {
	Samples float64
	Sum     float64
	Mean    float64
	Median  float64
	Min     float64
	Max     float64
	P90     float64
	P95     float64
	P99     float64
	P9999   float64
}

// ComputeHistogram derives bucket statistics in a single cumulative-count
// sweep over the X-sorted points. A percentile is the bucket value at which
// the cumulative count first reaches that fraction of the total. Returns nil
// for an empty dataset.
func ComputeHistogram(points []Datapoint) *HistogramStats {
	if len(points) == 0 {
		return nil
	}

	total := 0.0
	sum := 0.0
	for _, p := range points {
		total += p.Y
		sum += p.X * p.Y
	}
	if total <= 0 {
		return nil
	}

	h := &HistogramStats{
		Samples: total,
		Sum:     sum,
		Mean:    sum / total,
		Min:     points[0].X,
		Max:     points[len(points)-1].X,
		Median:  math.NaN(),
		P90:     math.NaN(),
		P95:     math.NaN(),
		P99:     math.NaN(),
		P9999:   math.NaN(),
	}

	cum := 0.0
	for _, p := range points {
		cum += p.Y
		frac := cum / total
		if math.IsNaN(h.Median) && frac >= 0.5 {
			h.Median = p.X
		}
		if math.IsNaN(h.P90) && frac >= 0.90 {
			h.P90 = p.X
		}
		if math.IsNaN(h.P95) && frac >= 0.95 {
			h.P95 = p.X
		}
		if math.IsNaN(h.P99) && frac >= 0.99 {
			h.P99 = p.X
		}
		if math.IsNaN(h.P9999) && frac >= 0.9999 {
			h.P9999 = p.X
		}
	}
	// Rounding can leave the extreme percentile unset; it is the last bucket.
	if math.IsNaN(h.P9999) {
		h.P9999 = h.Max
	}

	return h
}
