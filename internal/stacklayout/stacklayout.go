// Package stacklayout computes cumulative bands for stacked-area charts.
//
// The computation is a pure function of the datasets: hidden series
// contribute zero to the running sums while their stored values stay
// untouched, so unhiding a series restores its real magnitude and repeated
// computation never compounds.
package stacklayout

import "github.com/distributed-system-analysis/jschart/internal/chartdata"

// Band is the vertical extent of one point in a stacked chart, from the
// cumulative offset Y0 up to Y1.
type Band struct {
	Y0 float64
	Y1 float64
}

// EffectiveY is a point's contribution to the cumulative stack: zero when
// its dataset is hidden, the true sample value otherwise.
func EffectiveY(p chartdata.Datapoint, hidden bool) float64 {
	if hidden {
		return 0
	}
	return p.Y
}

// Compute returns one band slice per dataset, aligned index-for-index with
// the dataset's points. Offsets accumulate per x value over datasets in
// index order; a hidden dataset's bands are flat at the current offset.
func Compute(datasets []*chartdata.Dataset) [][]Band {
	bands := make([][]Band, len(datasets))
	offsets := map[float64]float64{}
	for i, ds := range datasets {
		bands[i] = make([]Band, len(ds.Points))
		for j, p := range ds.Points {
			y0 := offsets[p.X]
			y1 := y0 + EffectiveY(p, ds.Hidden)
			bands[i][j] = Band{Y0: y0, Y1: y1}
			offsets[p.X] = y1
		}
	}
	return bands
}
