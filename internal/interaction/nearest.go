package interaction

import (
	"math"
	"sort"

	"github.com/distributed-system-analysis/jschart/internal/chartdata"
)

// CursorValue is the datapoint a visible dataset shows for the current
// cursor position. The side table's "current value" column renders these.
type CursorValue struct {
	Dataset *chartdata.Dataset
	Point   chartdata.Datapoint
}

// cursorTracker resolves the nearest datapoint per visible dataset. It
// caches the last resolved index per dataset and walks forward or backward
// from it based on the cursor's direction of motion, falling back to a
// binary-search proximity lookup when no cache exists. Every walk is capped
// at the series length so a stale cache can never loop.
type cursorTracker struct {
	chart   *chartdata.Chart
	lastX   float64
	lastIdx map[*chartdata.Dataset]int
	values  []CursorValue
}

func newCursorTracker(chart *chartdata.Chart) *cursorTracker {
	return &cursorTracker{
		chart:   chart,
		lastX:   math.NaN(),
		lastIdx: map[*chartdata.Dataset]int{},
	}
}

func (t *cursorTracker) resolve(dataX float64) {
	movedRight := math.IsNaN(t.lastX) || dataX >= t.lastX
	t.lastX = dataX

	t.values = t.values[:0]
	for _, ds := range t.chart.Datasets {
		if ds.Hidden || len(ds.Points) == 0 {
			continue
		}
		idx := t.nearest(ds, dataX, movedRight)
		t.values = append(t.values, CursorValue{Dataset: ds, Point: ds.Points[idx]})
	}
}

func (t *cursorTracker) clear() {
	t.values = t.values[:0]
	t.lastX = math.NaN()
}

func (t *cursorTracker) nearest(ds *chartdata.Dataset, x float64, movedRight bool) int {
	n := len(ds.Points)

	cached, ok := t.lastIdx[ds]
	if !ok || cached < 0 || cached >= n {
		// No usable cache (first resolve, or live trimming shrank the
		// series); locate by binary search on the x-sorted points.
		idx := proximitySearch(ds.Points, x)
		t.lastIdx[ds] = idx
		return idx
	}

	step := 1
	if !movedRight {
		step = -1
	}

	idx := cached
	// Bounded directional walk; stops at the series edge or once the next
	// point is no closer.
	for iter := 0; iter < n; iter++ {
		next := idx + step
		if next < 0 || next >= n {
			break
		}
		if math.Abs(ds.Points[next].X-x) <= math.Abs(ds.Points[idx].X-x) {
			idx = next
			continue
		}
		break
	}

	t.lastIdx[ds] = idx
	return idx
}

// proximitySearch returns the index of the point whose X is closest to x.
func proximitySearch(points []chartdata.Datapoint, x float64) int {
	i := sort.Search(len(points), func(j int) bool {
		return points[j].X >= x
	})
	if i >= len(points) {
		return len(points) - 1
	}
	if i == 0 {
		return 0
	}
	if math.Abs(points[i-1].X-x) <= math.Abs(points[i].X-x) {
		return i - 1
	}
	return i
}
