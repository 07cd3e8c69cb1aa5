package chartdata

import "math"

// Datapoint is one sample of a series. X and Y are in data space. Timestamp
// is the sample's wall-clock time in milliseconds, or NaN when the source
// carries no timestamp.
//
// Datapoints are owned by their Dataset and are never mutated after creation;
// stacked-area offsets are computed externally so the stored Y is always the
// true sample value.
type Datapoint struct {
	X         float64
	Y         float64
	Timestamp float64
}

// NewDatapoint returns a point with no timestamp.
func NewDatapoint(x, y float64) Datapoint {
	return Datapoint{X: x, Y: y, Timestamp: math.NaN()}
}

// HasTimestamp reports whether the point carries a wall-clock timestamp.
func (p Datapoint) HasTimestamp() bool {
	return !math.IsNaN(p.Timestamp)
}
