// Package domainscale computes axis domains and maps between data space and
// pixel space. Each axis keeps two coupled scales: the "chart" scale drives
// what is rendered and reflects pan/zoom, while the "zoom" scale always
// spans the full data domain and bounds every zoom or pan operation.
package domainscale

import (
	"fmt"
	"math"
)

// Kind is the transform of a scale.
type Kind int

const (
	Linear Kind = iota
	Log
	Time
)

// logFloor replaces nonpositive domain bounds on log scales, which cannot
// represent zero.
const logFloor = 1e-10

// ParseKind maps a configuration string to a scale kind. An empty string
// picks the default for the axis (time for a timeseries x axis).
func ParseKind(s string, timeDefault bool) (Kind, error) {
	switch s {
	case "":
		if timeDefault {
			return Time, nil
		}
		return Linear, nil
	case "linear":
		return Linear, nil
	case "log":
		return Log, nil
	case "time":
		return Time, nil
	}
	return Linear, fmt.Errorf("domainscale: unknown scale kind %q", s)
}

// Scale maps a data-space domain onto a pixel-space range. Time scales hold
// millisecond timestamps and map linearly; only tick formatting and the
// cross-chart domain-type match treat them specially.
type Scale struct {
	kind   Kind
	d0, d1 float64
	r0, r1 float64
}

func NewScale(kind Kind, d0, d1, r0, r1 float64) *Scale {
	s := &Scale{kind: kind, r0: r0, r1: r1}
	s.SetDomain(d0, d1)
	return s
}

func (s *Scale) Kind() Kind { return s.kind }

// IsTime reports whether domain values are wall-clock milliseconds.
func (s *Scale) IsTime() bool { return s.kind == Time }

func (s *Scale) Domain() (float64, float64) { return s.d0, s.d1 }
func (s *Scale) Range() (float64, float64)  { return s.r0, s.r1 }

func (s *Scale) SetRange(r0, r1 float64) {
	s.r0, s.r1 = r0, r1
}

// SetDomain replaces the domain. Log scales raise nonpositive bounds to a
// small positive floor since zero has no logarithm.
func (s *Scale) SetDomain(d0, d1 float64) {
	if s.kind == Log {
		if d0 <= 0 {
			d0 = logFloor
		}
		if d1 <= 0 {
			d1 = logFloor
		}
	}
	s.d0, s.d1 = d0, d1
}

// Map converts a data value to its pixel position.
func (s *Scale) Map(v float64) float64 {
	d0, d1 := s.d0, s.d1
	if s.kind == Log {
		if v <= 0 {
			v = logFloor
		}
		v, d0, d1 = math.Log10(v), math.Log10(d0), math.Log10(d1)
	}
	if d1 == d0 {
		return s.r0
	}
	return s.r0 + (v-d0)/(d1-d0)*(s.r1-s.r0)
}

// Invert converts a pixel position back to a data value.
func (s *Scale) Invert(p float64) float64 {
	if s.r1 == s.r0 {
		return s.d0
	}
	t := (p - s.r0) / (s.r1 - s.r0)
	d0, d1 := s.d0, s.d1
	if s.kind == Log {
		d0, d1 = math.Log10(d0), math.Log10(d1)
		return math.Pow(10, d0+t*(d1-d0))
	}
	return d0 + t*(d1-d0)
}

// Normalize repairs a degenerate raw domain so that rendering and zoom math
// never divide by zero:
//
//   - NaN bounds (no visible data) collapse to 0.
//   - An equal-bounds domain expands 5% in each direction.
//   - If that still collapses (both bounds zero), the max extends by one.
func Normalize(min, max float64) (float64, float64) {
	if math.IsNaN(min) {
		min = 0
	}
	if math.IsNaN(max) {
		max = 0
	}
	if min == max {
		min -= math.Abs(min) * 0.05
		max += math.Abs(max) * 0.05
	}
	if min == max {
		max = min + 1
	}
	return min, max
}

// ClampExtent fits [lo, hi] inside [domLo, domHi] preserving width where
// possible, and pins an inverted extent to a minimal positive width around
// its center.
func ClampExtent(lo, hi, domLo, domHi float64) (float64, float64) {
	if hi <= lo {
		center := (lo + hi) / 2
		eps := (domHi - domLo) * 1e-6
		if eps <= 0 {
			eps = 1e-6
		}
		lo, hi = center-eps, center+eps
	}
	width := hi - lo
	if width > domHi-domLo {
		return domLo, domHi
	}
	if lo < domLo {
		lo = domLo
		hi = lo + width
	}
	if hi > domHi {
		hi = domHi
		lo = hi - width
	}
	return lo, hi
}
