// Package geom provides the parametric spline evaluators and orientation
// rotations used by the sweep engine. Splines interpolate an ordered set of
// 3D control points under a chosen knot metric and are immutable once built;
// position and tangent are pure functions of the parameter t in [0,1].
package geom

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec is the 3D vector type used throughout loft.
type Vec = v3.Vec

// ErrInvalidInput marks data errors: too few control points, non-positive
// step counts, out-of-range index references. Fatal for the evaluation that
// produced them, never retried.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidConfig marks configuration errors: unknown algorithm, mode, or
// metric tokens. These are programming errors, fatal immediately.
var ErrInvalidConfig = errors.New("invalid config")

// Spline is a parametric curve through a fixed set of control points.
type Spline interface {
	// Eval returns the position at each parameter value. Values outside
	// [0,1] are clamped for open splines and wrapped for cyclic ones.
	Eval(ts []float64) []Vec

	// Tangent returns finite-difference direction vectors at each
	// parameter value, using step h. The vectors are not normalized;
	// callers treat them as directions.
	Tangent(ts []float64, h float64) []Vec

	// Cyclic reports whether the spline closes back on itself.
	Cyclic() bool
}

// InterpMode selects the interpolation kind for a spline.
type InterpMode int

const (
	InterpLinear InterpMode = iota
	InterpCubic
)

func (m InterpMode) String() string {
	switch m {
	case InterpLinear:
		return "linear"
	case InterpCubic:
		return "cubic"
	default:
		return fmt.Sprintf("InterpMode(%d)", int(m))
	}
}

// NewSpline builds a spline of the requested interpolation kind.
func NewSpline(points []Vec, mode InterpMode, metric Metric, cyclic bool) (Spline, error) {
	switch mode {
	case InterpLinear:
		return NewLinearSpline(points, metric, cyclic)
	case InterpCubic:
		return NewCubicSpline(points, metric, cyclic)
	default:
		return nil, fmt.Errorf("%w: unknown interpolation mode %d", ErrInvalidConfig, int(mode))
	}
}

// domainParam clamps t into [0,1] for open splines and wraps it for cyclic
// ones, so that t=1 on a cyclic spline lands back on the first point.
func domainParam(t float64, cyclic bool) float64 {
	if cyclic {
		t -= math.Floor(t)
		return t
	}
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// DefaultTangentStep is used when a caller passes a non-positive h.
const DefaultTangentStep = 1e-3

// tangentByDifference computes forward-difference tangents on any spline.
// For open splines the sample pair is shifted away from the upper domain
// edge so no extrapolation happens; cyclic splines wrap instead.
func tangentByDifference(s Spline, ts []float64, h float64) []Vec {
	if h <= 0 {
		h = DefaultTangentStep
	}
	if h > 0.5 {
		h = 0.5
	}

	t0 := make([]float64, len(ts))
	t1 := make([]float64, len(ts))
	for i, t := range ts {
		if s.Cyclic() {
			t0[i] = domainParam(t, true)
			t1[i] = domainParam(t+h, true)
		} else {
			a := domainParam(t, false)
			if a > 1-h {
				a = 1 - h
			}
			t0[i] = a
			t1[i] = a + h
		}
	}

	p0 := s.Eval(t0)
	p1 := s.Eval(t1)
	out := make([]Vec, len(ts))
	for i := range ts {
		out[i] = p1[i].Sub(p0[i]).DivScalar(h)
	}
	return out
}
