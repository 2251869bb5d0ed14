package geom

import (
	"fmt"
	"math"
)

// Metric selects how a [0,1] knot parameter is derived from the cumulative
// distance between consecutive control points.
type Metric int

const (
	MetricEuclidean Metric = iota // straight-line distance
	MetricManhattan               // sum of absolute coordinate deltas
	MetricPoints                  // uniform spacing by point index
	MetricChebyshev               // maximum absolute coordinate delta
	MetricX                       // absolute delta along X only
	MetricY                       // absolute delta along Y only
	MetricZ                       // absolute delta along Z only
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "euclidean"
	case MetricManhattan:
		return "manhattan"
	case MetricPoints:
		return "points"
	case MetricChebyshev:
		return "chebyshev"
	case MetricX:
		return "x"
	case MetricY:
		return "y"
	case MetricZ:
		return "z"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// AxisMetric returns the per-axis metric measuring distance along a.
func AxisMetric(a Axis) Metric {
	switch a {
	case AxisX:
		return MetricX
	case AxisY:
		return MetricY
	default:
		return MetricZ
	}
}

// delta returns the inter-point distance under the metric.
func (m Metric) delta(a, b Vec) float64 {
	d := b.Sub(a)
	switch m {
	case MetricManhattan:
		return math.Abs(d.X) + math.Abs(d.Y) + math.Abs(d.Z)
	case MetricPoints:
		return 1
	case MetricChebyshev:
		return math.Max(math.Abs(d.X), math.Max(math.Abs(d.Y), math.Abs(d.Z)))
	case MetricX:
		return math.Abs(d.X)
	case MetricY:
		return math.Abs(d.Y)
	case MetricZ:
		return math.Abs(d.Z)
	default:
		return d.Length()
	}
}

// minKnotStep is the increment forced between coincident knots so the
// parametrization stays strictly increasing.
const minKnotStep = 1e-7

// makeKnots computes the normalized knot vector for the given control
// points. For open splines the result has one knot per point, spanning
// exactly [0,1]. For cyclic splines an extra knot at 1 accounts for the
// implicit closing segment from the last point back to the first.
func makeKnots(points []Vec, metric Metric, cyclic bool) ([]float64, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("%w: spline needs at least 2 control points, got %d", ErrInvalidInput, n)
	}

	segs := n - 1
	if cyclic {
		segs = n
	}

	knots := make([]float64, segs+1)
	for i := 0; i < segs; i++ {
		d := metric.delta(points[i], points[(i+1)%n])
		if d <= 0 {
			d = minKnotStep
		}
		knots[i+1] = knots[i] + d
	}

	total := knots[segs]
	for i := range knots {
		knots[i] /= total
	}
	knots[segs] = 1
	return knots, nil
}

// locate finds the knot segment containing t and the local fraction within
// it. t must already be clamped (open) or wrapped (cyclic) into [0,1].
func locate(knots []float64, t float64) (int, float64) {
	// Binary search for the first knot >= t.
	lo, hi := 0, len(knots)
	for lo < hi {
		mid := (lo + hi) / 2
		if knots[mid] < t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	i := lo
	if i > 0 {
		i--
	}
	if i >= len(knots)-1 {
		i = len(knots) - 2
	}
	u := (t - knots[i]) / (knots[i+1] - knots[i])
	return i, u
}
