package geom

// CubicSpline is a Catmull-Rom style piecewise cubic through all control
// points. Per-knot tangents are central differences of the neighboring
// points scaled by the knot spacing, so the curve respects whichever metric
// parametrized it. Cyclic splines wrap neighbor selection around the
// point sequence.
type CubicSpline struct {
	points   []Vec
	tangents []Vec // one per control point, in parameter space
	knots    []float64
	cyclic   bool
}

// NewCubicSpline builds a cubic interpolating spline. At least 2 points are
// required; with exactly 2 the curve degenerates to the linear segment.
func NewCubicSpline(points []Vec, metric Metric, cyclic bool) (*CubicSpline, error) {
	knots, err := makeKnots(points, metric, cyclic)
	if err != nil {
		return nil, err
	}

	n := len(points)
	pts := make([]Vec, n)
	copy(pts, points)

	// Segment widths in parameter space. Cyclic splines have n segments,
	// the last one closing back to the first point.
	segs := n - 1
	if cyclic {
		segs = n
	}
	width := make([]float64, segs)
	for i := 0; i < segs; i++ {
		width[i] = knots[i+1] - knots[i]
	}

	tangents := make([]Vec, n)
	for i := 0; i < n; i++ {
		if cyclic {
			prev := (i - 1 + n) % n
			next := (i + 1) % n
			span := width[(i-1+n)%n] + width[i%segs]
			tangents[i] = pts[next].Sub(pts[prev]).DivScalar(span)
			continue
		}
		switch i {
		case 0:
			tangents[i] = pts[1].Sub(pts[0]).DivScalar(width[0])
		case n - 1:
			tangents[i] = pts[n-1].Sub(pts[n-2]).DivScalar(width[n-2])
		default:
			span := width[i-1] + width[i]
			tangents[i] = pts[i+1].Sub(pts[i-1]).DivScalar(span)
		}
	}

	return &CubicSpline{points: pts, tangents: tangents, knots: knots, cyclic: cyclic}, nil
}

func (s *CubicSpline) Cyclic() bool { return s.cyclic }

// Eval returns positions along the spline using cubic Hermite segments.
func (s *CubicSpline) Eval(ts []float64) []Vec {
	n := len(s.points)
	out := make([]Vec, len(ts))
	for k, t := range ts {
		t = domainParam(t, s.cyclic)
		if !s.cyclic {
			if t == 0 {
				out[k] = s.points[0]
				continue
			}
			if t == 1 {
				out[k] = s.points[n-1]
				continue
			}
		}
		i, u := locate(s.knots, t)
		dt := s.knots[i+1] - s.knots[i]

		p0 := s.points[i]
		p1 := s.points[(i+1)%n]
		m0 := s.tangents[i].MulScalar(dt)
		m1 := s.tangents[(i+1)%n].MulScalar(dt)

		u2 := u * u
		u3 := u2 * u
		h00 := 2*u3 - 3*u2 + 1
		h10 := u3 - 2*u2 + u
		h01 := -2*u3 + 3*u2
		h11 := u3 - u2

		out[k] = p0.MulScalar(h00).
			Add(m0.MulScalar(h10)).
			Add(p1.MulScalar(h01)).
			Add(m1.MulScalar(h11))
	}
	return out
}

// Tangent returns finite-difference directions along the spline.
func (s *CubicSpline) Tangent(ts []float64, h float64) []Vec {
	return tangentByDifference(s, ts, h)
}
