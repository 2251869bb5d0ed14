package geom

// LinearSpline interpolates control points with straight segments.
type LinearSpline struct {
	points []Vec
	knots  []float64
	cyclic bool
}

// NewLinearSpline builds a linear spline. At least 2 points are required.
func NewLinearSpline(points []Vec, metric Metric, cyclic bool) (*LinearSpline, error) {
	knots, err := makeKnots(points, metric, cyclic)
	if err != nil {
		return nil, err
	}
	pts := make([]Vec, len(points))
	copy(pts, points)
	return &LinearSpline{points: pts, knots: knots, cyclic: cyclic}, nil
}

func (s *LinearSpline) Cyclic() bool { return s.cyclic }

// Eval returns positions along the spline. t=0 and t=1 return the first and
// last control points exactly.
func (s *LinearSpline) Eval(ts []float64) []Vec {
	n := len(s.points)
	out := make([]Vec, len(ts))
	for k, t := range ts {
		t = domainParam(t, s.cyclic)
		if !s.cyclic {
			// Exact endpoints, no interpolation arithmetic.
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
		a := s.points[i]
		b := s.points[(i+1)%n]
		out[k] = a.MulScalar(1 - u).Add(b.MulScalar(u))
	}
	return out
}

// Tangent returns the segment direction at each parameter. The direction is
// constant within a segment and is not unit length.
func (s *LinearSpline) Tangent(ts []float64, h float64) []Vec {
	return tangentByDifference(s, ts, h)
}
