package sweep

import (
	"fmt"
	"math"

	"github.com/loftcad/loft/pkg/geom"
)

// TwistPoint is one sample of the twist modulation curve: rotate the
// profile by Angle radians about the orientation axis at parameter T.
type TwistPoint struct {
	T     float64 `json:"t"`
	Angle float64 `json:"angle"`
}

// TwistFromAngles spreads a bare angle sequence evenly over [0,1].
func TwistFromAngles(angles []float64) []TwistPoint {
	pts := make([]TwistPoint, len(angles))
	if len(angles) == 1 {
		return []TwistPoint{{T: 0, Angle: angles[0]}, {T: 1, Angle: angles[0]}}
	}
	for i, a := range angles {
		pts[i] = TwistPoint{T: float64(i) / float64(len(angles)-1), Angle: a}
	}
	return pts
}

// MakeTaperSpline builds the scale-modulation spline from taper control
// points. Nil input synthesizes the identity taper: two points spanning a
// unit length along the orientation axis at unit off-axis distance.
func MakeTaperSpline(points []geom.Vec, mode geom.InterpMode, cfg Config) (geom.Spline, error) {
	if len(points) == 0 {
		points = identityTaperPoints(cfg.OrientAxis, cfg.SeparateScale)
	}
	metric := cfg.Metric
	if cfg.TaperMetric == TaperAlongOrientAxis {
		metric = geom.AxisMetric(cfg.OrientAxis)
	}
	s, err := geom.NewSpline(points, mode, metric, false)
	if err != nil {
		return nil, fmt.Errorf("taper: %w", err)
	}
	return s, nil
}

// identityTaperPoints spans the orientation axis with off-axis coordinates
// that TaperScale reads back as (1,1) under the given scale mode.
func identityTaperPoints(orient geom.Axis, separate bool) []geom.Vec {
	comps := [3]float64{}
	idx := int(orient)
	if separate {
		comps[(idx+1)%3] = 1
		comps[(idx+2)%3] = 1
	} else {
		comps[(idx+1)%3] = 1
	}
	off := geom.Vec{X: comps[0], Y: comps[1], Z: comps[2]}
	return []geom.Vec{off, off.Add(orient.Vector())}
}

// MakeTwistSpline builds the angle-modulation spline from twist points.
// Nil input synthesizes a constant zero twist. The points are encoded as
// 3D control points (angle, 0, t) parametrized under the path metric, so
// the sampled X coordinate is the interpolated angle.
func MakeTwistSpline(points []TwistPoint, mode geom.InterpMode, cfg Config) (geom.Spline, error) {
	if len(points) == 0 {
		points = []TwistPoint{{T: 0, Angle: 0}, {T: 1, Angle: 0}}
	}
	if len(points) == 1 {
		points = []TwistPoint{{T: 0, Angle: points[0].Angle}, {T: 1, Angle: points[0].Angle}}
	}
	ctrl := make([]geom.Vec, len(points))
	for i, p := range points {
		ctrl[i] = geom.Vec{X: p.Angle, Z: p.T}
	}
	s, err := geom.NewSpline(ctrl, mode, cfg.Metric, cfg.Cyclic)
	if err != nil {
		return nil, fmt.Errorf("twist: %w", err)
	}
	return s, nil
}

// TwistAngle extracts the angle from a sampled twist spline point.
func TwistAngle(p geom.Vec) float64 { return p.X }

// TaperScale extracts the (scaleX, scaleY) pair from a sampled taper
// point. With separate scale the two off-axis coordinates are used
// independently; otherwise both scales equal the in-plane distance of the
// point from the orientation axis.
func TaperScale(p geom.Vec, orient geom.Axis, separate bool) (sx, sy float64) {
	comps := [3]float64{p.X, p.Y, p.Z}
	idx := int(orient)
	if separate {
		return math.Abs(comps[(idx+1)%3]), math.Abs(comps[(idx+2)%3])
	}
	comps[idx] = 0
	r := math.Sqrt(comps[0]*comps[0] + comps[1]*comps[1] + comps[2]*comps[2])
	return r, r
}
