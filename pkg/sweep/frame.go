package sweep

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/loftcad/loft/pkg/geom"
)

// scaleAbout builds a non-uniform scale transform leaving the orientation
// axis untouched and scaling the two off-axes by sx and sy.
func scaleAbout(orient geom.Axis, sx, sy float64) sdf.M44 {
	switch orient {
	case geom.AxisX:
		return sdf.Scale3d(v3.Vec{X: 1, Y: sx, Z: sy})
	case geom.AxisY:
		return sdf.Scale3d(v3.Vec{X: sx, Y: 1, Z: sy})
	default:
		return sdf.Scale3d(v3.Vec{X: sx, Y: sy, Z: 1})
	}
}

// twistAbout builds the local twist rotation about the orientation axis.
func twistAbout(orient geom.Axis, angle float64) sdf.M44 {
	switch orient {
	case geom.AxisX:
		return sdf.RotateX(angle)
	case geom.AxisY:
		return sdf.RotateY(angle)
	default:
		return sdf.RotateZ(angle)
	}
}

// StationFrame composes the per-station profile transform. Twist applies
// first in local profile space, then the non-uniform taper scale, then the
// frame-aligning rotation. Translation to the station position is applied
// by the caller.
func StationFrame(cfg Config, tangent geom.Vec, taperPoint geom.Vec, twistAngle float64) (sdf.M44, error) {
	rot, err := geom.Autorotate(cfg.Algorithm, cfg.OrientAxis, cfg.UpAxis, tangent)
	if err != nil {
		return sdf.M44{}, err
	}
	sx, sy := TaperScale(taperPoint, cfg.OrientAxis, cfg.SeparateScale)
	m := rot.Mul(scaleAbout(cfg.OrientAxis, sx, sy))
	if twistAngle != 0 {
		m = m.Mul(twistAbout(cfg.OrientAxis, twistAngle))
	}
	return m, nil
}
