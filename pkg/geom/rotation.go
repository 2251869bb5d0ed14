package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Axis identifies one of the three canonical coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Vector returns the unit vector along the axis.
func (a Axis) Vector() Vec {
	switch a {
	case AxisX:
		return Vec{X: 1}
	case AxisY:
		return Vec{Y: 1}
	default:
		return Vec{Z: 1}
	}
}

// Component returns the coordinate of v along the axis.
func (a Axis) Component(v Vec) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// RotationAlgorithm selects how the orientation frame rotation is built.
type RotationAlgorithm int

const (
	// AlgHouseholder composes two reflections: one taking the orient axis
	// onto the tangent, one cancelling the handedness flip of the first.
	// The result is a proper rotation, stable near antiparallel tangents.
	// This is the default.
	AlgHouseholder RotationAlgorithm = iota

	// AlgTrack is a look-at construction: the orient axis follows the
	// tangent while the up axis is rolled toward its world direction. Roll
	// becomes unpredictable when the tangent nears the up direction.
	AlgTrack

	// AlgRotationDiff is the bare shortest-arc rotation from the orient
	// axis to the tangent, with no up/roll control.
	AlgRotationDiff
)

func (a RotationAlgorithm) String() string {
	switch a {
	case AlgHouseholder:
		return "householder"
	case AlgTrack:
		return "track"
	case AlgRotationDiff:
		return "diff"
	default:
		return fmt.Sprintf("RotationAlgorithm(%d)", int(a))
	}
}

const parallelEps = 1e-9

func identityM44() sdf.M44 {
	return sdf.RotateX(0)
}

// perpendicular returns an arbitrary unit vector orthogonal to v.
func perpendicular(v Vec) Vec {
	p := v.Cross(Vec{X: 1})
	if p.Length() < parallelEps {
		p = v.Cross(Vec{Y: 1})
	}
	return p.Normalize()
}

// AutorotateHouseholder returns the rotation taking the orient axis onto
// the tangent direction, built from the double-reflection construction:
// reflecting across the plane normal to axis+tangent takes the axis to the
// negated tangent, and a second reflection across the plane normal to the
// tangent cancels both the negation and the handedness flip. The composed
// map is the proper rotation about axis×tangent within their common plane,
// which is how it is materialized here.
func AutorotateHouseholder(axis Axis, tangent Vec) sdf.M44 {
	a := axis.Vector()
	b := tangent.Normalize()

	w := a.Add(b)
	if w.Length() < parallelEps {
		// Antiparallel: the common plane is undefined, any half-turn
		// about a perpendicular axis works.
		return sdf.Rotate3d(perpendicular(a), math.Pi)
	}

	n := a.Cross(b)
	if n.Length() < parallelEps {
		return identityM44()
	}
	angle := math.Atan2(n.Length(), a.Dot(b))
	return sdf.Rotate3d(n.Normalize(), angle)
}

// AutorotateDiff returns the shortest-arc rotation from the orient axis to
// the tangent direction. Parallel and antiparallel tangents both collapse
// to the identity; callers wanting stability there use AlgHouseholder.
func AutorotateDiff(axis Axis, tangent Vec) sdf.M44 {
	a := axis.Vector()
	b := tangent.Normalize()

	n := a.Cross(b)
	if n.Length() < parallelEps {
		return identityM44()
	}
	angle := math.Atan2(n.Length(), a.Dot(b))
	return sdf.Rotate3d(n.Normalize(), angle)
}

// AutorotateTrack returns a look-at rotation: the orient axis is taken onto
// the tangent, then the frame is rolled about the tangent so the up axis
// points as close as possible to its world direction.
func AutorotateTrack(orient, up Axis, tangent Vec) (sdf.M44, error) {
	if orient == up {
		return identityM44(), fmt.Errorf("%w: track orientation requires distinct orient and up axes, got %s", ErrInvalidConfig, orient)
	}

	f := tangent.Normalize()
	base := AutorotateHouseholder(orient, f)

	// Where the up axis lands before roll correction.
	u := base.MulPosition(up.Vector())

	// World reference direction for up, projected off the tangent.
	ref := up.Vector()
	refPerp := ref.Sub(f.MulScalar(ref.Dot(f)))
	if refPerp.Length() < parallelEps {
		// Tangent runs along the up direction: roll is undefined.
		return base, nil
	}

	phi := math.Atan2(f.Dot(u.Cross(refPerp)), u.Dot(refPerp))
	return sdf.Rotate3d(f, phi).Mul(base), nil
}

// Autorotate dispatches to the selected rotation strategy.
func Autorotate(alg RotationAlgorithm, orient, up Axis, tangent Vec) (sdf.M44, error) {
	switch alg {
	case AlgHouseholder:
		return AutorotateHouseholder(orient, tangent), nil
	case AlgTrack:
		return AutorotateTrack(orient, up, tangent)
	case AlgRotationDiff:
		return AutorotateDiff(orient, tangent), nil
	default:
		return identityM44(), fmt.Errorf("%w: unknown rotation algorithm %d", ErrInvalidConfig, int(alg))
	}
}
