// Package field provides composable 3D vector fields used to displace
// swept meshes.
package field

import (
	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/mesh"
)

// VectorField maps a point in space to a displacement vector.
type VectorField interface {
	Evaluate(p geom.Vec) geom.Vec
	EvaluateGrid(ps []geom.Vec) []geom.Vec
}

// evalGrid is the shared one-by-one grid fallback.
func evalGrid(f VectorField, ps []geom.Vec) []geom.Vec {
	out := make([]geom.Vec, len(ps))
	for i, p := range ps {
		out[i] = f.Evaluate(p)
	}
	return out
}

// Constant is a uniform field.
type Constant struct {
	V geom.Vec
}

func (c Constant) Evaluate(geom.Vec) geom.Vec { return c.V }

func (c Constant) EvaluateGrid(ps []geom.Vec) []geom.Vec {
	return evalGrid(c, ps)
}

// Radial points away from a center, with magnitude 1/(1+falloff*distance).
type Radial struct {
	Center  geom.Vec
	Falloff float64
}

func (r Radial) Evaluate(p geom.Vec) geom.Vec {
	d := p.Sub(r.Center)
	l := d.Length()
	if l == 0 {
		return geom.Vec{}
	}
	return d.DivScalar(l).MulScalar(1 / (1 + r.Falloff*l))
}

func (r Radial) EvaluateGrid(ps []geom.Vec) []geom.Vec {
	return evalGrid(r, ps)
}

// Attractor pulls points toward the nearest of a set of sampled curve
// positions. The returned vector is the full offset to that position, so
// displacing with strength 1 snaps onto the curve samples.
type Attractor struct {
	targets []geom.Vec
}

// NewAttractor samples a spline at n uniform parameters.
func NewAttractor(s geom.Spline, n int) *Attractor {
	if n < 2 {
		n = 2
	}
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = float64(i) / float64(n-1)
	}
	return &Attractor{targets: s.Eval(ts)}
}

// AttractorToPoints builds an attractor over explicit target points.
func AttractorToPoints(targets []geom.Vec) *Attractor {
	return &Attractor{targets: targets}
}

func (a *Attractor) Evaluate(p geom.Vec) geom.Vec {
	if len(a.targets) == 0 {
		return geom.Vec{}
	}
	best := a.targets[0]
	bestD := p.Sub(best).Length()
	for _, q := range a.targets[1:] {
		if d := p.Sub(q).Length(); d < bestD {
			best, bestD = q, d
		}
	}
	return best.Sub(p)
}

func (a *Attractor) EvaluateGrid(ps []geom.Vec) []geom.Vec {
	return evalGrid(a, ps)
}

// Sum adds the contributions of several fields.
type Sum struct {
	Fields []VectorField
}

func (s Sum) Evaluate(p geom.Vec) geom.Vec {
	var out geom.Vec
	for _, f := range s.Fields {
		out = out.Add(f.Evaluate(p))
	}
	return out
}

func (s Sum) EvaluateGrid(ps []geom.Vec) []geom.Vec {
	return evalGrid(s, ps)
}

// Scaled multiplies another field by a constant factor.
type Scaled struct {
	Field  VectorField
	Factor float64
}

func (s Scaled) Evaluate(p geom.Vec) geom.Vec {
	return s.Field.Evaluate(p).MulScalar(s.Factor)
}

func (s Scaled) EvaluateGrid(ps []geom.Vec) []geom.Vec {
	return evalGrid(s, ps)
}

// Displace moves every vertex of a mesh along the field scaled by
// strength. Topology is untouched.
func Displace(m *mesh.Mesh, f VectorField, strength float64) {
	offsets := f.EvaluateGrid(m.Verts)
	for i := range m.Verts {
		m.Verts[i] = m.Verts[i].Add(offsets[i].MulScalar(strength))
	}
}
