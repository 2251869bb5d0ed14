package sweep

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"

	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/mesh"
)

// Profile is the cross-section swept along the path: an ordered vertex
// ring in the plane orthogonal to the orientation axis, with optional
// explicit edges and cap faces. Nil edges mean a closed ring in vertex
// order.
type Profile struct {
	Verts []geom.Vec `json:"verts"`
	Edges [][2]int   `json:"edges"`
	Faces [][]int    `json:"faces"`
}

// RingProfile builds a profile from a plain vertex ring.
func RingProfile(verts []geom.Vec) Profile {
	return Profile{Verts: verts}
}

// ringEdges returns the profile's edge list. Without explicit edges the
// stitch edges are derived from the cap faces when present, otherwise a
// closed ring in vertex order is synthesized.
func (p Profile) ringEdges() [][2]int {
	if p.Edges != nil {
		return p.Edges
	}
	if len(p.Faces) > 0 {
		return mesh.PolygonsToEdges(p.Faces, true)
	}
	k := len(p.Verts)
	if k < 2 {
		return nil
	}
	if k == 2 {
		return [][2]int{{0, 1}}
	}
	edges := make([][2]int, k)
	for i := 0; i < k; i++ {
		edges[i] = [2]int{i, (i + 1) % k}
	}
	return edges
}

func (p Profile) validate() error {
	k := len(p.Verts)
	for i, e := range p.Edges {
		if e[0] < 0 || e[0] >= k || e[1] < 0 || e[1] >= k {
			return fmt.Errorf("%w: profile edge %d references vertex out of range [0,%d)", geom.ErrInvalidInput, i, k)
		}
	}
	for i, f := range p.Faces {
		for _, v := range f {
			if v < 0 || v >= k {
				return fmt.Errorf("%w: profile face %d references vertex %d out of range [0,%d)", geom.ErrInvalidInput, i, v, k)
			}
		}
	}
	return nil
}

// capFaces returns the face definitions used for capping, synthesizing a
// single n-gon in ring order when the profile has none.
func (p Profile) capFaces() [][]int {
	if len(p.Faces) > 0 {
		return p.Faces
	}
	if len(p.Verts) < 3 {
		return nil
	}
	face := make([]int, len(p.Verts))
	for i := range face {
		face[i] = i
	}
	return [][]int{face}
}

// flipParams maps station parameters through 1-t when flip is set.
func flipParams(ts []float64, flip bool) []float64 {
	if !flip {
		return ts
	}
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = 1 - t
	}
	return out
}

// Build sweeps the profile along the path spline, modulated by the taper
// and twist splines, sampling steps stations uniformly over [0,1]. A
// cyclic sweep drops the duplicate final station and stitches the last
// ring back to the first; otherwise the ends may be capped. An empty
// profile yields an empty mesh.
func Build(path, taper, twist geom.Spline, profile Profile, steps int, cfg Config) (*mesh.Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if steps < 2 {
		return nil, fmt.Errorf("%w: step count %d, need at least 2 stations", geom.ErrInvalidInput, steps)
	}
	if err := profile.validate(); err != nil {
		return nil, err
	}
	k := len(profile.Verts)
	if k == 0 {
		return &mesh.Mesh{}, nil
	}

	ts := make([]float64, steps)
	for i := range ts {
		ts[i] = float64(i) / float64(steps-1)
	}
	rings := steps
	if cfg.Cyclic {
		rings = steps - 1
		ts = ts[:rings]
	}

	// The tangent keeps its forward sign even when the parameters are
	// flipped, so a reversed path keeps its frame orientation.
	pathTs := flipParams(ts, cfg.FlipPath)
	positions := path.Eval(pathTs)
	tangents := path.Tangent(pathTs, cfg.TangentStep)
	taperPts := taper.Eval(flipParams(ts, cfg.FlipTaper))
	twistPts := twist.Eval(flipParams(ts, cfg.FlipTwist))

	m := &mesh.Mesh{Verts: make([]geom.Vec, 0, rings*k)}
	for r := 0; r < rings; r++ {
		frame, err := StationFrame(cfg, tangents[r], taperPts[r], TwistAngle(twistPts[r]))
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", r, err)
		}
		xf := sdf.Translate3d(positions[r]).Mul(frame)
		for _, pv := range profile.Verts {
			m.Verts = append(m.Verts, xf.MulPosition(pv))
		}
	}

	edges := profile.ringEdges()
	stitch := func(prevBase, curBase int) {
		for _, e := range edges {
			i, j := e[0], e[1]
			m.Faces = append(m.Faces, []int{
				prevBase + j, curBase + j, curBase + i, prevBase + i,
			})
		}
	}
	for r := 1; r < rings; r++ {
		stitch((r-1)*k, r*k)
	}
	if cfg.Cyclic && rings > 1 {
		stitch((rings-1)*k, 0)
	}

	if !cfg.Cyclic {
		caps := profile.capFaces()
		if cfg.CapStart {
			for _, f := range caps {
				rev := make([]int, len(f))
				for i, v := range f {
					rev[len(f)-1-i] = v
				}
				m.Faces = append(m.Faces, rev)
			}
		}
		if cfg.CapEnd {
			base := (rings - 1) * k
			for _, f := range caps {
				fwd := make([]int, len(f))
				for i, v := range f {
					fwd[i] = base + v
				}
				m.Faces = append(m.Faces, fwd)
			}
		}
	}

	m.Edges = mesh.PolygonsToEdges(m.Faces, true)
	if len(m.Faces) == 0 && k == 1 {
		// Degenerate single-point profile traces the path as a polyline.
		for r := 1; r < rings; r++ {
			m.Edges = append(m.Edges, [2]int{r - 1, r})
		}
		if cfg.Cyclic && rings > 1 {
			m.Edges = append(m.Edges, [2]int{rings - 1, 0})
		}
	}
	return m, nil
}
