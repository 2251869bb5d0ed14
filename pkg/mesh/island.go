package mesh

import (
	"fmt"

	"github.com/loftcad/loft/pkg/geom"
)

// Domain identifies which mesh element class an attribute or selection
// mask applies to.
type Domain int

const (
	DomainPoint Domain = iota
	DomainEdge
	DomainFace
)

func (d Domain) String() string {
	switch d {
	case DomainPoint:
		return "point"
	case DomainEdge:
		return "edge"
	case DomainFace:
		return "face"
	default:
		return fmt.Sprintf("domain(%d)", int(d))
	}
}

type attribute struct {
	domain Domain
	values []any
}

// IslandMesh is a Mesh that carries named per-element attributes through
// topology rewrites. After a split the attribute values follow their
// surviving elements; elements without an ancestor get a nil value.
type IslandMesh struct {
	Verts []geom.Vec
	Edges [][2]int
	Faces [][]int

	attrs map[string]attribute
}

// NewIslandMesh wraps a topology in an attribute-carrying mesh. If edges
// is nil they are derived from the faces.
func NewIslandMesh(verts []geom.Vec, edges [][2]int, faces [][]int) *IslandMesh {
	if edges == nil {
		edges = PolygonsToEdges(faces, true)
	}
	return &IslandMesh{
		Verts: verts,
		Edges: edges,
		Faces: faces,
		attrs: make(map[string]attribute),
	}
}

// SetAttribute stores a named per-element value array on the given domain.
// The values slice must match the element count of the domain.
func (m *IslandMesh) SetAttribute(name string, domain Domain, values []any) error {
	var want int
	switch domain {
	case DomainPoint:
		want = len(m.Verts)
	case DomainEdge:
		want = len(m.Edges)
	case DomainFace:
		want = len(m.Faces)
	default:
		return fmt.Errorf("%w: unknown domain %v", geom.ErrInvalidConfig, domain)
	}
	if len(values) != want {
		return fmt.Errorf("%w: attribute %q has %d values, %s domain has %d elements",
			geom.ErrInvalidInput, name, len(values), domain, want)
	}
	m.attrs[name] = attribute{domain: domain, values: values}
	return nil
}

// Attribute returns the stored values and domain for a named attribute.
func (m *IslandMesh) Attribute(name string) ([]any, Domain, bool) {
	a, ok := m.attrs[name]
	return a.values, a.domain, ok
}

// Mesh returns the plain topology without attributes.
func (m *IslandMesh) Mesh() *Mesh {
	return &Mesh{Verts: m.Verts, Edges: m.Edges, Faces: m.Faces}
}

// Update replaces the topology and remaps every attribute through the
// ancestor index lists. vertAnc[i] is the old vertex index that new vertex
// i descends from, or -1 for none; edgeAnc and faceAnc likewise.
func (m *IslandMesh) Update(verts []geom.Vec, edges [][2]int, faces [][]int, vertAnc, edgeAnc, faceAnc []int) {
	m.Verts = verts
	m.Edges = edges
	m.Faces = faces
	for name, a := range m.attrs {
		var anc []int
		switch a.domain {
		case DomainPoint:
			anc = vertAnc
		case DomainEdge:
			anc = edgeAnc
		case DomainFace:
			anc = faceAnc
		}
		next := make([]any, len(anc))
		for i, old := range anc {
			if old >= 0 && old < len(a.values) {
				next[i] = a.values[old]
			}
		}
		m.attrs[name] = attribute{domain: a.domain, values: next}
	}
}

// SplitIslands separates the mesh into its connected components. Vertices
// are connected when they share an edge or a face. The islands come out
// ordered by their smallest original vertex index; isolated vertices form
// single-vertex islands.
func (m *IslandMesh) SplitIslands() []*Mesh {
	n := len(m.Verts)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}
	for _, e := range m.Edges {
		union(e[0], e[1])
	}
	for _, f := range m.Faces {
		for i := 1; i < len(f); i++ {
			union(f[0], f[i])
		}
	}

	// Assign island numbers in order of smallest member vertex. Scanning
	// vertices in ascending order yields exactly that ordering.
	islandOf := make(map[int]int)
	for v := 0; v < n; v++ {
		r := find(v)
		if _, ok := islandOf[r]; !ok {
			islandOf[r] = len(islandOf)
		}
	}

	out := make([]*Mesh, len(islandOf))
	remap := make([]int, n)
	for i := range out {
		out[i] = &Mesh{}
	}
	for v := 0; v < n; v++ {
		isl := out[islandOf[find(v)]]
		remap[v] = len(isl.Verts)
		isl.Verts = append(isl.Verts, m.Verts[v])
	}
	for _, e := range m.Edges {
		isl := out[islandOf[find(e[0])]]
		isl.Edges = append(isl.Edges, [2]int{remap[e[0]], remap[e[1]]})
	}
	for _, f := range m.Faces {
		isl := out[islandOf[find(f[0])]]
		nf := make([]int, len(f))
		for i, v := range f {
			nf[i] = remap[v]
		}
		isl.Faces = append(isl.Faces, nf)
	}
	return out
}
