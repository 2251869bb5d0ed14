// Package mesh provides the index-based vertex/edge/face container produced
// by the sweep engine, plus the topology utilities shared by the modifier
// nodes: edge derivation from polygons, element splitting, and island
// separation.
package mesh

import (
	"fmt"

	"github.com/loftcad/loft/pkg/geom"
)

// Mesh is the conventional mesh triple: vertex positions, edge index pairs,
// and face index lists. A builder owns its Mesh exclusively while
// constructing it and hands it off as plain data.
type Mesh struct {
	Verts []geom.Vec `json:"verts"`
	Edges [][2]int   `json:"edges"`
	Faces [][]int    `json:"faces"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Verts) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.Faces) }

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool { return len(m.Verts) == 0 }

// Validate checks that every edge and face references only existing
// vertices and that faces have at least 3 corners. A mesh that fails
// validation must never be handed to a consumer.
func (m *Mesh) Validate() error {
	n := len(m.Verts)
	for i, e := range m.Edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return fmt.Errorf("%w: edge %d references vertex out of range [0,%d)", geom.ErrInvalidInput, i, n)
		}
	}
	for i, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("%w: face %d has %d corners, need at least 3", geom.ErrInvalidInput, i, len(f))
		}
		for _, v := range f {
			if v < 0 || v >= n {
				return fmt.Errorf("%w: face %d references vertex %d out of range [0,%d)", geom.ErrInvalidInput, i, v, n)
			}
		}
	}
	return nil
}

// sortedPair orders an index pair for use as a map key.
func sortedPair(a, b int) [2]int {
	if a > b {
		return [2]int{b, a}
	}
	return [2]int{a, b}
}

// PolygonsToEdges derives the edge list from a set of polygon faces. With
// unique set, each undirected edge appears once, in first-seen order.
func PolygonsToEdges(faces [][]int, unique bool) [][2]int {
	var edges [][2]int
	seen := make(map[[2]int]bool)
	for _, f := range faces {
		for i := range f {
			a, b := f[i], f[(i+1)%len(f)]
			if unique {
				key := sortedPair(a, b)
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			edges = append(edges, [2]int{a, b})
		}
	}
	return edges
}
