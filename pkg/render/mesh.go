// Package render converts the engine's polygon meshes into flat triangle
// arrays suitable for GPU upload.
package render

import (
	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/mesh"
)

// Mesh is a triangle mesh suitable for rendering. All arrays are flat:
// vertices has 3 floats per vertex (x,y,z), normals has 3 floats per
// vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which design graph part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// faceNormal computes a polygon normal with Newell's method, robust for
// non-planar quads.
func faceNormal(verts []geom.Vec, face []int) geom.Vec {
	var n geom.Vec
	for i := range face {
		a := verts[face[i]]
		b := verts[face[(i+1)%len(face)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	if l := n.Length(); l > 0 {
		n = n.DivScalar(l)
	}
	return n
}

// FromMesh fan-triangulates a polygon mesh into flat-shaded triangles.
// Vertices are duplicated per face corner so every triangle carries its
// face normal.
func FromMesh(m *mesh.Mesh, partName string) *Mesh {
	out := &Mesh{PartName: partName}
	for _, f := range m.Faces {
		if len(f) < 3 {
			continue
		}
		n := faceNormal(m.Verts, f)
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for i := 1; i+1 < len(f); i++ {
			for _, vi := range []int{f[0], f[i], f[i+1]} {
				v := m.Verts[vi]
				out.Indices = append(out.Indices, uint32(len(out.Vertices)/3))
				out.Vertices = append(out.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
				out.Normals = append(out.Normals, nx, ny, nz)
			}
		}
	}
	return out
}
