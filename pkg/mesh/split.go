package mesh

import (
	"fmt"

	"github.com/loftcad/loft/pkg/geom"
)

// SplitKind selects which element class a split operation tears apart.
type SplitKind int

const (
	SplitVerts SplitKind = iota
	SplitEdges
)

func (k SplitKind) String() string {
	switch k {
	case SplitVerts:
		return "verts"
	case SplitEdges:
		return "edges"
	default:
		return fmt.Sprintf("splitkind(%d)", int(k))
	}
}

// repeatToLen pads a mask to n entries by repeating its last value. An
// empty mask selects everything.
func repeatToLen(mask []bool, n int) []bool {
	out := make([]bool, n)
	if len(mask) == 0 {
		for i := range out {
			out[i] = true
		}
		return out
	}
	for i := 0; i < n; i++ {
		if i < len(mask) {
			out[i] = mask[i]
		} else {
			out[i] = mask[len(mask)-1]
		}
	}
	return out
}

// ConvertMask translates a selection mask between element domains. A
// vertex counts as selected for an edge when both its endpoints are; an
// edge or vertex inherits selection from any selected face containing it.
func ConvertMask(mask []bool, from, to Domain, verts int, edges [][2]int, faces [][]int) ([]bool, error) {
	if from == to {
		return mask, nil
	}
	switch {
	case to == DomainPoint && from == DomainEdge:
		mask = repeatToLen(mask, len(edges))
		out := make([]bool, verts)
		for i, e := range edges {
			if mask[i] {
				out[e[0]] = true
				out[e[1]] = true
			}
		}
		return out, nil
	case to == DomainPoint && from == DomainFace:
		mask = repeatToLen(mask, len(faces))
		out := make([]bool, verts)
		for i, f := range faces {
			if mask[i] {
				for _, v := range f {
					out[v] = true
				}
			}
		}
		return out, nil
	case to == DomainEdge && from == DomainPoint:
		mask = repeatToLen(mask, verts)
		out := make([]bool, len(edges))
		for i, e := range edges {
			out[i] = mask[e[0]] && mask[e[1]]
		}
		return out, nil
	case to == DomainEdge && from == DomainFace:
		mask = repeatToLen(mask, len(faces))
		sel := make(map[[2]int]bool)
		for i, f := range faces {
			if !mask[i] {
				continue
			}
			for j := range f {
				sel[sortedPair(f[j], f[(j+1)%len(f)])] = true
			}
		}
		out := make([]bool, len(edges))
		for i, e := range edges {
			out[i] = sel[sortedPair(e[0], e[1])]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %s mask to %s domain", geom.ErrInvalidConfig, from, to)
	}
}

// SplitByVertices gives every face its own copy of each selected vertex,
// so that faces stop sharing geometry there. Unselected vertices keep a
// single shared copy and vertices used by no face survive unchanged.
// Returns the new topology plus ancestor index lists (new element to old
// element, -1 for edges with no original counterpart).
func SplitByVertices(verts []geom.Vec, edges [][2]int, faces [][]int, selected []bool) (
	outVerts []geom.Vec, outEdges [][2]int, outFaces [][]int, vertAnc, edgeAnc, faceAnc []int) {

	selected = repeatToLen(selected, len(verts))

	shared := make(map[int]int)
	used := make([]bool, len(verts))
	addVert := func(old int) int {
		idx := len(outVerts)
		outVerts = append(outVerts, verts[old])
		vertAnc = append(vertAnc, old)
		return idx
	}
	outFaces = make([][]int, 0, len(faces))
	for fi, f := range faces {
		nf := make([]int, len(f))
		for i, v := range f {
			used[v] = true
			if selected[v] {
				nf[i] = addVert(v)
			} else {
				idx, ok := shared[v]
				if !ok {
					idx = addVert(v)
					shared[v] = idx
				}
				nf[i] = idx
			}
		}
		outFaces = append(outFaces, nf)
		faceAnc = append(faceAnc, fi)
	}
	for v := range verts {
		if !used[v] {
			shared[v] = addVert(v)
		}
	}

	oldEdge := make(map[[2]int]int)
	for i, e := range edges {
		oldEdge[sortedPair(e[0], e[1])] = i
	}
	outEdges = PolygonsToEdges(outFaces, true)
	for _, e := range outEdges {
		key := sortedPair(vertAnc[e[0]], vertAnc[e[1]])
		if i, ok := oldEdge[key]; ok {
			edgeAnc = append(edgeAnc, i)
		} else {
			edgeAnc = append(edgeAnc, -1)
		}
	}
	return
}

// SplitByEdges rips the selected edges apart. Around each vertex the
// incident faces are clustered by walking across unselected edges only;
// each cluster gets its own copy of the vertex, so a ripped edge ends up
// duplicated with the fans on either side fully disconnected.
func SplitByEdges(verts []geom.Vec, edges [][2]int, faces [][]int, selected []bool) (
	outVerts []geom.Vec, outEdges [][2]int, outFaces [][]int, vertAnc, edgeAnc, faceAnc []int) {

	selected = repeatToLen(selected, len(edges))

	selEdge := make(map[[2]int]bool)
	oldEdge := make(map[[2]int]int)
	for i, e := range edges {
		key := sortedPair(e[0], e[1])
		oldEdge[key] = i
		if selected[i] {
			selEdge[key] = true
		}
	}

	// Incident faces per vertex, in face order.
	incident := make(map[int][]int)
	for fi, f := range faces {
		for _, v := range f {
			incident[v] = append(incident[v], fi)
		}
	}
	// Faces per undirected face edge.
	edgeFaces := make(map[[2]int][]int)
	for fi, f := range faces {
		for i := range f {
			key := sortedPair(f[i], f[(i+1)%len(f)])
			edgeFaces[key] = append(edgeFaces[key], fi)
		}
	}

	// copyOf[(face, vertex)] -> new vertex index.
	type corner struct{ face, vert int }
	copyOf := make(map[corner]int)
	firstCopy := make(map[int]int)
	addVert := func(old int) int {
		idx := len(outVerts)
		outVerts = append(outVerts, verts[old])
		vertAnc = append(vertAnc, old)
		return idx
	}

	for v := 0; v < len(verts); v++ {
		fs := incident[v]
		if len(fs) == 0 {
			firstCopy[v] = addVert(v)
			continue
		}
		// Local union-find over the fan of faces at v.
		parent := make(map[int]int, len(fs))
		for _, f := range fs {
			parent[f] = f
		}
		var find func(int) int
		find = func(x int) int {
			for parent[x] != x {
				parent[x] = parent[parent[x]]
				x = parent[x]
			}
			return x
		}
		for _, f := range fs {
			poly := faces[f]
			for i := range poly {
				a, b := poly[i], poly[(i+1)%len(poly)]
				if a != v && b != v {
					continue
				}
				key := sortedPair(a, b)
				if selEdge[key] {
					continue
				}
				for _, g := range edgeFaces[key] {
					ra, rb := find(f), find(g)
					if ra != rb {
						parent[rb] = ra
					}
				}
			}
		}
		clusterIdx := make(map[int]int)
		for _, f := range fs {
			r := find(f)
			idx, ok := clusterIdx[r]
			if !ok {
				idx = addVert(v)
				clusterIdx[r] = idx
				if _, seen := firstCopy[v]; !seen {
					firstCopy[v] = idx
				}
			}
			copyOf[corner{f, v}] = idx
		}
	}

	outFaces = make([][]int, len(faces))
	for fi, f := range faces {
		nf := make([]int, len(f))
		for i, v := range f {
			nf[i] = copyOf[corner{fi, v}]
		}
		outFaces[fi] = nf
		faceAnc = append(faceAnc, fi)
	}

	outEdges = PolygonsToEdges(outFaces, true)
	for _, e := range outEdges {
		key := sortedPair(vertAnc[e[0]], vertAnc[e[1]])
		if i, ok := oldEdge[key]; ok {
			edgeAnc = append(edgeAnc, i)
		} else {
			edgeAnc = append(edgeAnc, -1)
		}
	}
	// Wire edges with no face survive through the first copy of each end.
	for i, e := range edges {
		if len(edgeFaces[sortedPair(e[0], e[1])]) > 0 {
			continue
		}
		outEdges = append(outEdges, [2]int{firstCopy[e[0]], firstCopy[e[1]]})
		edgeAnc = append(edgeAnc, i)
	}
	return
}

// SplitElements applies a split to an attribute-carrying mesh in place.
// The mask may live on any domain and is converted to the domain the
// split kind operates on.
func SplitElements(m *IslandMesh, kind SplitKind, mask []bool, maskDomain Domain) error {
	var target Domain
	switch kind {
	case SplitVerts:
		target = DomainPoint
	case SplitEdges:
		target = DomainEdge
	default:
		return fmt.Errorf("%w: unknown split kind %v", geom.ErrInvalidConfig, kind)
	}
	sel, err := ConvertMask(mask, maskDomain, target, len(m.Verts), m.Edges, m.Faces)
	if err != nil {
		return err
	}
	var (
		vs               []geom.Vec
		es               [][2]int
		fs               [][]int
		vAnc, eAnc, fAnc []int
	)
	switch kind {
	case SplitVerts:
		vs, es, fs, vAnc, eAnc, fAnc = SplitByVertices(m.Verts, m.Edges, m.Faces, sel)
	case SplitEdges:
		vs, es, fs, vAnc, eAnc, fAnc = SplitByEdges(m.Verts, m.Edges, m.Faces, sel)
	}
	m.Update(vs, es, fs, vAnc, eAnc, fAnc)
	return nil
}
