package graph

import (
	"fmt"

	"github.com/loftcad/loft/pkg/field"
	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/mesh"
	"github.com/loftcad/loft/pkg/sweep"
)

// GraphBuilder assembles a DesignGraph programmatically, mirroring what
// the Lisp builtins do during evaluation. Useful for examples and tests
// that do not go through the DSL.
type GraphBuilder struct {
	g    *DesignGraph
	anon int
}

// NewGraphBuilder creates a builder over a fresh graph.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{g: New()}
}

func (b *GraphBuilder) add(kind NodeKind, name string, children []NodeID, data NodeData) NodeID {
	path := fmt.Sprintf("%s/%s", kind, name)
	if name == "" {
		b.anon++
		path = fmt.Sprintf("%s/_anon_%d", kind, b.anon)
	}
	id := NewNodeID(path)
	b.g.AddNode(&Node{ID: id, Kind: kind, Name: name, Children: children, Data: data})
	return id
}

// Curve adds a path curve node.
func (b *GraphBuilder) Curve(name string, points []geom.Vec, mode geom.InterpMode, metric geom.Metric, cyclic bool) NodeID {
	return b.add(NodeCurve, name, nil, CurveData{
		Points: points, Mode: mode, Metric: metric, Cyclic: cyclic,
	})
}

// Profile adds a cross-section node.
func (b *GraphBuilder) Profile(name string, p sweep.Profile) NodeID {
	return b.add(NodeProfile, name, nil, ProfileData{Profile: p})
}

// Taper adds a scale-modulation node.
func (b *GraphBuilder) Taper(name string, points []geom.Vec, mode geom.InterpMode) NodeID {
	return b.add(NodeTaper, name, nil, TaperData{Points: points, Mode: mode})
}

// Twist adds a rotation-modulation node.
func (b *GraphBuilder) Twist(name string, points []sweep.TwistPoint, mode geom.InterpMode) NodeID {
	return b.add(NodeTwist, name, nil, TwistData{Points: points, Mode: mode})
}

// Bevel adds a sweep node. Children are derived from the references in
// the data so reachability tracking works without special cases.
func (b *GraphBuilder) Bevel(name string, data BevelData) NodeID {
	children := []NodeID{data.Curve, data.Profile}
	if !data.Taper.IsZero() {
		children = append(children, data.Taper)
	}
	if !data.Twist.IsZero() {
		children = append(children, data.Twist)
	}
	return b.add(NodeBevel, name, children, data)
}

// Split adds a topology-split node over a mesh-producing child.
func (b *GraphBuilder) Split(name string, target NodeID, kind mesh.SplitKind, mask []bool, maskDomain mesh.Domain, islands bool) NodeID {
	return b.add(NodeSplit, name, []NodeID{target}, SplitData{
		Target: target, Kind: kind, Mask: mask, MaskDomain: maskDomain, Islands: islands,
	})
}

// Displace adds a vector-field displacement node.
func (b *GraphBuilder) Displace(name string, target NodeID, f field.VectorField, strength float64) NodeID {
	return b.add(NodeDisplace, name, []NodeID{target}, DisplaceData{
		Target: target, Field: f, Strength: strength,
	})
}

// Group collects children under a named node without marking it a root.
func (b *GraphBuilder) Group(name string, children ...NodeID) NodeID {
	return b.add(NodeGroup, name, children, GroupData{})
}

// Output groups children under a named root node.
func (b *GraphBuilder) Output(name string, children ...NodeID) NodeID {
	id := b.add(NodeGroup, name, children, GroupData{})
	b.g.AddRoot(id)
	return id
}

// Defaults overrides the graph-wide default settings.
func (b *GraphBuilder) Defaults(d GlobalDefaults) *GraphBuilder {
	b.g.Defaults = d
	return b
}

// Graph returns the assembled design graph.
func (b *GraphBuilder) Graph() *DesignGraph {
	return b.g
}
