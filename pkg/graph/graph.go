// Package graph defines the design graph data structures for loft. A
// graph is produced by one Lisp evaluation, validated, and handed to the
// evaluation layer; it is never mutated in place afterwards.
package graph

import (
	"fmt"

	"github.com/loftcad/loft/pkg/sweep"
)

// GlobalDefaults contains graph-wide default settings applied to nodes
// that leave the corresponding field unset.
type GlobalDefaults struct {
	Steps  int          `json:"steps"`  // default station count for bevels
	Config sweep.Config `json:"config"` // default sweep options
}

// DesignGraph is the top-level data structure produced by Lisp evaluation.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty DesignGraph with default settings.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: GlobalDefaults{
			Steps:  sweep.DefaultSteps,
			Config: sweep.DefaultConfig(),
		},
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Bevels returns all sweep operation nodes in the graph.
func (g *DesignGraph) Bevels() []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodeBevel {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}
