package graph

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodeCurve    NodeKind = iota // path control points and interpolation options
	NodeProfile                  // cross-section ring
	NodeTaper                    // scale modulation curve
	NodeTwist                    // rotation modulation curve
	NodeBevel                    // sweep operation producing a mesh
	NodeSplit                    // topology split on a mesh-producing child
	NodeDisplace                 // vector-field displacement of a mesh
	NodeGroup                    // logical grouping (output)
)

func (k NodeKind) String() string {
	switch k {
	case NodeCurve:
		return "curve"
	case NodeProfile:
		return "profile"
	case NodeTaper:
		return "taper"
	case NodeTwist:
		return "twist"
	case NodeBevel:
		return "bevel"
	case NodeSplit:
		return "split"
	case NodeDisplace:
		return "displace"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
