package graph

import (
	"fmt"

	"github.com/loftcad/loft/pkg/mesh"
	"github.com/loftcad/loft/pkg/sweep"
)

// ValidationSeverity indicates whether a validation finding blocks
// evaluation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs the structural validation checks on the design graph and
// returns a slice of validation findings. An empty slice means the graph
// is valid. This function is read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateNodeData(g)...)
	return errs
}

// ValidateAll runs structural and geometric validation and returns a
// ValidationResult with separated errors and warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// dataRefs returns the NodeID references held inside a node's payload.
func dataRefs(n *Node) []NodeID {
	switch d := n.Data.(type) {
	case BevelData:
		refs := []NodeID{d.Curve, d.Profile}
		if !d.Taper.IsZero() {
			refs = append(refs, d.Taper)
		}
		if !d.Twist.IsZero() {
			refs = append(refs, d.Twist)
		}
		return refs
	case SplitData:
		if !d.Target.IsZero() {
			return []NodeID{d.Target}
		}
	case DisplaceData:
		if !d.Target.IsZero() {
			return []NodeID{d.Target}
		}
	}
	return nil
}

// validateDAG checks for cycles using DFS with 3-color marking. White (0)
// = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		for _, ref := range dataRefs(node) {
			if visit(ref) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Start DFS from every node to catch disconnected components.
	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every NodeID referenced anywhere in the
// graph points to a node that actually exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
		for _, ref := range dataRefs(node) {
			if _, ok := g.Nodes[ref]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("data reference %s does not exist", ref.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share
// the same name) and that every entry points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (nodes unreachable from any root).
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	if len(g.Nodes) == 0 {
		return errs
	}

	// Orphan detection: BFS from all roots through children and data refs.
	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}

		next := append([]NodeID{}, node.Children...)
		next = append(next, dataRefs(node)...)
		for _, id := range next {
			if !reachable[id] {
				reachable[id] = true
				queue = append(queue, id)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// resolveBevel applies graph defaults to unset bevel fields.
func resolveBevel(g *DesignGraph, d BevelData) BevelData {
	if d.Steps == 0 {
		d.Steps = g.Defaults.Steps
	}
	if d.Config == (sweep.Config{}) {
		d.Config = g.Defaults.Config
	}
	return d
}

// expectKind verifies a referenced node has the expected kind.
func expectKind(g *DesignGraph, owner *Node, ref NodeID, want NodeKind, field string) *ValidationError {
	n, ok := g.Nodes[ref]
	if !ok {
		return nil // missing refs reported by validateReferences
	}
	if n.Kind != want {
		return &ValidationError{
			NodeID:   owner.ID,
			Message:  fmt.Sprintf("%s reference %s is a %s node, want %s", field, ref.Short(), n.Kind, want),
			Severity: SeverityError,
		}
	}
	return nil
}

// renderableKinds are node kinds a group may expose as output.
var renderableKinds = map[NodeKind]bool{
	NodeCurve:    true,
	NodeBevel:    true,
	NodeSplit:    true,
	NodeDisplace: true,
	NodeGroup:    true,
}

// validateNodeData checks kind-specific payload constraints: curve point
// counts, profile index ranges, bevel wiring and step counts, split and
// displace targets.
func validateNodeData(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	report := func(id NodeID, sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case CurveData:
			if len(d.Points) < 2 {
				report(node.ID, SeverityError, "curve has %d control points, need at least 2", len(d.Points))
			}

		case ProfileData:
			k := len(d.Profile.Verts)
			for i, e := range d.Profile.Edges {
				if e[0] < 0 || e[0] >= k || e[1] < 0 || e[1] >= k {
					report(node.ID, SeverityError, "profile edge %d references vertex out of range [0,%d)", i, k)
				}
			}
			for i, f := range d.Profile.Faces {
				for _, v := range f {
					if v < 0 || v >= k {
						report(node.ID, SeverityError, "profile face %d references vertex %d out of range [0,%d)", i, v, k)
					}
				}
			}

		case TaperData:
			if len(d.Points) == 1 {
				report(node.ID, SeverityError, "taper has 1 control point, need 0 or at least 2")
			}

		case BevelData:
			if d.Curve.IsZero() {
				report(node.ID, SeverityError, "bevel has no curve reference")
			} else if e := expectKind(g, node, d.Curve, NodeCurve, "curve"); e != nil {
				errs = append(errs, *e)
			}
			if d.Profile.IsZero() {
				report(node.ID, SeverityError, "bevel has no profile reference")
			} else if e := expectKind(g, node, d.Profile, NodeProfile, "profile"); e != nil {
				errs = append(errs, *e)
			}
			if !d.Taper.IsZero() {
				if e := expectKind(g, node, d.Taper, NodeTaper, "taper"); e != nil {
					errs = append(errs, *e)
				}
			}
			if !d.Twist.IsZero() {
				if e := expectKind(g, node, d.Twist, NodeTwist, "twist"); e != nil {
					errs = append(errs, *e)
				}
			}
			r := resolveBevel(g, d)
			if r.Steps < 2 {
				report(node.ID, SeverityError, "step count %d, need at least 2", r.Steps)
			} else if r.Steps < sweep.MinSteps {
				report(node.ID, SeverityWarning, "step count %d below recommended minimum %d", r.Steps, sweep.MinSteps)
			}
			if err := r.Config.Validate(); err != nil {
				report(node.ID, SeverityError, "sweep config: %v", err)
			}

		case SplitData:
			if d.Target.IsZero() {
				report(node.ID, SeverityError, "split has no target reference")
			}
			if d.Kind != mesh.SplitVerts && d.Kind != mesh.SplitEdges {
				report(node.ID, SeverityError, "unknown split kind %v", d.Kind)
			}

		case DisplaceData:
			if d.Target.IsZero() {
				report(node.ID, SeverityError, "displace has no target reference")
			}
			if d.Field == nil {
				report(node.ID, SeverityError, "displace has no vector field")
			}

		case GroupData:
			for _, cid := range node.Children {
				c, ok := g.Nodes[cid]
				if ok && !renderableKinds[c.Kind] {
					report(node.ID, SeverityError, "group child %s is a %s node, which produces no renderable output", cid.Short(), c.Kind)
				}
			}
		}
	}

	return errs
}
