// Package evaluate walks a validated design graph and produces one
// polygon mesh per renderable output. The evaluator is read-only with
// respect to the graph and never mutates a cached result.
package evaluate

import (
	"fmt"

	"github.com/loftcad/loft/pkg/field"
	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/graph"
	"github.com/loftcad/loft/pkg/mesh"
	"github.com/loftcad/loft/pkg/sweep"
)

// Result is one renderable mesh with the name of the node that made it.
type Result struct {
	Name string
	Mesh *mesh.Mesh
}

// Evaluate walks the design graph from its roots and builds every
// renderable output. Nodes referenced from several places are evaluated
// once and their results shared.
func Evaluate(g *graph.DesignGraph) ([]*Result, error) {
	if g == nil {
		return nil, nil
	}

	ev := &evaluator{g: g, memo: make(map[graph.NodeID][]*Result)}

	var results []*Result
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := ev.walk(root)
		if err != nil {
			return nil, fmt.Errorf("evaluate: root %s: %w", rootID.Short(), err)
		}
		results = append(results, collected...)
	}
	return results, nil
}

type evaluator struct {
	g    *graph.DesignGraph
	memo map[graph.NodeID][]*Result
}

func (ev *evaluator) walk(n *graph.Node) ([]*Result, error) {
	if cached, ok := ev.memo[n.ID]; ok {
		return cached, nil
	}

	var (
		results []*Result
		err     error
	)
	switch n.Kind {
	case graph.NodeGroup:
		results, err = ev.handleGroup(n)
	case graph.NodeBevel:
		results, err = ev.handleBevel(n)
	case graph.NodeSplit:
		results, err = ev.handleSplit(n)
	case graph.NodeDisplace:
		results, err = ev.handleDisplace(n)
	case graph.NodeCurve:
		results, err = ev.handleCurve(n)
	case graph.NodeProfile, graph.NodeTaper, graph.NodeTwist:
		return nil, fmt.Errorf("node %s (%s) produces no renderable output", n.ID.Short(), n.Kind)
	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
	if err != nil {
		return nil, err
	}

	ev.memo[n.ID] = results
	return results, nil
}

// displayName prefers the node's user-assigned name over its short ID.
func displayName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

func (ev *evaluator) handleGroup(n *graph.Node) ([]*Result, error) {
	var results []*Result
	for _, child := range ev.g.Children(n) {
		collected, err := ev.walk(child)
		if err != nil {
			return nil, err
		}
		results = append(results, collected...)
	}
	return results, nil
}

// pathSpline builds the spline for a curve node under the bevel's config.
func pathSpline(n *graph.Node) (geom.Spline, graph.CurveData, error) {
	cd, ok := n.Data.(graph.CurveData)
	if !ok {
		return nil, graph.CurveData{}, fmt.Errorf("curve node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	s, err := geom.NewSpline(cd.Points, cd.Mode, cd.Metric, cd.Cyclic)
	if err != nil {
		return nil, cd, fmt.Errorf("curve %s: %w", displayName(n), err)
	}
	return s, cd, nil
}

func (ev *evaluator) handleBevel(n *graph.Node) ([]*Result, error) {
	bd, ok := n.Data.(graph.BevelData)
	if !ok {
		return nil, fmt.Errorf("bevel node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	steps := bd.Steps
	if steps == 0 {
		steps = ev.g.Defaults.Steps
	}
	cfg := bd.Config
	if cfg == (sweep.Config{}) {
		cfg = ev.g.Defaults.Config
	}

	curveNode := ev.g.Get(bd.Curve)
	if curveNode == nil {
		return nil, fmt.Errorf("bevel %s: curve reference %s does not exist", displayName(n), bd.Curve.Short())
	}
	path, cd, err := pathSpline(curveNode)
	if err != nil {
		return nil, err
	}
	// The curve node decides cyclicity; the config follows it.
	cfg.Cyclic = cd.Cyclic
	cfg.PathMode = cd.Mode
	cfg.Metric = cd.Metric

	profileNode := ev.g.Get(bd.Profile)
	if profileNode == nil {
		return nil, fmt.Errorf("bevel %s: profile reference %s does not exist", displayName(n), bd.Profile.Short())
	}
	pd, ok := profileNode.Data.(graph.ProfileData)
	if !ok {
		return nil, fmt.Errorf("profile node %s has unexpected data type %T", profileNode.ID.Short(), profileNode.Data)
	}

	var taperPoints []geom.Vec
	taperMode := cfg.TaperMode
	if !bd.Taper.IsZero() {
		tn := ev.g.Get(bd.Taper)
		if tn == nil {
			return nil, fmt.Errorf("bevel %s: taper reference %s does not exist", displayName(n), bd.Taper.Short())
		}
		td, ok := tn.Data.(graph.TaperData)
		if !ok {
			return nil, fmt.Errorf("taper node %s has unexpected data type %T", tn.ID.Short(), tn.Data)
		}
		taperPoints = td.Points
		taperMode = td.Mode
	}
	taper, err := sweep.MakeTaperSpline(taperPoints, taperMode, cfg)
	if err != nil {
		return nil, fmt.Errorf("bevel %s: %w", displayName(n), err)
	}

	var twistPoints []sweep.TwistPoint
	twistMode := cfg.TwistMode
	if !bd.Twist.IsZero() {
		tn := ev.g.Get(bd.Twist)
		if tn == nil {
			return nil, fmt.Errorf("bevel %s: twist reference %s does not exist", displayName(n), bd.Twist.Short())
		}
		td, ok := tn.Data.(graph.TwistData)
		if !ok {
			return nil, fmt.Errorf("twist node %s has unexpected data type %T", tn.ID.Short(), tn.Data)
		}
		twistPoints = td.Points
		twistMode = td.Mode
	}
	twist, err := sweep.MakeTwistSpline(twistPoints, twistMode, cfg)
	if err != nil {
		return nil, fmt.Errorf("bevel %s: %w", displayName(n), err)
	}

	m, err := sweep.Build(path, taper, twist, pd.Profile, steps, cfg)
	if err != nil {
		return nil, fmt.Errorf("bevel %s: %w", displayName(n), err)
	}
	return []*Result{{Name: displayName(n), Mesh: m}}, nil
}

func (ev *evaluator) handleSplit(n *graph.Node) ([]*Result, error) {
	sd, ok := n.Data.(graph.SplitData)
	if !ok {
		return nil, fmt.Errorf("split node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	target := ev.g.Get(sd.Target)
	if target == nil {
		return nil, fmt.Errorf("split %s: target %s does not exist", displayName(n), sd.Target.Short())
	}
	inputs, err := ev.walk(target)
	if err != nil {
		return nil, err
	}

	var results []*Result
	for _, in := range inputs {
		im := mesh.NewIslandMesh(in.Mesh.Verts, in.Mesh.Edges, in.Mesh.Faces)
		if err := mesh.SplitElements(im, sd.Kind, sd.Mask, sd.MaskDomain); err != nil {
			return nil, fmt.Errorf("split %s: %w", displayName(n), err)
		}
		if !sd.Islands {
			results = append(results, &Result{Name: displayName(n), Mesh: im.Mesh()})
			continue
		}
		for i, island := range im.SplitIslands() {
			results = append(results, &Result{
				Name: fmt.Sprintf("%s_%d", displayName(n), i),
				Mesh: island,
			})
		}
	}
	return results, nil
}

func (ev *evaluator) handleDisplace(n *graph.Node) ([]*Result, error) {
	dd, ok := n.Data.(graph.DisplaceData)
	if !ok {
		return nil, fmt.Errorf("displace node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	if dd.Field == nil {
		return nil, fmt.Errorf("displace %s has no vector field", displayName(n))
	}
	target := ev.g.Get(dd.Target)
	if target == nil {
		return nil, fmt.Errorf("displace %s: target %s does not exist", displayName(n), dd.Target.Short())
	}
	inputs, err := ev.walk(target)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(inputs))
	for _, in := range inputs {
		// Copy before mutation: the input mesh may be shared via the memo.
		m := &mesh.Mesh{
			Verts: append([]geom.Vec{}, in.Mesh.Verts...),
			Edges: in.Mesh.Edges,
			Faces: in.Mesh.Faces,
		}
		field.Displace(m, dd.Field, dd.Strength)
		results = append(results, &Result{Name: displayName(n), Mesh: m})
	}
	return results, nil
}

// handleCurve renders a bare curve as a polyline mesh.
func (ev *evaluator) handleCurve(n *graph.Node) ([]*Result, error) {
	s, cd, err := pathSpline(n)
	if err != nil {
		return nil, err
	}
	steps := ev.g.Defaults.Steps
	if steps < 2 {
		steps = sweep.DefaultSteps
	}
	ts := make([]float64, steps)
	for i := range ts {
		ts[i] = float64(i) / float64(steps-1)
	}
	if cd.Cyclic {
		ts = ts[:steps-1]
	}
	m := &mesh.Mesh{Verts: s.Eval(ts)}
	for i := 1; i < len(m.Verts); i++ {
		m.Edges = append(m.Edges, [2]int{i - 1, i})
	}
	if cd.Cyclic && len(m.Verts) > 1 {
		m.Edges = append(m.Edges, [2]int{len(m.Verts) - 1, 0})
	}
	return []*Result{{Name: displayName(n), Mesh: m}}, nil
}
