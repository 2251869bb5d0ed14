package engine

import (
	"math"
	"testing"

	"github.com/loftcad/loft/pkg/field"
	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/graph"
	"github.com/loftcad/loft/pkg/mesh"
	"github.com/loftcad/loft/pkg/sweep"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(curve :mode "cubic")`,
			expect: `(curve "__kw_mode" "cubic")`,
		},
		{
			name:   "multiple keywords",
			input:  `(bevel-curve :steps 20 :orient :z)`,
			expect: `(bevel_curve "__kw_steps" 20 "__kw_orient" "__kw_z")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(radial-field :center c)`,
			expect: `(radial_field "__kw_center" c)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:cap-start`,
			expect: `"__kw_cap-start"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Simple curve test
// ---------------------------------------------------------------------------

func TestSimpleCurve(t *testing.T) {
	eng := NewEngine()

	source := `
(curve "rail"
  :points (list (vec3 0 0 0) (vec3 0 0 5) (vec3 0 0 10))
  :mode :linear :metric :points :cyclic false)
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 node, got %d", g.NodeCount())
	}

	rail := g.Lookup("rail")
	if rail == nil {
		t.Fatal("expected node named 'rail'")
	}
	if rail.Kind != graph.NodeCurve {
		t.Errorf("expected NodeCurve, got %s", rail.Kind)
	}

	cd, ok := rail.Data.(graph.CurveData)
	if !ok {
		t.Fatalf("expected CurveData, got %T", rail.Data)
	}
	if len(cd.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(cd.Points))
	}
	if cd.Points[1].Z != 5 {
		t.Errorf("expected point 1 Z=5, got %f", cd.Points[1].Z)
	}
	if cd.Mode != geom.InterpLinear {
		t.Errorf("expected linear mode, got %s", cd.Mode)
	}
	if cd.Metric != geom.MetricPoints {
		t.Errorf("expected points metric, got %s", cd.Metric)
	}
	if cd.Cyclic {
		t.Error("expected non-cyclic curve")
	}
}

// ---------------------------------------------------------------------------
// Variable reference test
// ---------------------------------------------------------------------------

func TestVariableReference(t *testing.T) {
	eng := NewEngine()

	source := `
(def h 10)
(curve "rail" :points (list (vec3 0 0 0) (vec3 0 0 h)))
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	rail := g.Lookup("rail")
	if rail == nil {
		t.Fatal("expected node named 'rail'")
	}
	cd := rail.Data.(graph.CurveData)
	if cd.Points[1].Z != 10 {
		t.Errorf("expected Z=10 (from variable), got %f", cd.Points[1].Z)
	}
}

// ---------------------------------------------------------------------------
// Profile tests
// ---------------------------------------------------------------------------

func TestProfileExplicit(t *testing.T) {
	eng := NewEngine()

	source := `
(profile "square"
  :points (list (vec3 0.5 -0.5 0) (vec3 0.5 0.5 0) (vec3 -0.5 0.5 0) (vec3 -0.5 -0.5 0))
  :edges (list (list 0 1) (list 1 2) (list 2 3) (list 3 0))
  :faces (list (list 0 1 2 3)))
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	n := g.Lookup("square")
	if n == nil {
		t.Fatal("expected node named 'square'")
	}
	pd, ok := n.Data.(graph.ProfileData)
	if !ok {
		t.Fatalf("expected ProfileData, got %T", n.Data)
	}
	if len(pd.Profile.Verts) != 4 {
		t.Errorf("expected 4 verts, got %d", len(pd.Profile.Verts))
	}
	if len(pd.Profile.Edges) != 4 {
		t.Errorf("expected 4 edges, got %d", len(pd.Profile.Edges))
	}
	if pd.Profile.Edges[3] != [2]int{3, 0} {
		t.Errorf("expected closing edge {3 0}, got %v", pd.Profile.Edges[3])
	}
	if len(pd.Profile.Faces) != 1 || len(pd.Profile.Faces[0]) != 4 {
		t.Errorf("expected one quad face, got %v", pd.Profile.Faces)
	}
}

func TestProfilePolygonGenerator(t *testing.T) {
	eng := NewEngine()

	source := `(profile "hex" :sides 6 :radius 2)`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	n := g.Lookup("hex")
	if n == nil {
		t.Fatal("expected node named 'hex'")
	}
	pd := n.Data.(graph.ProfileData)
	if len(pd.Profile.Verts) != 6 {
		t.Fatalf("expected 6 verts, got %d", len(pd.Profile.Verts))
	}
	// First vertex on the +X axis at the requested radius.
	if math.Abs(pd.Profile.Verts[0].X-2) > 1e-12 || math.Abs(pd.Profile.Verts[0].Y) > 1e-12 {
		t.Errorf("expected first vertex at (2, 0), got (%f, %f)",
			pd.Profile.Verts[0].X, pd.Profile.Verts[0].Y)
	}
	for i, v := range pd.Profile.Verts {
		r := math.Hypot(v.X, v.Y)
		if math.Abs(r-2) > 1e-12 {
			t.Errorf("vertex %d: expected radius 2, got %f", i, r)
		}
	}
}

// ---------------------------------------------------------------------------
// Taper and twist tests
// ---------------------------------------------------------------------------

func TestTaperNode(t *testing.T) {
	eng := NewEngine()

	source := `
(taper "fade" :points (list (vec3 1 0 0) (vec3 0.2 0 10)) :mode :linear)
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	n := g.Lookup("fade")
	if n == nil {
		t.Fatal("expected node named 'fade'")
	}
	td, ok := n.Data.(graph.TaperData)
	if !ok {
		t.Fatalf("expected TaperData, got %T", n.Data)
	}
	if len(td.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(td.Points))
	}
	if td.Points[1].X != 0.2 {
		t.Errorf("expected second point X=0.2, got %f", td.Points[1].X)
	}
	if td.Mode != geom.InterpLinear {
		t.Errorf("expected linear mode, got %s", td.Mode)
	}
}

func TestTwistNode(t *testing.T) {
	eng := NewEngine()

	source := `
(twist "quarter" :points (list (list 0 0) (list 1 1.5708)))
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	n := g.Lookup("quarter")
	if n == nil {
		t.Fatal("expected node named 'quarter'")
	}
	td := n.Data.(graph.TwistData)
	if len(td.Points) != 2 {
		t.Fatalf("expected 2 twist points, got %d", len(td.Points))
	}
	if td.Points[1].T != 1 || math.Abs(td.Points[1].Angle-1.5708) > 1e-12 {
		t.Errorf("expected final point (1, 1.5708), got (%f, %f)",
			td.Points[1].T, td.Points[1].Angle)
	}
}

func TestTwistFromAngleList(t *testing.T) {
	eng := NewEngine()

	source := `(twist "wave" :angles (list 0 0.5 0))`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	td := g.Lookup("wave").Data.(graph.TwistData)
	if len(td.Points) != 3 {
		t.Fatalf("expected 3 twist points, got %d", len(td.Points))
	}
	if td.Points[1].T != 0.5 || td.Points[1].Angle != 0.5 {
		t.Errorf("expected middle point (0.5, 0.5), got (%f, %f)",
			td.Points[1].T, td.Points[1].Angle)
	}
}

// ---------------------------------------------------------------------------
// Bevel sweep test
// ---------------------------------------------------------------------------

func TestBevelCurve(t *testing.T) {
	eng := NewEngine()

	source := `
(def rail (curve "rail" :points (list (vec3 0 0 0) (vec3 0 0 10))))
(def square (profile "square" :sides 4))
(def fade (taper "fade" :points (list (vec3 1 0 0) (vec3 0.5 0 10))))

(bevel-curve "tube"
  :curve rail :profile square :taper fade
  :steps 20
  :algorithm :track :orient :z :up :y
  :cap-start true :cap-end true
  :flip-curve true :separate-scale true
  :taper-metric :curve)
(output "main" (bevel-curve "tube2" :curve rail :profile square))
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	tube := g.Lookup("tube")
	if tube == nil {
		t.Fatal("expected node named 'tube'")
	}
	if tube.Kind != graph.NodeBevel {
		t.Errorf("expected NodeBevel, got %s", tube.Kind)
	}

	bd, ok := tube.Data.(graph.BevelData)
	if !ok {
		t.Fatalf("expected BevelData, got %T", tube.Data)
	}

	rail := g.Lookup("rail")
	square := g.Lookup("square")
	fade := g.Lookup("fade")
	if bd.Curve != rail.ID {
		t.Error("expected curve ref to 'rail'")
	}
	if bd.Profile != square.ID {
		t.Error("expected profile ref to 'square'")
	}
	if bd.Taper != fade.ID {
		t.Error("expected taper ref to 'fade'")
	}
	if !bd.Twist.IsZero() {
		t.Error("expected no twist ref")
	}
	if bd.Steps != 20 {
		t.Errorf("expected 20 steps, got %d", bd.Steps)
	}
	if bd.Config.Algorithm != geom.AlgTrack {
		t.Errorf("expected track algorithm, got %s", bd.Config.Algorithm)
	}
	if bd.Config.UpAxis != geom.AxisY {
		t.Errorf("expected up=Y, got %s", bd.Config.UpAxis)
	}
	if !bd.Config.CapStart || !bd.Config.CapEnd {
		t.Error("expected both caps enabled")
	}
	if !bd.Config.FlipPath {
		t.Error("expected flip-curve to set FlipPath")
	}
	if !bd.Config.SeparateScale {
		t.Error("expected separate-scale enabled")
	}
	if bd.Config.TaperMetric != sweep.TaperSameAsCurve {
		t.Errorf("expected taper metric same-as-curve, got %s", bd.Config.TaperMetric)
	}

	// Children derived from the data references.
	if len(tube.Children) != 3 {
		t.Errorf("expected 3 children (curve, profile, taper), got %d", len(tube.Children))
	}

	// The second bevel without overrides keeps the graph defaults.
	tube2 := g.Lookup("tube2")
	if tube2 == nil {
		t.Fatal("expected node named 'tube2'")
	}
	bd2 := tube2.Data.(graph.BevelData)
	if bd2.Steps != 0 {
		t.Errorf("expected unset steps to stay 0, got %d", bd2.Steps)
	}
	if bd2.Config.Algorithm != geom.AlgHouseholder {
		t.Errorf("expected default algorithm, got %s", bd2.Config.Algorithm)
	}

	if len(g.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(g.Roots))
	}
	main := g.Get(g.Roots[0])
	if main == nil || main.Name != "main" {
		t.Error("expected root named 'main'")
	}
	if len(main.Children) != 1 || main.Children[0] != tube2.ID {
		t.Error("expected 'main' to contain tube2")
	}
}

// ---------------------------------------------------------------------------
// Split and displace tests
// ---------------------------------------------------------------------------

func TestSplitNode(t *testing.T) {
	eng := NewEngine()

	source := `
(def rail (curve "rail" :points (list (vec3 0 0 0) (vec3 0 0 10))))
(def square (profile "square" :sides 4))
(def tube (bevel-curve "tube" :curve rail :profile square))

(split "panels" :target tube :kind :edges
  :mask (list 1 0 1 0) :domain :edge :islands true)
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	n := g.Lookup("panels")
	if n == nil {
		t.Fatal("expected node named 'panels'")
	}
	sd, ok := n.Data.(graph.SplitData)
	if !ok {
		t.Fatalf("expected SplitData, got %T", n.Data)
	}
	if sd.Target != g.Lookup("tube").ID {
		t.Error("expected target ref to 'tube'")
	}
	if sd.Kind != mesh.SplitEdges {
		t.Errorf("expected edge split, got %s", sd.Kind)
	}
	if sd.MaskDomain != mesh.DomainEdge {
		t.Errorf("expected edge domain, got %s", sd.MaskDomain)
	}
	want := []bool{true, false, true, false}
	if len(sd.Mask) != len(want) {
		t.Fatalf("expected mask length %d, got %d", len(want), len(sd.Mask))
	}
	for i := range want {
		if sd.Mask[i] != want[i] {
			t.Errorf("mask[%d]: expected %v, got %v", i, want[i], sd.Mask[i])
		}
	}
	if !sd.Islands {
		t.Error("expected islands enabled")
	}
}

func TestDisplaceWithFields(t *testing.T) {
	eng := NewEngine()

	source := `
(def rail (curve "rail" :points (list (vec3 0 0 0) (vec3 0 0 10))))
(def square (profile "square" :sides 4))
(def tube (bevel-curve "tube" :curve rail :profile square))

(displace "wavy" :target tube
  :field (sum-field
           (constant-field (vec3 0 0 1))
           (scale-field (radial-field :center (vec3 0 0 5) :falloff 0.5) :factor 2))
  :strength 0.25)
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	n := g.Lookup("wavy")
	if n == nil {
		t.Fatal("expected node named 'wavy'")
	}
	dd, ok := n.Data.(graph.DisplaceData)
	if !ok {
		t.Fatalf("expected DisplaceData, got %T", n.Data)
	}
	if dd.Strength != 0.25 {
		t.Errorf("expected strength 0.25, got %f", dd.Strength)
	}
	sum, ok := dd.Field.(field.Sum)
	if !ok {
		t.Fatalf("expected Sum field, got %T", dd.Field)
	}
	if len(sum.Fields) != 2 {
		t.Fatalf("expected 2 summed fields, got %d", len(sum.Fields))
	}
	if _, ok := sum.Fields[0].(field.Constant); !ok {
		t.Errorf("expected first field Constant, got %T", sum.Fields[0])
	}
	scaled, ok := sum.Fields[1].(field.Scaled)
	if !ok {
		t.Fatalf("expected second field Scaled, got %T", sum.Fields[1])
	}
	if scaled.Factor != 2 {
		t.Errorf("expected factor 2, got %f", scaled.Factor)
	}
	if _, ok := scaled.Field.(field.Radial); !ok {
		t.Errorf("expected scaled inner field Radial, got %T", scaled.Field)
	}
}

func TestAttractField(t *testing.T) {
	eng := NewEngine()

	source := `
(def rail (curve "rail" :points (list (vec3 0 0 0) (vec3 0 0 10))))
(def square (profile "square" :sides 4))
(displace "pull" :target (bevel-curve "tube" :curve rail :profile square)
  :field (attract-field :points (list (vec3 5 0 0) (vec3 -5 0 0))))
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	dd := g.Lookup("pull").Data.(graph.DisplaceData)
	if _, ok := dd.Field.(*field.Attractor); !ok {
		t.Errorf("expected Attractor field, got %T", dd.Field)
	}
}

// ---------------------------------------------------------------------------
// Defaults test
// ---------------------------------------------------------------------------

func TestDefaultsOverride(t *testing.T) {
	eng := NewEngine()

	source := `
(defaults :steps 32 :algorithm :track :up :y)
(def rail (curve "rail" :points (list (vec3 0 0 0) (vec3 0 0 10))))
(bevel-curve "tube" :curve rail :profile (profile "square" :sides 4))
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	if g.Defaults.Steps != 32 {
		t.Errorf("expected default steps 32, got %d", g.Defaults.Steps)
	}
	if g.Defaults.Config.Algorithm != geom.AlgTrack {
		t.Errorf("expected default algorithm track, got %s", g.Defaults.Config.Algorithm)
	}

	// Bevels created after (defaults ...) inherit the new config.
	bd := g.Lookup("tube").Data.(graph.BevelData)
	if bd.Config.Algorithm != geom.AlgTrack {
		t.Errorf("expected bevel to inherit track algorithm, got %s", bd.Config.Algorithm)
	}
	if bd.Config.UpAxis != geom.AxisY {
		t.Errorf("expected bevel to inherit up=Y, got %s", bd.Config.UpAxis)
	}
}

// ---------------------------------------------------------------------------
// Error handling tests
// ---------------------------------------------------------------------------

func TestBadKeywordValueReportsError(t *testing.T) {
	eng := NewEngine()

	source := `(curve "rail" :points (list (vec3 0 0 0)) :mode :septic)`
	_, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for bad mode")
	}

	found := false
	for _, e := range evalErrs {
		if e.Message != "" {
			found = true
		}
	}
	if !found {
		t.Error("eval error should have a non-empty message")
	}
}

func TestAnonymousNodesGetDistinctIDs(t *testing.T) {
	eng := NewEngine()

	source := `
(def a (curve :points (list (vec3 0 0 0) (vec3 0 0 1))))
(def b (curve :points (list (vec3 0 0 0) (vec3 0 0 2))))
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 anonymous nodes, got %d", g.NodeCount())
	}
}

// ---------------------------------------------------------------------------
// Empty source produces empty graph (regression)
// ---------------------------------------------------------------------------

func TestEmptySourceStillWorks(t *testing.T) {
	eng := NewEngine()
	g, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.NodeCount())
	}
}

// ---------------------------------------------------------------------------
// Plain arithmetic still works (regression)
// ---------------------------------------------------------------------------

func TestArithmeticStillWorks(t *testing.T) {
	eng := NewEngine()
	g, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
}
