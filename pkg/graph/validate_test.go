package graph

import (
	"strings"
	"testing"

	"github.com/loftcad/loft/pkg/field"
	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/mesh"
	"github.com/loftcad/loft/pkg/sweep"
)

func squareRing() sweep.Profile {
	return sweep.RingProfile([]geom.Vec{
		{X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5}, {X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5},
	})
}

// validTubeGraph builds the smallest fully-wired graph: curve -> bevel -> output.
func validTubeGraph() *DesignGraph {
	b := NewGraphBuilder()
	curve := b.Curve("rail", []geom.Vec{{}, {Z: 10}}, geom.InterpLinear, geom.MetricEuclidean, false)
	profile := b.Profile("square", squareRing())
	bevel := b.Bevel("tube", BevelData{Curve: curve, Profile: profile, Steps: 8, Config: sweep.DefaultConfig()})
	b.Output("main", bevel)
	return b.Graph()
}

func errorsOnly(findings []ValidationError) []ValidationError {
	var out []ValidationError
	for _, f := range findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

func hasMessage(findings []ValidationError, substr string) bool {
	for _, f := range findings {
		if strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateCleanGraph(t *testing.T) {
	g := validTubeGraph()
	if errs := errorsOnly(Validate(g)); len(errs) != 0 {
		t.Fatalf("valid graph produced errors: %v", errs)
	}
}

func TestValidateDetectsCycle(t *testing.T) {
	g := New()
	a := NewNodeID("group/a")
	b := NewNodeID("group/b")
	g.AddNode(&Node{ID: a, Kind: NodeGroup, Children: []NodeID{b}, Data: GroupData{}})
	g.AddNode(&Node{ID: b, Kind: NodeGroup, Children: []NodeID{a}, Data: GroupData{}})
	g.AddRoot(a)

	if !hasMessage(Validate(g), "cycle detected") {
		t.Fatal("cycle not reported")
	}
}

func TestValidateDanglingReference(t *testing.T) {
	g := validTubeGraph()
	bevel := g.Bevels()[0]
	d := bevel.Data.(BevelData)
	d.Taper = NewNodeID("taper/ghost")
	bevel.Data = d

	findings := Validate(g)
	if !hasMessage(findings, "does not exist") {
		t.Fatalf("dangling data reference not reported: %v", findings)
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	g := New()
	a := NewNodeID("curve/a")
	b := NewNodeID("curve/b")
	g.AddNode(&Node{ID: a, Kind: NodeCurve, Name: "rail", Data: CurveData{Points: []geom.Vec{{}, {X: 1}}}})
	g.AddNode(&Node{ID: b, Kind: NodeCurve, Name: "rail", Data: CurveData{Points: []geom.Vec{{}, {X: 1}}}})

	if !hasMessage(Validate(g), "duplicate name") {
		t.Fatal("duplicate name not reported")
	}
}

func TestValidateOrphanWarning(t *testing.T) {
	g := validTubeGraph()
	g.AddNode(&Node{
		ID:   NewNodeID("curve/stray"),
		Kind: NodeCurve,
		Data: CurveData{Points: []geom.Vec{{}, {X: 1}}},
	})

	result := ValidateAll(g)
	if len(result.Errors) != 0 {
		t.Fatalf("orphan must be a warning, got errors: %v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "orphan") {
			found = true
		}
	}
	if !found {
		t.Fatal("orphan warning not reported")
	}
}

func TestValidateCurveData(t *testing.T) {
	b := NewGraphBuilder()
	b.Output("main", b.Curve("short", []geom.Vec{{}}, geom.InterpLinear, geom.MetricEuclidean, false))
	if !hasMessage(Validate(b.Graph()), "at least 2") {
		t.Fatal("short curve not reported")
	}
}

func TestValidateProfileIndices(t *testing.T) {
	b := NewGraphBuilder()
	p := squareRing()
	p.Edges = [][2]int{{0, 9}}
	curve := b.Curve("rail", []geom.Vec{{}, {Z: 1}}, geom.InterpLinear, geom.MetricEuclidean, false)
	profile := b.Profile("bad", p)
	b.Output("main", b.Bevel("tube", BevelData{Curve: curve, Profile: profile, Steps: 8, Config: sweep.DefaultConfig()}))

	if !hasMessage(Validate(b.Graph()), "out of range") {
		t.Fatal("bad profile edge not reported")
	}
}

func TestValidateBevelWiring(t *testing.T) {
	b := NewGraphBuilder()
	curve := b.Curve("rail", []geom.Vec{{}, {Z: 1}}, geom.InterpLinear, geom.MetricEuclidean, false)
	// Curve wired into the profile slot.
	bevel := b.Bevel("tube", BevelData{Curve: curve, Profile: curve, Steps: 8, Config: sweep.DefaultConfig()})
	b.Output("main", bevel)

	if !hasMessage(Validate(b.Graph()), "want profile") {
		t.Fatal("mis-kinded profile reference not reported")
	}
}

func TestValidateStepCounts(t *testing.T) {
	tests := []struct {
		name     string
		steps    int
		severity ValidationSeverity
		want     bool
	}{
		{"one step is an error", 1, SeverityError, true},
		{"three steps is a warning", 3, SeverityWarning, true},
		{"default steps is clean", 0, SeverityError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewGraphBuilder()
			curve := b.Curve("rail", []geom.Vec{{}, {Z: 1}}, geom.InterpLinear, geom.MetricEuclidean, false)
			profile := b.Profile("square", squareRing())
			b.Output("main", b.Bevel("tube", BevelData{
				Curve: curve, Profile: profile, Steps: tt.steps, Config: sweep.DefaultConfig(),
			}))
			var found bool
			for _, f := range Validate(b.Graph()) {
				if f.Severity == tt.severity && strings.Contains(f.Message, "step count") {
					found = true
				}
			}
			if found != tt.want {
				t.Fatalf("step count finding = %v, want %v", found, tt.want)
			}
		})
	}
}

func TestValidateBevelConfig(t *testing.T) {
	cfg := sweep.DefaultConfig()
	cfg.Algorithm = geom.AlgTrack
	cfg.UpAxis = cfg.OrientAxis

	b := NewGraphBuilder()
	curve := b.Curve("rail", []geom.Vec{{}, {Z: 1}}, geom.InterpLinear, geom.MetricEuclidean, false)
	profile := b.Profile("square", squareRing())
	b.Output("main", b.Bevel("tube", BevelData{Curve: curve, Profile: profile, Steps: 8, Config: cfg}))

	if !hasMessage(Validate(b.Graph()), "sweep config") {
		t.Fatal("invalid sweep config not reported")
	}
}

func TestValidateDisplaceNeedsField(t *testing.T) {
	b := NewGraphBuilder()
	curve := b.Curve("rail", []geom.Vec{{}, {Z: 1}}, geom.InterpLinear, geom.MetricEuclidean, false)
	profile := b.Profile("square", squareRing())
	bevel := b.Bevel("tube", BevelData{Curve: curve, Profile: profile, Steps: 8, Config: sweep.DefaultConfig()})
	b.Output("main", b.Displace("wavy", bevel, nil, 1))

	if !hasMessage(Validate(b.Graph()), "no vector field") {
		t.Fatal("nil displace field not reported")
	}
}

func TestValidateSplitAndDisplaceClean(t *testing.T) {
	b := NewGraphBuilder()
	curve := b.Curve("rail", []geom.Vec{{}, {Z: 10}}, geom.InterpLinear, geom.MetricEuclidean, false)
	profile := b.Profile("square", squareRing())
	bevel := b.Bevel("tube", BevelData{Curve: curve, Profile: profile, Steps: 8, Config: sweep.DefaultConfig()})
	split := b.Split("ripped", bevel, mesh.SplitEdges, nil, mesh.DomainEdge, true)
	displaced := b.Displace("wavy", split, field.Constant{V: geom.Vec{Z: 1}}, 0.5)
	b.Output("main", displaced)

	if errs := errorsOnly(Validate(b.Graph())); len(errs) != 0 {
		t.Fatalf("valid modifier chain produced errors: %v", errs)
	}
}

func TestValidateGroupChildKinds(t *testing.T) {
	b := NewGraphBuilder()
	profile := b.Profile("square", squareRing())
	b.Output("main", profile)

	if !hasMessage(Validate(b.Graph()), "no renderable output") {
		t.Fatal("non-renderable group child not reported")
	}
}
