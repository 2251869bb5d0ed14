package sweep

import (
	"fmt"

	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/mesh"
)

// Input is one complete sweep request: raw control data plus options.
type Input struct {
	Path    []geom.Vec   `json:"path"`
	Profile Profile      `json:"profile"`
	Taper   []geom.Vec   `json:"taper,omitempty"`
	Twist   []TwistPoint `json:"twist,omitempty"`
	Steps   int          `json:"steps"`
	Config  Config       `json:"config"`
}

// BuildInput assembles the path, taper, and twist splines from raw control
// data and runs the sweep. A zero step count falls back to DefaultSteps.
func BuildInput(in Input) (*mesh.Mesh, error) {
	cfg := in.Config
	steps := in.Steps
	if steps == 0 {
		steps = DefaultSteps
	}
	path, err := geom.NewSpline(in.Path, cfg.PathMode, cfg.Metric, cfg.Cyclic)
	if err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}
	taper, err := MakeTaperSpline(in.Taper, cfg.TaperMode, cfg)
	if err != nil {
		return nil, err
	}
	twist, err := MakeTwistSpline(in.Twist, cfg.TwistMode, cfg)
	if err != nil {
		return nil, err
	}
	return Build(path, taper, twist, in.Profile, steps, cfg)
}

// Batch is a set of parallel input lists, broadcast against each other the
// way the node host matches sockets: shorter lists repeat their last entry
// until every list reaches the longest length.
type Batch struct {
	Paths    [][]geom.Vec   `json:"paths"`
	Profiles []Profile      `json:"profiles"`
	Tapers   [][]geom.Vec   `json:"tapers,omitempty"`
	Twists   [][]TwistPoint `json:"twists,omitempty"`
	Steps    []int          `json:"steps,omitempty"`
	Config   Config         `json:"config"`
}

// MatchLongRepeat pads a list to n entries by repeating its final entry.
// An empty list stays empty; callers treat missing entries as zero values.
func MatchLongRepeat[T any](s []T, n int) []T {
	if len(s) == 0 || len(s) >= n {
		return s
	}
	out := make([]T, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = s[len(s)-1]
	}
	return out
}

// Result is the outcome of one batch item. Failed items carry their error
// while sibling items still produce meshes.
type Result struct {
	Mesh *mesh.Mesh
	Err  error
}

// BuildBatch runs one sweep per matched input tuple.
func BuildBatch(b Batch) []Result {
	n := len(b.Paths)
	for _, l := range []int{len(b.Profiles), len(b.Tapers), len(b.Twists), len(b.Steps)} {
		if l > n {
			n = l
		}
	}
	paths := MatchLongRepeat(b.Paths, n)
	profiles := MatchLongRepeat(b.Profiles, n)
	tapers := MatchLongRepeat(b.Tapers, n)
	twists := MatchLongRepeat(b.Twists, n)
	steps := MatchLongRepeat(b.Steps, n)

	results := make([]Result, n)
	for i := 0; i < n; i++ {
		in := Input{Config: b.Config}
		if i < len(paths) {
			in.Path = paths[i]
		}
		if i < len(profiles) {
			in.Profile = profiles[i]
		}
		if i < len(tapers) {
			in.Taper = tapers[i]
		}
		if i < len(twists) {
			in.Twist = twists[i]
		}
		if i < len(steps) {
			in.Steps = steps[i]
		}
		m, err := BuildInput(in)
		results[i] = Result{Mesh: m, Err: err}
	}
	return results
}
