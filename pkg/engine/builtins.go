package engine

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/loftcad/loft/pkg/field"
	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/graph"
	"github.com/loftcad/loft/pkg/mesh"
	"github.com/loftcad/loft/pkg/sweep"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms loft Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: bevel-curve -> bevel_curve
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a geom.Vec.
type sexpVec3 struct {
	vec geom.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpField wraps a field.VectorField so field constructors can compose
// and `displace` can consume the result.
type sexpField struct {
	f    field.VectorField
	desc string
}

func (f *sexpField) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(field %s)", f.desc)
}
func (f *sexpField) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// name returns the optional leading name string and the remaining
// positional arguments. Most node builtins accept an optional name as
// their first positional argument.
func (a kwArgs) name() (string, []zygo.Sexp) {
	if len(a.positional) > 0 {
		if str, ok := a.positional[0].(*zygo.SexpStr); ok && !strings.HasPrefix(str.S, kwPrefix) {
			return str.S, a.positional[1:]
		}
	}
	return "", a.positional
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a geom.Axis.
func toAxis(s zygo.Sexp) (geom.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return geom.AxisX, nil
	case "y":
		return geom.AxisY, nil
	case "z":
		return geom.AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toInterpMode converts a keyword to a geom.InterpMode.
func toInterpMode(s zygo.Sexp) (geom.InterpMode, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected mode keyword (:linear, :cubic): %w", err)
	}
	switch name {
	case "linear":
		return geom.InterpLinear, nil
	case "cubic", "spline":
		return geom.InterpCubic, nil
	}
	return 0, fmt.Errorf("invalid mode %q, expected linear or cubic", name)
}

// toMetric converts a keyword to a geom.Metric.
func toMetric(s zygo.Sexp) (geom.Metric, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected metric keyword: %w", err)
	}
	switch name {
	case "euclidean", "distance":
		return geom.MetricEuclidean, nil
	case "manhattan":
		return geom.MetricManhattan, nil
	case "points":
		return geom.MetricPoints, nil
	case "chebyshev":
		return geom.MetricChebyshev, nil
	case "x":
		return geom.MetricX, nil
	case "y":
		return geom.MetricY, nil
	case "z":
		return geom.MetricZ, nil
	}
	return 0, fmt.Errorf("invalid metric %q", name)
}

// toAlgorithm converts a keyword to a geom.RotationAlgorithm.
func toAlgorithm(s zygo.Sexp) (geom.RotationAlgorithm, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected algorithm keyword: %w", err)
	}
	switch name {
	case "householder":
		return geom.AlgHouseholder, nil
	case "track":
		return geom.AlgTrack, nil
	case "diff", "rotation-diff":
		return geom.AlgRotationDiff, nil
	}
	return 0, fmt.Errorf("invalid algorithm %q, expected householder, track, or diff", name)
}

// toTaperMetric converts a keyword to a sweep.TaperMetric.
func toTaperMetric(s zygo.Sexp) (sweep.TaperMetric, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected taper-metric keyword: %w", err)
	}
	switch name {
	case "axis", "along-axis":
		return sweep.TaperAlongOrientAxis, nil
	case "curve", "same-as-curve":
		return sweep.TaperSameAsCurve, nil
	}
	return 0, fmt.Errorf("invalid taper-metric %q, expected axis or curve", name)
}

// toSplitKind converts a keyword to a mesh.SplitKind.
func toSplitKind(s zygo.Sexp) (mesh.SplitKind, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected split kind keyword (:verts, :edges): %w", err)
	}
	switch name {
	case "verts", "vertices", "points":
		return mesh.SplitVerts, nil
	case "edges":
		return mesh.SplitEdges, nil
	}
	return 0, fmt.Errorf("invalid split kind %q, expected verts or edges", name)
}

// toDomain converts a keyword to a mesh.Domain.
func toDomain(s zygo.Sexp) (mesh.Domain, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected domain keyword (:point, :edge, :face): %w", err)
	}
	switch name {
	case "point", "points", "verts":
		return mesh.DomainPoint, nil
	case "edge", "edges":
		return mesh.DomainEdge, nil
	case "face", "faces":
		return mesh.DomainFace, nil
	}
	return 0, fmt.Errorf("invalid domain %q, expected point, edge, or face", name)
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a geom.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toField extracts a field.VectorField from a sexpField.
func toField(s zygo.Sexp) (field.VectorField, error) {
	if f, ok := s.(*sexpField); ok {
		return f.f, nil
	}
	return nil, fmt.Errorf("expected field, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toVecList converts a list of vec3 expressions to a point slice.
func toVecList(s zygo.Sexp) ([]geom.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	vecs := make([]geom.Vec, len(items))
	for i, item := range items {
		v, err := toVec3(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		vecs[i] = v
	}
	return vecs, nil
}

// toFloatList converts a list of numbers to a float slice.
func toFloatList(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	fs := make([]float64, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		fs[i] = f
	}
	return fs, nil
}

// toBoolList converts a list of bools or 0/1 integers to a mask slice.
func toBoolList(s zygo.Sexp) ([]bool, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case *zygo.SexpBool:
			mask[i] = v.Val
		case *zygo.SexpInt:
			mask[i] = v.Val != 0
		default:
			return nil, fmt.Errorf("entry %d: expected bool or 0/1, got %T", i, item)
		}
	}
	return mask, nil
}

// toEdgeList converts a list of 2-element lists to an edge index slice.
func toEdgeList(s zygo.Sexp) ([][2]int, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	edges := make([][2]int, len(items))
	for i, item := range items {
		pair, err := sexpListToSlice(item)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("edge %d: expected 2 indices, got %d", i, len(pair))
		}
		a, err := toInt(pair[0])
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		b, err := toInt(pair[1])
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		edges[i] = [2]int{a, b}
	}
	return edges, nil
}

// toFaceList converts a list of index lists to a face slice.
func toFaceList(s zygo.Sexp) ([][]int, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	faces := make([][]int, len(items))
	for i, item := range items {
		corners, err := sexpListToSlice(item)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		face := make([]int, len(corners))
		for j, c := range corners {
			idx, err := toInt(c)
			if err != nil {
				return nil, fmt.Errorf("face %d corner %d: %w", i, j, err)
			}
			face[j] = idx
		}
		faces[i] = face
	}
	return faces, nil
}

// toTwistPoints converts a list of (t angle) pairs to twist control points.
func toTwistPoints(s zygo.Sexp) ([]sweep.TwistPoint, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	pts := make([]sweep.TwistPoint, len(items))
	for i, item := range items {
		pair, err := sexpListToSlice(item)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("point %d: expected (t angle), got %d elements", i, len(pair))
		}
		t, err := toFloat64(pair[0])
		if err != nil {
			return nil, fmt.Errorf("point %d: t: %w", i, err)
		}
		a, err := toFloat64(pair[1])
		if err != nil {
			return nil, fmt.Errorf("point %d: angle: %w", i, err)
		}
		pts[i] = sweep.TwistPoint{T: t, Angle: a}
	}
	return pts, nil
}

// ---------------------------------------------------------------------------
// Sweep configuration keywords
// ---------------------------------------------------------------------------

// applyConfigKw applies the sweep configuration keywords shared by
// bevel-curve and defaults onto cfg. Unknown keywords are left for the
// caller; only recognized config keys are consumed here.
func applyConfigKw(cmd string, pa kwArgs, cfg *sweep.Config) error {
	if v, ok := pa.kw["algorithm"]; ok {
		a, err := toAlgorithm(v)
		if err != nil {
			return fmt.Errorf("%s: algorithm: %w", cmd, err)
		}
		cfg.Algorithm = a
	}
	if v, ok := pa.kw["orient"]; ok {
		a, err := toAxis(v)
		if err != nil {
			return fmt.Errorf("%s: orient: %w", cmd, err)
		}
		cfg.OrientAxis = a
	}
	if v, ok := pa.kw["up"]; ok {
		a, err := toAxis(v)
		if err != nil {
			return fmt.Errorf("%s: up: %w", cmd, err)
		}
		cfg.UpAxis = a
	}
	if v, ok := pa.kw["taper-mode"]; ok {
		m, err := toInterpMode(v)
		if err != nil {
			return fmt.Errorf("%s: taper-mode: %w", cmd, err)
		}
		cfg.TaperMode = m
	}
	if v, ok := pa.kw["twist-mode"]; ok {
		m, err := toInterpMode(v)
		if err != nil {
			return fmt.Errorf("%s: twist-mode: %w", cmd, err)
		}
		cfg.TwistMode = m
	}
	if v, ok := pa.kw["taper-metric"]; ok {
		m, err := toTaperMetric(v)
		if err != nil {
			return fmt.Errorf("%s: taper-metric: %w", cmd, err)
		}
		cfg.TaperMetric = m
	}
	boolKeys := []struct {
		key string
		dst *bool
	}{
		{"flip-curve", &cfg.FlipPath},
		{"flip-taper", &cfg.FlipTaper},
		{"flip-twist", &cfg.FlipTwist},
		{"cap-start", &cfg.CapStart},
		{"cap-end", &cfg.CapEnd},
		{"separate-scale", &cfg.SeparateScale},
	}
	for _, bk := range boolKeys {
		if v, ok := pa.kw[bk.key]; ok {
			b, err := toBool(v)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", cmd, bk.key, err)
			}
			*bk.dst = b
		}
	}
	if v, ok := pa.kw["tangent-step"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return fmt.Errorf("%s: tangent-step: %w", cmd, err)
		}
		cfg.TangentStep = f
	}
	return nil
}

// ngonVerts generates a regular polygon in the XY plane, first vertex on
// the +X axis, counterclockwise.
func ngonVerts(sides int, radius float64) []geom.Vec {
	verts := make([]geom.Vec, sides)
	for i := 0; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / float64(sides)
		verts[i] = geom.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return verts
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all loft DSL builtins into a zygomys environment.
// The builtins populate the builder's design graph during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *graph.GraphBuilder) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: geom.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (curve "rail" :points (list (vec3 0 0 0) (vec3 0 0 10))
	//               :mode :cubic :metric :euclidean :cyclic false)
	// -----------------------------------------------------------------------
	env.AddFunction("curve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nodeName, _ := pa.name()

		mode := geom.InterpCubic
		metric := geom.MetricEuclidean
		cyclic := false
		var points []geom.Vec

		if v, ok := pa.kw["points"]; ok {
			vecs, err := toVecList(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("curve: points: %w", err)
			}
			points = vecs
		}
		if v, ok := pa.kw["mode"]; ok {
			m, err := toInterpMode(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("curve: mode: %w", err)
			}
			mode = m
		}
		if v, ok := pa.kw["metric"]; ok {
			m, err := toMetric(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("curve: metric: %w", err)
			}
			metric = m
		}
		if v, ok := pa.kw["cyclic"]; ok {
			c, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("curve: cyclic: %w", err)
			}
			cyclic = c
		}

		id := b.Curve(nodeName, points, mode, metric, cyclic)
		return &sexpNodeRef{id: id, name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (profile "square" :points (list ...) :edges (list (list 0 1) ...)
	//                   :faces (list (list 0 1 2 3)))
	// (profile "hex" :sides 6 :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("profile", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nodeName, _ := pa.name()

		var p sweep.Profile

		if v, ok := pa.kw["sides"]; ok {
			sides, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("profile: sides: %w", err)
			}
			if sides < 3 {
				return zygo.SexpNull, fmt.Errorf("profile: sides must be at least 3, got %d", sides)
			}
			radius := 1.0
			if rv, ok := pa.kw["radius"]; ok {
				r, err := toFloat64(rv)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("profile: radius: %w", err)
				}
				radius = r
			}
			p = sweep.RingProfile(ngonVerts(sides, radius))
		}

		if v, ok := pa.kw["points"]; ok {
			vecs, err := toVecList(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("profile: points: %w", err)
			}
			p.Verts = vecs
		}
		if v, ok := pa.kw["edges"]; ok {
			edges, err := toEdgeList(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("profile: edges: %w", err)
			}
			p.Edges = edges
		}
		if v, ok := pa.kw["faces"]; ok {
			faces, err := toFaceList(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("profile: faces: %w", err)
			}
			p.Faces = faces
		}

		id := b.Profile(nodeName, p)
		return &sexpNodeRef{id: id, name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (taper "fade" :points (list (vec3 1 0 0) (vec3 0.2 0 10)) :mode :linear)
	// -----------------------------------------------------------------------
	env.AddFunction("taper", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nodeName, _ := pa.name()

		mode := geom.InterpCubic
		var points []geom.Vec

		if v, ok := pa.kw["points"]; ok {
			vecs, err := toVecList(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("taper: points: %w", err)
			}
			points = vecs
		}
		if v, ok := pa.kw["mode"]; ok {
			m, err := toInterpMode(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("taper: mode: %w", err)
			}
			mode = m
		}

		id := b.Taper(nodeName, points, mode)
		return &sexpNodeRef{id: id, name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (twist "quarter" :points (list (list 0 0) (list 1 1.5708)))
	// (twist "wave" :angles (list 0 0.5 0 -0.5 0) :mode :linear)
	// -----------------------------------------------------------------------
	env.AddFunction("twist", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nodeName, _ := pa.name()

		mode := geom.InterpLinear
		var points []sweep.TwistPoint

		if v, ok := pa.kw["points"]; ok {
			pts, err := toTwistPoints(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("twist: points: %w", err)
			}
			points = pts
		}
		if v, ok := pa.kw["angles"]; ok {
			angles, err := toFloatList(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("twist: angles: %w", err)
			}
			points = sweep.TwistFromAngles(angles)
		}
		if v, ok := pa.kw["mode"]; ok {
			m, err := toInterpMode(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("twist: mode: %w", err)
			}
			mode = m
		}

		id := b.Twist(nodeName, points, mode)
		return &sexpNodeRef{id: id, name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (bevel-curve "tube" :curve rail :profile square
	//              :taper fade :twist quarter :steps 20
	//              :algorithm :householder :orient :z :up :x
	//              :cap-start true :cap-end true)
	//
	// Note: registered as "bevel_curve" because zygomys does not support
	// hyphens in identifiers. The preprocessor converts bevel-curve to
	// bevel_curve in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("bevel_curve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nodeName, _ := pa.name()

		data := graph.BevelData{Config: b.Graph().Defaults.Config}

		if v, ok := pa.kw["curve"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bevel-curve: curve: %w", err)
			}
			data.Curve = id
		}
		if v, ok := pa.kw["profile"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bevel-curve: profile: %w", err)
			}
			data.Profile = id
		}
		if v, ok := pa.kw["taper"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bevel-curve: taper: %w", err)
			}
			data.Taper = id
		}
		if v, ok := pa.kw["twist"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bevel-curve: twist: %w", err)
			}
			data.Twist = id
		}
		if v, ok := pa.kw["steps"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bevel-curve: steps: %w", err)
			}
			data.Steps = n
		}
		if err := applyConfigKw("bevel-curve", pa, &data.Config); err != nil {
			return zygo.SexpNull, err
		}

		id := b.Bevel(nodeName, data)
		return &sexpNodeRef{id: id, name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (split "panels" :target tube :kind :edges
	//        :mask (list 1 0 1 0) :domain :edge :islands true)
	// -----------------------------------------------------------------------
	env.AddFunction("split", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nodeName, _ := pa.name()

		kind := mesh.SplitEdges
		domain := mesh.DomainEdge
		islands := false
		var target graph.NodeID
		var mask []bool

		if v, ok := pa.kw["target"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("split: target: %w", err)
			}
			target = id
		}
		if v, ok := pa.kw["kind"]; ok {
			k, err := toSplitKind(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("split: kind: %w", err)
			}
			kind = k
			if k == mesh.SplitVerts {
				domain = mesh.DomainPoint
			}
		}
		if v, ok := pa.kw["mask"]; ok {
			m, err := toBoolList(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("split: mask: %w", err)
			}
			mask = m
		}
		if v, ok := pa.kw["domain"]; ok {
			d, err := toDomain(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("split: domain: %w", err)
			}
			domain = d
		}
		if v, ok := pa.kw["islands"]; ok {
			iv, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("split: islands: %w", err)
			}
			islands = iv
		}

		id := b.Split(nodeName, target, kind, mask, domain, islands)
		return &sexpNodeRef{id: id, name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (displace "wavy" :target tube :field (radial-field ...) :strength 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("displace", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		nodeName, _ := pa.name()

		strength := 1.0
		var target graph.NodeID
		var f field.VectorField

		if v, ok := pa.kw["target"]; ok {
			id, err := toNodeRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("displace: target: %w", err)
			}
			target = id
		}
		if v, ok := pa.kw["field"]; ok {
			fv, err := toField(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("displace: field: %w", err)
			}
			f = fv
		}
		if v, ok := pa.kw["strength"]; ok {
			s, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("displace: strength: %w", err)
			}
			strength = s
		}

		id := b.Displace(nodeName, target, f, strength)
		return &sexpNodeRef{id: id, name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (constant-field (vec3 0 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("constant_field", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		v := geom.Vec{}
		if len(pa.positional) > 0 {
			vec, err := toVec3(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("constant-field: %w", err)
			}
			v = vec
		}
		if kv, ok := pa.kw["v"]; ok {
			vec, err := toVec3(kv)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("constant-field: v: %w", err)
			}
			v = vec
		}

		return &sexpField{f: field.Constant{V: v}, desc: "constant"}, nil
	})

	// -----------------------------------------------------------------------
	// (radial-field :center (vec3 0 0 5) :falloff 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("radial_field", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		r := field.Radial{}
		if v, ok := pa.kw["center"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("radial-field: center: %w", err)
			}
			r.Center = vec
		}
		if v, ok := pa.kw["falloff"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("radial-field: falloff: %w", err)
			}
			r.Falloff = f
		}

		return &sexpField{f: r, desc: "radial"}, nil
	})

	// -----------------------------------------------------------------------
	// (attract-field :points (list (vec3 0 0 0) (vec3 0 0 10)))
	// -----------------------------------------------------------------------
	env.AddFunction("attract_field", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var targets []geom.Vec
		if v, ok := pa.kw["points"]; ok {
			vecs, err := toVecList(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("attract-field: points: %w", err)
			}
			targets = vecs
		}
		if len(targets) == 0 {
			return zygo.SexpNull, fmt.Errorf("attract-field requires at least one point")
		}

		return &sexpField{f: field.AttractorToPoints(targets), desc: "attract"}, nil
	})

	// -----------------------------------------------------------------------
	// (sum-field f1 f2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("sum_field", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var fields []field.VectorField
		for i, arg := range args {
			f, err := toField(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sum-field: argument %d: %w", i, err)
			}
			fields = append(fields, f)
		}

		return &sexpField{f: field.Sum{Fields: fields}, desc: "sum"}, nil
	})

	// -----------------------------------------------------------------------
	// (scale-field f :factor 2)
	// -----------------------------------------------------------------------
	env.AddFunction("scale_field", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("scale-field requires a field as first argument")
		}
		f, err := toField(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale-field: %w", err)
		}

		factor := 1.0
		if v, ok := pa.kw["factor"]; ok {
			fv, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scale-field: factor: %w", err)
			}
			factor = fv
		}

		return &sexpField{f: field.Scaled{Field: f, Factor: factor}, desc: "scaled"}, nil
	})

	// -----------------------------------------------------------------------
	// (defaults :steps 24 :algorithm :track :orient :z :up :y)
	// -----------------------------------------------------------------------
	env.AddFunction("defaults", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		d := b.Graph().Defaults
		if v, ok := pa.kw["steps"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: steps: %w", err)
			}
			d.Steps = n
		}
		if err := applyConfigKw("defaults", pa, &d.Config); err != nil {
			return zygo.SexpNull, err
		}
		b.Defaults(d)

		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (group "stems" tube1 tube2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("group requires a name argument")
		}

		groupName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: name: %w", err)
		}

		var children []graph.NodeID
		for i := 1; i < len(args); i++ {
			ref, ok := args[i].(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("group: child %d: expected node reference, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			children = append(children, ref.id)
		}

		id := b.Group(groupName, children...)
		return &sexpNodeRef{id: id, name: groupName}, nil
	})

	// -----------------------------------------------------------------------
	// (output "main" tube panels ...)
	// -----------------------------------------------------------------------
	env.AddFunction("output", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("output requires a name argument")
		}

		outName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("output: name: %w", err)
		}

		var children []graph.NodeID
		for i := 1; i < len(args); i++ {
			ref, ok := args[i].(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("output: child %d: expected node reference, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			children = append(children, ref.id)
		}

		id := b.Output(outName, children...)
		return &sexpNodeRef{id: id, name: outName}, nil
	})
}
