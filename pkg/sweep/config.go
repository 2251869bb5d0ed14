// Package sweep implements the curve-to-mesh sweep engine: it walks a path
// spline, orients a cross-section profile at each station, applies taper
// and twist modulation, and stitches the transformed rings into a tube
// mesh with optional caps or cyclic closure.
package sweep

import (
	"fmt"

	"github.com/loftcad/loft/pkg/geom"
)

const (
	// DefaultSteps is the station count used when a node leaves it unset.
	DefaultSteps = 10
	// MinSteps is the smallest station count configuration accepts. The
	// builder itself only needs 2 stations but anything below 4 produces
	// a tube too coarse to be useful.
	MinSteps = 4
)

// TaperMetric selects how taper control points are parametrized.
type TaperMetric int

const (
	// TaperAlongOrientAxis parametrizes the taper curve by the control
	// points' coordinate along the orientation axis.
	TaperAlongOrientAxis TaperMetric = iota
	// TaperSameAsCurve reuses the path curve's distance metric.
	TaperSameAsCurve
)

func (m TaperMetric) String() string {
	switch m {
	case TaperAlongOrientAxis:
		return "along-axis"
	case TaperSameAsCurve:
		return "same-as-curve"
	default:
		return fmt.Sprintf("tapermetric(%d)", int(m))
	}
}

// Config carries every option the sweep engine recognizes. The zero value
// is not valid; start from DefaultConfig.
type Config struct {
	Algorithm  geom.RotationAlgorithm `json:"algorithm"`
	OrientAxis geom.Axis              `json:"orientAxis"`
	UpAxis     geom.Axis              `json:"upAxis"`

	PathMode  geom.InterpMode `json:"pathMode"`
	TaperMode geom.InterpMode `json:"taperMode"`
	TwistMode geom.InterpMode `json:"twistMode"`

	Metric      geom.Metric `json:"metric"`
	TaperMetric TaperMetric `json:"taperMetric"`

	Cyclic    bool `json:"cyclic"`
	FlipPath  bool `json:"flipPath"`
	FlipTaper bool `json:"flipTaper"`
	FlipTwist bool `json:"flipTwist"`

	CapStart bool `json:"capStart"`
	CapEnd   bool `json:"capEnd"`

	SeparateScale bool `json:"separateScale"`

	// TangentStep is the finite-difference step for tangent estimation.
	TangentStep float64 `json:"tangentStep"`
}

// DefaultConfig mirrors the defaults of the original node: Householder
// orientation along Z with X up, cubic path and taper, linear twist.
func DefaultConfig() Config {
	return Config{
		Algorithm:   geom.AlgHouseholder,
		OrientAxis:  geom.AxisZ,
		UpAxis:      geom.AxisX,
		PathMode:    geom.InterpCubic,
		TaperMode:   geom.InterpCubic,
		TwistMode:   geom.InterpLinear,
		Metric:      geom.MetricEuclidean,
		TaperMetric: TaperAlongOrientAxis,
		TangentStep: geom.DefaultTangentStep,
	}
}

// Validate rejects configurations the engine cannot execute.
func (c Config) Validate() error {
	switch c.Algorithm {
	case geom.AlgHouseholder, geom.AlgTrack, geom.AlgRotationDiff:
	default:
		return fmt.Errorf("%w: unknown rotation algorithm %v", geom.ErrInvalidConfig, c.Algorithm)
	}
	for _, a := range []geom.Axis{c.OrientAxis, c.UpAxis} {
		switch a {
		case geom.AxisX, geom.AxisY, geom.AxisZ:
		default:
			return fmt.Errorf("%w: unknown axis %v", geom.ErrInvalidConfig, a)
		}
	}
	if c.Algorithm == geom.AlgTrack && c.OrientAxis == c.UpAxis {
		return fmt.Errorf("%w: track algorithm needs distinct orient and up axes, both are %v",
			geom.ErrInvalidConfig, c.OrientAxis)
	}
	for _, m := range []geom.InterpMode{c.PathMode, c.TaperMode, c.TwistMode} {
		switch m {
		case geom.InterpLinear, geom.InterpCubic:
		default:
			return fmt.Errorf("%w: unknown interpolation mode %v", geom.ErrInvalidConfig, m)
		}
	}
	switch c.Metric {
	case geom.MetricEuclidean, geom.MetricManhattan, geom.MetricPoints, geom.MetricChebyshev,
		geom.MetricX, geom.MetricY, geom.MetricZ:
	default:
		return fmt.Errorf("%w: unknown metric %v", geom.ErrInvalidConfig, c.Metric)
	}
	switch c.TaperMetric {
	case TaperAlongOrientAxis, TaperSameAsCurve:
	default:
		return fmt.Errorf("%w: unknown taper metric %v", geom.ErrInvalidConfig, c.TaperMetric)
	}
	if c.TangentStep <= 0 {
		return fmt.Errorf("%w: tangent step must be positive, got %g", geom.ErrInvalidConfig, c.TangentStep)
	}
	return nil
}
