package graph

import (
	"github.com/loftcad/loft/pkg/field"
	"github.com/loftcad/loft/pkg/geom"
	"github.com/loftcad/loft/pkg/mesh"
	"github.com/loftcad/loft/pkg/sweep"
)

// ---------------------------------------------------------------------------
// Curves
// ---------------------------------------------------------------------------

// CurveData holds the control points and interpolation options of a path
// curve. Created by the (curve ...) Lisp form.
type CurveData struct {
	Points []geom.Vec      `json:"points"`
	Mode   geom.InterpMode `json:"mode"`
	Metric geom.Metric     `json:"metric"`
	Cyclic bool            `json:"cyclic"`
}

func (CurveData) nodeData() {}

// ProfileData holds the cross-section ring swept along a curve.
// Created by the (profile ...) Lisp form.
type ProfileData struct {
	Profile sweep.Profile `json:"profile"`
}

func (ProfileData) nodeData() {}

// TaperData holds the scale modulation control points.
type TaperData struct {
	Points []geom.Vec      `json:"points"`
	Mode   geom.InterpMode `json:"mode"`
}

func (TaperData) nodeData() {}

// TwistData holds the rotation modulation control points.
type TwistData struct {
	Points []sweep.TwistPoint `json:"points"`
	Mode   geom.InterpMode    `json:"mode"`
}

func (TwistData) nodeData() {}

// ---------------------------------------------------------------------------
// Bevel
// ---------------------------------------------------------------------------

// BevelData wires a curve, a profile, and optional modulation curves into
// one sweep operation. Taper and Twist may be zero, meaning identity
// modulation.
type BevelData struct {
	Curve   NodeID       `json:"curve"`
	Profile NodeID       `json:"profile"`
	Taper   NodeID       `json:"taper,omitempty"`
	Twist   NodeID       `json:"twist,omitempty"`
	Steps   int          `json:"steps"` // 0 = use graph default
	Config  sweep.Config `json:"config"`
}

func (BevelData) nodeData() {}

// ---------------------------------------------------------------------------
// Modifiers
// ---------------------------------------------------------------------------

// SplitData tears a child mesh apart at selected elements. With Islands
// set the result is separated into connected components after splitting.
type SplitData struct {
	Target     NodeID         `json:"target"`
	Kind       mesh.SplitKind `json:"kind"`
	Mask       []bool         `json:"mask,omitempty"`
	MaskDomain mesh.Domain    `json:"mask_domain"`
	Islands    bool           `json:"islands"`
}

func (SplitData) nodeData() {}

// DisplaceData moves the vertices of a child mesh along a vector field.
// The field is built by the evaluation layer and does not serialize.
type DisplaceData struct {
	Target   NodeID            `json:"target"`
	Field    field.VectorField `json:"-"`
	Strength float64           `json:"strength"`
}

func (DisplaceData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping of renderable children.
// Created by the (output ...) Lisp form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
