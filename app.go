package main

import (
	"context"
	"log"

	"github.com/loftcad/loft/pkg/engine"
	"github.com/loftcad/loft/pkg/evaluate"
	"github.com/loftcad/loft/pkg/graph"
	"github.com/loftcad/loft/pkg/render"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// appVersion is stamped at build time via -ldflags.
var appVersion = "dev"

// Version returns the application version string for the frontend
// about panel.
func (a *App) Version() string {
	return appVersion
}

// NewApp creates a new App with an evaluation engine.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a design graph.
	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: err.Error(),
		})
		return result
	}

	// Step 2: Convert eval errors to the frontend format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Validate the graph. Warnings are forwarded; errors stop
	// evaluation before any geometry is built.
	vr := graph.ValidateAll(g)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Message: warningMessage(g, w),
		})
	}
	if len(vr.Errors) > 0 {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Message: e.Message,
			})
		}
		return result
	}

	// Step 4: Walk the graph and build the output meshes.
	outputs, err := evaluate.Evaluate(g)
	if err != nil {
		log.Printf("Evaluate graph error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: "evaluation failed: " + err.Error(),
		})
		return result
	}

	// Step 5: Flatten to render meshes in the frontend format.
	for i, out := range outputs {
		rm := render.FromMesh(out.Mesh, out.Name)
		color := colorPalette[i%len(colorPalette)]
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: rm.Vertices,
			Normals:  rm.Normals,
			Indices:  rm.Indices,
			PartName: rm.PartName,
			Color:    color,
		})
	}

	return result
}

// warningMessage prefixes a validation warning with the node name when
// the node can be resolved.
func warningMessage(g *graph.DesignGraph, w graph.ValidationWarning) string {
	if n := g.Get(w.NodeID); n != nil && n.Name != "" {
		return n.Name + ": " + w.Message
	}
	return w.Message
}
