// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Stage selects the shader stage a translation unit is converted for.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
	StageGeometry
)

// String returns the short stage name used for file extensions.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vert"
	case StageFragment:
		return "frag"
	case StageGeometry:
		return "geom"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// ParseStage parses a stage name. Short names (vert, frag, geom), long names
// (vertex, fragment, geometry) and HLSL profile prefixes (vs, ps, gs) are
// accepted in any case.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(name) {
	case "vert", "vertex", "vs":
		return StageVertex, nil
	case "frag", "fragment", "pixel", "ps", "fs":
		return StageFragment, nil
	case "geom", "geometry", "gs":
		return StageGeometry, nil
	default:
		return 0, fmt.Errorf("unknown shader stage %q", name)
	}
}

// Descriptor set defaults for the three resource classes.
const (
	DefaultUniformSet = 0
	DefaultTextureSet = 1
	DefaultSamplerSet = 2
)

// Options configures GLSL generation.
type Options struct {
	// EntryPoint is the name of the function lowered to the stage's main.
	// Defaults to "main" if empty.
	EntryPoint string

	// UniformSet is the descriptor set of constant buffers.
	UniformSet int

	// TextureSet is the descriptor set of textures.
	TextureSet int

	// SamplerSet is the descriptor set of samplers.
	SamplerSet int

	// Logger receives conversion diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the options matching the engine's descriptor layout.
func DefaultOptions() Options {
	return Options{
		EntryPoint: "main",
		UniformSet: DefaultUniformSet,
		TextureSet: DefaultTextureSet,
		SamplerSet: DefaultSamplerSet,
	}
}

// Binding describes one resource declaration found in the source.
type Binding struct {
	Name string
	// Type is the emitted GLSL type (texture2D, sampler, the block name).
	Type string
	Set  int
	// Binding is -1 when the source carries no register.
	Binding int
	// Count is the array length, 0 for scalars.
	Count int
}

// InterfaceVariable describes one stage input or output.
type InterfaceVariable struct {
	Name     string
	Type     string
	Semantic string
	// Location is -1 for built-ins.
	Location int
	// BuiltIn names the GLSL built-in variable the semantic maps to, if any.
	BuiltIn string
}

// TranslationInfo contains reflection data gathered during translation.
type TranslationInfo struct {
	// Stage is the stage the unit was converted for.
	Stage Stage

	// Structs lists registered struct names in declaration order.
	Structs []string

	UniformBuffers []Binding
	Textures       []Binding
	Samplers       []Binding

	// Inputs and Outputs describe the entry point interface.
	Inputs  []InterfaceVariable
	Outputs []InterfaceVariable

	// Geometry is set for geometry stage translations.
	Geometry *GeometryShaderInfo

	// Warnings lists non-fatal issues such as renamed identifiers.
	Warnings []string
}

// Compile converts one include-expanded HLSL translation unit into GLSL for
// the given stage. It returns the GLSL source, reflection data, or the first
// error encountered; no partial output is produced on error.
func Compile(stage Stage, source string, options Options) (string, TranslationInfo, error) {
	// Apply defaults for zero values
	if options.EntryPoint == "" {
		options.EntryPoint = "main"
	}
	if options.Logger == nil {
		options.Logger = newNopLogger()
	}

	ctx := NewConversionContext(stage, &options)

	out, err := ctx.translate(source)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	return out, ctx.info, nil
}

// nopHandler is a slog.Handler that silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }
