// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"log/slog"

	"github.com/gogpu/hlslc/hlsl"
)

// StructField is one member of a registered struct.
type StructField struct {
	// Modifiers holds interpolation and packing modifiers in source order.
	Modifiers []string
	// Type is the HLSL type name.
	Type string
	Name string
	// ArraySuffix is the bracketed array size ("[4]"), or empty.
	ArraySuffix string
	// Semantic is the HLSL semantic without the colon, or empty.
	Semantic string
}

// StructDefinition is a struct registered by the struct parser.
// Definitions are immutable once registered.
type StructDefinition struct {
	Name   string
	Fields []StructField
}

// HasSemantics reports whether the struct describes a stage interface,
// which is the case when its first field carries a semantic.
func (d *StructDefinition) HasSemantics() bool {
	return len(d.Fields) > 0 && d.Fields[0].Semantic != ""
}

// Field returns the field with the given name.
func (d *StructDefinition) Field(name string) (*StructField, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// GeometryShaderInfo describes the primitive layout of a geometry shader.
// Every field is written at most once per conversion.
type GeometryShaderInfo struct {
	// InputPrimitive is the GLSL input layout (points, triangles, ...).
	InputPrimitive string
	// OutputPrimitive is the GLSL output layout (points, line_strip, triangle_strip).
	OutputPrimitive string
	MaxVertices     int
	// StreamName is the name of the stream parameter of the entry point.
	StreamName string
	// OutputStruct is the element struct of the output stream.
	OutputStruct string
}

func (g *GeometryShaderInfo) setInputPrimitive(p string) error {
	return setOnce(&g.InputPrimitive, p, "input primitive")
}

func (g *GeometryShaderInfo) setOutputPrimitive(p string) error {
	return setOnce(&g.OutputPrimitive, p, "output primitive")
}

func (g *GeometryShaderInfo) setStream(name, element string) error {
	if err := setOnce(&g.StreamName, name, "output stream"); err != nil {
		return err
	}
	return setOnce(&g.OutputStruct, element, "output struct")
}

func (g *GeometryShaderInfo) setMaxVertices(n int) error {
	if g.MaxVertices != 0 && g.MaxVertices != n {
		return hlsl.Errorf(hlsl.ErrUnsupportedConstruct,
			"geometry max vertex count set twice (%d, %d)", g.MaxVertices, n)
	}
	g.MaxVertices = n
	return nil
}

func setOnce(field *string, value, what string) error {
	if *field != "" && *field != value {
		return hlsl.Errorf(hlsl.ErrUnsupportedConstruct,
			"geometry %s set twice (%s, %s)", what, *field, value)
	}
	*field = value
	return nil
}

// ConversionContext holds all state of one conversion: the name tables,
// the symbols registered so far and the collected reflection data.
// A context is created by Compile and never shared between calls.
type ConversionContext struct {
	Stage   Stage
	Options *Options

	// Types maps HLSL type names to GLSL type names.
	Types map[string]string
	// Functions maps HLSL intrinsic names to GLSL function names.
	Functions map[string]string

	// Geometry is filled while scanning a geometry shader.
	Geometry GeometryShaderInfo

	structs  []*StructDefinition
	byName   map[string]*StructDefinition
	textures map[string]string // texture name -> dimension suffix

	// Texture parameters of the function being converted, empty between functions.
	localTextures map[string]string

	directives []string
	helpers    map[string]bool // helper functions referenced by bodies
	escaped    map[string]bool // reserved identifiers already reported
	entryFound bool

	info TranslationInfo
	log  *slog.Logger
}

// NewConversionContext creates a context with fresh tables.
func NewConversionContext(stage Stage, options *Options) *ConversionContext {
	log := options.Logger
	if log == nil {
		log = newNopLogger()
	}
	return &ConversionContext{
		Stage:         stage,
		Options:       options,
		Types:         NewTypeTable(),
		Functions:     NewFunctionTable(),
		byName:        make(map[string]*StructDefinition),
		textures:      make(map[string]string),
		localTextures: make(map[string]string),
		helpers:       make(map[string]bool),
		escaped:       make(map[string]bool),
		info:          TranslationInfo{Stage: stage},
		log:           log.With("stage", stage.String()),
	}
}

// registerStruct adds a struct definition. Names are unique per conversion.
func (c *ConversionContext) registerStruct(def *StructDefinition) error {
	if _, dup := c.byName[def.Name]; dup {
		return hlsl.Errorf(hlsl.ErrMalformedDeclaration, "struct %s redefined", def.Name)
	}
	c.structs = append(c.structs, def)
	c.byName[def.Name] = def
	c.info.Structs = append(c.info.Structs, def.Name)
	c.log.Debug("struct registered", "name", def.Name, "fields", len(def.Fields))
	return nil
}

// lookupStruct returns a registered struct by name.
func (c *ConversionContext) lookupStruct(name string) (*StructDefinition, bool) {
	def, ok := c.byName[name]
	return def, ok
}

// registerTexture records the dimension suffix of a global texture.
func (c *ConversionContext) registerTexture(name, dim string) {
	c.textures[name] = dim
	c.log.Debug("texture registered", "name", name, "dim", dim)
}

// textureDim returns the dimension suffix of a texture visible in the
// current function, parameters shadowing globals.
func (c *ConversionContext) textureDim(name string) (string, bool) {
	if dim, ok := c.localTextures[name]; ok {
		return dim, true
	}
	dim, ok := c.textures[name]
	return dim, ok
}

// isDataType reports whether name can start a declaration: a table type
// or a registered struct.
func (c *ConversionContext) isDataType(name string) bool {
	if _, ok := c.Types[name]; ok {
		return true
	}
	_, ok := c.byName[name]
	return ok
}

// convertType maps an HLSL type to GLSL. Struct names and unknown names are
// returned escaped but otherwise unchanged.
func (c *ConversionContext) convertType(name string) string {
	if t, ok := c.Types[name]; ok {
		return t
	}
	if dim, ok := textureDimension(name); ok {
		return "texture" + dim
	}
	if t, ok := samplerType(name); ok {
		return t
	}
	return c.ident(name)
}

// ident returns name, renamed if it collides with a GLSL reserved word.
func (c *ConversionContext) ident(name string) string {
	escaped := escapeKeyword(name)
	if escaped != name && !c.escaped[name] {
		c.escaped[name] = true
		c.info.Warnings = append(c.info.Warnings,
			"identifier "+name+" renamed to "+escaped+" (reserved in GLSL)")
		c.log.Warn("reserved identifier renamed", "name", name, "glsl", escaped)
	}
	return escaped
}

func (c *ConversionContext) useHelper(name string) {
	c.helpers[name] = true
}
