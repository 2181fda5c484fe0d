// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/hlslc/hlsl"
)

// mulShims emulate HLSL mul() with GLSL operators.
var mulShims = []string{
	"vec4 mul(mat4 m, vec4 v) {\n\treturn m * v;\n}",
	"vec4 mul(vec4 v, mat4 m) {\n\treturn v * m;\n}",
	"vec3 mul(mat3 m, vec3 v) {\n\treturn m * v;\n}",
	"mat4 mul(mat4 a, mat4 b) {\n\treturn a * b;\n}",
}

// helperFunctions are emitted only when a body calls them.
var helperFunctions = map[string][]string{
	"saturate": {
		"float saturate(float x) {\n\treturn clamp(x, 0.0, 1.0);\n}",
		"vec2 saturate(vec2 x) {\n\treturn clamp(x, 0.0, 1.0);\n}",
		"vec3 saturate(vec3 x) {\n\treturn clamp(x, 0.0, 1.0);\n}",
		"vec4 saturate(vec4 x) {\n\treturn clamp(x, 0.0, 1.0);\n}",
	},
	"clip": {
		"void clip(float x) {\n\tif (x < 0.0) discard;\n}",
		"void clip(vec2 x) {\n\tif (any(lessThan(x, vec2(0.0)))) discard;\n}",
		"void clip(vec3 x) {\n\tif (any(lessThan(x, vec3(0.0)))) discard;\n}",
		"void clip(vec4 x) {\n\tif (any(lessThan(x, vec4(0.0)))) discard;\n}",
	},
}

// helperOrder fixes the emission order of helper functions.
var helperOrder = []string{"saturate", "clip"}

// translate converts a whole translation unit.
func (c *ConversionContext) translate(source string) (string, error) {
	src := hlsl.Split(source)
	c.directives = src.Directives

	sections, err := c.scan(hlsl.Tokenize(src.Code))
	if err != nil {
		return "", err
	}

	// Macros are rewritten after the scan so they see every texture.
	macros := make([]string, 0, len(src.Defines))
	for _, def := range src.Defines {
		m, err := c.parseMacro(def)
		if err != nil {
			return "", err
		}
		macros = append(macros, m)
	}

	if !c.entryFound {
		return "", hlsl.Errorf(hlsl.ErrUnsupportedConstruct, "entry point %s not found", c.Options.EntryPoint)
	}
	if c.Stage == StageGeometry {
		if err := c.checkGeometry(); err != nil {
			return "", err
		}
		g := c.Geometry
		c.info.Geometry = &g
	}

	return c.assemble(macros, sections), nil
}

// scan makes one forward pass over the tokens, dispatching every position
// to the parser its classification selects.
func (c *ConversionContext) scan(tokens []string) ([]string, error) {
	cur := hlsl.NewCursor(tokens)
	var sections []string

	for !cur.AtEnd() {
		kind := c.classify(&cur)

		fork := cur
		text, err := c.dispatch(kind, &fork)
		if err != nil {
			return nil, err
		}
		if fork.Pos() <= cur.Pos() {
			tok, _ := cur.Peek(0)
			return nil, cur.Errorf(hlsl.ErrUnsupportedConstruct, "%s at %q consumed no tokens", kind, tok)
		}
		cur = fork

		if text != "" {
			sections = append(sections, text)
		}
	}
	return sections, nil
}

func (c *ConversionContext) dispatch(kind declKind, cur *hlsl.Cursor) (string, error) {
	switch kind {
	case declCbuffer:
		return c.parseCBuffer(cur)
	case declStruct:
		return c.parseStruct(cur)
	case declTexture:
		return c.parseTexture(cur)
	case declSampler:
		return c.parseSampler(cur)
	case declStatic:
		return c.parseStatic(cur)
	case declAttribute:
		return "", c.parseAttribute(cur)
	case declDirective:
		tok, _ := cur.Next()
		idx, _ := hlsl.DirectiveIndex(tok)
		if idx >= len(c.directives) {
			return "", cur.Malformed("unknown directive placeholder %s", tok)
		}
		return c.directives[idx], nil
	case declFunction:
		return c.parseFunction(cur)
	default:
		cur.Advance(1)
		return "", nil
	}
}

// parseAttribute consumes a top-level [attribute]. Only maxvertexcount
// carries information the output needs.
func (c *ConversionContext) parseAttribute(cur *hlsl.Cursor) error {
	inner, err := cur.Balanced("[", "]")
	if err != nil {
		return err
	}
	if len(inner) == 0 || inner[0] != "maxvertexcount" {
		return nil
	}
	if len(inner) != 4 || inner[1] != "(" || inner[3] != ")" {
		return cur.Malformed("malformed maxvertexcount attribute")
	}
	n, err := strconv.Atoi(inner[2])
	if err != nil || n <= 0 {
		return cur.Malformed("invalid max vertex count %q", inner[2])
	}
	return c.Geometry.setMaxVertices(n)
}

func (c *ConversionContext) checkGeometry() error {
	g := &c.Geometry
	switch {
	case g.InputPrimitive == "":
		return hlsl.NewError(hlsl.ErrUnsupportedConstruct, "geometry shader has no input primitive")
	case g.OutputPrimitive == "":
		return hlsl.NewError(hlsl.ErrUnsupportedConstruct, "geometry shader has no output stream")
	case g.MaxVertices == 0:
		return hlsl.NewError(hlsl.ErrUnsupportedConstruct, "geometry shader has no maxvertexcount attribute")
	}
	return nil
}

// assemble writes the final translation unit.
func (c *ConversionContext) assemble(macros, sections []string) string {
	var sb strings.Builder
	sb.WriteString("#version 460\n\n")

	if len(macros) > 0 {
		for _, m := range macros {
			sb.WriteString(m)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	for _, shim := range mulShims {
		sb.WriteString(shim)
		sb.WriteString("\n\n")
	}
	for _, name := range helperOrder {
		if !c.helpers[name] {
			continue
		}
		for _, fn := range helperFunctions[name] {
			sb.WriteString(fn)
			sb.WriteString("\n\n")
		}
	}

	if c.Stage == StageGeometry {
		g := c.Geometry
		fmt.Fprintf(&sb, "layout(%s) in;\n", g.InputPrimitive)
		fmt.Fprintf(&sb, "layout(%s, max_vertices=%d) out;\n\n", g.OutputPrimitive, g.MaxVertices)
	}

	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(s)
	}
	sb.WriteByte('\n')
	return sb.String()
}
