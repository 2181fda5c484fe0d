// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/hlslc/hlsl"
)

// resourceDecl is a parsed "Type[<T>] name[N] [: register(xN)];" line.
type resourceDecl struct {
	name       string
	array      string
	count      int
	binding    int
	hasBinding bool
}

func parseResource(cur *hlsl.Cursor, class byte) (resourceDecl, error) {
	var d resourceDecl
	cur.Advance(1) // type

	// "Texture2D <float4> Tex" spells the template argument as its own token.
	if tok, ok := cur.Peek(0); ok && strings.HasPrefix(tok, "<") {
		cur.Advance(1)
	}

	name, err := cur.Ident("resource name")
	if err != nil {
		return d, err
	}
	d.name = name

	if cur.PeekIs(0, "[") {
		inner, err := cur.Balanced("[", "]")
		if err != nil {
			return d, err
		}
		d.array = "[" + hlsl.Join(inner) + "]"
		if len(inner) == 1 {
			d.count, _ = strconv.Atoi(inner[0])
		}
	}

	d.binding, d.hasBinding, err = parseRegister(cur, class)
	if err != nil {
		return d, err
	}
	if err := cur.Expect(";"); err != nil {
		return d, err
	}
	if !d.hasBinding {
		d.binding = -1
	}
	return d, nil
}

// layoutQualifier returns "layout(set = S[,binding = N])".
func layoutQualifier(set int, d resourceDecl) string {
	if d.hasBinding {
		return fmt.Sprintf("layout(set = %d,binding = %d)", set, d.binding)
	}
	return fmt.Sprintf("layout(set = %d)", set)
}

// parseTexture converts a texture declaration into a separate GLSL image
// and registers its dimension for the sample rewriter.
func (c *ConversionContext) parseTexture(cur *hlsl.Cursor) (string, error) {
	typ, _ := cur.Peek(0)
	dim, ok := textureDimension(typ)
	if !ok {
		return "", cur.Errorf(hlsl.ErrUnsupportedConstruct, "unknown texture type %s", typ)
	}
	d, err := parseResource(cur, 't')
	if err != nil {
		return "", err
	}

	c.registerTexture(d.name, dim)
	glslType := "texture" + dim
	c.info.Textures = append(c.info.Textures, Binding{
		Name: d.name, Type: glslType, Set: c.Options.TextureSet, Binding: d.binding, Count: d.count,
	})
	return fmt.Sprintf("%s uniform %s %s%s;", layoutQualifier(c.Options.TextureSet, d), glslType, c.ident(d.name), d.array), nil
}

// parseSampler converts a sampler state declaration into a GLSL sampler.
func (c *ConversionContext) parseSampler(cur *hlsl.Cursor) (string, error) {
	typ, _ := cur.Peek(0)
	glslType, ok := samplerType(typ)
	if !ok {
		return "", cur.Errorf(hlsl.ErrUnsupportedConstruct, "unknown sampler type %s", typ)
	}
	d, err := parseResource(cur, 's')
	if err != nil {
		return "", err
	}

	c.info.Samplers = append(c.info.Samplers, Binding{
		Name: d.name, Type: glslType, Set: c.Options.SamplerSet, Binding: d.binding, Count: d.count,
	})
	return fmt.Sprintf("%s uniform %s %s%s;", layoutQualifier(c.Options.SamplerSet, d), glslType, c.ident(d.name), d.array), nil
}
