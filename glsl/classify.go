// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "github.com/gogpu/hlslc/hlsl"

// declKind classifies the construct starting at a top-level token.
type declKind uint8

const (
	declSkip declKind = iota
	declCbuffer
	declStruct
	declTexture
	declSampler
	declStatic
	declAttribute
	declDirective
	declFunction
)

func (k declKind) String() string {
	switch k {
	case declSkip:
		return "Skip"
	case declCbuffer:
		return "Cbuffer"
	case declStruct:
		return "Struct"
	case declTexture:
		return "Texture"
	case declSampler:
		return "Sampler"
	case declStatic:
		return "Static"
	case declAttribute:
		return "Attribute"
	case declDirective:
		return "Directive"
	case declFunction:
		return "FunctionCandidate"
	default:
		return "Unknown"
	}
}

// classify decides once what the token at the cursor introduces.
func (c *ConversionContext) classify(cur *hlsl.Cursor) declKind {
	tok, ok := cur.Peek(0)
	if !ok {
		return declSkip
	}

	switch tok {
	case "cbuffer":
		return declCbuffer
	case "struct":
		return declStruct
	case "static", "const":
		return declStatic
	case "[":
		return declAttribute
	}
	if _, ok := hlsl.DirectiveIndex(tok); ok {
		return declDirective
	}
	if _, ok := textureDimension(tok); ok {
		return declTexture
	}
	if _, ok := samplerType(tok); ok {
		return declSampler
	}
	if (tok == "void" || c.isDataType(tok)) && cur.PeekIs(2, "(") {
		return declFunction
	}
	return declSkip
}
