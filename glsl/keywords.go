// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

// glslKeywords contains GLSL reserved words and built-in names that are
// valid identifiers in HLSL. HLSL keywords and type names the converter maps
// itself (float4, half, static, ...) are not listed.
// Based on the GLSL 4.60 specification.
var glslKeywords = map[string]struct{}{
	// Qualifiers
	"attribute": {}, "varying": {}, "layout": {}, "flat": {}, "smooth": {}, "sample": {},
	"invariant": {}, "patch": {}, "subroutine": {}, "coherent": {},
	"restrict": {}, "readonly": {}, "writeonly": {}, "buffer": {}, "shared": {},
	"highp": {}, "mediump": {}, "lowp": {}, "precision": {},

	// Reserved for future use
	"common": {}, "partition": {}, "active": {}, "asm": {}, "class": {},
	"union": {}, "enum": {}, "typedef": {}, "template": {}, "this": {},
	"resource": {}, "goto": {}, "inline": {}, "noinline": {}, "public": {},
	"external": {}, "long": {}, "short": {}, "fixed": {}, "unsigned": {},
	"superp": {}, "input": {}, "output": {}, "filter": {}, "sizeof": {},
	"cast": {}, "namespace": {}, "using": {}, "atomic_uint": {},
	"hvec2": {}, "hvec3": {}, "hvec4": {},
	"fvec2": {}, "fvec3": {}, "fvec4": {},
	"sampler3DRect": {},

	// Types with no HLSL spelling
	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},
	"dvec2": {}, "dvec3": {}, "dvec4": {},
	"mat2": {}, "mat3": {}, "mat4": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},
	"sampler1D": {}, "sampler2D": {}, "sampler3D": {}, "samplerCube": {},
	"sampler2DArray": {}, "samplerCubeArray": {}, "samplerShadow": {},
	"texture1D": {}, "texture2D": {}, "texture3D": {}, "textureCube": {},
	"texture2DArray": {}, "textureCubeArray": {},

	// Built-in functions the converter emits
	"texture": {}, "textureLod": {}, "textureOffset": {}, "textureLodOffset": {},
	"textureGrad": {}, "textureGradOffset": {}, "texelFetch": {},
	"mix": {}, "fract": {}, "inversesqrt": {}, "dFdx": {}, "dFdy": {},
	"EmitVertex": {}, "EndPrimitive": {},

	// Entry point
	"main": {},
}

// isKeyword reports whether name is reserved in GLSL.
func isKeyword(name string) bool {
	_, ok := glslKeywords[name]
	return ok
}

// escapeKeyword returns a safe GLSL identifier for name.
// Reserved words and names using the gl_ prefix get a leading underscore.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	if isKeyword(name) {
		return "_" + name
	}
	// Also escape names starting with "gl_" (reserved prefix)
	if len(name) >= 3 && name[:3] == "gl_" {
		return "_" + name
	}
	return name
}
