// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strconv"
	"strings"
)

// NewTypeTable returns the HLSL to GLSL type name map.
// Every call returns a fresh map owned by the caller.
//
// HLSL matrices are named rows x columns and GLSL matrices columns x rows,
// so non-square matrix names are swapped.
func NewTypeTable() map[string]string {
	return map[string]string{
		"void":   "void",
		"bool":   "bool",
		"int":    "int",
		"uint":   "uint",
		"dword":  "uint",
		"float":  "float",
		"half":   "float",
		"double": "double",

		"min16float": "float",
		"min10float": "float",
		"min16int":   "int",
		"min12int":   "int",
		"min16uint":  "uint",

		"bool2": "bvec2", "bool3": "bvec3", "bool4": "bvec4",
		"int2": "ivec2", "int3": "ivec3", "int4": "ivec4",
		"uint2": "uvec2", "uint3": "uvec3", "uint4": "uvec4",
		"float2": "vec2", "float3": "vec3", "float4": "vec4",
		"half2": "vec2", "half3": "vec3", "half4": "vec4",
		"double2": "dvec2", "double3": "dvec3", "double4": "dvec4",
		"min16float2": "vec2", "min16float3": "vec3", "min16float4": "vec4",

		"float2x2": "mat2", "float3x3": "mat3", "float4x4": "mat4",
		"float2x3": "mat3x2", "float2x4": "mat4x2",
		"float3x2": "mat2x3", "float3x4": "mat4x3",
		"float4x2": "mat2x4", "float4x3": "mat3x4",
		"half2x2": "mat2", "half3x3": "mat3", "half4x4": "mat4",
		"double2x2": "dmat2", "double3x3": "dmat3", "double4x4": "dmat4",
	}
}

// NewFunctionTable returns the HLSL to GLSL intrinsic name map.
// Every call returns a fresh map owned by the caller.
func NewFunctionTable() map[string]string {
	return map[string]string{
		"lerp":         "mix",
		"frac":         "fract",
		"rsqrt":        "inversesqrt",
		"atan2":        "atan",
		"fmod":         "mod",
		"ddx":          "dFdx",
		"ddy":          "dFdy",
		"ddx_coarse":   "dFdxCoarse",
		"ddy_coarse":   "dFdyCoarse",
		"ddx_fine":     "dFdxFine",
		"ddy_fine":     "dFdyFine",
		"mad":          "fma",
		"countbits":    "bitCount",
		"firstbithigh": "findMSB",
		"firstbitlow":  "findLSB",
		"reversebits":  "bitfieldReverse",
		"asuint":       "floatBitsToUint",
		"asint":        "floatBitsToInt",
		"asfloat":      "uintBitsToFloat",

		"GroupMemoryBarrierWithGroupSync": "barrier",
	}
}

// interpolationQualifier maps HLSL interpolation modifiers to GLSL.
func interpolationQualifier(modifier string) (string, bool) {
	switch modifier {
	case "nointerpolation":
		return "flat", true
	case "linear":
		return "smooth", true
	case "noperspective":
		return "noperspective", true
	case "centroid":
		return "centroid", true
	case "sample":
		return "sample", true
	default:
		return "", false
	}
}

// matrixQualifier maps HLSL matrix packing modifiers to a GLSL layout qualifier.
func matrixQualifier(modifier string) (string, bool) {
	switch modifier {
	case "row_major":
		return "layout(row_major)", true
	case "column_major":
		return "layout(column_major)", true
	default:
		return "", false
	}
}

// textureDimension returns the GLSL sampler dimension suffix for an HLSL
// texture type, ignoring any <T> template argument.
func textureDimension(hlslType string) (string, bool) {
	base, _, _ := strings.Cut(hlslType, "<")
	switch base {
	case "Texture1D":
		return "1D", true
	case "Texture2D":
		return "2D", true
	case "Texture2DArray":
		return "2DArray", true
	case "Texture3D":
		return "3D", true
	case "TextureCube":
		return "Cube", true
	case "TextureCubeArray":
		return "CubeArray", true
	default:
		return "", false
	}
}

// samplerType returns the GLSL type for an HLSL sampler state type.
func samplerType(hlslType string) (string, bool) {
	switch hlslType {
	case "SamplerState", "sampler":
		return "sampler", true
	case "SamplerComparisonState":
		return "samplerShadow", true
	default:
		return "", false
	}
}

// sampleFunction picks the GLSL texture function for an HLSL sample method
// called with argc arguments (the sampler included).
func sampleFunction(method string, argc int) (string, bool) {
	switch method {
	case "Sample":
		switch argc {
		case 2:
			return "texture", true
		case 3:
			return "textureOffset", true
		}
	case "SampleBias":
		switch argc {
		case 3:
			return "texture", true
		case 4:
			return "textureOffset", true
		}
	case "SampleLevel":
		switch argc {
		case 3:
			return "textureLod", true
		case 4:
			return "textureLodOffset", true
		}
	case "SampleGrad":
		switch argc {
		case 4:
			return "textureGrad", true
		case 5:
			return "textureGradOffset", true
		}
	}
	return "", false
}

func isSampleMethod(name string) bool {
	switch name {
	case "Sample", "SampleBias", "SampleLevel", "SampleGrad":
		return true
	default:
		return false
	}
}

// inputPrimitive maps an HLSL geometry input primitive to its GLSL layout name.
func inputPrimitive(hlslPrimitive string) (string, bool) {
	switch hlslPrimitive {
	case "point":
		return "points", true
	case "line":
		return "lines", true
	case "lineadj":
		return "lines_adjacency", true
	case "triangle":
		return "triangles", true
	case "triangleadj":
		return "triangles_adjacency", true
	default:
		return "", false
	}
}

// streamPrimitive splits an HLSL stream type such as TriangleStream<GS_OUT>
// into the GLSL output primitive and the element struct name.
func streamPrimitive(hlslType string) (primitive, element string, ok bool) {
	base, rest, found := strings.Cut(hlslType, "<")
	if !found || !strings.HasSuffix(rest, ">") {
		return "", "", false
	}
	element = strings.TrimSuffix(rest, ">")
	switch base {
	case "PointStream":
		return "points", element, true
	case "LineStream":
		return "line_strip", element, true
	case "TriangleStream":
		return "triangle_strip", element, true
	default:
		return "", "", false
	}
}

// builtinInput maps an input semantic to the GLSL built-in that replaces it.
func builtinInput(stage Stage, semantic string) (string, bool) {
	sem := strings.ToUpper(semantic)
	switch stage {
	case StageVertex:
		switch sem {
		case "SV_VERTEXID":
			return "gl_VertexIndex", true
		case "SV_INSTANCEID":
			return "gl_InstanceIndex", true
		}
	case StageFragment:
		switch sem {
		case "SV_POSITION":
			return "gl_FragCoord", true
		case "SV_ISFRONTFACE":
			return "gl_FrontFacing", true
		case "SV_PRIMITIVEID":
			return "gl_PrimitiveID", true
		case "SV_SAMPLEINDEX":
			return "gl_SampleID", true
		}
	case StageGeometry:
		switch sem {
		case "SV_PRIMITIVEID":
			return "gl_PrimitiveIDIn", true
		case "SV_GSINSTANCEID":
			return "gl_InvocationID", true
		}
	}
	return "", false
}

// targetIndex reports whether semantic is SV_Target[n] and returns n.
func targetIndex(semantic string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.ToUpper(semantic), "SV_TARGET")
	if !ok {
		return 0, false
	}
	if rest == "" {
		return 0, true
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func isPositionSemantic(semantic string) bool {
	return strings.EqualFold(semantic, "SV_Position")
}

func isDepthSemantic(semantic string) bool {
	return strings.EqualFold(semantic, "SV_Depth")
}

// isIntBuiltin reports whether a GLSL built-in input is a signed int.
func isIntBuiltin(name string) bool {
	switch name {
	case "gl_VertexIndex", "gl_InstanceIndex", "gl_PrimitiveID", "gl_PrimitiveIDIn",
		"gl_SampleID", "gl_InvocationID":
		return true
	default:
		return false
	}
}

// isIntegerType reports whether a converted GLSL type needs flat interpolation.
func isIntegerType(glslType string) bool {
	switch glslType {
	case "int", "uint", "ivec2", "ivec3", "ivec4", "uvec2", "uvec3", "uvec4":
		return true
	default:
		return false
	}
}
