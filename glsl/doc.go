// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl converts HLSL shader source into GLSL 4.60 for Vulkan.
//
// The converter is a single forward pass over the token stream produced by
// package hlsl. Declarations must precede their use, as in the HLSL shaders
// it is written for.
//
// # Usage
//
//	out, info, err := glsl.Compile(glsl.StageFragment, source, glsl.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(out)
//
// # Declarations
//
// Top-level constructs are classified once and dispatched to a parser:
//
//   - cbuffer blocks become std140 uniform blocks in [Options.UniformSet]
//   - structs are registered and emitted without semantics
//   - textures and samplers become separate images and samplers in
//     [Options.TextureSet] and [Options.SamplerSet]
//   - static variables keep their constness; brace initializers become
//     constructors
//   - functions are converted with their bodies rewritten
//
// # Entry Point
//
// The function named [Options.EntryPoint] becomes main. Parameters with
// semantics become layout(location = N) inputs or built-ins
// (SV_VertexID is gl_VertexIndex, SV_Position in a fragment shader is
// gl_FragCoord). Struct parameters are flattened into one in_<field> input
// per field. Returned structs are written through out_<field> globals, the
// SV_Position field also feeding gl_Position.
//
// Geometry shaders take their input primitive from the first parameter and
// their output primitive from the stream parameter; each Append becomes an
// EmitVertex and RestartStrip becomes EndPrimitive.
//
// # Texture Sampling
//
// HLSL separates textures and samplers at the call site. Calls are rewritten
// to GLSL combined sampler constructors:
//
//	Tex.Sample(Samp, uv)  ->  texture(sampler2D(Tex,Samp),uv)
//
// # Output Layout
//
// The output starts with #version 460, the rewritten #define lines, mul()
// shims, helper functions the bodies need (saturate, clip) and, for geometry
// shaders, the primitive layout. Declarations follow in source order.
package glsl
