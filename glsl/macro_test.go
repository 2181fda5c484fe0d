// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/hlslc/hlsl"
)

func TestParseMacro(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"#define SCALE 2.0", "#define SCALE 2.0"},
		{"#define EMPTY", "#define EMPTY"},
		{"#define VEC float4", "#define VEC vec4"},
		{"#define LERP(a, b, t) lerp(a, b, t)", "#define LERP(a,b,t) mix(a,b,t)"},
		{"#define SAMPLE_ALBEDO(uv) Tex.Sample(Samp, uv)", "#define SAMPLE_ALBEDO(uv) texture(sampler2D(Tex,Samp),uv)"},
		{"#define F (x)", "#define F (x)"},
		{"#  define   SPACED   1", "#define SPACED 1"},
		{"#define OUT(input) input*2", "#define OUT(_input) _input*2"},
		{"#define PASS(uv) Foo.Sample(Samp, uv)", "#define PASS(uv) Foo.Sample(Samp,uv)"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c := newTestContext(StageFragment)
			c.registerTexture("Tex", "2D")
			got, err := c.parseMacro(tt.line)
			if err != nil {
				t.Fatalf("parseMacro() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseMacro(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseMacro_Errors(t *testing.T) {
	for _, line := range []string{"#define", "#define (x) x", "#define F(a, b x"} {
		t.Run(line, func(t *testing.T) {
			c := newTestContext(StageFragment)
			_, err := c.parseMacro(line)
			if kind, _ := hlsl.KindOf(err); err == nil || kind != hlsl.ErrMalformedDeclaration {
				t.Errorf("parseMacro(%q) error = %v, want MalformedDeclaration", line, err)
			}
		})
	}
}

func TestCompile_Macros(t *testing.T) {
	src := `
#define TINT float3(1, 0.5, 0.25)
#define SAMPLE(uv) Tex.Sample(Samp, uv)
Texture2D Tex : register(t0);
SamplerState Samp : register(s0);
float4 main(float2 uv : TEXCOORD0) : SV_Target { return SAMPLE(uv) * float4(TINT, 1); }
`
	out := compile(t, StageFragment, src)

	mustContain(t, out, "#version 460\n\n#define TINT vec3(1,0.5,0.25)\n#define SAMPLE(uv) texture(sampler2D(Tex,Samp),uv)\n\n")
	mustContain(t, out, "fragColor=SAMPLE(uv)* vec4(TINT,1);")

	// Macros precede the mul shims.
	if strings.Index(out, "#define") > strings.Index(out, "vec4 mul(") {
		t.Errorf("macros must come before the shims:\n%s", out)
	}
}

func TestCompile_MultiLineMacro(t *testing.T) {
	src := "#define MAD(a, b, c) \\\n    mad(a, b, c)\n" +
		"float4 main(float4 c : COLOR0) : SV_Target { return MAD(c, c, c); }"
	out := compile(t, StageFragment, src)
	mustContain(t, out, "#define MAD(a,b,c) fma(a,b,c)\n")
}

func TestCompile_MacroAfterTextureParameter(t *testing.T) {
	src := `
#define FETCH(uv) t.Sample(Samp, uv)
SamplerState Samp : register(s0);
float4 main(float2 uv : TEXCOORD0) : SV_Target { return uv.xyxy; }
float4 fetch(Texture2D t, float2 uv) { return t.Sample(Samp, uv); }
`
	out := compile(t, StageFragment, src)

	// t is a texture inside fetch only.
	mustContain(t, out, "#define FETCH(uv) t.Sample(Samp,uv)\n")
	mustContain(t, out, "\treturn texture(sampler2D(t,Samp),uv);\n")
}
