// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/hlslc/hlsl"
)

// runParser runs parse on the tokens of src and returns its output and the
// number of tokens it consumed.
func runParser(t *testing.T, src string, parse func(*hlsl.Cursor) (string, error)) (string, int) {
	t.Helper()
	cur := hlsl.NewCursor(hlsl.Tokenize(src))
	out, err := parse(&cur)
	if err != nil {
		t.Fatalf("parse(%q) error = %v", src, err)
	}
	return out, cur.Pos()
}

// parserErrorKind runs parse on src and returns the kind of the expected error.
func parserErrorKind(t *testing.T, src string, parse func(*hlsl.Cursor) (string, error)) hlsl.ErrorKind {
	t.Helper()
	cur := hlsl.NewCursor(hlsl.Tokenize(src))
	_, err := parse(&cur)
	if err == nil {
		t.Fatalf("parse(%q) succeeded, want error", src)
	}
	kind, ok := hlsl.KindOf(err)
	if !ok {
		t.Fatalf("parse(%q) error %v is not an *hlsl.Error", src, err)
	}
	return kind
}

// =============================================================================
// cbuffer
// =============================================================================

func TestParseCBuffer(t *testing.T) {
	c := newTestContext(StageVertex)
	src := "cbuffer Foo : register(b3) { float4 x; }"
	out, n := runParser(t, src, c.parseCBuffer)

	want := "layout(std140,set = 0,binding = 3) uniform Foo {\n\tvec4 x;\n};"
	if out != want {
		t.Errorf("parseCBuffer() = %q, want %q", out, want)
	}
	if total := len(hlsl.Tokenize(src)); n != total {
		t.Errorf("consumed %d tokens, want %d", n, total)
	}
	if len(c.info.UniformBuffers) != 1 {
		t.Fatalf("UniformBuffers = %+v", c.info.UniformBuffers)
	}
	b := c.info.UniformBuffers[0]
	if b.Name != "Foo" || b.Set != 0 || b.Binding != 3 || b.Type != "uniform" {
		t.Errorf("binding = %+v", b)
	}
}

func TestParseCBuffer_Members(t *testing.T) {
	c := newTestContext(StageVertex)
	src := `cbuffer Lights : register(B1, space2)
{
    float4 colors[4];
    row_major float4x4 world;
    float2 pad : packoffset(c5);
    float3x4 bones;
};`
	out, n := runParser(t, src, c.parseCBuffer)

	mustContain(t, out, "layout(std140,set = 0,binding = 1) uniform Lights {")
	mustContain(t, out, "\tvec4[4] colors;\n")
	mustContain(t, out, "\tlayout(row_major) mat4 world;\n")
	mustContain(t, out, "\tvec2 pad;\n")
	mustContain(t, out, "\tmat4x3 bones;\n")
	mustNotContain(t, out, "packoffset")
	if !strings.HasSuffix(out, "\n};") {
		t.Errorf("block does not end with };\n%s", out)
	}
	// The trailing ";" is consumed with the block.
	if total := len(hlsl.Tokenize(src)); n != total {
		t.Errorf("consumed %d tokens, want %d", n, total)
	}
}

func TestParseCBuffer_NoRegister(t *testing.T) {
	c := newTestContext(StageFragment)
	src := "cbuffer Foo { float4 x; };"
	out, n := runParser(t, src, c.parseCBuffer)

	if out != "" {
		t.Errorf("parseCBuffer() = %q, want empty output", out)
	}
	if total := len(hlsl.Tokenize(src)); n != total {
		t.Errorf("consumed %d tokens, want %d", n, total)
	}
	if len(c.info.UniformBuffers) != 0 {
		t.Errorf("UniformBuffers = %+v, want none", c.info.UniformBuffers)
	}
}

func TestParseCBuffer_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated", "cbuffer Foo {"},
		{"unterminated with members", "cbuffer Foo : register(b0) { float4 x;"},
		{"missing brace", "cbuffer Foo : register(b0) float4 x;"},
		{"missing name", "cbuffer { float4 x; }"},
		{"wrong register class", "cbuffer Foo : register(t0) { float4 x; }"},
		{"bad register", "cbuffer Foo : register(bx) { float4 x; }"},
		{"incomplete member", "cbuffer Foo : register(b0) { float4; }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(StageVertex)
			if got := parserErrorKind(t, tt.src, c.parseCBuffer); got != hlsl.ErrMalformedDeclaration {
				t.Errorf("error kind = %v, want MalformedDeclaration", got)
			}
		})
	}
}

// =============================================================================
// struct
// =============================================================================

func TestParseStruct(t *testing.T) {
	c := newTestContext(StageVertex)
	src := `struct VS_OUT
{
    float4 pos : SV_Position;
    nointerpolation uint id : TEXCOORD1;
    float w[2] : BLENDWEIGHT;
};`
	out, _ := runParser(t, src, c.parseStruct)

	want := "struct VS_OUT {\n\tvec4 pos;\n\tuint id;\n\tfloat w[2];\n};"
	if out != want {
		t.Errorf("parseStruct() =\n%s\nwant\n%s", out, want)
	}

	def, ok := c.lookupStruct("VS_OUT")
	if !ok {
		t.Fatal("VS_OUT not registered")
	}
	if !def.HasSemantics() {
		t.Error("HasSemantics() = false")
	}
	f, ok := def.Field("id")
	if !ok {
		t.Fatal("field id missing")
	}
	if f.Semantic != "TEXCOORD1" || f.Type != "uint" || len(f.Modifiers) != 1 || f.Modifiers[0] != "nointerpolation" {
		t.Errorf("field id = %+v", f)
	}
	if w, _ := def.Field("w"); w.ArraySuffix != "[2]" {
		t.Errorf("field w suffix = %q", w.ArraySuffix)
	}
	if !c.isDataType("VS_OUT") {
		t.Error("registered struct is not a data type")
	}
}

func TestParseStruct_NoSemantics(t *testing.T) {
	c := newTestContext(StageFragment)
	out, _ := runParser(t, "struct Light { float3 dir; float3 color; };", c.parseStruct)

	mustContain(t, out, "struct Light {")
	mustContain(t, out, "\tvec3 dir;")
	def, _ := c.lookupStruct("Light")
	if def.HasSemantics() {
		t.Error("HasSemantics() = true for a plain struct")
	}
}

func TestParseStruct_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated", "struct S { float4 a;"},
		{"missing semicolon", "struct S { float4 a; }"},
		{"missing brace", "struct S float4 a; };"},
		{"missing semantic", "struct S { float4 a : ; };"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(StageVertex)
			if got := parserErrorKind(t, tt.src, c.parseStruct); got != hlsl.ErrMalformedDeclaration {
				t.Errorf("error kind = %v, want MalformedDeclaration", got)
			}
		})
	}
}

// =============================================================================
// static
// =============================================================================

func TestParseStatic_TypeTable(t *testing.T) {
	for hlslType, glslType := range NewTypeTable() {
		t.Run(hlslType, func(t *testing.T) {
			c := newTestContext(StageFragment)
			out, _ := runParser(t, "static const "+hlslType+" x;", c.parseStatic)

			fields := strings.Fields(out)
			if len(fields) != 3 || fields[0] != "const" || fields[1] != glslType || fields[2] != "x;" {
				t.Errorf("parseStatic() = %q, want const %s x;", out, glslType)
			}
		})
	}
}

func TestParseStatic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "scalar",
			src:  "static float scale = 2.0;",
			want: "float scale = 2.0;",
		},
		{
			name: "const without static",
			src:  "const float3 up = float3(0, 1, 0);",
			want: "const vec3 up = vec3(0,1,0);",
		},
		{
			name: "array initializer",
			src:  "static const float2 offsets[2] = { float2(1, 0), float2(0, 1) };",
			want: "const vec2 offsets[2] = vec2[2](vec2(1,0),vec2(0,1));",
		},
		{
			name: "uninitialized",
			src:  "static float4 accum;",
			want: "vec4 accum;",
		},
		{
			name: "intrinsic in initializer",
			src:  "static const float k = lerp(0.0, 1.0, 0.5);",
			want: "const float k = mix(0.0,1.0,0.5);",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(StageFragment)
			out, _ := runParser(t, tt.src, c.parseStatic)
			if out != tt.want {
				t.Errorf("parseStatic() = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestParseStatic_Function(t *testing.T) {
	c := newTestContext(StageFragment)
	out, n := runParser(t, "static float4 helper(float4 c) { return c; }", c.parseStatic)

	if out != "" {
		t.Errorf("parseStatic() = %q, want empty output", out)
	}
	if n != 1 {
		t.Errorf("consumed %d tokens, want only the static keyword", n)
	}
}

func TestCompile_StaticFunction(t *testing.T) {
	src := `
static float4 boost(float4 c) { return c * 2; }
float4 main(float4 c : COLOR0) : SV_Target { return boost(c); }
`
	out := compile(t, StageFragment, src)
	mustContain(t, out, "vec4 boost(vec4 c){")
	mustContain(t, out, "\treturn c * 2;")
	mustNotContain(t, out, "static")
}

// =============================================================================
// Textures and samplers
// =============================================================================

func TestParseTexture(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  string
		count int
	}{
		{
			name: "2D",
			src:  "Texture2D Tex : register(t2);",
			want: "layout(set = 1,binding = 2) uniform texture2D Tex;",
		},
		{
			name:  "array with template",
			src:   "Texture2DArray<float4> Layers[4] : register(T3);",
			want:  "layout(set = 1,binding = 3) uniform texture2DArray Layers[4];",
			count: 4,
		},
		{
			name: "cube without register",
			src:  "TextureCube Sky;",
			want: "layout(set = 1) uniform textureCube Sky;",
		},
		{
			name: "3D with space",
			src:  "Texture3D Volume : register(t7, space1);",
			want: "layout(set = 1,binding = 7) uniform texture3D Volume;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(StageFragment)
			out, _ := runParser(t, tt.src, c.parseTexture)
			if out != tt.want {
				t.Errorf("parseTexture() = %q, want %q", out, tt.want)
			}
			if len(c.info.Textures) != 1 || c.info.Textures[0].Count != tt.count {
				t.Errorf("Textures = %+v", c.info.Textures)
			}
		})
	}
}

func TestParseTexture_RegistersDimension(t *testing.T) {
	c := newTestContext(StageFragment)
	runParser(t, "Texture2DArray Shadows : register(t0);", c.parseTexture)

	dim, ok := c.textureDim("Shadows")
	if !ok || dim != "2DArray" {
		t.Errorf("textureDim(Shadows) = %q, %v", dim, ok)
	}
	if b := c.info.Textures[0]; b.Type != "texture2DArray" || b.Binding != 0 {
		t.Errorf("binding = %+v", b)
	}
}

func TestParseSampler(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"SamplerState Samp : register(s1);", "layout(set = 2,binding = 1) uniform sampler Samp;"},
		{"SamplerComparisonState Shadow : register(s0);", "layout(set = 2,binding = 0) uniform samplerShadow Shadow;"},
		{"sampler Linear;", "layout(set = 2) uniform sampler Linear;"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			c := newTestContext(StageFragment)
			out, _ := runParser(t, tt.src, c.parseSampler)
			if out != tt.want {
				t.Errorf("parseSampler() = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestParseResource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		sampler bool
	}{
		{"texture missing semicolon", "Texture2D Tex : register(t0)", false},
		{"texture in sampler register", "Texture2D Tex : register(s2);", false},
		{"texture without name", "Texture2D : register(t0);", false},
		{"sampler in texture register", "SamplerState Samp : register(t0);", true},
		{"sampler with annotation", "SamplerState Samp : Foo;", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(StageFragment)
			parse := c.parseTexture
			if tt.sampler {
				parse = c.parseSampler
			}
			if got := parserErrorKind(t, tt.src, parse); got != hlsl.ErrMalformedDeclaration {
				t.Errorf("error kind = %v, want MalformedDeclaration", got)
			}
		})
	}
}

// =============================================================================
// Classification
// =============================================================================

func TestClassify(t *testing.T) {
	c := newTestContext(StageVertex)
	if err := c.registerStruct(&StructDefinition{Name: "VS_OUT"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		src  string
		want declKind
	}{
		{"cbuffer Foo { }", declCbuffer},
		{"struct S { };", declStruct},
		{"static float x;", declStatic},
		{"const float x = 1;", declStatic},
		{"[maxvertexcount(3)]", declAttribute},
		{"#d0", declDirective},
		{"Texture2D Tex;", declTexture},
		{"Texture2D<float4> Tex;", declTexture},
		{"SamplerState Samp;", declSampler},
		{"SamplerComparisonState Cmp;", declSampler},
		{"float4 main(float4 p : POSITION)", declFunction},
		{"void helper()", declFunction},
		{"VS_OUT main()", declFunction},
		{"float4 x;", declSkip},
		{"Unknown main()", declSkip},
		{";", declSkip},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			cur := hlsl.NewCursor(hlsl.Tokenize(tt.src))
			if got := c.classify(&cur); got != tt.want {
				t.Errorf("classify(%q) = %v, want %v", tt.src, got, tt.want)
			}
			if cur.Pos() != 0 {
				t.Errorf("classify moved the cursor to %d", cur.Pos())
			}
		})
	}
}

func TestDeclKind_String(t *testing.T) {
	if got := declFunction.String(); got != "FunctionCandidate" {
		t.Errorf("declFunction.String() = %q", got)
	}
	if got := declKind(99).String(); got != "Unknown" {
		t.Errorf("declKind(99).String() = %q", got)
	}
}
