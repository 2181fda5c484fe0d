// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/hlslc/hlsl"
)

func TestToPieces(t *testing.T) {
	ps := toPieces([]string{"c=lerp", "(", "#d0", "x"})

	want := []piece{
		{text: "c"},
		{text: "=", glued: true},
		{text: "lerp", glued: true},
		{text: "("},
		{text: "#d0"},
		{text: "x"},
	}
	if len(ps) != len(want) {
		t.Fatalf("toPieces() = %+v", ps)
	}
	for i := range want {
		if ps[i] != want[i] {
			t.Errorf("piece %d = %+v, want %+v", i, ps[i], want[i])
		}
	}
}

func TestRenderPieces_MatchesJoin(t *testing.T) {
	inputs := []string{
		"c=lerp(a, b, t);",
		"float4 x = float4(1.0, 2.0, 3.0, 4.0);",
		"if (a.x < 0) { discard; }",
		"acc += c * (float)i;",
		"x = -y;",
	}
	for _, in := range inputs {
		tokens := hlsl.Tokenize(in)
		if got, want := renderPieces(toPieces(tokens)), hlsl.Join(tokens); got != want {
			t.Errorf("renderPieces(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLayoutBody(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "statements",
			src:  "a = 1; b = 2;",
			want: []string{"\ta = 1;", "\tb = 2;"},
		},
		{
			name: "if else",
			src:  "if (a) { b = 1; } else { c = 2; }",
			want: []string{"\tif(a){", "\t\tb = 1;", "\t} else {", "\t\tc = 2;", "\t}"},
		},
		{
			name: "for header stays on one line",
			src:  "for (int i = 0; i < 4; i++) { x += i; }",
			want: []string{"\tfor(int i = 0;i < 4;i++){", "\t\tx += i;", "\t}"},
		},
		{
			name: "do while",
			src:  "do { i++; } while (i < 4);",
			want: []string{"\tdo {", "\t\ti++;", "\t} while(i < 4);"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := layoutBody(toPieces(hlsl.Tokenize(tt.src)), 1)
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("layoutBody() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

func TestLayoutBody_Directives(t *testing.T) {
	ps := []piece{
		{text: "a"}, {text: "="}, {text: "1"}, {text: ";"},
		{text: "#ifdef X", directive: true},
		{text: "b"}, {text: "="}, {text: "2"}, {text: ";"},
		{text: "#endif", directive: true},
	}
	got := layoutBody(ps, 2)
	want := []string{"\t\ta = 1;", "#ifdef X", "\t\tb = 2;", "#endif"}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("layoutBody() = %q, want %q", got, want)
	}
}

func TestLayoutBody_FixedPoint(t *testing.T) {
	src := "float4 c = Tex.Sample(s, uv) * 2.0f; if (c.a < 0.1) { c.rgb = lerp(c.rgb, 1, 0.5); } return c;"
	for _, line := range layoutBody(toPieces(hlsl.Tokenize(src)), 1) {
		body := strings.TrimLeft(line, "\t")
		if got := hlsl.Normalize(body); got != body {
			t.Errorf("line %q renormalizes to %q", body, got)
		}
	}
}

func TestOperandEnd(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x * 2", "x"},
		{"v.xyz + 1", "v.xyz"},
		{"a[i].b(c) - 1", "a[i].b(c)"},
		{"(a + b) * c", "(a + b)"},
		{"1.5 * x", "1.5"},
		{"f(x, y)", "f(x,y)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ps := toPieces(hlsl.Tokenize(tt.src))
			end := operandEnd(ps, 0)
			if got := renderPieces(ps[:end]); got != tt.want {
				t.Errorf("operand of %q = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}
