// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"
	"testing"
)

func TestSplitDefines(t *testing.T) {
	src := Split(`#define PI 3.14159
#define MAX(a, b) \
    ((a) > (b) ? (a) : (b))
float x;
`)

	if len(src.Defines) != 2 {
		t.Fatalf("len(Defines) = %d, want 2: %q", len(src.Defines), src.Defines)
	}
	if src.Defines[0] != "#define PI 3.14159" {
		t.Errorf("Defines[0] = %q", src.Defines[0])
	}
	if src.Defines[1] != "#define MAX(a, b) ((a) > (b) ? (a) : (b))" {
		t.Errorf("Defines[1] = %q", src.Defines[1])
	}
	if strings.Contains(src.Code, "define") {
		t.Errorf("Code still contains defines: %q", src.Code)
	}
	if !strings.Contains(src.Code, "float x;") {
		t.Errorf("Code lost declarations: %q", src.Code)
	}
}

func TestSplitComments(t *testing.T) {
	src := Split(`// header comment
   // indented comment
float a; // trailing
/* block
   spanning lines */ float b;
float c; /* inline */ float d;
// float e; /* not a block */
float f;
`)

	tokens := Tokenize(src.Code)
	got := Join(tokens)
	want := "float a;float b;float c;float d;float f;"
	if got != want {
		t.Errorf("code = %q, want %q", got, want)
	}
}

func TestSplitDirectives(t *testing.T) {
	src := Split(`#include "common.hlsl"
#pragma pack_matrix(row_major)
#if  USE_FOG
float fog;
#else
float nofog;
#endif
`)

	if len(src.Directives) != 3 {
		t.Fatalf("len(Directives) = %d, want 3: %q", len(src.Directives), src.Directives)
	}
	wantDirectives := []string{"#if USE_FOG", "#else", "#endif"}
	for i, want := range wantDirectives {
		if src.Directives[i] != want {
			t.Errorf("Directives[%d] = %q, want %q", i, src.Directives[i], want)
		}
	}

	tokens := Tokenize(src.Code)
	var placeholders []int
	for _, tok := range tokens {
		if n, ok := DirectiveIndex(tok); ok {
			placeholders = append(placeholders, n)
		}
		if strings.Contains(tok, "include") || strings.Contains(tok, "pragma") {
			t.Errorf("unexpected token %q", tok)
		}
	}
	if len(placeholders) != 3 || placeholders[0] != 0 || placeholders[2] != 2 {
		t.Errorf("placeholders = %v, want [0 1 2]", placeholders)
	}
}

func TestDirectiveIndex(t *testing.T) {
	tests := []struct {
		tok  string
		want int
		ok   bool
	}{
		{"#d0", 0, true},
		{"#d12", 12, true},
		{"#d", 0, false},
		{"#dx", 0, false},
		{"d1", 0, false},
		{"#define", 0, false},
	}
	for _, tt := range tests {
		got, ok := DirectiveIndex(tt.tok)
		if ok != tt.ok || got != tt.want {
			t.Errorf("DirectiveIndex(%q) = %d, %v; want %d, %v", tt.tok, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSplitUnterminatedBlockComment(t *testing.T) {
	src := Split("float a;\n/* never closed\nfloat b;\n")
	if got := Join(Tokenize(src.Code)); got != "float a;" {
		t.Errorf("code = %q, want %q", got, "float a;")
	}
}
