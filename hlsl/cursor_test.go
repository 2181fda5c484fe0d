// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"
	"testing"
)

func TestCursorPeek(t *testing.T) {
	c := NewCursor(Tokenize("float4 x ;"))

	if tok, ok := c.Peek(0); !ok || tok != "float4" {
		t.Errorf("Peek(0) = %q, %v", tok, ok)
	}
	if tok, ok := c.Peek(2); !ok || tok != ";" {
		t.Errorf("Peek(2) = %q, %v", tok, ok)
	}
	if _, ok := c.Peek(3); ok {
		t.Error("Peek(3) past the end should report false")
	}
	if _, ok := c.Peek(-1); ok {
		t.Error("Peek(-1) before the start should report false")
	}
	if !c.PeekIs(1, "x") {
		t.Error("PeekIs(1, \"x\") = false")
	}
}

func TestCursorForkIsIndependent(t *testing.T) {
	c := NewCursor(Tokenize("a b c"))
	fork := c
	fork.Advance(2)

	if c.Pos() != 0 {
		t.Errorf("original Pos() = %d after advancing fork", c.Pos())
	}
	if fork.Pos() != 2 {
		t.Errorf("fork Pos() = %d, want 2", fork.Pos())
	}

	fork.Advance(10)
	if !fork.AtEnd() || fork.Pos() != 3 {
		t.Errorf("Advance past the end: Pos() = %d, AtEnd() = %v", fork.Pos(), fork.AtEnd())
	}
}

func TestCursorUntil(t *testing.T) {
	c := NewCursor(Tokenize("float4 x ; float y ;"))

	span, err := c.Until(";")
	if err != nil {
		t.Fatalf("Until() error = %v", err)
	}
	if Join(span) != "float4 x" {
		t.Errorf("Until() = %q", Join(span))
	}
	if c.Pos() != 3 {
		t.Errorf("Pos() = %d, want 3", c.Pos())
	}

	c = NewCursor(Tokenize("float4 x"))
	if _, err := c.Until(";"); err == nil {
		t.Fatal("Until() on unterminated input should fail")
	} else if kind, _ := KindOf(err); kind != ErrMalformedDeclaration {
		t.Errorf("kind = %v, want MalformedDeclaration", kind)
	}
}

func TestCursorBalanced(t *testing.T) {
	c := NewCursor(Tokenize("( a ( b , c ) d ) tail"))

	inner, err := c.Balanced("(", ")")
	if err != nil {
		t.Fatalf("Balanced() error = %v", err)
	}
	if got := Join(inner); got != "a(b,c)d" {
		t.Errorf("Balanced() = %q", got)
	}
	if tok, _ := c.Peek(0); tok != "tail" {
		t.Errorf("after Balanced() current token = %q, want tail", tok)
	}

	c = NewCursor(Tokenize("{ a { b }"))
	if _, err := c.Balanced("{", "}"); err == nil {
		t.Fatal("Balanced() on unbalanced input should fail")
	}
	if c.Pos() != 0 {
		t.Errorf("Pos() after failed Balanced() = %d, want 0", c.Pos())
	}
}

func TestCursorExpectAndIdent(t *testing.T) {
	c := NewCursor(Tokenize("struct Foo {"))

	if err := c.Expect("struct"); err != nil {
		t.Fatalf("Expect(struct) error = %v", err)
	}
	name, err := c.Ident("struct name")
	if err != nil || name != "Foo" {
		t.Fatalf("Ident() = %q, %v", name, err)
	}
	if _, err := c.Ident("member"); err == nil {
		t.Error("Ident() on \"{\" should fail")
	}
	if err := c.Expect("}"); err == nil {
		t.Error("Expect(\"}\") on \"{\" should fail")
	}
	c.Advance(1)
	err = c.Expect(";")
	if err == nil || !strings.Contains(err.Error(), "end of input") {
		t.Errorf("Expect at end error = %v", err)
	}
}

func TestCursorErrorNear(t *testing.T) {
	c := NewCursor(Tokenize("cbuffer Foo { float4 x ;"))
	c.Advance(3)

	err := c.Malformed("unterminated cbuffer")
	if err.Span == nil || err.Span.Start != 3 {
		t.Fatalf("Span = %+v, want start 3", err.Span)
	}
	if !strings.Contains(err.Near, "float4 x") {
		t.Errorf("Near = %q", err.Near)
	}
}
