// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// nearRadius is the number of tokens shown on each side of an error position.
const nearRadius = 4

// Cursor is a bounds-checked position in a token sequence.
//
// Cursor is a small value type: copying it forks an independent position over
// the same tokens, which is how declaration parsers scan ahead and report how
// many tokens they consumed.
type Cursor struct {
	tokens []string
	pos    int
}

// NewCursor returns a cursor positioned at the first token.
func NewCursor(tokens []string) Cursor {
	return Cursor{tokens: tokens}
}

// Pos returns the absolute index of the current token.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the total number of tokens.
func (c *Cursor) Len() int {
	return len(c.tokens)
}

// Remaining returns the number of tokens at or after the current position.
func (c *Cursor) Remaining() int {
	return len(c.tokens) - c.pos
}

// AtEnd reports whether all tokens have been consumed.
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.tokens)
}

// Peek returns the token k positions ahead of the current one.
// The second result is false when the position is out of range.
func (c *Cursor) Peek(k int) (string, bool) {
	i := c.pos + k
	if i < 0 || i >= len(c.tokens) {
		return "", false
	}
	return c.tokens[i], true
}

// PeekIs reports whether the token k positions ahead equals want.
func (c *Cursor) PeekIs(k int, want string) bool {
	tok, ok := c.Peek(k)
	return ok && tok == want
}

// Next returns the current token and advances past it.
func (c *Cursor) Next() (string, bool) {
	tok, ok := c.Peek(0)
	if ok {
		c.pos++
	}
	return tok, ok
}

// Advance moves the cursor n tokens forward, stopping at the end.
func (c *Cursor) Advance(n int) {
	c.pos += n
	if c.pos > len(c.tokens) {
		c.pos = len(c.tokens)
	}
}

// Expect consumes the current token if it equals want.
func (c *Cursor) Expect(want string) error {
	tok, ok := c.Peek(0)
	if !ok {
		return c.Malformed("expected %q, found end of input", want)
	}
	if tok != want {
		return c.Malformed("expected %q, found %q", want, tok)
	}
	c.pos++
	return nil
}

// Ident consumes and returns the current token if it is an identifier.
func (c *Cursor) Ident(what string) (string, error) {
	tok, ok := c.Peek(0)
	if !ok {
		return "", c.Malformed("expected %s, found end of input", what)
	}
	if !IsIdent(tok) {
		return "", c.Malformed("expected %s, found %q", what, tok)
	}
	c.pos++
	return tok, nil
}

// Until returns the tokens before the next occurrence of term and advances
// past term.
func (c *Cursor) Until(term string) ([]string, error) {
	for i := c.pos; i < len(c.tokens); i++ {
		if c.tokens[i] == term {
			span := c.tokens[c.pos:i]
			c.pos = i + 1
			return span, nil
		}
	}
	return nil, c.Malformed("missing %q before end of input", term)
}

// Balanced expects the current token to be open and returns the tokens
// between it and the matching close, advancing past close.
func (c *Cursor) Balanced(open, close string) ([]string, error) {
	if err := c.Expect(open); err != nil {
		return nil, err
	}
	start := c.pos
	depth := 1
	for i := start; i < len(c.tokens); i++ {
		switch c.tokens[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				c.pos = i + 1
				return c.tokens[start:i], nil
			}
		}
	}
	c.pos = start - 1
	return nil, c.Malformed("unbalanced %q", open)
}

// Near returns the joined tokens around the current position.
func (c *Cursor) Near() string {
	lo := c.pos - nearRadius
	if lo < 0 {
		lo = 0
	}
	hi := c.pos + nearRadius
	if hi > len(c.tokens) {
		hi = len(c.tokens)
	}
	if lo >= hi {
		return ""
	}
	return Join(c.tokens[lo:hi])
}

// Errorf returns an error of the given kind located at the current token.
func (c *Cursor) Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    &Span{Start: c.pos, End: c.pos + 1},
		Near:    c.Near(),
	}
}

// Malformed returns an ErrMalformedDeclaration located at the current token.
func (c *Cursor) Malformed(format string, args ...any) *Error {
	return c.Errorf(ErrMalformedDeclaration, format, args...)
}
