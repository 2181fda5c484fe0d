// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"

	"github.com/gogpu/hlslc/hlsl"
)

// piece is one word of a token. Words after the first word of a token are
// glued to their predecessor and rendered without a separating space, which
// keeps "c=lerp" together while still letting each identifier be rewritten.
type piece struct {
	text      string
	glued     bool
	directive bool // a whole preprocessor line
}

// toPieces splits tokens into words.
func toPieces(tokens []string) []piece {
	ps := make([]piece, 0, len(tokens)+len(tokens)/4)
	for _, tok := range tokens {
		if _, ok := hlsl.DirectiveIndex(tok); ok {
			ps = append(ps, piece{text: tok})
			continue
		}
		for i, w := range hlsl.Words(tok) {
			ps = append(ps, piece{text: w, glued: i > 0})
		}
	}
	return ps
}

// plain turns generated words into unglued pieces.
func plain(words ...string) []piece {
	ps := make([]piece, len(words))
	for i, w := range words {
		ps[i] = piece{text: w}
	}
	return ps
}

// isIdentPiece reports whether p is a single identifier word.
func isIdentPiece(p piece) bool {
	return !p.directive && hlsl.IsIdent(p.text)
}

// renderPieces joins pieces on one line. The spacing matches hlsl.Join, so
// every rendered line is a fixed point of hlsl.Normalize.
func renderPieces(ps []piece) string {
	var sb strings.Builder
	for i, p := range ps {
		if i > 0 && !p.glued && !hlsl.IsPunct(p.text) && !hlsl.IsPunct(ps[i-1].text) {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.text)
	}
	return sb.String()
}

// layoutBody breaks a rewritten body into indented lines: one statement per
// line, braces opening and closing blocks. Directive lines are never indented.
func layoutBody(ps []piece, depth int) []string {
	var lines []string
	var cur []piece
	paren := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		lines = append(lines, strings.Repeat("\t", depth)+renderPieces(cur))
		cur = cur[:0]
	}

	for i, p := range ps {
		if p.directive {
			flush()
			lines = append(lines, p.text)
			continue
		}

		switch p.text {
		case "(", "[":
			paren++
		case ")", "]":
			if paren > 0 {
				paren--
			}
		}

		if p.text == "}" {
			flush()
			if depth > 0 {
				depth--
			}
			cur = append(cur, p)
			// "} else", "};" and "} while (...);" stay on the closing line.
			if i+1 < len(ps) && !ps[i+1].directive {
				switch ps[i+1].text {
				case "else", ";", "while":
					continue
				}
			}
			flush()
			continue
		}

		cur = append(cur, p)
		switch {
		case p.text == "{":
			flush()
			depth++
		case p.text == ";" && paren == 0:
			flush()
		}
	}
	flush()
	return lines
}
