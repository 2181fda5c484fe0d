// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "strings"

// punctuation lists the characters that always form a token of their own and
// suppress the separating space on output.
const punctuation = "();:,.[]"

func isPunctByte(ch byte) bool {
	return strings.IndexByte(punctuation, ch) >= 0
}

// IsPunct reports whether tok is a single punctuation character.
func IsPunct(tok string) bool {
	return len(tok) == 1 && isPunctByte(tok[0])
}

// IsBrace reports whether tok is "{" or "}".
func IsBrace(tok string) bool {
	return tok == "{" || tok == "}"
}

// Tokenize splits comment-free HLSL code into tokens.
//
// Tabs and line breaks count as spaces. Punctuation characters and braces
// become isolated tokens; all other characters accumulate until the next
// space. There is no awareness of string literals or multi-character
// operators: "a+=b" is a single token.
func Tokenize(code string) []string {
	var sb strings.Builder
	sb.Grow(len(code) + len(code)/4)

	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '\t' || ch == '\r' || ch == '\n':
			sb.WriteByte(' ')
		case isPunctByte(ch) || ch == '{' || ch == '}':
			sb.WriteByte(' ')
			sb.WriteByte(ch)
			sb.WriteByte(' ')
		default:
			sb.WriteByte(ch)
		}
	}

	return strings.Fields(sb.String())
}

// Join renders tokens back to text. A single space separates two tokens
// unless one of them is punctuation.
func Join(tokens []string) string {
	var sb strings.Builder
	for i, tok := range tokens {
		if i > 0 && !IsPunct(tok) && !IsPunct(tokens[i-1]) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok)
	}
	return sb.String()
}

// Normalize re-tokenizes text and joins it again. Normalize is idempotent.
func Normalize(text string) string {
	return Join(Tokenize(text))
}

// IsIdent reports whether tok looks like an identifier.
func IsIdent(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		ch := tok[i]
		switch {
		case ch == '_', ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Words splits one token into identifier, number and operator runs, so that
// "c=lerp" yields "c", "=", "lerp". Number runs keep exponent signs
// ("1e-3") and suffixes ("5f"). Concatenating the words gives tok back.
func Words(tok string) []string {
	if len(tok) <= 1 {
		return []string{tok}
	}

	var words []string
	for i := 0; i < len(tok); {
		j := i + 1
		switch ch := tok[i]; {
		case isDigit(ch):
			hex := ch == '0' && j < len(tok) && (tok[j] == 'x' || tok[j] == 'X')
			for j < len(tok) {
				c := tok[j]
				if isIdentByte(c) {
					j++
					continue
				}
				if !hex && (c == '+' || c == '-') && (tok[j-1] == 'e' || tok[j-1] == 'E') {
					j++
					continue
				}
				break
			}
		case isIdentByte(ch):
			for j < len(tok) && isIdentByte(tok[j]) {
				j++
			}
		default:
			for j < len(tok) && !isIdentByte(tok[j]) {
				j++
			}
		}
		words = append(words, tok[i:j])
		i = j
	}
	return words
}
