// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl provides the HLSL front end used by the GLSL converter.
//
// The front end is deliberately shallow. It does not build a syntax tree;
// instead it turns include-expanded HLSL text into a flat token sequence that
// the converter rewrites in a single forward pass.
//
// # Source Splitting
//
// [Split] separates a shader into three parts before tokenization:
//
//   - #define lines, re-rendered by the macro rewriter
//   - conditional directives (#if, #ifdef, #else, #endif, ...), replaced in the
//     code by placeholder tokens so they survive tokenization as whole lines
//   - the remaining code with all comments removed
//
// # Tokens
//
// [Tokenize] isolates the punctuation characters ( ) ; : , . [ ] and the
// braces { } as separate tokens and splits everything else on whitespace.
// [Join] is the inverse used for output: tokens are separated by a single
// space unless either neighbour is punctuation. Join(Tokenize(Join(t)))
// always equals Join(t).
//
// # Errors
//
// All malformed input is reported through [*Error] values instead of reading
// past the end of the token sequence. Use [Cursor] for every lookahead.
package hlsl
