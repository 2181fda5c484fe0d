// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"
)

// directivePrefix starts every placeholder token that stands for a
// conditional directive line.
const directivePrefix = "#d"

// Source is an HLSL translation unit split into its preprocessor and code parts.
type Source struct {
	// Defines holds the #define lines in source order, continuations joined.
	Defines []string

	// Code is the comment-free code with every conditional directive line
	// replaced by a placeholder token (see DirectiveIndex).
	Code string

	// Directives holds the trimmed conditional directive lines.
	Directives []string
}

// Split removes comments, collects #define lines and replaces conditional
// directives with placeholders. Other directives (#include, #pragma, #line)
// are dropped; callers pass include-expanded text.
func Split(source string) Source {
	var src Source
	var code strings.Builder

	lines := strings.Split(stripBlockComments(source), "\n")
	for i := 0; i < len(lines); i++ {
		line := stripLineComment(lines[i])
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if !strings.HasPrefix(trimmed, "#") {
			code.WriteString(line)
			code.WriteByte('\n')
			continue
		}

		switch directiveName(trimmed) {
		case "define":
			for strings.HasSuffix(trimmed, "\\") && i+1 < len(lines) {
				i++
				trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "\\")) + " " +
					strings.TrimSpace(stripLineComment(lines[i]))
			}
			src.Defines = append(src.Defines, strings.TrimSpace(strings.TrimSuffix(trimmed, "\\")))
		case "if", "ifdef", "ifndef", "elif", "else", "endif":
			code.WriteString(" " + directivePrefix + strconv.Itoa(len(src.Directives)) + " \n")
			src.Directives = append(src.Directives, normalizeDirective(trimmed))
		}
	}

	src.Code = code.String()
	return src
}

// DirectiveIndex reports whether tok is a directive placeholder produced by
// Split and returns its index into Source.Directives.
func DirectiveIndex(tok string) (int, bool) {
	rest, ok := strings.CutPrefix(tok, directivePrefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// directiveName returns the word following '#', allowing "# define".
func directiveName(line string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	end := strings.IndexFunc(rest, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end < 0 {
		return rest
	}
	return rest[:end]
}

// normalizeDirective collapses "#  if   X" into "#if X".
func normalizeDirective(line string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	return "#" + strings.Join(strings.Fields(rest), " ")
}

func stripLineComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

// stripBlockComments removes /* */ comments, keeping the line breaks they span.
func stripBlockComments(source string) string {
	if !strings.Contains(source, "/*") {
		return source
	}
	var sb strings.Builder
	sb.Grow(len(source))
	for {
		start := strings.Index(source, "/*")
		if start < 0 {
			sb.WriteString(source)
			break
		}
		// A "//" before the block opener comments the opener out.
		lineStart := strings.LastIndexByte(source[:start], '\n') + 1
		if strings.Contains(source[lineStart:start], "//") {
			end := strings.IndexByte(source[start:], '\n')
			if end < 0 {
				sb.WriteString(source)
				break
			}
			sb.WriteString(source[:start+end])
			source = source[start+end:]
			continue
		}
		sb.WriteString(source[:start])
		end := strings.Index(source[start+2:], "*/")
		if end < 0 {
			sb.WriteString(strings.Repeat("\n", strings.Count(source[start:], "\n")))
			break
		}
		comment := source[start : start+2+end+2]
		sb.WriteString(strings.Repeat("\n", strings.Count(comment, "\n")))
		sb.WriteByte(' ')
		source = source[start+2+end+2:]
	}
	return sb.String()
}
