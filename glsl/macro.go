// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"

	"github.com/gogpu/hlslc/hlsl"
)

// parseMacro rewrites one "#define NAME[(args)] body" line. Arguments are
// recognized only when "(" immediately follows the name. The body goes
// through the same name tables and sample rewriting as function bodies,
// but sample calls on unknown names are passed through.
func (c *ConversionContext) parseMacro(line string) (string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "define"))

	end := 0
	for end < len(rest) && isNameByte(rest[end]) {
		end++
	}
	if end == 0 {
		return "", hlsl.Errorf(hlsl.ErrMalformedDeclaration, "macro without a name: %q", line)
	}
	name := rest[:end]
	rest = rest[end:]

	var head strings.Builder
	head.WriteString("#define ")
	head.WriteString(name)

	if strings.HasPrefix(rest, "(") {
		closeIdx := strings.IndexByte(rest, ')')
		if closeIdx < 0 {
			return "", hlsl.Errorf(hlsl.ErrMalformedDeclaration, "unterminated argument list of macro %s", name)
		}
		args := strings.Split(rest[1:closeIdx], ",")
		for i := range args {
			args[i] = strings.TrimSpace(args[i])
			if hlsl.IsIdent(args[i]) {
				args[i] = c.ident(args[i])
			}
		}
		head.WriteString("(" + strings.Join(args, ",") + ")")
		rest = rest[closeIdx+1:]
	}

	body := strings.TrimSpace(rest)
	if body == "" {
		return head.String(), nil
	}

	r := newBodyRewriter(c, nil, false)
	if err := r.rewrite(toPieces(hlsl.Tokenize(body))); err != nil {
		return "", err
	}
	return head.String() + " " + renderPieces(r.out), nil
}

func isNameByte(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}
