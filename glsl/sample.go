// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "github.com/gogpu/hlslc/hlsl"

// sample rewrites a texture method call starting at the texture name ps[i]:
//
//	Tex.Sample(Samp, uv)       -> texture(sampler2D(Tex,Samp),uv)
//	Tex[i].SampleLevel(S,uv,l) -> textureLod(sampler2DArray(Tex[i],S),uv,l)
//
// It returns 0 when ps[i] is not followed by a method call, so plain uses of
// the texture (function arguments) are left to the caller.
func (r *bodyRewriter) sample(ps []piece, i int, dim string) (int, error) {
	j := i + 1
	texEnd := j
	if j < len(ps) && ps[j].text == "[" {
		k := matching(ps, j, "[", "]")
		if k < 0 {
			return 0, pieceError(hlsl.ErrMalformedDeclaration, ps, i, "unbalanced \"[\" after %s", ps[i].text)
		}
		j = k + 1
		texEnd = j
	}
	if j+2 >= len(ps) || ps[j].text != "." || !isIdentPiece(ps[j+1]) || ps[j+2].text != "(" {
		return 0, nil
	}

	method := ps[j+1].text
	closeIdx := matching(ps, j+2, "(", ")")
	if closeIdx < 0 {
		return 0, pieceError(hlsl.ErrMalformedDeclaration, ps, i, "unbalanced \"(\" in %s.%s", ps[i].text, method)
	}
	args, err := r.convertArgs(splitArgs(ps[j+3 : closeIdx]))
	if err != nil {
		return 0, err
	}
	if len(args) == 0 {
		return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i, "%s.%s without a sampler", ps[i].text, method)
	}

	var (
		fn      string
		sampler = "sampler" + dim
		rest    [][]piece
	)
	switch method {
	case "Sample", "SampleBias", "SampleLevel", "SampleGrad":
		var ok bool
		fn, ok = sampleFunction(method, len(args))
		if !ok {
			return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i,
				"%s.%s with %d arguments", ps[i].text, method, len(args))
		}
		rest = args[1:]
		if method == "SampleBias" && len(rest) == 3 {
			// textureOffset takes the bias last.
			rest = [][]piece{rest[0], rest[2], rest[1]}
		}
	case "SampleCmp", "SampleCmpLevelZero":
		if len(args) != 3 && len(args) != 4 {
			return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i,
				"%s.%s with %d arguments", ps[i].text, method, len(args))
		}
		fn = "texture"
		if len(args) == 4 {
			fn = "textureOffset"
		}
		sampler += "Shadow"
		coord, err := shadowCoord(dim, args[1], args[2])
		if err != nil {
			return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i, "%s.%s: %v", ps[i].text, method, err)
		}
		rest = append(coord, args[3:]...)
	default:
		return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i,
			"texture method %s.%s is not supported", ps[i].text, method)
	}

	tex, err := r.converted(ps[i:texEnd])
	if err != nil {
		return 0, err
	}

	r.emit(piece{text: fn, glued: ps[i].glued})
	r.emitWords("(", sampler, "(")
	r.emitAll(tex)
	r.emitWords(",")
	r.emitAll(args[0])
	r.emitWords(")")
	for _, arg := range rest {
		r.emitWords(",")
		r.emitAll(arg)
	}
	r.emitWords(")")

	return closeIdx + 1 - i, nil
}

// converted rewrites ps into a separate piece slice sharing r's state.
func (r *bodyRewriter) converted(ps []piece) ([]piece, error) {
	sub := newBodyRewriter(r.ctx, r.entry, r.strict)
	if err := sub.rewrite(ps); err != nil {
		return nil, err
	}
	return sub.out, nil
}

func (r *bodyRewriter) convertArgs(args [][]piece) ([][]piece, error) {
	out := make([][]piece, len(args))
	for k, arg := range args {
		conv, err := r.converted(arg)
		if err != nil {
			return nil, err
		}
		out[k] = conv
	}
	return out, nil
}

// shadowCoord packs a comparison reference into the coordinate the way GLSL
// shadow samplers expect it. coord and ref are already converted.
func shadowCoord(dim string, coord, ref []piece) ([][]piece, error) {
	pack := func(ctor string, parts ...[]piece) []piece {
		out := plain(ctor, "(")
		for k, part := range parts {
			if k > 0 {
				out = append(out, plain(",")...)
			}
			out = append(out, part...)
		}
		return append(out, plain(")")...)
	}

	switch dim {
	case "1D":
		return [][]piece{pack("vec3", coord, plain("0.0"), ref)}, nil
	case "2D":
		return [][]piece{pack("vec3", coord, ref)}, nil
	case "2DArray", "Cube":
		return [][]piece{pack("vec4", coord, ref)}, nil
	case "CubeArray":
		return [][]piece{coord, ref}, nil
	default:
		return nil, hlsl.Errorf(hlsl.ErrUnsupportedConstruct, "no shadow sampler for %s textures", dim)
	}
}

// sampleCallAt reports whether ps[i] is the receiver of a sample call and
// returns the method name.
func sampleCallAt(ps []piece, i int) (string, bool) {
	j := i + 1
	if j < len(ps) && ps[j].text == "[" {
		k := matching(ps, j, "[", "]")
		if k < 0 {
			return "", false
		}
		j = k + 1
	}
	if j+2 >= len(ps) || ps[j].text != "." || ps[j+2].text != "(" {
		return "", false
	}
	method := ps[j+1].text
	switch method {
	case "SampleCmp", "SampleCmpLevelZero":
		return method, true
	}
	return method, isSampleMethod(method)
}
