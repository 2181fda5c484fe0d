// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/hlslc/hlsl"
)

// param is one parsed function parameter.
type param struct {
	modifiers []string
	primitive string // geometry input primitive (point, triangle, ...)
	typ       string
	name      string
	array     string // "[3]" or "[]"
	semantic  string
}

func isParamModifier(tok string) bool {
	switch tok {
	case "in", "out", "inout", "uniform", "const", "precise",
		"nointerpolation", "linear", "noperspective", "centroid", "sample",
		"row_major", "column_major":
		return true
	default:
		return false
	}
}

// parseParams parses the tokens between the parentheses of a signature.
func parseParams(tokens []string) ([]param, error) {
	if len(tokens) == 0 || len(tokens) == 1 && tokens[0] == "void" {
		return nil, nil
	}

	var params []param
	for _, group := range splitTokens(tokens, ",") {
		cur := hlsl.NewCursor(group)
		var p param
		for {
			tok, ok := cur.Peek(0)
			if !ok {
				break
			}
			if _, isPrim := inputPrimitive(tok); isPrim && p.primitive == "" {
				p.primitive = tok
			} else if isParamModifier(tok) {
				p.modifiers = append(p.modifiers, tok)
			} else {
				break
			}
			cur.Advance(1)
		}

		typ, ok := cur.Next()
		if !ok || hlsl.IsPunct(typ) {
			return nil, cur.Malformed("expected parameter type")
		}
		p.typ = typ

		name, err := cur.Ident("parameter name")
		if err != nil {
			return nil, err
		}
		p.name = name

		if cur.PeekIs(0, "[") {
			inner, err := cur.Balanced("[", "]")
			if err != nil {
				return nil, err
			}
			p.array = "[" + hlsl.Join(inner) + "]"
		}
		if cur.PeekIs(0, ":") {
			cur.Advance(1)
			if p.semantic, err = cur.Ident("semantic"); err != nil {
				return nil, err
			}
		}
		if !cur.AtEnd() {
			tok, _ := cur.Peek(0)
			return nil, cur.Errorf(hlsl.ErrUnsupportedConstruct, "unexpected %q in parameter %s", tok, p.name)
		}
		params = append(params, p)
	}
	return params, nil
}

// splitTokens splits tokens at top-level occurrences of sep.
func splitTokens(tokens []string, sep string) [][]string {
	var groups [][]string
	depth, start := 0, 0
	for i, tok := range tokens {
		switch tok {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case sep:
			if depth == 0 {
				groups = append(groups, tokens[start:i])
				start = i + 1
			}
		}
	}
	return append(groups, tokens[start:])
}

// parseFunction converts a function definition or prototype. The cursor is
// positioned at the return type.
func (c *ConversionContext) parseFunction(cur *hlsl.Cursor) (string, error) {
	ret, _ := cur.Next()
	name, err := cur.Ident("function name")
	if err != nil {
		return "", err
	}
	paramTokens, err := cur.Balanced("(", ")")
	if err != nil {
		return "", err
	}
	params, err := parseParams(paramTokens)
	if err != nil {
		return "", err
	}

	var semantic string
	if cur.PeekIs(0, ":") {
		cur.Advance(1)
		if semantic, err = cur.Ident("return semantic"); err != nil {
			return "", err
		}
	}

	if cur.PeekIs(0, ";") {
		cur.Advance(1)
		if name == c.Options.EntryPoint {
			return "", nil
		}
		return hlsl.Join(c.signature(ret, name, params)) + ";", nil
	}

	body, err := cur.Balanced("{", "}")
	if err != nil {
		return "", err
	}

	// Texture parameters are visible to the sample rewriter in this body only.
	c.localTextures = make(map[string]string)
	defer clear(c.localTextures)
	for _, p := range params {
		if dim, ok := textureDimension(p.typ); ok {
			c.localTextures[p.name] = dim
		}
	}

	if name == c.Options.EntryPoint {
		return c.writeEntry(ret, params, semantic, body)
	}
	return c.writeHelper(ret, name, params, body)
}

// signature returns the tokens of a helper function signature. Semantics
// and interpolation modifiers are dropped.
func (c *ConversionContext) signature(ret, name string, params []param) []string {
	tokens := []string{c.convertType(ret), c.ident(name), "("}
	for i, p := range params {
		if i > 0 {
			tokens = append(tokens, ",")
		}
		for _, m := range p.modifiers {
			switch m {
			case "in", "out", "inout", "const":
				tokens = append(tokens, m)
			}
		}
		tokens = append(tokens, c.convertType(p.typ), c.ident(p.name))
		if p.array != "" {
			tokens = append(tokens, hlsl.Tokenize(p.array)...)
		}
	}
	return append(tokens, ")")
}

func (c *ConversionContext) writeHelper(ret, name string, params []param, body []string) (string, error) {
	r := newBodyRewriter(c, nil, true)
	if err := r.rewrite(toPieces(body)); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(hlsl.Join(append(c.signature(ret, name, params), "{")))
	sb.WriteByte('\n')
	for _, line := range layoutBody(r.out, 1) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString("}")
	return sb.String(), nil
}

// writeEntry lowers the entry point: semantic parameters and outputs become
// stage interface globals and the function itself becomes main.
func (c *ConversionContext) writeEntry(ret string, params []param, semantic string, body []string) (string, error) {
	if c.entryFound {
		return "", hlsl.Errorf(hlsl.ErrUnsupportedConstruct, "entry point %s defined twice", c.Options.EntryPoint)
	}
	c.entryFound = true

	e := &entryInfo{
		inputs:   make(map[string][]piece),
		structIn: make(map[string]*structInput),
		targets:  make(map[string]string),
	}
	var decls []string
	location := 0

	for _, p := range params {
		switch {
		case c.Stage == StageGeometry && p.primitive != "":
			prim, _ := inputPrimitive(p.primitive)
			if err := c.Geometry.setInputPrimitive(prim); err != nil {
				return "", err
			}
			t := c.convertType(p.typ)
			name := c.ident(p.name)
			decls = append(decls, fmt.Sprintf("layout(location = %d) in %s %s[];", location, t, name))
			c.info.Inputs = append(c.info.Inputs, InterfaceVariable{Name: name, Type: t, Location: location})
			if def, ok := c.lookupStruct(p.typ); ok {
				location += len(def.Fields)
			} else {
				location++
			}

		case c.Stage == StageGeometry && isStreamType(p.typ):
			prim, element, _ := streamPrimitive(p.typ)
			if err := c.Geometry.setOutputPrimitive(prim); err != nil {
				return "", err
			}
			if err := c.Geometry.setStream(p.name, element); err != nil {
				return "", err
			}
			def, ok := c.lookupStruct(element)
			if !ok {
				return "", hlsl.Errorf(hlsl.ErrUnsupportedConstruct, "stream element %s is not a declared struct", element)
			}
			e.stream = p.name
			decls = append(decls, c.declareOutputs(e, def)...)

		case p.semantic != "":
			decls = append(decls, c.bindInput(e, p, &location)...)

		default:
			def, ok := c.lookupStruct(p.typ)
			if !ok || !def.HasSemantics() {
				return "", hlsl.Errorf(hlsl.ErrUnsupportedConstruct,
					"entry point parameter %q has no semantic", p.name)
			}
			decls = append(decls, c.bindStructInput(e, p, def, &location)...)
		}
	}

	switch {
	case semantic != "":
		decl, err := c.bindReturn(e, ret, semantic)
		if err != nil {
			return "", err
		}
		if decl != "" {
			decls = append(decls, decl)
		}
	case ret == "void":
	default:
		def, ok := c.lookupStruct(ret)
		if !ok || !def.HasSemantics() || c.Stage == StageGeometry {
			return "", hlsl.Errorf(hlsl.ErrUnsupportedConstruct,
				"entry point %s returns %s without a semantic", c.Options.EntryPoint, ret)
		}
		decls = append(decls, c.declareOutputs(e, def)...)
	}

	c.log.Debug("entry point lowered",
		"name", c.Options.EntryPoint, "inputs", len(c.info.Inputs), "outputs", len(c.info.Outputs))

	r := newBodyRewriter(c, e, true)
	if err := r.rewrite(toPieces(body)); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, d := range decls {
		sb.WriteString(d)
		sb.WriteByte('\n')
	}
	if len(decls) > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString(hlsl.Join([]string{"void", "main", "(", ")", "{"}))
	sb.WriteByte('\n')
	for _, line := range layoutBody(r.out, 1) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString("}")
	return sb.String(), nil
}

func isStreamType(typ string) bool {
	_, _, ok := streamPrimitive(typ)
	return ok
}

// bindInput binds a scalar or vector parameter carrying a semantic.
func (c *ConversionContext) bindInput(e *entryInfo, p param, location *int) []string {
	if builtin, ok := builtinInput(c.Stage, p.semantic); ok {
		e.inputs[p.name] = builtinPieces(builtin, c.convertType(p.typ))
		c.info.Inputs = append(c.info.Inputs, InterfaceVariable{
			Name: p.name, Type: c.convertType(p.typ), Semantic: p.semantic, Location: -1, BuiltIn: builtin,
		})
		return nil
	}

	t := c.convertType(p.typ)
	name := c.ident(p.name)
	decl := fmt.Sprintf("layout(location = %d) %sin %s %s%s;",
		*location, c.inputQualifiers(p.modifiers, t), t, name, p.array)
	c.info.Inputs = append(c.info.Inputs, InterfaceVariable{
		Name: name, Type: t, Semantic: p.semantic, Location: *location,
	})
	*location++
	return []string{decl}
}

// bindStructInput flattens a struct parameter into one input per field.
func (c *ConversionContext) bindStructInput(e *entryInfo, p param, def *StructDefinition, location *int) []string {
	si := &structInput{def: def, fields: make(map[string][]piece, len(def.Fields))}
	e.structIn[p.name] = si

	var decls []string
	base := *location
	for k, f := range def.Fields {
		t := c.convertType(f.Type)
		if builtin, ok := builtinInput(c.Stage, f.Semantic); ok {
			si.fields[f.Name] = builtinPieces(builtin, t)
			c.info.Inputs = append(c.info.Inputs, InterfaceVariable{
				Name: f.Name, Type: t, Semantic: f.Semantic, Location: -1, BuiltIn: builtin,
			})
			continue
		}
		global := "in_" + f.Name
		si.fields[f.Name] = plain(global)
		decls = append(decls, fmt.Sprintf("layout(location = %d) %sin %s %s%s;",
			base+k, c.inputQualifiers(f.Modifiers, t), t, global, f.ArraySuffix))
		c.info.Inputs = append(c.info.Inputs, InterfaceVariable{
			Name: global, Type: t, Semantic: f.Semantic, Location: base + k,
		})
	}
	*location = base + len(def.Fields)
	c.log.Debug("struct input flattened", "param", p.name, "struct", def.Name, "fields", len(def.Fields))
	return decls
}

// bindReturn handles a return value carrying a semantic.
func (c *ConversionContext) bindReturn(e *entryInfo, ret, semantic string) (string, error) {
	t := c.convertType(ret)
	out := InterfaceVariable{Type: t, Semantic: semantic, Location: -1}

	var decl string
	switch n, isTarget := targetIndex(semantic); {
	case isPositionSemantic(semantic) && c.Stage != StageFragment:
		e.retPrefix = assignPrefix("gl_Position")
		out.Name, out.BuiltIn = "gl_Position", "gl_Position"
	case isTarget && c.Stage == StageFragment:
		e.retPrefix = assignPrefix("fragColor")
		decl = fmt.Sprintf("layout(location = %d) out %s fragColor;", n, t)
		out.Name, out.Location = "fragColor", n
	case isDepthSemantic(semantic) && c.Stage == StageFragment:
		e.retPrefix = assignPrefix("gl_FragDepth")
		out.Name, out.BuiltIn = "gl_FragDepth", "gl_FragDepth"
	default:
		return "", hlsl.Errorf(hlsl.ErrUnsupportedConstruct,
			"return semantic %s is not supported in %s shaders", semantic, c.Stage)
	}
	c.info.Outputs = append(c.info.Outputs, out)
	return decl, nil
}

// declareOutputs declares one output global per field of def and records
// where each field is written.
func (c *ConversionContext) declareOutputs(e *entryInfo, def *StructDefinition) []string {
	e.out = def
	var decls []string
	for k, f := range def.Fields {
		t := c.convertType(f.Type)
		out := InterfaceVariable{Type: t, Semantic: f.Semantic, Location: k}

		if c.Stage == StageFragment && isDepthSemantic(f.Semantic) {
			e.targets[f.Name] = "gl_FragDepth"
			out.Name, out.Location, out.BuiltIn = "gl_FragDepth", -1, "gl_FragDepth"
			c.info.Outputs = append(c.info.Outputs, out)
			continue
		}

		global := "out_" + f.Name
		quals := ""
		if c.Stage == StageFragment {
			if n, ok := targetIndex(f.Semantic); ok {
				out.Location = n
			}
		} else {
			quals = c.interpolation(f.Modifiers, t)
			if isPositionSemantic(f.Semantic) {
				e.position = global
			}
		}
		e.targets[f.Name] = global
		out.Name = global
		decls = append(decls, fmt.Sprintf("layout(location = %d) %sout %s %s%s;",
			out.Location, quals, t, global, f.ArraySuffix))
		c.info.Outputs = append(c.info.Outputs, out)
	}
	return decls
}

// inputQualifiers returns the interpolation qualifiers of a stage input.
// Vertex inputs take none.
func (c *ConversionContext) inputQualifiers(modifiers []string, glslType string) string {
	if c.Stage == StageVertex {
		return ""
	}
	return c.interpolation(modifiers, glslType)
}

// interpolation maps HLSL interpolation modifiers to a qualifier prefix.
// Integer values are always flat.
func (c *ConversionContext) interpolation(modifiers []string, glslType string) string {
	var quals []string
	for _, m := range modifiers {
		if q, ok := interpolationQualifier(m); ok {
			quals = append(quals, q)
		}
	}
	if isIntegerType(glslType) && !slices.Contains(quals, "flat") {
		quals = append([]string{"flat"}, quals...)
	}
	if len(quals) == 0 {
		return ""
	}
	return strings.Join(quals, " ") + " "
}

// assignPrefix returns the pieces "name=" glued onto the returned expression.
func assignPrefix(name string) []piece {
	return []piece{{text: name}, {text: "=", glued: true}}
}

// builtinPieces returns the replacement for an input bound to a built-in,
// converting int built-ins read through uint parameters.
func builtinPieces(builtin, glslType string) []piece {
	if isIntBuiltin(builtin) && strings.HasPrefix(glslType, "uint") {
		return plain("uint", "(", builtin, ")")
	}
	return plain(builtin)
}
