// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/hlslc/hlsl"
)

// member is one "[modifiers] type name[N] [: annotation];" line of a
// cbuffer or struct body.
type member struct {
	modifiers []string
	typ       string
	name      string
	array     string
	semantic  string
}

// parseMembers parses the tokens between the braces of a cbuffer or struct.
func parseMembers(body []string) ([]member, error) {
	cur := hlsl.NewCursor(body)
	var members []member
	for !cur.AtEnd() {
		// Stray semicolons are legal between members.
		if cur.PeekIs(0, ";") {
			cur.Advance(1)
			continue
		}
		start := cur
		span, err := cur.Until(";")
		if err != nil {
			return nil, err
		}
		m, err := parseMember(span)
		if err != nil {
			start.Advance(len(span))
			return nil, start.Malformed("%v", err)
		}
		members = append(members, m)
	}
	return members, nil
}

func parseMember(tokens []string) (member, error) {
	var m member
	i := 0
	for i < len(tokens) && isMemberModifier(tokens[i]) {
		m.modifiers = append(m.modifiers, tokens[i])
		i++
	}
	if i+1 >= len(tokens) {
		return m, fmt.Errorf("incomplete member %q", hlsl.Join(tokens))
	}
	m.typ, m.name = tokens[i], tokens[i+1]
	if !hlsl.IsIdent(m.name) {
		return m, fmt.Errorf("invalid member name %q", m.name)
	}
	i += 2

	if i < len(tokens) && tokens[i] == "[" {
		end := indexOf(tokens, "]", i)
		if end < 0 {
			return m, fmt.Errorf("unterminated array size of %s", m.name)
		}
		m.array = "[" + hlsl.Join(tokens[i+1:end]) + "]"
		i = end + 1
	}
	if i < len(tokens) && tokens[i] == ":" {
		if i+1 >= len(tokens) {
			return m, fmt.Errorf("missing semantic of %s", m.name)
		}
		// packoffset(...) is dropped; anything else is a semantic.
		if tokens[i+1] != "packoffset" {
			m.semantic = tokens[i+1]
		}
		i = len(tokens)
	}
	if i != len(tokens) {
		return m, fmt.Errorf("unexpected %q after member %s", tokens[i], m.name)
	}
	return m, nil
}

func isMemberModifier(tok string) bool {
	switch tok {
	case "row_major", "column_major", "nointerpolation", "linear", "noperspective",
		"centroid", "sample", "precise", "uniform", "const":
		return true
	default:
		return false
	}
}

func indexOf(tokens []string, tok string, from int) int {
	for i := from; i < len(tokens); i++ {
		if tokens[i] == tok {
			return i
		}
	}
	return -1
}

// parseCBuffer converts
//
//	cbuffer Name [: register(bN)] { members } [;]
//
// into a std140 uniform block. A cbuffer without a register has no binding
// and is dropped.
func (c *ConversionContext) parseCBuffer(cur *hlsl.Cursor) (string, error) {
	if err := cur.Expect("cbuffer"); err != nil {
		return "", err
	}
	name, err := cur.Ident("cbuffer name")
	if err != nil {
		return "", err
	}
	binding, hasBinding, err := parseRegister(cur, 'b')
	if err != nil {
		return "", err
	}
	if !cur.PeekIs(0, "{") {
		return "", cur.Malformed("expected \"{\" after cbuffer %s", name)
	}
	body, err := cur.Balanced("{", "}")
	if err != nil {
		return "", cur.Malformed("unterminated cbuffer %s", name)
	}
	if cur.PeekIs(0, ";") {
		cur.Advance(1)
	}

	members, err := parseMembers(body)
	if err != nil {
		return "", err
	}

	if !hasBinding {
		c.log.Debug("cbuffer dropped: no register", "name", name)
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "layout(std140,set = %d,binding = %d) uniform %s {\n", c.Options.UniformSet, binding, c.ident(name))
	for _, m := range members {
		sb.WriteByte('\t')
		for _, mod := range m.modifiers {
			if q, ok := matrixQualifier(mod); ok {
				sb.WriteString(q)
				sb.WriteByte(' ')
			}
		}
		fmt.Fprintf(&sb, "%s%s %s;\n", c.convertType(m.typ), m.array, c.ident(m.name))
	}
	sb.WriteString("};")

	c.info.UniformBuffers = append(c.info.UniformBuffers, Binding{
		Name: name, Type: "uniform", Set: c.Options.UniformSet, Binding: binding,
	})
	return sb.String(), nil
}

// parseStruct registers a struct and converts it to a plain GLSL struct.
// Semantics and interpolation modifiers are kept in the definition only.
func (c *ConversionContext) parseStruct(cur *hlsl.Cursor) (string, error) {
	if err := cur.Expect("struct"); err != nil {
		return "", err
	}
	name, err := cur.Ident("struct name")
	if err != nil {
		return "", err
	}
	if !cur.PeekIs(0, "{") {
		return "", cur.Malformed("expected \"{\" after struct %s", name)
	}
	body, err := cur.Balanced("{", "}")
	if err != nil {
		return "", cur.Malformed("unterminated struct %s", name)
	}
	if err := cur.Expect(";"); err != nil {
		return "", err
	}

	members, err := parseMembers(body)
	if err != nil {
		return "", err
	}

	def := &StructDefinition{Name: name, Fields: make([]StructField, len(members))}
	for i, m := range members {
		def.Fields[i] = StructField{
			Modifiers:   m.modifiers,
			Type:        m.typ,
			Name:        m.name,
			ArraySuffix: m.array,
			Semantic:    m.semantic,
		}
	}
	if err := c.registerStruct(def); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "struct %s {\n", c.ident(name))
	for _, f := range def.Fields {
		fmt.Fprintf(&sb, "\t%s %s%s;\n", c.convertType(f.Type), c.ident(f.Name), f.ArraySuffix)
	}
	sb.WriteString("};")
	return sb.String(), nil
}

// parseStatic converts
//
//	static [const] type name[N] [= init];
//
// Array initializers { ... } become constructor calls type[N]( ... ).
// When the declaration turns out to be a static function, only the
// "static" keyword is consumed.
func (c *ConversionContext) parseStatic(cur *hlsl.Cursor) (string, error) {
	isConst := false
	if cur.PeekIs(0, "static") {
		cur.Advance(1)
	}
	for cur.PeekIs(0, "const") || cur.PeekIs(0, "static") {
		if cur.PeekIs(0, "const") {
			isConst = true
		}
		cur.Advance(1)
	}

	// static float4 helper(...)
	if cur.PeekIs(2, "(") {
		return "", nil
	}

	typ, ok := cur.Next()
	if !ok {
		return "", cur.Malformed("expected type after static")
	}
	name, err := cur.Ident("variable name")
	if err != nil {
		return "", err
	}
	var array []string
	if cur.PeekIs(0, "[") {
		inner, err := cur.Balanced("[", "]")
		if err != nil {
			return "", err
		}
		array = inner
	}

	var init []string
	if cur.PeekIs(0, "=") {
		cur.Advance(1)
		init, err = cur.Until(";")
		if err != nil {
			return "", err
		}
	} else if err := cur.Expect(";"); err != nil {
		return "", err
	}

	t := c.convertType(typ)
	suffix := ""
	if array != nil {
		suffix = "[" + hlsl.Join(array) + "]"
	}

	var sb strings.Builder
	if isConst {
		sb.WriteString("const ")
	}
	fmt.Fprintf(&sb, "%s %s%s", t, c.ident(name), suffix)

	if init != nil {
		value, err := c.staticInitializer(typ, suffix, init)
		if err != nil {
			return "", err
		}
		sb.WriteString(" = ")
		sb.WriteString(value)
	}
	sb.WriteByte(';')
	return sb.String(), nil
}

// staticInitializer rewrites an initializer expression. A brace list
// becomes a constructor of the declared HLSL type typ.
func (c *ConversionContext) staticInitializer(typ, suffix string, init []string) (string, error) {
	tokens := init
	if len(init) >= 2 && init[0] == "{" && init[len(init)-1] == "}" {
		tokens = make([]string, 0, len(init)+4)
		tokens = append(tokens, typ)
		tokens = append(tokens, hlsl.Tokenize(suffix)...)
		tokens = append(tokens, "(")
		for _, tok := range init[1 : len(init)-1] {
			switch tok {
			case "{":
				tok = "("
			case "}":
				tok = ")"
			}
			tokens = append(tokens, tok)
		}
		tokens = append(tokens, ")")
	}

	r := newBodyRewriter(c, nil, false)
	if err := r.rewrite(toPieces(tokens)); err != nil {
		return "", err
	}
	return renderPieces(r.out), nil
}

// parseRegister parses an optional ": register(xN[, spaceM])" and returns N.
func parseRegister(cur *hlsl.Cursor, class byte) (int, bool, error) {
	if !cur.PeekIs(0, ":") {
		return 0, false, nil
	}
	if !cur.PeekIs(1, "register") {
		return 0, false, cur.Malformed("expected register after \":\"")
	}
	cur.Advance(2)
	args, err := cur.Balanced("(", ")")
	if err != nil {
		return 0, false, err
	}
	if len(args) == 0 {
		return 0, false, cur.Malformed("empty register")
	}
	reg := args[0]
	if len(reg) < 2 || reg[0] != class && reg[0] != class-'a'+'A' {
		return 0, false, cur.Malformed("register %s is not a %c register", reg, class)
	}
	n, err := strconv.Atoi(reg[1:])
	if err != nil || n < 0 {
		return 0, false, cur.Malformed("invalid register %s", reg)
	}
	return n, true, nil
}
