// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/hlslc/hlsl"
)

// entryInfo carries the interface lowering of the entry point into the
// rewriting of its body.
type entryInfo struct {
	// inputs maps scalar parameters bound to built-ins to their replacement.
	inputs map[string][]piece
	// structIn maps struct parameters to their per-field replacements.
	structIn map[string]*structInput

	// retPrefix replaces "return" for built-in return semantics.
	retPrefix []piece

	// out is the struct written by the entry point, either its return type
	// or the element type of the geometry output stream.
	out *StructDefinition
	// targets maps each field of out to the global it is written to.
	targets map[string]string
	// position is the global written to gl_Position before each return or
	// emitted vertex, empty when out has no SV_Position field.
	position string
	// outVar is the local of type out declared in the body; its
	// declaration is elided and its field accesses are redirected.
	outVar string
	// stream is the geometry output stream parameter.
	stream string

	temps int
}

type structInput struct {
	def    *StructDefinition
	fields map[string][]piece
}

func (e *entryInfo) temp() string {
	name := "_ret"
	if e.temps > 0 {
		name = fmt.Sprintf("_ret%d", e.temps)
	}
	e.temps++
	return name
}

// bodyRewriter converts a span of HLSL pieces into GLSL pieces.
type bodyRewriter struct {
	ctx   *ConversionContext
	entry *entryInfo // nil outside the entry point
	// strict turns sample calls on unknown identifiers into errors.
	strict bool

	out     []piece
	pending []piece
}

func newBodyRewriter(ctx *ConversionContext, entry *entryInfo, strict bool) *bodyRewriter {
	return &bodyRewriter{ctx: ctx, entry: entry, strict: strict}
}

// emit appends p, gluing a pending prefix in front of it.
func (r *bodyRewriter) emit(p piece) {
	if len(r.pending) > 0 {
		r.out = append(r.out, r.pending...)
		r.pending = nil
		if !hlsl.IsPunct(p.text) {
			p.glued = true
		}
	}
	r.out = append(r.out, p)
}

func (r *bodyRewriter) emitWords(words ...string) {
	for _, w := range words {
		r.emit(piece{text: w})
	}
}

// emitAll emits already converted pieces.
func (r *bodyRewriter) emitAll(ps []piece) {
	for _, p := range ps {
		r.emit(p)
	}
}

// emitReplacement emits repl in place of a source piece.
func (r *bodyRewriter) emitReplacement(repl []piece, glued bool) {
	for i, p := range repl {
		if i == 0 {
			p.glued = glued
		}
		r.emit(p)
	}
}

// lastOut returns the last emitted piece.
func (r *bodyRewriter) lastOut() (piece, bool) {
	if len(r.out) == 0 {
		return piece{}, false
	}
	return r.out[len(r.out)-1], true
}

// atStatementStart reports whether the next emitted piece starts a statement.
func (r *bodyRewriter) atStatementStart() bool {
	last, ok := r.lastOut()
	if !ok || last.directive {
		return true
	}
	switch last.text {
	case ";", "{", "}":
		return true
	}
	return false
}

// rewrite converts ps, appending to r.out.
func (r *bodyRewriter) rewrite(ps []piece) error {
	for i := 0; i < len(ps); {
		n, err := r.step(ps, i)
		if err != nil {
			return err
		}
		i += n
	}
	return nil
}

// step rewrites the construct starting at ps[i] and returns the number of
// pieces it consumed.
func (r *bodyRewriter) step(ps []piece, i int) (int, error) {
	p := ps[i]
	afterDot := i > 0 && ps[i-1].text == "."

	if idx, ok := hlsl.DirectiveIndex(p.text); ok {
		if idx >= len(r.ctx.directives) {
			return 0, pieceError(hlsl.ErrMalformedDeclaration, ps, i, "unknown directive placeholder %s", p.text)
		}
		r.out = append(r.out, piece{text: r.ctx.directives[idx], directive: true})
		return 1, nil
	}

	if r.entry != nil && !afterDot {
		if n, err := r.entryStep(ps, i); n > 0 || err != nil {
			return n, err
		}
	}

	if isIdentPiece(p) && !afterDot {
		if dim, ok := r.ctx.textureDim(p.text); ok {
			if n, err := r.sample(ps, i, dim); n > 0 || err != nil {
				return n, err
			}
		} else if r.strict {
			if method, ok := sampleCallAt(ps, i); ok {
				return 0, pieceError(hlsl.ErrUnknownTextureReference, ps, i,
					"%s.%s: %s is not a declared texture", p.text, method, p.text)
			}
		}
	}

	switch {
	case p.text == "[" && r.atStatementStart():
		if end, ok := attributeEnd(ps, i); ok {
			return end + 1 - i, nil
		}
	case p.text == "static" && r.atStatementStart():
		return 1, nil
	case p.text == "(":
		if n, err := r.cast(ps, i); n > 0 || err != nil {
			return n, err
		}
	}

	r.emit(r.convertWord(p, afterDot))
	return 1, nil
}

// convertWord applies the name tables and keyword escaping to one piece.
func (r *bodyRewriter) convertWord(p piece, afterDot bool) piece {
	if !isIdentPiece(p) {
		return p
	}
	if afterDot {
		p.text = r.ctx.ident(p.text)
		return p
	}
	if t, ok := r.ctx.Types[p.text]; ok {
		p.text = t
		return p
	}
	if f, ok := r.ctx.Functions[p.text]; ok {
		p.text = f
		return p
	}
	switch p.text {
	case "saturate", "clip":
		r.ctx.useHelper(p.text)
		return p
	}
	p.text = r.ctx.ident(p.text)
	return p
}

// entryStep applies the entry point rules at ps[i]. It returns 0 when none
// of them matches.
func (r *bodyRewriter) entryStep(ps []piece, i int) (int, error) {
	e := r.entry
	p := ps[i]

	switch {
	case e.out != nil && p.text == e.out.Name && !p.glued &&
		i+2 < len(ps) && isIdentPiece(ps[i+1]) && !ps[i+1].glued &&
		(ps[i+2].text == ";" || ps[i+2].text == "="):
		// Local holding the output: "S o;" or "S o = expr;".
		e.outVar = ps[i+1].text
		if ps[i+2].text == ";" {
			return 3, nil
		}
		end := statementEnd(ps, i+3)
		if end < 0 {
			return 0, pieceError(hlsl.ErrMalformedDeclaration, ps, i, "missing \";\" after %s %s", p.text, e.outVar)
		}
		return end + 1 - i, r.assignOutput(ps[i+3 : end])

	case p.text == "return":
		return r.entryReturn(ps, i)

	case e.outVar != "" && p.text == e.outVar:
		if i+2 < len(ps) && ps[i+1].text == "." && isIdentPiece(ps[i+2]) {
			target, ok := e.targets[ps[i+2].text]
			if !ok {
				return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i,
					"struct %s has no field %q", e.out.Name, ps[i+2].text)
			}
			r.emit(piece{text: target, glued: p.glued})
			return 3, nil
		}
		if i+1 < len(ps) && ps[i+1].text == "=" {
			end := statementEnd(ps, i+2)
			if end < 0 {
				return 0, pieceError(hlsl.ErrMalformedDeclaration, ps, i, "missing \";\" after assignment to %s", p.text)
			}
			return end + 1 - i, r.block(func() error { return r.assignOutput(ps[i+2 : end]) })
		}
		// The local is not declared in the output, only its fields exist.
		return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i,
			"output %s cannot be used as a value, only its fields", p.text)

	case e.stream != "" && p.text == e.stream:
		return r.streamCall(ps, i)
	}

	if si, ok := e.structIn[p.text]; ok && isIdentPiece(p) {
		if i+2 < len(ps) && ps[i+1].text == "." && isIdentPiece(ps[i+2]) {
			repl, ok := si.fields[ps[i+2].text]
			if !ok {
				return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i,
					"struct %s has no field %q", si.def.Name, ps[i+2].text)
			}
			r.emitReplacement(repl, p.glued)
			return 3, nil
		}
		// Whole struct use: rebuild the value from its fields.
		r.emit(piece{text: r.ctx.ident(si.def.Name), glued: p.glued})
		r.emitWords("(")
		for k, f := range si.def.Fields {
			if k > 0 {
				r.emitWords(",")
			}
			r.emitReplacement(si.fields[f.Name], false)
		}
		r.emitWords(")")
		return 1, nil
	}

	if repl, ok := e.inputs[p.text]; ok && isIdentPiece(p) {
		r.emitReplacement(repl, p.glued)
		return 1, nil
	}
	return 0, nil
}

// entryReturn rewrites "return expr;" inside the entry point.
func (r *bodyRewriter) entryReturn(ps []piece, i int) (int, error) {
	e := r.entry
	end := statementEnd(ps, i+1)
	if end < 0 {
		return 0, pieceError(hlsl.ErrMalformedDeclaration, ps, i, "missing \";\" after return")
	}
	expr := ps[i+1 : end]

	if (e.retPrefix == nil || len(expr) == 0) && (e.out == nil || e.stream != "") {
		// Void entry points keep their returns.
		r.emit(piece{text: "return", glued: ps[i].glued})
		if err := r.rewrite(expr); err != nil {
			return 0, err
		}
		r.emitWords(";")
		return end + 1 - i, nil
	}

	err := r.block(func() error {
		if e.retPrefix != nil && len(expr) > 0 {
			r.pending = append([]piece(nil), e.retPrefix...)
			if err := r.rewrite(expr); err != nil {
				return err
			}
			r.emitWords(";")
		} else {
			if err := r.assignOutput(expr); err != nil {
				return err
			}
			r.emitPosition()
		}
		r.emitWords("return", ";")
		return nil
	})
	return end + 1 - i, err
}

// block emits the statements written by fn. When they replace the unbraced
// body of an if, else or loop they are wrapped in braces.
func (r *bodyRewriter) block(fn func() error) error {
	open := !r.atStatementStart()
	if open {
		r.emitWords("{")
	}
	if err := fn(); err != nil {
		return err
	}
	if open {
		r.emitWords("}")
	}
	return nil
}

// streamCall rewrites stream.Append(expr); and stream.RestartStrip();.
func (r *bodyRewriter) streamCall(ps []piece, i int) (int, error) {
	if i+3 >= len(ps) || ps[i+1].text != "." || ps[i+3].text != "(" {
		return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i, "unsupported use of stream %s", ps[i].text)
	}
	method := ps[i+2].text
	closeIdx := matching(ps, i+3, "(", ")")
	if closeIdx < 0 {
		return 0, pieceError(hlsl.ErrMalformedDeclaration, ps, i, "unbalanced \"(\" in %s.%s", ps[i].text, method)
	}
	consumed := closeIdx + 1 - i
	if closeIdx+1 < len(ps) && ps[closeIdx+1].text == ";" {
		consumed++
	}

	switch method {
	case "Append":
		err := r.block(func() error {
			if err := r.assignOutput(ps[i+4 : closeIdx]); err != nil {
				return err
			}
			r.emitPosition()
			r.emitWords("EmitVertex", "(", ")", ";")
			return nil
		})
		if err != nil {
			return 0, err
		}
	case "RestartStrip":
		r.emitWords("EndPrimitive", "(", ")", ";")
	default:
		return 0, pieceError(hlsl.ErrUnsupportedConstruct, ps, i, "unsupported stream method %s", method)
	}
	return consumed, nil
}

// assignOutput writes the struct value expr to the output globals.
func (r *bodyRewriter) assignOutput(expr []piece) error {
	e := r.entry
	if len(expr) == 0 || isZeroCast(expr, e.out.Name) {
		return nil
	}

	var fields map[string][]piece
	src := ""
	switch {
	case len(expr) == 1 && expr[0].text == e.outVar:
		return nil
	case len(expr) == 1 && e.structIn[expr[0].text] != nil:
		fields = e.structIn[expr[0].text].fields
	case len(expr) == 1 && isIdentPiece(expr[0]):
		src = r.ctx.ident(expr[0].text)
	default:
		src = e.temp()
		r.emitWords(r.ctx.ident(e.out.Name), src, "=")
		if err := r.rewrite(expr); err != nil {
			return err
		}
		r.emitWords(";")
	}

	for _, f := range e.out.Fields {
		r.emitWords(e.targets[f.Name], "=")
		if fields != nil {
			repl, ok := fields[f.Name]
			if !ok {
				return hlsl.Errorf(hlsl.ErrUnsupportedConstruct,
					"cannot copy %s: input has no field %q", e.out.Name, f.Name)
			}
			r.emitReplacement(repl, false)
		} else {
			r.emitWords(src, ".", r.ctx.ident(f.Name))
		}
		r.emitWords(";")
	}
	return nil
}

// emitPosition emits the deferred gl_Position assignment.
func (r *bodyRewriter) emitPosition() {
	if r.entry.position != "" {
		r.emitWords("gl_Position", "=", r.entry.position, ";")
	}
}

// cast rewrites a C-style cast "(T)x" to the constructor "T(x)".
func (r *bodyRewriter) cast(ps []piece, i int) (int, error) {
	if i+3 >= len(ps) || ps[i+2].text != ")" {
		return 0, nil
	}
	t, ok := r.ctx.Types[ps[i+1].text]
	if !ok {
		return 0, nil
	}
	end := operandEnd(ps, i+3)
	if end <= i+3 {
		return 0, nil
	}
	r.emit(piece{text: t})
	r.emitWords("(")
	if err := r.rewrite(ps[i+3 : end]); err != nil {
		return 0, err
	}
	r.emitWords(")")
	return end - i, nil
}

// operandEnd returns the index after the unary operand starting at ps[i]:
// a parenthesized group, or a name or literal with member, index and call
// suffixes. It returns i when no operand starts there.
func operandEnd(ps []piece, i int) int {
	if i >= len(ps) {
		return i
	}
	j := i
	switch {
	case ps[j].text == "(":
		k := matching(ps, j, "(", ")")
		if k < 0 {
			return i
		}
		j = k + 1
	case isIdentPiece(ps[j]) || isNumberPiece(ps[j]):
		j++
	default:
		return i
	}
	for j < len(ps) && !ps[j].glued {
		switch ps[j].text {
		case ".":
			if j+1 >= len(ps) || !isIdentPiece(ps[j+1]) && !isNumberPiece(ps[j+1]) {
				return j
			}
			j += 2
		case "[":
			k := matching(ps, j, "[", "]")
			if k < 0 {
				return j
			}
			j = k + 1
		case "(":
			k := matching(ps, j, "(", ")")
			if k < 0 {
				return j
			}
			j = k + 1
		default:
			return j
		}
	}
	return j
}

func isNumberPiece(p piece) bool {
	return p.text != "" && p.text[0] >= '0' && p.text[0] <= '9'
}

// isZeroCast reports whether expr is "(S)0".
func isZeroCast(expr []piece, structName string) bool {
	return len(expr) == 4 && expr[0].text == "(" && expr[1].text == structName &&
		expr[2].text == ")" && expr[3].text == "0"
}

// attributeEnd reports whether ps[i] opens a statement attribute such as
// [unroll] or [loop] and returns the index of its closing bracket.
func attributeEnd(ps []piece, i int) (int, bool) {
	if i+1 >= len(ps) {
		return 0, false
	}
	switch ps[i+1].text {
	case "unroll", "loop", "branch", "flatten", "fastopt", "allow_uav_condition", "forcecase", "call":
	default:
		return 0, false
	}
	end := matching(ps, i, "[", "]")
	return end, end > 0
}

// statementEnd returns the index of the first ";" at nesting depth zero at
// or after from, or -1.
func statementEnd(ps []piece, from int) int {
	depth := 0
	for j := from; j < len(ps); j++ {
		switch ps[j].text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ";":
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// matching returns the index of the close matching the open at ps[i], or -1.
func matching(ps []piece, i int, open, close string) int {
	depth := 0
	for j := i; j < len(ps); j++ {
		switch ps[j].text {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// splitArgs splits call arguments at top-level commas.
func splitArgs(ps []piece) [][]piece {
	if len(ps) == 0 {
		return nil
	}
	var args [][]piece
	depth, start := 0, 0
	for j, p := range ps {
		switch p.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ",":
			if depth == 0 {
				args = append(args, ps[start:j])
				start = j + 1
			}
		}
	}
	return append(args, ps[start:])
}

// pieceError returns an error located in a piece sequence.
func pieceError(kind hlsl.ErrorKind, ps []piece, i int, format string, args ...any) *hlsl.Error {
	lo, hi := max(i-4, 0), min(i+4, len(ps))
	return &hlsl.Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Near:    renderPieces(ps[lo:hi]),
	}
}
