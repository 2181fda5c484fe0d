// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes conversion errors.
type ErrorKind uint8

const (
	// ErrMalformedDeclaration indicates a declaration or function that runs
	// out of tokens before reaching its terminator.
	ErrMalformedDeclaration ErrorKind = iota

	// ErrUnknownTextureReference indicates a Sample call on an identifier
	// that was never declared as a texture.
	ErrUnknownTextureReference

	// ErrUnsupportedConstruct indicates input outside the supported HLSL subset.
	ErrUnsupportedConstruct
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedDeclaration:
		return "MalformedDeclaration"
	case ErrUnknownTextureReference:
		return "UnknownTextureReference"
	case ErrUnsupportedConstruct:
		return "UnsupportedConstruct"
	default:
		return "Unknown"
	}
}

// Span identifies a range of tokens [Start, End).
type Span struct {
	Start int
	End   int
}

// Error represents a conversion error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Span optionally identifies the offending tokens.
	Span *Span

	// Near holds the source text around Span, re-joined from tokens.
	Near string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("hlsl %s: %s", e.Kind, e.Message)
	if e.Span != nil {
		msg = fmt.Sprintf("hlsl %s at token %d: %s", e.Kind, e.Span.Start, e.Message)
	}
	if e.Near != "" {
		msg += fmt.Sprintf(" (near %q)", e.Near)
	}
	return msg
}

// NewError creates a new error without span information.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a new error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsMalformedDeclaration returns true if the error is ErrMalformedDeclaration.
func (e *Error) IsMalformedDeclaration() bool {
	return e.Kind == ErrMalformedDeclaration
}

// IsUnknownTextureReference returns true if the error is ErrUnknownTextureReference.
func (e *Error) IsUnknownTextureReference() bool {
	return e.Kind == ErrUnknownTextureReference
}

// IsUnsupportedConstruct returns true if the error is ErrUnsupportedConstruct.
func (e *Error) IsUnsupportedConstruct() bool {
	return e.Kind == ErrUnsupportedConstruct
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
