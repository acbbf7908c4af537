package expander

import (
	"errors"
	"fmt"
	"go/token"

	"github.com/jhump/docfile/diag"
)

// Kind categorizes expansion failures.
type Kind int

const (
	// KindSyntax means the annotation does not carry a string literal where
	// one is required.
	KindSyntax Kind = iota + 1
	// KindPath means the string literal cannot form a filesystem path.
	KindPath
	// KindIO means the referenced file could not be opened or read.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindPath:
		return "path"
	case KindIO:
		return "io"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}

// Code returns the diagnostic code used to report errors of this kind.
func (k Kind) Code() diag.Code {
	switch k {
	case KindSyntax:
		return diag.DocFileSyntax
	case KindPath:
		return diag.DocFilePath
	case KindIO:
		return diag.DocFileIO
	default:
		return diag.UnknownCode
	}
}

var (
	errNotStringLiteral = errors.New("expected a string literal")
	errNULInPath        = errors.New("path contains NUL character")
	errInvalidUTF8      = errors.New("file is not valid UTF-8 text")
)

// Error is an expansion failure anchored at a source span. It only carries
// what is needed to report a diagnostic: the kind, the span, and the cause.
type Error struct {
	Kind  Kind
	Span  diag.Span
	Cause error
}

// Error implements the error interface. The message is the one used for
// the error's diagnostic, prefixed with the error's location.
func (e *Error) Error() string {
	if e.Span.IsValid() {
		return fmt.Sprintf("%s: %s", e.Span.Start, e.Message())
	}
	return e.Message()
}

// Message returns the human-readable diagnostic message, without location.
func (e *Error) Message() string {
	switch e.Kind {
	case KindSyntax:
		return "invalid use of the file-reference annotation; expected a string literal"
	case KindPath:
		return fmt.Sprintf("invalid path in file-reference annotation: %v", e.Cause)
	case KindIO:
		return fmt.Sprintf("could not read documentation file: %v", e.Cause)
	default:
		return fmt.Sprintf("file-reference annotation: %v", e.Cause)
	}
}

// Underlying returns the underlying error.
func (e *Error) Underlying() error {
	return e.Cause
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Pos returns the location in source where the error was encountered.
func (e *Error) Pos() token.Position {
	return e.Span.Start
}

func newSyntaxError(span diag.Span) *Error {
	return &Error{Kind: KindSyntax, Span: span, Cause: errNotStringLiteral}
}

func newPathError(span diag.Span) *Error {
	return &Error{Kind: KindPath, Span: span, Cause: errNULInPath}
}

// newIOError maps a failure from the filesystem layer into an expansion
// error anchored at the given span.
func newIOError(span diag.Span, err error) *Error {
	return &Error{Kind: KindIO, Span: span, Cause: err}
}
