package diagnostics

import (
	"errors"
	"fmt"

	"github.com/funvibe/quill/internal/token"
)

// Kind classifies an error for reporting.
type Kind int

const (
	Syntax Kind = iota
	Runtime
	Arity
	ZeroDivision
	StackOverflow
	Thrown
	TypeAccess
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "SyntaxError"
	case Runtime:
		return "RuntimeError"
	case Arity:
		return "ArityMismatch"
	case ZeroDivision:
		return "ZeroDivisionError"
	case StackOverflow:
		return "StackOverflow"
	case Thrown:
		return "Thrown"
	case TypeAccess:
		return "TypeAccessError"
	default:
		return "Error"
	}
}

// Error is a positioned diagnostic. Line 0 marks a file-level error
// with no single offending token.
type Error struct {
	Kind    Kind
	Message string
	Line    int
	Column  int
	File    string
}

func (e *Error) Error() string {
	prefix := ""
	if e.File != "" {
		prefix = e.File + ":"
	}
	if e.Line > 0 {
		prefix += fmt.Sprintf("%d:%d:", e.Line, e.Column)
	}
	if prefix != "" {
		prefix += " "
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Kind, e.Message)
}

// NewError builds a diagnostic positioned at tok.
func NewError(kind Kind, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// At builds a diagnostic at an explicit position.
func At(kind Kind, line, column int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}

// KindOf extracts the Kind of err, reporting false for foreign errors.
func KindOf(err error) (Kind, bool) {
	var d *Error
	if errors.As(err, &d) {
		return d.Kind, true
	}
	return 0, false
}
