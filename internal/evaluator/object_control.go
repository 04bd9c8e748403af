package evaluator

import (
	"fmt"

	"github.com/funvibe/quill/internal/diagnostics"
)

// Error is the evaluator's error object. It travels up through Eval like
// any other Object and is converted to a *diagnostics.Error at the host
// boundary.
type Error struct {
	Kind    diagnostics.Kind
	Message string
	Line    int
	Column  int
	File    string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return e.Diagnostic().Error() }

// Error lets library functions return *Error through the error interface.
func (e *Error) Error() string { return e.Inspect() }

func (e *Error) Diagnostic() *diagnostics.Error {
	return &diagnostics.Error{
		Kind:    e.Kind,
		Message: e.Message,
		Line:    e.Line,
		Column:  e.Column,
		File:    e.File,
	}
}

func newError(format string, a ...interface{}) *Error {
	return &Error{Kind: diagnostics.Runtime, Message: fmt.Sprintf(format, a...)}
}

func newKindError(kind diagnostics.Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// ReturnValue carries a return signal, with an optional value, up to the
// enclosing call.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string {
	if rv.Value == nil {
		return "return"
	}
	return "return " + rv.Value.Inspect()
}

type BreakSignal struct{}

func (bs *BreakSignal) Type() ObjectType { return BREAK_SIGNAL_OBJ }
func (bs *BreakSignal) Inspect() string  { return "break" }

type ContinueSignal struct{}

func (cs *ContinueSignal) Type() ObjectType { return CONTINUE_SIGNAL_OBJ }
func (cs *ContinueSignal) Inspect() string  { return "continue" }

var (
	BREAK    = &BreakSignal{}
	CONTINUE = &ContinueSignal{}
)
