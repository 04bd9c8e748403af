package evaluator

import (
	"errors"

	"github.com/funvibe/quill/internal/diagnostics"
)

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// isSignal reports whether obj is a break, continue or return signal.
func isSignal(obj Object) bool {
	if obj == nil {
		return false
	}
	switch obj.Type() {
	case RETURN_VALUE_OBJ, BREAK_SIGNAL_OBJ, CONTINUE_SIGNAL_OBJ:
		return true
	}
	return false
}

// fromGoError wraps an error returned by a library function or a
// collaborator. Positioned diagnostics keep their location.
func fromGoError(err error) *Error {
	var evalErr *Error
	if errors.As(err, &evalErr) {
		return evalErr
	}
	var diag *diagnostics.Error
	if errors.As(err, &diag) {
		return &Error{
			Kind:    diag.Kind,
			Message: diag.Message,
			Line:    diag.Line,
			Column:  diag.Column,
			File:    diag.File,
		}
	}
	return newError("%s", err.Error())
}
