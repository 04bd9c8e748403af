package evaluator

import (
	"sync/atomic"
)

type ObjectType string

// Value types. The names double as the type keywords of the language, so
// type(1) == Integer compares these strings.
const (
	NONE_OBJ       ObjectType = "NoneType"
	BOOLEAN_OBJ    ObjectType = "Boolean"
	INTEGER_OBJ    ObjectType = "Integer"
	FLOAT_OBJ      ObjectType = "Float"
	STRING_OBJ     ObjectType = "String"
	LIST_OBJ       ObjectType = "List"
	DICTIONARY_OBJ ObjectType = "Dictionary"
	FUNCTION_OBJ   ObjectType = "Function"
	BUILTIN_OBJ    ObjectType = "Builtin"
	TYPE_OBJ       ObjectType = "Type"
	CLASS_OBJ      ObjectType = "Class"
	INSTANCE_OBJ   ObjectType = "Instance"

	// Internal objects that never reach user code as values.
	ERROR_OBJ           ObjectType = "ERROR"
	RETURN_VALUE_OBJ    ObjectType = "RETURN_VALUE"
	BREAK_SIGNAL_OBJ    ObjectType = "BREAK_SIGNAL"
	CONTINUE_SIGNAL_OBJ ObjectType = "CONTINUE_SIGNAL"
)

// typeRank orders value types for the dictionary key total order.
var typeRank = map[ObjectType]int{
	NONE_OBJ:       0,
	BOOLEAN_OBJ:    1,
	INTEGER_OBJ:    2,
	FLOAT_OBJ:      3,
	STRING_OBJ:     4,
	LIST_OBJ:       5,
	DICTIONARY_OBJ: 6,
	FUNCTION_OBJ:   7,
	BUILTIN_OBJ:    8,
	TYPE_OBJ:       9,
	CLASS_OBJ:      10,
	INSTANCE_OBJ:   11,
}

// Object is a runtime value. A nil Object is the absent result of a
// statement or a call that returned nothing.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// serial hands out identities for functions and classes, which have no
// natural ordering of their own.
var serial atomic.Uint64

func nextSerial() uint64 { return serial.Add(1) }
