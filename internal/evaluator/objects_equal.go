package evaluator

import (
	"bytes"
	"cmp"
	"strconv"
	"strings"

	"github.com/funvibe/quill/internal/diagnostics"
)

// maxCompareDepth stops structural comparison of self-referencing
// containers. Deeper levels compare as equal.
const maxCompareDepth = 1000

// Compare is the total order over values used for dictionary keys and
// sorting. Values of different types order by type first, so 1 and 1.0
// are distinct keys even though 1 == 1.0.
func Compare(a, b Object) int {
	return compareAt(a, b, 0)
}

func compareAt(a, b Object, depth int) int {
	if depth > maxCompareDepth {
		return 0
	}
	if ra, rb := typeRank[a.Type()], typeRank[b.Type()]; ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch x := a.(type) {
	case *None:
		return 0
	case *Boolean:
		y := b.(*Boolean)
		return cmp.Compare(boolToInt(x.Value), boolToInt(y.Value))
	case *Integer:
		return cmp.Compare(x.Value, b.(*Integer).Value)
	case *Float:
		return cmp.Compare(x.Value, b.(*Float).Value)
	case *String:
		return strings.Compare(x.Value, b.(*String).Value)
	case *List:
		y := b.(*List)
		if x == y {
			return 0
		}
		if c := cmp.Compare(len(x.Elements), len(y.Elements)); c != 0 {
			return c
		}
		for i := range x.Elements {
			if c := compareAt(x.Elements[i], y.Elements[i], depth+1); c != 0 {
				return c
			}
		}
		return 0
	case *Dictionary:
		y := b.(*Dictionary)
		if x == y {
			return 0
		}
		if c := cmp.Compare(x.Len(), y.Len()); c != 0 {
			return c
		}
		xk, yk := x.Keys(), y.Keys()
		for i := range xk {
			if c := compareAt(xk[i], yk[i], depth+1); c != 0 {
				return c
			}
		}
		xv, yv := x.Values(), y.Values()
		for i := range xv {
			if c := compareAt(xv[i], yv[i], depth+1); c != 0 {
				return c
			}
		}
		return 0
	case *Function:
		return cmp.Compare(x.id, b.(*Function).id)
	case *Builtin:
		y := b.(*Builtin)
		if c := strings.Compare(x.Name, y.Name); c != 0 {
			return c
		}
		switch {
		case x.Receiver == nil && y.Receiver == nil:
			return 0
		case x.Receiver == nil:
			return -1
		case y.Receiver == nil:
			return 1
		}
		return compareAt(x.Receiver, y.Receiver, depth+1)
	case *TypeValue:
		return strings.Compare(string(x.Name), string(b.(*TypeValue).Name))
	case *Class:
		return cmp.Compare(x.id, b.(*Class).id)
	case *Instance:
		y := b.(*Instance)
		return bytes.Compare(x.ID[:], y.ID[:])
	}
	return 0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isNumeric(obj Object) bool {
	switch obj.(type) {
	case *Integer, *Float, *Boolean:
		return true
	}
	return false
}

// valuesEqual implements ==. Booleans, integers and floats compare by
// numeric value; containers compare structurally.
func valuesEqual(a, b Object) bool {
	return equalAt(a, b, 0)
}

func equalAt(a, b Object, depth int) bool {
	if depth > maxCompareDepth {
		return true
	}
	if isNumeric(a) && isNumeric(b) {
		if a.Type() == FLOAT_OBJ || b.Type() == FLOAT_OBJ {
			return toFloat(a) == toFloat(b)
		}
		return toInt(a) == toInt(b)
	}

	switch x := a.(type) {
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		if x == y {
			return true
		}
		for i := range x.Elements {
			if !equalAt(x.Elements[i], y.Elements[i], depth+1) {
				return false
			}
		}
		return true
	case *Dictionary:
		y, ok := b.(*Dictionary)
		if !ok || x.Len() != y.Len() {
			return false
		}
		if x == y {
			return true
		}
		equal := true
		x.Each(func(k, v Object) bool {
			other, found := y.Get(k)
			if !found || !equalAt(v, other, depth+1) {
				equal = false
			}
			return equal
		})
		return equal
	}

	if a.Type() != b.Type() {
		return false
	}
	return compareAt(a, b, depth) == 0
}

func toFloat(obj Object) float64 {
	switch o := obj.(type) {
	case *Integer:
		return float64(o.Value)
	case *Float:
		return o.Value
	case *Boolean:
		return float64(boolToInt(o.Value))
	}
	return 0
}

func toInt(obj Object) int64 {
	switch o := obj.(type) {
	case *Integer:
		return o.Value
	case *Float:
		return int64(o.Value)
	case *Boolean:
		return int64(boolToInt(o.Value))
	}
	return 0
}

func isTruthy(obj Object) bool {
	switch o := obj.(type) {
	case nil, *None:
		return false
	case *Boolean:
		return o.Value
	case *Integer:
		return o.Value != 0
	case *Float:
		return o.Value != 0
	case *String:
		return o.Value != ""
	case *List:
		return len(o.Elements) > 0
	case *Dictionary:
		return o.Len() > 0
	case *TypeValue:
		return o.Name != NONE_OBJ
	}
	return true
}

// render produces the display form of obj. Strings nested in containers
// are quoted; a container already being rendered prints as [...] or {...}.
func render(obj Object, nested bool, seen map[Object]bool) string {
	if seen == nil {
		seen = make(map[Object]bool)
	}
	switch o := obj.(type) {
	case nil:
		return ""
	case *String:
		if nested {
			return strconv.Quote(o.Value)
		}
		return o.Value
	case *List:
		if seen[o] {
			return "[...]"
		}
		seen[o] = true
		defer delete(seen, o)
		parts := make([]string, len(o.Elements))
		for i, el := range o.Elements {
			parts[i] = render(el, true, seen)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Dictionary:
		if seen[o] {
			return "{...}"
		}
		seen[o] = true
		defer delete(seen, o)
		parts := make([]string, 0, o.Len())
		o.Each(func(k, v Object) bool {
			parts = append(parts, render(k, true, seen)+": "+render(v, true, seen))
			return true
		})
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return obj.Inspect()
}

// Typed accessors fail with a TypeAccess error when the value does not
// hold the requested representation.

func typeAccessError(want ObjectType, got Object) *Error {
	return newKindError(diagnostics.TypeAccess, "expected %s, got %s", want, typeName(got))
}

func typeName(obj Object) string {
	if obj == nil {
		return "no value"
	}
	return string(obj.Type())
}

func AsInteger(obj Object) (int64, error) {
	if i, ok := obj.(*Integer); ok {
		return i.Value, nil
	}
	return 0, typeAccessError(INTEGER_OBJ, obj)
}

func AsBool(obj Object) (bool, error) {
	if b, ok := obj.(*Boolean); ok {
		return b.Value, nil
	}
	return false, typeAccessError(BOOLEAN_OBJ, obj)
}

func AsString(obj Object) (string, error) {
	if s, ok := obj.(*String); ok {
		return s.Value, nil
	}
	return "", typeAccessError(STRING_OBJ, obj)
}

func AsList(obj Object) (*List, error) {
	if l, ok := obj.(*List); ok {
		return l, nil
	}
	return nil, typeAccessError(LIST_OBJ, obj)
}

func AsDictionary(obj Object) (*Dictionary, error) {
	if d, ok := obj.(*Dictionary); ok {
		return d, nil
	}
	return nil, typeAccessError(DICTIONARY_OBJ, obj)
}

func AsInstance(obj Object) (*Instance, error) {
	if i, ok := obj.(*Instance); ok {
		return i, nil
	}
	return nil, typeAccessError(INSTANCE_OBJ, obj)
}
