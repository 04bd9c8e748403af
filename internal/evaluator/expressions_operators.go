package evaluator

import (
	"math"
	"strings"

	"github.com/funvibe/quill/internal/ast"
	"github.com/funvibe/quill/internal/diagnostics"
)

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, env *Environment) Object {
	right := e.evalValue(node.Right, env)
	if isError(right) {
		return right
	}

	switch node.Operator {
	case "not":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		switch r := right.(type) {
		case *Integer:
			if r.Value == math.MinInt64 {
				return integerOverflow("-")
			}
			return &Integer{Value: -r.Value}
		case *Float:
			return &Float{Value: -r.Value}
		case *Boolean:
			return &Integer{Value: -int64(boolToInt(r.Value))}
		}
	case "+":
		switch r := right.(type) {
		case *Integer, *Float:
			return r
		case *Boolean:
			return &Integer{Value: int64(boolToInt(r.Value))}
		}
	}
	return newError("unsupported operand type for unary %s: '%s'", node.Operator, right.Type())
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	left := e.evalValue(node.Left, env)
	if isError(left) {
		return left
	}

	switch node.Operator {
	case "and":
		if !isTruthy(left) {
			return FALSE
		}
		right := e.evalValue(node.Right, env)
		if isError(right) {
			return right
		}
		return nativeBoolToBooleanObject(isTruthy(right))
	case "or":
		if isTruthy(left) {
			return TRUE
		}
		right := e.evalValue(node.Right, env)
		if isError(right) {
			return right
		}
		return nativeBoolToBooleanObject(isTruthy(right))
	}

	right := e.evalValue(node.Right, env)
	if isError(right) {
		return right
	}
	if node.Operator == "in" {
		return containsValue(right, left)
	}
	return e.binaryOp(node.Operator, left, right)
}

// containsValue implements needle in haystack.
func containsValue(haystack, needle Object) Object {
	switch h := haystack.(type) {
	case *List:
		for _, el := range h.Elements {
			if valuesEqual(el, needle) {
				return TRUE
			}
		}
		return FALSE
	case *Dictionary:
		return nativeBoolToBooleanObject(h.Has(needle))
	case *String:
		s, ok := needle.(*String)
		if !ok {
			return newError("'in <String>' requires a String as left operand, not %s", needle.Type())
		}
		return nativeBoolToBooleanObject(strings.Contains(h.Value, s.Value))
	}
	return newError("argument of type '%s' is not a container", haystack.Type())
}

// binaryOp dispatches on the pair of operand types.
func (e *Evaluator) binaryOp(op string, left, right Object) Object {
	switch l := left.(type) {
	case *List:
		if r, ok := right.(*List); ok && op == "+" {
			elements := make([]Object, 0, len(l.Elements)+len(r.Elements))
			elements = append(elements, l.Elements...)
			elements = append(elements, r.Elements...)
			return newList(elements)
		}
	case *String:
		switch r := right.(type) {
		case *String:
			if res := stringOp(op, l.Value, r.Value); res != nil {
				return res
			}
		case *Integer:
			if op == "*" {
				return repeatString(l.Value, r.Value)
			}
		}
	case *Integer:
		if r, ok := right.(*String); ok && op == "*" {
			return repeatString(r.Value, l.Value)
		}
	}

	if isNumeric(left) && isNumeric(right) {
		if left.Type() == FLOAT_OBJ || right.Type() == FLOAT_OBJ {
			return floatOp(op, toFloat(left), toFloat(right), left, right)
		}
		return integerOp(op, toInt(left), toInt(right), left, right)
	}

	switch op {
	case "==":
		return nativeBoolToBooleanObject(valuesEqual(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!valuesEqual(left, right))
	}
	return unsupported(op, left, right)
}

func unsupported(op string, left, right Object) *Error {
	return newError("unsupported operand types for %s: '%s' and '%s'", op, left.Type(), right.Type())
}

func stringOp(op string, l, r string) Object {
	switch op {
	case "+":
		return &String{Value: l + r}
	case "<":
		return nativeBoolToBooleanObject(l < r)
	case "<=":
		return nativeBoolToBooleanObject(l <= r)
	case ">":
		return nativeBoolToBooleanObject(l > r)
	case ">=":
		return nativeBoolToBooleanObject(l >= r)
	}
	return nil
}

func repeatString(s string, n int64) Object {
	if n <= 0 {
		return &String{Value: ""}
	}
	return &String{Value: strings.Repeat(s, int(n))}
}

func zeroDivision(op string) *Error {
	return newKindError(diagnostics.ZeroDivision, "division by zero in '%s'", op)
}

func integerOp(op string, a, b int64, left, right Object) Object {
	switch op {
	case "+":
		c := a + b
		if (b > 0 && c < a) || (b < 0 && c > a) {
			return integerOverflow(op)
		}
		return &Integer{Value: c}
	case "-":
		c := a - b
		if (b < 0 && c < a) || (b > 0 && c > a) {
			return integerOverflow(op)
		}
		return &Integer{Value: c}
	case "*":
		c, ok := mulInt(a, b)
		if !ok {
			return integerOverflow(op)
		}
		return &Integer{Value: c}
	case "/", "//":
		if b == 0 {
			return zeroDivision(op)
		}
		if a == math.MinInt64 && b == -1 {
			return integerOverflow(op)
		}
		return &Integer{Value: a / b}
	case "%":
		if b == 0 {
			return zeroDivision(op)
		}
		return &Integer{Value: a % b}
	case "**":
		if b < 0 {
			return &Float{Value: math.Pow(float64(a), float64(b))}
		}
		c, ok := intPow(a, b)
		if !ok {
			return integerOverflow(op)
		}
		return &Integer{Value: c}
	case "<":
		return nativeBoolToBooleanObject(a < b)
	case "<=":
		return nativeBoolToBooleanObject(a <= b)
	case ">":
		return nativeBoolToBooleanObject(a > b)
	case ">=":
		return nativeBoolToBooleanObject(a >= b)
	case "==":
		return nativeBoolToBooleanObject(a == b)
	case "!=":
		return nativeBoolToBooleanObject(a != b)
	}
	return unsupported(op, left, right)
}

// integerOverflow reports an Integer result outside the 64-bit range.
// Integers never wrap.
func integerOverflow(op string) *Error {
	return newError("integer overflow in '%s'", op)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	return c, c/b == a
}

func intPow(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		var ok bool
		if exp&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

func floatOp(op string, a, b float64, left, right Object) Object {
	switch op {
	case "+":
		return &Float{Value: a + b}
	case "-":
		return &Float{Value: a - b}
	case "*":
		return &Float{Value: a * b}
	case "/":
		if b == 0 {
			return zeroDivision(op)
		}
		return &Float{Value: a / b}
	case "//":
		if b == 0 {
			return zeroDivision(op)
		}
		return &Float{Value: math.Trunc(a / b)}
	case "%":
		if b == 0 {
			return zeroDivision(op)
		}
		return &Float{Value: math.Mod(a, b)}
	case "**":
		return &Float{Value: math.Pow(a, b)}
	case "<":
		return nativeBoolToBooleanObject(a < b)
	case "<=":
		return nativeBoolToBooleanObject(a <= b)
	case ">":
		return nativeBoolToBooleanObject(a > b)
	case ">=":
		return nativeBoolToBooleanObject(a >= b)
	case "==":
		return nativeBoolToBooleanObject(a == b)
	case "!=":
		return nativeBoolToBooleanObject(a != b)
	}
	return unsupported(op, left, right)
}
