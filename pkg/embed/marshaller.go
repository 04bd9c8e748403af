package quill

import (
	"fmt"
	"reflect"

	"github.com/funvibe/quill/internal/evaluator"
)

var (
	objectType = reflect.TypeOf((*evaluator.Object)(nil)).Elem()
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	anyType    = reflect.TypeOf((*interface{})(nil)).Elem()
)

// Marshaller handles conversion between Go and Quill values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a Quill Object. Structs become
// dictionaries keyed by exported field name; functions become builtins.
func (m *Marshaller) ToValue(val interface{}) (evaluator.Object, error) {
	if val == nil {
		return evaluator.NONE, nil
	}

	// Check if already an Object
	if obj, ok := val.(evaluator.Object); ok {
		return obj, nil
	}

	v := reflect.ValueOf(val)
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return evaluator.NONE, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &evaluator.Integer{Value: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &evaluator.Integer{Value: int64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &evaluator.Float{Value: v.Float()}, nil
	case reflect.Bool:
		if v.Bool() {
			return evaluator.TRUE, nil
		}
		return evaluator.FALSE, nil
	case reflect.String:
		return &evaluator.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		return m.sliceToList(v)
	case reflect.Map:
		return m.mapToDictionary(v)
	case reflect.Struct:
		return m.structToDictionary(v)
	case reflect.Func:
		return &evaluator.Builtin{Name: "host", Fn: m.wrapFunc(v)}, nil
	default:
		return nil, fmt.Errorf("unsupported Go type %s", v.Type())
	}
}

// FromValue converts a Quill Object to a Go value.
// targetType is optional; if provided, tries to convert to that type.
func (m *Marshaller) FromValue(obj evaluator.Object, targetType reflect.Type) (interface{}, error) {
	return m.fromValue(obj, targetType, make(map[evaluator.Object]bool))
}

func (m *Marshaller) fromValue(obj evaluator.Object, targetType reflect.Type, active map[evaluator.Object]bool) (interface{}, error) {
	if obj == nil {
		return nil, nil
	}

	// If target type is evaluator.Object, return as is
	if targetType == objectType {
		return obj, nil
	}

	switch o := obj.(type) {
	case *evaluator.None:
		return nil, nil
	case *evaluator.Integer:
		if targetType != nil {
			switch targetType.Kind() {
			case reflect.Int64:
				return o.Value, nil
			case reflect.Float32, reflect.Float64:
				return float64(o.Value), nil
			}
		}
		return int(o.Value), nil // Default to int
	case *evaluator.Float:
		return o.Value, nil
	case *evaluator.Boolean:
		return o.Value, nil
	case *evaluator.String:
		return o.Value, nil
	case *evaluator.TypeValue:
		return string(o.Name), nil
	case *evaluator.List:
		if active[o] {
			return nil, fmt.Errorf("cannot convert cyclic List")
		}
		active[o] = true
		defer delete(active, o)
		return m.listToSlice(o, targetType, active)
	case *evaluator.Dictionary:
		if active[o] {
			return nil, fmt.Errorf("cannot convert cyclic Dictionary")
		}
		active[o] = true
		defer delete(active, o)
		if targetType != nil && targetType.Kind() == reflect.Struct {
			return m.dictionaryToStruct(o, targetType, active)
		}
		return m.dictionaryToMap(o, targetType, active)
	case *evaluator.Instance:
		if active[o] {
			return nil, fmt.Errorf("cannot convert cyclic %s instance", o.Class.Name)
		}
		active[o] = true
		defer delete(active, o)
		return m.instanceToMap(o, active)
	case *evaluator.Function, *evaluator.Builtin, *evaluator.Class:
		// Callables stay Objects so they can be handed back to Call.
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type for conversion: %s", o.Type())
	}
}

// assignable converts a value produced by FromValue to t.
func assignable(val interface{}, t reflect.Type) (reflect.Value, error) {
	if val == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	// Integers convert to string as runes in Go; that is never wanted here.
	if rv.Type().ConvertibleTo(t) && (t.Kind() != reflect.String || rv.Kind() == reflect.String) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), t)
}

func (m *Marshaller) sliceToList(v reflect.Value) (*evaluator.List, error) {
	elements := make([]evaluator.Object, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elements[i] = val
	}
	return &evaluator.List{Elements: elements}, nil
}

func (m *Marshaller) mapToDictionary(v reflect.Value) (*evaluator.Dictionary, error) {
	result := evaluator.NewDictionary()
	iter := v.MapRange()
	for iter.Next() {
		key, err := m.ToValue(iter.Key().Interface())
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		val, err := m.ToValue(iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		result.Set(key, val)
	}
	return result, nil
}

func (m *Marshaller) structToDictionary(v reflect.Value) (*evaluator.Dictionary, error) {
	result := evaluator.NewDictionary()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // Skip unexported fields
			continue
		}
		val, err := m.ToValue(v.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		result.Set(&evaluator.String{Value: field.Name}, val)
	}
	return result, nil
}

func (m *Marshaller) listToSlice(l *evaluator.List, targetType reflect.Type, active map[evaluator.Object]bool) (interface{}, error) {
	// If targetType is nil, default to []interface{}
	elemType := anyType
	if targetType != nil && targetType.Kind() == reflect.Slice {
		elemType = targetType.Elem()
	}

	slice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(l.Elements))
	for _, el := range l.Elements {
		val, err := m.fromValue(el, elemType, active)
		if err != nil {
			return nil, err
		}
		rv, err := assignable(val, elemType)
		if err != nil {
			return nil, err
		}
		slice = reflect.Append(slice, rv)
	}
	return slice.Interface(), nil
}

func (m *Marshaller) dictionaryToMap(d *evaluator.Dictionary, targetType reflect.Type, active map[evaluator.Object]bool) (interface{}, error) {
	keyType, valType := anyType, anyType
	switch {
	case targetType != nil && targetType.Kind() == reflect.Map:
		keyType, valType = targetType.Key(), targetType.Elem()
	case stringKeyed(d):
		keyType = reflect.TypeOf("")
	}

	result := reflect.MakeMapWithSize(reflect.MapOf(keyType, valType), d.Len())
	var err error
	d.Each(func(k, v evaluator.Object) bool {
		var key, val interface{}
		if key, err = m.fromValue(k, keyType, active); err != nil {
			err = fmt.Errorf("map key: %w", err)
			return false
		}
		if key != nil && !reflect.TypeOf(key).Comparable() {
			err = fmt.Errorf("map key: %s is not usable as a Go map key", k.Type())
			return false
		}
		if val, err = m.fromValue(v, valType, active); err != nil {
			err = fmt.Errorf("map value: %w", err)
			return false
		}
		var kv, vv reflect.Value
		if kv, err = assignable(key, keyType); err != nil {
			return false
		}
		if vv, err = assignable(val, valType); err != nil {
			return false
		}
		result.SetMapIndex(kv, vv)
		return true
	})
	if err != nil {
		return nil, err
	}
	return result.Interface(), nil
}

func stringKeyed(d *evaluator.Dictionary) bool {
	if d.Len() == 0 {
		return false
	}
	for _, k := range d.Keys() {
		if _, ok := k.(*evaluator.String); !ok {
			return false
		}
	}
	return true
}

// dictionaryToStruct fills exported fields from the string keys of d.
// Keys without a matching field are ignored.
func (m *Marshaller) dictionaryToStruct(d *evaluator.Dictionary, targetType reflect.Type, active map[evaluator.Object]bool) (interface{}, error) {
	result := reflect.New(targetType).Elem()
	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		obj, ok := d.Get(&evaluator.String{Value: field.Name})
		if !ok {
			continue
		}
		val, err := m.fromValue(obj, field.Type, active)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		fv, err := assignable(val, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		result.Field(i).Set(fv)
	}
	return result.Interface(), nil
}

// instanceToMap converts the data attributes of an instance; methods are
// skipped.
func (m *Marshaller) instanceToMap(inst *evaluator.Instance, active map[evaluator.Object]bool) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	for _, name := range inst.Attrs.Names() {
		obj, _ := inst.Attrs.Get(name)
		switch obj.(type) {
		case *evaluator.Function, *evaluator.Builtin:
			continue
		}
		val, err := m.fromValue(obj, nil, active)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		result[name] = val
	}
	return result, nil
}

// wrapFunc adapts a Go function to the builtin calling contract. A
// trailing error result is reported as a runtime error; a function with
// no other results produces no value.
func (m *Marshaller) wrapFunc(fn reflect.Value) evaluator.BuiltinFunction {
	fnType := fn.Type()
	return func(e *evaluator.Evaluator, env *evaluator.Environment, args ...evaluator.Object) (evaluator.Object, error) {
		numIn := fnType.NumIn()
		isVariadic := fnType.IsVariadic()

		// Check arg count
		if isVariadic {
			if len(args) < numIn-1 {
				return nil, fmt.Errorf("expected at least %d arguments, got %d", numIn-1, len(args))
			}
		} else if len(args) != numIn {
			return nil, fmt.Errorf("expected %d arguments, got %d", numIn, len(args))
		}

		goArgs := make([]reflect.Value, len(args))
		for i, arg := range args {
			var targetType reflect.Type
			if isVariadic && i >= numIn-1 {
				targetType = fnType.In(numIn - 1).Elem()
			} else {
				targetType = fnType.In(i)
			}

			val, err := m.FromValue(arg, targetType)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			rv, err := assignable(val, targetType)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			goArgs[i] = rv
		}

		results := fn.Call(goArgs)

		if n := len(results); n > 0 && fnType.Out(n-1) == errorType {
			if err, _ := results[n-1].Interface().(error); err != nil {
				return nil, err
			}
			results = results[:n-1]
		}
		switch len(results) {
		case 0:
			return nil, nil
		case 1:
			return m.ToValue(results[0].Interface())
		}
		// Several results become a list.
		elements := make([]evaluator.Object, len(results))
		for i, res := range results {
			val, err := m.ToValue(res.Interface())
			if err != nil {
				return nil, err
			}
			elements[i] = val
		}
		return &evaluator.List{Elements: elements}, nil
	}
}
