package evaluator

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Member functions receive their receiver as args[0].

func memberArgs(typ ObjectType, name string, args []Object, min, max int) ([]Object, error) {
	rest := args[1:]
	if len(rest) < min || len(rest) > max {
		want := strconv.Itoa(min)
		if min != max {
			want += " to " + strconv.Itoa(max)
		}
		return nil, arityError(string(typ)+"."+name, want, len(rest))
	}
	return rest, nil
}

func registerListMembers(env *Environment) {
	members := map[string]BuiltinFunction{
		"append": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(LIST_OBJ, "append", args, 1, 1)
			if err != nil {
				return nil, err
			}
			list := args[0].(*List)
			list.Elements = append(list.Elements, rest[0])
			return nil, nil
		},
		"insert": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(LIST_OBJ, "insert", args, 2, 2)
			if err != nil {
				return nil, err
			}
			list := args[0].(*List)
			pos, err := AsInteger(rest[0])
			if err != nil {
				return nil, err
			}
			n := int64(len(list.Elements))
			if pos < 0 {
				pos += n
			}
			if pos < 0 {
				pos = 0
			}
			if pos > n {
				pos = n
			}
			list.Elements = append(list.Elements, nil)
			copy(list.Elements[pos+1:], list.Elements[pos:])
			list.Elements[pos] = rest[1]
			return nil, nil
		},
		"remove": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(LIST_OBJ, "remove", args, 1, 1)
			if err != nil {
				return nil, err
			}
			list := args[0].(*List)
			for i, el := range list.Elements {
				if valuesEqual(el, rest[0]) {
					list.Elements = append(list.Elements[:i], list.Elements[i+1:]...)
					return nil, nil
				}
			}
			return nil, newError("List.remove(): %s not in list", render(rest[0], true, nil))
		},
		"pop": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(LIST_OBJ, "pop", args, 0, 1)
			if err != nil {
				return nil, err
			}
			list := args[0].(*List)
			if len(list.Elements) == 0 {
				return nil, newError("List.pop(): pop from empty list")
			}
			var index Object = &Integer{Value: -1}
			if len(rest) == 1 {
				index = rest[0]
			}
			idx, errObj := normalizeIndex(list, index, len(list.Elements))
			if errObj != nil {
				return nil, errObj.(*Error)
			}
			val := list.Elements[idx]
			list.Elements = append(list.Elements[:idx], list.Elements[idx+1:]...)
			return val, nil
		},
		"size": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			if _, err := memberArgs(LIST_OBJ, "size", args, 0, 0); err != nil {
				return nil, err
			}
			return &Integer{Value: int64(len(args[0].(*List).Elements))}, nil
		},
		"copy": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			if _, err := memberArgs(LIST_OBJ, "copy", args, 0, 0); err != nil {
				return nil, err
			}
			return args[0].(*List).Copy(), nil
		},
		"index": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(LIST_OBJ, "index", args, 1, 1)
			if err != nil {
				return nil, err
			}
			for i, el := range args[0].(*List).Elements {
				if valuesEqual(el, rest[0]) {
					return &Integer{Value: int64(i)}, nil
				}
			}
			return &Integer{Value: -1}, nil
		},
		"reverse": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			if _, err := memberArgs(LIST_OBJ, "reverse", args, 0, 0); err != nil {
				return nil, err
			}
			els := args[0].(*List).Elements
			for i, j := 0, len(els)-1; i < j; i, j = i+1, j-1 {
				els[i], els[j] = els[j], els[i]
			}
			return nil, nil
		},
		"sort": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(LIST_OBJ, "sort", args, 0, 1)
			if err != nil {
				return nil, err
			}
			descending := false
			if len(rest) == 1 {
				if descending, err = AsBool(rest[0]); err != nil {
					return nil, err
				}
			}
			els := args[0].(*List).Elements
			sort.SliceStable(els, func(i, j int) bool {
				if descending {
					return sortLess(els[j], els[i])
				}
				return sortLess(els[i], els[j])
			})
			return nil, nil
		},
		"join": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(LIST_OBJ, "join", args, 0, 1)
			if err != nil {
				return nil, err
			}
			sep := ""
			if len(rest) == 1 {
				if sep, err = AsString(rest[0]); err != nil {
					return nil, err
				}
			}
			els := args[0].(*List).Elements
			parts := make([]string, len(els))
			for i, el := range els {
				parts[i] = render(el, false, nil)
			}
			return &String{Value: strings.Join(parts, sep)}, nil
		},
	}
	for name, fn := range members {
		env.AddMember(LIST_OBJ, name, fn)
	}
}

// sortLess orders numbers by value across Integer, Float and Boolean and
// falls back to the key order for everything else.
func sortLess(a, b Object) bool {
	if isNumeric(a) && isNumeric(b) {
		return toFloat(a) < toFloat(b)
	}
	return Compare(a, b) < 0
}

func registerDictionaryMembers(env *Environment) {
	members := map[string]BuiltinFunction{
		"keys": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			if _, err := memberArgs(DICTIONARY_OBJ, "keys", args, 0, 0); err != nil {
				return nil, err
			}
			return newList(args[0].(*Dictionary).Keys()), nil
		},
		"values": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			if _, err := memberArgs(DICTIONARY_OBJ, "values", args, 0, 0); err != nil {
				return nil, err
			}
			return newList(args[0].(*Dictionary).Values()), nil
		},
		"items": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			if _, err := memberArgs(DICTIONARY_OBJ, "items", args, 0, 0); err != nil {
				return nil, err
			}
			items, _ := iterationItems(args[0], true)
			return newList(items), nil
		},
		"size": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			if _, err := memberArgs(DICTIONARY_OBJ, "size", args, 0, 0); err != nil {
				return nil, err
			}
			return &Integer{Value: int64(args[0].(*Dictionary).Len())}, nil
		},
		"copy": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			if _, err := memberArgs(DICTIONARY_OBJ, "copy", args, 0, 0); err != nil {
				return nil, err
			}
			return args[0].(*Dictionary).Copy(), nil
		},
		"get": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(DICTIONARY_OBJ, "get", args, 1, 2)
			if err != nil {
				return nil, err
			}
			if val, ok := args[0].(*Dictionary).Get(rest[0]); ok {
				return val, nil
			}
			if len(rest) == 2 {
				return rest[1], nil
			}
			return NONE, nil
		},
		"remove": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(DICTIONARY_OBJ, "remove", args, 1, 1)
			if err != nil {
				return nil, err
			}
			dict := args[0].(*Dictionary)
			val, ok := dict.Get(rest[0])
			if !ok {
				return nil, newError("Dictionary.remove(): key not found: %s", render(rest[0], true, nil))
			}
			dict.Remove(rest[0])
			return val, nil
		},
		"update": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(DICTIONARY_OBJ, "update", args, 1, 1)
			if err != nil {
				return nil, err
			}
			other, err := AsDictionary(rest[0])
			if err != nil {
				return nil, err
			}
			dict := args[0].(*Dictionary)
			// Snapshot first so d.update(d) terminates.
			keys, values := other.Keys(), other.Values()
			for i, key := range keys {
				dict.Set(key, values[i])
			}
			return nil, nil
		},
		"contains": func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(DICTIONARY_OBJ, "contains", args, 1, 1)
			if err != nil {
				return nil, err
			}
			return nativeBoolToBooleanObject(args[0].(*Dictionary).Has(rest[0])), nil
		},
	}
	for name, fn := range members {
		env.AddMember(DICTIONARY_OBJ, name, fn)
	}
}

func registerStringMembers(env *Environment) {
	unary := map[string]func(string) string{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": func(s string) string { return cases.Title(language.Und).String(s) },
		"strip": strings.TrimSpace,
	}
	for name, fn := range unary {
		name, fn := name, fn
		env.AddMember(STRING_OBJ, name, func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			if _, err := memberArgs(STRING_OBJ, name, args, 0, 0); err != nil {
				return nil, err
			}
			return &String{Value: fn(args[0].(*String).Value)}, nil
		})
	}

	predicates := map[string]func(string, string) bool{
		"startswith": strings.HasPrefix,
		"endswith":   strings.HasSuffix,
	}
	for name, fn := range predicates {
		name, fn := name, fn
		env.AddMember(STRING_OBJ, name, func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
			rest, err := memberArgs(STRING_OBJ, name, args, 1, 1)
			if err != nil {
				return nil, err
			}
			arg, err := AsString(rest[0])
			if err != nil {
				return nil, err
			}
			return nativeBoolToBooleanObject(fn(args[0].(*String).Value, arg)), nil
		})
	}

	env.AddMember(STRING_OBJ, "size", func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
		if _, err := memberArgs(STRING_OBJ, "size", args, 0, 0); err != nil {
			return nil, err
		}
		return &Integer{Value: int64(utf8.RuneCountInString(args[0].(*String).Value))}, nil
	})

	env.AddMember(STRING_OBJ, "split", func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
		rest, err := memberArgs(STRING_OBJ, "split", args, 0, 1)
		if err != nil {
			return nil, err
		}
		s := args[0].(*String).Value
		var parts []string
		if len(rest) == 0 {
			parts = strings.Fields(s)
		} else {
			sep, err := AsString(rest[0])
			if err != nil {
				return nil, err
			}
			if sep == "" {
				return nil, newError("String.split(): empty separator")
			}
			parts = strings.Split(s, sep)
		}
		elements := make([]Object, len(parts))
		for i, p := range parts {
			elements[i] = &String{Value: p}
		}
		return newList(elements), nil
	})

	env.AddMember(STRING_OBJ, "replace", func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
		rest, err := memberArgs(STRING_OBJ, "replace", args, 2, 2)
		if err != nil {
			return nil, err
		}
		old, err := AsString(rest[0])
		if err != nil {
			return nil, err
		}
		repl, err := AsString(rest[1])
		if err != nil {
			return nil, err
		}
		return &String{Value: strings.ReplaceAll(args[0].(*String).Value, old, repl)}, nil
	})

	env.AddMember(STRING_OBJ, "find", func(e *Evaluator, env *Environment, args ...Object) (Object, error) {
		rest, err := memberArgs(STRING_OBJ, "find", args, 1, 1)
		if err != nil {
			return nil, err
		}
		sub, err := AsString(rest[0])
		if err != nil {
			return nil, err
		}
		s := args[0].(*String).Value
		idx := strings.Index(s, sub)
		if idx < 0 {
			return &Integer{Value: -1}, nil
		}
		return &Integer{Value: int64(utf8.RuneCountInString(s[:idx]))}, nil
	})
}
