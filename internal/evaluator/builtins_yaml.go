package evaluator

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// yaml_decode(s) turns a YAML document into values: mappings become
// Dictionaries, sequences Lists and scalars their natural types.
// yaml_encode(v) is the reverse; dictionaries keep their key order.

func builtinYamlDecode(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("yaml_decode", args, 1); err != nil {
		return nil, err
	}
	content, err := AsString(args[0])
	if err != nil {
		return nil, err
	}
	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		return nil, newError("yaml_decode(): %v", err)
	}
	return inferFromYaml(data)
}

func inferFromYaml(data interface{}) (Object, error) {
	switch v := data.(type) {
	case nil:
		return NONE, nil
	case bool:
		return nativeBoolToBooleanObject(v), nil
	case int:
		return &Integer{Value: int64(v)}, nil
	case int64:
		return &Integer{Value: v}, nil
	case uint64:
		return &Float{Value: float64(v)}, nil
	case float64:
		return &Float{Value: v}, nil
	case string:
		return &String{Value: v}, nil
	case []interface{}:
		elements := make([]Object, len(v))
		for i, item := range v {
			obj, err := inferFromYaml(item)
			if err != nil {
				return nil, err
			}
			elements[i] = obj
		}
		return newList(elements), nil
	case map[string]interface{}:
		dict := NewDictionary()
		for k, val := range v {
			obj, err := inferFromYaml(val)
			if err != nil {
				return nil, err
			}
			dict.Set(&String{Value: k}, obj)
		}
		return dict, nil
	case map[interface{}]interface{}:
		dict := NewDictionary()
		for k, val := range v {
			key, err := inferFromYaml(k)
			if err != nil {
				return nil, err
			}
			obj, err := inferFromYaml(val)
			if err != nil {
				return nil, err
			}
			dict.Set(key, obj)
		}
		return dict, nil
	}
	return nil, newError("yaml_decode(): unsupported YAML value of type %T", data)
}

func builtinYamlEncode(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("yaml_encode", args, 1); err != nil {
		return nil, err
	}
	node, err := objectToYamlNode(args[0], map[Object]bool{})
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return nil, newError("yaml_encode(): %v", err)
	}
	return &String{Value: string(out)}, nil
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// objectToYamlNode builds the node tree directly so dictionary order is
// preserved in the output.
func objectToYamlNode(obj Object, seen map[Object]bool) (*yaml.Node, error) {
	switch o := obj.(type) {
	case *None:
		return scalarNode("!!null", "null"), nil
	case *Boolean:
		return scalarNode("!!bool", o.Inspect()), nil
	case *Integer:
		return scalarNode("!!int", strconv.FormatInt(o.Value, 10)), nil
	case *Float:
		value := o.Inspect()
		switch value {
		case "inf", "-inf", "nan":
			value = strings.Replace(value, "inf", ".inf", 1)
			value = strings.Replace(value, "nan", ".nan", 1)
		}
		return scalarNode("!!float", value), nil
	case *String:
		return scalarNode("!!str", o.Value), nil
	case *List:
		if seen[o] {
			return nil, newError("yaml_encode(): cyclic list")
		}
		seen[o] = true
		defer delete(seen, o)
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range o.Elements {
			child, err := objectToYamlNode(el, seen)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case *Dictionary:
		if seen[o] {
			return nil, newError("yaml_encode(): cyclic dictionary")
		}
		seen[o] = true
		defer delete(seen, o)
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		o.Each(func(k, v Object) bool {
			var key, val *yaml.Node
			if key, err = objectToYamlNode(k, seen); err != nil {
				return false
			}
			if val, err = objectToYamlNode(v, seen); err != nil {
				return false
			}
			node.Content = append(node.Content, key, val)
			return true
		})
		if err != nil {
			return nil, err
		}
		return node, nil
	}
	return nil, newError("yaml_encode(): cannot encode %s value", obj.Type())
}
