package evaluator

import (
	"github.com/emirpasic/gods/maps/treemap"
)

// List is a shared, mutable sequence. Every alias of a *List observes
// mutations made through any other.
type List struct {
	Elements []Object
}

func newList(elements []Object) *List {
	if elements == nil {
		elements = []Object{}
	}
	return &List{Elements: elements}
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string  { return render(l, false, nil) }

// Copy returns an independent list holding the same elements.
func (l *List) Copy() *List {
	elements := make([]Object, len(l.Elements))
	copy(elements, l.Elements)
	return newList(elements)
}

// Dictionary is a shared, mutable map ordered by the key total order of
// Compare. Keys and values are Objects.
type Dictionary struct {
	store *treemap.Map
}

func NewDictionary() *Dictionary {
	return &Dictionary{store: treemap.NewWith(compareKeys)}
}

func compareKeys(a, b interface{}) int {
	return Compare(a.(Object), b.(Object))
}

func (d *Dictionary) Type() ObjectType { return DICTIONARY_OBJ }
func (d *Dictionary) Inspect() string  { return render(d, false, nil) }

// Set inserts or replaces key. Container keys are deep-copied so a later
// mutation of the caller's value cannot break the store's ordering.
func (d *Dictionary) Set(key, value Object) {
	d.store.Put(deepCopy(key), value)
}

func (d *Dictionary) Get(key Object) (Object, bool) {
	v, ok := d.store.Get(key)
	if !ok {
		return nil, false
	}
	return v.(Object), true
}

func (d *Dictionary) Has(key Object) bool {
	_, ok := d.store.Get(key)
	return ok
}

func (d *Dictionary) Remove(key Object) bool {
	if !d.Has(key) {
		return false
	}
	d.store.Remove(key)
	return true
}

func (d *Dictionary) Len() int { return d.store.Size() }

// Keys returns the keys in ascending order.
func (d *Dictionary) Keys() []Object {
	keys := d.store.Keys()
	out := make([]Object, len(keys))
	for i, k := range keys {
		out[i] = k.(Object)
	}
	return out
}

func (d *Dictionary) Values() []Object {
	values := d.store.Values()
	out := make([]Object, len(values))
	for i, v := range values {
		out[i] = v.(Object)
	}
	return out
}

// Each visits entries in key order until fn returns false.
func (d *Dictionary) Each(fn func(key, value Object) bool) {
	it := d.store.Iterator()
	for it.Next() {
		if !fn(it.Key().(Object), it.Value().(Object)) {
			return
		}
	}
}

func (d *Dictionary) Copy() *Dictionary {
	out := NewDictionary()
	d.Each(func(k, v Object) bool {
		out.store.Put(k, v)
		return true
	})
	return out
}

// deepCopy duplicates List and Dictionary structure recursively. Other
// values are returned as is.
func deepCopy(obj Object) Object {
	return deepCopySeen(obj, map[Object]Object{})
}

func deepCopySeen(obj Object, seen map[Object]Object) Object {
	switch o := obj.(type) {
	case *List:
		if c, ok := seen[o]; ok {
			return c
		}
		c := &List{Elements: make([]Object, len(o.Elements))}
		seen[o] = c
		for i, el := range o.Elements {
			c.Elements[i] = deepCopySeen(el, seen)
		}
		return c
	case *Dictionary:
		if c, ok := seen[o]; ok {
			return c
		}
		c := NewDictionary()
		seen[o] = c
		o.Each(func(k, v Object) bool {
			c.store.Put(k, deepCopySeen(v, seen))
			return true
		})
		return c
	}
	return obj
}
