// Package extract locates verse records inside chapter payloads whose shape
// is not fixed by the upstream API.
package extract

import (
	"encoding/json"
)

const versesKey = "verses"

// FindVerses returns the verse records in v, or nil when there are none.
// It tries, in order, and stops at the first hit:
//
//   - an object's own "verses" list;
//   - the "verses" list of the first object inside any list-valued member;
//   - the "verses" value of the first object in a top-level list;
//   - a depth-first search for the first non-empty "verses" list.
//
// Object members are visited in document order.
func FindVerses(v any) []any {
	if isEmpty(v) {
		return nil
	}

	switch t := v.(type) {
	case Object:
		if list, ok := listAt(t, versesKey); ok {
			return list
		}
		for _, m := range t {
			list, ok := m.Value.([]any)
			if !ok {
				continue
			}
			for _, el := range list {
				obj, ok := el.(Object)
				if !ok {
					continue
				}
				if nested, ok := listAt(obj, versesKey); ok {
					return nested
				}
			}
		}
	case []any:
		for _, el := range t {
			obj, ok := el.(Object)
			if !ok {
				continue
			}
			if list, ok := listAt(obj, versesKey); ok {
				return list
			}
		}
	}

	if list, ok := search(v); ok {
		return list
	}
	return nil
}

func search(v any) ([]any, bool) {
	switch t := v.(type) {
	case Object:
		// An object's own list beats anything nested in its members.
		if list, ok := listAt(t, versesKey); ok && len(list) > 0 {
			return list, true
		}
		for _, m := range t {
			if list, ok := search(m.Value); ok {
				return list, true
			}
		}
	case []any:
		for _, el := range t {
			if list, ok := search(el); ok {
				return list, true
			}
		}
	}
	return nil, false
}

func listAt(o Object, key string) ([]any, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	return list, ok
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case Object:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	}
	return false
}
