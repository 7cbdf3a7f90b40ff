package entities

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// JSON Schema keywords emitted by the generator.
const (
	KeySchema               = "$schema"
	KeyRef                  = "$ref"
	KeyTitle                = "title"
	KeyType                 = "type"
	KeyProperties           = "properties"
	KeyRequired             = "required"
	KeyItems                = "items"
	KeyAdditionalProperties = "additionalProperties"
	KeyOneOf                = "oneOf"
	KeyAnyOf                = "anyOf"
	KeyEnum                 = "enum"
	KeyConst                = "const"
	KeyPattern              = "pattern"
	KeyMinimum              = "minimum"
	KeyMaximum              = "maximum"
	KeyDescription          = "description"
	KeyDefinitions          = "definitions"
)

// Fragment is a JSON object whose keys keep their insertion order.
// Values are JSON scalars, []string, []*Fragment or nested *Fragment.
type Fragment struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewFragment returns an empty fragment.
func NewFragment() *Fragment {
	return &Fragment{m: orderedmap.New[string, any]()}
}

// Set stores value under key. An existing key keeps its position.
func (f *Fragment) Set(key string, value any) *Fragment {
	f.m.Set(key, value)
	return f
}

// Get returns the value stored under key.
func (f *Fragment) Get(key string) (any, bool) {
	return f.m.Get(key)
}

// Has reports whether key is present.
func (f *Fragment) Has(key string) bool {
	_, ok := f.m.Get(key)
	return ok
}

// Delete removes key.
func (f *Fragment) Delete(key string) {
	f.m.Delete(key)
}

// Len returns the number of keys.
func (f *Fragment) Len() int {
	return f.m.Len()
}

// Keys returns the keys in insertion order.
func (f *Fragment) Keys() []string {
	keys := make([]string, 0, f.m.Len())
	for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Fragment returns the nested fragment stored under key.
func (f *Fragment) Fragment(key string) (*Fragment, bool) {
	v, ok := f.m.Get(key)
	if !ok {
		return nil, false
	}
	nested, ok := v.(*Fragment)
	return nested, ok
}

// Merge appends every key of other, in order, overwriting existing keys.
func (f *Fragment) Merge(other *Fragment) *Fragment {
	if other == nil {
		return f
	}
	for pair := other.m.Oldest(); pair != nil; pair = pair.Next() {
		f.m.Set(pair.Key, pair.Value)
	}
	return f
}

// Clone returns a shallow copy: nested values are shared.
func (f *Fragment) Clone() *Fragment {
	return NewFragment().Merge(f)
}

// Each calls fn for every key in order.
func (f *Fragment) Each(fn func(key string, value any)) {
	for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// MarshalJSON encodes the fragment with keys in insertion order and without
// HTML escaping, so regular expressions survive unchanged.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := encodeJSON(&buf, pair.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, pair.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
