package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragment_KeepsInsertionOrder(t *testing.T) {
	f := NewFragment().
		Set("z", 1).
		Set("a", "two").
		Set("m", []string{"x"})

	assert.Equal(t, []string{"z", "a", "m"}, f.Keys())

	f.Set("z", 3)
	assert.Equal(t, []string{"z", "a", "m"}, f.Keys())

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"z":3,"a":"two","m":["x"]}`, string(b))
}

func TestFragment_Nested(t *testing.T) {
	inner := NewFragment().Set(KeyType, "string")
	f := NewFragment().Set(KeyItems, inner).Set(KeyOneOf, []*Fragment{inner})

	got, ok := f.Fragment(KeyItems)
	require.True(t, ok)
	assert.Same(t, inner, got)

	_, ok = f.Fragment(KeyOneOf)
	assert.False(t, ok)

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"items":{"type":"string"},"oneOf":[{"type":"string"}]}`, string(b))
}

func TestFragment_MarshalDoesNotEscapeHTML(t *testing.T) {
	f := NewFragment().Set(KeyPattern, "^<a&b>$")

	b, err := f.MarshalJSON()

	require.NoError(t, err)
	assert.Equal(t, `{"pattern":"^<a&b>$"}`, string(b))
}

func TestFragment_MergeCloneDelete(t *testing.T) {
	base := NewFragment().Set("a", 1).Set("b", 2)
	other := NewFragment().Set("b", 3).Set("c", 4)

	clone := base.Clone()
	base.Merge(other).Merge(nil)

	assert.Equal(t, []string{"a", "b", "c"}, base.Keys())
	v, _ := base.Get("b")
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, clone.Len())

	base.Delete("a")
	assert.False(t, base.Has("a"))
	assert.Equal(t, 2, base.Len())

	var keys []string
	base.Each(func(key string, _ any) { keys = append(keys, key) })
	assert.Equal(t, []string{"b", "c"}, keys)
}
