package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		kind Kind
		want ShapeCategory
	}{
		{KindByte, ShapeNumber},
		{KindShort, ShapeNumber},
		{KindInt, ShapeNumber},
		{KindLong, ShapeNumber},
		{KindFloat, ShapeNumber},
		{KindDouble, ShapeNumber},
		{KindString, ShapeString},
		{KindChar, ShapeString},
		{KindEnum, ShapeString},
		{KindBoolean, ShapeBoolean},
		{KindList, ShapeArray},
		{KindMap, ShapeObjectMap},
		{KindSealed, ShapeTaggedUnion},
		{KindOpen, ShapeTaggedUnion},
		{KindClass, ShapeObject},
		{KindObject, ShapeObject},
		{KindContextual, ShapeObject},
		{Kind(99), ShapeObject},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.kind))
		})
	}
}

func TestShapeCategory_JSONType(t *testing.T) {
	assert.Equal(t, "number", ShapeNumber.JSONType())
	assert.Equal(t, "string", ShapeString.JSONType())
	assert.Equal(t, "boolean", ShapeBoolean.JSONType())
	assert.Equal(t, "array", ShapeArray.JSONType())
	assert.Equal(t, "object", ShapeObjectMap.JSONType())
	assert.Equal(t, "object", ShapeObject.JSONType())
	assert.Equal(t, "object-map", ShapeObjectMap.String())
}

func TestParseKind(t *testing.T) {
	for k := KindClass; k <= KindContextual; k++ {
		parsed, ok := ParseKind(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}

	_, ok := ParseKind("decimal")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, KindLong.IsInteger())
	assert.False(t, KindDouble.IsInteger())
	assert.True(t, KindFloat.IsFloating())
	assert.False(t, KindInt.IsFloating())
	assert.True(t, KindChar.IsStringLike())
	assert.True(t, KindEnum.IsStringLike())
	assert.False(t, KindInt.IsStringLike())
}
