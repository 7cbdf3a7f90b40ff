// Package testutil provides common test utilities and assertions for schemagen tests
package testutil

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/schemagen/domain/errors"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertTopLevelKeys asserts the order of the keys of a JSON object.
func AssertTopLevelKeys(t *testing.T, expected []string, actual string, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, expected, TopLevelKeys(t, actual), msgAndArgs...)
}

// TopLevelKeys returns the keys of a JSON object in document order.
func TopLevelKeys(t *testing.T, document string) []string {
	t.Helper()

	dec := json.NewDecoder(bytes.NewReader([]byte(document)))
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok, "document is not a JSON object")

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))

		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	return keys
}

// AssertErrorCode asserts that err carries a structured detail with the code.
func AssertErrorCode(t *testing.T, err error, code string, msgAndArgs ...interface{}) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	assert.Equal(t, code, errors.ToErrorDetail(err).Code, msgAndArgs...)
}

// RequireErrorAs asserts that err has a T in its chain and returns it.
func RequireErrorAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	require.True(t, stdErrors.As(err, &target), "expected %T in chain of %v", target, err)
	return target
}
