package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := New(UnsafeQuery, "missing keywords")
	wrapped := fmt.Errorf("tool call: %w", base)

	assert.Equal(t, UnsafeQuery, KindOf(wrapped))
	assert.True(t, Is(wrapped, UnsafeQuery))
	assert.False(t, Is(wrapped, MalformedInput))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, Is(nil, UnsafeQuery))
}

func TestErrorStringAndUnwrap(t *testing.T) {
	cause := errors.New("no such column: foo")
	err := Wrap(QueryExecutionError, "engine failed", cause)

	assert.Equal(t, "query_execution_error: engine failed: no such column: foo", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "incomplete_selection: pick both axes", New(IncompleteSelection, "pick both axes").Error())
}

func TestIsSoft(t *testing.T) {
	assert.True(t, IsSoft(EmptyResult))
	assert.True(t, IsSoft(JSONParseFailure))
	assert.False(t, IsSoft(QueryExecutionError))
}
