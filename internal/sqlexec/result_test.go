package sqlexec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowMarshalKeepsOrder(t *testing.T) {
	r := NewRow([]string{"zeta", "alpha", "zeta", "mid"}, []any{1, "a", 3, nil})
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":3,"alpha":"a","mid":null}`, string(b))
}

func TestResultValueBounds(t *testing.T) {
	res := Result{Columns: []string{"a"}, Rows: []Row{NewRow([]string{"a"}, []any{"x"})}}
	v, ok := res.Value(0, "a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = res.Value(1, "a")
	assert.False(t, ok)
	_, ok = res.Value(0, "b")
	assert.False(t, ok)
	assert.Equal(t, 1, res.Len())
}

func TestCheckPolicyIsCaseInsensitive(t *testing.T) {
	assert.NoError(t, CheckPolicy("SeLeCt * FrOm mammals_df"))
	assert.Error(t, CheckPolicy("WITH x AS (VALUES (1)) SELECT * "))
}
