package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset/datasettest"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
)

func newTool() *SQLQuery {
	return NewSQLQuery(sqlexec.New(datasettest.Store()), "")
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	return m
}

func TestSQLQueryAcceptsArgumentShapes(t *testing.T) {
	tool := newTool()
	for _, args := range []string{
		`{"sql_query": "SELECT speciesName FROM mammals_df WHERE speciesName = 'Tiger'"}`,
		`"SELECT speciesName FROM mammals_df WHERE speciesName = 'Tiger'"`,
		`SELECT speciesName FROM mammals_df WHERE speciesName = 'Tiger'`,
	} {
		res, err := tool.Execute(context.Background(), args)
		require.NoError(t, err)
		m := decode(t, res.Output)
		assert.Equal(t, "Query successful", m["message"], args)
		assert.Equal(t, []any{map[string]any{"speciesName": "Tiger"}}, m["sql_query_result"], args)

		typed, ok := res.Data.(sqlexec.Result)
		require.True(t, ok)
		assert.True(t, typed.OK())
	}
}

func TestSQLQueryReportsErrorsInOutput(t *testing.T) {
	tool := newTool()

	res, err := tool.Execute(context.Background(), `{"query": "SELECT * FROM mammals_df"}`)
	require.NoError(t, err)
	m := decode(t, res.Output)
	assert.Nil(t, m["sql_query_result"])
	assert.Equal(t, sqlexec.MsgMissingQuery, m["message"])

	res, err = tool.Execute(context.Background(), `42`)
	require.NoError(t, err)
	assert.Equal(t, sqlexec.MsgInvalidInput, decode(t, res.Output)["message"])

	res, err = tool.Execute(context.Background(), `{"sql_query": "DELETE FROM mammals_df"}`)
	require.NoError(t, err)
	assert.Equal(t, apperr.UnsafeQuery, res.Data.(sqlexec.Result).Kind)
}

func TestSQLQuerySchema(t *testing.T) {
	tool := newTool()
	assert.Equal(t, "execute_sql_query", tool.Name())
	assert.Contains(t, tool.Description(), "mammals_df")
	s := tool.InputSchema()
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"sql_query"}, s.Required)
	assert.Equal(t, "string", s.Properties["sql_query"].Type)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(newTool())
	_, ok := r.Get(SQLQueryName)
	assert.True(t, ok)
	assert.Len(t, r.List(), 1)

	_, err := r.Execute(context.Background(), "drop_everything", "{}")
	assert.Error(t, err)

	res, err := r.Execute(context.Background(), SQLQueryName, `SELECT COUNT(*) AS n FROM mammals_df`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql_query_result":[{"n":8}],"message":"Query successful"}`, res.Output)
}
