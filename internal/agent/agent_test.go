package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/ai"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset/datasettest"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/tools"
)

// scripted replays canned responses and records each request.
type scripted struct {
	replies  []ai.Message
	requests []ai.GenerateRequest
	err      error
}

func (s *scripted) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	i := len(s.requests) - 1
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return &ai.GenerateResponse{
		Choices: []ai.Choice{{Message: s.replies[i]}},
		Usage:   ai.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
	}, nil
}

func sqlCall(id, query string) ai.Message {
	return ai.Message{Role: "assistant", ToolCalls: []ai.ToolCall{{
		ID: id, Type: "function",
		Function: ai.FunctionCall{Name: tools.SQLQueryName, Arguments: `{"sql_query": "` + query + `"}`},
	}}}
}

func newLoop(rt ai.Runtime, maxIter int) *ToolLoop {
	ex := sqlexec.New(datasettest.Store())
	reg := tools.NewRegistry(tools.NewSQLQuery(ex, ex.Table()))
	return NewToolLoop(rt, reg, Config{Model: "test-model", SystemPrompt: SystemPrompt(ex.Table()), MaxIterations: maxIter})
}

func TestAnswerWithToolCall(t *testing.T) {
	final := `{"summary":"Dholes were counted 10 times.","chart_type":"bar_chart","x_axis":"speciesName","y_axis":"total"}`
	rt := &scripted{replies: []ai.Message{
		sqlCall("call_1", "SELECT speciesName, SUM(count) AS total FROM mammals_df WHERE speciesName = 'Dhole' GROUP BY speciesName"),
		{Role: "assistant", Content: final},
	}}
	ans, err := newLoop(rt, 0).Answer(context.Background(), "Calculate the sum of the count for Dhole species.")
	require.NoError(t, err)

	assert.Equal(t, final, ans.Output)
	assert.Equal(t, 2, ans.Iterations)
	assert.Equal(t, 24, ans.Usage.TotalTokens)
	require.Len(t, ans.Calls, 1)
	assert.JSONEq(t, `{"sql_query_result":[{"speciesName":"Dhole","total":10}],"message":"Query successful"}`, ans.Calls[0].Output)

	rows, ok := ans.LastRows()
	require.True(t, ok)
	assert.Equal(t, []string{"speciesName", "total"}, rows.Columns)

	// Second request carries the tool result back to the model.
	require.Len(t, rt.requests, 2)
	msgs := rt.requests[1].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t, "tool", msgs[3].Role)
	assert.Equal(t, "call_1", msgs[3].ToolCallID)
	assert.Equal(t, tools.SQLQueryName, msgs[3].Name)

	require.Len(t, rt.requests[0].Tools, 1)
	assert.Equal(t, tools.SQLQueryName, rt.requests[0].Tools[0].Function.Name)
}

func TestAnswerWithoutTools(t *testing.T) {
	rt := &scripted{replies: []ai.Message{{Role: "assistant", Content: "Hello! Ask me about mammal sightings."}}}
	ans, err := newLoop(rt, 0).Answer(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! Ask me about mammal sightings.", ans.Output)
	assert.Empty(t, ans.Calls)
	_, ok := ans.LastRows()
	assert.False(t, ok)
}

func TestAnswerReportsToolErrorsToModel(t *testing.T) {
	rt := &scripted{replies: []ai.Message{
		sqlCall("call_1", "DROP TABLE mammals_df"),
		{Role: "assistant", ToolCalls: []ai.ToolCall{{ID: "call_2", Function: ai.FunctionCall{Name: "plot", Arguments: "{}"}}}},
		{Role: "assistant", Content: "Error: Invalid SQL query. Must contain SELECT and FROM keywords."},
	}}
	ans, err := newLoop(rt, 0).Answer(context.Background(), "drop it")
	require.NoError(t, err)
	require.Len(t, ans.Calls, 2)
	assert.Contains(t, ans.Calls[0].Output, sqlexec.MsgUnsafeQuery)
	assert.True(t, strings.HasPrefix(ans.Calls[1].Output, "Error: unknown tool"))
	assert.Nil(t, ans.Calls[1].Result)
}

func TestAnswerStopsAtIterationLimit(t *testing.T) {
	rt := &scripted{replies: []ai.Message{sqlCall("", "SELECT 1 FROM mammals_df")}}
	ans, err := newLoop(rt, 3).Answer(context.Background(), "loop forever")
	assert.ErrorIs(t, err, ErrMaxIterations)
	assert.Equal(t, 3, ans.Iterations)
	assert.Len(t, ans.Calls, 3)
	assert.Equal(t, "call_1_0", ans.Calls[0].ID)
}

func TestAnswerPropagatesRuntimeErrors(t *testing.T) {
	boom := errors.New("provider down")
	_, err := newLoop(&scripted{err: boom}, 0).Answer(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
}

func TestSystemPromptDescribesSchema(t *testing.T) {
	p := SystemPrompt("mammals_df")
	for _, c := range dataset.Schema {
		assert.Contains(t, p, "`"+c.Name+"`")
	}
	assert.Contains(t, p, "`execute_sql_query`")
	assert.Contains(t, p, "bar_chart")
	assert.Contains(t, p, "13. If there is an error")
	assert.NotContains(t, p, "{table}")
	assert.NotContains(t, p, "{tool}")
}
