package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
)

// SQLQueryName is the tool name the model is told to call.
const SQLQueryName = "execute_sql_query"

// QueryRunner executes a query request.
type QueryRunner interface {
	Execute(ctx context.Context, req sqlexec.Request) sqlexec.Result
}

// SQLQuery is the execute_sql_query tool. Failures are reported inside the
// JSON output, never as Go errors, so the model always sees the message.
type SQLQuery struct {
	runner QueryRunner
	table  string
}

// NewSQLQuery wraps runner. table is the name mentioned in the description.
func NewSQLQuery(runner QueryRunner, table string) *SQLQuery {
	if table == "" {
		table = sqlexec.DefaultTable
	}
	return &SQLQuery{runner: runner, table: table}
}

func (t *SQLQuery) Name() string { return SQLQueryName }

func (t *SQLQuery) Description() string {
	return "Executes a read-only SQL query against the `" + t.table + "` table and returns " +
		"a JSON object with `sql_query_result` (list of row objects, or null) and `message`. " +
		"The input should be a valid SQL query string."
}

func (t *SQLQuery) InputSchema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]*JSONSchema{
			sqlexec.QueryKey: {
				Type:        "string",
				Description: "A SQLite SELECT statement over " + t.table + ".",
			},
		},
		Required: []string{sqlexec.QueryKey},
	}
}

// Execute accepts {"sql_query": "..."}, a JSON string, or bare query text.
func (t *SQLQuery) Execute(ctx context.Context, arguments string) (*Result, error) {
	res := t.runner.Execute(ctx, ParseArguments(arguments))
	return &Result{Output: res.JSON(), Data: res}, nil
}

// ParseArguments turns the model's argument text into a query request.
func ParseArguments(arguments string) sqlexec.Request {
	trimmed := strings.TrimSpace(arguments)
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return sqlexec.Raw(arguments)
	}
	return sqlexec.ParseRequest(v)
}
