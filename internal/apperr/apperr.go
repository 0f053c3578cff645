// Package apperr defines the error kinds shared by the query, interpretation
// and chart components. Each kind maps to a user-visible message at the
// component boundary; none of them is retried.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// MalformedInput means a query request had the wrong shape.
	MalformedInput Kind = "malformed_input"
	// UnsafeQuery means a query failed the SELECT/FROM policy check.
	UnsafeQuery Kind = "unsafe_query"
	// QueryExecutionError means the engine rejected the query.
	QueryExecutionError Kind = "query_execution_error"
	// EmptyResult is the soft outcome of a valid query with no rows.
	EmptyResult Kind = "empty_result"
	// JSONParseFailure means agent output was not JSON. Recovered as plain text.
	JSONParseFailure Kind = "json_parse_failure"
	// InvalidAnswer means agent output was JSON but not an object.
	InvalidAnswer Kind = "invalid_answer"
	// IncompleteSelection means a chart request lacked an x or y column.
	IncompleteSelection Kind = "incomplete_selection"
	// InvalidChartType means the chart type tag is not one of the four known.
	InvalidChartType Kind = "invalid_chart_type"
	// UnknownColumn means a chart request named a column the table lacks.
	UnknownColumn Kind = "unknown_column"
	// ChartRenderError means the data could not be shaped into the chart.
	ChartRenderError Kind = "chart_render_error"
	// DatasetLoad means the dataset file could not be read or parsed.
	DatasetLoad Kind = "dataset_load"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsSoft reports whether the kind is informational rather than a failure.
func IsSoft(kind Kind) bool {
	return kind == EmptyResult || kind == JSONParseFailure
}
