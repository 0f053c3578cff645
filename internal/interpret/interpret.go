// Package interpret turns the agent's final output string into something the
// user interface can show: a plain text answer, or a structured answer that
// may carry a chart suggestion.
package interpret

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
)

// Chart type tags the agent may suggest.
const (
	BarChart    = "bar_chart"
	PieChart    = "pie_chart"
	LineChart   = "line_chart"
	ScatterPlot = "scatter_plot"
)

// Answer is either PlainTextAnswer or StructuredAnswer.
type Answer interface {
	isAnswer()
}

// PlainTextAnswer is agent output that was not JSON.
type PlainTextAnswer struct {
	Text string
}

// StructuredAnswer is agent output that parsed as a JSON object.
type StructuredAnswer struct {
	// Fields holds every top-level key of the object.
	Fields map[string]any
	// Text is the summary, or the answer when no summary key exists.
	// HasText is false when neither key is present or the value is null.
	Text    string
	HasText bool
	// Chart is set when the object names a chart_type.
	Chart *ChartSuggestion
}

func (PlainTextAnswer) isAnswer()  {}
func (StructuredAnswer) isAnswer() {}

// ChartSuggestion is the visualization the agent proposed. Axis names are
// kept exactly as given.
type ChartSuggestion struct {
	Type    string `json:"chart_type"`
	XAxis   string `json:"x_axis,omitempty"`
	YAxis   string `json:"y_axis,omitempty"`
	GroupBy string `json:"group_by,omitempty"`
}

// Display is what the caller renders. Err is set, and Answer nil, when the
// output parsed as JSON but was not an object.
type Display struct {
	Answer Answer
	Err    string
}

// Text returns the text to show and whether there is any.
func (d Display) Text() (string, bool) {
	switch a := d.Answer.(type) {
	case PlainTextAnswer:
		return a.Text, a.Text != ""
	case StructuredAnswer:
		return a.Text, a.HasText && a.Text != ""
	}
	return "", false
}

// Chart returns the chart suggestion, if any.
func (d Display) Chart() *ChartSuggestion {
	if a, ok := d.Answer.(StructuredAnswer); ok {
		return a.Chart
	}
	return nil
}

// Interpret parses raw strictly as JSON. Text that does not parse is shown
// as plain text. A JSON object becomes a StructuredAnswer. Any other JSON
// value is reported as an error message.
func Interpret(raw string) Display {
	v, err := decode(raw)
	if err != nil {
		return Display{Answer: PlainTextAnswer{Text: raw}}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		err := apperr.New(apperr.InvalidAnswer, fmt.Sprintf("expected a JSON object, got %s", jsonKind(v)))
		return Display{Err: "An error occurred: " + err.Message}
	}
	return Display{Answer: structured(obj)}
}

func decode(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, apperr.Wrap(apperr.JSONParseFailure, "agent output is not JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperr.New(apperr.JSONParseFailure, "trailing data after JSON value")
	}
	return v, nil
}

func structured(obj map[string]any) StructuredAnswer {
	a := StructuredAnswer{Fields: obj}

	// A present summary key wins even when it is null.
	v, ok := obj["summary"]
	if !ok {
		v, ok = obj["answer"]
	}
	if ok && v != nil {
		a.Text, a.HasText = textOf(v), true
	}

	if ct, ok := obj["chart_type"]; ok && ct != nil {
		a.Chart = &ChartSuggestion{
			Type:    textOf(ct),
			XAxis:   stringField(obj, "x_axis"),
			YAxis:   stringField(obj, "y_axis"),
			GroupBy: stringField(obj, "group_by"),
		}
	}
	return a
}

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	return textOf(v)
}

// textOf renders strings as-is and other JSON values in compact JSON.
func textOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(buf.String())
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
