// Package chart builds simple charts (bar, pie, line, scatter) from a table
// and a column selection, and renders them as ECharts options.
package chart

import "fmt"

// Type tags a chart kind. The values match the tags the agent suggests.
type Type string

const (
	Bar     Type = "bar_chart"
	Pie     Type = "pie_chart"
	Line    Type = "line_chart"
	Scatter Type = "scatter_plot"
)

// Types lists the supported chart types in display order.
var Types = []Type{Bar, Pie, Line, Scatter}

// Title returns the display title for t.
func (t Type) Title() string {
	switch t {
	case Bar:
		return "Interactive Bar Chart"
	case Pie:
		return "Interactive Pie Chart"
	case Line:
		return "Interactive Line Chart"
	case Scatter:
		return "Interactive Scatter Plot"
	}
	return ""
}

// Valid reports whether t is one of the four supported types.
func (t Type) Valid() bool { return t.Title() != "" }

// Table is the read-only tabular view charts are built from.
type Table interface {
	ColumnNames() []string
	Len() int
	Value(i int, column string) (any, bool)
}

// Request is a chart selection. Filters maps a column to the values to keep;
// a column with no values does not filter.
type Request struct {
	Type    Type                `json:"chart_type"`
	X       string              `json:"x_axis"`
	Y       string              `json:"y_axis"`
	Color   string              `json:"color,omitempty"`
	Filters map[string][]string `json:"filters,omitempty"`
	// CountRows lets a pie chart without a y-axis size its slices by the
	// number of rows per x value.
	CountRows bool `json:"-"`
}

// CountLabel names the value axis of a chart sized by row counts.
const CountLabel = "records"

// Chart is a built chart, ready to render.
type Chart struct {
	Type  Type   `json:"type"`
	Title string `json:"title"`
	X     string `json:"x_axis"`
	Y     string `json:"y_axis"`
	Color string `json:"color,omitempty"`
	// Rows is the number of rows left after filtering.
	Rows int `json:"rows"`
	// Categories are the bar chart's x labels in first-seen order.
	Categories []string `json:"categories,omitempty"`
	// Series holds bar values aligned to Categories, or line/scatter points.
	Series []Series `json:"series,omitempty"`
	// Slices holds pie slices in first-seen order.
	Slices []Slice `json:"slices,omitempty"`
}

// Series is one colour group.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values,omitempty"`
	Points []Point   `json:"points,omitempty"`
}

// Slice is one pie segment.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Point is one line or scatter sample.
type Point struct {
	X any `json:"x"`
	Y any `json:"y"`
}

func (p Point) pair() []any { return []any{p.X, p.Y} }

// label renders a cell as a category label.
func label(v any) string {
	switch t := v.(type) {
	case nil:
		return "(missing)"
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	}
	return fmt.Sprint(v)
}
