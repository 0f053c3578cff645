package chart

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
)

const (
	dateColumn = "date"
	yearColumn = "year"
	dateLayout = "02-01-2006"
)

// Build applies the filters, swaps a date axis for its year, checks the
// selection and shapes the data for the requested chart type. Filters that
// match nothing yield a chart with no data rather than an error. Line charts
// ignore Color.
func Build(t Table, req Request) (*Chart, error) {
	view, err := filter(t, req.Filters)
	if err != nil {
		return nil, err
	}

	x, y := req.X, req.Y
	if x == dateColumn || y == dateColumn {
		if err := view.deriveYear(); err != nil {
			return nil, err
		}
		if x == dateColumn {
			x = yearColumn
		}
		if y == dateColumn {
			y = yearColumn
		}
	}

	counted := y == "" && req.CountRows && req.Type == Pie
	if x == "" || (y == "" && !counted) {
		return nil, apperr.New(apperr.IncompleteSelection, "both an x-axis and a y-axis column are required")
	}
	if !req.Type.Valid() {
		return nil, apperr.New(apperr.InvalidChartType, fmt.Sprintf("unsupported chart type %q", req.Type))
	}
	color := req.Color
	if req.Type == Line {
		color = ""
	}
	for _, col := range []string{x, y, color} {
		if col != "" && !view.has(col) {
			return nil, apperr.New(apperr.UnknownColumn, fmt.Sprintf("unknown column %q", col))
		}
	}

	c := &Chart{Type: req.Type, Title: req.Type.Title(), X: x, Y: y, Color: color, Rows: len(view.rows)}
	if counted {
		c.Y = CountLabel
	}
	switch req.Type {
	case Bar:
		err = buildBar(c, view)
	case Pie:
		err = buildPie(c, view, counted)
	case Line, Scatter:
		buildPoints(c, view)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// view is a filtered window over a table plus derived columns.
type view struct {
	table   Table
	columns map[string]bool
	rows    []int
	derived map[string][]any
}

func filter(t Table, filters map[string][]string) (*view, error) {
	v := &view{table: t, columns: map[string]bool{}, derived: map[string][]any{}}
	for _, c := range t.ColumnNames() {
		v.columns[c] = true
	}

	// Sorted for a deterministic error when several columns are unknown.
	names := make([]string, 0, len(filters))
	for name, vals := range filters {
		if len(vals) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if !v.columns[name] {
			return nil, apperr.New(apperr.UnknownColumn, fmt.Sprintf("unknown filter column %q", name))
		}
	}

	for i := 0; i < t.Len(); i++ {
		keep := true
		for _, name := range names {
			cell, _ := t.Value(i, name)
			if !contains(filters[name], cell) {
				keep = false
				break
			}
		}
		if keep {
			v.rows = append(v.rows, i)
		}
	}
	return v, nil
}

func contains(allowed []string, cell any) bool {
	if cell == nil {
		return false
	}
	s := label(cell)
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}

func (v *view) has(col string) bool {
	if _, ok := v.derived[col]; ok {
		return true
	}
	return v.columns[col]
}

// value returns the cell for the n-th kept row.
func (v *view) value(n int, col string) any {
	if d, ok := v.derived[col]; ok {
		return d[n]
	}
	cell, _ := v.table.Value(v.rows[n], col)
	return cell
}

func (v *view) deriveYear() error {
	if !v.columns[dateColumn] {
		return apperr.New(apperr.UnknownColumn, fmt.Sprintf("unknown column %q", dateColumn))
	}
	years := make([]any, len(v.rows))
	for n := range v.rows {
		yr, err := yearOf(v.value(n, dateColumn))
		if err != nil {
			return apperr.Wrap(apperr.ChartRenderError, "derive year from date", err)
		}
		years[n] = yr
	}
	v.derived[yearColumn] = years
	return nil
}

// yearOf reads the year from a day-month-year string or a time value.
func yearOf(cell any) (int64, error) {
	switch t := cell.(type) {
	case string:
		d, err := time.Parse(dateLayout, t)
		if err != nil {
			return 0, err
		}
		return int64(d.Year()), nil
	case time.Time:
		return int64(t.Year()), nil
	}
	return 0, fmt.Errorf("date value %v (%T) is not a date", cell, cell)
}

// buildBar sums y per category and colour group. A y column holding only
// text counts its non-missing cells instead.
func buildBar(c *Chart, v *view) error {
	counting := v.textOnly(c.Y)
	index := map[string]int{}
	groups := map[string]int{}
	for n := range v.rows {
		yv := v.value(n, c.Y)
		if yv == nil {
			continue
		}
		f, ok := 1.0, true
		if !counting {
			f, ok = number(yv)
		}
		if !ok {
			return nonNumeric(c.Y, yv)
		}
		cat := label(v.value(n, c.X))
		ci, seen := index[cat]
		if !seen {
			ci = len(c.Categories)
			index[cat] = ci
			c.Categories = append(c.Categories, cat)
			for s := range c.Series {
				c.Series[s].Values = append(c.Series[s].Values, 0)
			}
		}
		name := c.Y
		if c.Color != "" {
			name = label(v.value(n, c.Color))
		}
		si, ok := groups[name]
		if !ok {
			si = len(c.Series)
			groups[name] = si
			c.Series = append(c.Series, Series{Name: name, Values: make([]float64, len(c.Categories))})
		}
		c.Series[si].Values[ci] += f
	}
	return nil
}

func buildPie(c *Chart, v *view, counted bool) error {
	index := map[string]int{}
	for n := range v.rows {
		f := 1.0
		if !counted {
			yv := v.value(n, c.Y)
			if yv == nil {
				continue
			}
			var ok bool
			if f, ok = number(yv); !ok {
				return nonNumeric(c.Y, yv)
			}
		}
		name := label(v.value(n, c.X))
		i, seen := index[name]
		if !seen {
			i = len(c.Slices)
			index[name] = i
			c.Slices = append(c.Slices, Slice{Name: name})
		}
		c.Slices[i].Value += f
	}
	return nil
}

func buildPoints(c *Chart, v *view) {
	groups := map[string]int{}
	for n := range v.rows {
		name := c.Y
		if c.Color != "" {
			name = label(v.value(n, c.Color))
		}
		si, ok := groups[name]
		if !ok {
			si = len(c.Series)
			groups[name] = si
			c.Series = append(c.Series, Series{Name: name})
		}
		c.Series[si].Points = append(c.Series[si].Points, Point{X: v.value(n, c.X), Y: v.value(n, c.Y)})
	}
}

// textOnly reports whether col has at least one kept value and none of them
// is a number.
func (v *view) textOnly(col string) bool {
	seen := false
	for n := range v.rows {
		cell := v.value(n, col)
		if cell == nil {
			continue
		}
		if _, ok := number(cell); ok {
			return false
		}
		seen = true
	}
	return seen
}

// NumericColumn reports whether col has at least one value and every
// non-missing value is a number.
func NumericColumn(t Table, col string) bool {
	seen := false
	for i := 0; i < t.Len(); i++ {
		cell, ok := t.Value(i, col)
		if !ok {
			return false
		}
		if cell == nil {
			continue
		}
		if _, ok := number(cell); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

func nonNumeric(col string, v any) error {
	return apperr.New(apperr.ChartRenderError, fmt.Sprintf("column %q has non-numeric value %q", col, label(v)))
}
