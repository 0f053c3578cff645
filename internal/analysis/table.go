// Package analysis profiles a tabular dataset: per-column kinds and
// statistics, group-by summaries, correlations, and a Markdown report.
package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Table is the read-only view profiled by Profile.
type Table interface {
	ColumnNames() []string
	Len() int
	Value(i int, column string) (any, bool)
}

// Options controls profiling behavior.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues caps the categorical top-value list.
	TopValues int
	// GroupBy computes per-group summaries for the given column names.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for the sightings table.
func DefaultOptions() Options {
	return Options{
		MaxRows:          100000,
		SampleRows:       5,
		TopValues:        8,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Column kinds.
const (
	KindNumeric     = "numeric"
	KindDatetime    = "datetime"
	KindCategorical = "categorical"
	KindText        = "text"
	KindUnknown     = "unknown"
)

// Report is a markdown-friendly profile of a table.
type Report struct {
	Name      string          `json:"name"`
	Rows      int             `json:"rows"`
	Processed int             `json:"processed"`
	Cols      []ColumnSummary `json:"columns"`
	Samples   [][]string      `json:"samples,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
	Groups    []GroupResult   `json:"groups,omitempty"`
	Corr      *CorrMatrix     `json:"correlations,omitempty"`
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique,omitempty"`
	// Numeric stats
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`
	// Datetime range, formatted as 2006-01-02
	Earliest string `json:"earliest,omitempty"`
	Latest   string `json:"latest,omitempty"`
	// Categorical top values
	TopValues    []CategoryCount `json:"top_values,omitempty"`
	ExampleTexts []string        `json:"examples,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string                `json:"key"`
	Size    int                   `json:"size"`
	Metrics map[string]NumSummary `json:"metrics"` // by column name
}

type NumSummary struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

type colAcc struct {
	name   string
	nonNil int
	miss   int

	// numeric stats via Welford
	n      int
	mean   float64
	m2     float64
	min    float64
	max    float64
	nums   []float64
	numCnt int

	dtCnt    int
	earliest time.Time
	latest   time.Time

	txtCnt int
	cats   map[string]int
	exText []string
}

type pairAcc struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXX float64
	sumYY float64
	sumXY float64
}

func (p *pairAcc) add(x, y float64) {
	p.n++
	p.sumX += x
	p.sumY += y
	p.sumXX += x * x
	p.sumYY += y * y
	p.sumXY += x * y
}

func (p *pairAcc) r() float64 {
	if p == nil || p.n < 2 {
		return 0
	}
	denom := math.Sqrt((p.n*p.sumXX - p.sumX*p.sumX) * (p.n*p.sumYY - p.sumY*p.sumY))
	if denom == 0 {
		return 0
	}
	r := (p.n*p.sumXY - p.sumX*p.sumY) / denom
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

type gAcc struct {
	size int
	sum  map[int]float64
	cnt  map[int]int
	min  map[int]float64
	max  map[int]float64
}

// Profile walks t once and returns its report.
func Profile(name string, t Table, opt Options) *Report {
	header := t.ColumnNames()
	ncol := len(header)
	rep := &Report{Name: name}
	if ncol == 0 {
		return rep
	}

	cols := make([]*colAcc, ncol)
	gbIndex := map[string]int{}
	for i, h := range header {
		cols[i] = &colAcc{name: h, min: math.Inf(1), max: math.Inf(-1), cats: make(map[string]int)}
		gbIndex[strings.ToLower(h)] = i
	}

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	pair := make(map[int]*pairAcc) // key = i*ncol + j with i>j
	groups := map[string]*gAcc{}

	rep.Rows = t.Len()
	for i := 0; i < rep.Rows && rep.Processed < maxRows; i++ {
		rep.Processed++
		rec := make([]any, ncol)
		for j, h := range header {
			rec[j], _ = t.Value(i, h)
		}

		if len(rep.Samples) < sampleRows {
			row := make([]string, ncol)
			for j, v := range rec {
				row[j] = formatCell(v)
			}
			rep.Samples = append(rep.Samples, row)
		}

		var gkey string
		if len(opt.GroupBy) > 0 {
			var parts []string
			for _, g := range opt.GroupBy {
				idx, ok := gbIndex[strings.ToLower(strings.TrimSpace(g))]
				if !ok {
					continue
				}
				parts = append(parts, fmt.Sprintf("%s=%s", cols[idx].name, safeVal(formatCell(rec[idx]))))
			}
			if len(parts) > 0 {
				gkey = strings.Join(parts, " | ")
			}
		}
		var ga *gAcc
		if gkey != "" {
			ga = groups[gkey]
			if ga == nil {
				ga = &gAcc{sum: map[int]float64{}, cnt: map[int]int{}, min: map[int]float64{}, max: map[int]float64{}}
				groups[gkey] = ga
			}
			ga.size++
		}

		rowNums := make(map[int]float64)
		for j, raw := range rec {
			c := cols[j]
			if isMissing(raw) {
				c.miss++
				continue
			}
			c.nonNil++
			if x, ok := numeric(raw); ok {
				c.addNumber(x)
				rowNums[j] = x
				if ga != nil {
					ga.sum[j] += x
					ga.cnt[j]++
					if m, ok := ga.min[j]; !ok || x < m {
						ga.min[j] = x
					}
					if m, ok := ga.max[j]; !ok || x > m {
						ga.max[j] = x
					}
				}
				continue
			}
			v := strings.TrimSpace(formatCell(raw))
			if ts, ok := parseTimeMaybe(v); ok {
				c.addTime(ts)
				continue
			}
			c.txtCnt++
			if len(c.cats) <= 10000 && len(v) <= 64 {
				c.cats[v]++
			}
			if len(c.exText) < 3 {
				c.exText = append(c.exText, v)
			}
		}

		if opt.Correlations && len(rowNums) >= 2 {
			idxs := make([]int, 0, len(rowNums))
			for j := range rowNums {
				idxs = append(idxs, j)
			}
			sort.Ints(idxs)
			for a := 1; a < len(idxs); a++ {
				for b := 0; b < a; b++ {
					key := idxs[a]*ncol + idxs[b]
					if pair[key] == nil {
						pair[key] = &pairAcc{}
					}
					pair[key].add(rowNums[idxs[a]], rowNums[idxs[b]])
				}
			}
		}
	}

	rep.Cols = make([]ColumnSummary, 0, ncol)
	var numCols []int
	for idx, c := range cols {
		s := c.summary(opt)
		if s.Kind == KindNumeric {
			numCols = append(numCols, idx)
		}
		rep.Cols = append(rep.Cols, s)
	}

	if rep.Processed < rep.Rows {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}

	if len(groups) > 0 {
		out := make([]GroupResult, 0, len(groups))
		for k, ga := range groups {
			gr := GroupResult{Key: k, Size: ga.size, Metrics: map[string]NumSummary{}}
			for _, idx := range numCols {
				if ga.cnt[idx] == 0 {
					continue
				}
				gr.Metrics[cols[idx].name] = NumSummary{
					Count: ga.cnt[idx],
					Sum:   ga.sum[idx],
					Min:   ga.min[idx],
					Max:   ga.max[idx],
					Mean:  ga.sum[idx] / float64(ga.cnt[idx]),
				}
			}
			out = append(out, gr)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Size == out[j].Size {
				return out[i].Key < out[j].Key
			}
			return out[i].Size > out[j].Size
		})
		if len(out) > 20 {
			out = out[:20]
		}
		rep.Groups = out
	}

	if opt.Correlations && len(numCols) >= 2 {
		names := make([]string, len(numCols))
		for i, idx := range numCols {
			names[i] = cols[idx].name
		}
		n := len(numCols)
		mat := make([][]float64, n)
		for a := range mat {
			mat[a] = make([]float64, n)
			for b := range mat[a] {
				if a == b {
					mat[a][b] = 1
					continue
				}
				ia, ib := numCols[a], numCols[b]
				mat[a][b] = pair[max(ia, ib)*ncol+min(ia, ib)].r()
			}
		}
		rep.Corr = &CorrMatrix{Columns: names, Values: mat}
	}
	return rep
}

func (c *colAcc) addNumber(x float64) {
	c.numCnt++
	c.n++
	if x < c.min {
		c.min = x
	}
	if x > c.max {
		c.max = x
	}
	delta := x - c.mean
	c.mean += delta / float64(c.n)
	c.m2 += delta * (x - c.mean)
	c.nums = append(c.nums, x)
}

func (c *colAcc) addTime(ts time.Time) {
	if c.dtCnt == 0 || ts.Before(c.earliest) {
		c.earliest = ts
	}
	if c.dtCnt == 0 || ts.After(c.latest) {
		c.latest = ts
	}
	c.dtCnt++
}

// summary decides the kind by the predominant parsed type.
func (c *colAcc) summary(opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.name, NonNull: c.nonNil, Missing: c.miss, Kind: KindUnknown}
	switch {
	case c.numCnt > 0 && c.numCnt >= c.dtCnt && c.numCnt >= c.txtCnt:
		s.Kind = KindNumeric
		s.Min, s.Max, s.Mean = c.min, c.max, c.mean
		if c.n > 1 {
			s.Std = math.Sqrt(c.m2 / float64(c.n-1))
		}
		if opt.Outliers && len(c.nums) >= 8 {
			thr := opt.OutlierThreshold
			if thr <= 0 {
				thr = 3.5
			}
			s.OutliersCount, s.OutliersMaxAbsZ = robustOutliers(c.nums, thr)
			s.OutlierThreshold = thr
		}
	case c.dtCnt > 0 && c.dtCnt >= c.txtCnt:
		s.Kind = KindDatetime
		s.Earliest = c.earliest.Format("2006-01-02")
		s.Latest = c.latest.Format("2006-01-02")
	case len(c.cats) > 0 && len(c.cats) < c.txtCnt:
		s.Kind = KindCategorical
		s.Unique = len(c.cats)
		tops := make([]CategoryCount, 0, len(c.cats))
		for k, v := range c.cats {
			tops = append(tops, CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		limit := opt.TopValues
		if limit <= 0 {
			limit = 8
		}
		if len(tops) > limit {
			tops = tops[:limit]
		}
		s.TopValues = tops
	case c.txtCnt > 0:
		s.Kind = KindText
		s.Unique = len(c.cats)
		s.ExampleTexts = c.exText
	}
	return s
}

func isMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// numeric accepts typed numbers and numeric strings.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.Format("2006-01-02")
	}
	return fmt.Sprint(v)
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		"02-01-2006", "2006-01-02 15:04:05", time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "2006-01-02 15:04",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// robustOutliers counts values whose robust z-score exceeds thr.
func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
