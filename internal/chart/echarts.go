package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
)

// Option returns the ECharts option object for c.
func Option(c *Chart) map[string]interface{} {
	base := map[string]interface{}{
		"title":   map[string]interface{}{"text": c.Title, "left": "center"},
		"tooltip": map[string]interface{}{"trigger": tooltipTrigger(c.Type)},
	}
	switch c.Type {
	case Bar:
		series := make([]interface{}, 0, len(c.Series))
		for _, s := range c.Series {
			entry := map[string]interface{}{"name": s.Name, "type": "bar", "data": s.Values}
			if c.Color != "" {
				entry["stack"] = "total"
			}
			series = append(series, entry)
		}
		base["xAxis"] = map[string]interface{}{"type": "category", "name": c.X, "data": c.Categories}
		base["yAxis"] = map[string]interface{}{"type": "value", "name": c.Y}
		base["series"] = series
		base["legend"] = legend(c)
	case Pie:
		data := make([]interface{}, 0, len(c.Slices))
		for _, s := range c.Slices {
			data = append(data, map[string]interface{}{"name": s.Name, "value": s.Value})
		}
		base["legend"] = map[string]interface{}{"orient": "vertical", "left": "left"}
		base["series"] = []interface{}{
			map[string]interface{}{
				"name":   c.Y,
				"type":   "pie",
				"radius": "55%",
				"center": []string{"50%", "55%"},
				"data":   data,
			},
		}
	case Line, Scatter:
		kind := "line"
		if c.Type == Scatter {
			kind = "scatter"
		}
		series := make([]interface{}, 0, len(c.Series))
		numericX := true
		for _, s := range c.Series {
			data := make([]interface{}, 0, len(s.Points))
			for _, p := range s.Points {
				data = append(data, p.pair())
				if _, ok := number(p.X); !ok {
					numericX = false
				}
			}
			series = append(series, map[string]interface{}{"name": s.Name, "type": kind, "data": data})
		}
		xType := "category"
		if numericX {
			xType = "value"
		}
		base["xAxis"] = map[string]interface{}{"type": xType, "name": c.X}
		base["yAxis"] = map[string]interface{}{"type": "value", "name": c.Y}
		base["series"] = series
		base["legend"] = legend(c)
	}
	return base
}

func tooltipTrigger(t Type) string {
	if t == Bar || t == Line {
		return "axis"
	}
	return "item"
}

func legend(c *Chart) map[string]interface{} {
	names := make([]string, 0, len(c.Series))
	for _, s := range c.Series {
		names = append(names, s.Name)
	}
	return map[string]interface{}{"data": names, "top": "bottom"}
}

// JSON returns the ECharts option as JSON.
func JSON(c *Chart) (string, error) {
	b, err := json.Marshal(Option(c))
	if err != nil {
		return "", fmt.Errorf("failed to marshal ECharts config: %w", err)
	}
	return string(b), nil
}

var page = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"></script>
</head>
<body>
<div id="chart" style="width:100%;height:600px;"></div>
<script>
echarts.init(document.getElementById("chart")).setOption({{.Option}});
</script>
</body>
</html>
`))

// HTML renders a standalone page showing c.
func HTML(c *Chart) (string, error) {
	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		Title  string
		Option map[string]interface{}
	}{Title: c.Title, Option: Option(c)})
	if err != nil {
		return "", fmt.Errorf("render chart page: %w", err)
	}
	return buf.String(), nil
}
