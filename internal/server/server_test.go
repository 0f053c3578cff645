package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/agent"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset/datasettest"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/insights"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
)

func init() { gin.SetMode(gin.TestMode) }

type scriptedAgent struct {
	executor *sqlexec.Executor
	query    string
	output   string
}

func (a *scriptedAgent) Answer(ctx context.Context, question string) (*agent.Answer, error) {
	res := a.executor.Execute(ctx, sqlexec.Raw(a.query))
	return &agent.Answer{
		Output: a.output,
		Calls:  []agent.ToolCall{{Name: "execute_sql_query", Output: res.JSON(), Result: &res}},
	}, nil
}

func newTestServer(t *testing.T, withAgent bool) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	store := datasettest.Store()
	ex := sqlexec.New(store, sqlexec.WithMetrics(sqlexec.NewMetrics(reg)))
	var ag agent.Agent
	if withAgent {
		ag = &scriptedAgent{
			executor: ex,
			query:    "SELECT place, SUM(count) AS total FROM mammals_df GROUP BY place ORDER BY total DESC",
			output:   `{"summary":"Anamalai leads with 31 animals.","chart_type":"bar_chart","x_axis":"place","y_axis":"total"}`,
		}
	}
	return New(insights.New(store, ex, ag, nil), Options{Registry: reg})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t, false)
	w := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(8), body["rows"])
	assert.Equal(t, false, body["agent"])

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestSchemaDemosFilters(t *testing.T) {
	s := newTestServer(t, false)

	body := decode(t, do(t, s, http.MethodGet, "/api/schema", ""))
	assert.Equal(t, "mammals_df", body["table"])
	assert.Len(t, body["columns"], 16)
	assert.Contains(t, body["prompt"], "execute_sql_query")

	body = decode(t, do(t, s, http.MethodGet, "/api/demos", ""))
	assert.Len(t, body["demos"], len(insights.DemoQueries))

	body = decode(t, do(t, s, http.MethodGet, "/api/filters", ""))
	assert.Equal(t, []any{"Deciduous", "Evergreen", "Grassland"}, body["habitat"])
}

func TestQueryEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	w := do(t, s, http.MethodPost, "/api/query", `{"sql_query":"SELECT SUM(count) AS total FROM mammals_df WHERE speciesName = 'Dhole'"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sql_query_result":[{"total":10}],"message":"Query successful"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/query", `"DROP TABLE mammals_df"`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, sqlexec.MsgUnsafeQuery, decode(t, w)["message"])

	w = do(t, s, http.MethodPost, "/api/query", `{"sql_query":"SELECT * FROM mammals_df WHERE place = 'Nowhere'"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sqlexec.MsgEmpty, decode(t, w)["message"])

	w = do(t, s, http.MethodPost, "/api/query", `{"other":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, sqlexec.MsgMissingQuery, decode(t, w)["message"])
}

func TestChartEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	w := do(t, s, http.MethodPost, "/api/chart", `{"chart_type":"pie_chart","x_axis":"speciesName","y_axis":"count","filters":{"habitat":["Evergreen"]}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	c := body["chart"].(map[string]any)
	assert.Equal(t, "Interactive Pie Chart", c["title"])
	assert.Len(t, c["slices"], 3)
	assert.NotNil(t, body["option"])

	w = do(t, s, http.MethodPost, "/api/chart", `{"chart_type":"radar","x_axis":"place","y_axis":"count"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, insights.MsgInvalidChartType, decode(t, w)["message"])

	w = do(t, s, http.MethodPost, "/api/chart", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskEndpoint(t *testing.T) {
	s := newTestServer(t, true)

	w := do(t, s, http.MethodPost, "/api/ask", `{"question":"Which place has the most animals?"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Anamalai leads with 31 animals.", body["text"])
	suggestion := body["chart_suggestion"].(map[string]any)
	assert.Equal(t, "bar_chart", suggestion["chart_type"])
	rendered := body["chart"].(map[string]any)["chart"].(map[string]any)
	assert.Equal(t, []any{"Anamalai", "Topslip", "Valparai"}, rendered["categories"])

	w = do(t, s, http.MethodPost, "/api/ask", `{"question":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, insights.MsgEmptyQuestion, decode(t, w)["warning"])
}

func TestAskWithoutAgent(t *testing.T) {
	s := newTestServer(t, false)
	w := do(t, s, http.MethodPost, "/api/ask", `{"demo_index":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, insights.DemoQueries[0], body["question"])
	assert.NotEmpty(t, body["error"])
}

func TestMapAndMetrics(t *testing.T) {
	s := newTestServer(t, false)
	body := decode(t, do(t, s, http.MethodGet, "/api/map", ""))
	assert.Equal(t, "FeatureCollection", body["type"])
	assert.Len(t, body["features"], 8)

	do(t, s, http.MethodPost, "/api/query", `"SELECT COUNT(*) FROM mammals_df"`)
	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `zoogist_sql_queries_total{outcome="success"} 1`)
	assert.Contains(t, w.Body.String(), `zoogist_http_requests_total{code="200",route="/api/map"} 1`)
}
