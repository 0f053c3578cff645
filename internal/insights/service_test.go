package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/agent"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/chart"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset/datasettest"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
)

// fakeAgent runs one fixed query and returns a fixed output.
type fakeAgent struct {
	query    string
	output   string
	err      error
	executor *sqlexec.Executor
	asked    []string
}

func (f *fakeAgent) Answer(ctx context.Context, question string) (*agent.Answer, error) {
	f.asked = append(f.asked, question)
	ans := &agent.Answer{Output: f.output}
	if f.query != "" {
		res := f.executor.Execute(ctx, sqlexec.Raw(f.query))
		ans.Calls = append(ans.Calls, agent.ToolCall{Name: "execute_sql_query", Output: res.JSON(), Result: &res})
	}
	return ans, f.err
}

func newService(ag *fakeAgent) *Service {
	store := datasettest.Store()
	ex := sqlexec.New(store)
	if ag != nil {
		ag.executor = ex
		return New(store, ex, ag, nil)
	}
	return New(store, ex, nil, nil)
}

func TestResolveQuestion(t *testing.T) {
	q, ok := ResolveQuestion(AskRequest{Question: "  custom  ", DemoIndex: 2})
	assert.True(t, ok)
	assert.Equal(t, "custom", q)

	q, ok = ResolveQuestion(AskRequest{DemoIndex: 4})
	assert.True(t, ok)
	assert.Equal(t, "Calculate the sum of the count for Dhole species.", q)

	_, ok = ResolveQuestion(AskRequest{Question: "   "})
	assert.False(t, ok)
	_, ok = ResolveQuestion(AskRequest{DemoIndex: 99})
	assert.False(t, ok)
}

func TestAskEmptyQuestionWarns(t *testing.T) {
	ag := &fakeAgent{}
	resp := newService(ag).Ask(context.Background(), AskRequest{})
	assert.Equal(t, MsgEmptyQuestion, resp.Warning)
	assert.Empty(t, ag.asked, "the agent is not invoked")
}

func TestAskStructuredAnswerAndSuggestion(t *testing.T) {
	ag := &fakeAgent{
		query:  "SELECT habitat, SUM(count) AS total FROM mammals_df GROUP BY habitat ORDER BY habitat",
		output: `{"summary":"Grassland has the most sightings.","chart_type":"pie_chart","x_axis":"habitat","y_axis":"total"}`,
	}
	svc := newService(ag)
	resp := svc.Ask(context.Background(), AskRequest{Question: "Which habitat has most sightings?"})

	assert.Empty(t, resp.Error)
	assert.Equal(t, "Grassland has the most sightings.", resp.Text)
	require.NotNil(t, resp.Chart)
	require.NotNil(t, resp.Rows)

	cr, ok := svc.RenderSuggestion(resp)
	require.True(t, ok)
	require.NotNil(t, cr.Chart, cr.Message)
	assert.Equal(t, []chart.Slice{
		{Name: "Deciduous", Value: 24},
		{Name: "Evergreen", Value: 24},
		{Name: "Grassland", Value: 25},
	}, cr.Chart.Slices)
	assert.NotNil(t, cr.Option)
}

func TestPieSuggestionWithoutYAxis(t *testing.T) {
	cases := []struct {
		name  string
		query string
		y     string
		want  []chart.Slice
	}{
		{
			name:  "single numeric column sizes slices",
			query: "SELECT habitat, SUM(count) AS total FROM mammals_df GROUP BY habitat ORDER BY habitat",
			y:     "total",
			want: []chart.Slice{
				{Name: "Deciduous", Value: 24},
				{Name: "Evergreen", Value: 24},
				{Name: "Grassland", Value: 25},
			},
		},
		{
			name:  "no numeric column counts rows",
			query: "SELECT habitat, speciesName FROM mammals_df ORDER BY instanceID",
			y:     chart.CountLabel,
			want: []chart.Slice{
				{Name: "Evergreen", Value: 4},
				{Name: "Deciduous", Value: 3},
				{Name: "Grassland", Value: 1},
			},
		},
		{
			name:  "several numeric columns count rows",
			query: "SELECT habitat, count, decimalLatitude FROM mammals_df ORDER BY instanceID",
			y:     chart.CountLabel,
			want: []chart.Slice{
				{Name: "Evergreen", Value: 4},
				{Name: "Deciduous", Value: 3},
				{Name: "Grassland", Value: 1},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ag := &fakeAgent{
				query:  tc.query,
				output: `{"summary":"Habitat split.","chart_type":"pie_chart","x_axis":"habitat"}`,
			}
			svc := newService(ag)
			resp := svc.Ask(context.Background(), AskRequest{Question: "How are sightings split by habitat?"})
			require.NotNil(t, resp.Chart)
			assert.Empty(t, resp.Chart.YAxis)

			cr, ok := svc.RenderSuggestion(resp)
			require.True(t, ok)
			require.NotNil(t, cr.Chart, cr.Message)
			assert.Empty(t, cr.Message)
			assert.Equal(t, tc.y, cr.Chart.Y)
			assert.Equal(t, tc.want, cr.Chart.Slices)
		})
	}
}

func TestAskPlainTextAnswer(t *testing.T) {
	ag := &fakeAgent{output: "No records found based on your query."}
	resp := newService(ag).Ask(context.Background(), AskRequest{DemoIndex: 1})
	assert.Equal(t, DemoQueries[0], resp.Question)
	assert.Equal(t, "No records found based on your query.", resp.Text)
	assert.Nil(t, resp.Chart)

	_, ok := newService(nil).RenderSuggestion(resp)
	assert.False(t, ok)
}

func TestAskErrors(t *testing.T) {
	resp := newService(&fakeAgent{err: errors.New("rate limited")}).Ask(context.Background(), AskRequest{Question: "q"})
	assert.Equal(t, "An error occurred: rate limited", resp.Error)

	resp = newService(&fakeAgent{output: `[1,2,3]`}).Ask(context.Background(), AskRequest{Question: "q"})
	assert.Contains(t, resp.Error, "An error occurred: ")

	resp = newService(nil).Ask(context.Background(), AskRequest{Question: "q"})
	assert.NotEmpty(t, resp.Error)
}

func TestVisualizeMessages(t *testing.T) {
	svc := newService(nil)

	ok := svc.Visualize(chart.Request{Type: chart.Bar, X: "habitat", Y: "count"})
	require.NotNil(t, ok.Chart)
	assert.Empty(t, ok.Message)

	bad := svc.Visualize(chart.Request{Type: "histogram", X: "habitat", Y: "count"})
	assert.Equal(t, MsgInvalidChartType, bad.Message)

	incomplete := svc.Visualize(chart.Request{Type: chart.Bar, X: "habitat"})
	assert.Equal(t, MsgInvalidSelection, incomplete.Message)

	unknown := svc.Visualize(chart.Request{Type: chart.Bar, X: "region", Y: "count"})
	assert.Equal(t, apperr.UnknownColumn, unknown.Kind)
	assert.Equal(t, `Error generating plot based on user input: unknown column "region"`, unknown.Message)
}

func TestQueryAndFilters(t *testing.T) {
	svc := newService(nil)
	res := svc.Query(context.Background(), sqlexec.Raw("SELECT COUNT(*) AS n FROM mammals_df"))
	assert.True(t, res.OK())
	assert.Equal(t, "mammals_df", svc.Table())
	assert.Equal(t, map[string][]string{"habitat": {"Deciduous", "Evergreen", "Grassland"}}, svc.FilterOptions())
}
