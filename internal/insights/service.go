// Package insights is the application service behind the CLI and HTTP
// surfaces. Each user action is one explicit request/response pair; the
// service holds only immutable collaborators.
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/agent"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/ai"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/chart"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/interpret"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
)

// User-visible messages.
const (
	MsgEmptyQuestion     = "Please enter a query."
	MsgInvalidChartType  = "Invalid Chart Type Selected!"
	MsgInvalidSelection  = "Invalid selection for chart parameters!"
	msgChartErrorPrefix  = "Error generating plot based on user input: "
	msgAgentErrorPrefix  = "An error occurred: "
	msgAgentNotAvailable = "No language model is configured; set an API key or choose the ollama provider."
)

// Service answers questions and builds charts over one dataset.
type Service struct {
	store    *dataset.Store
	executor *sqlexec.Executor
	agent    agent.Agent
	log      *zap.Logger
}

// New creates a Service. ag may be nil, in which case Ask reports that no
// model is configured while Query and Visualize keep working.
func New(store *dataset.Store, executor *sqlexec.Executor, ag agent.Agent, log *zap.Logger) *Service {
	if store == nil {
		store = dataset.Empty()
	}
	if executor == nil {
		executor = sqlexec.New(store)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, executor: executor, agent: ag, log: log}
}

// Store returns the dataset.
func (s *Service) Store() *dataset.Store { return s.store }

// HasAgent reports whether Ask can reach a language model.
func (s *Service) HasAgent() bool { return s.agent != nil }

// Table returns the SQL table name.
func (s *Service) Table() string { return s.executor.Table() }

// AskRequest selects the question. A non-blank Question overrides the demo
// query chosen by DemoIndex (1-based; 0 means none).
type AskRequest struct {
	Question  string `json:"question"`
	DemoIndex int    `json:"demo_index,omitempty"`
}

// AskResponse is the outcome of one question.
type AskResponse struct {
	Question string                     `json:"question"`
	Raw      string                     `json:"raw,omitempty"`
	Text     string                     `json:"text,omitempty"`
	Chart    *interpret.ChartSuggestion `json:"chart_suggestion,omitempty"`
	Warning  string                     `json:"warning,omitempty"`
	Error    string                     `json:"error,omitempty"`
	Calls    []agent.ToolCall           `json:"-"`
	Usage    ai.Usage                   `json:"usage"`
	// Err is the agent failure behind Error, if any.
	Err error `json:"-"`
	// Rows is the last tool result that returned rows, used to render the
	// chart suggestion.
	Rows *sqlexec.Result `json:"-"`
}

// ResolveQuestion applies the custom-over-demo rule. ok is false when
// neither is given.
func ResolveQuestion(req AskRequest) (string, bool) {
	if q := strings.TrimSpace(req.Question); q != "" {
		return q, true
	}
	if req.DemoIndex >= 1 && req.DemoIndex <= len(DemoQueries) {
		return DemoQueries[req.DemoIndex-1], true
	}
	return "", false
}

// Ask runs the agent on the resolved question and interprets its output.
func (s *Service) Ask(ctx context.Context, req AskRequest) AskResponse {
	question, ok := ResolveQuestion(req)
	if !ok {
		return AskResponse{Warning: MsgEmptyQuestion}
	}
	resp := AskResponse{Question: question}
	if s.agent == nil {
		resp.Error = msgAgentNotAvailable
		return resp
	}

	s.log.Info("answering question", zap.String("question", question))
	ans, err := s.agent.Answer(ctx, question)
	if ans != nil {
		resp.Calls = ans.Calls
		resp.Usage = ans.Usage
		if rows, ok := ans.LastRows(); ok {
			resp.Rows = rows
		}
	}
	if err != nil {
		s.log.Error("agent failed", zap.Error(err))
		resp.Error = msgAgentErrorPrefix + err.Error()
		resp.Err = err
		return resp
	}

	resp.Raw = ans.Output
	display := interpret.Interpret(ans.Output)
	if display.Err != "" {
		resp.Error = display.Err
		return resp
	}
	if text, ok := display.Text(); ok {
		resp.Text = text
	}
	resp.Chart = display.Chart()
	return resp
}

// Query runs a SQL request directly, bypassing the agent.
func (s *Service) Query(ctx context.Context, req sqlexec.Request) sqlexec.Result {
	return s.executor.Execute(ctx, req)
}

// ChartResponse carries either a chart or the message to show instead.
type ChartResponse struct {
	Chart   *chart.Chart `json:"chart,omitempty"`
	Option  any          `json:"option,omitempty"`
	Message string       `json:"message,omitempty"`
	Kind    apperr.Kind  `json:"kind,omitempty"`
}

// Visualize builds a chart over the full dataset.
func (s *Service) Visualize(req chart.Request) ChartResponse {
	return s.render(s.store, req)
}

// VisualizeResult builds a chart over the rows of a query result.
func (s *Service) VisualizeResult(res sqlexec.Result, req chart.Request) ChartResponse {
	return s.render(res, req)
}

// RenderSuggestion draws the agent's chart suggestion against the rows of
// its last successful query. The group-by column becomes the colour. A pie
// suggestion names only its x-axis; its slices are sized by the result's
// single numeric column, or by row counts when there is none or several.
func (s *Service) RenderSuggestion(resp AskResponse) (ChartResponse, bool) {
	if resp.Chart == nil || resp.Rows == nil {
		return ChartResponse{}, false
	}
	req := chart.Request{
		Type:  chart.Type(resp.Chart.Type),
		X:     resp.Chart.XAxis,
		Y:     resp.Chart.YAxis,
		Color: resp.Chart.GroupBy,
	}
	if req.Type == chart.Pie && req.Y == "" {
		req.Y = pieValueColumn(*resp.Rows, req.X)
		req.CountRows = req.Y == ""
	}
	return s.render(*resp.Rows, req), true
}

func pieValueColumn(res sqlexec.Result, x string) string {
	var found string
	for _, col := range res.ColumnNames() {
		if col == x || !chart.NumericColumn(res, col) {
			continue
		}
		if found != "" {
			return ""
		}
		found = col
	}
	return found
}

func (s *Service) render(t chart.Table, req chart.Request) ChartResponse {
	c, err := chart.Build(t, req)
	if err != nil {
		kind := apperr.KindOf(err)
		s.log.Warn("chart not built", zap.String("kind", string(kind)), zap.Error(err))
		switch kind {
		case apperr.InvalidChartType:
			return ChartResponse{Message: MsgInvalidChartType, Kind: kind}
		case apperr.IncompleteSelection:
			return ChartResponse{Message: MsgInvalidSelection, Kind: kind}
		}
		var ae *apperr.E
		msg := err.Error()
		if errors.As(err, &ae) {
			msg = ae.Message
			if ae.Err != nil {
				msg = fmt.Sprintf("%s: %v", ae.Message, ae.Err)
			}
		}
		return ChartResponse{Message: msgChartErrorPrefix + msg, Kind: kind}
	}
	return ChartResponse{Chart: c, Option: chart.Option(c)}
}

// FilterOptions returns the values offered for each chart filter column.
func (s *Service) FilterOptions() map[string][]string {
	return map[string][]string{
		dataset.ColHabitat: s.store.Distinct(dataset.ColHabitat),
	}
}
