// Package agent runs the question answering loop: the language model reads
// the question, calls tools as often as it needs, and returns a final answer.
package agent

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/ai"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/sqlexec"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/tools"
)

// DefaultMaxIterations bounds the number of model turns per question.
const DefaultMaxIterations = 15

// ErrMaxIterations is returned when the model keeps calling tools past the
// iteration bound.
var ErrMaxIterations = errors.New("agent stopped after reaching the iteration limit")

// Agent answers a natural-language question.
type Agent interface {
	Answer(ctx context.Context, question string) (*Answer, error)
}

// Answer is the agent's final output plus the tool calls made on the way.
type Answer struct {
	Output     string
	Calls      []ToolCall
	Usage      ai.Usage
	Iterations int
}

// ToolCall records one tool invocation.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
	Output    string
	// Result is set for execute_sql_query calls.
	Result *sqlexec.Result
}

// LastRows returns the result of the last SQL call that returned rows.
func (a *Answer) LastRows() (*sqlexec.Result, bool) {
	for i := len(a.Calls) - 1; i >= 0; i-- {
		if r := a.Calls[i].Result; r != nil && r.OK() {
			return r, true
		}
	}
	return nil, false
}

// Config tunes a ToolLoop.
type Config struct {
	Model         string
	SystemPrompt  string
	MaxIterations int
	MaxTokens     int
	Temperature   float64
	Logger        *zap.Logger
}

// ToolLoop is an Agent driving a chat runtime with tool calling. Tool calls
// within one model turn run sequentially in the order given.
type ToolLoop struct {
	runtime ai.Runtime
	tools   *tools.Registry
	cfg     Config
	log     *zap.Logger
}

// NewToolLoop creates a ToolLoop.
func NewToolLoop(rt ai.Runtime, reg *tools.Registry, cfg Config) *ToolLoop {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &ToolLoop{runtime: rt, tools: reg, cfg: cfg, log: log}
}

// Answer implements Agent.
func (l *ToolLoop) Answer(ctx context.Context, question string) (*Answer, error) {
	messages := []ai.Message{}
	if l.cfg.SystemPrompt != "" {
		messages = append(messages, ai.Message{Role: "system", Content: l.cfg.SystemPrompt})
	}
	messages = append(messages, ai.Message{Role: "user", Content: question})
	specs := l.toolSpecs()

	ans := &Answer{}
	for ans.Iterations < l.cfg.MaxIterations {
		ans.Iterations++
		resp, err := l.runtime.Generate(ctx, ai.GenerateRequest{
			Model:       l.cfg.Model,
			Messages:    messages,
			Tools:       specs,
			MaxTokens:   l.cfg.MaxTokens,
			Temperature: l.cfg.Temperature,
		})
		if err != nil {
			return ans, err
		}
		addUsage(&ans.Usage, resp.Usage)
		if len(resp.Choices) == 0 {
			return ans, errors.New("no choices returned")
		}
		msg := resp.Choices[0].Message
		msg.Role = "assistant"
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			ans.Output = msg.Content
			l.log.Debug("agent finished", zap.Int("iterations", ans.Iterations), zap.Int("tool_calls", len(ans.Calls)))
			return ans, nil
		}

		for i, tc := range msg.ToolCalls {
			if tc.ID == "" {
				tc.ID = fmt.Sprintf("call_%d_%d", ans.Iterations, i)
			}
			call := l.runTool(ctx, tc)
			ans.Calls = append(ans.Calls, call)
			messages = append(messages, ai.Message{
				Role:       "tool",
				ToolCallID: tc.ID,
				Name:       tc.Function.Name,
				Content:    call.Output,
			})
		}
	}
	return ans, ErrMaxIterations
}

func (l *ToolLoop) runTool(ctx context.Context, tc ai.ToolCall) ToolCall {
	call := ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments}
	l.log.Info("tool call", zap.String("tool", call.Name), zap.String("arguments", call.Arguments))

	res, err := l.tools.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
	if err != nil {
		call.Output = "Error: " + err.Error()
		l.log.Warn("tool call failed", zap.String("tool", call.Name), zap.Error(err))
		return call
	}
	call.Output = res.Output
	if r, ok := res.Data.(sqlexec.Result); ok {
		call.Result = &r
	}
	return call
}

func (l *ToolLoop) toolSpecs() []ai.ToolSpec {
	var specs []ai.ToolSpec
	for _, t := range l.tools.List() {
		specs = append(specs, ai.ToolSpec{
			Type: "function",
			Function: ai.FunctionSpec{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.InputSchema(),
			},
		})
	}
	return specs
}

func addUsage(total *ai.Usage, u ai.Usage) {
	total.PromptTokens += u.PromptTokens
	total.CompletionTokens += u.CompletionTokens
	total.TotalTokens += u.TotalTokens
}
