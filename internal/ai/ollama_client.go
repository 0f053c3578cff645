package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaClient is a minimal HTTP client for a local Ollama runtime.
// It implements a Generate method compatible with the OpenRouter client surface.
type OllamaClient struct {
	httpClient       *http.Client
	host             string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
}

// NewOllamaClient creates a new client targeting the given host (e.g., http://127.0.0.1:11434).
func NewOllamaClient(host string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *OllamaClient {
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 2
	}
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 1 * time.Second
	}
	return &OllamaClient{
		httpClient:       &http.Client{Timeout: httpTimeout},
		host:             host,
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
		retryMaxDelay:    maxDelay,
	}
}

// Structures aligned with Ollama /api/chat (non-streaming)
type ollamaChatMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
	ToolName  string           `json:"tool_name,omitempty"`
}
type ollamaToolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}
type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Tools    []ToolSpec          `json:"tools,omitempty"`
	Stream   bool                `json:"stream"`
	Options  map[string]any      `json:"options,omitempty"`
}
type ollamaChatResponse struct {
	Message    ollamaChatMessage `json:"message"`
	Done       bool              `json:"done"`
	DoneReason string            `json:"done_reason,omitempty"`
}

// toOllamaMessages converts chat messages. Ollama takes tool arguments as a
// JSON object rather than a string and names tool results by tool.
func toOllamaMessages(in []Message) []ollamaChatMessage {
	names := map[string]string{}
	out := make([]ollamaChatMessage, len(in))
	for i, msg := range in {
		om := ollamaChatMessage{Role: msg.Role, Content: msg.Content}
		for _, tc := range msg.ToolCalls {
			names[tc.ID] = tc.Function.Name
			var call ollamaToolCall
			call.Function.Name = tc.Function.Name
			args := json.RawMessage(tc.Function.Arguments)
			if !json.Valid(args) {
				args, _ = json.Marshal(tc.Function.Arguments)
			}
			call.Function.Arguments = args
			om.ToolCalls = append(om.ToolCalls, call)
		}
		if msg.Role == "tool" {
			om.ToolName = msg.Name
			if om.ToolName == "" {
				om.ToolName = names[msg.ToolCallID]
			}
		}
		out[i] = om
	}
	return out
}

// fromOllamaMessage maps a reply to the shared Message shape, assigning
// call IDs since Ollama does not return any.
func fromOllamaMessage(m ollamaChatMessage) Message {
	msg := Message{Role: "assistant", Content: m.Content}
	for i, tc := range m.ToolCalls {
		args := string(tc.Function.Arguments)
		// Some models return the arguments already encoded as a JSON string.
		var s string
		if err := json.Unmarshal(tc.Function.Arguments, &s); err == nil {
			args = s
		}
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:       fmt.Sprintf("call_%d", i),
			Type:     "function",
			Function: FunctionCall{Name: tc.Function.Name, Arguments: args},
		})
	}
	return msg
}

// Generate sends a chat request to Ollama and maps the response to GenerateResponse.
func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	oreq := ollamaChatRequest{
		Model:    req.Model,
		Messages: toOllamaMessages(req.Messages),
		Tools:    req.Tools,
		Stream:   false,
		Options:  map[string]any{},
	}
	if req.Temperature > 0 {
		oreq.Options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		oreq.Options["num_predict"] = req.MaxTokens
	}

	payload, err := json.Marshal(oreq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.host + "/api/chat"
	maxAttempts := c.retryMaxAttempts
	backoff := c.retryBaseDelay
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			// Retry transient network errors
			if isRetryableNetErr(err) && attempt < maxAttempts {
				time.Sleep(withJitter(backoff))
				backoff *= 2
				continue
			}
			return nil, &UnreachableError{Host: c.host, Err: err}
		}
		var out GenerateResponse
		func() {
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
				var raw map[string]any
				_ = json.Unmarshal(body, &raw)
				apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw}
				if msg, ok := raw["error"].(string); ok {
					apiErr.Message = msg
				}
				if msg, ok := raw["message"].(string); ok && apiErr.Message == "" {
					apiErr.Message = msg
				}
				// classifying broadly
				if resp.StatusCode == http.StatusNotFound {
					// Likely missing model
					lastErr = &ModelNotFoundError{APIError: apiErr}
					return
				}
				if resp.StatusCode >= 500 {
					lastErr = &ServerError{APIError: apiErr}
					return
				}
				if resp.StatusCode == 400 {
					lastErr = &BadRequestError{APIError: apiErr}
					return
				}
				lastErr = apiErr
				return
			}
			var oresp ollamaChatResponse
			if err := json.NewDecoder(resp.Body).Decode(&oresp); err != nil {
				lastErr = fmt.Errorf("decode response: %w", err)
				return
			}
			msg := fromOllamaMessage(oresp.Message)
			finish := "stop"
			if len(msg.ToolCalls) > 0 {
				finish = "tool_calls"
			}
			out.Choices = []Choice{{Message: msg, FinishReason: finish}}
			// Simulated correlation id
			out.RequestID = fmt.Sprintf("ollama_%d", time.Now().UnixNano())
			lastErr = nil
		}()
		if lastErr == nil {
			return &out, nil
		}
		if attempt < maxAttempts {
			time.Sleep(withJitter(backoff))
			backoff *= 2
			continue
		}
		break
	}
	return nil, lastErr
}
