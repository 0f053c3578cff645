// Package tools exposes capabilities the language model may call during a
// reasoning loop.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Tool is one callable capability. Execute receives the raw argument string
// the model produced and returns the text handed back to the model.
type Tool interface {
	Name() string
	Description() string
	InputSchema() *JSONSchema
	Execute(ctx context.Context, arguments string) (*Result, error)
}

// Result is a tool's output. Output goes back to the model; Data carries the
// typed value for callers that need it.
type Result struct {
	Output string
	Data   any
}

// JSONSchema is the subset of JSON Schema used to describe tool parameters.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
}

// Registry resolves tools by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding ts.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register adds or replaces t.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get returns the tool named name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Execute runs the named tool.
func (r *Registry) Execute(ctx context.Context, name, arguments string) (*Result, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t.Execute(ctx, arguments)
}
