// Package tools holds the functions the model may call during a chat turn.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dream-ai/bp-assistant/internal/llm"
)

// ErrUnknownTool is returned when the model asks for a tool that was never registered
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes a tool with the model-supplied arguments
type Handler func(ctx context.Context, args map[string]any) (map[string]any, error)

// Tool is a callable function together with its declaration
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     Handler
}

// Registry maps tool names to tools
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding the given tools
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return errors.New("tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %s has no handler", t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %s already registered", t.Name)
	}
	r.tools[t.Name] = t
	return nil
}

// Declarations lists every tool in name order
func (r *Registry) Declarations() []llm.ToolDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decls := make([]llm.ToolDeclaration, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, llm.ToolDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls
}

// Dispatch runs the tool named by call
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolCall) (map[string]any, error) {
	r.mu.RLock()
	t, ok := r.tools[call.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	result, err := t.Handler(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("tool %s failed: %w", call.Name, err)
	}
	return result, nil
}
