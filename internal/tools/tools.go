// Package tools implements the course tools the model may call and the
// manager that dispatches them by name.
package tools

import (
	"context"
	"fmt"
	"sync"

	"courserag/internal/anthropic"
	"courserag/internal/model"
)

// Tool is one named capability exposed to the model backend.
type Tool interface {
	// Definition returns the schema descriptor passed through to the model
	// backend unmodified.
	Definition() anthropic.Tool

	// Execute runs the tool. Failures must be reported as errors; the
	// orchestrator treats any error as a failed round.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// sourceTracker is implemented by tools that remember where their last
// answer came from, so the UI can show citations.
type sourceTracker interface {
	LastSources() []model.Source
	ResetSources()
}

// Manager keeps the registry of available tools. Registration happens once at
// startup; execution may come from concurrent exchanges.
type Manager struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewManager() *Manager {
	return &Manager{tools: make(map[string]Tool)}
}

// Register adds a tool under its definition name.
func (m *Manager) Register(t Tool) error {
	name := t.Definition().Name
	if name == "" {
		return fmt.Errorf("tool definition has no name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	m.tools[name] = t
	m.order = append(m.order, name)
	return nil
}

// Definitions lists tool schemas in registration order.
func (m *Manager) Definitions() []anthropic.Tool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	defs := make([]anthropic.Tool, 0, len(m.order))
	for _, name := range m.order {
		defs = append(defs, m.tools[name].Definition())
	}
	return defs
}

// Execute dispatches a tool by name. An unknown name is reported to the model
// as tool output rather than failing the round, so the model can correct
// itself on the next call.
func (m *Manager) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	m.mu.RLock()
	t, ok := m.tools[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}
	return t.Execute(ctx, args)
}

// LastSources returns the sources recorded by the most recent search, from
// whichever tool tracked them.
func (m *Manager) LastSources() []model.Source {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, name := range m.order {
		if tracker, ok := m.tools[name].(sourceTracker); ok {
			if sources := tracker.LastSources(); len(sources) > 0 {
				return sources
			}
		}
	}
	return nil
}

// ResetSources clears tracked sources on every tool before a new exchange.
func (m *Manager) ResetSources() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tools {
		if tracker, ok := t.(sourceTracker); ok {
			tracker.ResetSources()
		}
	}
}

// stringArg extracts an optional string argument.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg extracts an optional integer argument. JSON numbers decode as
// float64, so both forms are accepted.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
