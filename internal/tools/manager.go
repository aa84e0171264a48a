package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lecternhq/lectern/internal/core"
	"github.com/lecternhq/lectern/pkg/log"
)

// Manager routes tool invocations by name. It holds no per-query state:
// provenance travels inside each Result, so one Manager instance serves
// concurrent queries safely.
type Manager struct {
	order []string
	tools map[string]Tool
}

func NewManager() *Manager {
	return &Manager{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool keyed by its declared name. Duplicate names are a
// configuration error.
func (m *Manager) Register(t Tool) error {
	name := t.Definition().Name
	if _, exists := m.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	m.tools[name] = t
	m.order = append(m.order, name)
	return nil
}

// Definitions returns the declared tool definitions in registration order.
func (m *Manager) Definitions() []core.Tool {
	defs := make([]core.Tool, 0, len(m.order))
	for _, name := range m.order {
		defs = append(defs, m.tools[name].Definition())
	}
	return defs
}

// Execute runs the named tool. An unknown name is a normal outcome the
// model has to be told about in plain text, never an error.
func (m *Manager) Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	tool, ok := m.tools[name]
	if !ok {
		return Result{Content: fmt.Sprintf("Tool '%s' not found", name)}, nil
	}

	log.FromCtx(ctx).Info().Str("tool", name).Msg("executing tool")
	return tool.Execute(ctx, args)
}
