package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"
)

type ToolFactory func(context.Context) (*schema.ToolInfo, tool.InvokableTool, error)

// Registry collects tool factories. Tools are built in registration order so
// the schema list handed to the model is stable across runs.
type Registry struct {
	names     []string
	factories map[string]ToolFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ToolFactory)}
}

func (r *Registry) RegisterTool(name string, getToolFunc ToolFactory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if getToolFunc == nil {
		return fmt.Errorf("tool %s has no factory", name)
	}
	if lo.Contains(r.names, name) {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.names = append(r.names, name)
	r.factories[name] = getToolFunc
	return nil
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) GetAllRegisteredTools(ctx context.Context) ([]*schema.ToolInfo, map[string]tool.InvokableTool, error) {
	allToolInfos := make([]*schema.ToolInfo, 0, len(r.names))
	allToolsMap := make(map[string]tool.InvokableTool, len(r.names))

	for _, name := range r.names {
		info, t, err := r.factories[name](ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build tool %s: %w", name, err)
		}
		if info == nil || t == nil {
			return nil, nil, fmt.Errorf("tool %s factory returned nil", name)
		}
		if _, dup := allToolsMap[info.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate tool name: %s", info.Name)
		}

		allToolInfos = append(allToolInfos, info)
		allToolsMap[info.Name] = t
	}

	return allToolInfos, allToolsMap, nil
}
