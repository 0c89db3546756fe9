package service

import (
	"context"
	"fmt"

	"github.com/zjregee/scout/internal/config"
	"github.com/zjregee/scout/internal/logging"
	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/service/storage"
	"github.com/zjregee/scout/internal/service/tools"
	"github.com/zjregee/scout/internal/service/tools/search"
)

func NewSearchProvider(cfg *config.Config) (search.Provider, error) {
	switch cfg.Search.Provider {
	case config.SearchProviderTavily:
		return search.NewTavily(cfg.APIKeys.Tavily, cfg.Search.Depth, cfg.Search.BaseURL), nil
	case config.SearchProviderBrave:
		return search.NewBrave(cfg.APIKeys.Brave, cfg.Search.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.Search.Provider)
	}
}

func OpenStore(cfg config.StorageConfig) (storage.CheckpointStore, error) {
	switch cfg.Backend {
	case config.StorageBackendMemory:
		return storage.NewMemoryStore(), nil
	case config.StorageBackendBolt:
		return storage.OpenBoltStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// NewToolRegistry registers every tool the agent may call.
func NewToolRegistry(provider search.Provider, maxResults int) (*tools.Registry, error) {
	registry := tools.NewRegistry()
	if err := registry.RegisterTool(search.WebSearchToolName, search.NewWebSearchTool(provider, maxResults)); err != nil {
		return nil, err
	}
	return registry, nil
}

// Bootstrap wires the model, tools, control loop and checkpoint store from
// cfg. The returned close function releases the store.
func Bootstrap(ctx context.Context, cfg *config.Config) (*AgentService, func() error, error) {
	chatModel, err := NewChatModel(ctx, cfg.Model, cfg.APIKeys)
	if err != nil {
		return nil, nil, err
	}

	provider, err := NewSearchProvider(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.SearchAPIKey() == "" {
		logging.Logger().WithField("provider", provider.Name()).Warn("search API key is not set, web_search calls will fail")
	}

	registry, err := NewToolRegistry(provider, cfg.Search.MaxResults)
	if err != nil {
		return nil, nil, err
	}

	toolInfos, toolsMap, err := registry.GetAllRegisteredTools(ctx)
	if err != nil {
		return nil, nil, err
	}

	client, err := NewModelClient(chatModel, toolInfos)
	if err != nil {
		return nil, nil, err
	}

	agent, err := NewAgent(models.AgentConfig{
		ModelID:       cfg.Model,
		MaxIterations: cfg.MaxIterations,
		ModelTimeout:  cfg.Timeouts.Model,
		ToolTimeout:   cfg.Timeouts.Tool,
		TurnTimeout:   cfg.Timeouts.Turn,
		ParallelTools: cfg.ParallelTools,
	}, client, toolsMap)
	if err != nil {
		return nil, nil, err
	}

	store, err := OpenStore(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	logging.Logger().
		WithField("model", cfg.Model).
		WithField("search", provider.Name()).
		WithField("storage", cfg.Storage.Backend).
		Info("agent ready")

	return NewAgentService(agent, store), store.Close, nil
}
