package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/zjregee/scout/internal/config"
	"github.com/zjregee/scout/internal/models"
)

const (
	Gemini25FlashModelID      = "gemini-2.5-flash"
	GPT4oMiniModelID          = "gpt-4o-mini"
	DeepSeekChatModelID       = "deepseek-chat"
	DoubaoSeed18251215ModelID = "doubao-seed-1-8-251215"
	KimiK2TurboModelID        = "kimi-k2-turbo-preview"
	XGrok41FastModelID        = "x-ai/grok-4.1-fast"
)

const (
	GoogleModelProvider     = "Google"
	OpenAIModelProvider     = "OpenAI"
	DeepSeekModelProvider   = "DeepSeek"
	ByteDanceModelProvider  = "ByteDance"
	MoonshotModelProvider   = "Moonshot"
	OpenRouterModelProvider = "OpenRouter"
)

const (
	GoogleModelBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
	OpenAIModelBaseURL     = "https://api.openai.com/v1"
	DeepSeekModelBaseURL   = "https://api.deepseek.com"
	ByteDanceModelBaseURL  = "https://ark.cn-beijing.volces.com/api/v3"
	MoonshotModelBaseURL   = "https://api.moonshot.cn/v1"
	OpenRouterModelBaseURL = "https://openrouter.ai/api/v1"
)

type ModelConfig struct {
	Info    *models.ModelInfo
	BaseURL string
}

var availableModels = map[string]*ModelConfig{
	Gemini25FlashModelID: {
		Info: &models.ModelInfo{
			ID:            Gemini25FlashModelID,
			Name:          "gemini-2.5-flash",
			Provider:      GoogleModelProvider,
			ContextWindow: "1M",
		},
		BaseURL: GoogleModelBaseURL,
	},
	GPT4oMiniModelID: {
		Info: &models.ModelInfo{
			ID:            GPT4oMiniModelID,
			Name:          "gpt-4o-mini",
			Provider:      OpenAIModelProvider,
			ContextWindow: "128k",
		},
		BaseURL: OpenAIModelBaseURL,
	},
	DeepSeekChatModelID: {
		Info: &models.ModelInfo{
			ID:            DeepSeekChatModelID,
			Name:          "deepseek-chat",
			Provider:      DeepSeekModelProvider,
			ContextWindow: "128k",
		},
		BaseURL: DeepSeekModelBaseURL,
	},
	DoubaoSeed18251215ModelID: {
		Info: &models.ModelInfo{
			ID:            DoubaoSeed18251215ModelID,
			Name:          "doubao-seed-1.8",
			Provider:      ByteDanceModelProvider,
			ContextWindow: "256k",
		},
		BaseURL: ByteDanceModelBaseURL,
	},
	KimiK2TurboModelID: {
		Info: &models.ModelInfo{
			ID:            KimiK2TurboModelID,
			Name:          "kimi-k2",
			Provider:      MoonshotModelProvider,
			ContextWindow: "256k",
		},
		BaseURL: MoonshotModelBaseURL,
	},
	XGrok41FastModelID: {
		Info: &models.ModelInfo{
			ID:            XGrok41FastModelID,
			Name:          "grok-4.1-fast",
			Provider:      OpenRouterModelProvider,
			ContextWindow: "2M",
		},
		BaseURL: OpenRouterModelBaseURL,
	},
}

func ListModels() []*models.ModelInfo {
	infos := make([]*models.ModelInfo, 0, len(availableModels))
	for _, cfg := range availableModels {
		infos = append(infos, cfg.Info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}

func GetModelInfo(modelID string) (*models.ModelInfo, bool) {
	cfg, ok := availableModels[modelID]
	if !ok {
		return nil, false
	}
	return cfg.Info, true
}

func apiKeyForProvider(provider string, keys config.APIKeys) string {
	switch provider {
	case GoogleModelProvider:
		return keys.Gemini
	case OpenAIModelProvider:
		return keys.OpenAI
	case DeepSeekModelProvider:
		return keys.DeepSeek
	case ByteDanceModelProvider:
		return keys.Ark
	case MoonshotModelProvider:
		return keys.Moonshot
	case OpenRouterModelProvider:
		return keys.OpenRouter
	default:
		return ""
	}
}

// NewChatModel builds the eino chat model for modelID. Sampling temperature is
// applied per call by ModelClient, not here.
func NewChatModel(ctx context.Context, modelID string, keys config.APIKeys) (model.ToolCallingChatModel, error) {
	cfg, ok := availableModels[modelID]
	if !ok {
		return nil, fmt.Errorf("model not found: %s", modelID)
	}

	apiKey := strings.TrimSpace(apiKeyForProvider(cfg.Info.Provider, keys))
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key for %s provider (model %s)", cfg.Info.Provider, modelID)
	}

	switch cfg.Info.Provider {
	case DeepSeekModelProvider:
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   modelID,
		})
	case ByteDanceModelProvider:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   modelID,
		})
	case GoogleModelProvider, OpenAIModelProvider, MoonshotModelProvider, OpenRouterModelProvider:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   modelID,
		})
	default:
	}

	return nil, fmt.Errorf("unsupported agent model: %s", modelID)
}
