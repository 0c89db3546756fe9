package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/zjregee/scout/internal/service/tools"
)

const (
	WebSearchToolName        = "web_search"
	WebSearchToolDescription = "Searches the web and returns the most relevant results as a JSON list of {title, url, content}. Use it for anything that needs current or real-time information such as news, prices or weather."
	DefaultMaxResults        = 3
	noResults                = "No results found."
)

type WebSearchParams struct {
	Query string `json:"query" jsonschema:"description=The search query."`
}

// NewWebSearchTool returns a registry factory for the web_search tool backed by provider.
func NewWebSearchTool(provider Provider, maxResults int) tools.ToolFactory {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	search := func(ctx context.Context, params *WebSearchParams) (string, error) {
		if params == nil {
			return "", fmt.Errorf("params must be provided")
		}

		query := strings.TrimSpace(params.Query)
		if query == "" {
			return "", fmt.Errorf("query must be provided")
		}

		results, err := provider.Search(ctx, query, maxResults)
		if err != nil {
			return "", fmt.Errorf("search failed: %w", err)
		}
		if len(results) > maxResults {
			results = results[:maxResults]
		}
		if len(results) == 0 {
			return noResults, nil
		}

		data, err := json.Marshal(results)
		if err != nil {
			return "", fmt.Errorf("failed to encode results: %w", err)
		}
		return string(data), nil
	}

	return func(ctx context.Context) (*schema.ToolInfo, tool.InvokableTool, error) {
		t, err := utils.InferTool(WebSearchToolName, WebSearchToolDescription, search)
		if err != nil {
			return nil, nil, err
		}

		info, err := t.Info(ctx)
		if err != nil {
			return nil, nil, err
		}

		return info, t, nil
	}
}
