package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/zjregee/scout/internal/models"
)

const (
	defaultTavilyBaseURL = "https://api.tavily.com"
	defaultBraveBaseURL  = "https://api.search.brave.com"
	defaultHTTPTimeout   = 15 * time.Second
	maxErrorBodyBytes    = 512
)

// Provider executes a web search and returns at most maxResults records.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

type Tavily struct {
	APIKey  string
	Depth   string
	BaseURL string
	client  *http.Client
}

func NewTavily(apiKey, depth, baseURL string) *Tavily {
	if depth == "" {
		depth = "basic"
	}
	if baseURL == "" {
		baseURL = defaultTavilyBaseURL
	}
	return &Tavily{
		APIKey:  apiKey,
		Depth:   depth,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func (t *Tavily) Name() string {
	return "tavily"
}

func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	payload, err := json.Marshal(map[string]any{
		"query":        query,
		"max_results":  maxResults,
		"search_depth": t.Depth,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	body, err := doRequest(t.client, req, "tavily")
	if err != nil {
		return nil, err
	}

	return parseResults(body, "results", "content", maxResults, "tavily")
}

type Brave struct {
	APIKey  string
	BaseURL string
	client  *http.Client
}

func NewBrave(apiKey, baseURL string) *Brave {
	if baseURL == "" {
		baseURL = defaultBraveBaseURL
	}
	return &Brave{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func (b *Brave) Name() string {
	return "brave"
}

func (b *Brave) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, errors.New("brave: API key is missing")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"/res/v1/web/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	body, err := doRequest(b.client, req, "brave")
	if err != nil {
		return nil, err
	}

	return parseResults(body, "web.results", "description", maxResults, "brave")
}

func doRequest(client *http.Client, req *http.Request, name string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", name, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", name, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := truncateUTF8(strings.TrimSpace(string(body)), maxErrorBodyBytes)
		return nil, fmt.Errorf("%s: http %d: %s", name, resp.StatusCode, msg)
	}

	return body, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func parseResults(body []byte, listPath, snippetField string, maxResults int, name string) ([]models.SearchResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: malformed response body", name)
	}

	var results []models.SearchResult
	gjson.GetBytes(body, listPath).ForEach(func(_, item gjson.Result) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		results = append(results, models.SearchResult{
			Title:   item.Get("title").String(),
			URL:     item.Get("url").String(),
			Content: item.Get(snippetField).String(),
		})
		return true
	})

	return results, nil
}
