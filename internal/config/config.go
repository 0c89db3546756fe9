package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "scout.yaml"

const (
	SearchProviderTavily = "tavily"
	SearchProviderBrave  = "brave"

	StorageBackendBolt   = "bolt"
	StorageBackendMemory = "memory"
)

type Config struct {
	Model         string        `yaml:"model"`
	MaxIterations int           `yaml:"max_iterations"`
	ParallelTools bool          `yaml:"parallel_tools"`
	Timeouts      TimeoutConfig `yaml:"timeouts"`
	Search        SearchConfig  `yaml:"search"`
	Storage       StorageConfig `yaml:"storage"`
	Web           WebConfig     `yaml:"web"`
	CLI           CLIConfig     `yaml:"cli"`
	Log           LogConfig     `yaml:"log"`

	APIKeys APIKeys `yaml:"-"`
}

type TimeoutConfig struct {
	Model time.Duration `yaml:"model"`
	Tool  time.Duration `yaml:"tool"`
	Turn  time.Duration `yaml:"turn"`
}

type SearchConfig struct {
	Provider   string `yaml:"provider"`
	MaxResults int    `yaml:"max_results"`
	Depth      string `yaml:"depth"`
	BaseURL    string `yaml:"base_url"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type WebConfig struct {
	Addr string `yaml:"addr"`
}

type CLIConfig struct {
	ThreadID  string `yaml:"thread_id"`
	GraphPath string `yaml:"graph_path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// APIKeys are read from the environment only, never from the YAML file.
type APIKeys struct {
	Gemini     string
	OpenAI     string
	DeepSeek   string
	Ark        string
	Moonshot   string
	OpenRouter string
	Tavily     string
	Brave      string
}

func Default() *Config {
	return &Config{
		Model:         "gemini-2.5-flash",
		MaxIterations: 10,
		Timeouts: TimeoutConfig{
			Model: 60 * time.Second,
			Tool:  20 * time.Second,
			Turn:  3 * time.Minute,
		},
		Search: SearchConfig{
			Provider:   SearchProviderTavily,
			MaxResults: 3,
			Depth:      "basic",
		},
		Storage: StorageConfig{
			Backend: StorageBackendBolt,
			Path:    defaultStoragePath(),
		},
		Web: WebConfig{
			Addr: ":8501",
		},
		CLI: CLIConfig{
			ThreadID:  "1",
			GraphPath: "agent_graph.mmd",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultStoragePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".scout", "scout.db")
	}
	return filepath.Join(homeDir, ".scout", "scout.db")
}

// Load builds the configuration from defaults, the YAML file at path, a .env
// file in the working directory and the process environment, in that order.
// A missing file at DefaultPath is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if !(errors.Is(err, fs.ErrNotExist) && path == DefaultPath) {
				return nil, err
			}
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return nil
}

func loadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Model, "SCOUT_MODEL")
	setString(&c.Search.Provider, "SCOUT_SEARCH_PROVIDER")
	setString(&c.Storage.Backend, "SCOUT_STORAGE_BACKEND")
	setString(&c.Storage.Path, "SCOUT_STORAGE_PATH")
	setString(&c.Web.Addr, "SCOUT_WEB_ADDR")
	setString(&c.Log.Level, "SCOUT_LOG_LEVEL")

	if v := strings.TrimSpace(os.Getenv("SCOUT_MAX_ITERATIONS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCOUT_MAX_ITERATIONS %q: %w", v, err)
		}
		c.MaxIterations = n
	}

	c.APIKeys = APIKeys{
		Gemini:     firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"),
		OpenAI:     firstEnv("OPENAI_API_KEY"),
		DeepSeek:   firstEnv("DEEPSEEK_API_KEY"),
		Ark:        firstEnv("ARK_API_KEY", "BYTE_DANCE_API_KEY"),
		Moonshot:   firstEnv("MOONSHOT_API_KEY"),
		OpenRouter: firstEnv("OPENROUTER_API_KEY"),
		Tavily:     firstEnv("TAVILY_API_KEY"),
		Brave:      firstEnv("BRAVE_API_KEY"),
	}

	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) Validate() error {
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Timeouts.Model < 0 || c.Timeouts.Tool < 0 || c.Timeouts.Turn < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}

	switch c.Search.Provider {
	case SearchProviderTavily, SearchProviderBrave:
	default:
		return fmt.Errorf("unsupported search provider: %s", c.Search.Provider)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search max_results must be positive, got %d", c.Search.MaxResults)
	}

	switch c.Storage.Backend {
	case StorageBackendMemory:
	case StorageBackendBolt:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage path is required for the bolt backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}

	return nil
}

// SearchAPIKey returns the key for the configured search provider.
func (c *Config) SearchAPIKey() string {
	switch c.Search.Provider {
	case SearchProviderTavily:
		return c.APIKeys.Tavily
	case SearchProviderBrave:
		return c.APIKeys.Brave
	default:
		return ""
	}
}
