package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is the hosted forge API endpoint.
	DefaultAPIURL = "https://api.github.com"
	// DefaultPageSize matches the page size the upstream endpoints are walked with.
	DefaultPageSize = 30
	// DefaultCacheTTLSeconds is how long fetched metadata stays fresh in memory.
	DefaultCacheTTLSeconds = 300
)

// Config holds application configuration. Values come from the YAML config
// file with environment variables taking precedence. The token is only ever
// read; nothing in this package writes it back to disk.
type Config struct {
	// Token is the personal access token presented on every request.
	Token string `yaml:"token"`

	// APIURL is the base URL of the forge REST API.
	APIURL string `yaml:"api_url"`

	// PageSize is the per_page value used when walking paginated endpoints.
	PageSize int `yaml:"page_size"`

	// CacheTTLSeconds is the in-memory metadata cache lifetime.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`

	// CacheFile is where the metadata snapshot is persisted between runs.
	CacheFile string `yaml:"cache_file"`
}

// Load reads the config file at path (the default location when path is
// empty; a missing file is fine) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		APIURL:          DefaultAPIURL,
		PageSize:        DefaultPageSize,
		CacheTTLSeconds: DefaultCacheTTLSeconds,
		CacheFile:       defaultCacheFile(),
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.CacheTTLSeconds <= 0 {
		cfg.CacheTTLSeconds = DefaultCacheTTLSeconds
	}

	return cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ghbulk", "config.yaml")
}

// HasToken returns true when a credential is configured.
func (c *Config) HasToken() bool {
	return c.Token != ""
}

// CacheTTL returns the in-memory cache lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func applyEnv(cfg *Config) {
	if token := os.Getenv("GHBULK_TOKEN"); token != "" {
		cfg.Token = token
	} else if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Token = token
	}

	if apiURL := os.Getenv("GHBULK_API_URL"); apiURL != "" {
		cfg.APIURL = apiURL
	}

	if pageSizeStr := os.Getenv("GHBULK_PAGE_SIZE"); pageSizeStr != "" {
		if pageSize, err := strconv.Atoi(pageSizeStr); err == nil && pageSize > 0 {
			cfg.PageSize = pageSize
		}
	}

	if ttlStr := os.Getenv("GHBULK_CACHE_TTL_SECONDS"); ttlStr != "" {
		if ttl, err := strconv.Atoi(ttlStr); err == nil && ttl > 0 {
			cfg.CacheTTLSeconds = ttl
		}
	}

	if cacheFile := os.Getenv("GHBULK_CACHE_FILE"); cacheFile != "" {
		cfg.CacheFile = cacheFile
	}
}

func defaultCacheFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "ghbulk", "metadata.json")
}
