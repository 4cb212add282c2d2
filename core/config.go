package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

const DefaultListPageSize = 100

type HTTPConfig struct {
	Addr         string `koanf:"addr" mapstructure:"addr"`
	ReadTimeout  string `koanf:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout string `koanf:"write_timeout" mapstructure:"write_timeout"`
	MaxBodyBytes int64  `koanf:"max_body_bytes" mapstructure:"max_body_bytes"`
}

type GitHubConfig struct {
	ClientID     string `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret string `koanf:"client_secret" mapstructure:"client_secret"`
	Scope        string `koanf:"scope" mapstructure:"scope"`
	AuthorizeURL string `koanf:"authorize_url" mapstructure:"authorize_url"`
	TokenURL     string `koanf:"token_url" mapstructure:"token_url"`
	UserURL      string `koanf:"user_url" mapstructure:"user_url"`
}

type AuthConfig struct {
	JWTSecret string       `koanf:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTL  string       `koanf:"token_ttl" mapstructure:"token_ttl"`
	GitHub    GitHubConfig `koanf:"github" mapstructure:"github"`
}

type LLMConfig struct {
	APIKey  string `koanf:"api_key" mapstructure:"api_key"`
	BaseURL string `koanf:"base_url" mapstructure:"base_url"`
	Timeout string `koanf:"timeout" mapstructure:"timeout"`
}

type CacheConfig struct {
	Enabled bool   `koanf:"enabled" mapstructure:"enabled"`
	TTL     string `koanf:"ttl" mapstructure:"ttl"`
}

type StorageConfig struct {
	Driver       string      `koanf:"driver" mapstructure:"driver"`
	DSN          string      `koanf:"dsn" mapstructure:"dsn"`
	ListPageSize int         `koanf:"list_page_size" mapstructure:"list_page_size"`
	Cache        CacheConfig `koanf:"cache" mapstructure:"cache"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	HTTP        HTTPConfig    `koanf:"http" mapstructure:"http"`
	Auth        AuthConfig    `koanf:"auth" mapstructure:"auth"`
	LLM         LLMConfig     `koanf:"llm" mapstructure:"llm"`
	Storage     StorageConfig `koanf:"storage" mapstructure:"storage"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "stepgate",
		HTTP: HTTPConfig{
			Addr:         ":8787",
			ReadTimeout:  "30s",
			WriteTimeout: "150s",
			MaxBodyBytes: 5 << 20,
		},
		Auth: AuthConfig{
			TokenTTL: "24h",
			GitHub: GitHubConfig{
				Scope:        "user:email",
				AuthorizeURL: "https://github.com/login/oauth/authorize",
				TokenURL:     "https://github.com/login/oauth/access_token",
				UserURL:      "https://api.github.com/user",
			},
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Timeout: "120s",
		},
		Storage: StorageConfig{
			Driver:       StorageDriverMemory,
			ListPageSize: DefaultListPageSize,
			Cache: CacheConfig{
				TTL: "30s",
			},
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("core: auth.jwt_secret is required")
	}
	for key, value := range map[string]string{
		"http.read_timeout":  c.HTTP.ReadTimeout,
		"http.write_timeout": c.HTTP.WriteTimeout,
		"auth.token_ttl":     c.Auth.TokenTTL,
		"llm.timeout":        c.LLM.Timeout,
		"storage.cache.ttl":  c.Storage.Cache.TTL,
	} {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("core: %s is invalid: %w", key, err)
		}
	}
	if write, upstream := c.WriteTimeout(), c.LLMTimeout(); write > 0 && upstream > 0 && write <= upstream {
		return fmt.Errorf("core: http.write_timeout (%s) must exceed llm.timeout (%s)", write, upstream)
	}
	switch normalizeDriver(c.Storage.Driver) {
	case StorageDriverMemory:
	case StorageDriverSQLite, StorageDriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("core: storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("core: unsupported storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.ListPageSize < 0 {
		return fmt.Errorf("core: storage.list_page_size must be >= 0")
	}
	if c.HTTP.MaxBodyBytes < 0 {
		return fmt.Errorf("core: http.max_body_bytes must be >= 0")
	}
	return nil
}

func (c Config) TokenTTL() time.Duration {
	ttl, _ := parseDuration(c.Auth.TokenTTL)
	return ttl
}

func (c Config) LLMTimeout() time.Duration {
	timeout, _ := parseDuration(c.LLM.Timeout)
	return timeout
}

func (c Config) ReadTimeout() time.Duration {
	timeout, _ := parseDuration(c.HTTP.ReadTimeout)
	return timeout
}

func (c Config) WriteTimeout() time.Duration {
	timeout, _ := parseDuration(c.HTTP.WriteTimeout)
	return timeout
}

func (c Config) CacheTTL() time.Duration {
	ttl, _ := parseDuration(c.Storage.Cache.TTL)
	return ttl
}

func (c Config) StorageDriver() string {
	return normalizeDriver(c.Storage.Driver)
}

func (c Config) ListPageSize() int {
	if c.Storage.ListPageSize <= 0 {
		return DefaultListPageSize
	}
	return c.Storage.ListPageSize
}

func normalizeDriver(driver string) string {
	driver = strings.TrimSpace(strings.ToLower(driver))
	switch driver {
	case "", "mem":
		return StorageDriverMemory
	case "sqlite3":
		return StorageDriverSQLite
	case "pg", "postgresql":
		return StorageDriverPostgres
	}
	return driver
}

func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return parsed, nil
}
