package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go-newspulse/internal/model"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Cron        CronConfig        `yaml:"cron"`
	Cache       CacheConfig       `yaml:"cache"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Geo         GeoConfig         `yaml:"geo"`
	Translation TranslationConfig `yaml:"translation"`
	LLM         LLMConfig         `yaml:"llm"`
	Sources     []model.Source    `yaml:"sources"`
	Debug       bool              `yaml:"debug"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CronConfig struct {
	RefreshInterval string `yaml:"refresh_interval"` // cache warm-up
	SweepInterval   string `yaml:"sweep_interval"`   // translation cache purge
}

type CacheConfig struct {
	TTL       time.Duration `yaml:"ttl"`
	Backend   string        `yaml:"backend"` // memory, redis
	RedisAddr string        `yaml:"redis_addr"`
}

type FetchConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	MaxItemsPerSource int           `yaml:"max_items_per_source"`
	UserAgent         string        `yaml:"user_agent"`
}

type GeoConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Providers []string      `yaml:"providers"`
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type TranslationConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Timeout    time.Duration `yaml:"timeout"`
	SnippetTTL time.Duration `yaml:"snippet_ttl"`
	ArticleTTL time.Duration `yaml:"article_ttl"`
}

type LLMConfig struct {
	Provider          string        `yaml:"provider"` // openai, gemini, or empty to disable
	APIURL            string        `yaml:"api_url"`
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	DailyBudget       int           `yaml:"daily_budget"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3000",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Path: "data/newspulse.db",
		},
		Cron: CronConfig{
			RefreshInterval: "@every 5m",
			SweepInterval:   "@every 6h",
		},
		Cache: CacheConfig{
			TTL:     5 * time.Minute,
			Backend: "memory",
		},
		Fetch: FetchConfig{
			Timeout:           10 * time.Second,
			MaxItemsPerSource: 20,
			UserAgent:         "newspulse/1.0 (+https://github.com/newspulse)",
		},
		Geo: GeoConfig{
			Timeout:   5 * time.Second,
			Providers: []string{"ip-api", "ipapi", "ipwhois"},
			CacheSize: 1024,
			CacheTTL:  time.Hour,
		},
		Translation: TranslationConfig{
			Endpoint:   "https://translate.googleapis.com/translate_a/single",
			Timeout:    15 * time.Second,
			SnippetTTL: 24 * time.Hour,
			ArticleTTL: 7 * 24 * time.Hour,
		},
		LLM: LLMConfig{
			APIURL:            "https://api.openai.com/v1",
			Model:             "gpt-4o-mini",
			Timeout:           20 * time.Second,
			RequestsPerMinute: 30,
			DailyBudget:       500,
		},
	}
}

// Load reads the YAML file over the defaults, then applies .env and environment overrides.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", configPath, err)
		}
	} else {
		slog.Info("config file not found, using defaults", "path", configPath)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", "error", err)
	}

	applyEnv(cfg)

	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	cfg.Cache.TTL = getEnvDurationOrDefault("CACHE_TTL", cfg.Cache.TTL)
	if backend := os.Getenv("CACHE_BACKEND"); backend != "" {
		cfg.Cache.Backend = backend
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Cache.RedisAddr = addr
	}

	cfg.Fetch.Timeout = getEnvDurationOrDefault("FETCH_TIMEOUT", cfg.Fetch.Timeout)
	cfg.Fetch.MaxItemsPerSource = getEnvIntOrDefault("MAX_ITEMS_PER_SOURCE", cfg.Fetch.MaxItemsPerSource)

	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		cfg.Cron.SweepInterval = v
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		cfg.Cron.RefreshInterval = v
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_API_URL"); v != "" {
		cfg.LLM.APIURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	switch c.Cache.Backend {
	case "memory", "":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got %q", c.Cache.Backend)
	}
	switch c.LLM.Provider {
	case "", "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider must be 'openai', 'gemini' or empty, got %q", c.LLM.Provider)
	}
	for i, s := range c.Sources {
		if s.URL == "" {
			return fmt.Errorf("sources[%d] (%s): url is required", i, s.Name)
		}
	}
	return nil
}

// GetServerAddress returns the listen address.
func (c *Config) GetServerAddress() string {
	if _, err := strconv.Atoi(c.Server.Port); err == nil {
		return ":" + c.Server.Port
	}
	return c.Server.Port
}

// EnabledSources filters out sources switched off in the config.
func (c *Config) EnabledSources() []model.Source {
	var out []model.Source
	for _, s := range c.Sources {
		if s.IsEnabled() {
			out = append(out, s)
		}
	}
	return out
}
