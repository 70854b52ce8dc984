// Package config loads hanlens settings: a YAML file layered over
// defaults, .env support, and API keys resolved from file, environment,
// or the OS keyring.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/hanlens/hanlens/internal/logging"
)

const keyringService = "hanlens"

// API key environment variables per provider.
var envKeyVars = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"google":    "GEMINI_API_KEY",
}

// ScrapeConfig holds the selectors the scraper evaluates. Site markup
// lives in configuration, not code.
type ScrapeConfig struct {
	PostSelector   string `yaml:"post_selector"`
	TextSelector   string `yaml:"text_selector"`
	AuthorSelector string `yaml:"author_selector"`
	TimeSelector   string `yaml:"time_selector"`
	WaitSelector   string `yaml:"wait_selector"`
}

// Config is the full settings surface of the CLI.
type Config struct {
	Provider   string            `yaml:"provider"`
	APIKeys    map[string]string `yaml:"api_keys"`
	Models     map[string]string `yaml:"models"`
	MaxReplies int               `yaml:"max_replies"`
	DBPath     string            `yaml:"db_path"`
	Scrape     ScrapeConfig      `yaml:"scrape"`
}

// Default returns the built-in settings.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Provider:   "anthropic",
		MaxReplies: 20,
		DBPath:     filepath.Join(home, ".hanlens", "hanlens.db"),
		Scrape: ScrapeConfig{
			PostSelector:   "article",
			TextSelector:   "[data-testid='tweetText'], .post-text",
			AuthorSelector: "[data-testid='User-Name'] span, .post-author",
			TimeSelector:   "time",
			WaitSelector:   "article",
		},
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hanlens", "config.yaml")
}

// Load reads the YAML settings file over the defaults and applies
// environment overrides. A missing file is not an error; a malformed
// one is.
func Load(path string) (*Config, error) {
	// .env is a convenience for development setups.
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		logging.Infof("no config file at %s, using defaults", path)
	default:
		return nil, err
	}

	if p := os.Getenv("HANLENS_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if dbPath := os.Getenv("HANLENS_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if mr := os.Getenv("HANLENS_MAX_REPLIES"); mr != "" {
		if n, err := strconv.Atoi(mr); err == nil && n > 0 {
			cfg.MaxReplies = n
		}
	}
	return cfg, nil
}

// APIKey resolves the key for a provider: explicit config value first,
// then the provider's environment variable, then the OS keyring.
func (c *Config) APIKey(provider string) string {
	if k := c.APIKeys[provider]; k != "" {
		return k
	}
	if envVar, ok := envKeyVars[provider]; ok {
		if k := os.Getenv(envVar); k != "" {
			return k
		}
	}
	if k, err := keyring.Get(keyringService, provider+"_api_key"); err == nil && k != "" {
		return k
	}
	return ""
}

// StoreAPIKey saves a key in the OS keyring.
func StoreAPIKey(provider, key string) error {
	return keyring.Set(keyringService, provider+"_api_key", key)
}
