package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	CatalogDir          string `yaml:"catalog_dir"`
	DBPath              string `yaml:"db_path"`
	LogLevel            string `yaml:"log_level"`
	Output              string `yaml:"output"`
	SelectedBundlesOnly bool   `yaml:"selected_bundles_only"`
	ClickThreshold      int    `yaml:"click_threshold"`
	ClickLargeStep      int    `yaml:"click_large_step"`
	DaemonAddr          string `yaml:"daemon_addr"`
	DaemonToken         string `yaml:"daemon_token"`
	// WebhookURLs receive a POST after every daemon state change.
	WebhookURLs []string `yaml:"webhook_urls"`
}

// Defaults
const (
	DefaultLogLevel       = "info"
	DefaultOutput         = "table"
	DefaultDaemonAddr     = "127.0.0.1:7878"
	DefaultClickThreshold = 20
	DefaultClickLargeStep = 10
)

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/farmlist/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:       DefaultLogLevel,
		Output:         DefaultOutput,
		ClickThreshold: DefaultClickThreshold,
		ClickLargeStep: DefaultClickLargeStep,
		DaemonAddr:     DefaultDaemonAddr,
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// The YAML file is optional
	_ = loadYAMLConfig(cfg)

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		// Check for project-local database first
		if _, err := os.Stat(".farmlist/farmlist.db"); err == nil {
			cfg.DBPath = ".farmlist/farmlist.db"
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.DBPath = filepath.Join(homeDir, ".local", "share", "farmlist", "farmlist.db")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if dir := os.Getenv("FARMLIST_CATALOG"); dir != "" {
		cfg.CatalogDir = dir
	}
	if dbPath := getEnvOrFile("FARMLIST_DB_PATH", "FARMLIST_DB_PATH_FILE"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel := os.Getenv("FARMLIST_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if output := os.Getenv("FARMLIST_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if addr := os.Getenv("FARMLIST_DAEMON_ADDR"); addr != "" {
		cfg.DaemonAddr = addr
	}
	if token := getEnvOrFile("FARMLIST_DAEMON_TOKEN", "FARMLIST_DAEMON_TOKEN_FILE"); token != "" {
		cfg.DaemonToken = token
	}
	if hooks := os.Getenv("FARMLIST_WEBHOOK_URLS"); hooks != "" {
		cfg.WebhookURLs = nil
		for _, u := range strings.Split(hooks, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.WebhookURLs = append(cfg.WebhookURLs, u)
			}
		}
	}
	if v := os.Getenv("FARMLIST_SELECTED_BUNDLES_ONLY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FARMLIST_SELECTED_BUNDLES_ONLY: %w", err)
		}
		cfg.SelectedBundlesOnly = b
	}
	for _, iv := range []struct {
		name string
		dst  *int
	}{
		{"FARMLIST_CLICK_THRESHOLD", &cfg.ClickThreshold},
		{"FARMLIST_CLICK_LARGE_STEP", &cfg.ClickLargeStep},
	} {
		v := os.Getenv(iv.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", iv.name, err)
		}
		*iv.dst = n
	}
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.Output {
	case "table", "json", "yaml", "tsv":
	default:
		return fmt.Errorf("invalid output %q: must be one of: table, json, yaml, tsv", c.Output)
	}
	if c.ClickThreshold < 0 {
		return fmt.Errorf("click_threshold cannot be negative")
	}
	if c.ClickLargeStep < 1 {
		return fmt.Errorf("click_large_step must be at least 1")
	}
	return nil
}

// Debug reports whether debug logging is enabled
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// configPath returns ~/.config/farmlist/config.yaml
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "farmlist", "config.yaml"), nil
}

// loadYAMLConfig loads configuration from ~/.config/farmlist/config.yaml
func loadYAMLConfig(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		if dir == homeDir {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
