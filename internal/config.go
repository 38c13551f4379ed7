package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIBase is the production backend.
	DefaultAPIBase = "https://customized-training.org"

	// DefaultMinSearchDelay keeps the "finding your match" view on screen
	// long enough to not feel like an instant, jarring transition.
	DefaultMinSearchDelay = 5 * time.Second

	// DefaultCelebrationDuration is how long the match celebration stays up.
	DefaultCelebrationDuration = 5 * time.Second

	// DefaultRequestTimeout bounds every API call.
	DefaultRequestTimeout = 30 * time.Second
)

// Config is the client configuration, loaded from the YAML config file with
// environment overrides. Flags override both; that wiring lives in cmd.
type Config struct {
	APIBase             string        `yaml:"api_base"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	MinSearchDelay      time.Duration `yaml:"min_search_delay"`
	CelebrationDuration time.Duration `yaml:"celebration_duration"`
	DataDir             string        `yaml:"data_dir"`
}

// DefaultDataDir returns the per-user data directory (~/.access-cli).
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".access-cli"), nil
}

// ConfigPath returns the config file location inside the data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig(dataDir string) Config {
	return Config{
		APIBase:             DefaultAPIBase,
		RequestTimeout:      DefaultRequestTimeout,
		MinSearchDelay:      DefaultMinSearchDelay,
		CelebrationDuration: DefaultCelebrationDuration,
		DataDir:             dataDir,
	}
}

// LoadConfig reads the config file if present and applies environment
// overrides. Precedence: environment > file > defaults.
func LoadConfig(dataDir string) (Config, error) {
	cfg := DefaultConfig(dataDir)

	data, err := os.ReadFile(ConfigPath(dataDir))
	if err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
		cfg.merge(fileCfg)
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	if v := os.Getenv("ACCESS_API_BASE"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("ACCESS_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ACCESS_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("ACCESS_MIN_SEARCH_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ACCESS_MIN_SEARCH_DELAY: %w", err)
		}
		cfg.MinSearchDelay = d
	}

	return cfg, nil
}

// merge overlays non-zero fields from other onto cfg.
func (cfg *Config) merge(other Config) {
	if other.APIBase != "" {
		cfg.APIBase = other.APIBase
	}
	if other.RequestTimeout != 0 {
		cfg.RequestTimeout = other.RequestTimeout
	}
	if other.MinSearchDelay != 0 {
		cfg.MinSearchDelay = other.MinSearchDelay
	}
	if other.CelebrationDuration != 0 {
		cfg.CelebrationDuration = other.CelebrationDuration
	}
	if other.DataDir != "" {
		cfg.DataDir = other.DataDir
	}
}

// SaveConfig writes the config file, creating the data directory if needed.
func SaveConfig(cfg Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(cfg.DataDir), data, 0644)
}
