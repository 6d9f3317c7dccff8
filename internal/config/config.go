// ABOUTME: Configuration management for postadmin with YAML (or TOML) config loading.
// ABOUTME: Handles backend API settings, UI paging, logging and the dev backend paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL points at the development backend started by `postadmin backend`.
	DefaultAPIURL = "http://localhost:8089"
	// DefaultRowsPerPage matches the table's initial page size.
	DefaultRowsPerPage = 10
	// DefaultDevAddr is the listen address of the development backend.
	DefaultDevAddr = ":8089"
	// EnvAPIURL overrides backend.api_url.
	EnvAPIURL = "POSTADMIN_API_URL"
)

// Config stores postadmin configuration loaded from ~/.config/postadmin/config.yaml.
type Config struct {
	Backend    BackendConfig    `yaml:"backend" toml:"backend"`
	UI         UIConfig         `yaml:"ui" toml:"ui"`
	Log        LogConfig        `yaml:"log" toml:"log"`
	DevBackend DevBackendConfig `yaml:"dev_backend" toml:"dev_backend"`
}

// BackendConfig holds the posts API settings.
type BackendConfig struct {
	APIURL  string `yaml:"api_url" toml:"api_url"`
	APIKey  string `yaml:"api_key,omitempty" toml:"api_key"`
	Timeout string `yaml:"timeout,omitempty" toml:"timeout"` // Go duration, e.g. "10s"
}

// UIConfig holds table settings.
type UIConfig struct {
	RowsPerPage int `yaml:"rows_per_page,omitempty" toml:"rows_per_page"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty" toml:"level"`
	File  string `yaml:"file,omitempty" toml:"file"`
}

// DevBackendConfig holds settings for the development backend.
type DevBackendConfig struct {
	Addr    string `yaml:"addr,omitempty" toml:"addr"`
	DataDir string `yaml:"data_dir,omitempty" toml:"data_dir"`
}

// GetAPIURL returns the backend URL, honouring the environment override.
func (c *Config) GetAPIURL() string {
	if env := os.Getenv(EnvAPIURL); env != "" {
		return env
	}
	if c.Backend.APIURL != "" {
		return c.Backend.APIURL
	}
	return DefaultAPIURL
}

// GetTimeout parses backend.timeout. Zero means the gateway default.
func (c *Config) GetTimeout() (time.Duration, error) {
	if c.Backend.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid backend.timeout %q: %w", c.Backend.Timeout, err)
	}
	return d, nil
}

// GetRowsPerPage returns the configured page size, defaulting to DefaultRowsPerPage.
func (c *Config) GetRowsPerPage() int {
	if c.UI.RowsPerPage > 0 {
		return c.UI.RowsPerPage
	}
	return DefaultRowsPerPage
}

// GetLogFile returns the expanded log file path, or "" when unset.
func (c *Config) GetLogFile() (string, error) {
	return ExpandPath(c.Log.File)
}

// GetDevAddr returns the development backend listen address.
func (c *Config) GetDevAddr() string {
	if c.DevBackend.Addr != "" {
		return c.DevBackend.Addr
	}
	return DefaultDevAddr
}

// GetDevDataDir returns the development backend data directory, defaulting to
// $XDG_DATA_HOME/postadmin.
func (c *Config) GetDevDataDir() (string, error) {
	if c.DevBackend.DataDir != "" {
		return ExpandPath(c.DevBackend.DataDir)
	}
	return DataDir()
}

// DataDir returns the default data directory.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "postadmin"), nil
}

// GetConfigDir returns the directory holding config.yaml or config.toml.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "postadmin"), nil
}

// GetConfigPath returns the YAML config file path.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk. config.yaml wins over config.toml. Returns
// default config if neither file exists.
func Load() (*Config, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err == nil {
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config.yaml: %w", err)
		}
		return &cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(filepath.Join(dir, "config.toml"), &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to parse config.toml: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk as YAML.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
