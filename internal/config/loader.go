package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".pricewatch"

// Environment variables recognized by ApplyEnv. Each variable maps to
// exactly one Config field; there is no generic prefix scan.
const (
	// EnvAdminToken carries the admin token for mutating API routes.
	// The token is environment-only so it never lands in a config file
	// that might be committed or shared.
	EnvAdminToken = "PRICEWATCH_ADMIN_TOKEN"

	// EnvRegion overrides the hosting region.
	EnvRegion = "PRICEWATCH_REGION"

	// EnvServeAddr overrides the HTTP API listen address.
	EnvServeAddr = "PRICEWATCH_ADDR"

	// EnvDBDir overrides the database directory.
	EnvDBDir = "PRICEWATCH_DB_DIR"

	// EnvRulesPath overrides the scrape rules file path.
	EnvRulesPath = "PRICEWATCH_RULES"

	// EnvUserAgent overrides the HTTP User-Agent header.
	EnvUserAgent = "PRICEWATCH_USER_AGENT"

	// EnvLogFile overrides the serve-mode rotating log file path.
	EnvLogFile = "PRICEWATCH_LOG_FILE"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads host and serve configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	// Initialize Hosts map if nil
	if cf.Hosts == nil {
		cf.Hosts = make(map[string]HostConfig)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .pricewatch in the current directory
// 3. Look for config.yml in the XDG config directory (written by init)
// 4. Look for .pricewatch in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check XDG config directory
	xdgConfig := filepath.Join(XDGConfigDir(), "config.yml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// ApplyEnv loads a .env file if present and then applies environment
// variable overrides to the config. Environment values win over file and
// default values; CLI flags are applied after this and win over both.
//
// Each recognized variable is applied explicitly to its typed field.
// Unrecognized PRICEWATCH_* variables are ignored.
func ApplyEnv(c *Config) error {
	// Load .env first so its values are visible via os.Getenv.
	// A missing .env file is not an error.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	if v := os.Getenv(EnvAdminToken); v != "" {
		c.AdminToken = v
	}
	if v := os.Getenv(EnvRegion); v != "" {
		c.Region = v
	}
	if v := os.Getenv(EnvServeAddr); v != "" {
		c.ServeAddr = v
	}
	if v := os.Getenv(EnvDBDir); v != "" {
		c.DBDir = v
	}
	if v := os.Getenv(EnvRulesPath); v != "" {
		c.RulesPath = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}

	return nil
}
