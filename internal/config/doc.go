// Package config provides configuration structures and utilities for pricewatch.
// It defines the main configuration options for price checks, fetch behavior,
// and the HTTP serving layer. Values come from defaults, an optional YAML
// configuration file, environment variables (optionally via a .env file), and
// CLI flags, in that order of precedence.
package config
