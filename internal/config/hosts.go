package config

// HostConfig holds host-specific fetch configuration for a single shop.
// This allows customizing request behavior per hostname, for shops that
// need a consent cookie or a particular Accept-Language to serve stable
// prices.
type HostConfig struct {
	// Cookie is an HTTP cookie to send when fetching this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// ServeFile holds the serve-mode settings from the configuration file.
// The admin token is deliberately absent: it comes from the environment
// only (see EnvAdminToken).
type ServeFile struct {
	// Addr is the HTTP API listen address ("host:port" or ":port").
	Addr string `yaml:"addr,omitempty"`

	// Region selects the hosting base URL used for item links.
	Region string `yaml:"region,omitempty"`

	// Hosting maps region names to public hosting base URLs.
	// Entries here are merged over the built-in defaults.
	Hosting map[string]string `yaml:"hosting,omitempty"`

	// LogFile is the rotating log file path for serve mode.
	LogFile string `yaml:"logFile,omitempty"`
}

// File represents the structure of the .pricewatch configuration file.
type File struct {
	// Hosts maps hostnames to their host-specific fetch configurations.
	// Keys should be bare hostnames without protocol or www prefix
	// (e.g., "books.toscrape.com").
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults contains default host configuration applied to all hosts
	// unless overridden in the host-specific configuration.
	Defaults HostConfig `yaml:"defaults,omitempty"`

	// Serve contains the serve-mode settings.
	Serve ServeFile `yaml:"serve,omitempty"`
}

// GetHostConfig returns the fetch configuration for a specific hostname.
// It merges the host-specific configuration with defaults.
func (cf *File) GetHostConfig(host string) HostConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with host-specific configuration if present
	if hostConfig, ok := cf.Hosts[host]; ok {
		if hostConfig.Cookie != "" {
			result.Cookie = hostConfig.Cookie
		}
		if len(hostConfig.Headers) > 0 {
			merged := make(map[string]string, len(result.Headers)+len(hostConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range hostConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}

// ApplyFile applies the configuration file's serve settings to the config.
// File values override defaults but are themselves overridden by
// environment variables and CLI flags applied afterwards.
func (c *Config) ApplyFile(cf *File) {
	if cf == nil {
		return
	}

	c.HostConfigs = cf

	if cf.Serve.Addr != "" {
		c.ServeAddr = cf.Serve.Addr
	}
	if cf.Serve.Region != "" {
		c.Region = cf.Serve.Region
	}
	if cf.Serve.LogFile != "" {
		c.LogFile = cf.Serve.LogFile
	}
	if len(cf.Serve.Hosting) > 0 {
		if c.HostingURLs == nil {
			c.HostingURLs = make(map[string]string, len(cf.Serve.Hosting))
		}
		for region, base := range cf.Serve.Hosting {
			c.HostingURLs[region] = base
		}
	}
}
