package config

import "time"

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing fetch behavior per site, for example sending an
// Authorization header to an origin that requires it.
type SiteConfig struct {
	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// TimeoutSeconds overrides the global request timeout for this site.
	// If zero, the global timeout is used.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`

	// Retries overrides the global retry budget for this site.
	// A nil value means use the global setting; zero disables retries.
	Retries *int `yaml:"retries,omitempty"`

	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// Timeout returns the site timeout as a duration, or zero when unset.
func (sc SiteConfig) Timeout() time.Duration {
	return time.Duration(sc.TimeoutSeconds) * time.Second
}

// File represents the structure of the .pagescan configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames without a scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific hostname.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.TimeoutSeconds != 0 {
			result.TimeoutSeconds = siteConfig.TimeoutSeconds
		}
		if siteConfig.Retries != nil {
			result.Retries = siteConfig.Retries
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if len(siteConfig.Headers) > 0 {
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}
