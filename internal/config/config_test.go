package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagescan/pagescan/internal/exporter"
)

// TestNewConfig tests that the constructor sets all documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.Retries != DefaultRetries {
		t.Errorf("expected retries %d, got %d", DefaultRetries, cfg.Retries)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("expected workers %d, got %d", DefaultWorkers, cfg.Workers)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("expected user agent %q, got %q", DefaultUserAgent, cfg.UserAgent)
	}
	if cfg.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("expected max body size %d, got %d", DefaultMaxBodySize, cfg.MaxBodySize)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("expected output dir %q, got %q", DefaultOutputDir, cfg.OutputDir)
	}
	if len(cfg.Formats) != 1 || cfg.Formats[0] != exporter.FormatJSON {
		t.Errorf("expected default format json, got %v", cfg.Formats)
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.URLs = []string{"https://example.com"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config passes",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "no urls",
			mutate:  func(c *Config) { c.URLs = nil },
			wantErr: ErrNoURL,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Retries = -1 },
			wantErr: ErrInvalidRetries,
		},
		{
			name:    "zero retries is valid",
			mutate:  func(c *Config) { c.Retries = 0 },
			wantErr: nil,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "no formats",
			mutate:  func(c *Config) { c.Formats = nil },
			wantErr: ErrNoFormat,
		},
		{
			name:    "negative max body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.RequestsPerSecond = -1 },
			wantErr: ErrInvalidRateLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected valid config, got: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests loading the .pagescan YAML file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads sites and defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `defaults:
  timeoutSeconds: 10
  headers:
    Accept-Language: en
sites:
  example.com:
    userAgent: custom-agent/1.0
    headers:
      Authorization: Bearer abc123
  slow.example.org:
    timeoutSeconds: 90
    retries: 0
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile failed: %v", err)
		}

		if cf.Defaults.TimeoutSeconds != 10 {
			t.Errorf("expected default timeout 10s, got %d", cf.Defaults.TimeoutSeconds)
		}
		if len(cf.Sites) != 2 {
			t.Errorf("expected 2 sites, got %d", len(cf.Sites))
		}

		slow := cf.Sites["slow.example.org"]
		if slow.Retries == nil || *slow.Retries != 0 {
			t.Errorf("expected explicit zero retries, got %v", slow.Retries)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "does-not-exist"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml returns an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error for invalid yaml")
		}
	})

	t.Run("empty file yields an initialized Sites map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile failed: %v", err)
		}
		if cf.Sites == nil {
			t.Error("expected non-nil Sites map")
		}
	})
}

// TestFindConfigFile tests config file discovery.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path that exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "my-config.yml")
		if err := os.WriteFile(path, []byte("sites:"), 0600); err != nil {
			t.Fatal(err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit path that does not exist", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestGetSiteConfig tests per-site config merging with defaults.
func TestGetSiteConfig(t *testing.T) {
	t.Parallel()

	two := 2
	cf := &File{
		Defaults: SiteConfig{
			TimeoutSeconds: 15,
			Headers:        map[string]string{"Accept-Language": "en"},
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				UserAgent: "custom/1.0",
				Headers:   map[string]string{"Authorization": "Bearer abc"},
			},
			"slow.example.org": {
				TimeoutSeconds: 90,
				Retries:        &two,
			},
		},
	}

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("other.example.net")
		if sc.TimeoutSeconds != 15 {
			t.Errorf("expected default timeout, got %d", sc.TimeoutSeconds)
		}
		if sc.Headers["Accept-Language"] != "en" {
			t.Errorf("expected default headers, got %v", sc.Headers)
		}
	})

	t.Run("site headers merge over defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("example.com")
		if sc.Headers["Accept-Language"] != "en" || sc.Headers["Authorization"] != "Bearer abc" {
			t.Errorf("expected merged headers, got %v", sc.Headers)
		}
		if sc.UserAgent != "custom/1.0" {
			t.Errorf("expected site user agent, got %q", sc.UserAgent)
		}
		// Merging must not mutate the shared defaults.
		if _, ok := cf.Defaults.Headers["Authorization"]; ok {
			t.Error("defaults were mutated by merge")
		}
	})

	t.Run("site overrides timeout and retries", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("slow.example.org")
		if sc.Timeout() != 90*time.Second {
			t.Errorf("expected 90s timeout, got %v", sc.Timeout())
		}
		if sc.Retries == nil || *sc.Retries != 2 {
			t.Errorf("expected 2 retries, got %v", sc.Retries)
		}
	})
}
