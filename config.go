package blogcore

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a blogcore site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/blog.db")

	SessionSecret string        `yaml:"session_secret"` // Required: session cookie signing secret
	CookieSecure  bool          `yaml:"cookie_secure"`  // Set true for HTTPS
	SessionTTL    time.Duration `yaml:"session_ttl"`    // Idle session lifetime (default 12h)

	// RegistrationAnswer, when set, replaces the stored verification answer
	// readers must give to register.
	RegistrationAnswer string `yaml:"registration_answer"`

	LoginMaxAttempts int           `yaml:"login_max_attempts"` // Failed logins per window (default 5)
	LoginWindow      time.Duration `yaml:"login_window"`       // Default 1m

	LogLevel       string `yaml:"log_level"`       // debug, info, warn or error (default info)
	MetricsEnabled *bool  `yaml:"metrics_enabled"` // Serve /metrics (default true)
}

// LoadConfig reads path (if non-empty) as YAML, applies BLOG_* environment
// overrides, then fills defaults.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return SiteConfig{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("BLOG_NAME", &c.Name)
	setString("BLOG_URL", &c.URL)
	setString("BLOG_DESCRIPTION", &c.Description)
	setString("BLOG_ADDR", &c.Addr)
	setString("BLOG_DATABASE_PATH", &c.DatabasePath)
	setString("BLOG_SESSION_SECRET", &c.SessionSecret)
	setString("BLOG_REGISTRATION_ANSWER", &c.RegistrationAnswer)
	setString("BLOG_LOG_LEVEL", &c.LogLevel)

	if v := os.Getenv("BLOG_COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLOG_COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v := os.Getenv("BLOG_METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLOG_METRICS_ENABLED: %w", err)
		}
		c.MetricsEnabled = &b
	}
	if v := os.Getenv("BLOG_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BLOG_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v := os.Getenv("BLOG_LOGIN_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BLOG_LOGIN_MAX_ATTEMPTS: %w", err)
		}
		c.LoginMaxAttempts = n
	}
	if v := os.Getenv("BLOG_LOGIN_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BLOG_LOGIN_WINDOW: %w", err)
		}
		c.LoginWindow = d
	}
	return nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 12 * time.Hour
	}
	if c.LoginMaxAttempts == 0 {
		c.LoginMaxAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MetricsEnabled == nil {
		enabled := true
		c.MetricsEnabled = &enabled
	}
}

// metricsEnabled reports whether /metrics is served.
func (c SiteConfig) metricsEnabled() bool {
	return c.MetricsEnabled == nil || *c.MetricsEnabled
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore uses an already opened Store instead of opening DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
