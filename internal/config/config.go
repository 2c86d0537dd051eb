package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvHome         = "SHEPHERD_HOME"
	EnvLogLevel     = "SHEPHERD_LOG_LEVEL"
	EnvLogFile      = "SHEPHERD_LOG_FILE"
	EnvAPIBaseURL   = "SHEPHERD_API_BASE_URL"
	EnvFetchTimeout = "SHEPHERD_FETCH_TIMEOUT"
	EnvMaxRetries   = "SHEPHERD_MAX_RETRIES"
	EnvCacheEnabled = "SHEPHERD_CACHE_ENABLED"
	EnvCacheDir     = "SHEPHERD_CACHE_DIR"
	EnvSessionFile  = "SHEPHERD_SESSION_FILE"
)

// Defaults applied by New.
const (
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = time.Second
	DefaultStepDelay      = 500 * time.Millisecond
	DefaultMockLatency    = 400 * time.Millisecond
	DefaultCacheTTL       = 300
	DefaultRootMargin     = "0px"
	configFileName        = "config.yaml"
	homeDirName           = ".shepherd"
	maxConfiguredRetries  = 10
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultSessionFile    = "session.yaml"
	defaultCacheDirectory = "cache"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full shepherd configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	API     APIConfig     `yaml:"api"`
	Lazy    LazyConfig    `yaml:"lazy"`
	Cache   CacheConfig   `yaml:"cache"`
	Session SessionConfig `yaml:"session"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// APIConfig locates the record API used for breadcrumb label lookups.
type APIConfig struct {
	// BaseURL prefixes relative endpoints. Empty means "start the built-in mock API".
	BaseURL string `yaml:"base_url"`
	// Endpoints maps a route prefix (e.g. "members") to a lookup endpoint.
	Endpoints map[string]string `yaml:"endpoints"`
	// FetchTimeout bounds a single lookup. Zero disables the bound.
	FetchTimeout Duration `yaml:"fetch_timeout"`
	// MockLatency is the simulated delay of the built-in mock data store.
	MockLatency Duration `yaml:"mock_latency"`
}

// LazyConfig holds defaults for the lazy loading infrastructure.
type LazyConfig struct {
	MaxRetries    int      `yaml:"max_retries"`
	RetryDelay    Duration `yaml:"retry_delay"`
	ObserverDelay Duration `yaml:"observer_delay"`
	StepDelay     Duration `yaml:"step_delay"`
	RootMargin    string   `yaml:"root_margin"`
	Animate       bool     `yaml:"animate"`
}

// CacheConfig controls the breadcrumb label cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Directory  string `yaml:"directory,omitempty"`
}

// SessionConfig locates the persisted session.
type SessionConfig struct {
	File string `yaml:"file,omitempty"`
}

// Duration is a time.Duration that reads and writes as "500ms" style strings in YAML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Bare integers are read as milliseconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return d, nil
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Logging: LoggingConfig{Level: defaultLogLevel, Format: defaultLogFormat},
		API: APIConfig{
			Endpoints:   DefaultEndpoints(),
			MockLatency: Duration(DefaultMockLatency),
		},
		Lazy: LazyConfig{
			MaxRetries: DefaultMaxRetries,
			RetryDelay: Duration(DefaultRetryDelay),
			StepDelay:  Duration(DefaultStepDelay),
			RootMargin: DefaultRootMargin,
			Animate:    true,
		},
		Cache: CacheConfig{Enabled: true, TTLSeconds: DefaultCacheTTL},
	}
}

// DefaultEndpoints returns the route-prefix to lookup-endpoint mapping served by the mock API.
func DefaultEndpoints() map[string]string {
	return map[string]string{
		"members":        "/api/members",
		"events":         "/api/events",
		"giving":         "/api/giving",
		"sunday-school":  "/api/classes",
		"communications": "/api/announcements",
	}
}

// Dir returns the shepherd home directory ($SHEPHERD_HOME or ~/.shepherd).
func Dir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, homeDirName), nil
}

// DefaultPath returns the global config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config at path (the default location when empty), applies a
// project overlay from ./.shepherd/config.yaml when present, then environment
// overrides. A missing global file is not an error.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := cfg.readFile(path); err != nil {
		return nil, err
	}

	overlay := filepath.Join(homeDirName, configFileName)
	if abs, err := filepath.Abs(overlay); err == nil && abs != path {
		if _, statErr := os.Stat(overlay); statErr == nil {
			if mergeErr := ShallowMergeYAML(cfg, overlay); mergeErr != nil {
				return nil, mergeErr
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.API.Endpoints == nil {
		c.API.Endpoints = DefaultEndpoints()
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvFetchTimeout); v != "" {
		if d, err := parseDuration(v); err == nil {
			c.API.FetchTimeout = Duration(d)
		}
	}
	if v := os.Getenv(EnvMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Lazy.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvCacheEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = b
		}
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Directory = v
	}
	if v := os.Getenv(EnvSessionFile); v != "" {
		c.Session.File = v
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Lazy.MaxRetries < 0 || c.Lazy.MaxRetries > maxConfiguredRetries {
		return fmt.Errorf("%w: lazy.max_retries must be between 0 and %d, got %d",
			ErrInvalidConfig, maxConfiguredRetries, c.Lazy.MaxRetries)
	}
	if c.Lazy.RetryDelay < 0 || c.Lazy.StepDelay < 0 || c.Lazy.ObserverDelay < 0 {
		return fmt.Errorf("%w: lazy delays must be non-negative", ErrInvalidConfig)
	}
	if c.API.FetchTimeout < 0 {
		return fmt.Errorf("%w: api.fetch_timeout must be non-negative", ErrInvalidConfig)
	}
	if c.Cache.Enabled && c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("%w: cache.ttl_seconds must be positive when the cache is enabled", ErrInvalidConfig)
	}
	return nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ResolvedEndpoints returns the lookup endpoints joined onto base. Absolute
// endpoint URLs are returned unchanged.
func (c *Config) ResolvedEndpoints(base string) map[string]string {
	out := make(map[string]string, len(c.API.Endpoints))
	base = strings.TrimRight(base, "/")
	for prefix, endpoint := range c.API.Endpoints {
		if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
			out[prefix] = strings.TrimRight(endpoint, "/")
			continue
		}
		out[prefix] = base + "/" + strings.Trim(endpoint, "/")
	}
	return out
}

// CacheDir returns the configured cache directory or <home>/cache.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Directory != "" {
		return c.Cache.Directory, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultCacheDirectory), nil
}

// SessionFile returns the configured session file or <home>/session.yaml.
func (c *Config) SessionFile() (string, error) {
	if c.Session.File != "" {
		return c.Session.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultSessionFile), nil
}
