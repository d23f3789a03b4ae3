package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the doclib API configuration.
type Config struct {
	HTTP       HTTPConfig      `yaml:"http"`
	Database   DatabaseConfig  `yaml:"database"`
	Auth       AuthConfig      `yaml:"auth"`
	Search     SearchConfig    `yaml:"search"`
	Library    LibraryConfig   `yaml:"library"`
	Thumbnails ThumbnailConfig `yaml:"thumbnails"`
	CORS       CORSConfig      `yaml:"cors"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds bearer token settings. An empty JWTSecret disables
// token checks and the user is taken from the X-Doclib-User header;
// Required forbids that. Admins only apply while tokens are checked.
type AuthConfig struct {
	JWTSecret string   `yaml:"jwt_secret"`
	Issuer    string   `yaml:"issuer"`
	Required  bool     `yaml:"required"`
	Admins    []string `yaml:"admins"`
}

// EffectiveAdmins returns the admin users, or none when tokens are not
// checked and any caller could name themselves.
func (a AuthConfig) EffectiveAdmins() []string {
	if a.JWTSecret == "" {
		return nil
	}
	return a.Admins
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds listing query limits.
type SearchConfig struct {
	MaxResults      int `yaml:"max_results"`       // global cap on search hits
	RecentDays      int `yaml:"recent_days"`       // default window of the recent filters
	RecentLimit     int `yaml:"recent_limit"`      // default limit of the recent filters
	DefaultPageSize int `yaml:"default_page_size"` // 0 = whole result set
	MaxPageSize     int `yaml:"max_page_size"`
	MaxActionItems  int `yaml:"max_action_items"`
}

// defaultContainer is the component id of a site's document library.
const defaultContainer = "documentLibrary"

// LibraryConfig holds document library settings.
type LibraryConfig struct {
	DefaultContainer string `yaml:"default_container"`
}

// ThumbnailConfig holds thumbnail request settings.
type ThumbnailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Rendition  string `yaml:"rendition"`
	PendingSec int    `yaml:"pending_sec"` // how long a request suppresses repeats
	TimeoutSec int    `yaml:"timeout_sec"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAgeSec      int      `yaml:"max_age_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 1000
	}
	if c.Search.RecentDays <= 0 {
		c.Search.RecentDays = 7
	}
	if c.Search.RecentLimit <= 0 {
		c.Search.RecentLimit = 50
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 500
	}
	if c.Search.MaxActionItems <= 0 {
		c.Search.MaxActionItems = 100
	}
	if c.Library.DefaultContainer == "" {
		c.Library.DefaultContainer = defaultContainer
	}
	if c.Thumbnails.Rendition == "" {
		c.Thumbnails.Rendition = "doclib"
	}
	if c.Thumbnails.PendingSec <= 0 {
		c.Thumbnails.PendingSec = 300
	}
	if c.Thumbnails.TimeoutSec <= 0 {
		c.Thumbnails.TimeoutSec = 5
	}
	if c.CORS.MaxAgeSec <= 0 {
		c.CORS.MaxAgeSec = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "", "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if c.Search.DefaultPageSize < 0 || c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf(
			"search.default_page_size must be between 0 and %d, got %d",
			c.Search.MaxPageSize, c.Search.DefaultPageSize,
		)
	}
	if c.Auth.Required && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 bytes")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
