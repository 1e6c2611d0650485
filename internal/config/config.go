package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apierrors "roomreports/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Backend  BackendConfig  `yaml:"backend" envconfig:"BACKEND"`
	Export   ExportConfig   `yaml:"export" envconfig:"EXPORT"`
	Schedule ScheduleConfig `yaml:"schedule" envconfig:"SCHEDULE"`
}

// ServerConfig contains HTTP server configuration for the dashboard service
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"3000" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	ExportTimeout   time.Duration `yaml:"export_timeout" envconfig:"EXPORT_TIMEOUT" default:"2m" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/reports.log"`
}

// BackendConfig describes the reporting API the dashboard reads from.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL" default:"http://localhost:8080" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s" validate:"gt=0"`
	// UsePrimaryClient selects the API client as the preferred transport.
	// When false every call goes straight over the direct transport.
	UsePrimaryClient bool   `yaml:"use_primary_client" envconfig:"USE_PRIMARY_CLIENT" default:"true"`
	ForceRefresh     bool   `yaml:"force_refresh" envconfig:"FORCE_REFRESH" default:"true"`
	AuthToken        string `yaml:"auth_token" envconfig:"AUTH_TOKEN"`
}

// ExportConfig controls where downloaded artifacts are written
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"downloads" validate:"required"`
}

// ScheduleConfig controls periodic dashboard refreshes
type ScheduleConfig struct {
	// RefreshCron is a five-field cron expression; empty disables auto refresh.
	RefreshCron string `yaml:"refresh_cron" envconfig:"REFRESH_CRON"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays file values on the environment config. Values the
// environment set explicitly win; envconfig defaults are replaced by the file.
func mergeConfigs(fileConfig, envConfig Config) Config {
	defaults := Default()

	if fileConfig.Server.Port != 0 && envConfig.Server.Port == defaults.Server.Port {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if fileConfig.Backend.BaseURL != "" && envConfig.Backend.BaseURL == defaults.Backend.BaseURL {
		envConfig.Backend.BaseURL = fileConfig.Backend.BaseURL
	}
	if fileConfig.Backend.Timeout != 0 && envConfig.Backend.Timeout == defaults.Backend.Timeout {
		envConfig.Backend.Timeout = fileConfig.Backend.Timeout
	}
	if fileConfig.Backend.AuthToken != "" && envConfig.Backend.AuthToken == "" {
		envConfig.Backend.AuthToken = fileConfig.Backend.AuthToken
	}
	if fileConfig.Export.OutputDir != "" && envConfig.Export.OutputDir == defaults.Export.OutputDir {
		envConfig.Export.OutputDir = fileConfig.Export.OutputDir
	}
	if fileConfig.Schedule.RefreshCron != "" && envConfig.Schedule.RefreshCron == "" {
		envConfig.Schedule.RefreshCron = fileConfig.Schedule.RefreshCron
	}
	if fileConfig.Logging.Level != "" && envConfig.Logging.Level == defaults.Logging.Level {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}

	return envConfig
}

// validate checks struct rules and normalizes a few logging fields
func (c *Config) validate() error {
	if err := structValidator.Struct(c); err != nil {
		return err
	}

	// Logs are always JSON
	c.Logging.Format = "json"

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/reports.log"
	}

	return nil
}

// Validate runs the struct validation rules against a config built in code.
func (c *Config) Validate() error {
	return c.validate()
}

// ExportDir returns the absolute directory exports are written to. The
// directory need not exist yet, but the path must not name a file.
func (c *Config) ExportDir() (string, error) {
	dir := c.Export.OutputDir
	if !filepath.IsAbs(dir) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", apierrors.NewConfigError(fmt.Sprintf("resolve export dir %q", dir), err)
		}
		dir = abs
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return "", apierrors.NewConfigError(fmt.Sprintf("export dir %q is not a directory", dir), nil)
	}
	return dir, nil
}

var structValidator = validator.New()

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"reports.yaml",
		"configs/reports.yaml",
		"../configs/reports.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			ExportTimeout:   2 * time.Minute,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/reports.log",
		},
		Backend: BackendConfig{
			BaseURL:          DefaultBackendURL,
			Timeout:          DefaultHTTPTimeout,
			UsePrimaryClient: true,
			ForceRefresh:     true,
		},
		Export: ExportConfig{
			OutputDir: DefaultExportDir,
		},
	}
}
