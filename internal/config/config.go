package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Plaza    PlazaConfig
	Database DatabaseConfig
	Log      LogConfig
	Sync     SyncConfig
}

// AppConfig holds HTTP server settings
type AppConfig struct {
	Env  string `validate:"oneof=development production"`
	Port string `validate:"required,numeric"`
}

// PlazaConfig holds the default API credentials. Accounts stored in the
// database carry their own keys.
type PlazaConfig struct {
	PublicKey           string
	PrivateKey          string `validate:"required_with=PublicKey"`
	TestMode            bool
	SkipSSLVerification bool
	BaseURL             string `validate:"omitempty,url"`
}

// DatabaseConfig holds the SQLite settings
type DatabaseConfig struct {
	Path          string `validate:"required"`
	EncryptionKey string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"`
	Format string `validate:"oneof=json console"`
	Output string
}

// SyncConfig controls pacing of the export job
type SyncConfig struct {
	RequestsPerMinute int           `validate:"min=1"`
	MaxPages          int           `validate:"min=1"`
	Timeout           time.Duration
}

// Load reads configuration from an optional YAML file and PLAZA_ prefixed
// environment variables, in that order of increasing priority.
// An empty path searches config.yaml in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("PLAZA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Plaza: PlazaConfig{
			PublicKey:           v.GetString("plaza.public_key"),
			PrivateKey:          v.GetString("plaza.private_key"),
			TestMode:            v.GetBool("plaza.test_mode"),
			SkipSSLVerification: v.GetBool("plaza.skip_ssl_verification"),
			BaseURL:             v.GetString("plaza.base_url"),
		},
		Database: DatabaseConfig{
			Path:          v.GetString("database.path"),
			EncryptionKey: v.GetString("database.encryption_key"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Sync: SyncConfig{
			RequestsPerMinute: v.GetInt("sync.requests_per_minute"),
			MaxPages:          v.GetInt("sync.max_pages"),
			Timeout:           v.GetDuration("sync.timeout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("plaza.test_mode", false)
	v.SetDefault("plaza.skip_ssl_verification", false)
	v.SetDefault("database.path", "plaza-helpers.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("sync.requests_per_minute", 60)
	v.SetDefault("sync.max_pages", 50)
	v.SetDefault("sync.timeout", 10*time.Minute)
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// IsProduction returns true in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
