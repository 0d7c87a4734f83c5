package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"abtestapp/domain/abtest"
	"abtestapp/internal/errors"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the optional YAML file layered under the environment
const EnvConfigFile = "ABTEST_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Batch      BatchConfig      `yaml:"batch"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	GinMode         string        `yaml:"gin_mode"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig controls log level and output format
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// EvaluationConfig holds the defaults offered by the input shells
type EvaluationConfig struct {
	DefaultConfidence abtest.ConfidenceLevel `yaml:"default_confidence"`
}

// BatchConfig holds batch evaluation settings
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			GinMode:         "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Evaluation: EvaluationConfig{
			DefaultConfidence: abtest.Confidence90,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables (a .env file is read first if present), in that
// order of precedence, and validates it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	config := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read config file %q", path)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to parse config file %q", path)
	}
	return nil
}

func applyEnvOverrides(config *Config) {
	config.Server.Port = getEnvOrDefault("PORT", config.Server.Port)
	config.Server.GinMode = getEnvOrDefault("GIN_MODE", config.Server.GinMode)
	config.Server.ShutdownTimeout = getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", config.Server.ShutdownTimeout)

	config.Log.Level = strings.ToLower(getEnvOrDefault("LOG_LEVEL", config.Log.Level))
	config.Log.Format = strings.ToLower(getEnvOrDefault("LOG_FORMAT", config.Log.Format))

	config.Evaluation.DefaultConfidence = abtest.ConfidenceLevel(
		getEnvIntOrDefault("DEFAULT_CONFIDENCE_LEVEL", int(config.Evaluation.DefaultConfidence)))

	config.Batch.Workers = getEnvIntOrDefault("BATCH_WORKERS", config.Batch.Workers)
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("server port must be numeric, got " + strconv.Quote(config.Server.Port))
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	switch config.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.ConfigInvalid("LOG_LEVEL must be debug, info, warn or error")
	}
	switch config.Log.Format {
	case "console", "json":
	default:
		return errors.ConfigInvalid("LOG_FORMAT must be console or json")
	}
	if !config.Evaluation.DefaultConfidence.Valid() {
		return errors.ConfigInvalid("DEFAULT_CONFIDENCE_LEVEL must be 90, 95 or 99")
	}
	if config.Batch.Workers < 1 {
		return errors.ConfigInvalid("BATCH_WORKERS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
