// Package config loads the trainer and server settings from the
// environment.
package config

import (
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
	"github.com/YuminosukeSato/salary-predictor/pkg/log"
)

// Config holds all application configuration
type Config struct {
	Data   DataConfig
	Model  ModelConfig
	Server ServerConfig
	Log    LogConfig
}

// DataConfig holds dataset-related configuration
type DataConfig struct {
	Dataset  string
	TestSize float64
}

// ModelConfig holds the artifact path and forest hyperparameters
type ModelConfig struct {
	Path  string
	Trees int
	Seed  int64
	// Plot is an optional PNG path for the feature importance chart.
	Plot string
}

// ServerConfig holds form server configuration
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load reads the given .env files (".env" when none are given) into the
// process environment, then builds a Config from environment variables.
// Missing .env files are not an error; variables already set in the
// environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from environment variables and defaults.
func FromEnv() *Config {
	return &Config{
		Data: DataConfig{
			Dataset:  getEnv("SALARY_DATASET", "Employers_data.csv"),
			TestSize: getEnvAsFloat("SALARY_TEST_SIZE", 0.2),
		},
		Model: ModelConfig{
			Path:  getEnv("SALARY_MODEL_PATH", "model.gob"),
			Trees: getEnvAsInt("SALARY_TREES", 100),
			Seed:  getEnvAsInt64("SALARY_SEED", 42),
			Plot:  getEnv("SALARY_PLOT", ""),
		},
		Server: ServerConfig{
			Addr:            getEnv("SALARY_ADDR", ":8501"),
			ShutdownTimeout: getEnvAsDuration("SALARY_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("SALARY_LOG_LEVEL", "info"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Data.Dataset == "" {
		return errors.NewValidationError("SALARY_DATASET", "is required", c.Data.Dataset)
	}
	if c.Data.TestSize < 0 || c.Data.TestSize >= 1 {
		return errors.NewValidationError("SALARY_TEST_SIZE", "must be in [0, 1)", c.Data.TestSize)
	}
	if c.Model.Path == "" {
		return errors.NewValidationError("SALARY_MODEL_PATH", "is required", c.Model.Path)
	}
	if c.Model.Trees < 1 {
		return errors.NewValidationError("SALARY_TREES", "must be >= 1", c.Model.Trees)
	}
	if c.Server.Addr == "" {
		return errors.NewValidationError("SALARY_ADDR", "is required", c.Server.Addr)
	}
	if _, err := log.ToLogLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("SALARY_LOG_LEVEL", err.Error(), c.Log.Level)
	}
	return nil
}
