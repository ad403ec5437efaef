package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset" json:"dataset"`
	Model     ModelConfig     `yaml:"model" json:"model"`
	Weather   WeatherConfig   `yaml:"weather" json:"weather"`
	Artifacts ArtifactsConfig `yaml:"artifacts" json:"artifacts"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// DatasetConfig holds dataset and splitting configuration
type DatasetConfig struct {
	Path               string   `yaml:"path" json:"path"`
	TargetColumns      []string `yaml:"target_columns" json:"target_columns"`
	TestFraction       float64  `yaml:"test_fraction" json:"test_fraction"`
	ValidationFraction float64  `yaml:"validation_fraction" json:"validation_fraction"`
	RandomSeed         int64    `yaml:"random_seed" json:"random_seed"`
}

// ModelConfig holds decision tree hyperparameters
type ModelConfig struct {
	MaxDepth        int `yaml:"max_depth" json:"max_depth"`
	MinSamplesSplit int `yaml:"min_samples_split" json:"min_samples_split"`
	MinSamplesLeaf  int `yaml:"min_samples_leaf" json:"min_samples_leaf"`
}

// WeatherConfig holds weather collaborator configuration
type WeatherConfig struct {
	APIKey         string `yaml:"api_key" json:"api_key"`
	Location       string `yaml:"location" json:"location"`
	BaseURL        string `yaml:"base_url" json:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries" json:"max_retries"`
}

// ArtifactsConfig holds persistence configuration
type ArtifactsConfig struct {
	Dir           string `yaml:"dir" json:"dir"`
	RunHistoryDB  string `yaml:"run_history_db" json:"run_history_db"`
	RecordHistory bool   `yaml:"record_history" json:"record_history"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, text
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Path:               "./data/crop_dataset.csv",
			TargetColumns:      []string{"Crop Type", "Fertilizer Name"},
			TestFraction:       0.15,
			ValidationFraction: 0.15,
			RandomSeed:         42,
		},
		Model: ModelConfig{
			MaxDepth:        0, // unlimited, matching a fully grown tree
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
		},
		Weather: WeatherConfig{
			Location:       "Bengaluru",
			BaseURL:        "https://api.weatherapi.com/v1",
			TimeoutSeconds: 10,
			MaxRetries:     2,
		},
		Artifacts: ArtifactsConfig{
			Dir:           "./models",
			RunHistoryDB:  "./models/runs.db",
			RecordHistory: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a file and merges it over the
// defaults. A missing file is not an error: defaults plus environment
// overrides apply.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			ext := strings.ToLower(filepath.Ext(configPath))
			switch ext {
			case ".yaml", ".yml":
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return nil, fmt.Errorf("failed to parse YAML config: %w", err)
				}
			case ".json":
				if err := json.Unmarshal(data, cfg); err != nil {
					return nil, fmt.Errorf("failed to parse JSON config: %w", err)
				}
			default:
				return nil, fmt.Errorf("unsupported config file format: %s", ext)
			}
		}
	}

	applyEnvironment(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvironment overrides config values from environment variables
func applyEnvironment(cfg *Config) {
	if path := os.Getenv("FARMSIGHT_DATASET"); path != "" {
		cfg.Dataset.Path = path
	}
	if seed := os.Getenv("FARMSIGHT_SEED"); seed != "" {
		if s, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Dataset.RandomSeed = s
		}
	}
	if key := os.Getenv("FARMSIGHT_WEATHER_API_KEY"); key != "" {
		cfg.Weather.APIKey = key
	}
	if loc := os.Getenv("FARMSIGHT_LOCATION"); loc != "" {
		cfg.Weather.Location = loc
	}
	if dir := os.Getenv("FARMSIGHT_ARTIFACTS_DIR"); dir != "" {
		cfg.Artifacts.Dir = dir
	}
	if level := os.Getenv("FARMSIGHT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset path is required")
	}
	if len(c.Dataset.TargetColumns) == 0 {
		return fmt.Errorf("at least one target column is required")
	}
	if c.Dataset.TestFraction <= 0 || c.Dataset.TestFraction >= 1 {
		return fmt.Errorf("test_fraction must be in (0,1), got %v", c.Dataset.TestFraction)
	}
	if c.Dataset.ValidationFraction <= 0 || c.Dataset.ValidationFraction >= 1 {
		return fmt.Errorf("validation_fraction must be in (0,1), got %v", c.Dataset.ValidationFraction)
	}
	if c.Model.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.Model.MaxDepth)
	}
	if c.Weather.TimeoutSeconds <= 0 {
		return fmt.Errorf("weather timeout_seconds must be positive, got %d", c.Weather.TimeoutSeconds)
	}
	if c.Weather.MaxRetries < 0 {
		return fmt.Errorf("weather max_retries must be >= 0, got %d", c.Weather.MaxRetries)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	validFormats := []string{"json", "text"}
	if !contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
