package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "issue-insights/backend/pkg/errors"
)

// Malformed record policies
const (
	PolicySkip = "skip"
	PolicyFail = "fail"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds all application configuration
type Config struct {
	// App
	Env      string
	LogLevel string

	// Record source
	DataDir  string
	Datasets []string
	Dataset  int

	// Upstream filters, applied before any analysis sees the records
	User  string
	Label string

	// Graph builder
	MalformedPolicy string

	// Layout
	LayoutIterations int
	LayoutSeed       uint64

	// Output
	OutputFormat string
	OutputFile   string
	Serve        bool
	ViewerAddr   string
	MetricsFile  string
}

// fileConfig is the shape of the optional YAML config file
type fileConfig struct {
	Env             string   `yaml:"env"`
	LogLevel        string   `yaml:"log_level"`
	DataDir         string   `yaml:"data_dir"`
	Datasets        []string `yaml:"datasets"`
	MalformedPolicy string   `yaml:"malformed_policy"`
	Layout          struct {
		Iterations int    `yaml:"iterations"`
		Seed       uint64 `yaml:"seed"`
	} `yaml:"layout"`
	Output struct {
		Format      string `yaml:"format"`
		ViewerAddr  string `yaml:"viewer_addr"`
		MetricsFile string `yaml:"metrics_file"`
	} `yaml:"output"`
}

// Flags carries command-line values that override file and environment settings.
// Zero values mean "not given", except Dataset which is nil when not given.
type Flags struct {
	Dataset     *int
	User        string
	Label       string
	Format      string
	OutputFile  string
	MetricsFile string
	Serve       bool
	Strict      bool
}

// Load reads configuration from .env, the environment, and the YAML file named
// by ISSUES_CONFIG (default config.yaml). Missing files are not an error.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	return LoadFrom(getEnv("ISSUES_CONFIG", "config.yaml"))
}

// LoadFrom builds a Config from defaults, the YAML file at path (if present)
// and the environment, in that order of increasing precedence.
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Env:              "development",
		LogLevel:         "info",
		DataDir:          "data",
		Datasets:         []string{"poetry.json"},
		MalformedPolicy:  PolicySkip,
		LayoutIterations: 50,
		LayoutSeed:       1,
		OutputFormat:     FormatText,
		ViewerAddr:       "127.0.0.1:8050",
	}
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.Env, fc.Env)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.DataDir, fc.DataDir)
	if len(fc.Datasets) > 0 {
		c.Datasets = fc.Datasets
	}
	setString(&c.MalformedPolicy, fc.MalformedPolicy)
	if fc.Layout.Iterations != 0 {
		c.LayoutIterations = fc.Layout.Iterations
	}
	if fc.Layout.Seed != 0 {
		c.LayoutSeed = fc.Layout.Seed
	}
	setString(&c.OutputFormat, fc.Output.Format)
	setString(&c.ViewerAddr, fc.Output.ViewerAddr)
	setString(&c.MetricsFile, fc.Output.MetricsFile)
	return nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DataDir = getEnv("ISSUES_DATA_DIR", c.DataDir)
	if v := os.Getenv("ISSUES_DATASETS"); v != "" {
		c.Datasets = splitList(v)
	}
	c.MalformedPolicy = getEnv("MALFORMED_POLICY", c.MalformedPolicy)
	c.OutputFormat = getEnv("OUTPUT_FORMAT", c.OutputFormat)
	c.ViewerAddr = getEnv("VIEWER_ADDR", c.ViewerAddr)
	c.MetricsFile = getEnv("METRICS_FILE", c.MetricsFile)

	var err error
	if c.LayoutIterations, err = getEnvInt("LAYOUT_ITERATIONS", c.LayoutIterations); err != nil {
		return err
	}
	if c.LayoutSeed, err = getEnvUint64("LAYOUT_SEED", c.LayoutSeed); err != nil {
		return err
	}
	return nil
}

// OverwriteFromFlags applies command-line values on top of the loaded config
func (c *Config) OverwriteFromFlags(f Flags) error {
	if f.Dataset != nil {
		c.Dataset = *f.Dataset
	}
	setString(&c.User, f.User)
	setString(&c.Label, f.Label)
	setString(&c.OutputFormat, f.Format)
	setString(&c.OutputFile, f.OutputFile)
	setString(&c.MetricsFile, f.MetricsFile)
	if f.Serve {
		c.Serve = true
	}
	if f.Strict {
		c.MalformedPolicy = PolicyFail
	}
	return c.Validate()
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return apperrors.NewConfigMissingRequired("ISSUES_DATA_DIR")
	}
	if len(c.Datasets) == 0 {
		return apperrors.NewConfigMissingRequired("ISSUES_DATASETS")
	}
	if c.Dataset < 0 {
		return apperrors.NewConfigValidationFailed("dataset", "must not be negative")
	}
	if c.MalformedPolicy != PolicySkip && c.MalformedPolicy != PolicyFail {
		return apperrors.NewConfigValidationFailed("MALFORMED_POLICY", fmt.Sprintf("unknown policy %q", c.MalformedPolicy))
	}
	if c.OutputFormat != FormatText && c.OutputFormat != FormatJSON {
		return apperrors.NewConfigValidationFailed("OUTPUT_FORMAT", fmt.Sprintf("unknown format %q", c.OutputFormat))
	}
	if c.LayoutIterations <= 0 {
		return apperrors.NewConfigValidationFailed("LAYOUT_ITERATIONS", "must be positive")
	}
	if c.Serve && c.ViewerAddr == "" {
		return apperrors.NewConfigMissingRequired("VIEWER_ADDR")
	}
	return nil
}

// DatasetPath resolves the selected dataset index to a file path
func (c *Config) DatasetPath() (string, error) {
	if c.Dataset < 0 || c.Dataset >= len(c.Datasets) {
		return "", apperrors.NewSourceNotFound(fmt.Sprintf("dataset %d (have %d)", c.Dataset, len(c.Datasets)), nil)
	}
	name := c.Datasets[c.Dataset]
	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(c.DataDir, name), nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.NewConfigValidationFailed(key, fmt.Sprintf("not an integer: %q", value))
	}
	return n, nil
}

func getEnvUint64(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, apperrors.NewConfigValidationFailed(key, fmt.Sprintf("not an unsigned integer: %q", value))
	}
	return n, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
