package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"specview/internal/framework"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override defaults. Command-line flags win over both.
const (
	EnvBackend  = "SPECVIEW_BACKEND"
	EnvPlatform = "SPECVIEW_PLATFORM"
	EnvRunner   = "SPECVIEW_RUNNER"
	EnvSuite    = "SPECVIEW_SUITE"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	Suite       string

	// Framework settings
	RunnerCommand []string

	// Computation library settings
	Backend  string
	Backends []string
	Platform string

	// Test environment registered before the suite loads
	EnvName       string
	FlagOverrides map[string]any

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	ProjectPath  string
	Suite        string
	Runner       string
	Backend      string
	EnvConfig    string
	ReportPath   string
	MetricsAddr  string
	OpenFailures bool
	NoProgress   bool
	Verbose      bool
}

// envFile is the YAML layout of --env-config
type envFile struct {
	Backends     []string            `yaml:"backends"`
	Environments []framework.TestEnv `yaml:"environments"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath: DefaultProjectPath,
		Suite:       DefaultSuite,
		Backend:     DefaultBackend,
		Platform:    DefaultPlatform(),
		EnvName:     DefaultEnvName,
	}
	cfg.RunnerCommand = append([]string(nil), DefaultRunnerCommand...)
	cfg.Backends = append([]string(nil), DefaultBackends...)
	cfg.FlagOverrides = make(map[string]any, len(DefaultFlags))
	for k, v := range DefaultFlags {
		cfg.FlagOverrides[k] = v
	}
	return cfg
}

// Load creates a config and applies, in order, the project .env file, process
// environment variables and flags
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags

	if flags.ProjectPath != "" {
		cfg.ProjectPath = flags.ProjectPath
	}

	// .env file might not exist, that's okay - use environment variables
	if err := godotenv.Load(filepath.Join(cfg.ProjectPath, DefaultEnvFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}
	cfg.applyEnv()

	if flags.Suite != "" {
		cfg.Suite = flags.Suite
	}
	if flags.Backend != "" {
		cfg.Backend = flags.Backend
	}
	if flags.Runner != "" {
		cfg.RunnerCommand = strings.Fields(flags.Runner)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvPlatform); v != "" {
		c.Platform = v
	}
	if v := os.Getenv(EnvRunner); v != "" {
		c.RunnerCommand = strings.Fields(v)
	}
	if v := os.Getenv(EnvSuite); v != "" {
		c.Suite = v
	}
}

// TestEnvs returns the environments to register. Without an --env-config file this is a
// single environment named EnvName bound to the active backend.
func (c *Config) TestEnvs() ([]framework.TestEnv, error) {
	if c.Flags.EnvConfig == "" {
		flags := make(map[string]any, len(c.FlagOverrides))
		for k, v := range c.FlagOverrides {
			flags[k] = v
		}
		return []framework.TestEnv{{
			Name:        c.EnvName,
			BackendName: c.Backend,
			Flags:       flags,
		}}, nil
	}

	file, err := c.readEnvFile()
	if err != nil {
		return nil, err
	}
	if len(file.Environments) == 0 {
		return nil, fmt.Errorf("%s: no environments defined", c.Flags.EnvConfig)
	}
	envs := file.Environments
	for i := range envs {
		if envs[i].BackendName == "" {
			envs[i].BackendName = c.Backend
		}
	}
	return envs, nil
}

// KnownBackends returns the configured backends plus any declared in --env-config
func (c *Config) KnownBackends() ([]string, error) {
	known := append([]string(nil), c.Backends...)
	if c.Flags.EnvConfig == "" {
		return known, nil
	}
	file, err := c.readEnvFile()
	if err != nil {
		return nil, err
	}
	return append(known, file.Backends...), nil
}

func (c *Config) readEnvFile() (*envFile, error) {
	data, err := os.ReadFile(c.resolve(c.Flags.EnvConfig))
	if err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	var file envFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse env config %s: %w", c.Flags.EnvConfig, err)
	}
	return &file, nil
}

// GetSuitePath returns the suite path relative to the project path unless absolute
func (c *Config) GetSuitePath() string {
	return c.resolve(c.Suite)
}

// GetReportPath returns the absolute path of the JSON report, or "" when disabled
func (c *Config) GetReportPath() string {
	if c.Flags.ReportPath == "" {
		return ""
	}
	p := c.resolve(c.Flags.ReportPath)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ProjectPath, path)
}
