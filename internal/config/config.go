// Package config loads the application configuration from environment
// variables with an optional YAML file overlay.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/202510804-cloud/polar-plant-dashboard/internal/errors"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PLANTDASH"

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Groups  []Group       `yaml:"groups" envconfig:"GROUPS" validate:"required,min=1,dive"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths and source-file naming configuration.
type PathsConfig struct {
	// DataDir is the base directory holding all source files.
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	// EnvFileSuffix is appended to a group name to form its environmental
	// CSV file name, e.g. "송도고" + "_환경데이터.csv".
	EnvFileSuffix string `yaml:"env_file_suffix" envconfig:"ENV_FILE_SUFFIX" default:"_환경데이터.csv"`
	// GrowthWorkbook is the logical name of the growth-results workbook.
	GrowthWorkbook string `yaml:"growth_workbook" envconfig:"GROWTH_WORKBOOK" default:"4개교_생육결과데이터.xlsx"`
}

// Group is one research unit in the study. The set of groups is fixed
// configuration for the lifetime of the process.
type Group struct {
	Name     string  `yaml:"name" envconfig:"NAME" validate:"required"`
	TargetEC float64 `yaml:"target_ec" envconfig:"TARGET_EC" validate:"required,gt=0"`
	Color    string  `yaml:"color" envconfig:"COLOR" validate:"required,hexcolor"`
}

// DefaultGroups returns the four study groups with their target EC levels
// and display colors.
func DefaultGroups() []Group {
	return []Group{
		{Name: "송도고", TargetEC: 1.0, Color: "#ABDEE6"},
		{Name: "하늘고", TargetEC: 2.0, Color: "#FFCCB6"},
		{Name: "아라고", TargetEC: 4.0, Color: "#F3B0C3"},
		{Name: "동산고", TargetEC: 8.0, Color: "#CBAACB"},
	}
}

// GroupNames returns the configured group names in configuration order.
// This order is deterministic and drives view ordering downstream.
func (c *Config) GroupNames() []string {
	names := make([]string, 0, len(c.Groups))
	for _, g := range c.Groups {
		names = append(names, g.Name)
	}
	return names
}

// GroupByName returns the configured group with the given name.
func (c *Config) GroupByName(name string) (Group, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Load loads configuration from environment variables and an optional
// config file. Environment variables win over file values; the fixed
// group set defaults in when neither provides one.
func Load() (*Config, error) {
	return LoadFromFile(configFilePath())
}

// LoadFromFile loads configuration using the given YAML file path. A
// missing file is not an error; defaults and environment apply.
//
// Layering: envconfig runs first, giving defaults plus anything set in
// the environment, then the file overlays on top. envconfig cannot tell
// a defaulted field from an explicitly set one, so the merge consults
// the environment directly: a file value loses only to a variable that
// is actually present.
func LoadFromFile(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, apperrors.NewConfigError("process environment", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("read config file %s", configFile), err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("parse config file %s", configFile), err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	if len(cfg.Groups) == 0 {
		cfg.Groups = DefaultGroups()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeFileConfig overlays file values onto the env-processed config.
// Environment takes precedence over the file; the file takes precedence
// over envconfig defaults.
func mergeFileConfig(cfg *Config, file Config) {
	overrideInt(&cfg.Server.Port, file.Server.Port, "SERVER_PORT")
	overrideDuration(&cfg.Server.ReadTimeout, file.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	overrideDuration(&cfg.Server.WriteTimeout, file.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	overrideDuration(&cfg.Server.IdleTimeout, file.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT")
	overrideDuration(&cfg.Server.ShutdownTimeout, file.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")

	overrideString(&cfg.Logging.Level, file.Logging.Level, "LOGGING_LEVEL")
	overrideString(&cfg.Logging.Format, file.Logging.Format, "LOGGING_FORMAT")
	overrideString(&cfg.Logging.Output, file.Logging.Output, "LOGGING_OUTPUT")
	overrideString(&cfg.Logging.FilePath, file.Logging.FilePath, "LOGGING_FILE_PATH")

	overrideString(&cfg.Paths.DataDir, file.Paths.DataDir, "PATHS_DATA_DIR")
	overrideString(&cfg.Paths.EnvFileSuffix, file.Paths.EnvFileSuffix, "PATHS_ENV_FILE_SUFFIX")
	overrideString(&cfg.Paths.GrowthWorkbook, file.Paths.GrowthWorkbook, "PATHS_GROWTH_WORKBOOK")

	if len(file.Groups) > 0 && !envSet("GROUPS") {
		cfg.Groups = file.Groups
	}
}

func envSet(name string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + name)
	return ok
}

func overrideInt(dst *int, fileVal int, name string) {
	if fileVal != 0 && !envSet(name) {
		*dst = fileVal
	}
}

func overrideString(dst *string, fileVal, name string) {
	if fileVal != "" && !envSet(name) {
		*dst = fileVal
	}
}

func overrideDuration(dst *time.Duration, fileVal time.Duration, name string) {
	if fileVal != 0 && !envSet(name) {
		*dst = fileVal
	}
}

// validate checks the configuration beyond what struct defaults guarantee.
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	seen := make(map[string]struct{}, len(c.Groups))
	for _, g := range c.Groups {
		if _, dup := seen[g.Name]; dup {
			return apperrors.NewValidationError(fmt.Sprintf("duplicate group name %q", g.Name))
		}
		seen[g.Name] = struct{}{}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.NewValidationError(fmt.Sprintf("invalid server port %d", c.Server.Port))
	}

	return nil
}

func configFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}
