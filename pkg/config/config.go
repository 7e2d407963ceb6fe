// Package config provides configuration management for corsget.
// It loads a YAML file, fills in defaults for the NOAA CORS archive and
// validates the result before any network activity takes place.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/corsget/pkg/daterange"
	"github.com/glorpus-work/corsget/pkg/download"
	"github.com/glorpus-work/corsget/pkg/errors"
	"github.com/glorpus-work/corsget/pkg/fsutil"
	"github.com/glorpus-work/corsget/pkg/layout"
	"github.com/glorpus-work/corsget/pkg/station"
	goversion "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// Version is the config schema version.
	Version string `yaml:"version"`

	Archive   ArchiveConfig   `yaml:"archive"`
	Stations  StationsConfig  `yaml:"stations"`
	Range     RangeConfig     `yaml:"range"`
	Converter ConverterConfig `yaml:"converter,omitempty"`

	OutputRoot     string `yaml:"output_root"`
	SkipExisting   bool   `yaml:"skip_existing"`
	Decompress     bool   `yaml:"decompress"`
	KeepCompressed bool   `yaml:"keep_compressed"`
	HookScript     string `yaml:"hook_script,omitempty"`

	// Network settings
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent,omitempty"`

	// Output settings
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
	OutputFormat string `yaml:"output_format"` // text, json, yaml
}

// ArchiveConfig locates the remote archive.
type ArchiveConfig struct {
	BaseURL          string `yaml:"base_url"`
	Extension        string `yaml:"extension"`
	NotFoundStatuses []int  `yaml:"not_found_statuses,flow"`

	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// StationsConfig selects the stations to fetch. IDs, when set, override File.
type StationsConfig struct {
	File   string   `yaml:"file"`
	Column string   `yaml:"column"`
	IDs    []string `yaml:"ids,omitempty,flow"`
}

// RangeConfig is the inclusive date range, as YYYY-MM-DD strings.
type RangeConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ConverterConfig describes the optional external converter. An empty Path disables it.
type ConverterConfig struct {
	Path      string   `yaml:"path,omitempty"`
	Args      []string `yaml:"args,omitempty,flow"`
	KeepInput bool     `yaml:"keep_input,omitempty"`
}

// Default configuration values.
const (
	// SchemaVersion is written by config init.
	SchemaVersion = "1"

	// SupportedVersions is the constraint a loaded config version must satisfy.
	SupportedVersions = ">= 1, < 2"

	// DefaultHTTPTimeout is the default per-request timeout.
	DefaultHTTPTimeout = 30 * time.Second

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with NOAA CORS defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Archive: ArchiveConfig{
			BaseURL:          layout.DefaultBaseURL,
			Extension:        layout.DefaultExtension,
			NotFoundStatuses: append([]int{}, download.DefaultNotFoundStatuses...),
		},
		Stations: StationsConfig{
			File:   "station_ids.csv",
			Column: station.DefaultColumn,
		},
		OutputRoot:   layout.DefaultRoot,
		HTTPTimeout:  DefaultHTTPTimeout,
		LogLevel:     "info",
		OutputFormat: "text",
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", errors.ErrConfiguration, errors.ErrConfigParse, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig writes the configuration to path through a temporary file and rename.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks the static settings. The date range is checked separately by
// DateRange because it is commonly supplied on the command line.
func (c *Config) Validate() error {
	if c == nil {
		return errors.Configurationf("config is nil")
	}
	if err := validateVersion(c.Version); err != nil {
		return err
	}
	if err := validateArchive(c.Archive); err != nil {
		return err
	}
	if c.HTTPTimeout < 0 {
		return errors.Configurationf("http_timeout cannot be negative")
	}
	if c.OutputRoot == "" {
		return errors.Configurationf("output_root cannot be empty")
	}
	if c.Stations.Column == "" && len(c.Stations.IDs) == 0 {
		return errors.Configurationf("stations.column cannot be empty")
	}
	validFormats := map[string]bool{"text": true, "json": true, "yaml": true}
	if !validFormats[c.OutputFormat] {
		return errors.Configurationf("invalid output format '%s', must be one of: text, json, yaml", c.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return errors.Configurationf("invalid log level '%s', must be one of: debug, info, warn, error", c.LogLevel)
	}
	return nil
}

func validateVersion(v string) error {
	parsed, err := goversion.NewVersion(v)
	if err != nil {
		return errors.Configurationf("invalid config version %q: %v", v, err)
	}
	constraint := goversion.MustConstraints(goversion.NewConstraint(SupportedVersions))
	if !constraint.Check(parsed) {
		return errors.Configurationf("unsupported config version %s (supported: %s)", v, SupportedVersions)
	}
	return nil
}

func validateArchive(a ArchiveConfig) error {
	if a.BaseURL == "" {
		return errors.Configurationf("archive.base_url cannot be empty")
	}
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.Configurationf("archive.base_url %q must be an absolute http(s) URL", a.BaseURL)
	}
	if a.Extension == "" {
		return errors.Configurationf("archive.extension cannot be empty")
	}
	for _, code := range a.NotFoundStatuses {
		if code < 400 || code > 599 {
			return errors.Configurationf("archive.not_found_statuses: %d is not an HTTP error status", code)
		}
	}
	return a.Auth.validate()
}

// DateRange parses and validates the configured range.
func (c *Config) DateRange() (daterange.Range, error) {
	if c.Range.Start == "" || c.Range.End == "" {
		return daterange.Range{}, errors.Configurationf("both range.start and range.end are required")
	}
	return daterange.ParseRange(c.Range.Start, c.Range.End)
}

// LoadStations returns the configured station identifiers, lowercased.
// Explicit IDs take precedence over the station file.
func (c *Config) LoadStations() ([]string, error) {
	if len(c.Stations.IDs) > 0 {
		ids := station.Normalize(c.Stations.IDs)
		if len(ids) == 0 {
			return nil, errors.Configurationf("stations.ids contains only blank entries")
		}
		return ids, nil
	}
	if c.Stations.File == "" {
		return nil, errors.Configurationf("no stations configured: set stations.file or stations.ids")
	}
	return station.LoadFile(c.Stations.File, c.Stations.Column)
}

// Builder returns the path builder for the configured archive and output root.
func (c *Config) Builder() layout.Builder {
	return layout.Builder{
		BaseURL:   c.Archive.BaseURL,
		Extension: c.Archive.Extension,
		Root:      c.OutputRoot,
	}
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Archive.BaseURL == "" {
		c.Archive.BaseURL = defaults.Archive.BaseURL
	}
	if c.Archive.Extension == "" {
		c.Archive.Extension = defaults.Archive.Extension
	}
	if len(c.Archive.NotFoundStatuses) == 0 {
		c.Archive.NotFoundStatuses = defaults.Archive.NotFoundStatuses
	}
	if c.Stations.File == "" && len(c.Stations.IDs) == 0 {
		c.Stations.File = defaults.Stations.File
	}
	if c.Stations.Column == "" {
		c.Stations.Column = defaults.Stations.Column
	}
	if c.OutputRoot == "" {
		c.OutputRoot = defaults.OutputRoot
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = defaults.HTTPTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.OutputFormat == "" {
		c.OutputFormat = defaults.OutputFormat
	}
}
