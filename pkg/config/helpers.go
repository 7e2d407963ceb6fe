package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/corsget/pkg/errors"
)

// Keys lists the scalar keys understood by GetValue and SetValue, in display order.
var Keys = []string{
	"version",
	"archive.base_url",
	"archive.extension",
	"archive.not_found_statuses",
	"stations.file",
	"stations.column",
	"stations.ids",
	"range.start",
	"range.end",
	"output_root",
	"skip_existing",
	"decompress",
	"keep_compressed",
	"converter.path",
	"converter.args",
	"converter.keep_input",
	"hook_script",
	"http_timeout",
	"user_agent",
	"log_level",
	"output_format",
}

// GetValue returns a configuration value rendered as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "version":
		return c.Version, nil
	case "archive.base_url":
		return c.Archive.BaseURL, nil
	case "archive.extension":
		return c.Archive.Extension, nil
	case "archive.not_found_statuses":
		parts := make([]string, len(c.Archive.NotFoundStatuses))
		for i, code := range c.Archive.NotFoundStatuses {
			parts[i] = strconv.Itoa(code)
		}
		return strings.Join(parts, ","), nil
	case "stations.file":
		return c.Stations.File, nil
	case "stations.column":
		return c.Stations.Column, nil
	case "stations.ids":
		return strings.Join(c.Stations.IDs, ","), nil
	case "range.start":
		return c.Range.Start, nil
	case "range.end":
		return c.Range.End, nil
	case "output_root":
		return c.OutputRoot, nil
	case "skip_existing":
		return strconv.FormatBool(c.SkipExisting), nil
	case "decompress":
		return strconv.FormatBool(c.Decompress), nil
	case "keep_compressed":
		return strconv.FormatBool(c.KeepCompressed), nil
	case "converter.path":
		return c.Converter.Path, nil
	case "converter.args":
		return strings.Join(c.Converter.Args, " "), nil
	case "converter.keep_input":
		return strconv.FormatBool(c.Converter.KeepInput), nil
	case "hook_script":
		return c.HookScript, nil
	case "http_timeout":
		return c.HTTPTimeout.String(), nil
	case "user_agent":
		return c.UserAgent, nil
	case "log_level":
		return c.LogLevel, nil
	case "output_format":
		return c.OutputFormat, nil
	default:
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
}

// SetValue sets a configuration value from its string form.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "version":
		c.Version = value
	case "archive.base_url":
		c.Archive.BaseURL = value
	case "archive.extension":
		c.Archive.Extension = value
	case "archive.not_found_statuses":
		codes, err := parseInts(splitList(value))
		if err != nil {
			return fmt.Errorf("invalid status list for %s: %w", key, err)
		}
		c.Archive.NotFoundStatuses = codes
	case "stations.file":
		c.Stations.File = value
	case "stations.column":
		c.Stations.Column = value
	case "stations.ids":
		c.Stations.IDs = splitList(value)
	case "range.start":
		c.Range.Start = value
	case "range.end":
		c.Range.End = value
	case "output_root":
		c.OutputRoot = value
	case "skip_existing", "decompress", "keep_compressed", "converter.keep_input":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		c.setBool(key, b)
	case "converter.path":
		c.Converter.Path = value
	case "converter.args":
		c.Converter.Args = strings.Fields(value)
	case "hook_script":
		c.HookScript = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		c.HTTPTimeout = d
	case "user_agent":
		c.UserAgent = value
	case "log_level":
		c.LogLevel = value
	case "output_format":
		c.OutputFormat = value
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return nil
}

func (c *Config) setBool(key string, b bool) {
	switch key {
	case "skip_existing":
		c.SkipExisting = b
	case "decompress":
		c.Decompress = b
	case "keep_compressed":
		c.KeepCompressed = b
	case "converter.keep_input":
		c.Converter.KeepInput = b
	}
}

// ToMap renders every key for display.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(Keys))
	for _, key := range Keys {
		v, _ := c.GetValue(key)
		result[key] = v
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInts(parts []string) ([]int, error) {
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
