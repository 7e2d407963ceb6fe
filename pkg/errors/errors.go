// Package errors defines the error taxonomy shared by corsget packages.
//
// Configuration errors abort a run before any network activity. Every other
// sentinel describes a per-item failure that is counted and logged while the
// run continues with the next station/date pair.
package errors

import "fmt"

// Run taxonomy.
var (
	// ErrConfiguration covers bad input files, missing columns and invalid date ranges.
	ErrConfiguration = fmt.Errorf("configuration error")

	// ErrNotFound is returned when the archive reports the file as absent.
	ErrNotFound = fmt.Errorf("remote file not found")

	// ErrTransfer covers any network or HTTP failure other than not-found.
	ErrTransfer = fmt.Errorf("transfer failed")

	// ErrDecompress is returned when a downloaded payload cannot be decompressed.
	ErrDecompress = fmt.Errorf("decompression failed")

	// ErrConversion is returned when the external converter is missing or fails.
	ErrConversion = fmt.Errorf("conversion failed")

	// ErrHook is returned when a post-fetch script fails or sets err.
	ErrHook = fmt.Errorf("hook failed")
)

// Config file errors.
var (
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrInvalidPath       = fmt.Errorf("invalid path")
)

// Wrap wraps an error with additional context.
// If the error is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
// If the error is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Configurationf builds an ErrConfiguration with a formatted detail message.
func Configurationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
