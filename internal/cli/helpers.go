package cli

import (
	"fmt"

	"github.com/glorpus-work/corsget/internal/logger"
	"github.com/glorpus-work/corsget/pkg/archive"
	"github.com/glorpus-work/corsget/pkg/config"
	"github.com/glorpus-work/corsget/pkg/convert"
	"github.com/glorpus-work/corsget/pkg/download"
	"github.com/glorpus-work/corsget/pkg/hook"
	"github.com/glorpus-work/corsget/pkg/orchestrator"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	NoColor      *bool
	OutputFormat *string
)

// loadConfig loads the configuration file, applies the global flags and
// initializes logging from the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.LogLevel = "debug"
	}

	initLogging(cfg)
	return cfg, nil
}

func initLogging(cfg *config.Config) {
	format := logger.FormatColor
	switch {
	case cfg.OutputFormat == OutputJSON:
		format = logger.FormatJSON
	case NoColor != nil && *NoColor:
		format = logger.FormatText
	}
	logger.InitLogger(cfg.LogLevel, format)
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err.Error()})
		return ""
	}
	return defaultPath
}

func outputFormat(cfg *config.Config) string {
	if cfg.OutputFormat == "" {
		return OutputText
	}
	return cfg.OutputFormat
}

// newOrchestrator wires the configured pipeline stages. Disabled stages stay nil.
func newOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, error) {
	orch := &orchestrator.Orchestrator{
		DL:      download.NewManager(cfg.HTTPTimeout, cfg.UserAgent, cfg.Archive.NotFoundStatuses...).WithAuth(cfg.Authenticator()),
		Builder: cfg.Builder(),
		Hooks: orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
			logger.Debug("Event", logger.Fields{"phase": e.Phase, "id": e.ID, "msg": e.Msg})
		}},
	}

	if cfg.Decompress {
		orch.Decompressor = archive.NewManager(cfg.KeepCompressed)
	}
	if cfg.Converter.Path != "" {
		orch.Converter = convert.NewExec(cfg.Converter.Path, cfg.Converter.Args, cfg.Converter.KeepInput)
	}
	if cfg.HookScript != "" {
		executor, err := hook.LoadFile(cfg.HookScript)
		if err != nil {
			return nil, err
		}
		orch.Hook = executor
	}

	return orch, nil
}
