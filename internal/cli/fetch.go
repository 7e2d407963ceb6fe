package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/corsget/internal/logger"
	"github.com/glorpus-work/corsget/pkg/config"
	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
	"github.com/glorpus-work/corsget/pkg/orchestrator"
)

// runFlags are the per-run overrides shared by fetch and plan.
type runFlags struct {
	start        string
	end          string
	stationsFile string
	column       string
	stations     []string
	out          string
	ext          string
	baseURL      string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "First day to fetch (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "Last day to fetch, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.stationsFile, "stations-file", "", "CSV file listing station identifiers")
	cmd.Flags().StringVar(&f.column, "column", "", "CSV column holding the station identifier")
	cmd.Flags().StringArrayVarP(&f.stations, "station", "s", nil, "Station identifier (repeatable, overrides --stations-file)")
	cmd.Flags().StringVar(&f.out, "out", "", "Local root directory for downloaded files")
	cmd.Flags().StringVar(&f.ext, "ext", "", "Archive file extension after the two digit year (e.g. o.gz, d.Z)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Archive base URL")
}

func (f *runFlags) apply(cfg *config.Config) {
	if f.start != "" {
		cfg.Range.Start = f.start
	}
	if f.end != "" {
		cfg.Range.End = f.end
	}
	if f.stationsFile != "" {
		cfg.Stations.File = f.stationsFile
		cfg.Stations.IDs = nil
	}
	if f.column != "" {
		cfg.Stations.Column = f.column
	}
	if len(f.stations) > 0 {
		cfg.Stations.IDs = f.stations
	}
	if f.out != "" {
		cfg.OutputRoot = f.out
	}
	if f.ext != "" {
		cfg.Archive.Extension = f.ext
	}
	if f.baseURL != "" {
		cfg.Archive.BaseURL = f.baseURL
	}
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	var (
		rf           runFlags
		converter    string
		hookScript   string
		decompress   bool
		skipExisting bool
		timeout      time.Duration
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download daily observation files",
		Long: `Download one observation file per station and day of the date range.

Missing files and transfer failures are logged and counted; they never stop the
run. The command exits non-zero only for configuration errors or an interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rf.apply(cfg)
			if converter != "" {
				cfg.Converter.Path = converter
			}
			if hookScript != "" {
				cfg.HookScript = hookScript
			}
			if cmd.Flags().Changed("decompress") {
				cfg.Decompress = decompress
			}
			if cmd.Flags().Changed("skip-existing") {
				cfg.SkipExisting = skipExisting
			}
			if cmd.Flags().Changed("timeout") {
				cfg.HTTPTimeout = timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if dryRun {
				return runPlan(cmd, cfg)
			}
			return runFetch(cmd, cfg)
		},
	}

	rf.register(cmd)
	cmd.Flags().StringVar(&converter, "converter", "", "External converter run on each file (e.g. crx2rnx)")
	cmd.Flags().StringVar(&hookScript, "hook", "", "Tengo script run after each downloaded file")
	cmd.Flags().BoolVar(&decompress, "decompress", false, "Gunzip downloaded files")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip files already present locally")
	cmd.Flags().DurationVar(&timeout, "timeout", config.DefaultHTTPTimeout, "Per-request timeout")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without downloading")

	cmd.Example = `  # Two stations for the first week of April 2025
  corsget fetch --start 2025-04-01 --end 2025-04-07 -s corv -s p041

  # Stations from a CSV file, converted to plain RINEX
  corsget fetch --start 2025-04-01 --end 2025-04-01 --stations-file sites.csv \
    --ext d.gz --decompress --converter crx2rnx`

	return cmd
}

func runFetch(cmd *cobra.Command, cfg *config.Config) error {
	rng, err := cfg.DateRange()
	if err != nil {
		return err
	}
	stations, err := cfg.LoadStations()
	if err != nil {
		return err
	}
	orch, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}

	logger.Info("Starting download", logger.Fields{
		"stations": len(stations),
		"days":     rng.Len(),
		"root":     cfg.OutputRoot,
	})

	sum, runErr := orch.Run(cmd.Context(), stations, rng, orchestrator.Options{SkipExisting: cfg.SkipExisting})
	if runErr != nil && errors.Is(runErr, pkgerrors.ErrConfiguration) {
		return runErr
	}

	if err := printSummary(cmd.OutOrStdout(), sum, outputFormat(cfg)); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("interrupted after %d of %d files: %w", sum.Processed(), sum.Planned, runErr)
	}

	logger.Success("Download finished", logger.Fields{
		"succeeded": sum.Succeeded,
		"not_found": sum.NotFound,
		"errors":    sum.Errors(),
	})
	return nil
}
