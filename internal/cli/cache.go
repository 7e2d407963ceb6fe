package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/corsget/internal/logger"
	"github.com/glorpus-work/corsget/pkg/cache"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local observation tree",
		Long:  "Report on and tidy the directory tree that fetch writes to",
	}

	cmd.AddCommand(
		newCacheInfoCmd(),
		newCacheCleanCmd(),
	)

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show tree statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if out != "" {
				cfg.OutputRoot = out
			}

			info, err := cache.NewManager(cfg.OutputRoot).GetInfo()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch outputFormat(cfg) {
			case OutputJSON:
				return writeJSON(w, info)
			case OutputYAML:
				return writeYAML(w, info)
			}

			tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
			_, _ = fmt.Fprintf(tw, "directory\t%s\n", info.Directory)
			_, _ = fmt.Fprintf(tw, "days\t%d\n", info.Days)
			_, _ = fmt.Fprintf(tw, "files\t%d (%s)\n", info.Files, cache.FormatBytes(info.TotalSize))
			_, _ = fmt.Fprintf(tw, "temp files\t%d (%s)\n", info.TempFiles, cache.FormatBytes(info.TempSize))
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Local root directory to inspect")
	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove temp files left by an aborted run",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if out != "" {
				cfg.OutputRoot = out
			}

			result, err := cache.NewManager(cfg.OutputRoot).Clean()
			if err != nil {
				return err
			}
			if result.Removed == 0 {
				logger.Infof("No leftover files under %s", cfg.OutputRoot)
				return nil
			}
			logger.Success("Removed leftover files", logger.Fields{
				"count": result.Removed,
				"freed": cache.FormatBytes(result.TotalFreed),
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Local root directory to clean")
	return cmd
}
