package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/corsget/internal/logger"
	"github.com/glorpus-work/corsget/pkg/errors"
	"github.com/glorpus-work/corsget/pkg/fsutil"
	"github.com/glorpus-work/corsget/pkg/hook"
)

// NewHookCmd creates the hook command with subcommands.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage post-fetch scripts",
	}
	cmd.AddCommand(newHookInitCmd())
	return cmd
}

func newHookInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init FILE",
		Short: "Write a starter post-fetch script",
		Long:  "Write a commented Tengo post-fetch script to FILE; pass it to fetch with --hook",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite): %w", path, errors.ErrInvalidPath)
			}
			if err := os.WriteFile(path, []byte(hook.HookTemplate(hook.PostFetch)), fsutil.FileModeDefault); err != nil {
				return fmt.Errorf("failed to write hook script: %w", err)
			}
			logger.Success("Hook script created", logger.Fields{"path": path})
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
