package cli

import (
	"github.com/spf13/cobra"

	"github.com/glorpus-work/corsget/pkg/config"
	"github.com/glorpus-work/corsget/pkg/orchestrator"
)

// NewPlanCmd creates the plan command.
func NewPlanCmd() *cobra.Command {
	var rf runFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List the files a fetch would download",
		Long:  "Print every archive URL and local path of the run without touching the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rf.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runPlan(cmd, cfg)
		},
	}

	rf.register(cmd)
	return cmd
}

func runPlan(cmd *cobra.Command, cfg *config.Config) error {
	rng, err := cfg.DateRange()
	if err != nil {
		return err
	}
	stations, err := cfg.LoadStations()
	if err != nil {
		return err
	}

	orch := &orchestrator.Orchestrator{Builder: cfg.Builder()}
	return printPlan(cmd.OutOrStdout(), orch.Plan(stations, rng), outputFormat(cfg))
}
