package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"upright/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external binaries and configuration health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			out := cmd.OutOrStdout()
			for _, status := range statuses {
				mark := "ok"
				detail := status.Command
				if !status.Available {
					mark = "MISSING"
					detail = status.Detail
				}
				fmt.Fprintf(out, "  %-10s %-8s %s\n", status.Name, mark, detail)
			}

			profiles, err := ctx.loadProfiles()
			if err != nil {
				return fmt.Errorf("channel profiles: %w", err)
			}
			fmt.Fprintf(out, "  %-10s %-8s %d configured\n", "Channels", "ok", len(profiles))

			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required binaries missing", len(missing))
			}
			return nil
		},
	}
}
