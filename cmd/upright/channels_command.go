package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List configured channel profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := ctx.loadProfiles()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No channels configured")
				return nil
			}

			headers := []string{"Channel", "Music", "Music Dir", "Daily Limit", "Templates"}
			rows := make([][]string, 0, len(profiles))
			for _, profile := range profiles {
				limit := "unlimited"
				if profile.DailyLimit > 0 {
					limit = strconv.Itoa(profile.DailyLimit)
				}
				rows = append(rows, []string{
					profile.Label,
					string(profile.MusicMode),
					profile.MusicDir,
					limit,
					strconv.Itoa(len(profile.TitleTemplates)),
				})
			}
			fmt.Fprintln(out, renderTable(out, headers, rows, nil))
			return nil
		},
	}
}
