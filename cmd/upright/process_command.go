package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"upright/internal/batch"
	"upright/internal/channel"
	"upright/internal/compose"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var channelFlag string
	var originFlag string
	var contentIDFlag string

	cmd := &cobra.Command{
		Use:   "process <source>",
		Short: "Render one clip for one channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext()
			defer stop()

			profiles, err := ctx.loadProfiles()
			if err != nil {
				return err
			}
			profile, err := channel.FindProfile(profiles, channelFlag)
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			processor, err := ctx.newClipProcessor(store)
			if err != nil {
				return err
			}

			result, err := processor.Process(runCtx, batch.Item{
				Profile:    profile,
				SourcePath: args[0],
				Origin:     originFlag,
				ContentID:  contentIDFlag,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch result.Outcome {
			case compose.OutcomeCompleted:
				fmt.Fprintf(out, "Rendered %s\n", result.OutputPath)
				if result.Title != "" {
					fmt.Fprintf(out, "  title: %s\n", result.Title)
				}
				fmt.Fprintf(out, "  content id: %s\n", result.ContentID)
			case compose.OutcomeSkipped:
				fmt.Fprintf(out, "Skipped: %s\n", result.SkipReason)
			default:
				fmt.Fprintf(out, "Outcome: %s\n", result.Outcome)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channelFlag, "channel", "", "Channel label from the profiles file")
	cmd.Flags().StringVar(&originFlag, "origin", "", "Upstream reference used to derive the content identifier")
	cmd.Flags().StringVar(&contentIDFlag, "id", "", "Explicit content identifier (overrides derivation)")
	_ = cmd.MarkFlagRequired("channel")
	return cmd
}
