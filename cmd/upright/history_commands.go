package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and prune the render history ledger",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var channelFlag string
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history records",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext()
			defer stop()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(runCtx, channelFlag, limitFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No history records")
				return nil
			}

			headers := []string{"ID", "Channel", "Content ID", "Title", "Created", "Output"}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					strconv.FormatInt(record.ID, 10),
					record.Channel,
					record.ContentID,
					record.Title,
					record.CreatedAt.Format(time.DateTime),
					record.OutputPath,
				})
			}
			fmt.Fprintln(out, renderTable(out, headers, rows, []columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().StringVar(&channelFlag, "channel", "", "Show only the named channel")
	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of records to show")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var channelFlag string
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete history records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if channelFlag == "" && !allFlag {
				return fmt.Errorf("pass --channel to clear one channel or --all to clear everything")
			}

			runCtx, stop := signalContext()
			defer stop()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(runCtx, channelFlag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history records\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&channelFlag, "channel", "", "Clear only the named channel")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Clear records for every channel")
	return cmd
}
