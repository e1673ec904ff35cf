package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"upright/internal/batch"
	"upright/internal/channel"
)

var sourceExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".avi":  {},
	".m4v":  {},
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var channelFlags []string

	cmd := &cobra.Command{
		Use:   "batch <source>...",
		Short: "Render clips for every configured channel",
		Long: "Render each source clip for every configured channel. Directory arguments\n" +
			"are walked recursively for video files. Channels run concurrently; a file\n" +
			"lock prevents two batch runs from sharing an output tree.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext()
			defer stop()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			profiles, err := ctx.loadProfiles()
			if err != nil {
				return err
			}
			profiles, err = filterProfiles(profiles, channelFlags)
			if err != nil {
				return err
			}

			sources, err := collectSources(args)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return fmt.Errorf("no video files found under %s", strings.Join(args, ", "))
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

			items := make([]batch.Item, 0, len(sources)*len(profiles))
			for _, profile := range profiles {
				for _, source := range sources {
					items = append(items, batch.Item{Profile: profile, SourcePath: source})
				}
			}

			runner := batch.NewRunner(processor, cfg.LockPath(), logger)
			summary, err := runner.Run(runCtx, items)
			if err != nil {
				if errors.Is(err, batch.ErrAlreadyRunning) {
					return fmt.Errorf("another batch run is already in progress (lock: %s)", cfg.LockPath())
				}
				return err
			}

			out := cmd.OutOrStdout()
			for _, result := range summary.Results {
				if result.Err == nil {
					continue
				}
				fmt.Fprintf(out, "  %s %s: %v\n", result.Channel, result.SourcePath, result.Err)
			}
			fmt.Fprintf(out, "Completed %d, skipped %d, failed %d, aborted %d\n",
				summary.Completed, summary.Skipped, summary.Failed, summary.Aborted)

			if summary.Failed > 0 {
				return fmt.Errorf("%d clips failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&channelFlags, "channel", nil, "Restrict the run to the named channels (repeatable)")
	return cmd
}

func filterProfiles(profiles []channel.Profile, labels []string) ([]channel.Profile, error) {
	if len(labels) == 0 {
		return profiles, nil
	}
	selected := make([]channel.Profile, 0, len(labels))
	for _, label := range labels {
		profile, err := channel.FindProfile(profiles, label)
		if err != nil {
			return nil, err
		}
		selected = append(selected, profile)
	}
	return selected, nil
}

// collectSources expands file and directory arguments into a sorted, deduplicated
// list of video file paths.
func collectSources(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var sources []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		sources = append(sources, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat source %q: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			if _, ok := sourceExtensions[strings.ToLower(filepath.Ext(path))]; ok {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk source directory %q: %w", arg, err)
		}
	}

	sort.Strings(sources)
	return sources, nil
}
