package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofrs/flock"

	"upright/internal/compose"
	"upright/internal/logging"
	"upright/internal/services"
)

// ErrAlreadyRunning indicates another batch process holds the instance lock.
var ErrAlreadyRunning = errors.New("another batch run is in progress")

// Processor runs one item end to end.
type Processor interface {
	Process(ctx context.Context, item Item) (compose.Result, error)
}

// ItemResult is the per-item outcome collected by a run.
type ItemResult struct {
	Channel    string
	SourcePath string
	Outcome    compose.Outcome
	SkipReason compose.SkipReason
	OutputPath string
	Err        error
}

// Summary aggregates a batch run.
type Summary struct {
	Completed int
	Skipped   int
	Failed    int
	Aborted   int
	Results   []ItemResult
}

// Runner executes items grouped by channel: channels run concurrently, items
// within a channel sequentially. One failing item never stops other channels.
type Runner struct {
	processor Processor
	lockPath  string
	logger    *slog.Logger
}

// NewRunner builds a runner. lockPath may be empty to skip instance locking.
func NewRunner(processor Processor, lockPath string, logger *slog.Logger) *Runner {
	return &Runner{
		processor: processor,
		lockPath:  lockPath,
		logger:    logging.NewComponentLogger(logger, "batch"),
	}
}

// Run processes all items and reports a summary. The returned error is only
// set for run-level problems (lock contention); per-item failures live in the
// summary.
func (r *Runner) Run(ctx context.Context, items []Item) (Summary, error) {
	if len(items) == 0 {
		return Summary{}, nil
	}

	if r.lockPath != "" {
		lock := flock.New(r.lockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return Summary{}, services.Wrap(services.ErrConfiguration, "batch", "lock",
				fmt.Sprintf("acquire %s", r.lockPath), err)
		}
		if !locked {
			return Summary{}, services.Wrap(services.ErrConfiguration, "batch", "lock", r.lockPath, ErrAlreadyRunning)
		}
		defer func() { _ = lock.Unlock() }()
	}

	groups := groupByChannel(items)

	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
	)
	for label, group := range groups {
		wg.Add(1)
		go func(label string, group []Item) {
			defer wg.Done()
			for _, item := range group {
				if ctx.Err() != nil {
					mu.Lock()
					summary.Aborted++
					summary.Results = append(summary.Results, ItemResult{
						Channel:    label,
						SourcePath: item.SourcePath,
						Outcome:    compose.OutcomeAborted,
						Err:        ctx.Err(),
					})
					mu.Unlock()
					continue
				}

				result, err := r.processor.Process(ctx, item)
				itemResult := ItemResult{
					Channel:    label,
					SourcePath: item.SourcePath,
					Outcome:    result.Outcome,
					SkipReason: result.SkipReason,
					OutputPath: result.OutputPath,
					Err:        err,
				}

				mu.Lock()
				switch result.Outcome {
				case compose.OutcomeCompleted:
					summary.Completed++
				case compose.OutcomeSkipped:
					summary.Skipped++
				case compose.OutcomeAborted:
					summary.Aborted++
				default:
					summary.Failed++
				}
				summary.Results = append(summary.Results, itemResult)
				mu.Unlock()

				if err != nil && !errors.Is(err, services.ErrAborted) {
					r.logger.Error("item failed",
						logging.String(logging.FieldChannel, label),
						logging.String("source", item.SourcePath),
						logging.Error(err))
				}
			}
		}(label, group)
	}
	wg.Wait()

	r.logger.Info("batch finished",
		logging.Int("completed", summary.Completed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Int("aborted", summary.Aborted))
	return summary, nil
}

func groupByChannel(items []Item) map[string][]Item {
	groups := make(map[string][]Item)
	for _, item := range items {
		groups[item.Profile.Label] = append(groups[item.Profile.Label], item)
	}
	return groups
}
