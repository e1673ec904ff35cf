package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"upright/internal/channel"
	"upright/internal/compose"
	"upright/internal/contentid"
	"upright/internal/ledger"
	"upright/internal/logging"
	"upright/internal/media/ffprobe"
	"upright/internal/services"
	"upright/internal/textutil"
)

// Item is one clip queued for one channel.
type Item struct {
	Profile    channel.Profile
	SourcePath string
	// Origin is an optional upstream reference (post URL, external ID) used
	// to derive the content identifier.
	Origin string
	// ContentID overrides derivation when the caller already has an identity.
	ContentID string
}

// Inspector probes a source clip. Implemented by ffprobe in production.
type Inspector func(ctx context.Context, path string) (ffprobe.Result, error)

// Compositor is the per-clip pipeline surface the processor drives.
type Compositor interface {
	Process(ctx context.Context, clip compose.SourceClip, profile channel.Profile, contentID, outputPath string) (compose.Result, error)
}

// HistoryAppender commits completed renders to the ledger.
type HistoryAppender interface {
	Append(ctx context.Context, record ledger.Record) error
}

// ClipProcessor runs the full flow for one item: probe, identify, compose,
// and commit to history on completion.
type ClipProcessor struct {
	inspect    Inspector
	compositor Compositor
	history    HistoryAppender
	outputDir  string
	logger     *slog.Logger
}

// NewClipProcessor wires a processor that probes clips via ffprobe.
func NewClipProcessor(ffprobeBinary, outputDir string, compositor Compositor, history HistoryAppender, logger *slog.Logger) *ClipProcessor {
	return &ClipProcessor{
		inspect: func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, ffprobeBinary, path)
		},
		compositor: compositor,
		history:    history,
		outputDir:  outputDir,
		logger:     logging.NewComponentLogger(logger, "batch"),
	}
}

// NewClipProcessorWithInspector injects a custom probe for tests.
func NewClipProcessorWithInspector(inspect Inspector, outputDir string, compositor Compositor, history HistoryAppender, logger *slog.Logger) *ClipProcessor {
	return &ClipProcessor{
		inspect:    inspect,
		compositor: compositor,
		history:    history,
		outputDir:  outputDir,
		logger:     logging.NewComponentLogger(logger, "batch"),
	}
}

// Process runs one item end to end. Completed renders are committed to the
// history ledger before returning.
func (p *ClipProcessor) Process(ctx context.Context, item Item) (compose.Result, error) {
	probe, err := p.inspect(ctx, item.SourcePath)
	if err != nil {
		return compose.Result{Outcome: compose.OutcomeFailed},
			services.Wrap(services.ErrDecode, "batch", "inspect",
				fmt.Sprintf("probe %s", item.SourcePath), err)
	}
	video, ok := probe.VideoStream()
	if !ok {
		return compose.Result{Outcome: compose.OutcomeFailed},
			services.Wrap(services.ErrValidation, "batch", "inspect",
				fmt.Sprintf("%s has no video stream", item.SourcePath), nil)
	}
	duration := probe.DurationSeconds()
	if duration <= 0 {
		return compose.Result{Outcome: compose.OutcomeFailed},
			services.Wrap(services.ErrValidation, "batch", "inspect",
				fmt.Sprintf("%s reports no duration", item.SourcePath), nil)
	}

	clip := compose.SourceClip{
		Path:           item.SourcePath,
		Duration:       duration,
		Width:          video.Width,
		Height:         video.Height,
		HasAudioStream: probe.HasAudioStream(),
	}

	id, err := contentid.Resolve(item.ContentID, item.Origin, item.SourcePath)
	if err != nil {
		return compose.Result{Outcome: compose.OutcomeFailed},
			services.Wrap(services.ErrValidation, "batch", "identify", "derive content id", err)
	}

	outputPath := p.outputPath(item.Profile.Label)
	result, err := p.compositor.Process(ctx, clip, item.Profile, id, outputPath)
	if err != nil {
		return result, err
	}

	if result.Outcome == compose.OutcomeCompleted {
		record := ledger.Record{
			Channel:    item.Profile.Label,
			ContentID:  result.ContentID,
			Title:      result.Title,
			OutputPath: result.OutputPath,
		}
		if err := p.history.Append(ctx, record); err != nil {
			return result, err
		}
		p.logger.Info("clip completed",
			logging.String(logging.FieldChannel, item.Profile.Label),
			logging.String(logging.FieldContentID, result.ContentID),
			logging.String("output", result.OutputPath))
	}
	return result, nil
}

func (p *ClipProcessor) outputPath(label string) string {
	name := textutil.SanitizeFileName(label)
	if name == "" {
		name = "channel"
	}
	name = strings.ReplaceAll(name, " ", "-")
	return filepath.Join(p.outputDir, fmt.Sprintf("%s-%s.mp4", name, uuid.NewString()))
}
