package compose

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"upright/internal/audiolevel"
	"upright/internal/channel"
	"upright/internal/logging"
	"upright/internal/music"
	"upright/internal/overlay"
	"upright/internal/services"
	"upright/internal/textutil"
	"upright/internal/transform"
)

// HistoryStore is the ledger surface the compositor gates on.
type HistoryStore interface {
	IsDuplicate(ctx context.Context, channelLabel, contentID string) (bool, error)
	CountToday(ctx context.Context, channelLabel string) (int, error)
	LockChannel(channelLabel string) (unlock func())
}

// AudioClassifier decides whether a clip carries meaningful audio.
type AudioClassifier interface {
	Classify(ctx context.Context, path string, duration float64, hasAudioStream bool) (audiolevel.Classification, error)
}

// MusicSelector picks a background track sized to the clip.
type MusicSelector interface {
	Select(ctx context.Context, musicDir string, required time.Duration, volume float64) (*music.Selection, error)
}

// Renderer executes an assembled render job.
type Renderer interface {
	Render(ctx context.Context, job RenderJob) error
}

// Compositor runs the full per-clip pipeline: ledger gates, audio
// classification, transform and overlay planning, music selection, and the
// final render. It never writes to the ledger; callers commit a history
// record once their own downstream steps succeed.
type Compositor struct {
	ledger   HistoryStore
	detector AudioClassifier
	selector MusicSelector
	planner  *overlay.Planner
	renderer Renderer
	logger   *slog.Logger

	// rngMu serializes rng access; batch mode drives one compositor from
	// several channel goroutines and rand.Rand is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// New assembles a compositor from its collaborators.
func New(
	history HistoryStore,
	detector AudioClassifier,
	selector MusicSelector,
	planner *overlay.Planner,
	renderer Renderer,
	rng *rand.Rand,
	logger *slog.Logger,
) *Compositor {
	return &Compositor{
		ledger:   history,
		detector: detector,
		selector: selector,
		planner:  planner,
		renderer: renderer,
		rng:      rng,
		logger:   logging.NewComponentLogger(logger, "compose"),
	}
}

// Process runs the pipeline for one clip against one channel profile.
// Skips are results, not errors; Aborted and Failed results carry the
// underlying error alongside.
func (c *Compositor) Process(ctx context.Context, clip SourceClip, profile channel.Profile, contentID, outputPath string) (Result, error) {
	ctx = services.WithChannel(ctx, profile.Label)
	ctx = services.WithContentID(ctx, contentID)
	logger := logging.WithContext(ctx, c.logger)

	unlock := c.ledger.LockChannel(profile.Label)
	gated, result, err := c.checkGates(ctx, profile, contentID)
	unlock()
	if err != nil {
		return Result{Outcome: OutcomeFailed, ContentID: contentID}, err
	}
	if gated {
		logger.Info("skipping clip", logging.String("reason", string(result.SkipReason)))
		return result, nil
	}

	classification, keepAudio, err := c.classify(ctx, clip, profile, logger)
	if err != nil {
		if errors.Is(err, services.ErrAborted) {
			return Result{Outcome: OutcomeAborted, ContentID: contentID}, err
		}
		return Result{Outcome: OutcomeFailed, ContentID: contentID}, err
	}

	plan, err := transform.Compute(clip.Width, clip.Height, profile.ZoomHint)
	if err != nil {
		return Result{Outcome: OutcomeFailed, ContentID: contentID}, err
	}

	selection := c.selectMusic(ctx, clip, profile, keepAudio, logger)
	if selection == nil && !keepAudio && clip.HasAudioStream {
		// No music available for a silent clip: fall back to the clip's own
		// track rather than producing dead air.
		keepAudio = true
	}

	overlayPlan, title := c.planOverlay(profile)

	job := RenderJob{
		SourcePath:      clip.Path,
		OutputPath:      outputPath,
		Transform:       plan,
		Music:           selection,
		Overlay:         overlayPlan,
		KeepSourceAudio: keepAudio && selection == nil,
		DurationSeconds: clip.Duration,
	}

	logger.Info("rendering clip",
		logging.String("output", outputPath),
		logging.Bool("music", selection != nil),
		logging.Bool("keep_source_audio", job.KeepSourceAudio),
		logging.Float64("zoom", plan.Zoom))

	if err := c.renderer.Render(ctx, job); err != nil {
		if errors.Is(err, services.ErrAborted) || errors.Is(err, context.Canceled) {
			logger.Warn("render aborted", logging.Error(err))
			return Result{Outcome: OutcomeAborted, ContentID: contentID}, err
		}
		logger.Error("render failed", logging.Error(err))
		return Result{Outcome: OutcomeFailed, ContentID: contentID}, err
	}

	return Result{
		Outcome:        OutcomeCompleted,
		ContentID:      contentID,
		OutputPath:     outputPath,
		Title:          title,
		Classification: classification,
		MusicUsed:      selection != nil,
	}, nil
}

func (c *Compositor) checkGates(ctx context.Context, profile channel.Profile, contentID string) (bool, Result, error) {
	duplicate, err := c.ledger.IsDuplicate(ctx, profile.Label, contentID)
	if err != nil {
		return false, Result{}, err
	}
	if duplicate {
		return true, Result{Outcome: OutcomeSkipped, SkipReason: ReasonDuplicate, ContentID: contentID}, nil
	}

	// The limit comparison is unconditional: a limit of zero means the
	// channel is paused and every clip skips.
	count, err := c.ledger.CountToday(ctx, profile.Label)
	if err != nil {
		return false, Result{}, err
	}
	if count >= profile.DailyLimit {
		return true, Result{Outcome: OutcomeSkipped, SkipReason: ReasonLimitReached, ContentID: contentID}, nil
	}
	return false, Result{}, nil
}

// classify returns the audio classification and whether the clip keeps its
// own audio. Music mode "disabled" pins source audio; "always" pins music.
// A decode failure is treated as audio present so music never covers real
// sound.
func (c *Compositor) classify(ctx context.Context, clip SourceClip, profile channel.Profile, logger *slog.Logger) (audiolevel.Classification, bool, error) {
	if profile.MusicMode == channel.MusicAlways {
		return audiolevel.Classification{}, false, nil
	}

	classification, err := c.detector.Classify(ctx, clip.Path, clip.Duration, clip.HasAudioStream)
	if err != nil {
		if errors.Is(err, services.ErrAborted) {
			return audiolevel.Classification{}, false, err
		}
		if errors.Is(err, services.ErrDecode) {
			logger.Warn("audio classification failed, keeping source audio", logging.Error(err))
			return audiolevel.Classification{Verdict: audiolevel.HasAudio}, true, nil
		}
		return audiolevel.Classification{}, false, err
	}
	return classification, classification.Verdict == audiolevel.HasAudio, nil
}

func (c *Compositor) selectMusic(ctx context.Context, clip SourceClip, profile channel.Profile, keepAudio bool, logger *slog.Logger) *music.Selection {
	if profile.MusicMode == channel.MusicDisabled {
		return nil
	}
	if profile.MusicMode == channel.MusicSmart && keepAudio {
		return nil
	}

	required := time.Duration(clip.Duration * float64(time.Second))
	selection, err := c.selector.Select(ctx, profile.MusicDir, required, profile.MusicVolume)
	if err != nil {
		if services.Recoverable(err) {
			logger.Warn("no music available, rendering without it", logging.Error(err))
			return nil
		}
		logger.Warn("music selection failed, rendering without it", logging.Error(err))
		return nil
	}
	return selection
}

func (c *Compositor) planOverlay(profile channel.Profile) (overlay.Plan, string) {
	c.rngMu.Lock()
	template := overlay.ChooseTemplate(profile.TitleTemplates, c.rng)
	title := buildTitle(template, profile, c.rng)
	c.rngMu.Unlock()

	if template == "" || c.planner == nil {
		return overlay.Plan{}, title
	}
	plan := c.planner.Plan(template, profile.Hashtags, profile.Font, transform.TargetWidth, transform.TargetHeight)
	return plan, title
}

// buildTitle produces the output title recorded in the ledger. It reuses the
// overlay template when one exists and falls back to hashtags alone.
func buildTitle(template string, profile channel.Profile, rng *rand.Rand) string {
	const maxTitleRunes = 100

	if template == "" {
		title := textutil.FormatTitle("", profile.Hashtags, 3, rng)
		return textutil.TruncateTitle(textutil.Censor(title), maxTitleRunes)
	}

	resolved := textutil.CleanTitle(stripPlaceholder(template), profile.SourceTag)
	title := textutil.FormatTitle(resolved, profile.Hashtags, 3, rng)
	return textutil.TruncateTitle(textutil.Censor(title), maxTitleRunes)
}

func stripPlaceholder(template string) string {
	const placeholder = "{hashtags}"
	out := make([]byte, 0, len(template))
	for i := 0; i < len(template); {
		if i+len(placeholder) <= len(template) && template[i:i+len(placeholder)] == placeholder {
			i += len(placeholder)
			continue
		}
		out = append(out, template[i])
		i++
	}
	return string(out)
}
