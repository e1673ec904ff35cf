package audiolevel

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"upright/internal/logging"
	"upright/internal/services"
)

// Verdict is the outcome of audio presence classification.
type Verdict string

const (
	// Silent means the clip carries no meaningful audio of its own.
	Silent Verdict = "silent"
	// HasAudio means the clip should keep its original audio track.
	HasAudio Verdict = "has-audio"
)

// Classification method labels.
const (
	MethodNoAudioStream = "no-audio-stream"
	MethodWindowedRMS   = "windowed-rms"
)

// windowSeconds is the length of each sampled window.
const windowSeconds = 1.0

// Settings controls the silence decision. All thresholds come from
// configuration; the detector holds no hidden constants in the decision path.
type Settings struct {
	// SilenceThresholdDB is the RMS level (dBFS) below which a window is silent.
	SilenceThresholdDB float64
	// MinMeaningfulSeconds is the minimum non-silent duration for HasAudio.
	MinMeaningfulSeconds float64
	// SampleWindows is how many one-second windows to measure.
	SampleWindows int
	// FFmpegBinary is the decoder executable. Defaults to "ffmpeg".
	FFmpegBinary string
}

// Classification describes the measured audio presence of a clip.
type Classification struct {
	Verdict          Verdict
	Method           string
	MeanLevelDB      float64
	WindowLevelsDB   []float64
	NonSilentSeconds float64
}

// DecodeFunc decodes a window of mono PCM samples (normalized to [-1, 1])
// starting at offset seconds. Injectable so tests never shell out.
type DecodeFunc func(ctx context.Context, path string, offset, duration float64) ([]float64, error)

// Detector classifies clips as silent or audio-bearing by sampling RMS
// levels across the clip.
type Detector struct {
	settings Settings
	decode   DecodeFunc
	logger   *slog.Logger
}

// NewDetector builds a detector that decodes through ffmpeg.
func NewDetector(settings Settings, logger *slog.Logger) *Detector {
	detector := &Detector{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "audiolevel"),
	}
	detector.decode = detector.ffmpegDecode
	return detector
}

// NewDetectorWithDecode builds a detector with a custom decode function.
func NewDetectorWithDecode(settings Settings, decode DecodeFunc, logger *slog.Logger) *Detector {
	return &Detector{
		settings: settings,
		decode:   decode,
		logger:   logging.NewComponentLogger(logger, "audiolevel"),
	}
}

// Classify measures audio presence for the clip at path. Callers pass the
// probed duration and whether the container has an audio stream at all.
// A decode failure is returned as a wrapped decode error; callers should
// treat the clip as audio-bearing in that case rather than risk stacking
// music over real audio.
func (d *Detector) Classify(ctx context.Context, path string, duration float64, hasAudioStream bool) (Classification, error) {
	if !hasAudioStream {
		return Classification{
			Verdict:     Silent,
			Method:      MethodNoAudioStream,
			MeanLevelDB: math.Inf(-1),
		}, nil
	}

	offsets := windowOffsets(duration, d.settings.SampleWindows)
	levels := make([]float64, 0, len(offsets))
	nonSilent := 0.0
	for _, offset := range offsets {
		if err := ctx.Err(); err != nil {
			return Classification{}, services.Wrap(services.ErrAborted, "audiolevel", "classify", "classification interrupted", err)
		}
		samples, err := d.decode(ctx, path, offset, windowSeconds)
		if err != nil {
			return Classification{}, services.Wrap(services.ErrDecode, "audiolevel", "classify",
				fmt.Sprintf("decode window at %.2fs", offset), err)
		}
		level := rmsDB(samples)
		levels = append(levels, level)
		if level > d.settings.SilenceThresholdDB {
			nonSilent += windowSeconds
		}
	}

	classification := Classification{
		Verdict:          HasAudio,
		Method:           MethodWindowedRMS,
		MeanLevelDB:      meanDB(levels),
		WindowLevelsDB:   levels,
		NonSilentSeconds: nonSilent,
	}
	if nonSilent < d.settings.MinMeaningfulSeconds {
		classification.Verdict = Silent
	}

	d.logger.Debug("classified clip audio",
		logging.String("path", path),
		logging.String("verdict", string(classification.Verdict)),
		logging.Float64("mean_db", classification.MeanLevelDB),
		logging.Float64("non_silent_seconds", nonSilent))
	return classification, nil
}

// windowOffsets spreads window start positions evenly across the clip.
func windowOffsets(duration float64, count int) []float64 {
	if count < 1 {
		count = 1
	}
	usable := duration - windowSeconds
	if usable <= 0 {
		return []float64{0}
	}
	if count == 1 {
		return []float64{usable / 2}
	}
	offsets := make([]float64, count)
	step := usable / float64(count-1)
	for i := range offsets {
		offsets[i] = float64(i) * step
	}
	return offsets
}

// rmsDB converts a window of normalized samples to an RMS level in dBFS.
func rmsDB(samples []float64) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms)
}

func meanDB(levels []float64) float64 {
	if len(levels) == 0 {
		return math.Inf(-1)
	}
	finite := 0
	var sum float64
	for _, level := range levels {
		if math.IsInf(level, -1) {
			continue
		}
		sum += level
		finite++
	}
	if finite == 0 {
		return math.Inf(-1)
	}
	return sum / float64(finite)
}
