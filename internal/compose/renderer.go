package compose

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"upright/internal/channel"
	"upright/internal/fileutil"
	"upright/internal/logging"
	"upright/internal/services"
)

// RenderSettings carries the encode parameters applied to every output.
type RenderSettings struct {
	FFmpegBinary string
	FrameRate    int
	VideoCodec   string
	AudioCodec   string
	CRF          int
	Preset       string
}

// FFmpegRenderer executes render jobs through an ffmpeg filter graph.
type FFmpegRenderer struct {
	settings RenderSettings
	logger   *slog.Logger
}

// NewFFmpegRenderer builds the production renderer.
func NewFFmpegRenderer(settings RenderSettings, logger *slog.Logger) *FFmpegRenderer {
	return &FFmpegRenderer{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "render"),
	}
}

// Render executes the job. Cancellation mid-render kills ffmpeg and removes
// the partial output; any render failure also removes partial output before
// returning.
func (r *FFmpegRenderer) Render(ctx context.Context, job RenderJob) error {
	stream := r.buildStream(job)

	cmd := stream.OverWriteOutput().Compile()
	if binaryName := strings.TrimSpace(r.settings.FFmpegBinary); binaryName != "" && binaryName != "ffmpeg" {
		// Resolve through PATH so a bare name like "ffmpeg6" works regardless
		// of the working directory.
		resolved, lookErr := exec.LookPath(binaryName)
		if lookErr != nil {
			return services.Wrap(services.ErrConfiguration, "compose", "render",
				fmt.Sprintf("locate ffmpeg binary %q", binaryName), lookErr)
		}
		cmd.Args[0] = binaryName
		cmd.Path = resolved
		// Clear the lookup error exec.Command cached for the default
		// "ffmpeg" name; Start would otherwise return it despite the
		// overridden Path.
		cmd.Err = nil
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	r.logger.Debug("starting ffmpeg", logging.String("args", strings.Join(cmd.Args, " ")))

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrRender, "compose", "render", "start ffmpeg", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		_ = fileutil.RemoveIfExists(job.OutputPath)
		return services.Wrap(services.ErrAborted, "compose", "render", "render interrupted", ctx.Err())
	case err := <-done:
		if err != nil {
			_ = fileutil.RemoveIfExists(job.OutputPath)
			detail := strings.TrimSpace(stderr.String())
			if detail != "" {
				return services.Wrap(services.ErrRender, "compose", "render",
					fmt.Sprintf("ffmpeg exited: %s", lastLines(detail, 5)), err)
			}
			return services.Wrap(services.ErrRender, "compose", "render", "ffmpeg exited", err)
		}
	}
	return nil
}

// CompileArgs returns the ffmpeg argument list for a job without executing
// it. Used to verify filter graph construction.
func (r *FFmpegRenderer) CompileArgs(job RenderJob) []string {
	return r.buildStream(job).OverWriteOutput().Compile().Args
}

// buildStream assembles the filter graph: crop + scale + setsar on video,
// drawtext per overlay line, and either passthrough source audio, a looped
// and trimmed music bed, or no audio at all.
func (r *FFmpegRenderer) buildStream(job RenderJob) *ffmpeg.Stream {
	source := ffmpeg.Input(job.SourcePath)

	plan := job.Transform
	video := source.Video().
		Filter("crop", ffmpeg.Args{
			strconv.Itoa(plan.CropWidth),
			strconv.Itoa(plan.CropHeight),
			strconv.Itoa(plan.CropX),
			strconv.Itoa(plan.CropY),
		}).
		Filter("scale", ffmpeg.Args{
			strconv.Itoa(plan.TargetWidth),
			strconv.Itoa(plan.TargetHeight),
		}).
		Filter("setsar", ffmpeg.Args{"1"})

	if !job.Overlay.Empty() {
		lineHeight := job.Overlay.Box.Height / len(job.Overlay.Lines)
		x := "(w-text_w)/2"
		if job.Overlay.Font.Anchor == channel.AnchorTopLeft {
			x = strconv.Itoa(job.Overlay.Box.X)
		}
		for i, line := range job.Overlay.Lines {
			kwargs := ffmpeg.KwArgs{
				"text":      escapeDrawtext(line),
				"fontsize":  job.Overlay.Font.Size,
				"fontcolor": job.Overlay.Font.Color,
				"x":         x,
				"y":         strconv.Itoa(job.Overlay.Box.Y + i*lineHeight),
				"borderw":   2,
			}
			if job.Overlay.Font.Family != "" {
				kwargs["font"] = job.Overlay.Font.Family
			}
			video = video.Filter("drawtext", ffmpeg.Args{}, kwargs)
		}
	}

	outputKwargs := ffmpeg.KwArgs{
		"c:v":     r.settings.VideoCodec,
		"crf":     r.settings.CRF,
		"preset":  r.settings.Preset,
		"r":       r.settings.FrameRate,
		"pix_fmt": "yuv420p",
		"t":       fmt.Sprintf("%.3f", job.DurationSeconds),
	}

	switch {
	case job.Music != nil:
		inputKwargs := ffmpeg.KwArgs{}
		if job.Music.StartOffset > 0 {
			inputKwargs["ss"] = fmt.Sprintf("%.3f", job.Music.StartOffset.Seconds())
		}
		if job.Music.Loops > 1 {
			inputKwargs["stream_loop"] = job.Music.Loops - 1
		}
		audio := ffmpeg.Input(job.Music.TrackPath, inputKwargs).Audio().
			Filter("volume", ffmpeg.Args{fmt.Sprintf("%.3f", job.Music.Gain)}).
			Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{
				"duration": fmt.Sprintf("%.3f", job.Music.Duration.Seconds()),
			}).
			Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"})
		outputKwargs["c:a"] = r.settings.AudioCodec
		return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, job.OutputPath, outputKwargs)
	case job.KeepSourceAudio:
		outputKwargs["c:a"] = r.settings.AudioCodec
		return ffmpeg.Output([]*ffmpeg.Stream{video, source.Audio()}, job.OutputPath, outputKwargs)
	default:
		outputKwargs["an"] = ""
		return ffmpeg.Output([]*ffmpeg.Stream{video}, job.OutputPath, outputKwargs)
	}
}

// escapeDrawtext escapes characters the drawtext filter treats specially.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}

func lastLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
