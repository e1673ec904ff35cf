package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeRender()
	c.normalizeOverlay()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ProfilesPath) == "" {
		c.Paths.ProfilesPath = defaultProfilesPath
	}
	if c.Paths.ProfilesPath, err = expandPath(c.Paths.ProfilesPath); err != nil {
		return fmt.Errorf("paths.profiles_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() {
	if c.Audio.SilenceThresholdDB == 0 {
		c.Audio.SilenceThresholdDB = defaultSilenceThresholdDB
	}
	if c.Audio.MinMeaningfulSeconds <= 0 {
		c.Audio.MinMeaningfulSeconds = defaultMinMeaningfulSeconds
	}
	if c.Audio.SampleWindows <= 0 {
		c.Audio.SampleWindows = defaultSampleWindows
	}
}

func (c *Config) normalizeRender() {
	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	if c.Render.FFmpegBinary == "" {
		c.Render.FFmpegBinary = defaultFFmpegBinary
	}
	c.Render.FFprobeBinary = strings.TrimSpace(c.Render.FFprobeBinary)
	if c.Render.FFprobeBinary == "" {
		c.Render.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Render.FrameRate <= 0 {
		c.Render.FrameRate = defaultFrameRate
	}
	c.Render.VideoCodec = strings.TrimSpace(c.Render.VideoCodec)
	if c.Render.VideoCodec == "" {
		c.Render.VideoCodec = defaultVideoCodec
	}
	c.Render.AudioCodec = strings.TrimSpace(c.Render.AudioCodec)
	if c.Render.AudioCodec == "" {
		c.Render.AudioCodec = defaultAudioCodec
	}
	if c.Render.CRF <= 0 {
		c.Render.CRF = defaultCRF
	}
	c.Render.Preset = strings.TrimSpace(c.Render.Preset)
	if c.Render.Preset == "" {
		c.Render.Preset = defaultEncodePreset
	}
}

func (c *Config) normalizeOverlay() {
	if c.Overlay.MaxWidthFrac <= 0 || c.Overlay.MaxWidthFrac > 1 {
		c.Overlay.MaxWidthFrac = defaultOverlayMaxWidthFrac
	}
	if c.Overlay.Margin < 0 {
		c.Overlay.Margin = defaultOverlayMargin
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
