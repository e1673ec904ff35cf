package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateOverlay(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SilenceThresholdDB >= 0 {
		return errors.New("audio.silence_threshold_db must be negative (dBFS)")
	}
	if c.Audio.MinMeaningfulSeconds <= 0 {
		return errors.New("audio.min_meaningful_seconds must be positive")
	}
	if c.Audio.SampleWindows <= 0 {
		return errors.New("audio.sample_windows must be positive")
	}
	return nil
}

func (c *Config) validateRender() error {
	if err := ensurePositiveMap(map[string]int{
		"render.frame_rate": c.Render.FrameRate,
		"render.crf":        c.Render.CRF,
	}); err != nil {
		return err
	}
	if c.Render.FFmpegBinary == "" {
		return errors.New("render.ffmpeg_binary must be set")
	}
	if c.Render.FFprobeBinary == "" {
		return errors.New("render.ffprobe_binary must be set")
	}
	return nil
}

func (c *Config) validateOverlay() error {
	if c.Overlay.MaxWidthFrac <= 0 || c.Overlay.MaxWidthFrac > 1 {
		return errors.New("overlay.max_width_frac must be between 0 and 1")
	}
	if c.Overlay.Margin < 0 {
		return errors.New("overlay.margin must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
