package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"upright/internal/audiolevel"
	"upright/internal/batch"
	"upright/internal/channel"
	"upright/internal/compose"
	"upright/internal/config"
	"upright/internal/ledger"
	"upright/internal/logging"
	"upright/internal/music"
	"upright/internal/overlay"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewForDir(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) loadProfiles() ([]channel.Profile, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return channel.LoadProfiles(cfg.Paths.ProfilesPath)
}

func (c *commandContext) openStore() (*ledger.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return ledger.Open(cfg.LedgerPath())
}

// newClipProcessor wires the full pipeline against the provided ledger.
func (c *commandContext) newClipProcessor(store *ledger.Store) (*batch.ClipProcessor, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	// The selector and compositor each get their own rand.Rand; a shared one
	// would need cross-package locking once batch mode runs channels in
	// parallel.
	seed := time.Now().UnixNano()
	detector := audiolevel.NewDetector(audiolevel.Settings{
		SilenceThresholdDB:   cfg.Audio.SilenceThresholdDB,
		MinMeaningfulSeconds: cfg.Audio.MinMeaningfulSeconds,
		SampleWindows:        cfg.Audio.SampleWindows,
		FFmpegBinary:         cfg.Render.FFmpegBinary,
	}, logger)
	selector := music.NewSelector(cfg.Render.FFprobeBinary, rand.New(rand.NewSource(seed)), logger)
	planner := overlay.NewPlanner(overlay.Settings{
		MaxWidthFrac: cfg.Overlay.MaxWidthFrac,
		Margin:       cfg.Overlay.Margin,
	})
	renderer := compose.NewFFmpegRenderer(compose.RenderSettings{
		FFmpegBinary: cfg.Render.FFmpegBinary,
		FrameRate:    cfg.Render.FrameRate,
		VideoCodec:   cfg.Render.VideoCodec,
		AudioCodec:   cfg.Render.AudioCodec,
		CRF:          cfg.Render.CRF,
		Preset:       cfg.Render.Preset,
	}, logger)
	compositor := compose.New(store, detector, selector, planner, renderer, rand.New(rand.NewSource(seed+1)), logger)

	return batch.NewClipProcessor(cfg.Render.FFprobeBinary, cfg.Paths.OutputDir, compositor, store, logger), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
