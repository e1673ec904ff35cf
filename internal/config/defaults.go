package config

const (
	defaultOutputDir            = "~/.local/share/upright/output"
	defaultLogDir               = "~/.local/share/upright/logs"
	defaultStateDir             = "~/.local/share/upright/state"
	defaultProfilesPath         = "~/.config/upright/channels.toml"
	defaultSilenceThresholdDB   = -45.0
	defaultMinMeaningfulSeconds = 1.0
	defaultSampleWindows        = 10
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultFrameRate            = 30
	defaultVideoCodec           = "libx264"
	defaultAudioCodec           = "aac"
	defaultCRF                  = 23
	defaultEncodePreset         = "medium"
	defaultOverlayMaxWidthFrac  = 0.9
	defaultOverlayMargin        = 48
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
			StateDir:     defaultStateDir,
			ProfilesPath: defaultProfilesPath,
		},
		Audio: Audio{
			SilenceThresholdDB:   defaultSilenceThresholdDB,
			MinMeaningfulSeconds: defaultMinMeaningfulSeconds,
			SampleWindows:        defaultSampleWindows,
		},
		Render: Render{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			FrameRate:     defaultFrameRate,
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
			CRF:           defaultCRF,
			Preset:        defaultEncodePreset,
		},
		Overlay: Overlay{
			MaxWidthFrac: defaultOverlayMaxWidthFrac,
			Margin:       defaultOverlayMargin,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
