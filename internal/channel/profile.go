package channel

import (
	"fmt"
	"strings"

	"upright/internal/services"
)

// MusicMode controls when background music is layered into a render.
type MusicMode string

const (
	// MusicSmart adds music only when the clip is classified as silent.
	MusicSmart MusicMode = "smart"
	// MusicAlways replaces the clip audio with music regardless of classification.
	MusicAlways MusicMode = "always"
	// MusicDisabled never adds music.
	MusicDisabled MusicMode = "disabled"
)

// Anchor positions for the text overlay.
const (
	AnchorTopLeft      = "top-left"
	AnchorTopCenter    = "top-center"
	AnchorBottomCenter = "bottom-center"
)

// FontSettings describes how overlay text is drawn.
type FontSettings struct {
	Family  string `toml:"family"`
	Size    int    `toml:"size"`
	Color   string `toml:"color"`
	Anchor  string `toml:"anchor"`
	MarginY int    `toml:"margin_y"`
}

// Profile describes one destination channel. Profiles are immutable once
// loaded; the pipeline never mutates them.
type Profile struct {
	Label          string       `toml:"label"`
	SourceTag      string       `toml:"source_tag"`
	MusicDir       string       `toml:"music_dir"`
	MusicMode      MusicMode    `toml:"music_mode"`
	MusicVolume    float64      `toml:"music_volume"`
	TitleTemplates []string     `toml:"title_templates"`
	Hashtags       []string     `toml:"hashtags"`
	Font           FontSettings `toml:"font"`
	ZoomHint       float64      `toml:"zoom_hint"`
	DailyLimit     int          `toml:"daily_limit"`
}

const (
	defaultMusicVolume = 0.3
	defaultZoomHint    = 1.4
	defaultDailyLimit  = 1
	defaultFontSize    = 70
	defaultFontColor   = "white"
	defaultFontMarginY = 320
)

// applyDefaults fills unset fields with channel defaults. DailyLimit is not
// touched here: zero is a meaningful value (channel paused), so the load path
// defaults it only when the key is absent.
func (p *Profile) applyDefaults() {
	if p.MusicMode == "" {
		p.MusicMode = MusicSmart
	}
	if p.MusicVolume <= 0 {
		p.MusicVolume = defaultMusicVolume
	}
	if p.ZoomHint < 1.0 {
		p.ZoomHint = defaultZoomHint
	}
	if p.Font.Size <= 0 {
		p.Font.Size = defaultFontSize
	}
	if strings.TrimSpace(p.Font.Color) == "" {
		p.Font.Color = defaultFontColor
	}
	if strings.TrimSpace(p.Font.Anchor) == "" {
		p.Font.Anchor = AnchorTopCenter
	}
	if p.Font.MarginY <= 0 {
		p.Font.MarginY = defaultFontMarginY
	}
}

// Validate checks the profile for values the pipeline cannot work with.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Label) == "" {
		return services.Wrap(services.ErrValidation, "channel", "validate", "label must be set", nil)
	}
	switch p.MusicMode {
	case MusicSmart, MusicAlways, MusicDisabled:
	default:
		return services.Wrap(services.ErrValidation, "channel", "validate",
			fmt.Sprintf("channel %s: music_mode %q is not one of smart, always, disabled", p.Label, p.MusicMode), nil)
	}
	if p.MusicMode != MusicDisabled && strings.TrimSpace(p.MusicDir) == "" {
		return services.Wrap(services.ErrValidation, "channel", "validate",
			fmt.Sprintf("channel %s: music_dir must be set when music_mode is %s", p.Label, p.MusicMode), nil)
	}
	if p.MusicVolume <= 0 || p.MusicVolume > 1 {
		return services.Wrap(services.ErrValidation, "channel", "validate",
			fmt.Sprintf("channel %s: music_volume must be between 0 and 1", p.Label), nil)
	}
	if p.ZoomHint < 1.0 {
		return services.Wrap(services.ErrValidation, "channel", "validate",
			fmt.Sprintf("channel %s: zoom_hint must be >= 1.0", p.Label), nil)
	}
	if p.DailyLimit < 0 {
		return services.Wrap(services.ErrValidation, "channel", "validate",
			fmt.Sprintf("channel %s: daily_limit must be >= 0", p.Label), nil)
	}
	switch p.Font.Anchor {
	case AnchorTopLeft, AnchorTopCenter, AnchorBottomCenter:
	default:
		return services.Wrap(services.ErrValidation, "channel", "validate",
			fmt.Sprintf("channel %s: font.anchor %q is not a known anchor", p.Label, p.Font.Anchor), nil)
	}
	return nil
}

// WantsOverlay reports whether the profile configures a text overlay.
func (p *Profile) WantsOverlay() bool {
	for _, tpl := range p.TitleTemplates {
		if strings.TrimSpace(tpl) != "" {
			return true
		}
	}
	return false
}
