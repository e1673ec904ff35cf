package channel

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"upright/internal/config"
	"upright/internal/services"
)

//go:embed sample_channels.toml
var sampleChannels string

// profileRecord mirrors Profile for decoding. DailyLimit is a pointer so an
// explicit `daily_limit = 0` (channel paused) is distinguishable from an
// absent key (defaulted).
type profileRecord struct {
	Label          string       `toml:"label"`
	SourceTag      string       `toml:"source_tag"`
	MusicDir       string       `toml:"music_dir"`
	MusicMode      MusicMode    `toml:"music_mode"`
	MusicVolume    float64      `toml:"music_volume"`
	TitleTemplates []string     `toml:"title_templates"`
	Hashtags       []string     `toml:"hashtags"`
	Font           FontSettings `toml:"font"`
	ZoomHint       float64      `toml:"zoom_hint"`
	DailyLimit     *int         `toml:"daily_limit"`
}

func (r profileRecord) toProfile() Profile {
	profile := Profile{
		Label:          r.Label,
		SourceTag:      r.SourceTag,
		MusicDir:       r.MusicDir,
		MusicMode:      r.MusicMode,
		MusicVolume:    r.MusicVolume,
		TitleTemplates: r.TitleTemplates,
		Hashtags:       r.Hashtags,
		Font:           r.Font,
		ZoomHint:       r.ZoomHint,
		DailyLimit:     defaultDailyLimit,
	}
	if r.DailyLimit != nil {
		profile.DailyLimit = *r.DailyLimit
	}
	return profile
}

type profilesFile struct {
	Channels []profileRecord `toml:"channels"`
}

// LoadProfiles reads channel profiles from a TOML file, applies defaults, and
// validates every entry. Labels must be unique.
func LoadProfiles(path string) ([]Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "channel", "load",
			fmt.Sprintf("open profiles %s", path), err)
	}
	defer file.Close()

	var parsed profilesFile
	if err := toml.NewDecoder(file).Decode(&parsed); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "channel", "load",
			fmt.Sprintf("parse profiles %s", path), err)
	}
	if len(parsed.Channels) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "channel", "load",
			fmt.Sprintf("%s defines no channels", path), nil)
	}

	profiles := make([]Profile, 0, len(parsed.Channels))
	seen := make(map[string]struct{}, len(parsed.Channels))
	for _, record := range parsed.Channels {
		profile := record.toProfile()
		profile.applyDefaults()
		if profile.MusicDir != "" {
			expanded, err := config.ExpandPath(profile.MusicDir)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "channel", "load",
					fmt.Sprintf("channel %s: music_dir", profile.Label), err)
			}
			profile.MusicDir = expanded
		}
		if err := profile.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[profile.Label]; dup {
			return nil, services.Wrap(services.ErrConfiguration, "channel", "load",
				fmt.Sprintf("duplicate channel label %q", profile.Label), nil)
		}
		seen[profile.Label] = struct{}{}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// FindProfile returns the profile with the given label.
func FindProfile(profiles []Profile, label string) (Profile, error) {
	for _, profile := range profiles {
		if profile.Label == label {
			return profile, nil
		}
	}
	return Profile{}, services.Wrap(services.ErrConfiguration, "channel", "find",
		fmt.Sprintf("no channel named %q", label), nil)
}

// CreateSample writes a sample channel profiles file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create profiles directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleChannels), 0o644); err != nil {
		return fmt.Errorf("write sample profiles: %w", err)
	}
	return nil
}
