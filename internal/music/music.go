package music

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"upright/internal/logging"
	"upright/internal/media/ffprobe"
	"upright/internal/services"
)

// trackExtensions are the audio files considered part of a music library.
var trackExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".aac":  {},
	".ogg":  {},
	".flac": {},
}

// Selection describes the background music chosen for one render. Duration
// always equals the clip duration; Loops is how many times the track must be
// concatenated to cover it.
type Selection struct {
	TrackPath   string
	StartOffset time.Duration
	Duration    time.Duration
	Loops       int
	Gain        float64
}

// DurationFunc reports the playable duration of a track. Injectable so tests
// avoid probing real files.
type DurationFunc func(ctx context.Context, path string) (time.Duration, error)

// Selector picks background tracks from a channel's music library. It is
// safe for concurrent use; rng access is serialized.
type Selector struct {
	duration DurationFunc
	logger   *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewSelector builds a selector that probes track durations via ffprobe.
func NewSelector(ffprobeBinary string, rng *rand.Rand, logger *slog.Logger) *Selector {
	return &Selector{
		rng: rng,
		duration: func(ctx context.Context, path string) (time.Duration, error) {
			result, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
			if err != nil {
				return 0, err
			}
			seconds := result.DurationSeconds()
			if seconds <= 0 {
				return 0, fmt.Errorf("track %s reports no duration", path)
			}
			return time.Duration(seconds * float64(time.Second)), nil
		},
		logger: logging.NewComponentLogger(logger, "music"),
	}
}

// NewSelectorWithDuration builds a selector with a custom duration probe.
func NewSelectorWithDuration(duration DurationFunc, rng *rand.Rand, logger *slog.Logger) *Selector {
	return &Selector{
		rng:      rng,
		duration: duration,
		logger:   logging.NewComponentLogger(logger, "music"),
	}
}

// Select picks one track from musicDir and sizes it to the required duration.
// A missing or empty library yields a no-music error, which callers may treat
// as recoverable.
func (s *Selector) Select(ctx context.Context, musicDir string, required time.Duration, volume float64) (*Selection, error) {
	if required <= 0 {
		return nil, services.Wrap(services.ErrValidation, "music", "select",
			fmt.Sprintf("required duration %s is not positive", required), nil)
	}

	tracks, err := ListTracks(musicDir)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, services.Wrap(services.ErrNoMusic, "music", "select",
			fmt.Sprintf("no usable tracks under %s", musicDir), nil)
	}

	track := tracks[0]
	if s.rng != nil {
		s.rngMu.Lock()
		track = tracks[s.rng.Intn(len(tracks))]
		s.rngMu.Unlock()
	}

	trackDuration, err := s.duration(ctx, track)
	if err != nil {
		return nil, services.Wrap(services.ErrNoMusic, "music", "select",
			fmt.Sprintf("probe track %s", track), err)
	}

	selection := &Selection{
		TrackPath: track,
		Duration:  required,
		Loops:     1,
		Gain:      volume,
	}
	if trackDuration < required {
		selection.Loops = int(math.Ceil(float64(required) / float64(trackDuration)))
	} else if headroom := trackDuration - required; headroom > 0 && s.rng != nil {
		s.rngMu.Lock()
		selection.StartOffset = time.Duration(s.rng.Int63n(int64(headroom)))
		s.rngMu.Unlock()
	}

	s.logger.Debug("selected background track",
		logging.String("track", track),
		logging.Duration("track_duration", trackDuration),
		logging.Duration("required", required),
		logging.Int("loops", selection.Loops))
	return selection, nil
}

// ListTracks walks musicDir recursively and returns playable track paths in
// stable sorted order. A missing directory is a no-music error.
func ListTracks(musicDir string) ([]string, error) {
	musicDir = strings.TrimSpace(musicDir)
	if musicDir == "" {
		return nil, services.Wrap(services.ErrNoMusic, "music", "list", "music directory not configured", nil)
	}
	if _, err := os.Stat(musicDir); err != nil {
		return nil, services.Wrap(services.ErrNoMusic, "music", "list",
			fmt.Sprintf("music directory %s unavailable", musicDir), err)
	}

	var tracks []string
	err := filepath.WalkDir(musicDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := trackExtensions[ext]; ok {
			tracks = append(tracks, path)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrNoMusic, "music", "list",
			fmt.Sprintf("walk music directory %s", musicDir), err)
	}
	sort.Strings(tracks)
	return tracks, nil
}
