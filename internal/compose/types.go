package compose

import (
	"upright/internal/audiolevel"
	"upright/internal/music"
	"upright/internal/overlay"
	"upright/internal/transform"
)

// SourceClip is the probed description of an input clip.
type SourceClip struct {
	Path           string
	Duration       float64
	Width          int
	Height         int
	HasAudioStream bool
}

// RenderJob is the fully-assembled instruction set for one render. It is
// immutable and consumed exactly once by the Renderer.
type RenderJob struct {
	SourcePath      string
	OutputPath      string
	Transform       transform.Plan
	Music           *music.Selection
	Overlay         overlay.Plan
	KeepSourceAudio bool
	DurationSeconds float64
}

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeAborted   Outcome = "aborted"
	OutcomeFailed    Outcome = "failed"
)

// SkipReason explains a skipped run.
type SkipReason string

const (
	ReasonDuplicate    SkipReason = "duplicate"
	ReasonLimitReached SkipReason = "daily-limit-reached"
)

// Result describes what the pipeline did with one clip. OutputPath and Title
// are set only on completion; the caller appends the ledger record after its
// own downstream steps succeed.
type Result struct {
	Outcome        Outcome
	SkipReason     SkipReason
	ContentID      string
	OutputPath     string
	Title          string
	Classification audiolevel.Classification
	MusicUsed      bool
}
