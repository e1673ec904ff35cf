package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDecode marks sources whose audio or video streams cannot be decoded.
	ErrDecode = errors.New("decode error")
	// ErrNoMusic marks an empty or missing music directory. Recoverable: the
	// pipeline proceeds without background music.
	ErrNoMusic = errors.New("no music available")
	// ErrRender marks a failure in the delegated ffmpeg execution.
	ErrRender = errors.New("render execution error")
	// ErrAborted marks caller-requested cancellation mid-render.
	ErrAborted = errors.New("abort requested")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether the error only degrades the output (the item can
// still complete without the affected feature) rather than failing it.
func Recoverable(err error) bool {
	return errors.Is(err, ErrNoMusic)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
