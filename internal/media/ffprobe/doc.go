// Package ffprobe wraps ffprobe JSON inspection of source clips. The pipeline
// uses it to read frame dimensions, duration, and audio stream presence before
// planning a render.
package ffprobe
