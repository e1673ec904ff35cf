// Package overlay lays out title text inside the vertical frame. Layout uses
// an estimated glyph width instead of font rasterization, so plans are
// deterministic and cheap; the compositor hands the resulting lines to
// ffmpeg's drawtext filter.
package overlay
