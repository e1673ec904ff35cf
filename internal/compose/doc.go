// Package compose orchestrates the per-clip pipeline and owns the ffmpeg
// renderer. The compositor checks ledger gates, classifies audio, plans the
// geometric transform and overlay, optionally selects music, and executes
// exactly one render. Only the render step touches the filesystem.
package compose
