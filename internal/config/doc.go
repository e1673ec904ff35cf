// Package config loads, normalizes, and validates the TOML configuration that
// drives the composition pipeline. Paths are tilde-expanded and made absolute
// during Load; callers receive a config whose directories exist after
// EnsureDirectories.
package config
