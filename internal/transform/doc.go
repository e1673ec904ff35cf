// Package transform computes the centered crop and scale that map an
// arbitrary source frame onto the fixed 1080x1920 vertical target. The
// computation is pure integer geometry so plans are reproducible for a given
// source size and zoom hint.
package transform
