// Package fileutil provides small filesystem helpers shared across the pipeline.
package fileutil
