// Package audiolevel classifies source clips as silent or audio-bearing.
//
// Classification samples a fixed number of one-second windows spread across
// the clip, measures RMS level per window, and compares the total non-silent
// duration against a configured minimum. The classification is deterministic
// for a given clip and settings.
package audiolevel
