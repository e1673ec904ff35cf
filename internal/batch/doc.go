// Package batch runs the pipeline across many clips and channels. Channels
// process concurrently with items inside a channel kept sequential, so the
// ledger's per-channel ordering guarantees hold. A file lock prevents two
// batch processes from sharing an output tree.
package batch
