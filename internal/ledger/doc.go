// Package ledger is the durable per-channel history of produced outputs.
//
// The ledger backs the pipeline's two gating decisions: duplicate detection
// ((channel, content id) unique index, O(1) lookup) and the daily output
// limit (date-bucketed count computed in a configured location). Appends are
// idempotent so retried pipelines never double-count. Storage is SQLite with
// WAL enabled; the schema carries a version stamp checked at open.
package ledger
