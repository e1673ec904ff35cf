// Package contentid derives stable identifiers for source clips. The ledger
// keys duplicate detection on (channel, content id), so the identifier must
// not change between runs for the same content.
package contentid
