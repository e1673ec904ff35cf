// Package services defines the shared error taxonomy for pipeline stages.
//
// Stages wrap failures with a sentinel marker plus stage/operation context so
// callers can classify outcomes (recoverable vs fatal, skip vs fail) without
// string matching.
package services
