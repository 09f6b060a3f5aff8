// Package leadimport reconciles batches of externally sourced lead records
// against the store: each record either updates the existing lead it matches
// (legacy id first, then email) or is inserted as a new row.
//
// Records are processed in fixed-size batches with a short delay between
// batches so a large feed cannot overwhelm the store. Validation failures
// reject the record, never the batch; the run always returns per-record
// detail and partial results.
//
// An import run takes the tenant serialization lock shared with dedup runs;
// see internal/pkg/distlock.
package leadimport
