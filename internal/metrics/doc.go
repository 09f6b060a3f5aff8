// Package metrics implements the dashboard aggregation pipeline: date-window
// construction, lead classification, product matching, and the per-product /
// whole-selection aggregator.
//
// Everything here is pure and synchronous. Fetching and pagination belong to
// the repository layer; this package only classifies and sums rows it is
// handed. The same window predicate drives both the SQL filter built by the
// repositories and the in-memory re-filter applied before aggregation, so
// the two layers can never disagree.
package metrics
