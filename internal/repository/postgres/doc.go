// Package postgres implements the repository interfaces against PostgreSQL.
//
// Query filters are composed with positional arguments; the date-window
// filter is built from the same metrics.DateWindow values the aggregator
// re-applies in memory, so the SQL filter and the in-memory filter cannot
// drift apart.
package postgres
