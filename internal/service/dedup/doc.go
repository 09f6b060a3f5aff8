// Package dedup implements lead deduplication for a tenant scope.
//
// Imported lead rows carry no storage-level uniqueness; duplicates are an
// application concept. The service groups rows by a priority-ordered identity
// key, keeps one canonical survivor per group, and deletes the rest. It
// depends on the repository interface defined in this package and should
// never import from the api package.
//
// A dedup run takes the tenant serialization lock shared with lead imports;
// see internal/pkg/distlock.
package dedup
