// Package versions persists manual versions: immutable snapshots of a
// document body. Rows are only ever inserted or deleted.
//
// Listing is newest first. Creation timestamps come from a monotonic clock,
// and the id is used as a tie-breaker so the order stays total either way.
package versions
