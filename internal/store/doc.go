// Package store holds per-user service state behind small interfaces:
// the capacity-bounded activity log and status feed, the seeded user
// directory, and disk-backed preferences.
//
// The memory implementations guard their maps with sync.RWMutex and hand
// out copies, never internal slices, so callers can read concurrently
// with writers.
package store
