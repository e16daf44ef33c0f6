// Package syncs provides synchronization primitives.
//
// [KeyLock] serializes work per key, such as requests belonging to the same
// dashboard session, while letting different keys proceed concurrently.
package syncs
