// Package session keeps per-user dashboard state.
//
// Each browser gets a [Session] identified by a random ID. A session holds at
// most one loaded table, replaced on every new selection and dropped when the
// session expires. Access to a single session is serialized; different
// sessions never block each other.
package session
