// Package store implements the two interchangeable backends behind
// calls.Store: a volatile in-process store and a Postgres-backed one. The
// backend is chosen once at startup (see Open); both behave identically for
// equal inputs, the Postgres one additionally survives restarts.
//
// Known limitation: updates are last-write-wins with no version check, so
// out-of-order webhook delivery can regress a call's status. The demo's
// timing assumptions rely on this staying simple; do not add CAS here.
package store

import "voicedesk/internal/calls"

var (
	_ calls.Store = (*Memory)(nil)
	_ calls.Store = (*Postgres)(nil)
)
