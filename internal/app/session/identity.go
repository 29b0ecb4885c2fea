/*
Package session implements the client-side session layer of the Ramblur chat
protocol.

This file holds the write-once resolution of which participant name is the
local client. The server never acknowledges the session's own name directly;
it is inferred from the first join announcement seen on the wire, which is a
heuristic the server contract does not currently let us replace.
*/
package session

import "sync"

// IdentityResolver latches the local participant's display name exactly once
// per session. The zero value is unresolved and ready to use. The dispatch
// loop latches; any goroutine may read.
type IdentityResolver struct {
	mu       sync.RWMutex
	name     string
	resolved bool
}

// TryLatch records name as the local identity if none has been resolved yet.
// Later calls are no-ops regardless of the name offered; the first successful
// resolution wins for the lifetime of the session.
func (r *IdentityResolver) TryLatch(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved {
		return
	}

	r.name = name
	r.resolved = true
}

// Resolved returns the latched name and whether resolution has happened.
func (r *IdentityResolver) Resolved() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.name, r.resolved
}
