/*
Package session implements the client-side session layer of the Ramblur chat
protocol.

This file holds the most recent presence snapshot. Updates replace the whole
snapshot; consumers re-derive their entire view (e.g. a rendered user list)
from it on every change.
*/
package session

import "sync"

// PresenceStore holds the latest online/all user listing. The zero value is
// an empty snapshot. The session's dispatch loop is the only writer, but
// snapshots may be read from any goroutine.
type PresenceStore struct {
	mu      sync.RWMutex
	current Presence
}

// Replace installs snapshot as the current presence state, discarding the
// previous one entirely. Name order and duplicates are kept as delivered,
// and no containment of Online within All is enforced here.
func (s *PresenceStore) Replace(snapshot Presence) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = snapshot
}

// Snapshot returns the current presence state.
func (s *PresenceStore) Snapshot() Presence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// IsOnline reports whether name appears in the current online listing.
// A name absent from Online but present in All is offline; a name absent
// from both is unknown to this layer.
func (s *PresenceStore) IsOnline(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.current.Online {
		if n == name {
			return true
		}
	}
	return false
}
