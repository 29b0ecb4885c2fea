package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityResolver_WriteOnce(t *testing.T) {
	req := require.New(t)

	var r IdentityResolver

	// Given no resolution has happened yet
	_, resolved := r.Resolved()
	req.False(resolved)

	// When the first name is latched
	r.TryLatch("Alice")

	name, resolved := r.Resolved()
	req.True(resolved)
	req.Equal("Alice", name)

	// Then later latches are no-ops
	r.TryLatch("Bob")

	name, _ = r.Resolved()
	req.Equal("Alice", name)
}

func TestIdentityResolver_NoValidation(t *testing.T) {
	// An empty capture cannot come out of the join pattern (the name group
	// requires at least one character), but latching is deliberately not
	// validated here: the resolver trusts whatever the classifier offers
	// first.
	req := require.New(t)

	var r IdentityResolver
	r.TryLatch("")

	name, resolved := r.Resolved()
	req.True(resolved)
	req.Equal("", name)
}
