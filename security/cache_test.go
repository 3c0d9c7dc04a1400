package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCachingResolver(t *testing.T) {
	lookup := &fakeLookup{accounts: map[string]fakeAccount{
		userSID.String(): {"user", "DOMAIN", SidTypeUser},
	}}
	counting := &countingResolver{next: NewResolver(lookup)}
	c := NewCachingResolver(counting, time.Minute)

	for i := 0; i < 5; i++ {
		require.Equal(t, `DOMAIN\user`, c.Resolve(userSID).QualifiedName())
	}
	require.Equal(t, 1, counting.calls)

	// Unresolved answers are cached too.
	require.True(t, c.Resolve(orphan).Unresolved)
	require.True(t, c.Resolve(orphan).Unresolved)
	require.Equal(t, 2, counting.calls)
	require.Equal(t, 2, c.Len())
}

func TestCachingResolverExpiry(t *testing.T) {
	lookup := &fakeLookup{accounts: map[string]fakeAccount{
		userSID.String(): {"user", "DOMAIN", SidTypeUser},
	}}
	counting := &countingResolver{next: NewResolver(lookup)}
	c := NewCachingResolver(counting, 10*time.Millisecond)

	c.Resolve(userSID)
	time.Sleep(30 * time.Millisecond)
	c.Resolve(userSID)
	require.Equal(t, 2, counting.calls)
}
