package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTicketLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lim := newTicketLimiter(30 * time.Second)
	lim.now = func() time.Time { return now }

	require.True(t, lim.Allow("1", "10"))
	require.False(t, lim.Allow("1", "10"), "second open inside the interval")

	// Other users and other guilds have their own budget.
	require.True(t, lim.Allow("1", "11"))
	require.True(t, lim.Allow("2", "10"))

	now = now.Add(29 * time.Second)
	require.False(t, lim.Allow("1", "10"))

	now = now.Add(2 * time.Second)
	require.True(t, lim.Allow("1", "10"))
}

func TestTicketLimiter_Prune(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lim := newTicketLimiter(30 * time.Second)
	lim.now = func() time.Time { return now }

	require.True(t, lim.Allow("1", "10"))
	require.True(t, lim.Allow("1", "11"))

	now = now.Add(time.Minute)
	require.True(t, lim.Allow("1", "12"))
	lim.prune(now)

	// Only the limiter used at the current instant is still empty.
	require.Len(t, lim.limiters, 1)
	require.False(t, lim.Allow("1", "12"))
	require.True(t, lim.Allow("1", "10"))
}

func TestTicketLimiter_Release(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lim := newTicketLimiter(30 * time.Second)
	lim.now = func() time.Time { return now }

	require.True(t, lim.Allow("1", "10"))
	require.True(t, lim.Allow("1", "11"))

	// A rejected attempt gives the slot back.
	lim.Release("1", "10")
	require.True(t, lim.Allow("1", "10"))
	require.False(t, lim.Allow("1", "10"))

	// Other users keep their state.
	require.False(t, lim.Allow("1", "11"))

	// Releasing an unknown user is a no-op.
	lim.Release("2", "99")
	require.True(t, lim.Allow("2", "99"))
}
