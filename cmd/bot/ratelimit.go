package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ticketOpenInterval is how often a user may open a ticket in a guild.
	ticketOpenInterval = 30 * time.Second

	// limiterPruneSize is the number of tracked users after which idle limiters are dropped.
	limiterPruneSize = 10_000
)

// ticketLimiter limits how often each user may open tickets in each guild.
type ticketLimiter struct {
	mu       sync.Mutex
	every    time.Duration
	limiters map[string]*rate.Limiter

	// now returns the current time.
	now func() time.Time
}

// NewTicketLimiter creates a limiter allowing one ticket per interval per guild and user.
func NewTicketLimiter() *ticketLimiter {
	return newTicketLimiter(ticketOpenInterval)
}

func newTicketLimiter(every time.Duration) *ticketLimiter {
	return &ticketLimiter{
		every:    every,
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

// Allow reports whether the user may open a ticket now, and takes the slot if so.
func (t *ticketLimiter) Allow(guildID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	key := guildID + "/" + userID

	lim, ok := t.limiters[key]
	if !ok {
		if len(t.limiters) >= limiterPruneSize {
			t.prune(now)
		}
		lim = rate.NewLimiter(rate.Every(t.every), 1)
		t.limiters[key] = lim
	}
	return lim.AllowN(now, 1)
}

// Release gives back the slot taken by Allow. It is used when the ticket was rejected before
// anything was created.
func (t *ticketLimiter) Release(guildID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A new limiter starts full.
	delete(t.limiters, guildID+"/"+userID)
}

// prune drops limiters that have refilled, they behave the same as a new one.
func (t *ticketLimiter) prune(now time.Time) {
	for k, lim := range t.limiters {
		if lim.TokensAt(now) >= 1 {
			delete(t.limiters, k)
		}
	}
}
