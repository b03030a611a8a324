// Package events publishes ticket lifecycle events for other services. Publishing is best-effort:
// a failed publish is logged and never fails the ticket operation.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TicketCreated = "ticket.created"
	TicketClaimed = "ticket.claimed"
	TicketClosed  = "ticket.closed"
)

// Event is a ticket lifecycle event.
type Event struct {
	Type         string    `json:"type"`
	GuildID      string    `json:"guild_id"`
	TicketNumber int       `json:"ticket_number"`
	TicketName   string    `json:"ticket_name"`
	ChannelID    string    `json:"channel_id"`
	ActorID      string    `json:"actor_id"`
	Reason       string    `json:"reason,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, Event) {}
