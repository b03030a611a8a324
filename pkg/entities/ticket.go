package entities

import (
	"fmt"
	"strconv"

	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
)

// TicketState is the lifecycle state of a ticket.
type TicketState string

const (
	// TicketStateOpen is a ticket nobody has claimed yet.
	TicketStateOpen TicketState = "open"

	// TicketStateClaimed is a ticket with a claimant.
	TicketStateClaimed TicketState = "claimed"

	// TicketStateClosing is a ticket whose close sequence has started.
	TicketStateClosing TicketState = "closing"

	// TicketStateDeleted is a closed ticket. This is terminal.
	TicketStateDeleted TicketState = "deleted"
)

// Live reports whether the ticket can still be claimed or closed.
func (s TicketState) Live() bool {
	return s == TicketStateOpen || s == TicketStateClaimed
}

// Ticket is a ticket.
type Ticket struct {
	// Number is the number of the ticket, unique within the guild.
	Number int `json:"number" bson:"number"`

	// GuildID is the ID of the guild that the ticket is in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// ChannelID is the ID of the channel that the ticket is in.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// PanelKey is the key of the panel the ticket was opened from.
	PanelKey string `json:"panel_key" bson:"panel_key"`

	// PanelLabel is the label of the panel at the time the ticket was opened.
	PanelLabel string `json:"panel_label" bson:"panel_label"`

	// CreatorID is the ID of the user that created the ticket.
	CreatorID string `json:"creator_id" bson:"creator_id"`

	// CreatorName is the username of the user that created the ticket.
	CreatorName string `json:"creator_name" bson:"creator_name"`

	// StaffRoleID is the staff role resolved when the ticket was created.
	StaffRoleID string `json:"staff_role_id" bson:"staff_role_id"`

	// Reason is the reason given when opening the ticket.
	Reason string `json:"reason" bson:"reason"`

	// ControlMessageID is the ID of the message carrying the claim and close buttons.
	ControlMessageID string `json:"control_message_id" bson:"control_message_id"`

	// ClaimedBy is the ID of the user that claimed the ticket.
	ClaimedBy string `json:"claimed_by" bson:"claimed_by"`

	// ClosedBy is the ID of the user that closed the ticket.
	ClosedBy string `json:"closed_by" bson:"closed_by"`

	// CloseReason is the reason given when closing the ticket.
	CloseReason string `json:"close_reason" bson:"close_reason"`

	// State is the lifecycle state.
	State TicketState `json:"state" bson:"state"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// ClosedAt is the time that the ticket channel was deleted.
	ClosedAt custom.Datetime `json:"closed_at" bson:"closed_at"`
}

// Name is the channel name of the ticket, e.g. "support-0007".
func (t *Ticket) Name() string {
	return TicketName(t.PanelKey, t.Number)
}

// TicketName formats a ticket channel name.
func TicketName(panelKey string, number int) string {
	return fmt.Sprintf("%s-%04d", panelKey, number)
}

// TicketLedger holds the tickets of one guild keyed by their number.
type TicketLedger struct {
	Tickets map[string]*Ticket `json:"tickets" bson:"tickets"`
}

// Get returns the ticket with the given number.
func (l *TicketLedger) Get(number int) (*Ticket, bool) {
	t, ok := l.Tickets[strconv.Itoa(number)]
	return t, ok
}

// Put stores the ticket under its number.
func (l *TicketLedger) Put(t *Ticket) {
	if l.Tickets == nil {
		l.Tickets = make(map[string]*Ticket)
	}
	l.Tickets[strconv.Itoa(t.Number)] = t
}

// ByChannel finds the live or closing ticket that owns the channel.
func (l *TicketLedger) ByChannel(channelID string) (*Ticket, bool) {
	for _, t := range l.Tickets {
		if t.ChannelID == channelID && t.State != TicketStateDeleted {
			return t, true
		}
	}
	return nil, false
}

// TicketDocument is the persisted document holding every guild's tickets.
type TicketDocument struct {
	Servers map[string]*TicketLedger `json:"servers" bson:"servers"`
}

// Init implements the dataaccess initializer.
func (d *TicketDocument) Init() {
	if d.Servers == nil {
		d.Servers = make(map[string]*TicketLedger)
	}
	for id, l := range d.Servers {
		if l == nil {
			d.Servers[id] = &TicketLedger{Tickets: make(map[string]*Ticket)}
			continue
		}
		if l.Tickets == nil {
			l.Tickets = make(map[string]*Ticket)
		}
		for n, t := range l.Tickets {
			if t == nil {
				delete(l.Tickets, n)
			}
		}
	}
}

// Ledger returns the guild's ledger, creating it if needed.
func (d *TicketDocument) Ledger(guildID string) *TicketLedger {
	if d.Servers == nil {
		d.Servers = make(map[string]*TicketLedger)
	}
	l, ok := d.Servers[guildID]
	if !ok {
		l = &TicketLedger{Tickets: make(map[string]*Ticket)}
		d.Servers[guildID] = l
	}
	return l
}
