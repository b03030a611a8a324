// Package tickets runs the ticket lifecycle: create, claim, close and member management.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/events"
	"github.com/Jacobbrewer1/ticketeer/pkg/guildconfig"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/responder"
)

const (
	// DefaultCloseDelay is the wait between announcing a close and deleting the channel.
	DefaultCloseDelay = 5 * time.Second

	// ReasonCloseDelay is the delay used when closing with a reason.
	ReasonCloseDelay = 3 * time.Second
)

// Actor is the user performing a ticket action.
type Actor struct {
	ID      string
	Name    string
	IsAdmin bool
	RoleIDs []string
}

// CreateRequest is a request to open a ticket from a panel.
type CreateRequest struct {
	GuildID     string
	PanelKey    string
	CreatorID   string
	CreatorName string
	Reason      string
}

// CloseRequest is a request to close the ticket owning a channel.
type CloseRequest struct {
	GuildID   string
	ChannelID string
	Actor     Actor
	Reason    string

	// Delay is how long to wait after the close announcement. Zero means DefaultCloseDelay.
	Delay time.Duration
}

// Summary is the closing summary of a ticket.
type Summary struct {
	TicketName   string
	Number       int
	OpenerID     string
	CloserID     string
	OpenDuration time.Duration
	ClaimedBy    string
	Reason       string
	Transcript   string
}

// Manager runs the ticket lifecycle.
type Manager struct {
	// l is the logger.
	l *slog.Logger

	// configs is the guild configuration registry.
	configs *guildconfig.Registry

	// doc is the ticket document.
	doc *dataaccess.Document[entities.TicketDocument]

	// responder answers ticket reasons.
	responder Responder

	// platform is the chat platform.
	platform Platform

	// transcripts archives transcripts.
	transcripts TranscriptStore

	// publisher publishes lifecycle events.
	publisher events.Publisher

	// now returns the current time.
	now func() time.Time

	// sleep waits for the close delay.
	sleep func(ctx context.Context, d time.Duration)
}

// NewManager creates a new ticket manager.
func NewManager(
	l *slog.Logger,
	configs *guildconfig.Registry,
	doc *dataaccess.Document[entities.TicketDocument],
	resp Responder,
	platform Platform,
	transcripts TranscriptStore,
	publisher events.Publisher,
) *Manager {
	return &Manager{
		l:           l,
		configs:     configs,
		doc:         doc,
		responder:   resp,
		platform:    platform,
		transcripts: transcripts,
		publisher:   publisher,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Create opens a ticket. Every check runs before the ticket counter is touched.
func (m *Manager) Create(ctx context.Context, req *CreateRequest) (*entities.Ticket, error) {
	l := m.l.With(slog.String(logging.KeyGuild, req.GuildID), slog.String(logging.KeyUser, req.CreatorID))

	cfg, err := m.configs.GetOrCreate(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	// Step 1: validate the panel, its category and the staff role.
	panel, ok := cfg.Panels[req.PanelKey]
	if !ok {
		return nil, fmt.Errorf("%w: panel %q", errs.ErrNotFound, req.PanelKey)
	}
	if !panel.Enabled {
		return nil, fmt.Errorf("%w: panel %q is disabled", errs.ErrInvalidValue, req.PanelKey)
	}

	ok, err = m.platform.CategoryExists(ctx, req.GuildID, panel.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: error resolving category: %w", errs.ErrDependencyUnavailable, err)
	} else if !ok {
		return nil, fmt.Errorf("%w: category %s", errs.ErrNotFound, panel.CategoryID)
	}

	staffRole := cfg.ResolveStaffRole(panel)
	if staffRole == "" {
		return nil, fmt.Errorf("%w: no staff role configured", errs.ErrNotFound)
	}
	ok, err = m.platform.RoleExists(ctx, req.GuildID, staffRole)
	if err != nil {
		return nil, fmt.Errorf("%w: error resolving staff role: %w", errs.ErrDependencyUnavailable, err)
	} else if !ok {
		return nil, fmt.Errorf("%w: staff role %s", errs.ErrNotFound, staffRole)
	}

	// Step 2: take a number. It is never reused, even if the channel cannot be created.
	n, err := m.configs.IncrementTicketCounter(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	t := &entities.Ticket{
		Number:      n,
		GuildID:     req.GuildID,
		PanelKey:    req.PanelKey,
		PanelLabel:  panel.Label,
		CreatorID:   req.CreatorID,
		CreatorName: req.CreatorName,
		StaffRoleID: staffRole,
		Reason:      req.Reason,
		State:       entities.TicketStateOpen,
		CreatedAt:   custom.NewDatetime(m.now().UTC()),
	}

	// Step 3: create the channel.
	channelID, err := m.platform.CreateTicketChannel(ctx, &ChannelSpec{
		GuildID:     req.GuildID,
		CategoryID:  panel.CategoryID,
		Name:        t.Name(),
		Topic:       fmt.Sprintf("Ticket from %s | Type: %s | ID: %s", req.CreatorName, panel.Label, req.CreatorID),
		CreatorID:   req.CreatorID,
		StaffRoleID: staffRole,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: error creating ticket channel: %w", errs.ErrDependencyUnavailable, err)
	}
	t.ChannelID = channelID

	if err := m.put(ctx, t); err != nil {
		return nil, fmt.Errorf("error storing ticket: %w", err)
	}
	l = l.With(slog.String(logging.KeyTicket, t.Name()))

	// Step 4: welcome message with the controls.
	msgID, err := m.platform.SendWelcome(ctx, t)
	if err != nil {
		l.Warn("Error sending welcome message", slog.String(logging.KeyError, err.Error()))
	} else {
		t.ControlMessageID = msgID
		err := m.update(ctx, req.GuildID, n, func(st *entities.Ticket) error {
			st.ControlMessageID = msgID
			return nil
		})
		if err != nil {
			l.Warn("Error storing control message", slog.String(logging.KeyError, err.Error()))
		}
	}

	// Step 5: answer the reason or ask staff to train a response.
	m.answer(ctx, l, t)

	if entities.IsSet(cfg.LogChannelID) {
		if err := m.platform.LogTicket(ctx, cfg.LogChannelID, &LogEntry{Action: LogCreated, Ticket: t, ActorID: req.CreatorID}); err != nil {
			l.Warn("Error logging ticket creation", slog.String(logging.KeyError, err.Error()))
		}
	}

	m.publish(ctx, events.TicketCreated, t, req.CreatorID, "")

	l.Info("Ticket created", slog.String(logging.KeyChannel, channelID))
	return t, nil
}

func (m *Manager) answer(ctx context.Context, l *slog.Logger, t *entities.Ticket) {
	if resp, ok := m.responder.Match(t.GuildID, t.Reason); ok {
		if err := m.platform.PostResponse(ctx, t.ChannelID, resp); err != nil {
			l.Warn("Error posting keyword response", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	_, err := m.responder.RequestTraining(ctx, responder.Request{
		GuildID:      t.GuildID,
		ChannelID:    t.ChannelID,
		CreatorID:    t.CreatorID,
		Reason:       t.Reason,
		TicketNumber: t.Number,
	})
	if err != nil {
		l.Warn("Error requesting training", slog.String(logging.KeyError, err.Error()))
	}
}

// isStaff reports whether the actor may manage the ticket.
func isStaff(cfg *entities.ServerConfig, t *entities.Ticket, a *Actor) bool {
	if a.IsAdmin {
		return true
	}
	if entities.IsSet(t.StaffRoleID) && slices.Contains(a.RoleIDs, t.StaffRoleID) {
		return true
	}
	return entities.IsSet(cfg.StaffRoleID) && slices.Contains(a.RoleIDs, cfg.StaffRoleID)
}

// Lookup returns a copy of the live ticket that owns the channel.
func (m *Manager) Lookup(guildID, channelID string) (*entities.Ticket, error) {
	var t *entities.Ticket
	m.doc.View(func(doc *entities.TicketDocument) {
		if ledger, ok := doc.Servers[guildID]; ok {
			if found, ok := ledger.ByChannel(channelID); ok && found.State.Live() {
				cp := *found
				t = &cp
			}
		}
	})
	if t == nil {
		return nil, fmt.Errorf("%w: no ticket in channel %s", errs.ErrNotFound, channelID)
	}
	return t, nil
}

// Authorize returns the live ticket of the channel if the actor is staff for it.
func (m *Manager) Authorize(ctx context.Context, guildID, channelID string, actor *Actor) (*entities.Ticket, error) {
	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, err
	}
	t, err := m.Lookup(guildID, channelID)
	if err != nil {
		return nil, err
	}
	if !isStaff(cfg, t, actor) {
		return nil, fmt.Errorf("%w: %s is not staff for %s", errs.ErrUnauthorized, actor.ID, t.Name())
	}
	return t, nil
}

// Claim assigns the ticket to the actor. A claimed ticket is never reassigned.
func (m *Manager) Claim(ctx context.Context, guildID, channelID string, actor *Actor) (*entities.Ticket, error) {
	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var claimed entities.Ticket
	err = m.doc.Update(ctx, func(doc *entities.TicketDocument) error {
		t, ok := doc.Ledger(guildID).ByChannel(channelID)
		if !ok || !t.State.Live() {
			return fmt.Errorf("%w: no ticket in channel %s", errs.ErrNotFound, channelID)
		}
		if !isStaff(cfg, t, actor) {
			return fmt.Errorf("%w: %s is not staff for %s", errs.ErrUnauthorized, actor.ID, t.Name())
		}
		if t.ClaimedBy != "" {
			return fmt.Errorf("%w: claimed by %s", errs.ErrAlreadyClaimed, t.ClaimedBy)
		}
		t.ClaimedBy = actor.ID
		t.State = entities.TicketStateClaimed
		claimed = *t
		return nil
	})
	if err != nil {
		return nil, err
	}

	l := m.l.With(slog.String(logging.KeyGuild, guildID), slog.String(logging.KeyTicket, claimed.Name()))
	if err := m.platform.GrantClaimant(ctx, channelID, actor.ID); err != nil {
		l.Warn("Error granting claimant access", slog.String(logging.KeyError, err.Error()))
	}
	if claimed.ControlMessageID != "" {
		if err := m.platform.DisableControls(ctx, channelID, claimed.ControlMessageID, true); err != nil {
			l.Warn("Error disabling claim button", slog.String(logging.KeyError, err.Error()))
		}
	}
	if err := m.platform.AnnounceClaim(ctx, channelID, actor.ID); err != nil {
		l.Warn("Error announcing claim", slog.String(logging.KeyError, err.Error()))
	}

	m.publish(ctx, events.TicketClaimed, &claimed, actor.ID, "")

	l.Info("Ticket claimed", slog.String(logging.KeyUser, actor.ID))
	return &claimed, nil
}

// Close moves the ticket to closing, waits the close delay and runs the close sequence. Only
// authorization and lookup failures are returned; the rest of the sequence is best-effort.
func (m *Manager) Close(ctx context.Context, req *CloseRequest) (*Summary, error) {
	cfg, err := m.configs.GetOrCreate(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	var t entities.Ticket
	err = m.doc.Update(ctx, func(doc *entities.TicketDocument) error {
		st, ok := doc.Ledger(req.GuildID).ByChannel(req.ChannelID)
		if !ok || !st.State.Live() {
			return fmt.Errorf("%w: no ticket in channel %s", errs.ErrNotFound, req.ChannelID)
		}
		if !isStaff(cfg, st, &req.Actor) {
			return fmt.Errorf("%w: %s is not staff for %s", errs.ErrUnauthorized, req.Actor.ID, st.Name())
		}
		st.State = entities.TicketStateClosing
		st.ClosedBy = req.Actor.ID
		st.CloseReason = req.Reason
		t = *st
		return nil
	})
	if err != nil {
		return nil, err
	}

	l := m.l.With(slog.String(logging.KeyGuild, req.GuildID), slog.String(logging.KeyTicket, t.Name()))

	delay := req.Delay
	if delay <= 0 {
		delay = DefaultCloseDelay
	}
	if err := m.platform.AnnounceClose(ctx, req.ChannelID, req.Actor.ID, delay); err != nil {
		l.Warn("Error announcing close", slog.String(logging.KeyError, err.Error()))
	}
	m.sleep(ctx, delay)

	// Step 1: disable the controls. The channel may already be gone.
	if t.ControlMessageID != "" {
		if err := m.platform.DisableControls(ctx, req.ChannelID, t.ControlMessageID, false); err != nil {
			l.Warn("Error disabling ticket controls", slog.String(logging.KeyError, err.Error()))
		}
	}

	// Step 2: transcript.
	closedAt := m.now().UTC()
	history, err := m.platform.History(ctx, req.ChannelID)
	if err != nil {
		l.Warn("Error reading ticket history", slog.String(logging.KeyError, err.Error()))
		history = nil
	}

	closer := req.Actor.Name
	if closer == "" {
		closer = req.Actor.ID
	}
	transcript := RenderTranscript(&TranscriptHeader{
		TicketName: t.Name(),
		ServerName: m.platform.GuildName(ctx, req.GuildID),
		Creator:    fmt.Sprintf("%s (%s)", t.CreatorName, t.CreatorID),
		ClosedBy:   fmt.Sprintf("%s (%s)", closer, req.Actor.ID),
		Reason:     req.Reason,
	}, history)

	fileName := TranscriptFileName(t.PanelKey, t.Number, closedAt)
	if err := m.transcripts.Save(ctx, fileName, transcript); err != nil {
		l.Error("Error saving transcript", slog.String(logging.KeyError, err.Error()))
	}

	// Step 3: summary to the log channel and the creator.
	summary := &Summary{
		TicketName: t.Name(),
		Number:     t.Number,
		OpenerID:   t.CreatorID,
		CloserID:   req.Actor.ID,
		ClaimedBy:  t.ClaimedBy,
		Reason:     req.Reason,
		Transcript: fileName,
	}
	if !t.CreatedAt.IsZero() {
		summary.OpenDuration = closedAt.Sub(t.CreatedAt.Time()).Round(time.Second)
	}
	if summary.ClaimedBy == "" {
		summary.ClaimedBy = NotClaimed
	}
	if summary.Reason == "" {
		summary.Reason = NoReason
	}

	if entities.IsSet(cfg.LogChannelID) {
		if err := m.platform.SendSummary(ctx, cfg.LogChannelID, summary); err != nil {
			l.Warn("Error sending close summary", slog.String(logging.KeyError, err.Error()))
		}
	}
	if err := m.platform.DirectSummary(ctx, t.CreatorID, summary); err != nil {
		l.Debug("Could not send close summary to creator", slog.String(logging.KeyError, err.Error()))
	}

	// Step 4: delete the channel and finish the record.
	if err := m.platform.DeleteChannel(ctx, req.ChannelID); err != nil {
		l.Error("Error deleting ticket channel, channel is orphaned", slog.String(logging.KeyError, err.Error()))
	}

	err = m.update(ctx, req.GuildID, t.Number, func(st *entities.Ticket) error {
		st.State = entities.TicketStateDeleted
		st.ClosedAt = custom.NewDatetime(closedAt)
		return nil
	})
	if err != nil {
		l.Error("Error storing closed ticket", slog.String(logging.KeyError, err.Error()))
	}

	m.publish(ctx, events.TicketClosed, &t, req.Actor.ID, req.Reason)

	l.Info("Ticket closed", slog.String(logging.KeyUser, req.Actor.ID))
	return summary, nil
}

// AddMember gives a user access to the ticket channel.
func (m *Manager) AddMember(ctx context.Context, guildID, channelID string, actor *Actor, userID string) (*entities.Ticket, error) {
	return m.member(ctx, guildID, channelID, actor, userID, true)
}

// RemoveMember takes a user's access to the ticket channel away.
func (m *Manager) RemoveMember(ctx context.Context, guildID, channelID string, actor *Actor, userID string) (*entities.Ticket, error) {
	return m.member(ctx, guildID, channelID, actor, userID, false)
}

func (m *Manager) member(ctx context.Context, guildID, channelID string, actor *Actor, userID string, add bool) (*entities.Ticket, error) {
	t, err := m.Authorize(ctx, guildID, channelID, actor)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: no user given", errs.ErrInvalidValue)
	}

	action := LogMemberAdded
	if add {
		err = m.platform.SetMemberAccess(ctx, channelID, userID)
	} else {
		action = LogMemberRemoved
		err = m.platform.RemoveMemberAccess(ctx, channelID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: error changing channel access: %w", errs.ErrDependencyUnavailable, err)
	}

	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err == nil && entities.IsSet(cfg.LogChannelID) {
		err = m.platform.LogTicket(ctx, cfg.LogChannelID, &LogEntry{Action: action, Ticket: t, ActorID: actor.ID, TargetID: userID})
	}
	if err != nil {
		m.l.Warn("Error logging member change",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyTicket, t.Name()),
			slog.String(logging.KeyError, err.Error()))
	}
	return t, nil
}

func (m *Manager) put(ctx context.Context, t *entities.Ticket) error {
	return m.doc.Update(ctx, func(doc *entities.TicketDocument) error {
		cp := *t
		doc.Ledger(t.GuildID).Put(&cp)
		return nil
	})
}

var errTicketMissing = errors.New("ticket record missing")

func (m *Manager) update(ctx context.Context, guildID string, number int, fn func(t *entities.Ticket) error) error {
	return m.doc.Update(ctx, func(doc *entities.TicketDocument) error {
		t, ok := doc.Ledger(guildID).Get(number)
		if !ok {
			return errTicketMissing
		}
		return fn(t)
	})
}

func (m *Manager) publish(ctx context.Context, typ string, t *entities.Ticket, actorID, reason string) {
	m.publisher.Publish(ctx, events.Event{
		Type:         typ,
		GuildID:      t.GuildID,
		TicketNumber: t.Number,
		TicketName:   t.Name(),
		ChannelID:    t.ChannelID,
		ActorID:      actorID,
		Reason:       reason,
		OccurredAt:   m.now().UTC(),
	})
}
