package tickets

import (
	"context"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/responder"
)

// ChannelSpec describes a ticket channel to create.
type ChannelSpec struct {
	GuildID     string
	CategoryID  string
	Name        string
	Topic       string
	CreatorID   string
	StaffRoleID string
}

// HistoryMessage is a message read back from a ticket channel.
type HistoryMessage struct {
	Author    string
	Content   string
	Timestamp time.Time

	// HasEmbedsOrAttachments is set when the message carries embeds or files.
	HasEmbedsOrAttachments bool
}

// LogAction is a ticket action written to the guild log channel.
type LogAction string

const (
	LogCreated       LogAction = "created"
	LogMemberAdded   LogAction = "member_added"
	LogMemberRemoved LogAction = "member_removed"
)

// LogEntry is a line for the guild log channel.
type LogEntry struct {
	Action   LogAction
	Ticket   *entities.Ticket
	ActorID  string
	TargetID string
}

// Platform is everything the ticket lifecycle needs from the chat platform.
type Platform interface {
	CategoryExists(ctx context.Context, guildID, categoryID string) (bool, error)
	RoleExists(ctx context.Context, guildID, roleID string) (bool, error)
	GuildName(ctx context.Context, guildID string) string

	// CreateTicketChannel creates a channel visible to the creator, the staff role and the bot.
	CreateTicketChannel(ctx context.Context, spec *ChannelSpec) (string, error)

	// SendWelcome posts the welcome message with the ticket controls and returns its ID.
	SendWelcome(ctx context.Context, t *entities.Ticket) (string, error)
	PostResponse(ctx context.Context, channelID, response string) error
	LogTicket(ctx context.Context, logChannelID string, e *LogEntry) error

	GrantClaimant(ctx context.Context, channelID, userID string) error
	AnnounceClaim(ctx context.Context, channelID, userID string) error

	// DisableControls disables the claim button, or every control when claimOnly is false.
	DisableControls(ctx context.Context, channelID, messageID string, claimOnly bool) error
	AnnounceClose(ctx context.Context, channelID, actorID string, delay time.Duration) error

	// History returns the whole channel history, oldest first.
	History(ctx context.Context, channelID string) ([]HistoryMessage, error)
	SendSummary(ctx context.Context, channelID string, s *Summary) error
	DirectSummary(ctx context.Context, userID string, s *Summary) error
	DeleteChannel(ctx context.Context, channelID string) error

	SetMemberAccess(ctx context.Context, channelID, userID string) error
	RemoveMemberAccess(ctx context.Context, channelID, userID string) error
}

// Responder answers ticket reasons.
type Responder interface {
	Match(guildID, text string) (string, bool)
	RequestTraining(ctx context.Context, req responder.Request) (*entities.PendingTraining, error)
}
