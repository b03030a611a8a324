package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/guildconfig"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/panels"
	"github.com/Jacobbrewer1/ticketeer/pkg/tickets"
)

const (
	// ClaimEmoji is the emoji that will be used for the claim button. (Ticket)
	ClaimEmoji = "\U0001F3AB"

	// CloseEmoji is the emoji that will be used for the close button. (Padlock)
	CloseEmoji = "\U0001F510"

	// CloseReasonEmoji is the emoji that will be used for the close with reason button. (Memo)
	CloseReasonEmoji = "\U0001F4DD"

	// TrainEmoji is the emoji that will be used for the train button. (Brain)
	TrainEmoji = "\U0001F9E0"

	// DismissEmoji is the emoji that will be used for the dismiss button. (Cross)
	DismissEmoji = "\u274C"
)

const (
	// historyPageSize is the largest page the channel messages endpoint returns.
	historyPageSize = 100

	// maxButtonsPerRow and maxRows are the component limits of a message.
	maxButtonsPerRow = 5
	maxRows          = 5
)

// memberAccess is what a user added to a ticket can do.
const memberAccess = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionAttachFiles |
	discordgo.PermissionEmbedLinks

// discordPlatform carries out ticket, panel and training side effects on Discord.
type discordPlatform struct {
	// l is the logger.
	l *slog.Logger

	// s is the discord session.
	s *discordgo.Session

	// msgs is the message catalog.
	msgs *messages.Catalog

	// configs resolves embed colors.
	configs *guildconfig.Registry
}

// NewDiscordPlatform creates the Discord side effect adapter.
func NewDiscordPlatform(l *slog.Logger, s *discordgo.Session, msgs *messages.Catalog, configs *guildconfig.Registry) *discordPlatform {
	return &discordPlatform{
		l:       l,
		s:       s,
		msgs:    msgs,
		configs: configs,
	}
}

// isUnknown reports whether err is Discord saying the referenced entity does not exist.
func isUnknown(err error) bool {
	restErr := new(discordgo.RESTError)
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownRole,
			discordgo.ErrCodeUnknownUser,
			discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownMessage:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// color resolves a palette color for the guild that owns the channel. Channels that are not cached
// use the default palette.
func (p *discordPlatform) color(ctx context.Context, guildID, channelID, name string) int {
	if guildID == "" && channelID != "" {
		if ch, err := p.s.State.Channel(channelID); err == nil {
			guildID = ch.GuildID
		}
	}
	if guildID == "" {
		if c, ok := entities.DefaultEmbedColors()[name]; ok {
			return c
		}
		return entities.FallbackColor
	}
	return p.configs.ResolveColor(ctx, guildID, name)
}

func (p *discordPlatform) CategoryExists(ctx context.Context, guildID, categoryID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ch, err := p.s.State.Channel(categoryID)
	if err != nil {
		ch, err = p.s.Channel(categoryID)
	}
	if err != nil {
		if isUnknown(err) {
			return false, nil
		}
		return false, fmt.Errorf("error getting channel: %w", err)
	}
	return ch.Type == discordgo.ChannelTypeGuildCategory && ch.GuildID == guildID, nil
}

func (p *discordPlatform) RoleExists(ctx context.Context, guildID, roleID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := p.s.State.Role(guildID, roleID); err == nil {
		return true, nil
	}

	roles, err := p.s.GuildRoles(guildID)
	if err != nil {
		if isUnknown(err) {
			return false, nil
		}
		return false, fmt.Errorf("error getting roles: %w", err)
	}
	return slices.ContainsFunc(roles, func(r *discordgo.Role) bool { return r.ID == roleID }), nil
}

func (p *discordPlatform) GuildName(_ context.Context, guildID string) string {
	if g, err := p.s.State.Guild(guildID); err == nil && g.Name != "" {
		return g.Name
	}
	g, err := p.s.Guild(guildID)
	if err != nil {
		return guildID
	}
	return g.Name
}

func (p *discordPlatform) CreateTicketChannel(ctx context.Context, spec *tickets.ChannelSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	overwrites := []*discordgo.PermissionOverwrite{
		// Deny @everyone from seeing the ticket.
		{
			ID:   spec.GuildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		// The creator of the ticket can see the ticket.
		{
			ID:    spec.CreatorID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		},
		// Add the staff role.
		{
			ID:    spec.StaffRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		},
	}
	if p.s.State != nil && p.s.State.User != nil {
		// The bot keeps access so it can manage and later delete the channel.
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    p.s.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionAllText | discordgo.PermissionManageChannels,
		})
	}

	ch, err := p.s.GuildChannelCreateComplex(spec.GuildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                spec.Topic,
		PermissionOverwrites: overwrites,
		ParentID:             spec.CategoryID,
	})
	if err != nil {
		return "", fmt.Errorf("error creating channel: %w", err)
	}
	return ch.ID, nil
}

// controlRow is the row of ticket controls on the welcome message.
func (p *discordPlatform) controlRow(claimDisabled, closeDisabled bool) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    p.msgs.T(messages.TicketClaimButton),
				Style:    discordgo.SuccessButton,
				Disabled: claimDisabled,
				Emoji:    discordgo.ComponentEmoji{Name: ClaimEmoji},
				CustomID: CustomIDTicketClaim,
			},
			discordgo.Button{
				Label:    p.msgs.T(messages.TicketCloseButton),
				Style:    discordgo.DangerButton,
				Disabled: closeDisabled,
				Emoji:    discordgo.ComponentEmoji{Name: CloseEmoji},
				CustomID: CustomIDTicketClose,
			},
			discordgo.Button{
				Label:    p.msgs.T(messages.TicketCloseReasonButton),
				Style:    discordgo.SecondaryButton,
				Disabled: closeDisabled,
				Emoji:    discordgo.ComponentEmoji{Name: CloseReasonEmoji},
				CustomID: CustomIDTicketCloseReason,
			},
		},
	}
}

func (p *discordPlatform) SendWelcome(ctx context.Context, t *entities.Ticket) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg, err := p.s.ChannelMessageSendComplex(t.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s> <@&%s>", t.CreatorID, t.StaffRoleID),
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       fmt.Sprintf("%s | %s", t.PanelLabel, t.Name()),
				Description: p.msgs.T(messages.TicketWelcome),
				Color:       p.color(ctx, t.GuildID, "", entities.ColorDefault),
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:  p.msgs.T(messages.TicketReasonField),
						Value: truncate(t.Reason, 1024),
					},
				},
				Timestamp: t.CreatedAt.Time().Format(time.RFC3339),
			},
		},
		Components: []discordgo.MessageComponent{
			p.controlRow(false, false),
		},
	})
	if err != nil {
		return "", fmt.Errorf("error sending welcome message: %w", err)
	}
	return msg.ID, nil
}

// notice sends a single embed into a channel.
func (p *discordPlatform) notice(ctx context.Context, channelID, colorName, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Description: text,
				Color:       p.color(ctx, "", channelID, colorName),
			},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

func (p *discordPlatform) PostResponse(ctx context.Context, channelID, response string) error {
	return p.notice(ctx, channelID, entities.ColorInfo, p.msgs.T(messages.TicketAIResponse, "response", response))
}

func (p *discordPlatform) LogTicket(ctx context.Context, logChannelID string, e *tickets.LogEntry) error {
	var text string
	switch e.Action {
	case tickets.LogCreated:
		text = p.msgs.T(messages.LogCreated, "ticket", e.Ticket.Name(), "user", e.ActorID, "channel", e.Ticket.ChannelID)
	case tickets.LogMemberAdded:
		text = p.msgs.T(messages.LogMemberAdded, "actor", e.ActorID, "user", e.TargetID, "ticket", e.Ticket.Name())
	case tickets.LogMemberRemoved:
		text = p.msgs.T(messages.LogMemberRemoved, "actor", e.ActorID, "user", e.TargetID, "ticket", e.Ticket.Name())
	default:
		return fmt.Errorf("unknown log action %q", e.Action)
	}
	return p.notice(ctx, logChannelID, entities.ColorInfo, text)
}

func (p *discordPlatform) GrantClaimant(ctx context.Context, channelID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.s.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember, discordgo.PermissionAllText, 0); err != nil {
		return fmt.Errorf("error setting claimant permissions: %w", err)
	}
	return nil
}

func (p *discordPlatform) AnnounceClaim(ctx context.Context, channelID, userID string) error {
	return p.notice(ctx, channelID, entities.ColorSuccess, p.msgs.T(messages.TicketClaimed, "user", userID))
}

func (p *discordPlatform) DisableControls(ctx context.Context, channelID, messageID string, claimOnly bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Get the message so its content and embeds are kept.
	msg, err := p.s.ChannelMessage(channelID, messageID)
	if err != nil {
		return fmt.Errorf("error getting message: %w", err)
	}

	content := msg.Content
	if _, err := p.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
		Content: &content,
		Embeds:  msg.Embeds,
		Components: []discordgo.MessageComponent{
			p.controlRow(true, !claimOnly),
		},
	}); err != nil {
		return fmt.Errorf("error editing message: %w", err)
	}
	return nil
}

func (p *discordPlatform) AnnounceClose(ctx context.Context, channelID, actorID string, delay time.Duration) error {
	seconds := strconv.Itoa(int(delay.Round(time.Second) / time.Second))
	return p.notice(ctx, channelID, entities.ColorWarning, p.msgs.T(messages.TicketClosing, "user", actorID, "seconds", seconds))
}

func (p *discordPlatform) History(ctx context.Context, channelID string) ([]tickets.HistoryMessage, error) {
	var (
		all    []*discordgo.Message
		before string
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Pages come back newest first.
		page, err := p.s.ChannelMessages(channelID, historyPageSize, before, "", "")
		if err != nil {
			return nil, fmt.Errorf("error getting channel messages: %w", err)
		}
		all = append(all, page...)
		if len(page) < historyPageSize {
			break
		}
		before = page[len(page)-1].ID
	}

	out := make([]tickets.HistoryMessage, 0, len(all))
	for j := len(all) - 1; j >= 0; j-- {
		m := all[j]
		author := "unknown"
		if m.Author != nil {
			author = m.Author.Username
		}
		out = append(out, tickets.HistoryMessage{
			Author:                 author,
			Content:                m.Content,
			Timestamp:              m.Timestamp,
			HasEmbedsOrAttachments: len(m.Embeds) > 0 || len(m.Attachments) > 0,
		})
	}
	return out, nil
}

func (p *discordPlatform) summaryEmbed(ctx context.Context, channelID string, s *tickets.Summary) *discordgo.MessageEmbed {
	claimed := p.msgs.T(messages.SummaryNotClaimed)
	if s.ClaimedBy != tickets.NotClaimed {
		claimed = fmt.Sprintf("<@%s>", s.ClaimedBy)
	}
	reason := s.Reason
	if reason == tickets.NoReason {
		reason = p.msgs.T(messages.SummaryNoReason)
	}

	return &discordgo.MessageEmbed{
		Title: p.msgs.T(messages.SummaryTitle),
		Color: p.color(ctx, "", channelID, entities.ColorError),
		Fields: []*discordgo.MessageEmbedField{
			{Name: p.msgs.T(messages.SummaryTicket), Value: fmt.Sprintf("%s (#%d)", s.TicketName, s.Number), Inline: true},
			{Name: p.msgs.T(messages.SummaryOpener), Value: fmt.Sprintf("<@%s>", s.OpenerID), Inline: true},
			{Name: p.msgs.T(messages.SummaryCloser), Value: fmt.Sprintf("<@%s>", s.CloserID), Inline: true},
			{Name: p.msgs.T(messages.SummaryDuration), Value: s.OpenDuration.String(), Inline: true},
			{Name: p.msgs.T(messages.SummaryClaimed), Value: claimed, Inline: true},
			{Name: p.msgs.T(messages.SummaryReason), Value: truncate(reason, 1024)},
			{Name: p.msgs.T(messages.SummaryTranscript), Value: s.Transcript},
		},
	}
}

func (p *discordPlatform) SendSummary(ctx context.Context, channelID string, s *tickets.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.s.ChannelMessageSendEmbed(channelID, p.summaryEmbed(ctx, channelID, s)); err != nil {
		return fmt.Errorf("error sending summary: %w", err)
	}
	return nil
}

func (p *discordPlatform) DirectSummary(ctx context.Context, userID string, s *tickets.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dm, err := p.s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("error opening direct message channel: %w", err)
	}
	if _, err := p.s.ChannelMessageSendEmbed(dm.ID, p.summaryEmbed(ctx, "", s)); err != nil {
		return fmt.Errorf("error sending direct summary: %w", err)
	}
	return nil
}

func (p *discordPlatform) DeleteChannel(ctx context.Context, channelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.s.ChannelDelete(channelID); err != nil {
		return fmt.Errorf("error deleting channel: %w", err)
	}
	return nil
}

func (p *discordPlatform) SetMemberAccess(ctx context.Context, channelID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.s.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember, memberAccess, 0); err != nil {
		return fmt.Errorf("error setting member permissions: %w", err)
	}
	return nil
}

func (p *discordPlatform) RemoveMemberAccess(ctx context.Context, channelID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.s.ChannelPermissionDelete(channelID, userID); err != nil {
		return fmt.Errorf("error removing member permissions: %w", err)
	}
	return nil
}

// SendPanels renders a panel view with one button per panel.
func (p *discordPlatform) SendPanels(ctx context.Context, guildID, channelID string, v *panels.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Color: p.color(ctx, guildID, "", entities.ColorDefault),
	}
	switch v.Kind {
	case panels.ViewPanel:
		embed.Title = v.Panels[0].Panel.Label
		embed.Description = v.Panels[0].Panel.Description
	case panels.ViewMultipanel:
		embed.Title = p.msgs.T(messages.MultipanelTitle)
		embed.Description = panelList(v.Panels)
	default:
		embed.Title = p.msgs.T(messages.SetupTitle)
		embed.Description = p.msgs.T(messages.SetupDescription) + "\n\n" + panelList(v.Panels)
	}

	_, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: panelButtons(v.Panels),
	})
	if err != nil {
		return fmt.Errorf("error sending panel message: %w", err)
	}
	return nil
}

// panelList renders one bold label and description per panel.
func panelList(entries []panels.Entry) string {
	var sb strings.Builder
	for j, e := range entries {
		if j > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("**")
		if e.Panel.Emoji != "" {
			sb.WriteString(e.Panel.Emoji + " ")
		}
		sb.WriteString(e.Panel.Label)
		sb.WriteString("**\n")
		sb.WriteString(e.Panel.Description)
	}
	return truncate(sb.String(), 4096)
}

// panelButtons lays the panels out in rows of buttons. Panels past the component limit are dropped.
func panelButtons(entries []panels.Entry) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(entries) && len(rows) < maxRows; start += maxButtonsPerRow {
		end := min(start+maxButtonsPerRow, len(entries))

		buttons := make([]discordgo.MessageComponent, 0, end-start)
		for _, e := range entries[start:end] {
			buttons = append(buttons, discordgo.Button{
				Label:    e.Panel.Label,
				Style:    discordgo.PrimaryButton,
				Emoji:    parseEmoji(e.Panel.Emoji),
				CustomID: joinCustomID(CustomIDTicketOpen, e.Key),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

var customEmojiRegex = regexp.MustCompile(`^<(a?):([A-Za-z0-9_]+):(\d+)>$`)

// parseEmoji turns a unicode emoji or a custom emoji mention such as <:name:123> into a component emoji.
func parseEmoji(s string) discordgo.ComponentEmoji {
	s = strings.TrimSpace(s)
	if m := customEmojiRegex.FindStringSubmatch(s); m != nil {
		return discordgo.ComponentEmoji{
			Name:     m[2],
			ID:       m[3],
			Animated: m[1] == "a",
		}
	}
	return discordgo.ComponentEmoji{Name: s}
}

// NotifyTraining posts a training request with train and dismiss buttons.
func (p *discordPlatform) NotifyTraining(ctx context.Context, guildID, channelID string, pt *entities.PendingTraining) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title: p.msgs.T(messages.TrainingTitle),
				Description: p.msgs.T(messages.TrainingDescription,
					"channel", pt.ChannelID,
					"user", pt.CreatorID,
					"reason", truncate(pt.Reason, 1500),
				),
				Color:     p.color(ctx, guildID, "", entities.ColorWarning),
				Timestamp: pt.CreatedAt.Time().Format(time.RFC3339),
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    p.msgs.T(messages.TrainingTrainButton),
						Style:    discordgo.SuccessButton,
						Emoji:    discordgo.ComponentEmoji{Name: TrainEmoji},
						CustomID: joinCustomID(CustomIDTrain, pt.ID),
					},
					discordgo.Button{
						Label:    p.msgs.T(messages.TrainingDismissButton),
						Style:    discordgo.DangerButton,
						Emoji:    discordgo.ComponentEmoji{Name: DismissEmoji},
						CustomID: joinCustomID(CustomIDDismiss, pt.ID),
					},
				},
			},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		return "", fmt.Errorf("error sending training request: %w", err)
	}
	return msg.ID, nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
