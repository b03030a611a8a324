package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
)

func addMemberCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	return memberCmd(ctx, a, i, true)
}

func removeMemberCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	return memberCmd(ctx, a, i, false)
}

// memberCmd adds or removes a user from the ticket owning the channel.
func memberCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate, add bool) error {
	if _, err := a.Tickets().Lookup(i.GuildID, i.ChannelID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errNotTicket
		}
		return err
	}

	userID := optionMap(i.ApplicationCommandData().Options).ID(optUser)
	if userID == "" {
		return fmt.Errorf("%w: user", errs.ErrNotFound)
	}

	actor := actorFrom(i)
	if add {
		if _, err := a.Tickets().AddMember(ctx, i.GuildID, i.ChannelID, actor, userID); err != nil {
			return err
		}
		monitoring.TicketsTotal.WithLabelValues("member_added").Inc()
		return respondPublic(a, i, a.Messages().T(messages.TicketMemberAdded, "user", userID))
	}

	if _, err := a.Tickets().RemoveMember(ctx, i.GuildID, i.ChannelID, actor, userID); err != nil {
		return err
	}
	monitoring.TicketsTotal.WithLabelValues("member_removed").Inc()
	return respondPublic(a, i, a.Messages().T(messages.TicketMemberRemoved, "user", userID))
}
