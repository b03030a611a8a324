package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/prompt"
	"github.com/Jacobbrewer1/ticketeer/pkg/tickets"
)

const (
	// reasonMinLength and reasonMaxLength bound the reason given when opening a ticket.
	reasonMinLength = 10
	reasonMaxLength = 1500

	// closeReasonMaxLength bounds the reason given when closing a ticket.
	closeReasonMaxLength = 1000
)

// ticketOpenButton asks for the ticket reason of an enabled panel.
func ticketOpenButton(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	_, key := splitCustomID(i.MessageComponentData().CustomID)

	cfg, err := a.Configs().GetOrCreate(ctx, i.GuildID)
	if err != nil {
		return err
	}
	p, ok := cfg.Panels[key]
	if !ok {
		return fmt.Errorf("%w: panel %q", errs.ErrNotFound, key)
	}
	if !p.Enabled {
		return fmt.Errorf("%w: panel %q is disabled", errs.ErrInvalidValue, key)
	}

	msgs := a.Messages()
	return respondModal(a, i, joinCustomID(CustomIDTicketReason, key), msgs.T(messages.TicketModalTitle, "label", p.Label),
		discordgo.TextInput{
			CustomID:    inputReason,
			Label:       msgs.T(messages.TicketReasonLabel),
			Style:       discordgo.TextInputParagraph,
			Placeholder: msgs.T(messages.TicketReasonPlaceholder),
			Required:    true,
			MinLength:   reasonMinLength,
			MaxLength:   reasonMaxLength,
		},
	)
}

// ticketReasonModal opens the ticket once the reason is submitted.
func ticketReasonModal(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	data := i.ModalSubmitData()
	_, key := splitCustomID(data.CustomID)
	actor := actorFrom(i)

	if !a.TicketLimiter().Allow(i.GuildID, actor.ID) {
		return errRateLimited
	}

	// Creating the channel and posting the welcome message can outlast the response window.
	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring ticket creation: %w", err)
	}

	t, err := a.Tickets().Create(ctx, &tickets.CreateRequest{
		GuildID:     i.GuildID,
		PanelKey:    key,
		CreatorID:   actor.ID,
		CreatorName: actor.Name,
		Reason:      modalValues(data)[inputReason],
	})
	if err != nil {
		if errs.IsValidation(err) {
			a.TicketLimiter().Release(i.GuildID, actor.ID)
		}
		return err
	}

	monitoring.TicketsTotal.WithLabelValues("created").Inc()
	return followupEphemeral(a, i, a.Messages().T(messages.TicketCreated, "channel", t.ChannelID))
}

func ticketClaimButton(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	if _, err := a.Tickets().Claim(ctx, i.GuildID, i.ChannelID, actorFrom(i)); err != nil {
		return err
	}

	monitoring.TicketsTotal.WithLabelValues("claimed").Inc()
	return respondEphemeral(a, i, a.Messages().T(messages.TicketClaimAck))
}

// ticketCloseButton asks the staff member to confirm the close. The ticket is closed once the
// prompt is confirmed.
func ticketCloseButton(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	actor := actorFrom(i)
	if _, err := a.Tickets().Authorize(ctx, i.GuildID, i.ChannelID, actor); err != nil {
		return err
	}

	msgs := a.Messages()
	pid, result := a.ClosePrompts().Open()
	err := a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{{
				Title:       msgs.T(messages.TicketConfirmTitle),
				Description: msgs.T(messages.TicketConfirm),
				Color:       a.Configs().ResolveColor(ctx, i.GuildID, entities.ColorWarning),
			}},
			Components: []discordgo.MessageComponent{closeConfirmRow(msgs, pid)},
		},
	})
	if err != nil {
		a.ClosePrompts().Cancel(pid)
		return fmt.Errorf("error sending close confirmation: %w", err)
	}

	go awaitClose(a, i, actor, result)
	return nil
}

// closeConfirmRow holds the confirm and cancel buttons of a close prompt.
func closeConfirmRow(msgs *messages.Catalog, pid string) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Label:    msgs.T(messages.TicketConfirmButton),
			Style:    discordgo.DangerButton,
			Emoji:    discordgo.ComponentEmoji{Name: CloseEmoji},
			CustomID: joinCustomID(CustomIDTicketCloseConfirm, pid),
		},
		discordgo.Button{
			Label:    msgs.T(messages.TicketCancelButton),
			Style:    discordgo.SecondaryButton,
			CustomID: joinCustomID(CustomIDTicketCloseCancel, pid),
		},
	}}
}

// awaitClose closes the ticket once the close prompt is confirmed.
func awaitClose(a IApp, i *discordgo.InteractionCreate, actor *tickets.Actor, result <-chan prompt.Result[struct{}]) {
	l := a.Log().With(slog.String(logging.KeyGuild, i.GuildID), slog.String(logging.KeyChannel, i.ChannelID))

	res := <-result
	switch res.Outcome {
	case prompt.Confirmed:
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		if err := closeTicket(ctx, a, i, actor, "", tickets.DefaultCloseDelay); err != nil {
			if !isUserError(err) {
				l.Error("Error closing ticket", slog.String(logging.KeyError, err.Error()))
			}
			if fErr := followupEphemeral(a, i, errorMessage(a.Messages(), err)); fErr != nil {
				l.Error("Error sending close failure", slog.String(logging.KeyError, fErr.Error()))
			}
		}
	case prompt.TimedOut:
		if err := followupEphemeral(a, i, a.Messages().T(messages.TicketCloseTimedOut)); err != nil {
			l.Debug("Error sending close timeout", slog.String(logging.KeyError, err.Error()))
		}
	}
}

// closeTicket runs the close sequence. It blocks for the close delay.
func closeTicket(ctx context.Context, a IApp, i *discordgo.InteractionCreate, actor *tickets.Actor, reason string, delay time.Duration) error {
	_, err := a.Tickets().Close(ctx, &tickets.CloseRequest{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Actor:     *actor,
		Reason:    reason,
		Delay:     delay,
	})
	if err != nil {
		return err
	}

	monitoring.TicketsTotal.WithLabelValues("closed").Inc()
	return nil
}

func ticketCloseConfirmButton(_ context.Context, a IApp, i *discordgo.InteractionCreate) error {
	_, pid := splitCustomID(i.MessageComponentData().CustomID)
	msgs := a.Messages()

	content := msgs.T(messages.TicketClosing,
		"user", actorFrom(i).ID,
		"seconds", strconv.Itoa(int(tickets.DefaultCloseDelay/time.Second)),
	)
	if !a.ClosePrompts().Resolve(pid, struct{}{}) {
		content = msgs.T(messages.TicketCloseTimedOut)
	}

	return updateMessage(a, i, &discordgo.InteractionResponseData{
		Content:    content,
		Embeds:     []*discordgo.MessageEmbed{},
		Components: []discordgo.MessageComponent{},
	})
}

func ticketCloseCancelButton(_ context.Context, a IApp, i *discordgo.InteractionCreate) error {
	_, pid := splitCustomID(i.MessageComponentData().CustomID)
	a.ClosePrompts().Cancel(pid)

	return updateMessage(a, i, &discordgo.InteractionResponseData{
		Content:    a.Messages().T(messages.TicketCloseCancelled),
		Embeds:     []*discordgo.MessageEmbed{},
		Components: []discordgo.MessageComponent{},
	})
}

// ticketCloseReasonButton asks the staff member for the close reason.
func ticketCloseReasonButton(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	if _, err := a.Tickets().Authorize(ctx, i.GuildID, i.ChannelID, actorFrom(i)); err != nil {
		return err
	}

	msgs := a.Messages()
	return respondModal(a, i, CustomIDTicketCloseSubmit, msgs.T(messages.TicketCloseModal),
		discordgo.TextInput{
			CustomID:  inputReason,
			Label:     msgs.T(messages.TicketCloseReasonLabel),
			Style:     discordgo.TextInputParagraph,
			Required:  true,
			MaxLength: closeReasonMaxLength,
		},
	)
}

// ticketCloseSubmitModal closes the ticket with the submitted reason.
func ticketCloseSubmitModal(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	reason := modalValues(i.ModalSubmitData())[inputReason]

	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring ticket close: %w", err)
	}

	// The close sequence reads the whole channel history and may outlast the interaction.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
	defer cancel()

	return closeTicket(ctx, a, i, actorFrom(i), reason, tickets.ReasonCloseDelay)
}
