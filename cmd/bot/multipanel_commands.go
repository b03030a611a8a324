package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/panels"
	"github.com/Jacobbrewer1/ticketeer/pkg/prompt"
)

// maxSelectOptions is the number of options a select menu may carry.
const maxSelectOptions = 25

// backgroundTimeout bounds work done after an interaction handler has returned.
const backgroundTimeout = 2 * time.Minute

// multipanelCreateCmd asks for the panels of the new multipanel with a select menu. The
// multipanel is stored once the selection arrives.
func multipanelCreateCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	key := panels.NormalizeKey(optionMap(i.ApplicationCommandData().Options).String(optID))
	if key == "" {
		return fmt.Errorf("%w: empty multipanel id", errs.ErrInvalidValue)
	}

	cfg, err := a.Configs().GetOrCreate(ctx, i.GuildID)
	if err != nil {
		return err
	}
	if len(cfg.Panels) == 0 {
		return errNoPanels
	}
	if _, ok := cfg.Multipanels[key]; ok {
		return fmt.Errorf("%w: multipanel %q", errs.ErrDuplicateID, key)
	}

	entries, err := a.Panels().ListPanels(ctx, i.GuildID)
	if err != nil {
		return err
	}

	msgs := a.Messages()
	pid, result := a.MultipanelPrompts().Open()
	err = a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msgs.T(messages.MultipanelPrompt),
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					panelSelectMenu(joinCustomID(CustomIDMultipanelSelect, pid), msgs.T(messages.MultipanelPlaceholder), entries),
				}},
			},
		},
	})
	if err != nil {
		a.MultipanelPrompts().Cancel(pid)
		return fmt.Errorf("error sending multipanel prompt: %w", err)
	}

	go awaitMultipanel(a, i, key, result)
	return nil
}

// awaitMultipanel stores the multipanel once the prompt is answered.
func awaitMultipanel(a IApp, i *discordgo.InteractionCreate, key string, result <-chan prompt.Result[[]string]) {
	l := a.Log().With(slog.String(logging.KeyGuild, i.GuildID), slog.String("multipanel", key))
	msgs := a.Messages()

	res := <-result
	var content string
	switch res.Outcome {
	case prompt.Confirmed:
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		created, err := a.Panels().CreateMultipanel(ctx, i.GuildID, key, res.Value)
		if err != nil {
			if !isUserError(err) {
				l.Error("Error creating multipanel", slog.String(logging.KeyError, err.Error()))
			}
			content = errorMessage(msgs, err)
			break
		}
		content = msgs.T(messages.MultipanelCreated, "id", created.Key, "count", strconv.Itoa(len(created.Panels)))
	case prompt.TimedOut:
		content = msgs.T(messages.MultipanelTimedOut)
	default:
		return
	}

	if err := followupEphemeral(a, i, content); err != nil {
		l.Error("Error sending multipanel result", slog.String(logging.KeyError, err.Error()))
	}
}

// panelSelectMenu lets the user pick any number of panels.
func panelSelectMenu(customID, placeholder string, entries []panels.Entry) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, 0, min(len(entries), maxSelectOptions))
	for _, e := range entries {
		if len(options) == maxSelectOptions {
			break
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       truncate(e.Panel.Label, 100),
			Value:       e.Key,
			Description: truncate(e.Panel.Description, 100),
			Emoji:       parseEmoji(e.Panel.Emoji),
		})
	}

	minValues := 1
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: placeholder,
		MinValues:   &minValues,
		MaxValues:   len(options),
		Options:     options,
	}
}

// multipanelSelectMenu answers a multipanel prompt with the selected panel keys.
func multipanelSelectMenu(_ context.Context, a IApp, i *discordgo.InteractionCreate) error {
	data := i.MessageComponentData()
	_, pid := splitCustomID(data.CustomID)

	msgs := a.Messages()
	content := msgs.T(messages.MultipanelSelected, "count", strconv.Itoa(len(data.Values)))
	if !a.MultipanelPrompts().Resolve(pid, data.Values) {
		content = msgs.T(messages.MultipanelTimedOut)
	}

	return updateMessage(a, i, &discordgo.InteractionResponseData{
		Content:    content,
		Components: []discordgo.MessageComponent{},
	})
}

func multipanelDeleteCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	key := panels.NormalizeKey(optionMap(i.ApplicationCommandData().Options).String(optID))
	if err := a.Panels().DeleteMultipanel(ctx, i.GuildID, key); err != nil {
		return err
	}
	return respondEphemeral(a, i, a.Messages().T(messages.MultipanelDeleted, "id", key))
}

func multipanelListCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	list, err := a.Panels().ListMultipanels(ctx, i.GuildID)
	if err != nil {
		return err
	}

	msgs := a.Messages()
	embed := infoEmbed(ctx, a, i.GuildID, msgs.T(messages.MultipanelListTitle), "")
	if len(list) == 0 {
		embed.Description = msgs.T(messages.MultipanelListEmpty)
		return respondEphemeralEmbed(a, i, embed)
	}

	embed.Fields = multipanelFields(list)
	return respondEphemeralEmbed(a, i, embed)
}

func multipanelFields(list []panels.Multipanel) []*discordgo.MessageEmbedField {
	fields := make([]*discordgo.MessageEmbedField, 0, min(len(list), maxEmbedFields))
	for _, mp := range list {
		if len(fields) == maxEmbedFields {
			break
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  truncate(mp.Key, 256),
			Value: truncate("`"+strings.Join(mp.Panels, "`, `")+"`", 1024),
		})
	}
	return fields
}

func multipanelSendCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	key := panels.NormalizeKey(optionMap(i.ApplicationCommandData().Options).String(optID))
	if err := a.Panels().SendMultipanel(ctx, i.GuildID, i.ChannelID, key); err != nil {
		return err
	}
	return respondEphemeral(a, i, a.Messages().T(messages.MultipanelSent, "id", key))
}
