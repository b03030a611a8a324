package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/panels"
)

// maxEmbedFields is the number of fields an embed may carry.
const maxEmbedFields = 25

func ticketSetupCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	entries, err := a.Panels().ListPanels(ctx, i.GuildID)
	if err != nil {
		return err
	}
	if !anyEnabled(entries) {
		return errNoPanels
	}

	if err := a.Panels().SendSetup(ctx, i.GuildID, i.ChannelID); err != nil {
		return err
	}
	return respondEphemeral(a, i, a.Messages().T(messages.SetupSent))
}

func anyEnabled(entries []panels.Entry) bool {
	for _, e := range entries {
		if e.Panel.Enabled {
			return true
		}
	}
	return false
}

func panelCreateCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	opts := optionMap(i.ApplicationCommandData().Options)

	key, err := a.Panels().CreatePanel(ctx, i.GuildID, panels.PanelInput{
		ID:          opts.String(optID),
		Label:       opts.String(optLabel),
		Emoji:       opts.String(optEmoji),
		CategoryID:  opts.ID(optCategory),
		StaffRoleID: opts.ID(optStaffRole),
		Description: opts.String(optDescription),
	})
	if err != nil {
		return err
	}
	return respondEphemeral(a, i, a.Messages().T(messages.PanelCreated, "id", key))
}

// panelDescriptionCmd opens a modal prefilled with the current description.
func panelDescriptionCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	key := panels.NormalizeKey(optionMap(i.ApplicationCommandData().Options).String(optID))

	cfg, err := a.Configs().GetOrCreate(ctx, i.GuildID)
	if err != nil {
		return err
	}
	p, ok := cfg.Panels[key]
	if !ok {
		return fmt.Errorf("%w: panel %q", errs.ErrNotFound, key)
	}

	msgs := a.Messages()
	return respondModal(a, i, joinCustomID(CustomIDPanelDescription, key), msgs.T(messages.PanelDescModal),
		discordgo.TextInput{
			CustomID:  inputDescription,
			Label:     msgs.T(messages.PanelDescLabel),
			Style:     discordgo.TextInputParagraph,
			Value:     p.Description,
			Required:  true,
			MaxLength: 1000,
		},
	)
}

func panelDescriptionModal(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	data := i.ModalSubmitData()
	_, key := splitCustomID(data.CustomID)

	if err := a.Panels().SetDescription(ctx, i.GuildID, key, modalValues(data)[inputDescription]); err != nil {
		return err
	}
	return respondEphemeral(a, i, a.Messages().T(messages.PanelDescriptionSet, "id", key))
}

func panelToggleCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	opts := optionMap(i.ApplicationCommandData().Options)
	key := panels.NormalizeKey(opts.String(optID))
	enabled := opts.Bool(optEnabled)

	if err := a.Panels().SetEnabled(ctx, i.GuildID, key, enabled); err != nil {
		return err
	}

	msgs := a.Messages()
	state := msgs.T(messages.PanelDisabled)
	if enabled {
		state = msgs.T(messages.PanelEnabled)
	}
	return respondEphemeral(a, i, msgs.T(messages.PanelToggled, "id", key, "state", state))
}

func panelDeleteCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	key := panels.NormalizeKey(optionMap(i.ApplicationCommandData().Options).String(optID))
	if err := a.Panels().DeletePanel(ctx, i.GuildID, key); err != nil {
		return err
	}

	a.Log().Info("Deleted panel", slog.String(logging.KeyGuild, i.GuildID), slog.String("panel", key))
	return respondEphemeral(a, i, a.Messages().T(messages.PanelDeleted, "id", key))
}

func panelListCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	entries, err := a.Panels().ListPanels(ctx, i.GuildID)
	if err != nil {
		return err
	}

	msgs := a.Messages()
	embed := infoEmbed(ctx, a, i.GuildID, msgs.T(messages.PanelListTitle), "")
	if len(entries) == 0 {
		embed.Description = msgs.T(messages.PanelListEmpty)
		return respondEphemeralEmbed(a, i, embed)
	}

	embed.Fields = panelFields(msgs, entries)
	return respondEphemeralEmbed(a, i, embed)
}

// panelFields renders one embed field per panel.
func panelFields(msgs *messages.Catalog, entries []panels.Entry) []*discordgo.MessageEmbedField {
	fields := make([]*discordgo.MessageEmbedField, 0, min(len(entries), maxEmbedFields))
	for _, e := range entries {
		if len(fields) == maxEmbedFields {
			break
		}

		state := msgs.T(messages.PanelDisabled)
		if e.Panel.Enabled {
			state = msgs.T(messages.PanelEnabled)
		}

		name := strings.TrimSpace(fmt.Sprintf("%s %s (%s)", e.Panel.Emoji, e.Panel.Label, e.Key))
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: truncate(name, 256),
			Value: truncate(msgs.T(messages.PanelListEntry,
				"category", e.Panel.CategoryID,
				"role", mention("<@&%s>", e.Panel.StaffRoleID, msgs.T(messages.PanelDefaultRole)),
				"state", state,
			), 1024),
		})
	}
	return fields
}

func panelSendCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	key := panels.NormalizeKey(optionMap(i.ApplicationCommandData().Options).String(optID))
	if err := a.Panels().SendPanel(ctx, i.GuildID, i.ChannelID, key); err != nil {
		return err
	}
	return respondEphemeral(a, i, a.Messages().T(messages.PanelSent, "id", key))
}
