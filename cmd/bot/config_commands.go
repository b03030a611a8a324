package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
)

func configSetCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	opts := optionMap(i.ApplicationCommandData().Options)
	setting := opts.String(optSetting)

	if err := a.Configs().SetField(ctx, i.GuildID, setting, opts.String(optValue)); err != nil {
		return err
	}
	return respondEphemeral(a, i, a.Messages().T(messages.ConfigSet, "setting", setting))
}

func configShowCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	cfg, err := a.Configs().GetOrCreate(ctx, i.GuildID)
	if err != nil {
		return err
	}

	msgs := a.Messages()
	embed := infoEmbed(ctx, a, i.GuildID, msgs.T(messages.ConfigShowTitle), "")
	embed.Fields = configFields(msgs, cfg)
	return respondEphemeralEmbed(a, i, embed)
}

// configFields renders a server configuration.
func configFields(msgs *messages.Catalog, cfg *entities.ServerConfig) []*discordgo.MessageEmbedField {
	unset := msgs.T(messages.ConfigUnset)

	panelKeys := make([]string, 0, len(cfg.Panels))
	for k := range cfg.Panels {
		panelKeys = append(panelKeys, k)
	}
	sort.Strings(panelKeys)

	multipanelKeys := make([]string, 0, len(cfg.Multipanels))
	for k := range cfg.Multipanels {
		multipanelKeys = append(multipanelKeys, k)
	}
	sort.Strings(multipanelKeys)

	colorNames := make([]string, 0, len(cfg.EmbedColors))
	for k := range cfg.EmbedColors {
		colorNames = append(colorNames, k)
	}
	sort.Strings(colorNames)

	colors := make([]string, 0, len(colorNames))
	for _, name := range colorNames {
		colors = append(colors, fmt.Sprintf("%s: `#%06X`", name, cfg.EmbedColors[name]))
	}

	return []*discordgo.MessageEmbedField{
		{Name: msgs.T(messages.ConfigLogChannel), Value: mention("<#%s>", cfg.LogChannelID, unset), Inline: true},
		{Name: msgs.T(messages.ConfigStaffRole), Value: mention("<@&%s>", cfg.StaffRoleID, unset), Inline: true},
		{Name: msgs.T(messages.ConfigTrainingChannel), Value: mention("<#%s>", cfg.AITrainingChannelID, unset), Inline: true},
		{Name: msgs.T(messages.ConfigTicketCounter), Value: strconv.Itoa(cfg.TicketCounter), Inline: true},
		{Name: msgs.T(messages.ConfigColors), Value: joinOr(colors, "\n", unset)},
		{Name: msgs.T(messages.ConfigPanels), Value: joinOr(panelKeys, ", ", unset)},
		{Name: msgs.T(messages.ConfigMultipanels), Value: joinOr(multipanelKeys, ", ", unset)},
	}
}

// joinOr joins values, or returns fallback when there are none.
func joinOr(values []string, sep, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return truncate(strings.Join(values, sep), 1024)
}
