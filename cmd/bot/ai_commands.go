package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
)

func aiKeywordsCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		return fmt.Errorf("%w: missing sub command", errs.ErrInvalidValue)
	}

	sub := opts[0]
	switch sub.Name {
	case subCmdKeywordsList:
		return aiKeywordsList(ctx, a, i)
	case subCmdKeywordsRemove:
		index, _ := optionMap(sub.Options).Int(optIndex)
		return aiKeywordsRemove(ctx, a, i, int(index))
	default:
		return fmt.Errorf("%w: unknown sub command %q", errs.ErrInvalidValue, sub.Name)
	}
}

func aiKeywordsList(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	msgs := a.Messages()
	rules := a.Responder().Rules(i.GuildID)

	embed := infoEmbed(ctx, a, i.GuildID, msgs.T(messages.AIListTitle), "")
	if len(rules) == 0 {
		embed.Description = msgs.T(messages.AIListEmpty)
	} else {
		embed.Fields = ruleFields(rules)
	}
	return respondEphemeralEmbed(a, i, embed)
}

// ruleFields numbers the rules from 1 in list order, the number is what ai_keywords remove takes.
func ruleFields(rules entities.KeywordRules) []*discordgo.MessageEmbedField {
	fields := make([]*discordgo.MessageEmbedField, 0, min(len(rules), maxEmbedFields))
	for j, r := range rules {
		if len(fields) == maxEmbedFields {
			break
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  truncate(fmt.Sprintf("%d. %s", j+1, r.Keywords), 256),
			Value: truncate(r.Response, 1024),
		})
	}
	return fields
}

// aiKeywordsRemove removes the rule with the 1-based index shown by the list.
func aiKeywordsRemove(ctx context.Context, a IApp, i *discordgo.InteractionCreate, index int) error {
	removed, err := a.Responder().RemoveRule(ctx, i.GuildID, index-1)
	if err != nil {
		return err
	}

	a.Log().Info("Removed keyword rule",
		slog.String(logging.KeyGuild, i.GuildID),
		slog.String("keywords", removed.Keywords),
	)
	return respondEphemeral(a, i, a.Messages().T(messages.AIRemoved,
		"index", strconv.Itoa(index),
		"keywords", removed.Keywords,
	))
}
