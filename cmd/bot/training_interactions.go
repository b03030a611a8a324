package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
)

// trainButton opens the training modal of a pending request.
func trainButton(_ context.Context, a IApp, i *discordgo.InteractionCreate) error {
	_, id := splitCustomID(i.MessageComponentData().CustomID)
	if _, ok := a.Responder().Pending(i.GuildID, id); !ok {
		return fmt.Errorf("%w: training request %q", errs.ErrNotFound, id)
	}

	msgs := a.Messages()
	return respondModal(a, i, joinCustomID(CustomIDTrainSubmit, id), msgs.T(messages.TrainingModalTitle),
		discordgo.TextInput{
			CustomID:  inputKeywords,
			Label:     msgs.T(messages.TrainingKeywordsLabel),
			Style:     discordgo.TextInputShort,
			Required:  true,
			MaxLength: 200,
		},
		discordgo.TextInput{
			CustomID:  inputResponse,
			Label:     msgs.T(messages.TrainingResponseLabel),
			Style:     discordgo.TextInputParagraph,
			Required:  true,
			MaxLength: 2000,
		},
	)
}

// trainSubmitModal stores the submitted rule and marks the request message as trained.
func trainSubmitModal(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	data := i.ModalSubmitData()
	_, id := splitCustomID(data.CustomID)
	values := modalValues(data)
	userID := actorFrom(i).ID

	if _, err := a.Responder().Train(ctx, i.GuildID, id, values[inputKeywords], values[inputResponse]); err != nil {
		return err
	}

	a.Log().Info("Training request resolved",
		slog.String(logging.KeyGuild, i.GuildID),
		slog.String(logging.KeyUser, userID),
		slog.String("training_id", id),
	)

	msgs := a.Messages()
	if i.Message == nil {
		return respondEphemeral(a, i, msgs.T(messages.TrainingSaved))
	}
	note := msgs.T(messages.TrainingTrained, "user", userID, "keywords", values[inputKeywords])
	return updateMessage(a, i, resolvedTraining(i.Message, a.Configs().ResolveColor(ctx, i.GuildID, entities.ColorSuccess), note))
}

// dismissButton drops a pending request without adding a rule.
func dismissButton(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	_, id := splitCustomID(i.MessageComponentData().CustomID)
	userID := actorFrom(i).ID

	if _, err := a.Responder().Dismiss(ctx, i.GuildID, id); err != nil {
		return err
	}

	msgs := a.Messages()
	if i.Message == nil {
		return respondEphemeral(a, i, msgs.T(messages.TrainingDismissAck))
	}
	note := msgs.T(messages.TrainingDismissed, "user", userID)
	return updateMessage(a, i, resolvedTraining(i.Message, a.Configs().ResolveColor(ctx, i.GuildID, entities.ColorWarning), note))
}

// resolvedTraining is the training request message with its buttons removed and the outcome
// appended to the first embed.
func resolvedTraining(msg *discordgo.Message, color int, note string) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content:    msg.Content,
		Components: []discordgo.MessageComponent{},
	}

	if len(msg.Embeds) == 0 {
		data.Embeds = []*discordgo.MessageEmbed{{Description: note, Color: color}}
		return data
	}

	embed := *msg.Embeds[0]
	embed.Color = color
	embed.Description = truncate(embed.Description+"\n\n"+note, 4096)
	data.Embeds = append([]*discordgo.MessageEmbed{&embed}, msg.Embeds[1:]...)
	return data
}
