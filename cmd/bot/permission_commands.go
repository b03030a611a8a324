package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/permissions"
)

func permissionGrantCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	userID, command, err := permissionTarget(i)
	if err != nil {
		return err
	}

	if _, err := a.Permissions().Grant(ctx, i.GuildID, userID, command); err != nil {
		return err
	}
	return respondEphemeral(a, i, a.Messages().T(messages.PermissionGranted, "command", command, "user", userID))
}

func permissionRevokeCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	userID, command, err := permissionTarget(i)
	if err != nil {
		return err
	}

	if _, err := a.Permissions().Revoke(ctx, i.GuildID, userID, command); err != nil {
		return err
	}
	return respondEphemeral(a, i, a.Messages().T(messages.PermissionRevoked, "command", command, "user", userID))
}

// permissionTarget reads the user and command options.
func permissionTarget(i *discordgo.InteractionCreate) (userID, command string, err error) {
	opts := optionMap(i.ApplicationCommandData().Options)
	userID = opts.ID(optUser)
	if userID == "" {
		return "", "", fmt.Errorf("%w: user", errs.ErrNotFound)
	}
	return userID, strings.ToLower(opts.String(optCommand)), nil
}

func permissionListCmd(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error {
	msgs := a.Messages()
	entries := a.Permissions().List(i.GuildID)

	embed := infoEmbed(ctx, a, i.GuildID, msgs.T(messages.PermissionListTitle), "")
	if len(entries) == 0 {
		embed.Description = msgs.T(messages.PermissionListEmpty)
	} else {
		embed.Description = permissionLines(entries)
	}
	return respondEphemeralEmbed(a, i, embed)
}

// permissionLines renders one line per user.
func permissionLines(entries []permissions.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("<@%s>: `%s`", e.UserID, strings.Join(e.Commands, "`, `")))
	}
	return truncate(strings.Join(lines, "\n"), 4096)
}
