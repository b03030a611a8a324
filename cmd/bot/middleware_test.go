package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/permissions"
	"github.com/stretchr/testify/require"
)

func newTestPermissions(t *testing.T) *permissions.Registry {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	b, err := dataaccess.NewFileBackend(l, t.TempDir())
	require.NoError(t, err)

	doc := dataaccess.NewDocument[entities.PermissionDocument](l, b, dataaccess.DocumentPermissions)
	require.NoError(t, doc.Load(context.Background()))
	return permissions.NewRegistry(l, doc)
}

func memberInteraction(guildID, userID string, perms int64) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		GuildID: guildID,
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: userID, Username: "user_" + userID},
			Permissions: perms,
		},
	}}
}

func TestErrorMessage(t *testing.T) {
	msgs, err := messages.Load("en")
	require.NoError(t, err)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not found with detail",
			err:  fmt.Errorf("%w: panel %q", errs.ErrNotFound, "bug"),
			want: `That could not be found: panel "bug"`,
		},
		{
			name: "wrapped not found",
			err:  fmt.Errorf("error creating ticket: %w", fmt.Errorf("%w: category 42", errs.ErrNotFound)),
			want: "That could not be found: category 42",
		},
		{
			name: "invalid value",
			err:  fmt.Errorf("%w: empty panel id", errs.ErrInvalidValue),
			want: "That value is not valid: empty panel id",
		},
		{
			name: "duplicate",
			err:  fmt.Errorf("%w: panel %q", errs.ErrDuplicateID, "bug"),
			want: "That id is already in use.",
		},
		{
			name: "unauthorized",
			err:  fmt.Errorf("%w: administrator required", errs.ErrUnauthorized),
			want: "You do not have permission to do that.",
		},
		{
			name: "already claimed",
			err:  fmt.Errorf("%w: claimed by 1", errs.ErrAlreadyClaimed),
			want: "This ticket has already been claimed.",
		},
		{
			name: "dependency unavailable",
			err:  fmt.Errorf("%w: error sending panels: %w", errs.ErrDependencyUnavailable, errors.New("timeout")),
			want: "Discord did not respond, please try again later.",
		},
		{name: "no permissions", err: permissions.ErrNoPermissions, want: "This user has no permissions configured."},
		{name: "rate limited", err: errRateLimited, want: "You are opening tickets too quickly. Please wait a moment."},
		{name: "not a ticket", err: errNotTicket, want: "This command can only be used in ticket channels."},
		{name: "no panels", err: errNoPanels, want: "No panels configured. Use `/panel_create` first."},
		{name: "guild only", err: errGuildOnly, want: "This command can only be used in a server."},
		{name: "unexpected", err: errors.New("boom"), want: "Something went wrong while processing your request."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, errorMessage(msgs, tt.err))
		})
	}
}

func TestIsUserError(t *testing.T) {
	require.True(t, isUserError(errRateLimited))
	require.True(t, isUserError(permissions.ErrNoPermissions))
	require.True(t, isUserError(fmt.Errorf("%w: x", errs.ErrInvalidValue)))
	require.False(t, isUserError(fmt.Errorf("%w: x", errs.ErrDependencyUnavailable)))
	require.False(t, isUserError(errors.New("boom")))
}

func TestAuthorize(t *testing.T) {
	perms := newTestPermissions(t)
	_, err := perms.Grant(context.Background(), "1", "10", cmdPanelList)
	require.NoError(t, err)

	tests := []struct {
		name       string
		i          *discordgo.InteractionCreate
		permission string
		wantErr    error
	}{
		{
			name:       "direct message",
			i:          &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "10"}}},
			permission: permissionNone,
			wantErr:    errGuildOnly,
		},
		{name: "open route", i: memberInteraction("1", "99", 0), permission: permissionNone},
		{name: "admin route as member", i: memberInteraction("1", "10", 0), permission: permissionAdmin, wantErr: errs.ErrUnauthorized},
		{name: "admin route as admin", i: memberInteraction("1", "99", discordgo.PermissionAdministrator), permission: permissionAdmin},
		{name: "granted command", i: memberInteraction("1", "10", 0), permission: cmdPanelList},
		{name: "other command", i: memberInteraction("1", "10", 0), permission: cmdPanelDelete, wantErr: errs.ErrUnauthorized},
		{name: "no entry", i: memberInteraction("1", "11", 0), permission: cmdPanelList, wantErr: permissions.ErrNoPermissions},
		{name: "admin bypasses registry", i: memberInteraction("1", "11", discordgo.PermissionAdministrator), permission: cmdConfigSet},
		{name: "grant is per guild", i: memberInteraction("2", "10", 0), permission: cmdPanelList, wantErr: permissions.ErrNoPermissions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorize(perms, tt.i, tt.permission)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRoutes_Lookup(t *testing.T) {
	rt := newRoutes()

	interaction := func(typ discordgo.InteractionType, data discordgo.InteractionData) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Type: typ, Data: data}}
	}

	tests := []struct {
		name           string
		i              *discordgo.InteractionCreate
		wantName       string
		wantPermission string
		wantOK         bool
	}{
		{
			name:           "slash command",
			i:              interaction(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{Name: cmdPanelCreate}),
			wantName:       cmdPanelCreate,
			wantPermission: cmdPanelCreate,
			wantOK:         true,
		},
		{
			name:           "panel button",
			i:              interaction(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{CustomID: "ticket_open:bug_report"}),
			wantName:       CustomIDTicketOpen,
			wantPermission: permissionNone,
			wantOK:         true,
		},
		{
			name:           "training modal",
			i:              interaction(discordgo.InteractionModalSubmit, discordgo.ModalSubmitInteractionData{CustomID: "ai_train_submit:train_1"}),
			wantName:       CustomIDTrainSubmit,
			wantPermission: cmdAIKeywords,
			wantOK:         true,
		},
		{
			name:     "unknown component",
			i:        interaction(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{CustomID: "something_else"}),
			wantName: "something_else",
		},
		{
			name: "ping",
			i:    interaction(discordgo.InteractionPing, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, r, ok := rt.lookup(tt.i)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantName, name)
			if ok {
				require.Equal(t, tt.wantPermission, r.permission)
				require.NotNil(t, r.processor)
			}
		})
	}
}

func TestModalValues(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		CustomID: "ai_train_submit:train_1",
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: inputKeywords, Value: "  role, rank "},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: inputResponse, Value: "Ask a moderator."},
			}},
		},
	}

	require.Equal(t, map[string]string{
		inputKeywords: "role, rank",
		inputResponse: "Ask a moderator.",
	}, modalValues(data))

	require.Empty(t, modalValues(discordgo.ModalSubmitInteractionData{}))
}

func TestOptionMap(t *testing.T) {
	opts := optionMap([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: optID, Type: discordgo.ApplicationCommandOptionString, Value: " Bug Report "},
		{Name: optCategory, Type: discordgo.ApplicationCommandOptionChannel, Value: "123"},
		{Name: optEnabled, Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
		{Name: optIndex, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
	})

	require.Equal(t, "Bug Report", opts.String(optID))
	require.Equal(t, "123", opts.ID(optCategory))
	require.True(t, opts.Bool(optEnabled))

	n, ok := opts.Int(optIndex)
	require.True(t, ok)
	require.Equal(t, int64(3), n)

	require.Empty(t, opts.String(optLabel))
	require.Empty(t, opts.ID(optStaffRole))
	require.False(t, opts.Bool(optLabel))
	_, ok = opts.Int(optLabel)
	require.False(t, ok)
}

func TestActorFrom(t *testing.T) {
	i := memberInteraction("1", "10", discordgo.PermissionAdministrator)
	i.Member.Roles = []string{"500"}

	actor := actorFrom(i)
	require.Equal(t, "10", actor.ID)
	require.Equal(t, "user_10", actor.Name)
	require.True(t, actor.IsAdmin)
	require.Equal(t, []string{"500"}, actor.RoleIDs)

	dm := actorFrom(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "7"}}})
	require.Equal(t, "7", dm.ID)
	require.False(t, dm.IsAdmin)
}
