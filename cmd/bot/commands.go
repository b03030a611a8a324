package main

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/guildconfig"
	"github.com/Jacobbrewer1/ticketeer/pkg/panels"
	"github.com/Jacobbrewer1/ticketeer/pkg/permissions"
)

// Slash command names. The protected ones double as permission names.
const (
	cmdTicketSetup       = "ticket_setup"
	cmdPanelCreate       = "panel_create"
	cmdPanelDescription  = "panel_description"
	cmdPanelToggle       = "panel_toggle"
	cmdPanelDelete       = "panel_delete"
	cmdPanelList         = "panel_list"
	cmdPanelSend         = "panel_send"
	cmdMultipanelCreate  = "multipanel_create"
	cmdMultipanelDelete  = "multipanel_delete"
	cmdMultipanelList    = "multipanel_list"
	cmdMultipanelSend    = "multipanel_send"
	cmdConfigSet         = "config_set"
	cmdConfigShow        = "config_show"
	cmdAIKeywords        = "ai_keywords"
	cmdAdd               = "add"
	cmdRemove            = "remove"
	cmdPermissionGrant   = "permission_grant"
	cmdPermissionRevoke  = "permission_revoke"
	cmdPermissionList    = "permission_list"
	subCmdKeywordsList   = "list"
	subCmdKeywordsRemove = "remove"
)

// Option names.
const (
	optID          = "id"
	optLabel       = "label"
	optEmoji       = "emoji"
	optCategory    = "category"
	optStaffRole   = "staff_role"
	optDescription = "description"
	optEnabled     = "enabled"
	optSetting     = "setting"
	optValue       = "value"
	optIndex       = "index"
	optUser        = "user"
	optCommand     = "command"
)

// adminOnly hides a command from members without the administrator permission.
var adminOnly = func() *int64 {
	p := int64(discordgo.PermissionAdministrator)
	return &p
}()

func idOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        optID,
		Type:        discordgo.ApplicationCommandOptionString,
		Description: description,
		Required:    true,
		MaxLength:   panels.MaxKeyLength,
	}
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        optUser,
		Type:        discordgo.ApplicationCommandOptionUser,
		Description: description,
		Required:    true,
	}
}

// settingChoices are the settings accepted by config_set.
func settingChoices() []*discordgo.ApplicationCommandOptionChoice {
	settings := []string{
		guildconfig.SettingLogChannel,
		guildconfig.SettingStaffRole,
		guildconfig.SettingTrainingChannel,
	}
	for _, c := range []string{entities.ColorDefault, entities.ColorSuccess, entities.ColorError, entities.ColorWarning, entities.ColorInfo} {
		settings = append(settings, guildconfig.SettingColorPrefix+c)
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(settings))
	for _, s := range settings {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: s, Value: s})
	}
	return choices
}

// permissionChoices are the commands that can be granted, plus the wildcard.
func permissionChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(permissions.ProtectedCommands)+1)
	for _, c := range permissions.ProtectedCommands {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: c, Value: c})
	}
	return append(choices, &discordgo.ApplicationCommandOptionChoice{Name: permissions.Wildcard, Value: permissions.Wildcard})
}

// slashCommands is the command set registered in every guild.
func slashCommands() []*discordgo.ApplicationCommand {
	minIndex := float64(1)

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdTicketSetup,
			Description: "Send the ticket panel with every active panel to this channel.",
		},
		{
			Name:        cmdPanelCreate,
			Description: "Create a ticket panel.",
			Options: []*discordgo.ApplicationCommandOption{
				idOption("The panel id, for example bug_report."),
				{
					Name:        optLabel,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The button label.",
					Required:    true,
					MaxLength:   80,
				},
				{
					Name:        optEmoji,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The button emoji.",
					Required:    true,
				},
				{
					Name:         optCategory,
					Type:         discordgo.ApplicationCommandOptionChannel,
					Description:  "The category new ticket channels are created in.",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
					Required:     true,
				},
				{
					Name:        optStaffRole,
					Type:        discordgo.ApplicationCommandOptionRole,
					Description: "The role handling these tickets. The server staff role is used when empty.",
				},
				{
					Name:        optDescription,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The panel description.",
					MaxLength:   1000,
				},
			},
		},
		{
			Name:        cmdPanelDescription,
			Description: "Change the description of a panel.",
			Options:     []*discordgo.ApplicationCommandOption{idOption("The panel id.")},
		},
		{
			Name:        cmdPanelToggle,
			Description: "Enable or disable a panel.",
			Options: []*discordgo.ApplicationCommandOption{
				idOption("The panel id."),
				{
					Name:        optEnabled,
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Description: "Whether the panel is shown.",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdPanelDelete,
			Description: "Delete a panel.",
			Options:     []*discordgo.ApplicationCommandOption{idOption("The panel id.")},
		},
		{
			Name:        cmdPanelList,
			Description: "List the configured panels.",
		},
		{
			Name:        cmdPanelSend,
			Description: "Send a single panel to this channel.",
			Options:     []*discordgo.ApplicationCommandOption{idOption("The panel id.")},
		},
		{
			Name:        cmdMultipanelCreate,
			Description: "Create a multipanel from existing panels.",
			Options:     []*discordgo.ApplicationCommandOption{idOption("The multipanel id.")},
		},
		{
			Name:        cmdMultipanelDelete,
			Description: "Delete a multipanel.",
			Options:     []*discordgo.ApplicationCommandOption{idOption("The multipanel id.")},
		},
		{
			Name:        cmdMultipanelList,
			Description: "List the configured multipanels.",
		},
		{
			Name:        cmdMultipanelSend,
			Description: "Send a multipanel to this channel.",
			Options:     []*discordgo.ApplicationCommandOption{idOption("The multipanel id.")},
		},
		{
			Name:        cmdConfigSet,
			Description: "Change a server setting.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        optSetting,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The setting to change.",
					Required:    true,
					Choices:     settingChoices(),
				},
				{
					Name:        optValue,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "An id, a mention or a hex color. 0 unsets an id.",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdConfigShow,
			Description: "Show the server configuration.",
		},
		{
			Name:        cmdAIKeywords,
			Description: "Manage the trained keyword rules.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        subCmdKeywordsList,
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "List the keyword rules.",
				},
				{
					Name:        subCmdKeywordsRemove,
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Remove a keyword rule.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        optIndex,
							Type:        discordgo.ApplicationCommandOptionInteger,
							Description: "The rule number shown by the list.",
							Required:    true,
							MinValue:    &minIndex,
						},
					},
				},
			},
		},
		{
			Name:        cmdAdd,
			Description: "Add a user to this ticket.",
			Options:     []*discordgo.ApplicationCommandOption{userOption("The user to add.")},
		},
		{
			Name:        cmdRemove,
			Description: "Remove a user from this ticket.",
			Options:     []*discordgo.ApplicationCommandOption{userOption("The user to remove.")},
		},
		{
			Name:                     cmdPermissionGrant,
			Description:              "Allow a user to run a bot command.",
			DefaultMemberPermissions: adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user."),
				{
					Name:        optCommand,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The command, or all.",
					Required:    true,
					Choices:     permissionChoices(),
				},
			},
		},
		{
			Name:                     cmdPermissionRevoke,
			Description:              "Take a bot command away from a user.",
			DefaultMemberPermissions: adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user."),
				{
					Name:        optCommand,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The command, or all.",
					Required:    true,
					Choices:     permissionChoices(),
				},
			},
		},
		{
			Name:                     cmdPermissionList,
			Description:              "List the delegated permissions.",
			DefaultMemberPermissions: adminOnly,
		},
	}
}

// newRoutes wires every command, component and modal to its processor.
func newRoutes() *routes {
	return &routes{
		commands: map[string]route{
			cmdTicketSetup:      {permission: cmdTicketSetup, processor: ticketSetupCmd},
			cmdPanelCreate:      {permission: cmdPanelCreate, processor: panelCreateCmd},
			cmdPanelDescription: {permission: cmdPanelCreate, processor: panelDescriptionCmd},
			cmdPanelToggle:      {permission: cmdPanelCreate, processor: panelToggleCmd},
			cmdPanelDelete:      {permission: cmdPanelDelete, processor: panelDeleteCmd},
			cmdPanelList:        {permission: cmdPanelList, processor: panelListCmd},
			cmdPanelSend:        {permission: cmdPanelSend, processor: panelSendCmd},
			cmdMultipanelCreate: {permission: cmdMultipanelCreate, processor: multipanelCreateCmd},
			cmdMultipanelDelete: {permission: cmdMultipanelDelete, processor: multipanelDeleteCmd},
			cmdMultipanelList:   {permission: cmdMultipanelList, processor: multipanelListCmd},
			cmdMultipanelSend:   {permission: cmdMultipanelSend, processor: multipanelSendCmd},
			cmdConfigSet:        {permission: cmdConfigSet, processor: configSetCmd},
			cmdConfigShow:       {permission: cmdConfigShow, processor: configShowCmd},
			cmdAIKeywords:       {permission: cmdAIKeywords, processor: aiKeywordsCmd},
			cmdAdd:              {permission: permissionNone, processor: addMemberCmd},
			cmdRemove:           {permission: permissionNone, processor: removeMemberCmd},
			cmdPermissionGrant:  {permission: permissionAdmin, processor: permissionGrantCmd},
			cmdPermissionRevoke: {permission: permissionAdmin, processor: permissionRevokeCmd},
			cmdPermissionList:   {permission: permissionAdmin, processor: permissionListCmd},
		},
		components: map[string]route{
			CustomIDTicketOpen:         {permission: permissionNone, processor: ticketOpenButton},
			CustomIDTicketClaim:        {permission: permissionNone, processor: ticketClaimButton},
			CustomIDTicketClose:        {permission: permissionNone, processor: ticketCloseButton},
			CustomIDTicketCloseReason:  {permission: permissionNone, processor: ticketCloseReasonButton},
			CustomIDTicketCloseConfirm: {permission: permissionNone, processor: ticketCloseConfirmButton},
			CustomIDTicketCloseCancel:  {permission: permissionNone, processor: ticketCloseCancelButton},
			CustomIDMultipanelSelect:   {permission: cmdMultipanelCreate, processor: multipanelSelectMenu},
			CustomIDTrain:              {permission: cmdAIKeywords, processor: trainButton},
			CustomIDDismiss:            {permission: cmdAIKeywords, processor: dismissButton},
		},
		modals: map[string]route{
			CustomIDTicketReason:      {permission: permissionNone, processor: ticketReasonModal},
			CustomIDTicketCloseSubmit: {permission: permissionNone, processor: ticketCloseSubmitModal},
			CustomIDPanelDescription:  {permission: cmdPanelCreate, processor: panelDescriptionModal},
			CustomIDTrainSubmit:       {permission: cmdAIKeywords, processor: trainSubmitModal},
		},
	}
}
