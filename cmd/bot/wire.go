//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/Jacobbrewer1/ticketeer/cmd/bot/config"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/guildconfig"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/panels"
	"github.com/Jacobbrewer1/ticketeer/pkg/permissions"
	"github.com/Jacobbrewer1/ticketeer/pkg/responder"
	"github.com/Jacobbrewer1/ticketeer/pkg/tickets"
	"github.com/google/wire"
	"github.com/gorilla/mux"
)

var loggerSet = wire.NewSet(
	wire.Value(logging.Name(config.AppName)),
	logging.NewConfig,
	logging.CommonLogger,
	config.Parse,
)

func InitializeApp(ctx context.Context) (*App, func(), error) {
	wire.Build(
		loggerSet,
		provideSession,
		provideBackend,
		dataaccess.NewStores,
		wire.FieldsOf(new(*dataaccess.Stores), "Config", "Training", "Permissions", "Tickets"),
		guildconfig.NewRegistry,
		permissions.NewRegistry,
		provideCatalog,
		NewDiscordPlatform,
		wire.Bind(new(responder.ConfigSource), new(*guildconfig.Registry)),
		wire.Bind(new(responder.Notifier), new(*discordPlatform)),
		responder.NewResponder,
		wire.Bind(new(panels.Resolver), new(*discordPlatform)),
		wire.Bind(new(panels.Sender), new(*discordPlatform)),
		panels.NewManager,
		provideTranscripts,
		wire.Bind(new(tickets.TranscriptStore), new(*tickets.FileTranscripts)),
		providePublisher,
		wire.Bind(new(tickets.Responder), new(*responder.Responder)),
		wire.Bind(new(tickets.Platform), new(*discordPlatform)),
		tickets.NewManager,
		NewTicketLimiter,
		provideClosePrompts,
		provideMultipanelPrompts,
		newServices,
		mux.NewRouter,
		NewApp,
	)
	return new(App), nil, nil
}

func InitializeImporter(ctx context.Context) (*Importer, func(), error) {
	wire.Build(
		loggerSet,
		provideFileBackend,
		provideMongoBackend,
		NewImporter,
	)
	return new(Importer), nil, nil
}
