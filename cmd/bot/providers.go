package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/cmd/bot/config"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/ticketeer/pkg/events"
	"github.com/Jacobbrewer1/ticketeer/pkg/guildconfig"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/panels"
	"github.com/Jacobbrewer1/ticketeer/pkg/permissions"
	"github.com/Jacobbrewer1/ticketeer/pkg/prompt"
	"github.com/Jacobbrewer1/ticketeer/pkg/responder"
	"github.com/Jacobbrewer1/ticketeer/pkg/tickets"
)

// closeTimeout bounds the disconnects run by the cleanup functions.
const closeTimeout = 5 * time.Second

func provideSession(cfg *config.Values) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	return s, nil
}

func provideFileBackend(l *slog.Logger, cfg *config.Values) (*dataaccess.FileBackend, error) {
	return dataaccess.NewFileBackend(l, cfg.DataDir)
}

func provideMongoBackend(ctx context.Context, l *slog.Logger, cfg *config.Values) (*dataaccess.MongoBackend, func(), error) {
	if cfg.MongoUri == "" {
		return nil, nil, fmt.Errorf("%s is not set", config.EnvMongoUri)
	}

	client, err := (&connection.MongoDB{ConnectionString: cfg.MongoUri}).Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	b := dataaccess.NewMongoBackend(l, client, cfg.MongoDatabase)
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := b.Close(ctx); err != nil {
			l.Error("Error disconnecting from mongo", slog.String(logging.KeyError, err.Error()))
		}
	}
	return b, cleanup, nil
}

// provideBackend stores the documents in MongoDB when a URI is configured and in JSON files
// otherwise.
func provideBackend(ctx context.Context, l *slog.Logger, cfg *config.Values) (dataaccess.Backend, func(), error) {
	if cfg.MongoUri != "" {
		return provideMongoBackend(ctx, l, cfg)
	}

	b, err := provideFileBackend(l, cfg)
	if err != nil {
		return nil, nil, err
	}
	return b, func() {}, nil
}

func provideCatalog(cfg *config.Values) (*messages.Catalog, error) {
	return messages.Load(cfg.Language)
}

func provideTranscripts(l *slog.Logger, cfg *config.Values) (*tickets.FileTranscripts, error) {
	return tickets.NewFileTranscripts(l, cfg.TranscriptDir)
}

// providePublisher publishes ticket events to the broker when one is configured.
func providePublisher(l *slog.Logger, cfg *config.Values) (events.Publisher, func(), error) {
	if cfg.AmqpUrl == "" {
		return events.NopPublisher{}, func() {}, nil
	}

	p, err := events.NewAMQPPublisher(l, cfg.AmqpUrl, cfg.AmqpExchange)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := p.Close(); err != nil {
			l.Error("Error closing event publisher", slog.String(logging.KeyError, err.Error()))
		}
	}
	return p, cleanup, nil
}

func provideClosePrompts() *prompt.Registry[struct{}] {
	return prompt.NewRegistry[struct{}](0)
}

func provideMultipanelPrompts() *prompt.Registry[[]string] {
	return prompt.NewRegistry[[]string](0)
}

func newServices(
	msgs *messages.Catalog,
	configs *guildconfig.Registry,
	perms *permissions.Registry,
	pm *panels.Manager,
	tm *tickets.Manager,
	resp *responder.Responder,
	limiter *ticketLimiter,
	closePrompts *prompt.Registry[struct{}],
	multipanelPrompts *prompt.Registry[[]string],
) *services {
	return &services{
		msgs:              msgs,
		configs:           configs,
		permissions:       perms,
		panels:            pm,
		tickets:           tm,
		responder:         resp,
		limiter:           limiter,
		closePrompts:      closePrompts,
		multipanelPrompts: multipanelPrompts,
	}
}
