package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/cmd/bot/config"
	"github.com/Jacobbrewer1/ticketeer/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/guildconfig"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/panels"
	"github.com/Jacobbrewer1/ticketeer/pkg/permissions"
	"github.com/Jacobbrewer1/ticketeer/pkg/prompt"
	"github.com/Jacobbrewer1/ticketeer/pkg/request"
	"github.com/Jacobbrewer1/ticketeer/pkg/responder"
	"github.com/Jacobbrewer1/ticketeer/pkg/tickets"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathLiveness is the path for the liveness text.
	PathLiveness = "/"

	// PathHealth is the path for the health check.
	PathHealth = "/health"

	// PathMetrics is the path for the metrics.
	PathMetrics = "/metrics"
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// Messages returns the message catalog.
	Messages() *messages.Catalog

	Configs() *guildconfig.Registry
	Permissions() *permissions.Registry
	Panels() *panels.Manager
	Tickets() *tickets.Manager
	Responder() *responder.Responder

	// TicketLimiter limits how often users open tickets.
	TicketLimiter() *ticketLimiter

	// ClosePrompts holds the pending close confirmations.
	ClosePrompts() *prompt.Registry[struct{}]

	// MultipanelPrompts holds the pending multipanel selections.
	MultipanelPrompts() *prompt.Registry[[]string]
}

// services are the domain services used by the interaction handlers.
type services struct {
	msgs        *messages.Catalog
	configs     *guildconfig.Registry
	permissions *permissions.Registry
	panels      *panels.Manager
	tickets     *tickets.Manager
	responder   *responder.Responder
	limiter     *ticketLimiter

	closePrompts      *prompt.Registry[struct{}]
	multipanelPrompts *prompt.Registry[[]string]
}

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	// cfg is the process configuration.
	cfg *config.Values

	// backend is the document store, pinged by the health check.
	backend dataaccess.Backend

	svc *services
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router, cfg *config.Values, s *discordgo.Session, backend dataaccess.Backend, svc *services) *App {
	return &App{
		Logger:  l,
		r:       r,
		cfg:     cfg,
		s:       s,
		backend: backend,
		svc:     svc,
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
	})

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.", a.cfg.StorageDescription())

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	sig := <-c
	a.Info("Received shutdown signal", slog.String("signal", sig.String()))
	if err := a.ShutdownHook(); err != nil {
		return fmt.Errorf("error shutting down application: %w", err)
	}
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	if a.svr != nil {
		if err := a.svr.Close(); err != nil {
			a.Warn("Error closing monitoring server", slog.String(logging.KeyError, err.Error()))
		}
	}

	// Close the connection to Discord. Registered commands are kept so they work straight away
	// on the next start.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	a.s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	if a.eventNotifier == nil {
		// Create event notifier. It is buffered to prevent blocking.
		a.eventNotifier = make(chan any, 100)
	}

	a.s.SetEventNotifier(a.eventNotifier)
	return nil
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathLiveness, middlewareHttp(Controller(request.LivenessHandler(a.Logger, config.AppName+" is running")), a)).Methods(http.MethodGet)

	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)

	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + a.cfg.Port,
		Handler: a.r,
	}
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild. This also fires for every guild once the session is ready, which is
	// when the slash commands are registered.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a, newRoutes()))
	return nil
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

// applicationID is the configured application ID or the ID of the logged in user.
func (a *App) applicationID() string {
	if a.cfg.ApplicationId != "" {
		return a.cfg.ApplicationId
	}
	if a.s.State != nil && a.s.State.User != nil {
		return a.s.State.User.ID
	}
	return ""
}

// registerGuildCommands replaces the commands of a guild with the current set.
func (a *App) registerGuildCommands(guildID string) error {
	if _, err := a.s.ApplicationCommandBulkOverwrite(a.applicationID(), guildID, slashCommands()); err != nil {
		return fmt.Errorf("error registering commands for guild %s: %w", guildID, err)
	}
	a.Debug("Registered commands", slog.String(logging.KeyGuild, guildID))
	return nil
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Messages() *messages.Catalog {
	return a.svc.msgs
}

func (a *App) Configs() *guildconfig.Registry {
	return a.svc.configs
}

func (a *App) Permissions() *permissions.Registry {
	return a.svc.permissions
}

func (a *App) Panels() *panels.Manager {
	return a.svc.panels
}

func (a *App) Tickets() *tickets.Manager {
	return a.svc.tickets
}

func (a *App) Responder() *responder.Responder {
	return a.svc.responder
}

func (a *App) TicketLimiter() *ticketLimiter {
	return a.svc.limiter
}

func (a *App) ClosePrompts() *prompt.Registry[struct{}] {
	return a.svc.closePrompts
}

func (a *App) MultipanelPrompts() *prompt.Registry[[]string] {
	return a.svc.multipanelPrompts
}
