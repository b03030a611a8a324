package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/messages"
	"github.com/Jacobbrewer1/ticketeer/pkg/permissions"
	"github.com/Jacobbrewer1/ticketeer/pkg/request"
	"github.com/gorilla/mux"
)

// interactionTimeout bounds the work done for a single interaction.
const interactionTimeout = 30 * time.Second

// Permission names with a special meaning for a route. Every other name is looked up in the
// permission registry.
const (
	// permissionNone means any member may use the route.
	permissionNone = ""

	// permissionAdmin means only administrators may use the route.
	permissionAdmin = "admin"
)

var (
	// errGuildOnly is returned for interactions outside a guild.
	errGuildOnly = errors.New("interaction outside a guild")

	// errRateLimited is returned when a user opens tickets too quickly.
	errRateLimited = errors.New("rate limited")

	// errNotTicket is returned when a ticket command is used outside a ticket channel.
	errNotTicket = errors.New("not a ticket channel")

	// errNoPanels is returned when a panel message is requested but no panel is active.
	errNoPanels = errors.New("no panels configured")
)

// interactionProcessor handles one interaction.
type interactionProcessor func(ctx context.Context, a IApp, i *discordgo.InteractionCreate) error

// route is a processor with the permission needed to run it.
type route struct {
	permission string
	processor  interactionProcessor
}

// routes holds the processors for slash commands, keyed by command name, and for components and
// modals, keyed by custom ID prefix.
type routes struct {
	commands   map[string]route
	components map[string]route
	modals     map[string]route
}

// lookup finds the route for an interaction and the name it is recorded under.
func (rt *routes) lookup(i *discordgo.InteractionCreate) (string, route, bool) {
	var (
		name  string
		table map[string]route
	)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name, table = i.ApplicationCommandData().Name, rt.commands
	case discordgo.InteractionMessageComponent:
		name, _ = splitCustomID(i.MessageComponentData().CustomID)
		table = rt.components
	case discordgo.InteractionModalSubmit:
		name, _ = splitCustomID(i.ModalSubmitData().CustomID)
		table = rt.modals
	default:
		return "", route{}, false
	}

	r, ok := table[name]
	return name, r, ok
}

// interactionHandler dispatches interactions to their processors. It checks the guild and the
// permission of the route first, and answers every failure with a private message.
func interactionHandler(a IApp, rt *routes) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		name, r, ok := rt.lookup(i)
		if !ok {
			a.Log().Debug("No route for interaction",
				slog.String("type", i.Type.String()),
				slog.String(logging.KeyCommand, name),
			)
			return
		}

		l := a.Log().With(
			slog.String(logging.KeyCommand, name),
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyChannel, i.ChannelID),
		)

		ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
		defer cancel()

		start := time.Now()
		outcome := "ok"
		defer func() {
			if rec := recover(); rec != nil {
				outcome = "panic"
				l.Error("Panic in interaction handler",
					slog.Any(logging.KeyError, rec),
					slog.String("stack", string(debug.Stack())),
				)
				respondError(a, l, i, fmt.Errorf("panic: %v", rec))
			}
			monitoring.DiscordCommandDuration.WithLabelValues(name, outcome).Observe(time.Since(start).Seconds())
		}()

		err := authorize(a.Permissions(), i, r.permission)
		if err == nil {
			err = r.processor(ctx, a, i)
		}
		if err == nil {
			return
		}

		if isUserError(err) {
			outcome = "rejected"
			l.Debug("Interaction rejected", slog.String(logging.KeyError, err.Error()))
		} else {
			outcome = "error"
			l.Error("Error processing interaction", slog.String(logging.KeyError, err.Error()))
		}
		respondError(a, l, i, err)
	}
}

// authorize checks that the interaction comes from a guild member allowed to use the route.
func authorize(perms *permissions.Registry, i *discordgo.InteractionCreate, permission string) error {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return errGuildOnly
	}

	switch permission {
	case permissionNone:
		return nil
	case permissionAdmin:
		if isAdmin(i) {
			return nil
		}
		return fmt.Errorf("%w: administrator required", errs.ErrUnauthorized)
	}

	switch perms.Decide(i.GuildID, i.Member.User.ID, permission, isAdmin(i)) {
	case permissions.DecisionAllowed:
		return nil
	case permissions.DecisionNotConfigured:
		return permissions.ErrNoPermissions
	default:
		return fmt.Errorf("%w: %s", errs.ErrUnauthorized, permission)
	}
}

// isUserError reports whether err is caused by the request rather than by the bot.
func isUserError(err error) bool {
	switch {
	case errors.Is(err, permissions.ErrNoPermissions),
		errors.Is(err, errGuildOnly),
		errors.Is(err, errRateLimited),
		errors.Is(err, errNotTicket),
		errors.Is(err, errNoPanels):
		return true
	}
	return errs.IsValidation(err)
}

// errorMessage is the reply shown to the user for err.
func errorMessage(msgs *messages.Catalog, err error) string {
	switch {
	case errors.Is(err, permissions.ErrNoPermissions):
		return msgs.T(messages.ErrNoPermissions)
	case errors.Is(err, errGuildOnly):
		return msgs.T(messages.ErrGuildOnly)
	case errors.Is(err, errRateLimited):
		return msgs.T(messages.ErrRateLimited)
	case errors.Is(err, errNotTicket):
		return msgs.T(messages.ErrNotTicket)
	case errors.Is(err, errNoPanels):
		return msgs.T(messages.ErrNoPanels)
	}

	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return msgs.T(messages.ErrNotFound, "detail", errorDetail(err, errs.ErrNotFound))
	case errs.KindInvalidValue:
		return msgs.T(messages.ErrInvalid, "detail", errorDetail(err, errs.ErrInvalidValue))
	case errs.KindDuplicateID:
		return msgs.T(messages.ErrDuplicate)
	case errs.KindUnauthorized:
		return msgs.T(messages.ErrUnauthorized)
	case errs.KindAlreadyClaimed:
		return msgs.T(messages.ErrAlreadyClaimed)
	case errs.KindDependencyUnavailable:
		return msgs.T(messages.ErrUnavailable)
	default:
		return msgs.T(messages.ErrProcessing)
	}
}

// errorDetail returns the text following "sentinel: " in the error chain, or the whole message
// when the sentinel is not followed by a detail.
func errorDetail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if idx := strings.Index(msg, prefix); idx >= 0 {
		return msg[idx+len(prefix):]
	}
	return msg
}

// respondError answers the interaction with the error reply. When the interaction was already
// acknowledged the reply is sent as a follow up.
func respondError(a IApp, l *slog.Logger, i *discordgo.InteractionCreate, err error) {
	content := errorMessage(a.Messages(), err)
	if rErr := respondEphemeral(a, i, content); rErr == nil {
		return
	}
	if fErr := followupEphemeral(a, i, content); fErr != nil {
		l.Error("Error responding to interaction", slog.String(logging.KeyError, fErr.Error()))
	}
}

// Controller is a HTTP handler.
type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.Any(logging.KeyError, rec),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage(request.ErrInternalServer.Error())); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path
			}
		} else {
			path = r.URL.Path
		}

		defer func() {
			// The status code is only known once the handler has returned.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}
