// Package permissions holds the per-user command allow-lists of each guild.
package permissions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

// Wildcard grants or revokes every protected command at once.
const Wildcard = "all"

// ErrNoPermissions is returned when a user has no permission entry at all.
var ErrNoPermissions = errors.New("no permissions configured")

// ProtectedCommands are the commands that can be delegated to non-administrators.
var ProtectedCommands = []string{
	"ticket_setup",
	"panel_create",
	"panel_delete",
	"panel_list",
	"panel_send",
	"config_set",
	"config_show",
	"ai_keywords",
	"multipanel_create",
	"multipanel_list",
	"multipanel_delete",
	"multipanel_send",
}

// IsProtected reports whether the command can be granted.
func IsProtected(command string) bool {
	return slices.Contains(ProtectedCommands, command)
}

// Decision is the outcome of a permission lookup.
type Decision int

const (
	// DecisionDenied means the user has an entry but not for this command.
	DecisionDenied Decision = iota

	// DecisionAllowed means the user may run the command.
	DecisionAllowed

	// DecisionNotConfigured means the user has no entry in the guild.
	DecisionNotConfigured
)

// Registry answers and changes command permissions.
type Registry struct {
	// l is the logger.
	l *slog.Logger

	// doc is the permissions document.
	doc *dataaccess.Document[entities.PermissionDocument]
}

// NewRegistry creates a new permission registry.
func NewRegistry(l *slog.Logger, doc *dataaccess.Document[entities.PermissionDocument]) *Registry {
	return &Registry{
		l:   l,
		doc: doc,
	}
}

// Decide looks up whether the user may run the command. Administrators are always allowed.
func (r *Registry) Decide(guildID, userID, command string, isAdmin bool) Decision {
	if isAdmin {
		return DecisionAllowed
	}

	decision := DecisionNotConfigured
	r.doc.View(func(doc *entities.PermissionDocument) {
		set, ok := doc.Servers[guildID]
		if !ok {
			return
		}
		allowed, ok := set.Users[userID]
		if !ok || len(allowed) == 0 {
			return
		}
		if slices.Contains(allowed, command) || slices.Contains(allowed, Wildcard) {
			decision = DecisionAllowed
			return
		}
		decision = DecisionDenied
	})
	return decision
}

// IsAuthorized reports whether the user may run the command.
func (r *Registry) IsAuthorized(guildID, userID, command string, isAdmin bool) bool {
	return r.Decide(guildID, userID, command, isAdmin) == DecisionAllowed
}

// Grant adds a command to the user's list and returns the new list. Granting the wildcard
// replaces the list with every protected command.
func (r *Registry) Grant(ctx context.Context, guildID, userID, command string) ([]string, error) {
	if command != Wildcard && !IsProtected(command) {
		return nil, fmt.Errorf("%w: unknown command %q", errs.ErrInvalidValue, command)
	}

	var out []string
	err := r.doc.Update(ctx, func(doc *entities.PermissionDocument) error {
		set, ok := doc.Servers[guildID]
		if !ok {
			set = &entities.PermissionSet{Users: make(map[string][]string)}
			doc.Servers[guildID] = set
		}

		if command == Wildcard {
			set.Users[userID] = slices.Clone(ProtectedCommands)
		} else if !slices.Contains(set.Users[userID], command) {
			set.Users[userID] = append(set.Users[userID], command)
		}
		out = slices.Clone(set.Users[userID])
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error granting permission: %w", err)
	}

	r.l.Info("Granted permission",
		slog.String(logging.KeyGuild, guildID),
		slog.String(logging.KeyUser, userID),
		slog.String(logging.KeyCommand, command))
	return out, nil
}

// Revoke removes a command from the user's list and returns the new list. Revoking the wildcard
// clears the list. Revoking a command the user does not have is a no-op.
func (r *Registry) Revoke(ctx context.Context, guildID, userID, command string) ([]string, error) {
	var out []string
	err := r.doc.Update(ctx, func(doc *entities.PermissionDocument) error {
		set, ok := doc.Servers[guildID]
		if !ok {
			return ErrNoPermissions
		}
		current, ok := set.Users[userID]
		if !ok {
			return ErrNoPermissions
		}

		if command == Wildcard {
			set.Users[userID] = []string{}
		} else {
			set.Users[userID] = slices.DeleteFunc(slices.Clone(current), func(c string) bool { return c == command })
		}
		out = slices.Clone(set.Users[userID])
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error revoking permission: %w", err)
	}

	r.l.Info("Revoked permission",
		slog.String(logging.KeyGuild, guildID),
		slog.String(logging.KeyUser, userID),
		slog.String(logging.KeyCommand, command))
	return out, nil
}

// Entry is one user's permissions.
type Entry struct {
	UserID   string
	Commands []string
}

// List returns the users with at least one permission, sorted by user ID.
func (r *Registry) List(guildID string) []Entry {
	var out []Entry
	r.doc.View(func(doc *entities.PermissionDocument) {
		set, ok := doc.Servers[guildID]
		if !ok {
			return
		}
		for uid, cmds := range set.Users {
			if len(cmds) == 0 {
				continue
			}
			out = append(out, Entry{UserID: uid, Commands: slices.Clone(cmds)})
		}
	})

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
