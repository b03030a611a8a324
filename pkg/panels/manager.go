// Package panels manages panel and multipanel definitions and sends them to channels.
package panels

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/guildconfig"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

// DefaultDescription is used for panels created without a description.
const DefaultDescription = "Click the button below to open a ticket."

// Resolver checks that guild entities referenced by a panel exist.
type Resolver interface {
	CategoryExists(ctx context.Context, guildID, categoryID string) (bool, error)
	RoleExists(ctx context.Context, guildID, roleID string) (bool, error)
}

// Sender renders a view into a channel.
type Sender interface {
	SendPanels(ctx context.Context, guildID, channelID string, v *View) error
}

// ViewKind is what is being sent.
type ViewKind int

const (
	// ViewSetup is every enabled panel of the guild.
	ViewSetup ViewKind = iota

	// ViewPanel is a single panel.
	ViewPanel

	// ViewMultipanel is a multipanel.
	ViewMultipanel
)

// Entry is a panel with its key.
type Entry struct {
	Key   string
	Panel entities.Panel
}

// View is a set of active panels to render, one button per panel.
type View struct {
	Kind ViewKind

	// ID is the panel or multipanel key. It is empty for ViewSetup.
	ID string

	Panels []Entry
}

// PanelInput is everything needed to create a panel.
type PanelInput struct {
	ID          string
	Label       string
	Emoji       string
	CategoryID  string
	StaffRoleID string
	Description string
}

// MaxKeyLength is the longest panel or multipanel key.
const MaxKeyLength = 64

// NormalizeKey derives a panel or multipanel key from user input: "Bug Report" -> "bug_report".
// Only [a-z0-9_-] is kept, so a key is safe in file names, channel names and custom IDs.
func NormalizeKey(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))

	var sb strings.Builder
	for _, r := range id {
		if sb.Len() == MaxKeyLength {
			break
		}
		switch {
		case r == ' ':
			sb.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Manager creates, deletes and sends panels and multipanels.
type Manager struct {
	// l is the logger.
	l *slog.Logger

	// configs is the guild configuration registry.
	configs *guildconfig.Registry

	// resolver checks categories and roles.
	resolver Resolver

	// sender renders views.
	sender Sender
}

// NewManager creates a new panel manager.
func NewManager(l *slog.Logger, configs *guildconfig.Registry, resolver Resolver, sender Sender) *Manager {
	return &Manager{
		l:        l,
		configs:  configs,
		resolver: resolver,
		sender:   sender,
	}
}

// CreatePanel validates the input and stores a new enabled panel. It returns the normalized key.
func (m *Manager) CreatePanel(ctx context.Context, guildID string, in PanelInput) (string, error) {
	key := NormalizeKey(in.ID)
	if key == "" {
		return "", fmt.Errorf("%w: empty panel id", errs.ErrInvalidValue)
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return "", fmt.Errorf("%w: empty panel label", errs.ErrInvalidValue)
	}

	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err != nil {
		return "", err
	}
	if _, ok := cfg.Panels[key]; ok {
		return "", fmt.Errorf("%w: panel %q", errs.ErrDuplicateID, key)
	}

	if !entities.IsSet(in.CategoryID) {
		return "", fmt.Errorf("%w: category", errs.ErrNotFound)
	}
	ok, err := m.resolver.CategoryExists(ctx, guildID, in.CategoryID)
	if err != nil {
		return "", fmt.Errorf("%w: error resolving category: %w", errs.ErrDependencyUnavailable, err)
	} else if !ok {
		return "", fmt.Errorf("%w: category %s", errs.ErrNotFound, in.CategoryID)
	}

	if entities.IsSet(in.StaffRoleID) {
		ok, err := m.resolver.RoleExists(ctx, guildID, in.StaffRoleID)
		if err != nil {
			return "", fmt.Errorf("%w: error resolving role: %w", errs.ErrDependencyUnavailable, err)
		} else if !ok {
			return "", fmt.Errorf("%w: role %s", errs.ErrNotFound, in.StaffRoleID)
		}
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = DefaultDescription
	}

	p := &entities.Panel{
		Label:       label,
		Emoji:       strings.TrimSpace(in.Emoji),
		CategoryID:  in.CategoryID,
		StaffRoleID: in.StaffRoleID,
		Description: desc,
		Enabled:     true,
	}
	if err := m.configs.AddPanel(ctx, guildID, key, p); err != nil {
		return "", err
	}

	m.l.Info("Created panel", slog.String(logging.KeyGuild, guildID), slog.String("panel", key))
	return key, nil
}

// SetDescription replaces the description of a panel.
func (m *Manager) SetDescription(ctx context.Context, guildID, id, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("%w: empty description", errs.ErrInvalidValue)
	}
	return m.configs.UpdatePanel(ctx, guildID, NormalizeKey(id), func(p *entities.Panel) {
		p.Description = description
	})
}

// SetEnabled enables or disables a panel.
func (m *Manager) SetEnabled(ctx context.Context, guildID, id string, enabled bool) error {
	return m.configs.UpdatePanel(ctx, guildID, NormalizeKey(id), func(p *entities.Panel) {
		p.Enabled = enabled
	})
}

// DeletePanel removes a panel.
func (m *Manager) DeletePanel(ctx context.Context, guildID, id string) error {
	return m.configs.DeletePanel(ctx, guildID, NormalizeKey(id))
}

// ListPanels returns every panel sorted by key.
func (m *Manager) ListPanels(ctx context.Context, guildID string) ([]Entry, error) {
	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return sortedEntries(cfg.Panels, false), nil
}

// CreateMultipanel stores an ordered, de-duplicated selection of panel keys and returns what was
// stored. Keys that do not name a panel are kept and filtered when sending.
func (m *Manager) CreateMultipanel(ctx context.Context, guildID, id string, panelKeys []string) (Multipanel, error) {
	key := NormalizeKey(id)
	if key == "" {
		return Multipanel{}, fmt.Errorf("%w: empty multipanel id", errs.ErrInvalidValue)
	}

	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err != nil {
		return Multipanel{}, err
	}
	if _, ok := cfg.Multipanels[key]; ok {
		return Multipanel{}, fmt.Errorf("%w: multipanel %q", errs.ErrDuplicateID, key)
	}
	if len(cfg.Panels) == 0 {
		return Multipanel{}, fmt.Errorf("%w: no panels configured", errs.ErrInvalidValue)
	}

	selected := make([]string, 0, len(panelKeys))
	for _, k := range panelKeys {
		k = NormalizeKey(k)
		if k != "" && !slices.Contains(selected, k) {
			selected = append(selected, k)
		}
	}
	if len(selected) == 0 {
		return Multipanel{}, fmt.Errorf("%w: no panels selected", errs.ErrInvalidValue)
	}

	if err := m.configs.AddMultipanel(ctx, guildID, key, selected); err != nil {
		return Multipanel{}, err
	}

	m.l.Info("Created multipanel", slog.String(logging.KeyGuild, guildID), slog.String("multipanel", key))
	return Multipanel{Key: key, Panels: selected}, nil
}

// DeleteMultipanel removes a multipanel.
func (m *Manager) DeleteMultipanel(ctx context.Context, guildID, id string) error {
	return m.configs.DeleteMultipanel(ctx, guildID, NormalizeKey(id))
}

// Multipanel is a multipanel with its key.
type Multipanel struct {
	Key    string
	Panels []string
}

// ListMultipanels returns every multipanel sorted by key.
func (m *Manager) ListMultipanels(ctx context.Context, guildID string) ([]Multipanel, error) {
	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, err
	}

	out := make([]Multipanel, 0, len(cfg.Multipanels))
	for k, keys := range cfg.Multipanels {
		out = append(out, Multipanel{Key: k, Panels: keys})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// SendSetup sends every enabled panel of the guild.
func (m *Manager) SendSetup(ctx context.Context, guildID, channelID string) error {
	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err != nil {
		return err
	}

	entries := sortedEntries(cfg.Panels, true)
	if len(entries) == 0 {
		return fmt.Errorf("%w: no active panels", errs.ErrInvalidValue)
	}
	return m.send(ctx, guildID, channelID, &View{Kind: ViewSetup, Panels: entries})
}

// SendPanel sends a single panel.
func (m *Manager) SendPanel(ctx context.Context, guildID, channelID, id string) error {
	key := NormalizeKey(id)
	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err != nil {
		return err
	}

	p, ok := cfg.Panels[key]
	if !ok {
		return fmt.Errorf("%w: panel %q", errs.ErrNotFound, key)
	}
	if !p.Enabled {
		return fmt.Errorf("%w: panel %q is disabled", errs.ErrInvalidValue, key)
	}
	return m.send(ctx, guildID, channelID, &View{Kind: ViewPanel, ID: key, Panels: []Entry{{Key: key, Panel: *p}}})
}

// SendMultipanel sends the live panels of a multipanel, skipping disabled and deleted ones.
func (m *Manager) SendMultipanel(ctx context.Context, guildID, channelID, id string) error {
	key := NormalizeKey(id)
	cfg, err := m.configs.GetOrCreate(ctx, guildID)
	if err != nil {
		return err
	}

	keys, ok := cfg.Multipanels[key]
	if !ok {
		return fmt.Errorf("%w: multipanel %q", errs.ErrNotFound, key)
	}

	entries := ResolveMultipanel(cfg, keys)
	if len(entries) == 0 {
		return fmt.Errorf("%w: multipanel %q has no active panels", errs.ErrInvalidValue, key)
	}
	return m.send(ctx, guildID, channelID, &View{Kind: ViewMultipanel, ID: key, Panels: entries})
}

// ResolveMultipanel returns the enabled panels named by keys, in order.
func ResolveMultipanel(cfg *entities.ServerConfig, keys []string) []Entry {
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		p, ok := cfg.Panels[k]
		if !ok || !p.Enabled {
			continue
		}
		out = append(out, Entry{Key: k, Panel: *p})
	}
	return out
}

func (m *Manager) send(ctx context.Context, guildID, channelID string, v *View) error {
	if err := m.sender.SendPanels(ctx, guildID, channelID, v); err != nil {
		return fmt.Errorf("%w: error sending panels: %w", errs.ErrDependencyUnavailable, err)
	}
	return nil
}

func sortedEntries(panels map[string]*entities.Panel, enabledOnly bool) []Entry {
	out := make([]Entry, 0, len(panels))
	for k, p := range panels {
		if enabledOnly && !p.Enabled {
			continue
		}
		out = append(out, Entry{Key: k, Panel: *p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
