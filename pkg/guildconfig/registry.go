// Package guildconfig holds the per-guild ticketing configuration.
package guildconfig

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

// Settings accepted by SetField. Colors use the "color_" prefix followed by the color name.
const (
	SettingLogChannel      = "log_channel_id"
	SettingStaffRole       = "staff_role_id"
	SettingTrainingChannel = "ai_training_channel_id"
	SettingColorPrefix     = "color_"
)

// Registry reads and mutates guild configurations stored in the config document.
type Registry struct {
	// l is the logger.
	l *slog.Logger

	// doc is the config document.
	doc *dataaccess.Document[entities.ConfigDocument]
}

// NewRegistry creates a new configuration registry.
func NewRegistry(l *slog.Logger, doc *dataaccess.Document[entities.ConfigDocument]) *Registry {
	return &Registry{
		l:   l,
		doc: doc,
	}
}

// GetOrCreate returns a copy of the guild configuration, creating and persisting the defaults on first use.
func (r *Registry) GetOrCreate(ctx context.Context, guildID string) (*entities.ServerConfig, error) {
	var cfg *entities.ServerConfig
	r.doc.View(func(doc *entities.ConfigDocument) {
		if c, ok := doc.Servers[guildID]; ok {
			cfg = c.Clone()
		}
	})
	if cfg != nil {
		return cfg, nil
	}

	err := r.doc.Update(ctx, func(doc *entities.ConfigDocument) error {
		// Another interaction may have created it while we waited for the lock.
		if c, ok := doc.Servers[guildID]; ok {
			cfg = c.Clone()
			return nil
		}
		c := entities.NewServerConfig()
		doc.Servers[guildID] = c
		cfg = c.Clone()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating guild config: %w", err)
	}

	r.l.Info("Created guild configuration", slog.String(logging.KeyGuild, guildID))
	return cfg, nil
}

// ResolveColor returns the named color for the guild or the fallback color.
func (r *Registry) ResolveColor(ctx context.Context, guildID, name string) int {
	cfg, err := r.GetOrCreate(ctx, guildID)
	if err != nil {
		r.l.Warn("Error resolving color, using fallback",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyError, err.Error()))
		return entities.FallbackColor
	}
	if c, ok := cfg.EmbedColors[name]; ok {
		return c
	}
	return entities.FallbackColor
}

// mutate runs fn against the guild's stored configuration, creating it first if needed.
func (r *Registry) mutate(ctx context.Context, guildID string, fn func(cfg *entities.ServerConfig) error) error {
	return r.doc.Update(ctx, func(doc *entities.ConfigDocument) error {
		cfg, ok := doc.Servers[guildID]
		if !ok {
			cfg = entities.NewServerConfig()
			doc.Servers[guildID] = cfg
		}
		return fn(cfg)
	})
}

// AddPanel stores a new panel under key.
func (r *Registry) AddPanel(ctx context.Context, guildID, key string, p *entities.Panel) error {
	cp := *p
	return r.mutate(ctx, guildID, func(cfg *entities.ServerConfig) error {
		if _, ok := cfg.Panels[key]; ok {
			return fmt.Errorf("%w: panel %q", errs.ErrDuplicateID, key)
		}
		cfg.Panels[key] = &cp
		return nil
	})
}

// UpdatePanel applies fn to an existing panel.
func (r *Registry) UpdatePanel(ctx context.Context, guildID, key string, fn func(p *entities.Panel)) error {
	return r.mutate(ctx, guildID, func(cfg *entities.ServerConfig) error {
		p, ok := cfg.Panels[key]
		if !ok {
			return fmt.Errorf("%w: panel %q", errs.ErrNotFound, key)
		}
		fn(p)
		return nil
	})
}

// DeletePanel removes a panel. Multipanels keep their reference to it.
func (r *Registry) DeletePanel(ctx context.Context, guildID, key string) error {
	return r.mutate(ctx, guildID, func(cfg *entities.ServerConfig) error {
		if _, ok := cfg.Panels[key]; !ok {
			return fmt.Errorf("%w: panel %q", errs.ErrNotFound, key)
		}
		delete(cfg.Panels, key)
		return nil
	})
}

// AddMultipanel stores a new multipanel under key.
func (r *Registry) AddMultipanel(ctx context.Context, guildID, key string, panelKeys []string) error {
	keys := append([]string(nil), panelKeys...)
	return r.mutate(ctx, guildID, func(cfg *entities.ServerConfig) error {
		if _, ok := cfg.Multipanels[key]; ok {
			return fmt.Errorf("%w: multipanel %q", errs.ErrDuplicateID, key)
		}
		cfg.Multipanels[key] = keys
		return nil
	})
}

// DeleteMultipanel removes a multipanel.
func (r *Registry) DeleteMultipanel(ctx context.Context, guildID, key string) error {
	return r.mutate(ctx, guildID, func(cfg *entities.ServerConfig) error {
		if _, ok := cfg.Multipanels[key]; !ok {
			return fmt.Errorf("%w: multipanel %q", errs.ErrNotFound, key)
		}
		delete(cfg.Multipanels, key)
		return nil
	})
}

// SetField sets a scalar setting from user input. Values are validated before anything is changed.
func (r *Registry) SetField(ctx context.Context, guildID, setting, value string) error {
	setting = strings.ToLower(strings.TrimSpace(setting))

	if strings.HasPrefix(setting, SettingColorPrefix) {
		name := strings.TrimPrefix(setting, SettingColorPrefix)
		if name == "" {
			return fmt.Errorf("%w: empty color name", errs.ErrInvalidValue)
		}
		color, err := ParseColor(value)
		if err != nil {
			return err
		}
		return r.mutate(ctx, guildID, func(cfg *entities.ServerConfig) error {
			cfg.EmbedColors[name] = color
			return nil
		})
	}

	id, err := ParseSnowflake(value)
	if err != nil {
		return err
	}

	var apply func(cfg *entities.ServerConfig)
	switch setting {
	case SettingLogChannel:
		apply = func(cfg *entities.ServerConfig) { cfg.LogChannelID = id }
	case SettingStaffRole:
		apply = func(cfg *entities.ServerConfig) { cfg.StaffRoleID = id }
	case SettingTrainingChannel:
		apply = func(cfg *entities.ServerConfig) { cfg.AITrainingChannelID = id }
	default:
		return fmt.Errorf("%w: unknown setting %q", errs.ErrInvalidValue, setting)
	}

	return r.mutate(ctx, guildID, func(cfg *entities.ServerConfig) error {
		apply(cfg)
		return nil
	})
}

// IncrementTicketCounter increments the guild ticket counter and returns the new value.
func (r *Registry) IncrementTicketCounter(ctx context.Context, guildID string) (int, error) {
	var n int
	err := r.mutate(ctx, guildID, func(cfg *entities.ServerConfig) error {
		cfg.TicketCounter++
		n = cfg.TicketCounter
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error incrementing ticket counter: %w", err)
	}
	return n, nil
}

// ParseSnowflake validates a Discord ID. "0" and "" unset the reference.
func ParseSnowflake(value string) (string, error) {
	value = strings.TrimSpace(value)
	// Accept mentions such as <#123> and <@&123>.
	value = strings.TrimPrefix(value, "<")
	value = strings.TrimSuffix(value, ">")
	value = strings.TrimLeft(value, "#@&")

	if value == "" || value == "0" {
		return "", nil
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return "", fmt.Errorf("%w: %q is not an id", errs.ErrInvalidValue, value)
	}
	return value, nil
}

// ParseColor parses a hex color with an optional leading '#'.
func ParseColor(value string) (int, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	value = strings.TrimPrefix(strings.ToLower(value), "0x")
	if value == "" {
		return 0, fmt.Errorf("%w: empty color", errs.ErrInvalidValue)
	}

	c, err := strconv.ParseUint(value, 16, 32)
	if err != nil || c > 0xFFFFFF {
		return 0, fmt.Errorf("%w: %q is not a hex color", errs.ErrInvalidValue, value)
	}
	return int(c), nil
}
