package entities

import (
	"encoding/json"
	"strings"
)

// FallbackColor is used when a color name is not configured.
const FallbackColor = 0x2b2d31

// Color names understood by the embed palette.
const (
	ColorDefault = "default"
	ColorSuccess = "success"
	ColorError   = "error"
	ColorWarning = "warning"
	ColorInfo    = "info"
)

// DefaultEmbedColors returns a fresh copy of the default palette.
func DefaultEmbedColors() map[string]int {
	return map[string]int{
		ColorDefault: FallbackColor,
		ColorSuccess: 0x2ecc71,
		ColorError:   0xe74c3c,
		ColorWarning: 0xf1c40f,
		ColorInfo:    0x3498db,
	}
}

// ServerConfig is the ticketing configuration of a guild.
type ServerConfig struct {
	// Panels are the configured panels keyed by their normalized key.
	Panels map[string]*Panel `json:"panels" bson:"panels"`

	// Multipanels are ordered groups of panel keys keyed by their normalized key.
	Multipanels map[string][]string `json:"multipanels" bson:"multipanels"`

	// LogChannelID is the channel that receives ticket log lines and closing summaries.
	LogChannelID string `json:"log_channel_id" bson:"log_channel_id"`

	// StaffRoleID is the default staff role for panels without their own.
	StaffRoleID string `json:"staff_role_id" bson:"staff_role_id"`

	// AITrainingChannelID is the channel that receives training requests.
	AITrainingChannelID string `json:"ai_training_channel_id" bson:"ai_training_channel_id"`

	// TicketCounter is the number of the last created ticket.
	TicketCounter int `json:"ticket_counter" bson:"ticket_counter"`

	// EmbedColors maps a color name to a 24-bit color value.
	EmbedColors map[string]int `json:"embed_colors" bson:"embed_colors"`
}

// NewServerConfig creates the default configuration for a guild.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Panels:      make(map[string]*Panel),
		Multipanels: make(map[string][]string),
		EmbedColors: DefaultEmbedColors(),
	}
}

// Init fills in any nil maps left by decoding an older document.
func (c *ServerConfig) Init() {
	if c.Panels == nil {
		c.Panels = make(map[string]*Panel)
	}
	if c.Multipanels == nil {
		c.Multipanels = make(map[string][]string)
	}
	if c.EmbedColors == nil {
		c.EmbedColors = DefaultEmbedColors()
	}
}

// UnmarshalJSON accepts channel and role references written as numbers.
func (c *ServerConfig) UnmarshalJSON(data []byte) error {
	type alias ServerConfig
	aux := struct {
		*alias
		LogChannelID        Snowflake `json:"log_channel_id"`
		StaffRoleID         Snowflake `json:"staff_role_id"`
		AITrainingChannelID Snowflake `json:"ai_training_channel_id"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.LogChannelID = string(aux.LogChannelID)
	c.StaffRoleID = string(aux.StaffRoleID)
	c.AITrainingChannelID = string(aux.AITrainingChannelID)
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *ServerConfig) Clone() *ServerConfig {
	if c == nil {
		return nil
	}

	out := *c
	out.Panels = make(map[string]*Panel, len(c.Panels))
	for k, p := range c.Panels {
		cp := *p
		out.Panels[k] = &cp
	}
	out.Multipanels = make(map[string][]string, len(c.Multipanels))
	for k, keys := range c.Multipanels {
		out.Multipanels[k] = append([]string(nil), keys...)
	}
	out.EmbedColors = make(map[string]int, len(c.EmbedColors))
	for k, v := range c.EmbedColors {
		out.EmbedColors[k] = v
	}
	return &out
}

// ResolveStaffRole returns the staff role for the panel, falling back to the guild default.
func (c *ServerConfig) ResolveStaffRole(p *Panel) string {
	if p != nil && IsSet(p.StaffRoleID) {
		return p.StaffRoleID
	}
	if IsSet(c.StaffRoleID) {
		return c.StaffRoleID
	}
	return ""
}

// IsSet reports whether a channel or role reference is configured. Older documents use "0" for unset.
func IsSet(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && id != "0"
}

// Panel is a configured entry point for opening a ticket.
type Panel struct {
	// Label is the display name of the panel.
	Label string `json:"label" bson:"label"`

	// Emoji is shown on the panel button.
	Emoji string `json:"emoji" bson:"emoji"`

	// CategoryID is the category ticket channels are created in.
	CategoryID string `json:"category_id" bson:"category_id"`

	// StaffRoleID overrides the guild staff role for tickets of this panel.
	StaffRoleID string `json:"staff_role_id" bson:"staff_role_id"`

	// Description is shown in the panel message.
	Description string `json:"description" bson:"description"`

	// Enabled is whether the panel can be sent and used.
	Enabled bool `json:"enabled" bson:"enabled"`
}

// UnmarshalJSON defaults Enabled to true when the field is absent and accepts references
// written as numbers.
func (p *Panel) UnmarshalJSON(data []byte) error {
	type alias Panel
	aux := struct {
		alias
		CategoryID  Snowflake `json:"category_id"`
		StaffRoleID Snowflake `json:"staff_role_id"`
	}{alias: alias{Enabled: true}}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Panel(aux.alias)
	p.CategoryID = string(aux.CategoryID)
	p.StaffRoleID = string(aux.StaffRoleID)
	return nil
}

// ConfigDocument is the persisted document holding every guild's configuration.
type ConfigDocument struct {
	Servers map[string]*ServerConfig `json:"servers" bson:"servers"`
}

// Init implements the dataaccess initializer.
func (d *ConfigDocument) Init() {
	if d.Servers == nil {
		d.Servers = make(map[string]*ServerConfig)
	}
	for id, s := range d.Servers {
		if s == nil {
			d.Servers[id] = NewServerConfig()
			continue
		}
		s.Init()
		for key, p := range s.Panels {
			if p == nil {
				delete(s.Panels, key)
			}
		}
	}
}
