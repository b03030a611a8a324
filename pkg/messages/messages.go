// Package messages holds the user-facing strings of the bot in every supported language.
package messages

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when no language is configured, and for keys missing from another language.
const DefaultLanguage = "en"

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the message set of one language.
type Catalog struct {
	lang     string
	messages map[string]string
	fallback map[string]string
}

// Load returns the catalog for lang.
func Load(lang string) (*Catalog, error) {
	all := make(map[string]map[string]string)
	if err := yaml.Unmarshal(catalogYAML, &all); err != nil {
		return nil, fmt.Errorf("error parsing message catalog: %w", err)
	}

	if lang == "" {
		lang = DefaultLanguage
	}
	lang = strings.ToLower(lang)

	msgs, ok := all[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}

	return &Catalog{
		lang:     lang,
		messages: msgs,
		fallback: all[DefaultLanguage],
	}, nil
}

// Language returns the language code.
func (c *Catalog) Language() string {
	return c.lang
}

// T returns the message for key with each {name} placeholder replaced. pairs is name, value, name,
// value... An unknown key renders as "{key}".
func (c *Catalog) T(key string, pairs ...string) string {
	s, ok := c.messages[key]
	if !ok {
		s, ok = c.fallback[key]
	}
	if !ok {
		return "{" + key + "}"
	}

	for j := 0; j+1 < len(pairs); j += 2 {
		s = strings.ReplaceAll(s, "{"+pairs[j]+"}", pairs[j+1])
	}
	return s
}

// Message keys.
const (
	ErrProcessing     = "err.processing"
	ErrNotFound       = "err.not_found"
	ErrDuplicate      = "err.duplicate"
	ErrUnauthorized   = "err.unauthorized"
	ErrInvalid        = "err.invalid"
	ErrUnavailable    = "err.unavailable"
	ErrAlreadyClaimed = "err.already_claimed"
	ErrNoPermissions  = "err.no_permissions"
	ErrRateLimited    = "err.rate_limited"
	ErrNotTicket      = "err.not_ticket"
	ErrNoPanels       = "err.no_panels"
	ErrGuildOnly      = "err.guild_only"

	PanelCreated        = "panel.created"
	PanelDescriptionSet = "panel.description_set"
	PanelEnabled        = "panel.enabled"
	PanelDisabled       = "panel.disabled"
	PanelToggled        = "panel.toggled"
	PanelDeleted        = "panel.deleted"
	PanelSent           = "panel.sent"
	PanelListTitle      = "panel.list_title"
	PanelListEmpty      = "panel.list_empty"
	PanelListEntry      = "panel.list_entry"
	PanelDefaultRole    = "panel.default_role"
	PanelDescModal      = "panel.description_modal"
	PanelDescLabel      = "panel.description_label"

	SetupTitle       = "setup.title"
	SetupDescription = "setup.description"
	SetupSent        = "setup.sent"

	MultipanelTitle       = "multipanel.title"
	MultipanelPrompt      = "multipanel.select_prompt"
	MultipanelPlaceholder = "multipanel.select_placeholder"
	MultipanelSelected    = "multipanel.selected"
	MultipanelCreated     = "multipanel.created"
	MultipanelTimedOut    = "multipanel.timed_out"
	MultipanelDeleted     = "multipanel.deleted"
	MultipanelSent        = "multipanel.sent"
	MultipanelListTitle   = "multipanel.list_title"
	MultipanelListEmpty   = "multipanel.list_empty"

	ConfigSet             = "config.set"
	ConfigShowTitle       = "config.show_title"
	ConfigUnset           = "config.unset"
	ConfigLogChannel      = "config.log_channel"
	ConfigStaffRole       = "config.staff_role"
	ConfigTrainingChannel = "config.training_channel"
	ConfigTicketCounter   = "config.ticket_counter"
	ConfigColors          = "config.colors"
	ConfigPanels          = "config.panels"
	ConfigMultipanels     = "config.multipanels"

	AIListTitle = "ai.list_title"
	AIListEmpty = "ai.list_empty"
	AIRemoved   = "ai.removed"

	PermissionGranted   = "permission.granted"
	PermissionRevoked   = "permission.revoked"
	PermissionListTitle = "permission.list_title"
	PermissionListEmpty = "permission.list_empty"

	TicketModalTitle        = "ticket.modal_title"
	TicketReasonLabel       = "ticket.reason_label"
	TicketReasonPlaceholder = "ticket.reason_placeholder"
	TicketCreated           = "ticket.created"
	TicketWelcome           = "ticket.welcome"
	TicketReasonField       = "ticket.reason_field"
	TicketClaimButton       = "ticket.claim_button"
	TicketCloseButton       = "ticket.close_button"
	TicketCloseReasonButton = "ticket.close_reason_button"
	TicketClaimed           = "ticket.claimed"
	TicketClaimAck          = "ticket.claim_ack"
	TicketConfirmTitle      = "ticket.close_confirm_title"
	TicketConfirm           = "ticket.close_confirm"
	TicketConfirmButton     = "ticket.confirm_button"
	TicketCancelButton      = "ticket.cancel_button"
	TicketCloseCancelled    = "ticket.close_cancelled"
	TicketCloseTimedOut     = "ticket.close_timed_out"
	TicketClosing           = "ticket.closing"
	TicketCloseModal        = "ticket.close_reason_modal"
	TicketCloseReasonLabel  = "ticket.close_reason_label"
	TicketAIResponse        = "ticket.ai_response"
	TicketMemberAdded       = "ticket.member_added"
	TicketMemberRemoved     = "ticket.member_removed"

	LogCreated       = "log.created"
	LogMemberAdded   = "log.member_added"
	LogMemberRemoved = "log.member_removed"

	SummaryTitle      = "summary.title"
	SummaryTicket     = "summary.ticket"
	SummaryOpener     = "summary.opener"
	SummaryCloser     = "summary.closer"
	SummaryDuration   = "summary.duration"
	SummaryClaimed    = "summary.claimed"
	SummaryNotClaimed = "summary.not_claimed"
	SummaryReason     = "summary.reason"
	SummaryNoReason   = "summary.no_reason"
	SummaryTranscript = "summary.transcript"

	TrainingTitle         = "training.title"
	TrainingDescription   = "training.description"
	TrainingTrainButton   = "training.train_button"
	TrainingDismissButton = "training.dismiss_button"
	TrainingModalTitle    = "training.modal_title"
	TrainingKeywordsLabel = "training.keywords_label"
	TrainingResponseLabel = "training.response_label"
	TrainingTrained       = "training.trained"
	TrainingDismissed     = "training.dismissed"
	TrainingSaved         = "training.saved"
	TrainingDismissAck    = "training.dismiss_ack"
)
