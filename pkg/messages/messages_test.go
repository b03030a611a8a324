package messages

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		lang    string
		want    string
		wantErr bool
	}{
		{name: "default", lang: "", want: "en"},
		{name: "english", lang: "en", want: "en"},
		{name: "german upper case", lang: "DE", want: "de"},
		{name: "unsupported", lang: "fr", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(tt.lang)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, c.Language())
		})
	}
}

func TestCatalog_T(t *testing.T) {
	c, err := Load("en")
	require.NoError(t, err)

	require.Equal(t, "Panel `support` created.", c.T(PanelCreated, "id", "support"))
	require.Equal(t, "Permission `panel_send` granted to <@42>.", c.T(PermissionGranted, "command", "panel_send", "user", "42"))
	require.Equal(t, "{no.such.key}", c.T("no.such.key"))

	// A dangling name without a value is ignored.
	require.Equal(t, "Panel `{id}` created.", c.T(PanelCreated, "id"))
}

func TestCatalog_Fallback(t *testing.T) {
	c := &Catalog{
		lang:     "de",
		messages: map[string]string{},
		fallback: map[string]string{SetupSent: "Ticket panel sent."},
	}
	require.Equal(t, "Ticket panel sent.", c.T(SetupSent))
}

// Every language must translate every key the English catalog has.
func TestCatalog_LanguagesComplete(t *testing.T) {
	all := make(map[string]map[string]string)
	require.NoError(t, yaml.Unmarshal(catalogYAML, &all))

	en := all[DefaultLanguage]
	require.NotEmpty(t, en)

	for lang, msgs := range all {
		for key := range en {
			_, ok := msgs[key]
			require.True(t, ok, "%s is missing %s", lang, key)
		}
		require.Len(t, msgs, len(en), lang)
	}
}

// Every key constant must exist in the catalog.
func TestCatalog_KeysDefined(t *testing.T) {
	c, err := Load(DefaultLanguage)
	require.NoError(t, err)

	keys := []string{
		ErrProcessing, ErrNotFound, ErrDuplicate, ErrUnauthorized, ErrInvalid, ErrUnavailable,
		ErrAlreadyClaimed, ErrNoPermissions, ErrRateLimited, ErrNotTicket, ErrNoPanels, ErrGuildOnly,
		PanelCreated, PanelDescriptionSet, PanelEnabled, PanelDisabled, PanelToggled, PanelDeleted,
		PanelSent, PanelListTitle, PanelListEmpty, PanelListEntry, PanelDefaultRole, PanelDescModal,
		PanelDescLabel, SetupTitle, SetupDescription, SetupSent, MultipanelTitle, MultipanelPrompt,
		MultipanelPlaceholder, MultipanelSelected, MultipanelCreated, MultipanelTimedOut,
		MultipanelDeleted, MultipanelSent, MultipanelListTitle, MultipanelListEmpty, ConfigSet,
		ConfigShowTitle, ConfigUnset, ConfigLogChannel, ConfigStaffRole, ConfigTrainingChannel,
		ConfigTicketCounter, ConfigColors, ConfigPanels, ConfigMultipanels, AIListTitle, AIListEmpty,
		AIRemoved, PermissionGranted, PermissionRevoked, PermissionListTitle, PermissionListEmpty,
		TicketModalTitle, TicketReasonLabel, TicketReasonPlaceholder, TicketCreated, TicketWelcome,
		TicketReasonField, TicketClaimButton, TicketCloseButton, TicketCloseReasonButton, TicketClaimed,
		TicketClaimAck, TicketConfirmTitle, TicketConfirm, TicketConfirmButton, TicketCancelButton,
		TicketCloseCancelled, TicketCloseTimedOut, TicketClosing, TicketCloseModal,
		TicketCloseReasonLabel, TicketAIResponse, TicketMemberAdded, TicketMemberRemoved, LogCreated,
		LogMemberAdded, LogMemberRemoved, SummaryTitle, SummaryTicket, SummaryOpener, SummaryCloser,
		SummaryDuration, SummaryClaimed, SummaryNotClaimed, SummaryReason, SummaryNoReason,
		SummaryTranscript, TrainingTitle, TrainingDescription, TrainingTrainButton,
		TrainingDismissButton, TrainingModalTitle, TrainingKeywordsLabel, TrainingResponseLabel,
		TrainingTrained, TrainingDismissed, TrainingSaved, TrainingDismissAck,
	}
	for _, k := range keys {
		require.NotEqual(t, "{"+k+"}", c.T(k), k)
	}
	require.Len(t, c.messages, len(keys), "catalog has keys without a constant: %v", reflect.ValueOf(c.messages).MapKeys())
}
