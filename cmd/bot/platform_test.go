package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/panels"
	"github.com/stretchr/testify/require"
)

func TestParseEmoji(t *testing.T) {
	tests := []struct {
		name  string
		emoji string
		want  discordgo.ComponentEmoji
	}{
		{name: "unicode", emoji: "\U0001F41B", want: discordgo.ComponentEmoji{Name: "\U0001F41B"}},
		{name: "custom", emoji: "<:bug:123456789>", want: discordgo.ComponentEmoji{Name: "bug", ID: "123456789"}},
		{name: "animated", emoji: " <a:party:42> ", want: discordgo.ComponentEmoji{Name: "party", ID: "42", Animated: true}},
		{name: "empty", emoji: "", want: discordgo.ComponentEmoji{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseEmoji(tt.emoji))
		})
	}
}

func TestPanelButtons(t *testing.T) {
	entries := make([]panels.Entry, 0, 27)
	for j := 0; j < 27; j++ {
		entries = append(entries, panels.Entry{
			Key:   fmt.Sprintf("panel_%02d", j),
			Panel: entities.Panel{Label: fmt.Sprintf("Panel %d", j), Enabled: true},
		})
	}

	tests := []struct {
		name     string
		count    int
		wantRows []int
	}{
		{name: "single", count: 1, wantRows: []int{1}},
		{name: "full row", count: 5, wantRows: []int{5}},
		{name: "two rows", count: 7, wantRows: []int{5, 2}},
		{name: "over the limit", count: 27, wantRows: []int{5, 5, 5, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := panelButtons(entries[:tt.count])
			require.Len(t, rows, len(tt.wantRows))
			for j, row := range rows {
				require.Len(t, row.(discordgo.ActionsRow).Components, tt.wantRows[j])
			}

			first := rows[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
			require.Equal(t, "ticket_open:panel_00", first.CustomID)
			require.Equal(t, "Panel 0", first.Label)
		})
	}
}

func TestPanelList(t *testing.T) {
	got := panelList([]panels.Entry{
		{Key: "bug", Panel: entities.Panel{Label: "Bug", Emoji: "\U0001F41B", Description: "Report a bug"}},
		{Key: "other", Panel: entities.Panel{Label: "Other", Description: "Anything else"}},
	})
	require.Equal(t, "**\U0001F41B Bug**\nReport a bug\n\n**Other**\nAnything else", got)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
	require.Equal(t, "äöü…", truncate("äöüßäöü", 4))
}

func TestIsUnknown(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unknown channel",
			err:  &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel}},
			want: true,
		},
		{
			name: "wrapped unknown role",
			err:  fmt.Errorf("error getting role: %w", &discordgo.RESTError{
				Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownRole},
				Response: &http.Response{Status: "404 Not Found", StatusCode: http.StatusNotFound},
			}),
			want: true,
		},
		{
			name: "plain 404",
			err:  &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}},
			want: true,
		},
		{
			name: "missing access",
			err:  &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingAccess}, Response: &http.Response{StatusCode: http.StatusForbidden}},
			want: false,
		},
		{
			name: "not a rest error",
			err:  fmt.Errorf("connection reset"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isUnknown(tt.err))
		})
	}
}
