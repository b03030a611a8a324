package permissions

import (
	"context"
	"testing"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	b, err := dataaccess.NewFileBackend(l, t.TempDir())
	require.NoError(t, err)

	doc := dataaccess.NewDocument[entities.PermissionDocument](l, b, dataaccess.DocumentPermissions)
	require.NoError(t, doc.Load(context.Background()))
	return NewRegistry(l, doc)
}

func TestRegistry_Decide(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Grant(ctx, "g1", "u1", "panel_list")
	require.NoError(t, err)

	tests := []struct {
		name    string
		user    string
		command string
		admin   bool
		want    Decision
	}{
		{name: "admin always passes", user: "nobody", command: "config_set", admin: true, want: DecisionAllowed},
		{name: "granted command", user: "u1", command: "panel_list", want: DecisionAllowed},
		{name: "other command", user: "u1", command: "panel_delete", want: DecisionDenied},
		{name: "unknown user", user: "u2", command: "panel_list", want: DecisionNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, r.Decide("g1", tt.user, tt.command, tt.admin))
			require.Equal(t, tt.want == DecisionAllowed, r.IsAuthorized("g1", tt.user, tt.command, tt.admin))
		})
	}

	// Other guilds are independent.
	require.Equal(t, DecisionNotConfigured, r.Decide("g2", "u1", "panel_list", false))
}

func TestRegistry_GrantIsIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Grant(ctx, "g1", "u1", "panel_send")
	require.NoError(t, err)
	got, err := r.Grant(ctx, "g1", "u1", "panel_send")
	require.NoError(t, err)
	require.Equal(t, []string{"panel_send"}, got)

	_, err = r.Grant(ctx, "g1", "u1", "ban_everyone")
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestRegistry_WildcardRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Grant(ctx, "g1", "u1", "config_show")
	require.NoError(t, err)

	got, err := r.Revoke(ctx, "g1", "u1", Wildcard)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, DecisionDenied, r.Decide("g1", "u1", "config_show", false))
	require.Empty(t, r.List("g1"))

	got, err = r.Grant(ctx, "g1", "u1", Wildcard)
	require.NoError(t, err)
	require.Equal(t, ProtectedCommands, got)
	for _, c := range ProtectedCommands {
		require.True(t, r.IsAuthorized("g1", "u1", c, false), c)
	}
}

func TestRegistry_Revoke(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Revoke(ctx, "g1", "u1", "panel_list")
	require.ErrorIs(t, err, ErrNoPermissions)

	_, err = r.Grant(ctx, "g1", "u1", "panel_list")
	require.NoError(t, err)
	_, err = r.Grant(ctx, "g1", "u1", "panel_send")
	require.NoError(t, err)

	got, err := r.Revoke(ctx, "g1", "u1", "panel_list")
	require.NoError(t, err)
	require.Equal(t, []string{"panel_send"}, got)

	// Revoking something the user does not have is a no-op.
	got, err = r.Revoke(ctx, "g1", "u1", "config_set")
	require.NoError(t, err)
	require.Equal(t, []string{"panel_send"}, got)

	require.Equal(t, []Entry{{UserID: "u1", Commands: []string{"panel_send"}}}, r.List("g1"))
}
