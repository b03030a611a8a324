package responder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/stretchr/testify/require"
)

type fakeConfigs struct {
	cfg *entities.ServerConfig
}

func (f *fakeConfigs) GetOrCreate(context.Context, string) (*entities.ServerConfig, error) {
	return f.cfg.Clone(), nil
}

type fakeNotifier struct {
	calls []*entities.PendingTraining
	err   error
}

func (f *fakeNotifier) NotifyTraining(_ context.Context, _, _ string, p *entities.PendingTraining) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, p)
	return "msg-1", nil
}

func newTestResponder(t *testing.T, trainingChannel string) (*Responder, *fakeNotifier) {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	b, err := dataaccess.NewFileBackend(l, t.TempDir())
	require.NoError(t, err)

	doc := dataaccess.NewDocument[entities.TrainingDocument](l, b, dataaccess.DocumentTraining)
	require.NoError(t, doc.Load(context.Background()))

	cfg := entities.NewServerConfig()
	cfg.AITrainingChannelID = trainingChannel

	n := new(fakeNotifier)
	r := NewResponder(l, doc, &fakeConfigs{cfg: cfg}, n)
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	return r, n
}

func TestMatch(t *testing.T) {
	rules := entities.KeywordRules{
		{Keywords: "rolle, rank", Response: "roles"},
		{Keywords: "bug", Response: "bugs"},
		{Keywords: "bug report", Response: "reports"},
		{Keywords: "pay", Response: "first"},
		{Keywords: "pal", Response: "second"},
	}

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "case insensitive substring", input: "Ich brauche eine neue ROLLE bitte", want: "roles", ok: true},
		{name: "longest term wins", input: "I want to file a bug report", want: "reports", ok: true},
		{name: "shorter term alone", input: "found a bug", want: "bugs", ok: true},
		{name: "tie keeps list order", input: "paypal refund", want: "first", ok: true},
		{name: "no match", input: "hello there", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(rules, tt.input)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got.Response)
		})
	}
}

func TestNormalizeGroup(t *testing.T) {
	require.Equal(t, "role, rank", NormalizeGroup(" Role,,  RANK ,"))
	require.Empty(t, NormalizeGroup(" , "))
}

func TestResponder_RequestTrainingWithoutChannel(t *testing.T) {
	r, n := newTestResponder(t, "")

	p, err := r.RequestTraining(context.Background(), Request{GuildID: "g1", Reason: "help", TicketNumber: 3})
	require.NoError(t, err)
	require.Nil(t, p)
	require.Empty(t, n.calls)
	require.Empty(t, r.Rules("g1"))
}

func TestResponder_TrainFlow(t *testing.T) {
	r, n := newTestResponder(t, "900")
	ctx := context.Background()

	p, err := r.RequestTraining(ctx, Request{GuildID: "g1", ChannelID: "c1", Reason: "need a new role", TicketNumber: 3, CreatorID: "u1"})
	require.NoError(t, err)
	require.Equal(t, "train_3_1700000000", p.ID)
	require.Equal(t, "msg-1", p.MessageID)
	require.Len(t, n.calls, 1)

	stored, ok := r.Pending("g1", p.ID)
	require.True(t, ok)
	require.Equal(t, "msg-1", stored.MessageID)

	_, err = r.Train(ctx, "g1", p.ID, " ", "answer")
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	resolved, err := r.Train(ctx, "g1", p.ID, "Role, Rank", "Ask an admin for roles.")
	require.NoError(t, err)
	require.Equal(t, "need a new role", resolved.Reason)

	_, ok = r.Pending("g1", p.ID)
	require.False(t, ok)

	got, ok := r.Match("g1", "my RANK is wrong")
	require.True(t, ok)
	require.Equal(t, "Ask an admin for roles.", got)

	// Both outcomes are terminal.
	_, err = r.Train(ctx, "g1", p.ID, "role", "again")
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = r.Dismiss(ctx, "g1", p.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestResponder_TrainReplacesSameGroup(t *testing.T) {
	r, _ := newTestResponder(t, "900")
	ctx := context.Background()

	for i, resp := range []string{"old", "new"} {
		p, err := r.RequestTraining(ctx, Request{GuildID: "g1", Reason: "x", TicketNumber: i + 1})
		require.NoError(t, err)
		_, err = r.Train(ctx, "g1", p.ID, "refund", resp)
		require.NoError(t, err)
	}

	require.Equal(t, entities.KeywordRules{{Keywords: "refund", Response: "new"}}, r.Rules("g1"))
}

func TestResponder_Dismiss(t *testing.T) {
	r, _ := newTestResponder(t, "900")
	ctx := context.Background()

	p, err := r.RequestTraining(ctx, Request{GuildID: "g1", Reason: "x", TicketNumber: 1})
	require.NoError(t, err)

	_, err = r.Dismiss(ctx, "g1", p.ID)
	require.NoError(t, err)
	require.Empty(t, r.Rules("g1"))

	_, ok := r.Pending("g1", p.ID)
	require.False(t, ok)
}

func TestResponder_NotifyFailureKeepsPending(t *testing.T) {
	r, n := newTestResponder(t, "900")
	n.err = errors.New("missing access")

	p, err := r.RequestTraining(context.Background(), Request{GuildID: "g1", Reason: "x", TicketNumber: 9})
	require.ErrorIs(t, err, errs.ErrDependencyUnavailable)
	require.NotNil(t, p)

	_, ok := r.Pending("g1", p.ID)
	require.True(t, ok)
}

func TestResponder_RemoveRule(t *testing.T) {
	r, _ := newTestResponder(t, "900")
	ctx := context.Background()

	p, err := r.RequestTraining(ctx, Request{GuildID: "g1", Reason: "x", TicketNumber: 1})
	require.NoError(t, err)
	_, err = r.Train(ctx, "g1", p.ID, "bug", "report it")
	require.NoError(t, err)

	_, err = r.RemoveRule(ctx, "g1", 5)
	require.ErrorIs(t, err, errs.ErrNotFound)

	removed, err := r.RemoveRule(ctx, "g1", 0)
	require.NoError(t, err)
	require.Equal(t, "bug", removed.Keywords)
	require.Empty(t, r.Rules("g1"))
}
