package tickets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/events"
	"github.com/Jacobbrewer1/ticketeer/pkg/guildconfig"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/Jacobbrewer1/ticketeer/pkg/responder"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	mu sync.Mutex

	categories map[string]bool
	roles      map[string]bool
	createErr  error
	history    []HistoryMessage
	historyErr error

	channels  []*ChannelSpec
	responses []string
	logs      []*LogEntry
	claimants []string
	disabled  []bool
	summaries []*Summary
	direct    []*Summary
	deleted   []string
	members   map[string]bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		categories: map[string]bool{"cat": true},
		roles:      map[string]bool{"500": true, "501": true},
		members:    make(map[string]bool),
	}
}

func (f *fakePlatform) CategoryExists(_ context.Context, _, id string) (bool, error) {
	return f.categories[id], nil
}

func (f *fakePlatform) RoleExists(_ context.Context, _, id string) (bool, error) {
	return f.roles[id], nil
}

func (f *fakePlatform) GuildName(context.Context, string) string { return "Test Guild" }

func (f *fakePlatform) CreateTicketChannel(_ context.Context, spec *ChannelSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.channels = append(f.channels, spec)
	return fmt.Sprintf("chan-%d", len(f.channels)), nil
}

func (f *fakePlatform) SendWelcome(_ context.Context, t *entities.Ticket) (string, error) {
	return "welcome-" + t.ChannelID, nil
}

func (f *fakePlatform) PostResponse(_ context.Context, _, response string) error {
	f.responses = append(f.responses, response)
	return nil
}

func (f *fakePlatform) LogTicket(_ context.Context, _ string, e *LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, e)
	return nil
}

func (f *fakePlatform) GrantClaimant(_ context.Context, _, userID string) error {
	f.claimants = append(f.claimants, userID)
	return nil
}

func (f *fakePlatform) AnnounceClaim(context.Context, string, string) error { return nil }

func (f *fakePlatform) DisableControls(_ context.Context, _, _ string, claimOnly bool) error {
	f.disabled = append(f.disabled, claimOnly)
	return nil
}

func (f *fakePlatform) AnnounceClose(context.Context, string, string, time.Duration) error {
	return nil
}

func (f *fakePlatform) History(context.Context, string) ([]HistoryMessage, error) {
	return f.history, f.historyErr
}

func (f *fakePlatform) SendSummary(_ context.Context, _ string, s *Summary) error {
	f.summaries = append(f.summaries, s)
	return nil
}

func (f *fakePlatform) DirectSummary(_ context.Context, _ string, s *Summary) error {
	f.direct = append(f.direct, s)
	return errors.New("cannot send messages to this user")
}

func (f *fakePlatform) DeleteChannel(_ context.Context, channelID string) error {
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakePlatform) SetMemberAccess(_ context.Context, _, userID string) error {
	f.members[userID] = true
	return nil
}

func (f *fakePlatform) RemoveMemberAccess(_ context.Context, _, userID string) error {
	delete(f.members, userID)
	return nil
}

type fakeResponder struct {
	mu       sync.Mutex
	rules    map[string]string
	requests []responder.Request
}

func (f *fakeResponder) Match(_, text string) (string, bool) {
	for k, v := range f.rules {
		if strings.Contains(strings.ToLower(text), k) {
			return v, true
		}
	}
	return "", false
}

func (f *fakeResponder) RequestTraining(_ context.Context, req responder.Request) (*entities.PendingTraining, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return nil, nil
}

type memTranscripts struct {
	mu    sync.Mutex
	files map[string]string
}

func (m *memTranscripts) Save(_ context.Context, name, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = content
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type testEnv struct {
	m          *Manager
	configs    *guildconfig.Registry
	platform   *fakePlatform
	responder  *fakeResponder
	files      *memTranscripts
	publisher  *recordingPublisher
	ticketsDoc *dataaccess.Document[entities.TicketDocument]
}

var (
	staff = &Actor{ID: "s1", Name: "staffer", RoleIDs: []string{"500"}}
	admin = &Actor{ID: "a1", Name: "admin", IsAdmin: true}
	user  = &Actor{ID: "u9", Name: "someone"}
)

func newTestEnv(t *testing.T) *testEnv {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	b, err := dataaccess.NewFileBackend(l, t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	cfgDoc := dataaccess.NewDocument[entities.ConfigDocument](l, b, dataaccess.DocumentConfig)
	require.NoError(t, cfgDoc.Load(ctx))
	ticketDoc := dataaccess.NewDocument[entities.TicketDocument](l, b, dataaccess.DocumentTickets)
	require.NoError(t, ticketDoc.Load(ctx))

	configs := guildconfig.NewRegistry(l, cfgDoc)
	require.NoError(t, configs.SetField(ctx, "g1", guildconfig.SettingStaffRole, "500"))
	require.NoError(t, configs.SetField(ctx, "g1", guildconfig.SettingLogChannel, "123"))
	require.NoError(t, configs.AddPanel(ctx, "g1", "support", &entities.Panel{
		Label:      "Support",
		CategoryID: "cat",
		Enabled:    true,
	}))

	env := &testEnv{
		configs:    configs,
		platform:   newFakePlatform(),
		responder:  &fakeResponder{rules: map[string]string{"rolle": "Ask in #roles."}},
		files:      &memTranscripts{files: make(map[string]string)},
		publisher:  new(recordingPublisher),
		ticketsDoc: ticketDoc,
	}
	env.m = NewManager(l, configs, ticketDoc, env.responder, env.platform, env.files, env.publisher)
	env.m.sleep = func(context.Context, time.Duration) {}
	env.m.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return env
}

func (e *testEnv) create(t *testing.T, reason string) *entities.Ticket {
	tk, err := e.m.Create(context.Background(), &CreateRequest{
		GuildID:     "g1",
		PanelKey:    "support",
		CreatorID:   "u1",
		CreatorName: "alice",
		Reason:      reason,
	})
	require.NoError(t, err)
	return tk
}

func TestManager_CreateNumbersSequentially(t *testing.T) {
	env := newTestEnv(t)

	for i := 1; i <= 5; i++ {
		tk := env.create(t, "I need help with my account")
		require.Equal(t, i, tk.Number)
		require.Equal(t, fmt.Sprintf("support-%04d", i), tk.Name())
	}

	spec := env.platform.channels[0]
	require.Equal(t, "support-0001", spec.Name)
	require.Equal(t, "Ticket from alice | Type: Support | ID: u1", spec.Topic)
	require.Equal(t, "500", spec.StaffRoleID)
	require.Equal(t, "cat", spec.CategoryID)

	cfg, err := env.configs.GetOrCreate(context.Background(), "g1")
	require.NoError(t, err)
	require.Equal(t, 5, cfg.TicketCounter)
}

func TestManager_CreateConcurrentNumbersAreUnique(t *testing.T) {
	env := newTestEnv(t)

	const n = 10
	numbers := make(chan int, n)
	errCh := make(chan error, n)

	wg := new(sync.WaitGroup)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk, err := env.m.Create(context.Background(), &CreateRequest{GuildID: "g1", PanelKey: "support", CreatorID: "u1", Reason: "help"})
			if err != nil {
				errCh <- err
				return
			}
			numbers <- tk.Number
		}()
	}
	wg.Wait()
	close(numbers)
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	seen := make(map[int]bool)
	for num := range numbers {
		require.False(t, seen[num], "duplicate ticket number %d", num)
		seen[num] = true
	}
	require.Len(t, seen, n)
}

func TestManager_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(env *testEnv)
		panel   string
		wantErr error
	}{
		{
			name:    "unknown panel",
			panel:   "billing",
			wantErr: errs.ErrNotFound,
		},
		{
			name: "disabled panel",
			setup: func(env *testEnv) {
				require.NoError(t, env.configs.UpdatePanel(context.Background(), "g1", "support", func(p *entities.Panel) {
					p.Enabled = false
				}))
			},
			panel:   "support",
			wantErr: errs.ErrInvalidValue,
		},
		{
			name: "category gone",
			setup: func(env *testEnv) {
				env.platform.categories = map[string]bool{}
			},
			panel:   "support",
			wantErr: errs.ErrNotFound,
		},
		{
			name: "staff role gone",
			setup: func(env *testEnv) {
				env.platform.roles = map[string]bool{}
			},
			panel:   "support",
			wantErr: errs.ErrNotFound,
		},
		{
			name: "no staff role configured",
			setup: func(env *testEnv) {
				require.NoError(t, env.configs.SetField(context.Background(), "g1", guildconfig.SettingStaffRole, "0"))
			},
			panel:   "support",
			wantErr: errs.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(env)
			}

			_, err := env.m.Create(context.Background(), &CreateRequest{GuildID: "g1", PanelKey: tt.panel, CreatorID: "u1", Reason: "help"})
			require.ErrorIs(t, err, tt.wantErr)

			cfg, err := env.configs.GetOrCreate(context.Background(), "g1")
			require.NoError(t, err)
			require.Zero(t, cfg.TicketCounter)
			require.Empty(t, env.platform.channels)
			require.Empty(t, env.publisher.events)
		})
	}
}

func TestManager_CreatePanelStaffRoleOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.configs.UpdatePanel(ctx, "g1", "support", func(p *entities.Panel) {
		p.StaffRoleID = "501"
	}))

	tk := env.create(t, "help")
	require.Equal(t, "501", tk.StaffRoleID)
	require.Equal(t, "501", env.platform.channels[0].StaffRoleID)
}

func TestManager_CreateChannelFailureBurnsNumber(t *testing.T) {
	env := newTestEnv(t)
	env.platform.createErr = errors.New("missing permissions")

	_, err := env.m.Create(context.Background(), &CreateRequest{GuildID: "g1", PanelKey: "support", CreatorID: "u1", Reason: "help"})
	require.ErrorIs(t, err, errs.ErrDependencyUnavailable)

	env.platform.createErr = nil
	tk := env.create(t, "help")
	require.Equal(t, 2, tk.Number)
}

func TestManager_CreateAnswersOrRequestsTraining(t *testing.T) {
	env := newTestEnv(t)

	tk := env.create(t, "Ich brauche eine neue ROLLE bitte")
	require.Equal(t, []string{"Ask in #roles."}, env.platform.responses)
	require.Empty(t, env.responder.requests)
	require.Equal(t, "welcome-"+tk.ChannelID, tk.ControlMessageID)

	tk = env.create(t, "My payment failed twice")
	require.Len(t, env.responder.requests, 1)
	require.Equal(t, responder.Request{
		GuildID:      "g1",
		ChannelID:    tk.ChannelID,
		CreatorID:    "u1",
		Reason:       "My payment failed twice",
		TicketNumber: 2,
	}, env.responder.requests[0])

	require.Len(t, env.platform.logs, 2)
	require.Equal(t, LogCreated, env.platform.logs[0].Action)
	require.Len(t, env.publisher.events, 2)
	require.Equal(t, events.TicketCreated, env.publisher.events[0].Type)
}

func TestManager_Claim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tk := env.create(t, "help")

	_, err := env.m.Claim(ctx, "g1", tk.ChannelID, user)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = env.m.Claim(ctx, "g1", "nope", staff)
	require.ErrorIs(t, err, errs.ErrNotFound)

	claimed, err := env.m.Claim(ctx, "g1", tk.ChannelID, staff)
	require.NoError(t, err)
	require.Equal(t, "s1", claimed.ClaimedBy)
	require.Equal(t, entities.TicketStateClaimed, claimed.State)
	require.Equal(t, []string{"s1"}, env.platform.claimants)
	require.Equal(t, []bool{true}, env.platform.disabled)

	// A second claim never reassigns.
	_, err = env.m.Claim(ctx, "g1", tk.ChannelID, admin)
	require.ErrorIs(t, err, errs.ErrAlreadyClaimed)

	got, err := env.m.Lookup("g1", tk.ChannelID)
	require.NoError(t, err)
	require.Equal(t, "s1", got.ClaimedBy)
	require.Equal(t, []string{"s1"}, env.platform.claimants)
}

func TestManager_CloseWithoutMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tk := env.create(t, "help")

	_, err := env.m.Close(ctx, &CloseRequest{GuildID: "g1", ChannelID: tk.ChannelID, Actor: *user})
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	summary, err := env.m.Close(ctx, &CloseRequest{GuildID: "g1", ChannelID: tk.ChannelID, Actor: *staff})
	require.NoError(t, err)

	require.Equal(t, "support-0001", summary.TicketName)
	require.Equal(t, NotClaimed, summary.ClaimedBy)
	require.Equal(t, NoReason, summary.Reason)
	require.Equal(t, "u1", summary.OpenerID)
	require.Equal(t, "s1", summary.CloserID)
	require.Zero(t, summary.OpenDuration)

	name := TranscriptFileName("support", 1, env.m.now())
	require.Equal(t, name, summary.Transcript)
	content, ok := env.files.files[name]
	require.True(t, ok)
	require.Equal(t, "TRANSCRIPT - TICKET support-0001\n"+
		"Server: Test Guild\n"+
		"Creator: alice (u1)\n"+
		"Closed by: staffer (s1)\n"+
		"Reason: none given\n"+
		strings.Repeat("=", 50)+"\n\n", content)

	require.Len(t, env.platform.summaries, 1)
	require.Len(t, env.platform.direct, 1)
	require.Equal(t, []string{tk.ChannelID}, env.platform.deleted)
	require.Equal(t, []bool{false}, env.platform.disabled)

	_, err = env.m.Lookup("g1", tk.ChannelID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	env.ticketsDoc.View(func(doc *entities.TicketDocument) {
		st, ok := doc.Servers["g1"].Get(1)
		require.True(t, ok)
		require.Equal(t, entities.TicketStateDeleted, st.State)
		require.Equal(t, "s1", st.ClosedBy)
		require.False(t, st.ClosedAt.IsZero())
	})

	// Closing twice is not possible.
	_, err = env.m.Close(ctx, &CloseRequest{GuildID: "g1", ChannelID: tk.ChannelID, Actor: *staff})
	require.ErrorIs(t, err, errs.ErrNotFound)

	last := env.publisher.events[len(env.publisher.events)-1]
	require.Equal(t, events.TicketClosed, last.Type)
}

func TestManager_CloseHistoryFailureKeepsHeader(t *testing.T) {
	env := newTestEnv(t)
	tk := env.create(t, "help")
	env.platform.historyErr = errors.New("unknown channel")

	summary, err := env.m.Close(context.Background(), &CloseRequest{
		GuildID:   "g1",
		ChannelID: tk.ChannelID,
		Actor:     *admin,
		Reason:    "resolved",
		Delay:     ReasonCloseDelay,
	})
	require.NoError(t, err)
	require.Equal(t, "resolved", summary.Reason)
	require.Contains(t, env.files.files[summary.Transcript], "Reason: resolved\n")
}

func TestManager_Members(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tk := env.create(t, "help")

	_, err := env.m.AddMember(ctx, "g1", tk.ChannelID, user, "u2")
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = env.m.AddMember(ctx, "g1", tk.ChannelID, staff, "")
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	_, err = env.m.AddMember(ctx, "g1", tk.ChannelID, staff, "u2")
	require.NoError(t, err)
	require.True(t, env.platform.members["u2"])

	_, err = env.m.RemoveMember(ctx, "g1", tk.ChannelID, staff, "u2")
	require.NoError(t, err)
	require.False(t, env.platform.members["u2"])

	actions := make([]LogAction, 0)
	for _, e := range env.platform.logs {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []LogAction{LogCreated, LogMemberAdded, LogMemberRemoved}, actions)
}

func TestRenderTranscript(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got := RenderTranscript(&TranscriptHeader{
		TicketName: "bug_report-0012",
		ServerName: "Guild",
		Creator:    "alice (1)",
		ClosedBy:   "bob (2)",
	}, []HistoryMessage{
		{Author: "alice", Content: "it crashes", Timestamp: at},
		{Author: "alice", Timestamp: at.Add(time.Minute), HasEmbedsOrAttachments: true},
	})

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Equal(t, "TRANSCRIPT - TICKET bug_report-0012", lines[0])
	require.Equal(t, "Reason: none given", lines[4])
	require.Equal(t, "[2024-01-02 03:04:05] alice: it crashes", lines[7])
	require.Equal(t, "[2024-01-02 03:05:05] alice: [embed/attachment]", lines[8])
}

func TestFileTranscripts_Save(t *testing.T) {
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "transcripts")
	store, err := NewFileTranscripts(l, dir)
	require.NoError(t, err)

	name := TranscriptFileName("support", 3, time.Unix(1700000000, 0))
	require.Equal(t, "ticket-support-3-1700000000.txt", name)
	require.NoError(t, store.Save(context.Background(), name, "hello"))

	got, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	// A name with path elements is written inside the directory.
	require.NoError(t, store.Save(context.Background(), "ticket-/../../escaped-1-100.txt", "x"))
	_, err = os.Stat(filepath.Join(dir, "escaped-1-100.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escaped-1-100.txt"))
	require.True(t, os.IsNotExist(err))

	require.ErrorIs(t, store.Save(context.Background(), "..", "x"), errs.ErrInvalidValue)
}
