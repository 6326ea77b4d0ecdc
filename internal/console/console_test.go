package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vidfriends/admin/internal/dashboard"
	"github.com/vidfriends/admin/internal/models"
	"github.com/vidfriends/admin/internal/notify"
)

type fakeAPI struct {
	mu sync.Mutex

	users        []models.User
	videos       string
	deletedVideo []string
	deletedUser  []string
	shareCalls   []string
	shareErr     error
	roleCalls    []string
}

func (f *fakeAPI) ListUsers(context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeAPI) ListAllVideos(context.Context) (json.RawMessage, error) {
	return json.RawMessage(f.videos), nil
}

func (f *fakeAPI) DeleteVideo(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedVideo = append(f.deletedVideo, id)
	return nil
}

func (f *fakeAPI) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedUser = append(f.deletedUser, id)
	return nil
}

func (f *fakeAPI) SetVideoShared(_ context.Context, id string, shared bool) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shareCalls = append(f.shareCalls, id)
	if f.shareErr != nil {
		return models.Video{}, f.shareErr
	}
	return models.Video{ID: id, IsShared: shared}, nil
}

func (f *fakeAPI) SetUserRole(_ context.Context, id, role string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleCalls = append(f.roleCalls, id+"="+role)
	return models.User{ID: id, Role: role}, nil
}

type fakeSession struct {
	user      models.User
	loggedOut bool
	logoutErr error
}

func (s *fakeSession) CurrentUser() models.User { return s.user }

func (s *fakeSession) Logout(context.Context) error {
	s.loggedOut = true
	return s.logoutErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	api     *fakeAPI
	session *fakeSession
	notes   *notify.Recorder
	out     *bytes.Buffer
	console *Console
}

func newHarness(api *fakeAPI, input string) *harness {
	out := &bytes.Buffer{}
	notes := &notify.Recorder{}
	session := &fakeSession{user: models.User{ID: "admin-1", Name: "Root", Email: "root@example.com", Role: models.RoleAdmin}}
	in := NewInput(strings.NewReader(input))

	dash := dashboard.New(api, session, notes, Prompter{In: in, Out: out}, dashboard.Options{Logger: discardLogger()})

	return &harness{
		api:     api,
		session: session,
		notes:   notes,
		out:     out,
		console: &Console{
			Dashboard: dash,
			Renderer:  NewRenderer(),
			Table:     UserTable{API: api, Notifier: notes},
			Card:      VideoCard{API: api, Notifier: notes},
			Input:     in,
			Out:       out,
			Logger:    discardLogger(),
		},
	}
}

func runHarness(t *testing.T, h *harness) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.console.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRenderEmptyDashboard(t *testing.T) {
	h := newHarness(&fakeAPI{users: []models.User{}, videos: `[]`}, "logout\n")

	runHarness(t, h)

	out := h.out.String()
	for _, want := range []string{
		"Admin Control Panel",
		"Manage system users, roles, and global video content.",
		"No users found.",
		"[0 Videos Total]",
		"No videos have been uploaded to the platform yet.",
		"Root <root@example.com> (admin)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Syncing with database...") {
		t.Fatal("loading placeholder should not render after load")
	}
	if !h.session.loggedOut {
		t.Fatal("expected logout on exit")
	}
}

func TestRenderLoadingPlaceholder(t *testing.T) {
	dash := dashboard.New(&fakeAPI{}, nil, nil, nil, dashboard.Options{Logger: discardLogger()})
	var buf bytes.Buffer

	if err := NewRenderer().Render(&buf, dash.View()); err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(buf.String(), "Syncing with database...") {
		t.Fatalf("expected loading placeholder\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "No videos have been uploaded") {
		t.Fatal("empty state must not render while loading")
	}
}

func TestRenderCardsShowOwner(t *testing.T) {
	api := &fakeAPI{
		users:  []models.User{{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: models.RoleUser}},
		videos: `{"videos":[{"_id":"a","title":"Cats","owner":{"_id":"u1","name":"Ada","email":"ada@example.com"},"isShared":true},{"_id":"b","title":"Dogs","owner":{"_id":"admin-1","name":"Root"}}]}`,
	}
	h := newHarness(api, "")

	runHarness(t, h)

	out := h.out.String()
	for _, want := range []string{
		"[2 Videos Total]",
		"[1] Cats",
		"uploaded by: Ada <ada@example.com>",
		"visibility: shared",
		"[2] Dogs",
		"uploaded by: Root (you)",
		"visibility: private",
		"ada@example.com",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestBadgeGroupsThousands(t *testing.T) {
	if got := NewRenderer().Badge(1234); got != "1,234 Videos Total" {
		t.Fatalf("unexpected badge %q", got)
	}
}

func TestDeleteCommandConfirmed(t *testing.T) {
	api := &fakeAPI{users: []models.User{}, videos: `[{"_id":"a"},{"_id":"b"}]`}
	h := newHarness(api, "delete a\ny\nlogout\n")

	runHarness(t, h)

	if len(api.deletedVideo) != 1 || api.deletedVideo[0] != "a" {
		t.Fatalf("expected delete of a got %v", api.deletedVideo)
	}
	videos := h.console.Dashboard.Videos()
	if len(videos) != 1 || videos[0].ID != "b" {
		t.Fatalf("unexpected videos %+v", videos)
	}
	if got := h.notes.Successes(); len(got) != 1 || got[0] != dashboard.DeleteSucceededMessage {
		t.Fatalf("unexpected notifications %v", got)
	}
	if !strings.Contains(h.out.String(), dashboard.DeleteConfirmPrompt+" [y/N]: ") {
		t.Fatal("expected confirmation prompt")
	}
}

func TestDeleteCommandDeclined(t *testing.T) {
	api := &fakeAPI{users: []models.User{}, videos: `[{"_id":"a"}]`}
	h := newHarness(api, "delete #1\nn\n")

	runHarness(t, h)

	if len(api.deletedVideo) != 0 {
		t.Fatalf("expected no delete request got %v", api.deletedVideo)
	}
	if len(h.console.Dashboard.Videos()) != 1 {
		t.Fatal("expected video to remain")
	}
}

func TestDeleteUnknownIDStillCallsServer(t *testing.T) {
	api := &fakeAPI{users: []models.User{}, videos: `[{"_id":"a"}]`}
	h := newHarness(api, "delete ghost\nyes\n")

	runHarness(t, h)

	if len(api.deletedVideo) != 1 || api.deletedVideo[0] != "ghost" {
		t.Fatalf("expected request for ghost got %v", api.deletedVideo)
	}
	if len(h.console.Dashboard.Videos()) != 1 {
		t.Fatal("expected local list unchanged")
	}
}

func TestShareCommandUpdatesCard(t *testing.T) {
	api := &fakeAPI{users: []models.User{}, videos: `[{"_id":"a"},{"_id":"b"}]`}
	h := newHarness(api, "share b on\n")

	runHarness(t, h)

	videos := h.console.Dashboard.Videos()
	if videos[0].IsShared || !videos[1].IsShared {
		t.Fatalf("expected only b shared got %+v", videos)
	}
	if got := h.notes.Successes(); len(got) != 1 || got[0] != "Video is now shared" {
		t.Fatalf("unexpected notifications %v", got)
	}
}

func TestShareCommandFailureKeepsState(t *testing.T) {
	api := &fakeAPI{users: []models.User{}, videos: `[{"_id":"a"}]`, shareErr: errors.New("boom")}
	h := newHarness(api, "share a on\n")

	runHarness(t, h)

	if h.console.Dashboard.Videos()[0].IsShared {
		t.Fatal("expected share flag unchanged after failure")
	}
	if got := h.notes.Errors(); len(got) != 1 || got[0] != "Failed to update sharing" {
		t.Fatalf("unexpected notifications %v", got)
	}
}

func TestRemoveUserCommand(t *testing.T) {
	api := &fakeAPI{users: []models.User{{ID: "u1"}, {ID: "u2"}}, videos: `[]`}
	h := newHarness(api, "rmuser u1\n")

	runHarness(t, h)

	users := h.console.Dashboard.Users()
	if len(users) != 1 || users[0].ID != "u2" {
		t.Fatalf("unexpected users %+v", users)
	}
	if len(api.deletedUser) != 1 || api.deletedUser[0] != "u1" {
		t.Fatalf("unexpected delete calls %v", api.deletedUser)
	}
}

func TestRoleCommand(t *testing.T) {
	api := &fakeAPI{users: []models.User{{ID: "u1", Role: models.RoleUser}, {ID: "u2", Role: models.RoleUser}}, videos: `[]`}
	h := newHarness(api, "role u2 ADMIN\n")

	runHarness(t, h)

	if len(api.roleCalls) != 1 || api.roleCalls[0] != "u2=admin" {
		t.Fatalf("unexpected role calls %v", api.roleCalls)
	}
	users := h.console.Dashboard.Users()
	if users[0].Role != models.RoleUser || !users[1].IsAdmin() {
		t.Fatalf("unexpected users %+v", users)
	}
	if got := h.notes.Successes(); len(got) != 1 || got[0] != "Role set to admin" {
		t.Fatalf("unexpected notifications %v", got)
	}
}

func TestInputCloseReleasesReader(t *testing.T) {
	in := NewInput(strings.NewReader("one\ntwo\nthree\n"))

	line, ok := in.ReadLine(context.Background())
	if !ok || line != "one" {
		t.Fatalf("unexpected first line %q (%v)", line, ok)
	}

	in.Close()
	in.Close()

	select {
	case <-in.done:
	case <-time.After(time.Second):
		t.Fatal("reader goroutine still blocked after Close")
	}
	if _, ok := in.ReadLine(context.Background()); ok {
		t.Fatal("expected no lines after Close")
	}
}

// endlessLines never runs out of input.
type endlessLines struct{}

func (endlessLines) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = "help\n"[i%5]
	}
	return len(p), nil
}

func TestRunReleasesInputOnCancel(t *testing.T) {
	h := newHarness(&fakeAPI{users: []models.User{}, videos: `[]`}, "")
	h.console.Input = NewInput(endlessLines{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = h.console.Run(ctx)

	select {
	case <-h.console.Input.done:
	case <-time.After(time.Second):
		t.Fatal("reader goroutine leaked after Run returned")
	}
}

func TestExecuteRejectsBadInput(t *testing.T) {
	h := newHarness(&fakeAPI{users: []models.User{}, videos: `[]`}, "")
	h.console.Dashboard.Activate(context.Background())

	cases := []struct {
		line string
		want string
	}{
		{line: "frobnicate", want: `unknown command "frobnicate"`},
		{line: "delete", want: "usage: delete"},
		{line: "share a maybe", want: "share state must be on or off"},
		{line: "share #3 on", want: "no video at position #3"},
		{line: "role u1 owner", want: "role must be admin or user"},
		{line: "role u1", want: "usage: role"},
	}
	for _, tc := range cases {
		h.out.Reset()
		quit, _ := h.console.Execute(context.Background(), tc.line)
		if quit {
			t.Fatalf("%q should not quit", tc.line)
		}
		if !strings.Contains(h.out.String(), tc.want) {
			t.Fatalf("%q: expected %q in %q", tc.line, tc.want, h.out.String())
		}
	}
}
