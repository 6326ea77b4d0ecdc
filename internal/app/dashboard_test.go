package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidfriends/admin/internal/apiclient"
	"github.com/vidfriends/admin/internal/auth"
	"github.com/vidfriends/admin/internal/config"
	"github.com/vidfriends/admin/internal/dashboard"
	"github.com/vidfriends/admin/internal/handlers"
	"github.com/vidfriends/admin/internal/models"
	"github.com/vidfriends/admin/internal/notify"
	"github.com/vidfriends/admin/internal/repositories"
)

type memoryStore struct {
	mu     sync.Mutex
	users  []models.User
	videos []models.Video
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *memoryStore) List(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.users...), nil
}

func (s *memoryStore) Delete(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memoryStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *memoryStore) SetRole(_ context.Context, id, role string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Role = role
			return s.users[i], nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

type memoryVideos struct{ store *memoryStore }

func (v memoryVideos) ListAll(context.Context) ([]models.Video, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return append([]models.Video(nil), v.store.videos...), nil
}

func (v memoryVideos) Delete(_ context.Context, id string) (models.Video, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	for i, video := range v.store.videos {
		if video.ID == id {
			v.store.videos = append(v.store.videos[:i], v.store.videos[i+1:]...)
			return video, nil
		}
	}
	return models.Video{}, repositories.ErrNotFound
}

func (v memoryVideos) SetShared(_ context.Context, id string, shared bool) (models.Video, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	for i := range v.store.videos {
		if v.store.videos[i].ID == id {
			v.store.videos[i].IsShared = shared
			return v.store.videos[i], nil
		}
	}
	return models.Video{}, repositories.ErrNotFound
}

const testTokenSecret = "0123456789abcdef0123456789abcdef"

func newMemoryStore(t *testing.T) *memoryStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	return &memoryStore{
		users: []models.User{
			{ID: "admin-1", Name: "Root", Email: "root@example.com", Role: models.RoleAdmin, Password: string(hash)},
			{ID: "user-1", Name: "Ada", Email: "ada@example.com", Role: models.RoleUser, Password: string(hash)},
		},
		videos: []models.Video{
			{ID: "v1", Title: "Cats", Owner: models.Owner{ID: "user-1", Name: "Ada", Email: "ada@example.com"}},
			{ID: "v2", Title: "Dogs", Owner: models.Owner{ID: "user-1", Name: "Ada", Email: "ada@example.com"}},
		},
	}
}

func newAdminServer(t *testing.T, store *memoryStore, accessTTL time.Duration) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewManager(testTokenSecret, accessTTL, time.Hour, auth.NewInMemorySessionStore()).WithUserLookup(store)
	srv := httptest.NewServer(handlers.NewRouter(logger, handlers.Dependencies{
		Users:    store,
		Sessions: sessions,
		Videos:   memoryVideos{store: store},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDashboardAgainstAdminAPI(t *testing.T) {
	store := newMemoryStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := newAdminServer(t, store, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := apiclient.New(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	session, err := client.Login(ctx, "root@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	var out bytes.Buffer
	input := strings.NewReader("delete v1\ny\nshare #1 on\nrole user-1 admin\nlogout\n")
	c := newConsole(client, session, input, &out, config.ConsoleConfig{LoadTimeout: time.Second}, logger)

	if err := c.Run(ctx); err != nil {
		t.Fatalf("run console: %v", err)
	}

	rendered := out.String()
	for _, want := range []string{
		"[2 Videos Total]",
		"Video removed from system",
		"[1 Videos Total]",
		"Video is now shared",
		"Role set to admin",
		"Signed out.",
	} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("expected %q in output\n%s", want, rendered)
		}
	}

	if len(store.videos) != 1 || store.videos[0].ID != "v2" || !store.videos[0].IsShared {
		t.Fatalf("unexpected server state %+v", store.videos)
	}

	if _, err := client.ListUsers(ctx); err == nil {
		t.Fatal("expected requests to fail after logout")
	}
}

func TestDashboardRefreshesExpiredAccessToken(t *testing.T) {
	store := newMemoryStore(t)
	srv := newAdminServer(t, store, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := apiclient.New(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	session, err := client.Login(ctx, "root@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	issued := session.Tokens()

	rec := &notify.Recorder{}
	dash := dashboard.New(client, session, rec, dashboard.ConfirmFunc(func(context.Context, string) bool { return true }), dashboard.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	dash.Activate(ctx)

	time.Sleep(2100 * time.Millisecond)

	dash.Load(ctx)
	dash.DeleteVideo(ctx, "v1")

	if got := rec.Errors(); len(got) != 0 {
		t.Fatalf("expected expired access token to be renewed, got %v", got)
	}
	if len(dash.Users()) != 2 || len(dash.Videos()) != 1 {
		t.Fatalf("unexpected dashboard state %d users %d videos", len(dash.Users()), len(dash.Videos()))
	}
	if renewed := session.Tokens(); renewed.AccessToken == issued.AccessToken || renewed.RefreshToken == issued.RefreshToken {
		t.Fatal("expected the session to hold a rotated token pair")
	}
}
