// Package dashboard holds the admin dashboard state: every user, every video
// across all owners, and the actions an administrator can take on them.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vidfriends/admin/internal/logging"
	"github.com/vidfriends/admin/internal/models"
	"github.com/vidfriends/admin/internal/notify"
)

// Messages shown to the operator.
const (
	LoadFailedMessage      = "Failed to load administrative data"
	LoadTimedOutMessage    = "Timed out loading administrative data"
	DeleteConfirmPrompt    = "Are you sure you want to delete this video? This cannot be undone."
	DeleteSucceededMessage = "Video removed from system"
	DeleteFailedMessage    = "Failed to delete video"
)

// API is the subset of the admin API the dashboard drives.
type API interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListAllVideos(ctx context.Context) (json.RawMessage, error)
	DeleteVideo(ctx context.Context, id string) error
}

// Session is the authenticated operator viewing the dashboard.
type Session interface {
	CurrentUser() models.User
	Logout(ctx context.Context) error
}

// Confirmer asks the operator a blocking yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Options tunes a Dashboard.
type Options struct {
	// LoadTimeout bounds the combined user and video fetch. Zero disables it.
	LoadTimeout time.Duration
	Logger      *slog.Logger
}

// Dashboard owns the view state for one activation of the admin dashboard.
type Dashboard struct {
	api      API
	session  Session
	notifier notify.Notifier
	confirm  Confirmer
	logger   *slog.Logger

	loadTimeout time.Duration
	activate    sync.Once

	mu      sync.Mutex
	users   []models.User
	videos  []models.Video
	loading bool
}

// New constructs a dashboard. It starts in the loading state; call Activate
// to run the initial fetch.
func New(api API, session Session, notifier notify.Notifier, confirm Confirmer, opts Options) *Dashboard {
	if api == nil {
		panic("dashboard: api must not be nil")
	}
	if notifier == nil {
		notifier = &notify.Recorder{}
	}
	if confirm == nil {
		confirm = ConfirmFunc(func(context.Context, string) bool { return false })
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dashboard{
		api:         api,
		session:     session,
		notifier:    notifier,
		confirm:     confirm,
		logger:      logger.With(slog.String("component", "admin-dashboard")),
		loadTimeout: opts.LoadTimeout,
		users:       []models.User{},
		videos:      []models.Video{},
		loading:     true,
	}
}

// Activate runs the initial load. Subsequent calls do nothing; use Load to refresh.
func (d *Dashboard) Activate(ctx context.Context) {
	d.activate.Do(func() {
		d.Load(ctx)
	})
}

// Load fetches users and videos concurrently and commits both only when both
// succeed. Any failure leaves the previous lists in place and notifies once.
func (d *Dashboard) Load(ctx context.Context) {
	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()

	ctx, span := logging.StartSpan(logging.WithLogger(ctx, d.logger), "admin data fetch")

	fetchCtx := ctx
	if d.loadTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, d.loadTimeout)
		defer cancel()
	}

	users, videos, err := d.fetch(fetchCtx)
	span.End(err)

	d.mu.Lock()
	if err == nil {
		d.users = users
		d.videos = videos
	}
	d.loading = false
	d.mu.Unlock()

	if err != nil {
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			d.notifier.Error(LoadTimedOutMessage)
			return
		}
		d.notifier.Error(LoadFailedMessage)
	}
}

func (d *Dashboard) fetch(ctx context.Context) ([]models.User, []models.Video, error) {
	var (
		users []models.User
		raw   json.RawMessage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := d.api.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		users = list
		return nil
	})
	g.Go(func() error {
		payload, err := d.api.ListAllVideos(gctx)
		if err != nil {
			return fmt.Errorf("list all videos: %w", err)
		}
		raw = payload
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	videos, err := normalizeVideos(raw)
	if err != nil {
		return nil, nil, err
	}
	return users, videos, nil
}

// DeleteVideo removes a video after the operator confirms and the API accepts
// the delete. The local list only changes once the server has answered.
func (d *Dashboard) DeleteVideo(ctx context.Context, id string) {
	if !d.confirm.Confirm(ctx, DeleteConfirmPrompt) {
		return
	}

	ctx, span := logging.StartSpan(logging.WithLogger(ctx, d.logger.With(slog.String("video_id", id))), "delete video")
	err := d.api.DeleteVideo(ctx, id)
	span.End(err)
	if err != nil {
		d.notifier.Error(DeleteFailedMessage)
		return
	}

	d.mu.Lock()
	d.videos = withoutVideo(d.videos, id)
	d.mu.Unlock()

	d.notifier.Success(DeleteSucceededMessage)
}

// HandleShareUpdate reconciles local state after a card changed a video's
// shared flag on the server. It performs no I/O.
func (d *Dashboard) HandleShareUpdate(id string, isShared bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := make([]models.Video, len(d.videos))
	for i, v := range d.videos {
		if v.ID == id {
			v.IsShared = isShared
		}
		next[i] = v
	}
	d.videos = next
}

// SetUsers replaces the user list wholesale. The user table calls it after
// its own mutations.
func (d *Dashboard) SetUsers(users []models.User) {
	if users == nil {
		users = []models.User{}
	}
	d.mu.Lock()
	d.users = append([]models.User(nil), users...)
	d.mu.Unlock()
}

// Loading reports whether a fetch is in flight.
func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// Users returns a copy of the current user list.
func (d *Dashboard) Users() []models.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.User(nil), d.users...)
}

// Videos returns a copy of the current video list.
func (d *Dashboard) Videos() []models.Video {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Video(nil), d.videos...)
}

func withoutVideo(videos []models.Video, id string) []models.Video {
	out := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out
}
