package dashboard

import (
	"context"

	"github.com/vidfriends/admin/internal/models"
)

// Section is the mutually exclusive state of the video area.
type Section int

const (
	SectionLoading Section = iota
	SectionEmpty
	SectionPopulated
)

func (s Section) String() string {
	switch s {
	case SectionLoading:
		return "loading"
	case SectionEmpty:
		return "empty"
	case SectionPopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// CardProps is everything a video card receives.
type CardProps struct {
	Video       models.Video
	CurrentUser models.User
	// Delete runs the confirmed delete flow for this card's video.
	Delete        func(ctx context.Context)
	OnShareUpdate func(id string, isShared bool)
	// ShowOwner is always true on the admin dashboard.
	ShowOwner bool
}

// View is an immutable snapshot of the dashboard ready for rendering.
type View struct {
	CurrentUser models.User
	Logout      func(ctx context.Context) error

	Users    []models.User
	SetUsers func(users []models.User)

	Videos  []models.Video
	Loading bool
	Section Section
	Cards   []CardProps
}

// VideoCount is the figure shown on the "Videos Total" badge.
func (v View) VideoCount() int {
	return len(v.Videos)
}

// View snapshots the current state.
func (d *Dashboard) View() View {
	d.mu.Lock()
	users := append([]models.User(nil), d.users...)
	videos := append([]models.Video(nil), d.videos...)
	loading := d.loading
	d.mu.Unlock()

	var current models.User
	logout := func(context.Context) error { return nil }
	if d.session != nil {
		current = d.session.CurrentUser()
		logout = d.session.Logout
	}

	view := View{
		CurrentUser: current,
		Logout:      logout,
		Users:       users,
		SetUsers:    d.SetUsers,
		Videos:      videos,
		Loading:     loading,
	}

	switch {
	case loading:
		view.Section = SectionLoading
	case len(videos) == 0:
		view.Section = SectionEmpty
	default:
		view.Section = SectionPopulated
		view.Cards = make([]CardProps, 0, len(videos))
		for _, video := range videos {
			id := video.ID
			view.Cards = append(view.Cards, CardProps{
				Video:         video,
				CurrentUser:   current,
				Delete:        func(ctx context.Context) { d.DeleteVideo(ctx, id) },
				OnShareUpdate: d.HandleShareUpdate,
				ShowOwner:     true,
			})
		}
	}

	return view
}
