package console

import (
	"context"
	"fmt"
	"io"

	"github.com/vidfriends/admin/internal/dashboard"
	"github.com/vidfriends/admin/internal/models"
	"github.com/vidfriends/admin/internal/notify"
)

// ShareAPI is what a video card needs to change a video's visibility.
type ShareAPI interface {
	SetVideoShared(ctx context.Context, id string, shared bool) (models.Video, error)
}

// VideoCard renders one video and owns its share toggle.
type VideoCard struct {
	API      ShareAPI
	Notifier notify.Notifier
}

// Render writes the card for props at position n.
func (c VideoCard) Render(w io.Writer, n int, props dashboard.CardProps) {
	v := props.Video
	title := v.Title
	if title == "" {
		title = "(untitled)"
	}

	fmt.Fprintf(w, "  [%d] %s\n", n, title)
	fmt.Fprintf(w, "      id: %s\n", v.ID)
	if props.ShowOwner {
		owner := displayName(models.User{Name: v.Owner.Name, Email: v.Owner.Email})
		if owner == "" {
			owner = v.Owner.ID
		}
		if owner == "" {
			owner = "unknown"
		}
		if v.Owner.ID != "" && v.Owner.ID == props.CurrentUser.ID {
			owner += " (you)"
		}
		fmt.Fprintf(w, "      uploaded by: %s\n", owner)
	}
	visibility := "private"
	if v.IsShared {
		visibility = "shared"
	}
	fmt.Fprintf(w, "      visibility: %s\n", visibility)
	if v.URL != "" {
		fmt.Fprintf(w, "      url: %s\n", v.URL)
	}
	if !v.CreatedAt.IsZero() {
		fmt.Fprintf(w, "      uploaded: %s\n", v.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w)
}

// ToggleShare updates the video on the server, then reports the new flag
// through the card's share-update callback.
func (c VideoCard) ToggleShare(ctx context.Context, props dashboard.CardProps, shared bool) error {
	if c.API == nil {
		return fmt.Errorf("video card: api not configured")
	}

	updated, err := c.API.SetVideoShared(ctx, props.Video.ID, shared)
	if err != nil {
		if c.Notifier != nil {
			c.Notifier.Error("Failed to update sharing")
		}
		return fmt.Errorf("set video %s shared=%t: %w", props.Video.ID, shared, err)
	}

	if props.OnShareUpdate != nil {
		props.OnShareUpdate(props.Video.ID, updated.IsShared)
	}
	if c.Notifier != nil {
		if updated.IsShared {
			c.Notifier.Success("Video is now shared")
		} else {
			c.Notifier.Success("Video is now private")
		}
	}
	return nil
}
