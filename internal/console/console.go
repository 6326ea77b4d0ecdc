package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vidfriends/admin/internal/dashboard"
	"github.com/vidfriends/admin/internal/models"
)

const helpText = `Commands:
  refresh                 reload users and videos
  delete <video-id|#n>    delete a video (asks for confirmation)
  share <video-id|#n> on  make a video visible to friends
  share <video-id|#n> off make a video private
  rmuser <user-id>        delete a user account
  role <user-id> <role>   set a user's role (admin or user)
  help                    show this help
  logout                  sign out and exit
`

// Console drives a dashboard from a line-oriented terminal.
type Console struct {
	Dashboard *dashboard.Dashboard
	Renderer  *Renderer
	Table     UserTable
	Card      VideoCard
	Input     *Input
	Out       io.Writer
	Logger    *slog.Logger
}

// Run activates the dashboard and processes commands until logout, end of
// input or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	if c.Renderer == nil {
		c.Renderer = NewRenderer()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	defer c.Input.Close()

	c.Dashboard.Activate(ctx)
	if err := c.render(); err != nil {
		return err
	}

	for {
		fmt.Fprint(c.Out, "> ")
		line, ok := c.Input.ReadLine(ctx)
		if !ok {
			fmt.Fprintln(c.Out)
			return c.logout(context.WithoutCancel(ctx))
		}

		quit, rerender := c.Execute(ctx, line)
		if quit {
			return c.logout(ctx)
		}
		if rerender {
			if err := c.render(); err != nil {
				return err
			}
		}
	}
}

// Execute runs one command line. It reports whether the console should exit
// and whether the dashboard needs redrawing.
func (c *Console) Execute(ctx context.Context, line string) (quit bool, rerender bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, false
	}

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		fmt.Fprint(c.Out, helpText)
		return false, false
	case "refresh", "r":
		c.Dashboard.Load(ctx)
		return false, true
	case "delete", "rm":
		if len(fields) != 2 {
			fmt.Fprintln(c.Out, "usage: delete <video-id|#n>")
			return false, false
		}
		c.deleteVideo(ctx, fields[1])
		return false, true
	case "share":
		if len(fields) != 3 {
			fmt.Fprintln(c.Out, "usage: share <video-id|#n> on|off")
			return false, false
		}
		return false, c.share(ctx, fields[1], fields[2])
	case "rmuser":
		if len(fields) != 2 {
			fmt.Fprintln(c.Out, "usage: rmuser <user-id>")
			return false, false
		}
		view := c.Dashboard.View()
		if err := c.Table.Delete(ctx, view.Users, view.SetUsers, fields[1]); err != nil {
			c.Logger.Error("user delete failed", slog.String("user_id", fields[1]), slog.Any("error", err))
		}
		return false, true
	case "role":
		if len(fields) != 3 {
			fmt.Fprintln(c.Out, "usage: role <user-id> admin|user")
			return false, false
		}
		role := strings.ToLower(fields[2])
		if !models.ValidRole(role) {
			fmt.Fprintf(c.Out, "role must be admin or user, got %q\n", fields[2])
			return false, false
		}
		view := c.Dashboard.View()
		if err := c.Table.SetRole(ctx, view.Users, view.SetUsers, fields[1], role); err != nil {
			c.Logger.Error("role update failed", slog.String("user_id", fields[1]), slog.Any("error", err))
		}
		return false, true
	case "logout", "quit", "exit":
		return true, false
	default:
		fmt.Fprintf(c.Out, "unknown command %q, type \"help\" for a list\n", fields[0])
		return false, false
	}
}

func (c *Console) deleteVideo(ctx context.Context, ref string) {
	card, found, err := c.findCard(ref)
	if err != nil {
		fmt.Fprintln(c.Out, err)
		return
	}
	if found {
		card.Delete(ctx)
		return
	}
	// Ids not on screen still go to the server; it decides whether they exist.
	c.Dashboard.DeleteVideo(ctx, ref)
}

func (c *Console) share(ctx context.Context, ref, state string) bool {
	var shared bool
	switch strings.ToLower(state) {
	case "on", "true", "yes":
		shared = true
	case "off", "false", "no":
		shared = false
	default:
		fmt.Fprintf(c.Out, "share state must be on or off, got %q\n", state)
		return false
	}

	card, found, err := c.findCard(ref)
	if err != nil {
		fmt.Fprintln(c.Out, err)
		return false
	}
	if !found {
		fmt.Fprintf(c.Out, "no video %q on the dashboard\n", ref)
		return false
	}

	if err := c.Card.ToggleShare(ctx, card, shared); err != nil {
		c.Logger.Error("share update failed", slog.String("video_id", card.Video.ID), slog.Any("error", err))
	}
	return true
}

// findCard resolves "#n" (1-based position) or a video id to its card.
func (c *Console) findCard(ref string) (dashboard.CardProps, bool, error) {
	cards := c.Dashboard.View().Cards

	if strings.HasPrefix(ref, "#") {
		n, err := strconv.Atoi(ref[1:])
		if err != nil || n < 1 || n > len(cards) {
			return dashboard.CardProps{}, false, fmt.Errorf("no video at position %s", ref)
		}
		return cards[n-1], true, nil
	}

	for _, card := range cards {
		if card.Video.ID == ref {
			return card, true, nil
		}
	}
	return dashboard.CardProps{}, false, nil
}

func (c *Console) render() error {
	return c.Renderer.Render(c.Out, c.Dashboard.View())
}

func (c *Console) logout(ctx context.Context) error {
	view := c.Dashboard.View()
	if view.Logout == nil {
		return nil
	}
	if err := view.Logout(ctx); err != nil {
		c.Logger.Error("logout failed", slog.Any("error", err))
		return err
	}
	fmt.Fprintln(c.Out, "Signed out.")
	return nil
}
