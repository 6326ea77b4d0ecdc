package console

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vidfriends/admin/internal/models"
	"github.com/vidfriends/admin/internal/notify"
)

// UserAPI is what the user table needs from the admin API.
type UserAPI interface {
	DeleteUser(ctx context.Context, id string) error
	SetUserRole(ctx context.Context, id, role string) (models.User, error)
}

// UserTable lists accounts, removes them and changes their role on request.
type UserTable struct {
	API      UserAPI
	Notifier notify.Notifier
}

// Render writes the user table.
func (t UserTable) Render(w io.Writer, users []models.User) {
	fmt.Fprintln(w, "Users")
	if len(users) == 0 {
		fmt.Fprintln(w, "    No users found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "    ID\tNAME\tEMAIL\tROLE\tJOINED")
	for _, u := range users {
		joined := "-"
		if !u.CreatedAt.IsZero() {
			joined = u.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\t%s\n", u.ID, orDash(u.Name), orDash(u.Email), orDash(u.Role), joined)
	}
	_ = tw.Flush()
}

// Delete removes a user through the API and hands the shortened list to setUsers.
func (t UserTable) Delete(ctx context.Context, users []models.User, setUsers func([]models.User), id string) error {
	if t.API == nil {
		return fmt.Errorf("user table: api not configured")
	}
	if err := t.API.DeleteUser(ctx, id); err != nil {
		t.notifyError("Failed to delete user")
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	remaining := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			remaining = append(remaining, u)
		}
	}
	setUsers(remaining)

	if t.Notifier != nil {
		t.Notifier.Success("User removed")
	}
	return nil
}

// SetRole changes a user's role through the API and hands the updated list
// to setUsers.
func (t UserTable) SetRole(ctx context.Context, users []models.User, setUsers func([]models.User), id, role string) error {
	if t.API == nil {
		return fmt.Errorf("user table: api not configured")
	}
	updated, err := t.API.SetUserRole(ctx, id, role)
	if err != nil {
		t.notifyError("Failed to update role")
		return fmt.Errorf("set role of %s: %w", id, err)
	}

	next := make([]models.User, len(users))
	for i, u := range users {
		if u.ID == id {
			u.Role = updated.Role
		}
		next[i] = u
	}
	setUsers(next)

	if t.Notifier != nil {
		t.Notifier.Success(fmt.Sprintf("Role set to %s", updated.Role))
	}
	return nil
}

func (t UserTable) notifyError(message string) {
	if t.Notifier != nil {
		t.Notifier.Error(message)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
