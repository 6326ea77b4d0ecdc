package console

import (
	"strings"

	"github.com/vidfriends/admin/internal/models"
)

func renderHeader(w *errWriter, user models.User) {
	who := displayName(user)
	if who == "" {
		who = "not signed in"
	}
	if user.Role != "" {
		who += " (" + user.Role + ")"
	}
	w.printf("VidFriends  |  %s  |  type \"logout\" to sign out\n", who)
	w.printf("%s\n", strings.Repeat("=", ruleWidth))
}

func displayName(user models.User) string {
	switch {
	case user.Name != "" && user.Email != "":
		return user.Name + " <" + user.Email + ">"
	case user.Name != "":
		return user.Name
	default:
		return user.Email
	}
}
