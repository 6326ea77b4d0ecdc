package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vidfriends/admin/internal/apiclient"
	"github.com/vidfriends/admin/internal/config"
	"github.com/vidfriends/admin/internal/console"
	"github.com/vidfriends/admin/internal/dashboard"
	"github.com/vidfriends/admin/internal/logging"
	"github.com/vidfriends/admin/internal/notify"
)

// runDashboard signs in to the admin API and drives the dashboard from the terminal.
func runDashboard(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(out)
	apiURL := fs.String("api", cfg.Console.APIURL, "admin API base URL")
	email := fs.String("email", cfg.Console.Email, "administrator email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password := cfg.Console.Password
	if strings.TrimSpace(*email) == "" || password == "" {
		return errors.New("dashboard: VIDFRIENDS_ADMIN_EMAIL and VIDFRIENDS_ADMIN_PASSWORD must be set")
	}

	// Logs go to stderr so they never interleave with the rendered view.
	logger := logging.NewText(os.Stderr, cfg.LogLevel)
	ctx = logging.WithLogger(ctx, logger)

	client, err := apiclient.New(*apiURL, cfg.Console.RequestTimeout)
	if err != nil {
		return err
	}

	session, err := client.Login(ctx, *email, password)
	if err != nil {
		return fmt.Errorf("dashboard: sign in: %w", err)
	}
	if !session.CurrentUser().IsAdmin() {
		_ = session.Logout(context.WithoutCancel(ctx))
		return fmt.Errorf("dashboard: %s is not an administrator", session.CurrentUser().Email)
	}

	return newConsole(client, session, in, out, cfg.Console, logger).Run(ctx)
}

type consoleAPI interface {
	dashboard.API
	console.UserAPI
	console.ShareAPI
}

func newConsole(api consoleAPI, session dashboard.Session, in io.Reader, out io.Writer, cfg config.ConsoleConfig, logger *slog.Logger) *console.Console {
	input := console.NewInput(in)
	notifier := notify.NewWriter(out)

	dash := dashboard.New(api, session, notifier, console.Prompter{In: input, Out: out}, dashboard.Options{
		LoadTimeout: cfg.LoadTimeout,
		Logger:      logger,
	})

	return &console.Console{
		Dashboard: dash,
		Renderer:  console.NewRenderer(),
		Table:     console.UserTable{API: api, Notifier: notifier},
		Card:      console.VideoCard{API: api, Notifier: notifier},
		Input:     input,
		Out:       out,
		Logger:    logger,
	}
}
