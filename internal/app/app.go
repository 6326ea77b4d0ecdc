package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidfriends/admin/internal/config"
	"github.com/vidfriends/admin/internal/db"
	"github.com/vidfriends/admin/internal/handlers"
	"github.com/vidfriends/admin/internal/httpserver"
	"github.com/vidfriends/admin/internal/logging"
)

// Run bootstraps the VidFriends admin tooling.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, dashboard, migrate, or seed")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "dashboard":
		return runDashboard(ctx, args[1:], os.Stdin, os.Stdout)
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	deps, err := buildDependencies(ctx, pool, cfg)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.AppPort, handlers.NewRouter(logger, deps), logger)

	logger.Info("starting http server", "port", cfg.AppPort, "objectStore", cfg.ObjectStore.Enabled())

	return srv.Run(ctx)
}
