package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/tgpulse/tgpulse/internal/scheduler"
	"github.com/tgpulse/tgpulse/internal/shared/config"
	httpServer "github.com/tgpulse/tgpulse/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the live collector, HTTP server, and scheduled jobs",
	RunE:  withInjector(runServe),
}

func runServe(ctx context.Context, injector do.Injector, args []string) error {
	cfg := do.MustInvoke[*config.Config](injector)
	if err := cfg.RequireBotToken(); err != nil {
		return err
	}

	b := do.MustInvoke[*bot.Bot](injector)
	server := do.MustInvoke[*httpServer.Server](injector)
	sched := do.MustInvoke[*scheduler.Scheduler](injector)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("HTTP server stopped", "error", err)
			cancel()
		}
	}()

	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	go b.Start(ctx)

	slog.Info("Serving", "port", cfg.HTTPPort)
	slog.Info("Press Ctrl+C to stop")

	<-ctx.Done()
	slog.Info("Shutting down...")
	b.Close(context.Background())
	return nil
}
