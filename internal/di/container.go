package di

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/tgpulse/tgpulse/internal/modules/analytics"
	"github.com/tgpulse/tgpulse/internal/modules/digest"
	"github.com/tgpulse/tgpulse/internal/modules/ingest"
	"github.com/tgpulse/tgpulse/internal/scheduler"
	"github.com/tgpulse/tgpulse/internal/shared/config"
	"github.com/tgpulse/tgpulse/internal/storage"
	httpServer "github.com/tgpulse/tgpulse/internal/transport/http"
	telegramTransport "github.com/tgpulse/tgpulse/internal/transport/telegram"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Store
	do.Provide(injector, func(i do.Injector) (storage.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store, err := storage.Open(context.Background(), cfg.DBPath)
		if err != nil {
			return nil, oops.With("db_path", cfg.DBPath).Wrapf(err, "failed to initialize store")
		}
		return store, nil
	})

	// Register services
	do.Provide(injector, func(i do.Injector) (*ingest.Service, error) {
		return ingest.New(do.MustInvoke[storage.Store](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*analytics.Service, error) {
		return analytics.New(do.MustInvoke[storage.Store](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*digest.Service, error) {
		return digest.New(do.MustInvoke[storage.Store](i)), nil
	})

	// Register Telegram transport
	do.Provide(injector, func(i do.Injector) (*telegramTransport.Collector, error) {
		return telegramTransport.NewCollector(
			do.MustInvoke[storage.Store](i),
			do.MustInvoke[*ingest.Service](i),
		), nil
	})
	do.Provide(injector, func(i do.Injector) (*telegramTransport.Handler, error) {
		return telegramTransport.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[storage.Store](i),
			do.MustInvoke[*analytics.Service](i),
		), nil
	})

	// Register Bot (handlers must exist before updates arrive)
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if err := cfg.RequireBotToken(); err != nil {
			return nil, err
		}
		collector := do.MustInvoke[*telegramTransport.Collector](i)

		b, err := bot.New(cfg.TelegramBotToken, bot.WithDefaultHandler(collector.HandleUpdate))
		if err != nil {
			return nil, oops.Wrapf(err, "failed to create telegram bot")
		}

		handler := do.MustInvoke[*telegramTransport.Handler](i)
		handler.RegisterCommands(b)
		return b, nil
	})

	do.Provide(injector, func(i do.Injector) (*telegramTransport.Sender, error) {
		return telegramTransport.NewSender(do.MustInvoke[*bot.Bot](i)), nil
	})

	// Register HTTP server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		server := httpServer.NewServer(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[storage.Store](i),
			do.MustInvoke[*analytics.Service](i),
		)
		return server, nil
	})

	// Register Scheduler
	do.Provide(injector, func(i do.Injector) (*scheduler.Scheduler, error) {
		return scheduler.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[storage.Store](i),
			do.MustInvoke[*analytics.Service](i),
			do.MustInvoke[*digest.Service](i),
			do.MustInvoke[*telegramTransport.Sender](i),
		), nil
	})

	return injector, nil
}

// Shutdown closes the store. Long-running services (bot, scheduler) are
// stopped by the command that started them; invoking them here would
// lazily construct services the command never used.
func Shutdown(injector do.Injector) error {
	if store, err := do.Invoke[storage.Store](injector); err == nil && store != nil {
		return store.Close()
	}
	return nil
}
