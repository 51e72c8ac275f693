// Package cli wires the tgpulse command tree.
package cli

import (
	"context"
	"time"

	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/tgpulse/tgpulse/internal/di"
	"github.com/tgpulse/tgpulse/internal/shared/config"
	telegramTransport "github.com/tgpulse/tgpulse/internal/transport/telegram"
)

var rootCmd = &cobra.Command{
	Use:           "tgpulse",
	Short:         "Telegram channel analytics and digest pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI and returns the command error, if any.
func Execute() error {
	return rootCmd.Execute()
}

// withInjector builds the DI container for a command run and closes the
// store afterwards.
func withInjector(fn func(ctx context.Context, injector do.Injector, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		injector, err := di.Setup()
		if err != nil {
			return err
		}
		defer di.Shutdown(injector)
		return fn(cmd.Context(), injector, args)
	}
}

// invokeSender resolves the Telegram sender for --send flows. The bot
// provider needs a token, so this is validated up front and provider
// failures surface as command errors rather than panics.
func invokeSender(injector do.Injector, cfg *config.Config) (*telegramTransport.Sender, error) {
	if err := cfg.RequireBotToken(); err != nil {
		return nil, err
	}
	sender, err := do.Invoke[*telegramTransport.Sender](injector)
	if err != nil {
		return nil, oops.Wrapf(err, "telegram sender unavailable")
	}
	return sender, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, oops.With("value", value).Errorf("unrecognized datetime: %s", value)
}

// resolveWindow turns --from/--to/--days flags into a half-open UTC
// window. Missing boundaries default to [now - days, now).
func resolveWindow(cfg *config.Config, fromStr, toStr string, days int) (time.Time, time.Time, error) {
	if days <= 0 {
		days = cfg.WindowDays
	}

	to := time.Now().UTC()
	if toStr != "" {
		parsed, err := parseDate(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}

	from := to.AddDate(0, 0, -days)
	if fromStr != "" {
		parsed, err := parseDate(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, oops.Errorf("window start %s is not before end %s", from, to)
	}
	return from, to, nil
}

func addWindowFlags(cmd *cobra.Command, fromStr, toStr *string, days *int) {
	cmd.Flags().StringVar(fromStr, "from", "", "Start datetime (ISO, e.g. 2025-01-01 or 2025-01-01T12:00)")
	cmd.Flags().StringVar(toStr, "to", "", "End datetime (ISO). Defaults to now")
	cmd.Flags().IntVar(days, "days", 0, "Window size in days when no explicit dates are given")
}
