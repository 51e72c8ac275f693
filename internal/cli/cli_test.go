package cli

import (
	"os"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/require"
	"github.com/tgpulse/tgpulse/internal/di"
	"github.com/tgpulse/tgpulse/internal/shared/config"
)

// chdir switches to dir for the duration of the test; t.Chdir needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestInvokeSenderWithoutBotToken(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	injector, err := di.Setup()
	require.NoError(t, err)
	t.Cleanup(func() { _ = di.Shutdown(injector) })

	cfg := do.MustInvoke[*config.Config](injector)

	// --send without a token must fail as a command error, not a panic.
	require.NotPanics(t, func() {
		_, err = invokeSender(injector, cfg)
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestParseDate(t *testing.T) {
	parsed, err := parseDate("2025-01-02")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), parsed)

	parsed, err = parseDate("2025-01-02T15:04")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC), parsed)

	_, err = parseDate("yesterday")
	require.Error(t, err)
}

func TestResolveWindow(t *testing.T) {
	cfg := &config.Config{WindowDays: 7}

	from, to, err := resolveWindow(cfg, "2025-01-01", "2025-01-08", 0)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), to)

	// Explicit end only: start defaults to the configured window size.
	from, to, err = resolveWindow(cfg, "", "2025-01-08", 0)
	require.NoError(t, err)
	require.Equal(t, to.AddDate(0, 0, -7), from)

	_, _, err = resolveWindow(cfg, "2025-01-08", "2025-01-01", 0)
	require.Error(t, err)
}
