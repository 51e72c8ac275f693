package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the duration of the test; t.Chdir needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.WindowDays)
	require.Equal(t, 12, cfg.TopNMessages)
	require.Equal(t, 240, cfg.SnippetLength)
	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, AppEnvProduction, cfg.AppEnv)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	content := "db_path: /tmp/custom.db\nwindow_days: 3\nallowed_users:\n  - 1001\n  - 1002\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.db", cfg.DBPath)
	require.Equal(t, 3, cfg.WindowDays)
	require.Equal(t, []int64{1001, 1002}, cfg.AllowedUsers)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("window_days: 3\n"), 0o644))
	chdir(t, dir)
	t.Setenv("WINDOW_DAYS", "14")
	t.Setenv("ALLOWED_USERS", "42, 43")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 14, cfg.WindowDays)
	require.Equal(t, []int64{42, 43}, cfg.AllowedUsers)
}

func TestRequireBotToken(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.RequireBotToken())

	cfg.TelegramBotToken = "123:abc"
	require.NoError(t, cfg.RequireBotToken())
}

func TestParseAllowedUsers(t *testing.T) {
	require.Equal(t, []int64{}, ParseAllowedUsers(""))
	require.Equal(t, []int64{1, 2, 3}, ParseAllowedUsers("1,2,3"))
	require.Equal(t, []int64{1, 3}, ParseAllowedUsers(" 1 , nope , 3 "))
}
