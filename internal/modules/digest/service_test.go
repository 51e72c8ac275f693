package digest

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	messageDomain "github.com/tgpulse/tgpulse/internal/modules/message/domain"
	"github.com/tgpulse/tgpulse/internal/storage"
)

var (
	windowFrom = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	windowTo   = time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (storage.Store, *Service) {
	t.Helper()
	store, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store, New(store)
}

func TestSelectTopByReach(t *testing.T) {
	ctx := context.Background()
	store, service := newTestService(t)

	_, err := store.UpsertChannel(ctx, -1001, "Example", "")
	require.NoError(t, err)
	_, err = store.UpsertMessages(ctx, -1001, []messageDomain.RawMessage{
		{MessageID: 10, PostedAt: windowFrom.Add(2 * time.Hour), Text: "TON airdrop launching soon", Views: 120},
		{MessageID: 11, PostedAt: windowFrom.Add(4 * time.Hour), Text: "TON dev update", Views: 30},
	})
	require.NoError(t, err)

	top, err := service.SelectTop(ctx, windowFrom, windowTo, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, int64(10), top[0].MessageID)
	require.Equal(t, int64(120), top[0].Views)
}

func TestSelectTopTiesGoToEarlierPost(t *testing.T) {
	ctx := context.Background()
	store, service := newTestService(t)

	_, err := store.UpsertChannel(ctx, -1001, "Example", "")
	require.NoError(t, err)
	_, err = store.UpsertMessages(ctx, -1001, []messageDomain.RawMessage{
		{MessageID: 2, PostedAt: windowFrom.Add(2 * time.Hour), Text: "later", Views: 50},
		{MessageID: 1, PostedAt: windowFrom.Add(time.Hour), Text: "earlier", Views: 50},
	})
	require.NoError(t, err)

	top, err := service.SelectTop(ctx, windowFrom, windowTo, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, int64(1), top[0].MessageID)
	require.Equal(t, int64(2), top[1].MessageID)
}

func TestSelectTopBounds(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)

	top, err := service.SelectTop(ctx, windowFrom, windowTo, 0)
	require.NoError(t, err)
	require.Nil(t, top)

	top, err = service.SelectTop(ctx, windowFrom, windowTo, 5)
	require.NoError(t, err)
	require.Empty(t, top)
}

func TestBuildPrompt(t *testing.T) {
	_, service := newTestService(t)

	top := []messageDomain.Message{
		{ChannelID: -1001, MessageID: 10, PostedAt: windowFrom.Add(26 * time.Hour), Text: "TON airdrop\nlaunching soon", Views: 120},
		{ChannelID: -1001, MessageID: 11, PostedAt: windowFrom.Add(30 * time.Hour), Text: "TON dev update", Views: 30},
	}
	prompt := service.BuildPrompt(top, windowFrom, windowTo)

	require.Contains(t, prompt, "Window: 2025-01-01 to 2025-01-08 UTC")
	require.Contains(t, prompt, "Top sample size: 2")
	require.Contains(t, prompt, "1. [2025-01-02] TON airdrop launching soon (views=120)")
	require.Contains(t, prompt, "2. [2025-01-02] TON dev update (views=30)")
	require.Contains(t, prompt, "Use ONLY the provided messages.")
}

func TestBuildPromptTruncatesLongText(t *testing.T) {
	_, service := newTestService(t)

	top := []messageDomain.Message{
		{MessageID: 1, PostedAt: windowFrom, Text: strings.Repeat("long ", 200), Views: 1},
	}
	prompt := service.BuildPrompt(top, windowFrom, windowTo)
	require.Contains(t, prompt, "...")
	require.Less(t, len(prompt), 600)
}

func TestBuildPromptEmptySelection(t *testing.T) {
	_, service := newTestService(t)

	prompt := service.BuildPrompt(nil, windowFrom, windowTo)
	require.Equal(t, "No messages were captured in the selected window. Produce a short empty-state note.", prompt)
}
