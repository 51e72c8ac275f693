package analytics

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	tagDomain "github.com/tgpulse/tgpulse/internal/modules/tag/domain"
)

func TestRenderReport(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedExampleChannel(t, store)
	service := New(store)

	result, err := service.Aggregate(ctx, windowFrom, windowTo, []tagDomain.Tag{{Name: "ton"}, {Name: "airdrop"}})
	require.NoError(t, err)

	expected := `Analytics window: 2025-01-01 00:00 UTC -> 2025-01-08 00:00 UTC
Total hits: 2 | Channels with hits: 1 | Tags matched: 2

Per channel:
- Example: 2 posts, reach=150

Per tag:
- ton: 2 posts, reach=150
- airdrop: 1 posts, reach=120

Matched posts:
- Example [2025-01-02] tags=ton, airdrop (views=120) -> https://t.me/example/10
  TON airdrop launching soon
- Example [2025-01-02] tags=ton (views=30) -> https://t.me/example/11
  TON dev update
`
	require.Equal(t, expected, Render(result, DefaultSnippetLength))
}

func TestRenderEmptyResult(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	service := New(store)

	result, err := service.Aggregate(ctx, windowFrom, windowTo, []tagDomain.Tag{{Name: "ton"}})
	require.NoError(t, err)

	report := Render(result, DefaultSnippetLength)
	require.Contains(t, report, "Total hits: 0 | Channels with hits: 0 | Tags matched: 0")
	require.Contains(t, report, "No posts matched the current tag list in this window.")
	require.NotContains(t, report, "Per channel:")
}

func TestSnippet(t *testing.T) {
	require.Equal(t, "short text", Snippet("short\ntext", 240))

	long := strings.Repeat("word ", 100)
	snippet := Snippet(long, 20)
	require.True(t, strings.HasSuffix(snippet, "..."))
	require.LessOrEqual(t, len([]rune(snippet)), 23)

	// Rune-safe truncation for non-ASCII text.
	require.Equal(t, "приве...", Snippet("привет мир как дела", 5))
}
