package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRawMessageValid(t *testing.T) {
	posted := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)

	require.True(t, RawMessage{MessageID: 1, PostedAt: posted, Text: "hello"}.Valid())
	require.False(t, RawMessage{MessageID: 0, PostedAt: posted, Text: "hello"}.Valid())
	require.False(t, RawMessage{MessageID: 1, Text: "hello"}.Valid())
	require.False(t, RawMessage{MessageID: 1, PostedAt: posted, Text: "   "}.Valid())
}

func TestBuildLinkWithCanonicalLink(t *testing.T) {
	require.Equal(t, "https://t.me/example/42", BuildLink(-1001, "https://t.me/example", 42))
	require.Equal(t, "https://t.me/example/42", BuildLink(-1001, "https://t.me/example/", 42))
}

func TestBuildLinkPrivateChannelFallback(t *testing.T) {
	// -100 prefix of supergroup chat ids is stripped for the t.me/c form.
	require.Equal(t, "https://t.me/c/1234567/42", BuildLink(-1001234567, "", 42))
	require.Equal(t, "https://t.me/c/555/7", BuildLink(-555, "", 7))
}
