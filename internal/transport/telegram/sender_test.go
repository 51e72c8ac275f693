package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSplitMessageShortText(t *testing.T) {
	chunks := SplitMessage("short report")
	require.Equal(t, []string{"short report"}, chunks)
}

func TestSplitMessageLongText(t *testing.T) {
	text := strings.Repeat("a", maxChunkLength*2+100)
	chunks := SplitMessage(text)

	require.Len(t, chunks, 3)
	require.Len(t, chunks[0], maxChunkLength)
	require.Len(t, chunks[1], maxChunkLength)
	require.Len(t, chunks[2], 100)
	require.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitMessageExactBoundary(t *testing.T) {
	text := strings.Repeat("a", maxChunkLength)
	require.Equal(t, []string{text}, SplitMessage(text))
}

func TestSplitMessageKeepsRunesIntact(t *testing.T) {
	// The leading ASCII byte shifts every following two-byte rune so a
	// byte-offset cut would land mid-rune.
	text := "a" + strings.Repeat("ж", maxChunkLength)
	chunks := SplitMessage(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.True(t, utf8.ValidString(chunk))
		require.LessOrEqual(t, len(chunk), maxChunkLength)
	}
	require.Equal(t, text, strings.Join(chunks, ""))
}

func TestFormatChunksPrefixesEveryPart(t *testing.T) {
	require.Equal(t, []string{"short report"}, FormatChunks("short report"))

	chunks := FormatChunks(strings.Repeat("a", maxChunkLength+10))
	require.Len(t, chunks, 2)
	require.True(t, strings.HasPrefix(chunks[0], "Part 1:\n"))
	require.True(t, strings.HasPrefix(chunks[1], "Part 2:\n"))
}
