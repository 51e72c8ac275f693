package telegram

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/oops"
)

// maxChunkLength stays under Telegram's 4096-char message limit.
const maxChunkLength = 3900

// Sender delivers pre-formatted text to a chat, splitting long blobs
// into numbered parts.
type Sender struct {
	bot *bot.Bot
}

func NewSender(b *bot.Bot) *Sender {
	return &Sender{bot: b}
}

// Send delivers text to target (a chat id or @username).
func (s *Sender) Send(ctx context.Context, target string, text string) error {
	for i, chunk := range FormatChunks(text) {
		_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: target,
			Text:   chunk,
			LinkPreviewOptions: &models.LinkPreviewOptions{
				IsDisabled: bot.True(),
			},
		})
		if err != nil {
			return oops.With("target", target, "part", i+1).Wrapf(err, "failed to send message")
		}
	}
	return nil
}

// SplitMessage cuts text into chunks below the Telegram message limit.
// Cuts back up to the nearest rune start so multi-byte characters are
// never torn across chunks.
func SplitMessage(text string) []string {
	if len(text) <= maxChunkLength {
		return []string{text}
	}
	var chunks []string
	for len(text) > maxChunkLength {
		cut := maxChunkLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return append(chunks, text)
}

// FormatChunks splits text and, when more than one chunk is needed,
// prefixes every part with its number. Both delivery paths (direct
// sends and bot replies) render split messages the same way.
func FormatChunks(text string) []string {
	chunks := SplitMessage(text)
	if len(chunks) <= 1 {
		return chunks
	}
	for i, chunk := range chunks {
		chunks[i] = fmt.Sprintf("Part %d:\n%s", i+1, chunk)
	}
	return chunks
}
