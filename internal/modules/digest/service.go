// Package digest prepares the input an external summarization service
// consumes: the top posts of a window plus a rendered prompt.
package digest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/oops"
	messageDomain "github.com/tgpulse/tgpulse/internal/modules/message/domain"
	"github.com/tgpulse/tgpulse/internal/storage"
)

// Generator turns a prepared prompt into digest text. Implementations
// live outside this module; its output is treated as opaque.
type Generator interface {
	GenerateDigest(ctx context.Context, prompt string) (string, error)
}

// DefaultSystemPrompt is the instruction a Generator implementation
// should pair with the user prompt built here.
const DefaultSystemPrompt = "You are a weekly highlight builder for Telegram channels. " +
	"Given raw channel posts, produce a crisp Markdown digest with sections: " +
	"1) Quick stats (counts, activity window). " +
	"2) Top posts (2-5 bullets with titles + why they matter). " +
	"3) Emerging topics (2-3 bullets). " +
	"Keep it concise, avoid speculation, keep URLs if present, and stay within 400-600 words."

const promptInstructions = "Use ONLY the provided messages. Do not invent data. " +
	"If metrics are missing, skip them. Keep Markdown concise."

const promptSnippetLength = 320

// Service selects digest candidates. It is a pure read over the store
// and never calls the summarization collaborator itself.
type Service struct {
	store storage.Store
}

func New(store storage.Store) *Service {
	return &Service{store: store}
}

// SelectTop returns the n messages with the highest reach in [from, to).
// Ties go to the earlier post; remaining ties fall back to channel and
// message id so the order is total.
func (s *Service) SelectTop(ctx context.Context, from, to time.Time, n int) ([]messageDomain.Message, error) {
	if n <= 0 {
		return nil, nil
	}
	messages, err := s.store.QueryMessages(ctx, from, to, 0)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to query messages")
	}

	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Views != messages[j].Views {
			return messages[i].Views > messages[j].Views
		}
		if !messages[i].PostedAt.Equal(messages[j].PostedAt) {
			return messages[i].PostedAt.Before(messages[j].PostedAt)
		}
		if messages[i].ChannelID != messages[j].ChannelID {
			return messages[i].ChannelID < messages[j].ChannelID
		}
		return messages[i].MessageID < messages[j].MessageID
	})

	if len(messages) > n {
		messages = messages[:n]
	}
	return messages, nil
}

// BuildPrompt renders the user prompt for the digest collaborator: a
// stats header, the numbered top messages, and a fixed instruction
// suffix. An empty selection yields an explicit empty-state request.
func (s *Service) BuildPrompt(top []messageDomain.Message, from, to time.Time) string {
	if len(top) == 0 {
		return "No messages were captured in the selected window. Produce a short empty-state note."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Window: %s to %s UTC\n", from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Top sample size: %d\n\n", len(top))
	b.WriteString("Top messages:\n")
	for i, msg := range top {
		text := strings.Join(strings.Fields(msg.Text), " ")
		if runes := []rune(text); len(runes) > promptSnippetLength {
			text = strings.TrimRight(string(runes[:promptSnippetLength]), " ") + "..."
		}
		fmt.Fprintf(&b, "%d. [%s] %s (views=%d)\n", i+1, msg.PostedAt.UTC().Format("2006-01-02"), text, msg.Views)
	}
	b.WriteString("\n")
	b.WriteString(promptInstructions)
	return b.String()
}
