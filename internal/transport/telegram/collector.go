package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/tgpulse/tgpulse/internal/modules/ingest"
	messageDomain "github.com/tgpulse/tgpulse/internal/modules/message/domain"
	"github.com/tgpulse/tgpulse/internal/storage"
)

// Collector ingests channel posts arriving through the bot. Posts from
// channels not present in the store (or marked inactive) are ignored.
type Collector struct {
	store  storage.Store
	merger *ingest.Service
}

func NewCollector(store storage.Store, merger *ingest.Service) *Collector {
	return &Collector{store: store, merger: merger}
}

// HandleUpdate processes incoming updates.
func (c *Collector) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.ChannelPost != nil {
		c.processChannelPost(ctx, b, update.ChannelPost)
	} else if update.Message != nil && update.Message.Chat.Type == "channel" {
		c.processChannelPost(ctx, b, update.Message)
	}
}

func (c *Collector) processChannelPost(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if msg == nil {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	// /chatid posted in any channel answers with the chat id, which is
	// needed to register the channel in the first place.
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "/chatid") {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   fmt.Sprintf("Channel chat_id: %d", msg.Chat.ID),
		})
		return
	}

	channel, err := c.store.GetChannel(ctx, msg.Chat.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("Failed to look up channel", "chat_id", msg.Chat.ID, "error", err)
		}
		return
	}
	if !channel.IsActive {
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	raw := messageDomain.RawMessage{
		MessageID: int64(msg.ID),
		PostedAt:  time.Unix(int64(msg.Date), 0).UTC(),
		Text:      text,
	}

	// A live post is merged with a window containing just itself.
	report, err := c.merger.Merge(ctx, channel, raw.PostedAt, raw.PostedAt.Add(time.Second), []messageDomain.RawMessage{raw})
	if err != nil {
		slog.Error("Failed to store channel post", "chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
		return
	}
	if report.Stored > 0 {
		slog.Info("New message from channel", "channel", channel.DisplayName(), "chat_id", msg.Chat.ID, "message_id", msg.ID)
	}
}
