package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"
	"github.com/tgpulse/tgpulse/internal/modules/analytics"
	channelDomain "github.com/tgpulse/tgpulse/internal/modules/channel/domain"
	"github.com/tgpulse/tgpulse/internal/shared/config"
	"github.com/tgpulse/tgpulse/internal/storage"
)

// Handler handles bot management commands.
type Handler struct {
	cfg       *config.Config
	store     storage.Store
	analytics *analytics.Service
}

// New creates a new Telegram command handler
func New(cfg *config.Config, store storage.Store, analyticsService *analytics.Service) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		analytics: analyticsService,
	}
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/addchannel", bot.MatchTypePrefix, h.handleAddChannel)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/removechannel", bot.MatchTypePrefix, h.handleRemoveChannel)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/listchannels", bot.MatchTypeExact, h.handleListChannels)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/addtag", bot.MatchTypePrefix, h.handleAddTag)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/removetag", bot.MatchTypePrefix, h.handleRemoveTag)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/listtags", bot.MatchTypeExact, h.handleListTags)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/report", bot.MatchTypePrefix, h.handleReport)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, h.handleStatus)
}

func (h *Handler) checkAuthorization(userID int64) bool {
	if len(h.cfg.AllowedUsers) == 0 {
		return true
	}
	return lo.Contains(h.cfg.AllowedUsers, userID)
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
}

func (h *Handler) authorized(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return false
	}
	if !h.checkAuthorization(update.Message.From.ID) {
		h.reply(ctx, b, update, "❌ You are not authorized to use this bot.")
		return false
	}
	return true
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorized(ctx, b, update) {
		return
	}

	text := `👋 Welcome to the channel analytics bot!

I track Telegram channels, match posts against your tag list, and build windowed reports.

Available commands:
/addchannel <chat_id> <name> [link] - Track a channel
/removechannel <chat_id> - Stop tracking (soft-remove)
/listchannels - List tracked channels
/addtag <keyword> - Add a tag
/removetag <keyword> - Remove a tag
/listtags - List tags
/report [days] - Analytics for the last N days
/status - Bot status

Post /chatid inside a channel to discover its chat id.`

	h.reply(ctx, b, update, text)
}

func (h *Handler) handleAddChannel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorized(ctx, b, update) {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 3 {
		h.reply(ctx, b, update, "Usage: /addchannel <chat_id> <name> [link]\nExample: /addchannel -1001234567890 Example https://t.me/example")
		return
	}

	chatID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Invalid chat id: %s", parts[1]))
		return
	}
	link := ""
	if len(parts) > 3 {
		link = parts[3]
	}

	channel, err := h.store.UpsertChannel(ctx, chatID, parts[2], link)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to save channel: %v", err))
		return
	}

	h.reply(ctx, b, update, fmt.Sprintf("✅ Channel %s added!\nChat ID: %d", channel.DisplayName(), channel.ID))
}

func (h *Handler) handleRemoveChannel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorized(ctx, b, update) {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		h.reply(ctx, b, update, "Usage: /removechannel <chat_id>")
		return
	}

	chatID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Invalid chat id: %s", parts[1]))
		return
	}

	// Soft-remove keeps stored messages attached to the channel.
	if err := h.store.SetChannelActive(ctx, chatID, false); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.reply(ctx, b, update, fmt.Sprintf("❌ Channel %d is not tracked.", chatID))
			return
		}
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to remove channel: %v", err))
		return
	}

	h.reply(ctx, b, update, fmt.Sprintf("✅ Channel %d removed.", chatID))
}

func (h *Handler) handleListChannels(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorized(ctx, b, update) {
		return
	}

	channels, err := h.store.ListChannels(ctx, false)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to list channels: %v", err))
		return
	}
	if len(channels) == 0 {
		h.reply(ctx, b, update, "📭 No channels tracked yet.\nUse /addchannel to add one.")
		return
	}

	var text strings.Builder
	text.WriteString("📋 Tracked channels:\n\n")
	for i, ch := range channels {
		status := "✅"
		if !ch.IsActive {
			status = "⏸️"
		}
		link := ch.Link
		if link == "" {
			link = "n/a"
		}
		text.WriteString(fmt.Sprintf("%s %d. %s\n   ID: %d\n   Link: %s\n\n", status, i+1, ch.DisplayName(), ch.ID, link))
	}
	h.reply(ctx, b, update, text.String())
}

func (h *Handler) handleAddTag(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorized(ctx, b, update) {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		h.reply(ctx, b, update, "Usage: /addtag <keyword>")
		return
	}

	tag, err := h.store.AddTag(ctx, parts[1])
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			h.reply(ctx, b, update, fmt.Sprintf("❌ Tag already exists: %s", parts[1]))
			return
		}
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to add tag: %v", err))
		return
	}
	h.reply(ctx, b, update, fmt.Sprintf("✅ Tag added: %s", tag.Name))
}

func (h *Handler) handleRemoveTag(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorized(ctx, b, update) {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		h.reply(ctx, b, update, "Usage: /removetag <keyword>")
		return
	}

	if err := h.store.RemoveTag(ctx, parts[1]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.reply(ctx, b, update, fmt.Sprintf("❌ Tag not found: %s", parts[1]))
			return
		}
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to remove tag: %v", err))
		return
	}
	h.reply(ctx, b, update, fmt.Sprintf("✅ Tag removed: %s", strings.ToLower(parts[1])))
}

func (h *Handler) handleListTags(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorized(ctx, b, update) {
		return
	}

	tags, err := h.store.ListTags(ctx)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to list tags: %v", err))
		return
	}
	if len(tags) == 0 {
		h.reply(ctx, b, update, "📭 No tags configured yet.\nUse /addtag to add one.")
		return
	}

	var text strings.Builder
	text.WriteString("🏷 Tags:\n")
	for _, tag := range tags {
		text.WriteString(fmt.Sprintf("- %s\n", tag.Name))
	}
	h.reply(ctx, b, update, text.String())
}

func (h *Handler) handleReport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorized(ctx, b, update) {
		return
	}

	days := h.cfg.WindowDays
	parts := strings.Fields(update.Message.Text)
	if len(parts) > 1 {
		if d, err := strconv.Atoi(parts[1]); err == nil && d > 0 {
			days = d
		}
	}

	tags, err := h.store.ListTags(ctx)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to list tags: %v", err))
		return
	}
	if len(tags) == 0 {
		h.reply(ctx, b, update, "📭 No tags configured. Add tags first via /addtag.")
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)
	result, err := h.analytics.Aggregate(ctx, from, to, tags)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to aggregate: %v", err))
		return
	}

	report := analytics.Render(result, h.cfg.SnippetLength)
	for _, chunk := range FormatChunks(report) {
		h.reply(ctx, b, update, chunk)
	}
}

func (h *Handler) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorized(ctx, b, update) {
		return
	}

	channels, err := h.store.ListChannels(ctx, false)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to read status: %v", err))
		return
	}
	tags, err := h.store.ListTags(ctx)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to read status: %v", err))
		return
	}

	active := lo.CountBy(channels, func(ch *channelDomain.Channel) bool { return ch.IsActive })
	h.reply(ctx, b, update, fmt.Sprintf("🤖 Bot status\nChannels: %d (%d active)\nTags: %d\nWindow: %d days", len(channels), active, len(tags), h.cfg.WindowDays))
}
