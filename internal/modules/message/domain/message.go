package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawMessage is a freshly fetched channel post before it is merged into
// the store.
type RawMessage struct {
	MessageID int64     `json:"message_id"`
	PostedAt  time.Time `json:"posted_at"`
	Text      string    `json:"text"`
	Views     int64     `json:"views"`
}

// Valid reports whether the record carries everything ingestion requires.
func (r RawMessage) Valid() bool {
	return r.MessageID > 0 && !r.PostedAt.IsZero() && strings.TrimSpace(r.Text) != ""
}

// Message is a stored channel post. Identity is (ChannelID, MessageID);
// text and posted timestamp are immutable once stored, views may be
// refreshed by later fetches.
type Message struct {
	ChannelID int64     `json:"channel_id"`
	MessageID int64     `json:"message_id"`
	PostedAt  time.Time `json:"posted_at"`
	Text      string    `json:"text"`
	Views     int64     `json:"views"`
}

// BuildLink returns the public t.me link for a message. Channels with a
// canonical link get "<link>/<id>"; private channels fall back to the
// t.me/c form derived from the -100-prefixed chat id.
func BuildLink(channelID int64, channelLink string, messageID int64) string {
	if channelLink != "" {
		return fmt.Sprintf("%s/%d", strings.TrimRight(channelLink, "/"), messageID)
	}
	internal := strings.TrimPrefix(strconv.FormatInt(channelID, 10), "-100")
	internal = strings.TrimPrefix(internal, "-")
	return fmt.Sprintf("https://t.me/c/%s/%d", internal, messageID)
}
