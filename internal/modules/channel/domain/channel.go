package domain

import "strconv"

// Channel represents a Telegram channel tracked for analytics.
// Channels are never hard-deleted; removal flips IsActive so stored
// messages keep a valid owner.
type Channel struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Link     string `json:"link"`
	IsActive bool   `json:"is_active"`
}

// DisplayName returns the best human-readable identifier for the channel.
func (c Channel) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Link != "" {
		return c.Link
	}
	return strconv.FormatInt(c.ID, 10)
}
