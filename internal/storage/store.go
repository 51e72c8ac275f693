package storage

import (
	"context"
	"errors"
	"time"

	channelDomain "github.com/tgpulse/tgpulse/internal/modules/channel/domain"
	messageDomain "github.com/tgpulse/tgpulse/internal/modules/message/domain"
	tagDomain "github.com/tgpulse/tgpulse/internal/modules/tag/domain"
)

// Sentinel errors for the persistence layer. Callers match with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Store owns all persisted channel, tag, and message records.
// This abstraction allows easy replacement of storage implementations
// and keeps services testable against a throwaway database.
type Store interface {
	// UpsertChannel creates the channel or updates its name and link.
	// The active flag of an existing channel is preserved.
	UpsertChannel(ctx context.Context, id int64, name, link string) (*channelDomain.Channel, error)

	// SetChannelActive toggles the active flag. Returns ErrNotFound for
	// unknown channels.
	SetChannelActive(ctx context.Context, id int64, active bool) error

	// GetChannel returns a channel by chat id, or ErrNotFound.
	GetChannel(ctx context.Context, id int64) (*channelDomain.Channel, error)

	// ListChannels returns channels ordered by chat id ascending.
	ListChannels(ctx context.Context, activeOnly bool) ([]*channelDomain.Channel, error)

	// AddTag stores a normalized tag. Returns ErrAlreadyExists if the
	// normalized name is present and ErrInvalidInput for empty names.
	AddTag(ctx context.Context, name string) (*tagDomain.Tag, error)

	// RemoveTag deletes a tag by normalized name, or ErrNotFound.
	RemoveTag(ctx context.Context, name string) error

	// ListTags returns tags in alphabetical order.
	ListTags(ctx context.Context) ([]tagDomain.Tag, error)

	// UpsertMessages merges a batch for one channel inside a single
	// transaction. Absent identities are inserted; present identities
	// only get their views refreshed when the value differs. Returns
	// the number of newly inserted rows.
	UpsertMessages(ctx context.Context, channelID int64, batch []messageDomain.RawMessage) (int, error)

	// QueryMessages returns messages in the half-open window [from, to),
	// ordered by posted timestamp ascending (channel id and message id
	// break ties so the order is total). channelID 0 means all channels.
	QueryMessages(ctx context.Context, from, to time.Time, channelID int64) ([]messageDomain.Message, error)

	Close() error
}
