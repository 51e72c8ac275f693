// Package ingest merges freshly fetched channel posts into the store.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/samber/oops"
	channelDomain "github.com/tgpulse/tgpulse/internal/modules/channel/domain"
	messageDomain "github.com/tgpulse/tgpulse/internal/modules/message/domain"
	"github.com/tgpulse/tgpulse/internal/storage"
)

// Fetcher supplies raw messages for a channel and window. The transport
// behind it (session client, export reader) is not ingestion's concern.
type Fetcher interface {
	Fetch(ctx context.Context, channel *channelDomain.Channel, from, to time.Time) ([]messageDomain.RawMessage, error)
}

// MergeReport summarizes one merge call. Skipped counts records that did
// not become new rows: clipped, malformed, or already present.
type MergeReport struct {
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
}

// Service deduplicates fetched batches into the store. Merging is
// idempotent: applying the same batch twice stores zero new rows the
// second time and leaves the store unchanged.
type Service struct {
	store storage.Store
}

func New(store storage.Store) *Service {
	return &Service{store: store}
}

// Merge persists the batch for one channel, keeping only valid records
// whose posted timestamp falls inside [from, to). Out-of-window and
// malformed records are clipped silently rather than aborting the batch.
func (s *Service) Merge(ctx context.Context, channel *channelDomain.Channel, from, to time.Time, batch []messageDomain.RawMessage) (MergeReport, error) {
	eligible := lo.Filter(batch, func(m messageDomain.RawMessage, _ int) bool {
		return m.Valid() && !m.PostedAt.Before(from) && m.PostedAt.Before(to)
	})
	clipped := len(batch) - len(eligible)

	stored := 0
	if len(eligible) > 0 {
		var err error
		stored, err = s.store.UpsertMessages(ctx, channel.ID, eligible)
		if err != nil {
			return MergeReport{}, oops.With("channel_id", channel.ID, "batch_size", len(batch)).Wrap(err)
		}
	}

	report := MergeReport{Stored: stored, Skipped: len(batch) - stored}
	slog.Info("Stored messages",
		"channel_id", channel.ID,
		"stored", report.Stored,
		"skipped", report.Skipped,
		"clipped", clipped,
	)
	return report, nil
}

// FetchAndMerge pulls the window from the fetcher and merges the result.
func (s *Service) FetchAndMerge(ctx context.Context, fetcher Fetcher, channel *channelDomain.Channel, from, to time.Time) (MergeReport, error) {
	batch, err := fetcher.Fetch(ctx, channel, from, to)
	if err != nil {
		return MergeReport{}, oops.With("channel_id", channel.ID).Wrapf(err, "fetch failed")
	}
	return s.Merge(ctx, channel, from, to, batch)
}
