package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/require"
	channelDomain "github.com/tgpulse/tgpulse/internal/modules/channel/domain"
	messageDomain "github.com/tgpulse/tgpulse/internal/modules/message/domain"
	"github.com/tgpulse/tgpulse/internal/storage"
)

func setup(t *testing.T) (storage.Store, *channelDomain.Channel, *Service) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	channel, err := store.UpsertChannel(ctx, -1001, "Example", "https://t.me/example")
	require.NoError(t, err)
	return store, channel, New(store)
}

func TestMergeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, channel, service := setup(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	batch := []messageDomain.RawMessage{
		{MessageID: 1, PostedAt: from.Add(time.Hour), Text: "hello", Views: 10},
		{MessageID: 2, PostedAt: from.Add(2 * time.Hour), Text: "world", Views: 20},
	}

	report, err := service.Merge(ctx, channel, from, to, batch)
	require.NoError(t, err)
	require.Equal(t, MergeReport{Stored: 2, Skipped: 0}, report)

	report, err = service.Merge(ctx, channel, from, to, batch)
	require.NoError(t, err)
	require.Equal(t, MergeReport{Stored: 0, Skipped: 2}, report)
}

func TestMergeClipsOutOfWindowAndMalformed(t *testing.T) {
	ctx := context.Background()
	store, channel, service := setup(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	batch := []messageDomain.RawMessage{
		{MessageID: 1, PostedAt: from, Text: "in window", Views: 1},
		{MessageID: 2, PostedAt: to, Text: "at upper bound", Views: 1},
		{MessageID: 3, PostedAt: from.Add(-time.Minute), Text: "too early", Views: 1},
		{MessageID: 4, PostedAt: from.Add(time.Hour), Text: "   ", Views: 1},
		{MessageID: 0, PostedAt: from.Add(time.Hour), Text: "bad id", Views: 1},
	}

	report, err := service.Merge(ctx, channel, from, to, batch)
	require.NoError(t, err)
	require.Equal(t, MergeReport{Stored: 1, Skipped: 4}, report)

	messages, err := store.QueryMessages(ctx, from, to, channel.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, int64(1), messages[0].MessageID)
}

func TestMergeEmptyBatch(t *testing.T) {
	ctx := context.Background()
	_, channel, service := setup(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	report, err := service.Merge(ctx, channel, from, from.AddDate(0, 0, 1), nil)
	require.NoError(t, err)
	require.Equal(t, MergeReport{}, report)
}

type stubFetcher struct {
	batch []messageDomain.RawMessage
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, _ *channelDomain.Channel, _, _ time.Time) ([]messageDomain.RawMessage, error) {
	return f.batch, f.err
}

func TestFetchAndMerge(t *testing.T) {
	ctx := context.Background()
	_, channel, service := setup(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	fetcher := &stubFetcher{batch: []messageDomain.RawMessage{
		{MessageID: 1, PostedAt: from.Add(time.Hour), Text: "hello", Views: 5},
	}}

	report, err := service.FetchAndMerge(ctx, fetcher, channel, from, to)
	require.NoError(t, err)
	require.Equal(t, MergeReport{Stored: 1, Skipped: 0}, report)
}

func TestFetchAndMergeFetchError(t *testing.T) {
	ctx := context.Background()
	_, channel, service := setup(t)

	fetcher := &stubFetcher{err: oops.Errorf("session expired")}
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := service.FetchAndMerge(ctx, fetcher, channel, from, from.AddDate(0, 0, 7))
	require.Error(t, err)
	require.Contains(t, err.Error(), "fetch failed")
}
