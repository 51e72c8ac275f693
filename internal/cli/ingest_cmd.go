package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	channelDomain "github.com/tgpulse/tgpulse/internal/modules/channel/domain"
	"github.com/tgpulse/tgpulse/internal/modules/ingest"
	messageDomain "github.com/tgpulse/tgpulse/internal/modules/message/domain"
	"github.com/tgpulse/tgpulse/internal/shared/config"
	"github.com/tgpulse/tgpulse/internal/storage"
)

var (
	ingestChannel int64
	ingestFile    string
	ingestFrom    string
	ingestTo      string
	ingestDays    int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Merge a batch of exported raw messages into the store",
	Long: `Reads a JSON array of raw messages (message_id, posted_at, text, views)
and merges it for the given channel. Records outside the window are
clipped; re-running the same file stores zero new rows.`,
	RunE: withInjector(runIngest),
}

func init() {
	ingestCmd.Flags().Int64Var(&ingestChannel, "channel", 0, "Chat id of the channel the batch belongs to")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "Path to the JSON batch file")
	addWindowFlags(ingestCmd, &ingestFrom, &ingestTo, &ingestDays)
	ingestCmd.MarkFlagRequired("channel")
	ingestCmd.MarkFlagRequired("file")
}

// fileFetcher supplies raw messages from a JSON export, standing in for
// the session-based history fetcher.
type fileFetcher struct {
	path string
}

func (f fileFetcher) Fetch(ctx context.Context, channel *channelDomain.Channel, from, to time.Time) ([]messageDomain.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, oops.With("file", f.path).Wrapf(err, "failed to read batch file")
	}
	var batch []messageDomain.RawMessage
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, oops.With("file", f.path).Wrapf(err, "failed to parse batch file")
	}
	return batch, nil
}

func runIngest(ctx context.Context, injector do.Injector, args []string) error {
	cfg := do.MustInvoke[*config.Config](injector)
	store := do.MustInvoke[storage.Store](injector)
	merger := do.MustInvoke[*ingest.Service](injector)

	channel, err := store.GetChannel(ctx, ingestChannel)
	if err != nil {
		return oops.With("channel_id", ingestChannel).Wrapf(err, "channel is not tracked, add it first via `channels add`")
	}

	from, to, err := resolveWindow(cfg, ingestFrom, ingestTo, ingestDays)
	if err != nil {
		return err
	}

	report, err := merger.FetchAndMerge(ctx, fileFetcher{path: ingestFile}, channel, from, to)
	if err != nil {
		return err
	}
	fmt.Printf("Stored %d messages for %d (%d skipped)\n", report.Stored, channel.ID, report.Skipped)
	return nil
}
