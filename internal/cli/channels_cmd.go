package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/tgpulse/tgpulse/internal/storage"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Manage tracked channels",
}

var channelsActiveOnly bool

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked channels",
		RunE:  withInjector(runChannelsList),
	}
	listCmd.Flags().BoolVar(&channelsActiveOnly, "active-only", false, "Show only active channels")

	channelsCmd.AddCommand(
		&cobra.Command{
			Use:   "add <chat_id> <name> [link]",
			Short: "Track a channel by chat id",
			Args:  cobra.RangeArgs(2, 3),
			RunE:  withInjector(runChannelsAdd),
		},
		&cobra.Command{
			Use:   "remove <chat_id>",
			Short: "Stop tracking a channel (soft-remove, messages are kept)",
			Args:  cobra.ExactArgs(1),
			RunE:  withInjector(runChannelsRemove),
		},
		&cobra.Command{
			Use:   "enable <chat_id>",
			Short: "Re-enable a previously removed channel",
			Args:  cobra.ExactArgs(1),
			RunE:  withInjector(runChannelsEnable),
		},
		listCmd,
	)
}

func parseChatID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, oops.With("identifier", arg).Errorf("invalid chat id: %s", arg)
	}
	return id, nil
}

func runChannelsAdd(ctx context.Context, injector do.Injector, args []string) error {
	store := do.MustInvoke[storage.Store](injector)

	id, err := parseChatID(args[0])
	if err != nil {
		return err
	}
	link := ""
	if len(args) > 2 {
		link = args[2]
	}

	channel, err := store.UpsertChannel(ctx, id, args[1], link)
	if err != nil {
		return err
	}
	fmt.Printf("Added channel %s (%d)\n", channel.DisplayName(), channel.ID)
	return nil
}

func runChannelsRemove(ctx context.Context, injector do.Injector, args []string) error {
	store := do.MustInvoke[storage.Store](injector)

	id, err := parseChatID(args[0])
	if err != nil {
		return err
	}
	if err := store.SetChannelActive(ctx, id, false); err != nil {
		return err
	}
	fmt.Printf("Removed channel %d\n", id)
	return nil
}

func runChannelsEnable(ctx context.Context, injector do.Injector, args []string) error {
	store := do.MustInvoke[storage.Store](injector)

	id, err := parseChatID(args[0])
	if err != nil {
		return err
	}
	if err := store.SetChannelActive(ctx, id, true); err != nil {
		return err
	}
	fmt.Printf("Enabled channel %d\n", id)
	return nil
}

func runChannelsList(ctx context.Context, injector do.Injector, args []string) error {
	store := do.MustInvoke[storage.Store](injector)

	channels, err := store.ListChannels(ctx, channelsActiveOnly)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		fmt.Println("No channels stored.")
		return nil
	}
	for _, ch := range channels {
		status := "active"
		if !ch.IsActive {
			status = "inactive"
		}
		link := ch.Link
		if link == "" {
			link = "n/a"
		}
		fmt.Printf("%s (%d) [%s] link=%s\n", ch.DisplayName(), ch.ID, status, link)
	}
	return nil
}
