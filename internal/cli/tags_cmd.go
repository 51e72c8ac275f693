package cli

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/tgpulse/tgpulse/internal/storage"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage tags/keywords",
}

func init() {
	tagsCmd.AddCommand(
		&cobra.Command{
			Use:   "add <keyword>",
			Short: "Add a tag/keyword",
			Args:  cobra.ExactArgs(1),
			RunE:  withInjector(runTagsAdd),
		},
		&cobra.Command{
			Use:   "remove <keyword>",
			Short: "Remove a tag/keyword",
			Args:  cobra.ExactArgs(1),
			RunE:  withInjector(runTagsRemove),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored tags",
			RunE:  withInjector(runTagsList),
		},
	)
}

func runTagsAdd(ctx context.Context, injector do.Injector, args []string) error {
	store := do.MustInvoke[storage.Store](injector)

	tag, err := store.AddTag(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Added tag: %s\n", tag.Name)
	return nil
}

func runTagsRemove(ctx context.Context, injector do.Injector, args []string) error {
	store := do.MustInvoke[storage.Store](injector)

	if err := store.RemoveTag(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed tag: %s\n", args[0])
	return nil
}

func runTagsList(ctx context.Context, injector do.Injector, args []string) error {
	store := do.MustInvoke[storage.Store](injector)

	tags, err := store.ListTags(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Println("No tags stored.")
		return nil
	}
	for _, tag := range tags {
		fmt.Printf("- %s\n", tag.Name)
	}
	return nil
}
