package cli

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/tgpulse/tgpulse/internal/modules/analytics"
	"github.com/tgpulse/tgpulse/internal/shared/config"
	"github.com/tgpulse/tgpulse/internal/storage"
)

var (
	analyzeFrom   string
	analyzeTo     string
	analyzeDays   int
	analyzeSend   bool
	analyzeTarget string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run aggregated analytics over stored messages",
	RunE:  withInjector(runAnalyze),
}

func init() {
	addWindowFlags(analyzeCmd, &analyzeFrom, &analyzeTo, &analyzeDays)
	analyzeCmd.Flags().BoolVar(&analyzeSend, "send", false, "Send the report to Telegram instead of printing")
	analyzeCmd.Flags().StringVar(&analyzeTarget, "target", "", "Override target chat id for sending")
}

func runAnalyze(ctx context.Context, injector do.Injector, args []string) error {
	cfg := do.MustInvoke[*config.Config](injector)
	store := do.MustInvoke[storage.Store](injector)
	service := do.MustInvoke[*analytics.Service](injector)

	tags, err := store.ListTags(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return oops.Errorf("no tags configured, add tags first via `tags add`")
	}

	from, to, err := resolveWindow(cfg, analyzeFrom, analyzeTo, analyzeDays)
	if err != nil {
		return err
	}

	result, err := service.Aggregate(ctx, from, to, tags)
	if err != nil {
		return err
	}
	report := analytics.Render(result, cfg.SnippetLength)

	if !analyzeSend {
		fmt.Print(report)
		return nil
	}

	target := analyzeTarget
	if target == "" {
		target = cfg.TargetChatID
	}
	if target == "" {
		return oops.Errorf("target chat id is not set, use --target or TARGET_CHAT_ID")
	}

	sender, err := invokeSender(injector, cfg)
	if err != nil {
		return err
	}
	if err := sender.Send(ctx, target, report); err != nil {
		return err
	}
	fmt.Printf("Analytics report sent to %s\n", target)
	return nil
}
