package cli

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/tgpulse/tgpulse/internal/modules/digest"
	"github.com/tgpulse/tgpulse/internal/shared/config"
)

var (
	digestFrom   string
	digestTo     string
	digestDays   int
	digestTop    int
	digestSend   bool
	digestTarget string
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Prepare the digest input for the summarization service",
	Long: `Selects the top messages by reach in the window and prints the
prompt an external digest generator consumes.`,
	RunE: withInjector(runDigest),
}

func init() {
	addWindowFlags(digestCmd, &digestFrom, &digestTo, &digestDays)
	digestCmd.Flags().IntVar(&digestTop, "top", 0, "Number of top messages to select")
	digestCmd.Flags().BoolVar(&digestSend, "send", false, "Send the prepared text to Telegram instead of printing")
	digestCmd.Flags().StringVar(&digestTarget, "target", "", "Override target chat id for sending")
}

func runDigest(ctx context.Context, injector do.Injector, args []string) error {
	cfg := do.MustInvoke[*config.Config](injector)
	service := do.MustInvoke[*digest.Service](injector)

	from, to, err := resolveWindow(cfg, digestFrom, digestTo, digestDays)
	if err != nil {
		return err
	}
	top := digestTop
	if top <= 0 {
		top = cfg.TopNMessages
	}

	selected, err := service.SelectTop(ctx, from, to, top)
	if err != nil {
		return err
	}
	prompt := service.BuildPrompt(selected, from, to)

	if !digestSend {
		fmt.Println(prompt)
		return nil
	}

	target := digestTarget
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
	if err := sender.Send(ctx, target, prompt); err != nil {
		return err
	}
	fmt.Printf("Digest input sent to %s\n", target)
	return nil
}
