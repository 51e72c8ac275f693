// Package scheduler runs the periodic report and digest deliveries.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tgpulse/tgpulse/internal/modules/analytics"
	"github.com/tgpulse/tgpulse/internal/modules/digest"
	"github.com/tgpulse/tgpulse/internal/shared/config"
	"github.com/tgpulse/tgpulse/internal/storage"
)

// Deliverer sends a pre-formatted text blob to a target chat.
type Deliverer interface {
	Send(ctx context.Context, target string, text string) error
}

// Scheduler triggers analytics and digest jobs on cron expressions from
// the config. Jobs are no-ops when no target chat is configured.
type Scheduler struct {
	cfg       *config.Config
	store     storage.Store
	analytics *analytics.Service
	digest    *digest.Service
	generator digest.Generator // optional, may be nil
	deliver   Deliverer
	cron      *cron.Cron
}

func New(cfg *config.Config, store storage.Store, analyticsService *analytics.Service, digestService *digest.Service, deliver Deliverer) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		store:     store,
		analytics: analyticsService,
		digest:    digestService,
		deliver:   deliver,
		cron:      cron.New(),
	}
}

// SetGenerator wires an external digest generator. Without one the
// scheduler delivers the prepared prompt as-is.
func (s *Scheduler) SetGenerator(g digest.Generator) {
	s.generator = g
}

func (s *Scheduler) Start() error {
	if s.cfg.TargetChatID == "" || (s.cfg.ReportCron == "" && s.cfg.DigestCron == "") {
		slog.Info("Scheduler disabled", "target_set", s.cfg.TargetChatID != "")
		return nil
	}

	if s.cfg.ReportCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.ReportCron, s.runReport); err != nil {
			return err
		}
	}
	if s.cfg.DigestCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.DigestCron, s.runDigest); err != nil {
			return err
		}
	}

	s.cron.Start()
	slog.Info("Scheduler started", "report_cron", s.cfg.ReportCron, "digest_cron", s.cfg.DigestCron)
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) window() (time.Time, time.Time) {
	to := time.Now().UTC()
	return to.AddDate(0, 0, -s.cfg.WindowDays), to
}

func (s *Scheduler) runReport() {
	ctx := context.Background()

	tags, err := s.store.ListTags(ctx)
	if err != nil {
		slog.Error("Scheduled report failed to list tags", "error", err)
		return
	}
	if len(tags) == 0 {
		slog.Info("Scheduled report skipped, no tags configured")
		return
	}

	from, to := s.window()
	result, err := s.analytics.Aggregate(ctx, from, to, tags)
	if err != nil {
		slog.Error("Scheduled report failed", "error", err)
		return
	}

	if err := s.deliver.Send(ctx, s.cfg.TargetChatID, analytics.Render(result, s.cfg.SnippetLength)); err != nil {
		slog.Error("Scheduled report delivery failed", "target", s.cfg.TargetChatID, "error", err)
		return
	}
	slog.Info("Scheduled report delivered", "target", s.cfg.TargetChatID, "hits", result.TotalHits)
}

func (s *Scheduler) runDigest() {
	ctx := context.Background()
	from, to := s.window()

	top, err := s.digest.SelectTop(ctx, from, to, s.cfg.TopNMessages)
	if err != nil {
		slog.Error("Scheduled digest selection failed", "error", err)
		return
	}

	text := s.digest.BuildPrompt(top, from, to)
	if s.generator != nil {
		text, err = s.generator.GenerateDigest(ctx, text)
		if err != nil {
			slog.Error("Digest generation failed", "error", err)
			return
		}
	}

	if err := s.deliver.Send(ctx, s.cfg.TargetChatID, text); err != nil {
		slog.Error("Scheduled digest delivery failed", "target", s.cfg.TargetChatID, "error", err)
		return
	}
	slog.Info("Scheduled digest delivered", "target", s.cfg.TargetChatID, "top", len(top))
}
