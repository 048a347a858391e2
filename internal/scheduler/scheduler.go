package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TSNiSAM/internal/notifier"
	"TSNiSAM/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const sendRetries = 3

// Scheduler manages the cache refresh and digest cron jobs.
type Scheduler struct {
	Cron     *cron.Cron
	Service  *service.AnalysisService
	Notifier notifier.Notifier
	Ctx      context.Context
	now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc *service.AnalysisService, n notifier.Notifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Notifier: n,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// RegisterAll registers the refresh and digest tasks. An empty cron expression skips the task.
func (s *Scheduler) RegisterAll(refreshCron, digestCron string) error {
	if refreshCron != "" {
		if _, err := s.Cron.AddFunc(refreshCron, s.RunRefreshNow); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
	}
	if digestCron != "" {
		if _, err := s.Cron.AddFunc(digestCron, func() { s.RunDigestNow("cron") }); err != nil {
			return fmt.Errorf("register digest task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Str("component", "scheduler").Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Str("component", "scheduler").Msg("scheduler stopped")
}

// RunRefreshNow re-fetches every catalog ticker into the cache.
func (s *Scheduler) RunRefreshNow() {
	log.Info().Str("component", "scheduler").Msg("running cache refresh")
	if err := s.Service.WarmCache(s.Ctx); err != nil {
		log.Error().Str("component", "scheduler").Err(err).Msg("cache refresh incomplete")
	}
}

// RunDigestNow computes the digest and sends it. trigger is journalled with the run.
func (s *Scheduler) RunDigestNow(trigger string) error {
	log.Info().Str("component", "scheduler").Str("trigger", trigger).Msg("running digest")
	entries := s.Service.Digest(s.Ctx)
	err := s.Notifier.SendWithRetry(s.Ctx, notifier.FormatDigest(entries, s.now()), sendRetries)
	if err != nil {
		log.Error().Str("component", "scheduler").Err(err).Msg("send digest")
	}
	s.Service.RecordDigest(trigger, len(entries), err)
	return err
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	// Telegram appends @botname to commands in group chats.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/digest":
		_ = s.RunDigestNow("telegram")
		return ""
	case "/tickers":
		return notifier.FormatTickers(s.Service.Tickers())
	case "/signal":
		if len(fields) < 2 {
			return "Usage: /signal SYMBOL"
		}
		symbol := strings.ToUpper(fields[1])
		start, end := s.Service.DefaultRange()
		sig, err := s.Service.Signal(ctx, symbol, start, end)
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", symbol, err)
		}
		return notifier.FormatSignal(sig)
	default:
		return notifier.HelpText
	}
}
