package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"go-newspulse/config"
	"go-newspulse/internal/service"
)

type Scheduler struct {
	cron         *cron.Cron
	news         *service.NewsService
	translations *service.TranslationCache
	config       config.CronConfig
	refreshEntry cron.EntryID
	sweepEntry   cron.EntryID
}

func NewScheduler(news *service.NewsService, translations *service.TranslationCache, cfg config.CronConfig) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		news:         news,
		translations: translations,
		config:       cfg,
	}
}

func (s *Scheduler) Start() error {
	var err error

	// Cache warm-up
	s.refreshEntry, err = s.cron.AddFunc(s.config.RefreshInterval, s.refresh)
	if err != nil {
		return fmt.Errorf("scheduling refresh %q: %w", s.config.RefreshInterval, err)
	}

	// Expired translation purge
	s.sweepEntry, err = s.cron.AddFunc(s.config.SweepInterval, s.sweep)
	if err != nil {
		return fmt.Errorf("scheduling sweep %q: %w", s.config.SweepInterval, err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "refresh", s.config.RefreshInterval, "sweep", s.config.SweepInterval)
	return nil
}

func (s *Scheduler) refresh() {
	slog.Debug("cron: refreshing aggregated news")
	articles := s.news.Refresh(context.Background())
	slog.Info("cron: refresh done", "articles", len(articles))
}

func (s *Scheduler) sweep() {
	n, err := s.translations.Sweep(context.Background())
	if err != nil {
		slog.Error("cron: translation sweep failed", "error", err)
		return
	}
	slog.Info("cron: translation sweep done", "deleted", n)
}

// GetNextRefreshTime returns when the next cache warm-up runs.
func (s *Scheduler) GetNextRefreshTime() time.Time {
	return s.cron.Entry(s.refreshEntry).Next
}

// GetNextSweepTime returns when the next translation sweep runs.
func (s *Scheduler) GetNextSweepTime() time.Time {
	return s.cron.Entry(s.sweepEntry).Next
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
