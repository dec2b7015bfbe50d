package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-newspulse/config"
	"go-newspulse/internal/service"
)

func newTestDeps(t *testing.T) (*service.NewsService, *service.TranslationCache) {
	t.Helper()
	db, err := service.OpenDB(filepath.Join(t.TempDir(), "cron.db"))
	require.NoError(t, err)
	translations := service.NewTranslationCache(db)
	t.Cleanup(func() { _ = translations.Close() })

	cache := service.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = cache.Close() })
	news := service.NewNewsService(service.NewsDeps{
		Feed:  service.NewFeedService(service.FeedOptions{}),
		Cache: cache,
	}, nil)
	return news, translations
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	tests := map[string]config.CronConfig{
		"refresh": {RefreshInterval: "every banana", SweepInterval: "@every 1h"},
		"sweep":   {RefreshInterval: "@every 5m", SweepInterval: "61 * * * *"},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewScheduler(nil, nil, cfg)
			err := s.Start()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestScheduler_NextRunTimes(t *testing.T) {
	news, translations := newTestDeps(t)
	s := NewScheduler(news, translations, config.CronConfig{
		RefreshInterval: "@every 5m",
		SweepInterval:   "@every 6h",
	})
	require.NoError(t, s.Start())
	defer s.Stop()

	now := time.Now()
	refresh := s.GetNextRefreshTime()
	sweep := s.GetNextSweepTime()
	assert.WithinDuration(t, now.Add(5*time.Minute), refresh, 5*time.Second)
	assert.WithinDuration(t, now.Add(6*time.Hour), sweep, 5*time.Second)
}

func TestScheduler_Jobs(t *testing.T) {
	news, translations := newTestDeps(t)
	ctx := context.Background()

	_, err := translations.Put(ctx, "Hello", "Hola", "en", "es", "google", -time.Minute)
	require.NoError(t, err)

	s := NewScheduler(news, translations, config.CronConfig{})
	s.sweep()
	s.refresh()

	stats, err := translations.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalRecords)

	last, _ := news.LastRefresh()
	assert.False(t, last.IsZero())
}
