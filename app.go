package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"go-newspulse/config"
	"go-newspulse/internal/service"
)

// app owns the long-lived components and tears them down in reverse order.
type app struct {
	news         *service.NewsService
	translations *service.TranslationCache
	translator   *service.Translator
	status       *service.StatusService

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	db, err := service.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a.translations = service.NewTranslationCache(db)
	a.closers = append(a.closers, a.translations.Close)

	cache := newArticleCache(ctx, cfg.Cache)
	a.closers = append(a.closers, cache.Close)

	classifiers, llm, err := newClassifiers(ctx, cfg.LLM, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	feed := service.NewFeedService(service.FeedOptions{
		Timeout:           cfg.Fetch.Timeout,
		MaxItemsPerSource: cfg.Fetch.MaxItemsPerSource,
		UserAgent:         cfg.Fetch.UserAgent,
	})
	geo := service.NewGeoResolver(
		service.NewGeoProviders(cfg.Geo.Providers, cfg.Geo.Timeout),
		service.GeoOptions{Timeout: cfg.Geo.Timeout, CacheSize: cfg.Geo.CacheSize, CacheTTL: cfg.Geo.CacheTTL},
	)
	a.translator = service.NewTranslator(
		service.NewGoogleTranslateProvider(cfg.Translation.Endpoint, cfg.Translation.Timeout),
		a.translations,
		service.TranslatorOptions{SnippetTTL: cfg.Translation.SnippetTTL, ArticleTTL: cfg.Translation.ArticleTTL},
	)

	a.news = service.NewNewsService(service.NewsDeps{
		Feed:       feed,
		Cache:      cache,
		Enricher:   service.NewEnricher(classifiers...),
		Filter:     service.NewRelevanceFilter(),
		Geo:        geo,
		Translator: a.translator,
	}, cfg.EnabledSources())
	a.status = service.NewStatusService(a.news, a.translations, llm)
	return a, nil
}

func newArticleCache(ctx context.Context, cfg config.CacheConfig) service.ArticleCache {
	if cfg.Backend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := client.Ping(pingCtx).Err()
		if err == nil {
			slog.Info("article cache backend", "backend", "redis", "addr", cfg.RedisAddr)
			return service.NewRedisCache(client, cfg.TTL)
		}
		slog.Warn("redis unavailable, using in-memory cache", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
	}
	return service.NewMemoryCache(cfg.TTL)
}

func newClassifiers(ctx context.Context, cfg config.LLMConfig, a *app) ([]service.Classifier, *service.LLMClassifier, error) {
	if cfg.Provider == "" {
		return nil, nil, nil
	}
	if cfg.APIKey == "" {
		slog.Warn("llm provider configured without api key, using keyword classifier", "provider", cfg.Provider)
		return nil, nil, nil
	}

	var gen service.TextGenerator
	switch cfg.Provider {
	case "openai":
		gen = service.NewOpenAIGenerator(cfg.APIURL, cfg.APIKey, cfg.Model)
	case "gemini":
		model := cfg.Model
		if strings.HasPrefix(model, "gpt") {
			model = "gemini-1.5-flash"
		}
		g, err := service.NewGeminiGenerator(ctx, cfg.APIKey, model)
		if err != nil {
			return nil, nil, fmt.Errorf("llm: %w", err)
		}
		a.closers = append(a.closers, g.Close)
		gen = g
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	llm := service.NewLLMClassifier(gen, service.LLMOptions{
		RequestsPerMinute: cfg.RequestsPerMinute,
		DailyBudget:       cfg.DailyBudget,
		Timeout:           cfg.Timeout,
	})
	slog.Info("llm enrichment enabled", "provider", cfg.Provider, "model", cfg.Model)
	return []service.Classifier{llm}, llm, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
}
