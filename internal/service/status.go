package service

import (
	"context"
	"time"

	"go-newspulse/internal/model"
)

type StatusService struct {
	news         *NewsService
	translations *TranslationCache
	llm          *LLMClassifier
}

type SystemStatus struct {
	// Aggregation
	CachedArticles int             `json:"cached_articles"`
	TotalSources   int             `json:"total_sources"`
	FailedSources  []SourceFailure `json:"failed_sources"`
	LastRefresh    time.Time       `json:"last_refresh"`

	// Translation cache
	Translations *model.TranslationStats `json:"translations,omitempty"`

	// LLM enrichment
	LLMProvider string `json:"llm_provider,omitempty"`
	LLMUsed     int    `json:"llm_used"`
	LLMBudget   int    `json:"llm_budget"`

	// Scheduled jobs
	NextRefreshTime time.Time `json:"next_refresh_time"`
	NextSweepTime   time.Time `json:"next_sweep_time"`
}

// llm may be nil when no text generation backend is configured.
func NewStatusService(news *NewsService, translations *TranslationCache, llm *LLMClassifier) *StatusService {
	return &StatusService{news: news, translations: translations, llm: llm}
}

func (s *StatusService) GetSystemStatus(ctx context.Context) (*SystemStatus, error) {
	status := &SystemStatus{
		CachedArticles: s.news.CachedCount(ctx),
		TotalSources:   len(s.news.Sources()),
	}
	status.LastRefresh, status.FailedSources = s.news.LastRefresh()

	if s.translations != nil {
		stats, err := s.translations.Stats(ctx)
		if err != nil {
			return nil, err
		}
		status.Translations = stats
	}

	if s.llm != nil {
		status.LLMProvider = s.llm.Name()
		status.LLMUsed, status.LLMBudget = s.llm.Usage()
	}
	return status, nil
}
