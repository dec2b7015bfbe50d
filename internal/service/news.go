package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go-newspulse/internal/metrics"
	"go-newspulse/internal/model"
)

// NewsService glues the pipeline: fetch, cache, enrich, personalize, filter, translate.
type NewsService struct {
	feed       *FeedService
	cache      ArticleCache
	enricher   *Enricher
	filter     *RelevanceFilter
	geo        *GeoResolver
	translator *Translator

	mu          sync.RWMutex
	sources     []model.Source
	lastRefresh time.Time
	failures    []SourceFailure
	lastBatch   []model.Article
}

type NewsDeps struct {
	Feed       *FeedService
	Cache      ArticleCache
	Enricher   *Enricher
	Filter     *RelevanceFilter
	Geo        *GeoResolver
	Translator *Translator
}

func NewNewsService(deps NewsDeps, sources []model.Source) *NewsService {
	if deps.Enricher == nil {
		deps.Enricher = NewEnricher()
	}
	if deps.Filter == nil {
		deps.Filter = NewRelevanceFilter()
	}
	if deps.Geo == nil {
		deps.Geo = NewGeoResolver(nil, GeoOptions{})
	}
	return &NewsService{
		feed:       deps.Feed,
		cache:      deps.Cache,
		enricher:   deps.Enricher,
		filter:     deps.Filter,
		geo:        deps.Geo,
		translator: deps.Translator,
		sources:    append([]model.Source(nil), sources...),
	}
}

func (s *NewsService) Sources() []model.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Source(nil), s.sources...)
}

// SetSources swaps the source list and drops the aggregated cache entry.
func (s *NewsService) SetSources(ctx context.Context, sources []model.Source) {
	s.mu.Lock()
	s.sources = append([]model.Source(nil), sources...)
	s.lastBatch = nil
	s.mu.Unlock()
	s.cache.Delete(ctx, AllNewsKey)
	slog.Info("sources updated", "count", len(sources))
}

// Aggregate returns the enriched article set, regenerating it on a cache miss.
// Concurrent misses may both regenerate.
func (s *NewsService) Aggregate(ctx context.Context) []model.Article {
	if articles, ok := s.cache.Get(ctx, AllNewsKey); ok {
		return articles
	}
	return s.Refresh(ctx)
}

// Refresh runs a full aggregation batch and stores it, ignoring any cached payload.
// The batch is detached from the caller's cancellation; per-source timeouts bound it.
// When every source fails, the previous batch is kept and served again.
func (s *NewsService) Refresh(ctx context.Context) []model.Article {
	ctx = context.WithoutCancel(ctx)
	sources := s.Sources()
	result := s.feed.FetchAll(ctx, sources)

	articles := s.enricher.EnrichAll(ctx, dedupe(result.Articles))

	s.mu.Lock()
	s.lastRefresh = time.Now()
	s.failures = result.Failures
	if result.Succeeded == 0 && len(sources) > 0 && s.lastBatch != nil {
		articles = s.lastBatch
		slog.Warn("no source succeeded, keeping previous batch", "articles", len(articles))
	} else {
		s.lastBatch = articles
	}
	s.mu.Unlock()

	metrics.ArticlesFetched.Observe(float64(len(articles)))
	s.cache.Set(ctx, AllNewsKey, articles)
	return cloneArticles(articles)
}

// LastRefresh reports when the last batch ran and which sources failed in it.
func (s *NewsService) LastRefresh() (time.Time, []SourceFailure) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh, append([]SourceFailure(nil), s.failures...)
}

// CachedCount is the size of the cached batch, zero when the cache is cold.
func (s *NewsService) CachedCount(ctx context.Context) int {
	articles, _ := s.cache.Get(ctx, AllNewsKey)
	return len(articles)
}

func dedupe(articles []model.Article) []model.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}

func (s *NewsService) ResolveLocation(ctx context.Context, ip, timezone string) model.Location {
	return s.geo.Resolve(ctx, ip, timezone)
}

// GetNews validates the request, then filters, paginates and optionally translates.
func (s *NewsService) GetNews(ctx context.Context, req model.NewsRequest) (*model.NewsPage, error) {
	if err := s.filter.Validate(req.Criteria); err != nil {
		return nil, err
	}
	if req.TargetLanguage != "" {
		if _, err := ValidateLanguage(req.TargetLanguage); err != nil {
			return nil, err
		}
	}

	articles := s.Aggregate(ctx)

	criteria := req.Criteria
	var loc *model.Location
	if criteria.UserLocation != nil {
		loc = criteria.UserLocation
	} else if req.Personalize {
		resolved := s.geo.Resolve(ctx, req.IP, req.Timezone)
		loc = &resolved
		criteria.UserLocation = loc
		if criteria.UserPreferences == nil {
			criteria.UserPreferences = &model.UserPreferences{PrioritizeLocal: true}
		}
	}

	ranked := s.filter.Filter(articles, criteria)
	page := Paginate(ranked, req.Page, req.PerPage)
	page.Location = loc

	if req.TargetLanguage != "" && s.translator != nil {
		translated, err := s.translator.TranslateArticles(ctx, page.Articles, req.TargetLanguage)
		if err != nil {
			return nil, err
		}
		page.Articles = translated
	}
	return &page, nil
}

// Trending returns the highest trending scores, newest first on ties.
func (s *NewsService) Trending(ctx context.Context, limit int) []model.Article {
	if limit <= 0 {
		limit = 10
	}
	articles := s.Aggregate(ctx)
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].TrendingScore != articles[j].TrendingScore {
			return articles[i].TrendingScore > articles[j].TrendingScore
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}
