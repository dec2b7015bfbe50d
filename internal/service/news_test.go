package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-newspulse/internal/model"
)

func newTestNewsService(t *testing.T, sources ...model.Source) *NewsService {
	t.Helper()
	cache := NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = cache.Close() })
	return NewNewsService(NewsDeps{
		Feed:  NewFeedService(FeedOptions{Timeout: 2 * time.Second}),
		Cache: cache,
	}, sources)
}

func TestNewsService_AggregateUsesCache(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestNewsService(t, fs.source("wire", "/rss", "technology"), fs.source("markets", "/atom", "business"))
	ctx := context.Background()

	first := svc.Aggregate(ctx)
	require.Len(t, first, 3)
	assert.EqualValues(t, 2, fs.hits.Load())
	for _, a := range first {
		assert.NotEmpty(t, a.AICategory, a.Title)
		assert.Equal(t, "keyword", a.EnrichedBy)
	}

	second := svc.Aggregate(ctx)
	assert.Len(t, second, 3)
	assert.EqualValues(t, 2, fs.hits.Load(), "served from cache")
	assert.Equal(t, 3, svc.CachedCount(ctx))

	svc.Refresh(ctx)
	assert.EqualValues(t, 4, fs.hits.Load())

	last, failures := svc.LastRefresh()
	assert.False(t, last.IsZero())
	assert.Empty(t, failures)
}

func TestNewsService_RecordsFailures(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestNewsService(t, fs.source("wire", "/rss", "technology"), fs.source("down", "/error", "general"))

	articles := svc.Refresh(context.Background())
	assert.Len(t, articles, 2)

	_, failures := svc.LastRefresh()
	require.Len(t, failures, 1)
	assert.Equal(t, "down", failures[0].Source)
}

func TestNewsService_GetNews(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestNewsService(t, fs.source("wire", "/rss", "technology"), fs.source("markets", "/atom", "business"))
	ctx := context.Background()

	t.Run("category", func(t *testing.T) {
		page, err := svc.GetNews(ctx, model.NewsRequest{
			Criteria: model.FilterCriteria{Categories: []string{"sports"}},
		})
		require.NoError(t, err)
		require.Len(t, page.Articles, 1)
		assert.Equal(t, "Local team wins championship", page.Articles[0].Title)
		assert.Positive(t, page.Articles[0].RelevanceScore)
		assert.Nil(t, page.Location)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := svc.GetNews(ctx, model.NewsRequest{Page: 2, PerPage: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Articles, 1)
	})

	t.Run("personalized", func(t *testing.T) {
		page, err := svc.GetNews(ctx, model.NewsRequest{
			Personalize: true,
			IP:          "127.0.0.1",
			Timezone:    "Europe/Berlin",
		})
		require.NoError(t, err)
		require.NotNil(t, page.Location)
		assert.Equal(t, model.RegionEurope, page.Location.NewsRegion)
		assert.Equal(t, "timezone", page.Location.ResolvedBy)
		assert.Len(t, page.Articles, 3)
	})
}

func TestNewsService_GetNewsRejectsBadInput(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestNewsService(t, fs.source("wire", "/rss", "technology"))

	_, err := svc.GetNews(context.Background(), model.NewsRequest{
		Criteria: model.FilterCriteria{Categories: []string{"astrology"}},
	})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "categories", verr.Field)

	_, err = svc.GetNews(context.Background(), model.NewsRequest{TargetLanguage: "xx"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lang", verr.Field)

	assert.Zero(t, fs.hits.Load(), "invalid requests never fetch")
}

func TestNewsService_GetNewsTranslates(t *testing.T) {
	fs := newFeedServer(t)
	cache := NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = cache.Close() })
	provider := &fakeTranslationProvider{}
	svc := NewNewsService(NewsDeps{
		Feed:       NewFeedService(FeedOptions{Timeout: 2 * time.Second}),
		Cache:      cache,
		Translator: newTestTranslator(t, provider),
	}, []model.Source{fs.source("wire", "/rss", "technology")})

	page, err := svc.GetNews(context.Background(), model.NewsRequest{PerPage: 1, TargetLanguage: "fr"})
	require.NoError(t, err)
	require.Len(t, page.Articles, 1)
	a := page.Articles[0]
	assert.True(t, strings.HasPrefix(a.TranslatedTitle, "[fr] "), a.TranslatedTitle)
	assert.Equal(t, "fr", a.TargetLanguage)
	assert.Positive(t, provider.Calls())
}

func TestNewsService_Trending(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestNewsService(t, fs.source("wire", "/rss", "technology"), fs.source("markets", "/atom", "business"))

	got := svc.Trending(context.Background(), 2)
	require.Len(t, got, 2)
	assert.Equal(t, "AI breakthrough announced", got[0].Title)
	assert.Equal(t, "Local team wins championship", got[1].Title)
	assert.GreaterOrEqual(t, got[0].TrendingScore, got[1].TrendingScore)
}

func TestNewsService_SetSourcesInvalidatesCache(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestNewsService(t, fs.source("wire", "/rss", "technology"), fs.source("markets", "/atom", "business"))
	ctx := context.Background()

	require.Len(t, svc.Aggregate(ctx), 3)

	svc.SetSources(ctx, []model.Source{fs.source("markets", "/atom", "business")})
	assert.Zero(t, svc.CachedCount(ctx))

	got := svc.Aggregate(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "Market crashes amid crisis", got[0].Title)
	assert.EqualValues(t, 3, fs.hits.Load())
	assert.Len(t, svc.Sources(), 1)
}

func TestDedupe(t *testing.T) {
	in := []model.Article{{ID: "a", Title: "one"}, {ID: "b"}, {ID: "a", Title: "two"}}
	out := dedupe(in)
	require.Len(t, out, 2)
	assert.Equal(t, "one", out[0].Title)
}

func TestNewsService_CanceledCallerDoesNotEmptyCache(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestNewsService(t, fs.source("wire", "/rss", "technology"), fs.source("markets", "/atom", "business"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.GetNews(ctx, model.NewsRequest{})
	require.NoError(t, err)

	got := svc.Aggregate(context.Background())
	assert.Len(t, got, 3)
	assert.Equal(t, 3, svc.CachedCount(context.Background()))
	assert.EqualValues(t, 2, fs.hits.Load(), "next caller is served from cache")
}

func TestNewsService_KeepsPreviousBatchWhenAllSourcesFail(t *testing.T) {
	var down atomic.Bool
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, rssFixture(now))
	}))
	t.Cleanup(srv.Close)

	svc := newTestNewsService(t, model.Source{ID: "wire", Name: "wire", URL: srv.URL})
	ctx := context.Background()

	require.Len(t, svc.Refresh(ctx), 2)

	down.Store(true)
	got := svc.Refresh(ctx)
	assert.Len(t, got, 2, "previous batch is served again")
	assert.Equal(t, 2, svc.CachedCount(ctx))

	_, failures := svc.LastRefresh()
	require.Len(t, failures, 1)
	assert.Equal(t, "wire", failures[0].Source)

	svc.SetSources(ctx, []model.Source{{ID: "other", URL: srv.URL}})
	assert.Empty(t, svc.Refresh(ctx), "a new source list drops the previous batch")
}
