package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-newspulse/internal/model"
	"go-newspulse/internal/service"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Wire</title>
  <language>en</language>
  <item>
    <title>Local team wins championship</title>
    <link>https://example.com/team</link>
    <pubDate>%s</pubDate>
  </item>
  <item>
    <title>New smartphone ships worldwide</title>
    <link>https://example.com/phone</link>
    <pubDate>%s</pubDate>
  </item>
</channel>
</rss>`

type upperProvider struct{}

func (upperProvider) Name() string { return "upper" }

func (upperProvider) Translate(_ context.Context, text, _, to string) (string, error) {
	return to + ":" + text, nil
}

type fixedScheduler struct{ at time.Time }

func (s fixedScheduler) GetNextRefreshTime() time.Time { return s.at }
func (s fixedScheduler) GetNextSweepTime() time.Time   { return s.at.Add(time.Hour) }

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Now()
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, testFeed, now.Add(-time.Hour).Format(time.RFC1123Z), now.Add(-2*time.Hour).Format(time.RFC1123Z))
	}))
	t.Cleanup(feed.Close)

	db, err := service.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	translations := service.NewTranslationCache(db)
	t.Cleanup(func() { _ = translations.Close() })

	cache := service.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = cache.Close() })

	translator := service.NewTranslator(upperProvider{}, translations, service.TranslatorOptions{})
	news := service.NewNewsService(service.NewsDeps{
		Feed:       service.NewFeedService(service.FeedOptions{Timeout: 2 * time.Second}),
		Cache:      cache,
		Translator: translator,
	}, []model.Source{{ID: "wire", Name: "Wire", URL: feed.URL, Category: "general"}})

	h := NewHandler(news, translator, translations, service.NewStatusService(news, translations, nil))
	h.SetScheduler(fixedScheduler{at: now.Add(5 * time.Minute)})

	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestListArticles(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/articles?categories=sports", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page model.NewsPage
	decode(t, w, &page)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, "Local team wins championship", page.Articles[0].Title)
	assert.Equal(t, 1, page.Total)

	w = doRequest(r, http.MethodGet, "/api/articles?categories=sports,technology&per_page=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &page)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Articles, 1)
}

func TestListArticles_Personalized(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/articles?personalize=true&tz=Asia/Tokyo", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page model.NewsPage
	decode(t, w, &page)
	require.NotNil(t, page.Location)
	assert.Equal(t, model.RegionAsia, page.Location.NewsRegion)
}

func TestListArticles_Translated(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/articles?categories=sports&lang=de", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page model.NewsPage
	decode(t, w, &page)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, "de:Local team wins championship", page.Articles[0].TranslatedTitle)
}

func TestListArticles_InvalidInput(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/articles?categories=astrology", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Field string   `json:"field"`
		Value string   `json:"value"`
		Valid []string `json:"valid"`
	}
	decode(t, w, &body)
	assert.Equal(t, "categories", body.Field)
	assert.Equal(t, "astrology", body.Value)
	assert.Contains(t, body.Valid, "sports")

	w = doRequest(r, http.MethodGet, "/api/articles?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var bindErr struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &bindErr)
	assert.Contains(t, bindErr.Fields, "Limit")

	w = doRequest(r, http.MethodGet, "/api/articles?lang=xx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchArticles(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/api/articles/search", map[string]any{
		"criteria": map[string]any{"keywords": []string{"smartphone"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page model.NewsPage
	decode(t, w, &page)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, "New smartphone ships worldwide", page.Articles[0].Title)

	w = doRequest(r, http.MethodPost, "/api/articles/search", map[string]any{
		"criteria": map[string]any{"sort_by": "random"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendingAndRefresh(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/articles/trending?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trending struct {
		Articles []model.Article `json:"articles"`
		Total    int             `json:"total"`
	}
	decode(t, w, &trending)
	assert.Equal(t, 1, trending.Total)
	assert.Equal(t, "Local team wins championship", trending.Articles[0].Title)

	w = doRequest(r, http.MethodPost, "/api/articles/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"articles":2,"failed_sources":null}`, w.Body.String())
}

func TestGetLocation(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/location?ip=10.1.2.3&tz=Europe/London", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loc model.Location
	decode(t, w, &loc)
	assert.Equal(t, model.RegionEurope, loc.NewsRegion)
	assert.Equal(t, "GB", loc.CountryCode)
}

func TestTranslate(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/api/translate", map[string]string{"text": "Hello", "to": "es"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rec model.TranslationRecord
	decode(t, w, &rec)
	assert.Equal(t, "es:Hello", rec.TranslatedText)
	assert.Equal(t, "upper", rec.Provider)

	w = doRequest(r, http.MethodPost, "/api/translate", map[string]string{"text": "Hello", "to": "xx"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var verr struct {
		Field string `json:"field"`
	}
	decode(t, w, &verr)
	assert.Equal(t, "lang", verr.Field)

	w = doRequest(r, http.MethodPost, "/api/translate", map[string]string{"to": "es"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/translations/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats model.TranslationStats
	decode(t, w, &stats)
	assert.EqualValues(t, 1, stats.TotalRecords)
	assert.EqualValues(t, 1, stats.ByLanguagePair["auto->es"])

	w = doRequest(r, http.MethodPost, "/api/translations/sweep", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":0}`, w.Body.String())
}

func TestSourcesAndStatus(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sources []model.Source
	decode(t, w, &sources)
	require.Len(t, sources, 1)
	assert.Equal(t, "wire", sources[0].ID)

	w = doRequest(r, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status service.SystemStatus
	decode(t, w, &status)
	assert.Equal(t, 1, status.TotalSources)
	assert.Zero(t, status.CachedArticles)
	assert.False(t, status.NextRefreshTime.IsZero())
	assert.True(t, status.NextSweepTime.After(status.NextRefreshTime))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " ", "c,"}))
	assert.Nil(t, splitList(nil))
}
