package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-newspulse/internal/model"
)

func newTestFeedService() *FeedService {
	return NewFeedService(FeedOptions{Timeout: 300 * time.Millisecond, MaxItemsPerSource: 20})
}

func TestFetchSource_RSS(t *testing.T) {
	srv := newFeedServer(t)
	s := newTestFeedService()

	articles, err := s.FetchSource(context.Background(), srv.source("techwire", "/rss", "Technology"))
	require.NoError(t, err)
	require.Len(t, articles, 2, "item without a title is skipped")

	a := articles[0]
	assert.Equal(t, "AI breakthrough announced", a.Title)
	assert.Equal(t, "Researchers unveil a model", a.Description)
	assert.Equal(t, "https://img.example.com/ai.png", a.ImageURL)
	assert.Equal(t, "techwire", a.SourceID)
	assert.Equal(t, "techwire", a.SourceName)
	assert.Equal(t, "technology", a.Category)
	assert.Equal(t, "en", a.Language)
	assert.Len(t, a.ID, 16)
	assert.Equal(t, time.UTC, a.PublishedAt.Location())
}

func TestFetchSource_Atom(t *testing.T) {
	srv := newFeedServer(t)
	s := newTestFeedService()

	articles, err := s.FetchSource(context.Background(), srv.source("markets", "/atom", "business"))
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "Market crashes amid crisis", a.Title)
	assert.Equal(t, "Stocks slump worldwide.", a.Description)
	assert.Equal(t, "https://markets.example.com/crash", a.URL)
	assert.True(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Equal(a.PublishedAt), "updated is used when published is missing")
}

func TestFetchSource_MaxItems(t *testing.T) {
	srv := newFeedServer(t)
	s := newTestFeedService()

	src := srv.source("techwire", "/rss", "technology")
	src.MaxItems = 1
	articles, err := s.FetchSource(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestFetchSource_StableIDs(t *testing.T) {
	srv := newFeedServer(t)
	s := newTestFeedService()
	src := srv.source("techwire", "/rss", "technology")

	first, err := s.FetchSource(context.Background(), src)
	require.NoError(t, err)
	second, err := s.FetchSource(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.NotEqual(t, first[0].ID, first[1].ID)
}

func TestFetchSource_Failures(t *testing.T) {
	srv := newFeedServer(t)
	s := newTestFeedService()

	for _, path := range []string{"/slow", "/error", "/broken"} {
		t.Run(path, func(t *testing.T) {
			articles, err := s.FetchSource(context.Background(), srv.source("bad", path, ""))
			assert.Error(t, err)
			assert.Empty(t, articles)
		})
	}
}

func TestFetchAll_OneSourceTimesOut(t *testing.T) {
	srv := newFeedServer(t)
	s := newTestFeedService()

	start := time.Now()
	result := s.FetchAll(context.Background(), []model.Source{
		srv.source("techwire", "/rss", "technology"),
		srv.source("markets", "/atom", "business"),
		srv.source("sleepy", "/slow", "general"),
	})

	assert.Less(t, time.Since(start), 2*time.Second, "slow source is bounded by its timeout")
	assert.Equal(t, 2, result.Succeeded)
	assert.Len(t, result.Articles, 3)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "sleepy", result.Failures[0].Source)
}

func TestFetchAll_AllSourcesDown(t *testing.T) {
	srv := newFeedServer(t)
	s := newTestFeedService()

	result := s.FetchAll(context.Background(), []model.Source{
		srv.source("a", "/error", ""),
		srv.source("b", "/broken", ""),
	})
	assert.Empty(t, result.Articles)
	assert.Zero(t, result.Succeeded)
	assert.Len(t, result.Failures, 2)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.Example.com/path/?utm_source=x&id=2#frag", "https://example.com/path?id=2"},
		{"http://example.com/a", "https://example.com/a"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeURL(tt.in), tt.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "héllo w...", truncate("héllo world again", 10))
}
