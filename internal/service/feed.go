package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"go-newspulse/internal/metrics"
	"go-newspulse/internal/model"
)

const (
	maxDescriptionRunes = 500
	maxContentRunes     = 2000
)

type FeedOptions struct {
	Timeout           time.Duration
	MaxItemsPerSource int
	UserAgent         string
	Client            *http.Client
}

type FeedService struct {
	client    *http.Client
	timeout   time.Duration
	maxItems  int
	userAgent string
	policy    *bluemonday.Policy
	now       func() time.Time
}

func NewFeedService(opts FeedOptions) *FeedService {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxItemsPerSource <= 0 {
		opts.MaxItemsPerSource = 20
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	return &FeedService{
		client:    client,
		timeout:   opts.Timeout,
		maxItems:  opts.MaxItemsPerSource,
		userAgent: opts.UserAgent,
		policy:    bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// SourceFailure records why a source contributed nothing to a batch.
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

type FetchResult struct {
	Articles  []model.Article
	Succeeded int
	Failures  []SourceFailure
}

// FetchSource fetches and normalizes one source within the configured timeout.
func (s *FeedService) FetchSource(ctx context.Context, src model.Source) ([]model.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = s.client
	if s.userAgent != "" {
		parser.UserAgent = s.userAgent
	}

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Key(), err)
	}

	limit := s.maxItems
	if src.MaxItems > 0 {
		limit = src.MaxItems
	}

	fetchedAt := s.now()
	articles := make([]model.Article, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		if len(articles) >= limit {
			break
		}
		a, ok := s.normalize(src, feed, item, fetchedAt)
		if !ok {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// FetchAll fetches every source concurrently. A failing source yields no articles and a
// logged warning; it never fails the batch.
func (s *FeedService) FetchAll(ctx context.Context, sources []model.Source) FetchResult {
	perSource := make([][]model.Article, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			articles, err := s.FetchSource(ctx, src)
			metrics.FeedFetchDuration.WithLabelValues(src.Key()).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.FeedFetchTotal.WithLabelValues(src.Key(), "error").Inc()
				slog.Warn("source fetch failed", "source", src.Key(), "url", src.URL, "error", err)
				errs[i] = err
				return nil
			}
			metrics.FeedFetchTotal.WithLabelValues(src.Key(), "ok").Inc()
			slog.Debug("source fetched", "source", src.Key(), "articles", len(articles))
			perSource[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	var result FetchResult
	for i := range sources {
		if errs[i] != nil {
			result.Failures = append(result.Failures, SourceFailure{Source: sources[i].Key(), Error: errs[i].Error()})
			continue
		}
		result.Succeeded++
		result.Articles = append(result.Articles, perSource[i]...)
	}

	slog.Info("aggregation batch fetched",
		"sources", len(sources),
		"succeeded", result.Succeeded,
		"failed", len(result.Failures),
		"articles", len(result.Articles))
	return result
}

func (s *FeedService) normalize(src model.Source, feed *gofeed.Feed, item *gofeed.Item, fetchedAt time.Time) (model.Article, bool) {
	if item == nil {
		return model.Article{}, false
	}
	title := collapseSpace(html.UnescapeString(item.Title))
	if title == "" {
		return model.Article{}, false
	}

	rawDesc := item.Description
	if rawDesc == "" {
		rawDesc = item.Content
	}

	published := fetchedAt
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	lang := src.Language
	if lang == "" {
		lang = feed.Language
	}

	var author string
	if item.Author != nil {
		author = item.Author.Name
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		author = item.Authors[0].Name
	}

	sourceName := src.Name
	if sourceName == "" {
		sourceName = feed.Title
	}

	return model.Article{
		ID:          articleID(item.Link, title, sourceName),
		Title:       title,
		Description: truncate(s.stripHTML(rawDesc), maxDescriptionRunes),
		Content:     truncate(s.stripHTML(item.Content), maxContentRunes),
		URL:         item.Link,
		ImageURL:    imageURL(item),
		Author:      author,
		SourceID:    src.Key(),
		SourceName:  sourceName,
		Category:    strings.ToLower(src.Category),
		Language:    strings.ToLower(lang),
		PublishedAt: published.UTC(),
	}, true
}

func (s *FeedService) stripHTML(in string) string {
	if in == "" {
		return ""
	}
	return collapseSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

func imageURL(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	for _, raw := range []string{item.Content, item.Description} {
		if !strings.Contains(raw, "<img") {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err != nil {
			continue
		}
		if src, ok := doc.Find("img[src]").First().Attr("src"); ok && src != "" {
			return src
		}
	}
	return ""
}

// articleID derives a stable id from the normalized link, or title and source when the
// item has no link.
func articleID(link, title, source string) string {
	key := normalizeURL(link)
	if key == "" {
		key = strings.ToLower(collapseSpace(title)) + "|" + strings.ToLower(source)
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:8])
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	u.Scheme = "https"
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""
	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
