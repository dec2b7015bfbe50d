package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"go-newspulse/internal/metrics"
	"go-newspulse/internal/model"
)

// Enricher attaches category, sentiment and trending score to raw articles. Classifiers
// are tried in order; the keyword classifier is always the last resort.
type Enricher struct {
	classifiers []Classifier
	fallback    *KeywordClassifier
	concurrency int
	now         func() time.Time
}

func NewEnricher(classifiers ...Classifier) *Enricher {
	var usable []Classifier
	for _, c := range classifiers {
		if c != nil {
			usable = append(usable, c)
		}
	}
	return &Enricher{
		classifiers: usable,
		fallback:    NewKeywordClassifier(),
		concurrency: 4,
		now:         time.Now,
	}
}

// Enrich never fails: any classifier error falls back to the keyword path.
func (e *Enricher) Enrich(ctx context.Context, a model.Article) model.Article {
	cls, by := e.classify(ctx, a)
	a.AICategory = cls.Category
	a.Sentiment = cls.Sentiment
	if cls.Summary != "" {
		a.Summary = cls.Summary
	}
	a.EnrichedBy = by
	a.TrendingScore = TrendingScore(a.Title, a.PublishedAt, e.now())
	return a
}

func (e *Enricher) classify(ctx context.Context, a model.Article) (Classification, string) {
	for _, c := range e.classifiers {
		if !c.Available() {
			continue
		}
		cls, err := c.Classify(ctx, a)
		if err != nil {
			metrics.EnrichTotal.WithLabelValues(c.Name(), "error").Inc()
			slog.Debug("classifier failed, falling back", "classifier", c.Name(), "article", a.ID, "error", err)
			continue
		}
		metrics.EnrichTotal.WithLabelValues(c.Name(), "ok").Inc()
		return cls, c.Name()
	}
	cls, _ := e.fallback.Classify(ctx, a)
	metrics.EnrichTotal.WithLabelValues(e.fallback.Name(), "ok").Inc()
	return cls, e.fallback.Name()
}

// EnrichAll enriches a batch with bounded concurrency, preserving order.
func (e *Enricher) EnrichAll(ctx context.Context, articles []model.Article) []model.Article {
	out := make([]model.Article, len(articles))
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, a := range articles {
		g.Go(func() error {
			out[i] = e.Enrich(ctx, a)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
