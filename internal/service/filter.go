package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"go-newspulse/internal/model"
)

// RelevanceFilter applies FilterCriteria to an article set and ranks the survivors.
type RelevanceFilter struct {
	now func() time.Time
}

func NewRelevanceFilter() *RelevanceFilter {
	return &RelevanceFilter{now: time.Now}
}

// Validate rejects criteria naming unknown categories, regions, sentiments, sort orders
// or malformed language codes.
func (f *RelevanceFilter) Validate(c model.FilterCriteria) error {
	for _, cat := range c.Categories {
		if _, ok := filterCategories[strings.ToLower(strings.TrimSpace(cat))]; !ok {
			return &model.ValidationError{Field: "categories", Value: cat, Valid: FilterCategories()}
		}
	}
	for _, r := range c.Regions {
		if !model.NewsRegion(strings.ToLower(strings.TrimSpace(r))).Valid() {
			valid := make([]string, 0, 8)
			for _, v := range model.AllRegions() {
				valid = append(valid, string(v))
			}
			return &model.ValidationError{Field: "regions", Value: r, Valid: valid}
		}
	}
	if c.Sentiment != "" && !validSentiment(c.Sentiment) {
		valid := make([]string, 0, 4)
		for _, s := range model.AllSentiments() {
			valid = append(valid, string(s))
		}
		return &model.ValidationError{Field: "sentiment", Value: string(c.Sentiment), Valid: valid}
	}
	switch c.SortBy {
	case "", model.SortByRelevance, model.SortByDate, model.SortByPopularity:
	default:
		return &model.ValidationError{
			Field: "sort_by",
			Value: string(c.SortBy),
			Valid: []string{string(model.SortByRelevance), string(model.SortByDate), string(model.SortByPopularity)},
		}
	}
	for _, l := range c.Languages {
		if _, err := language.Parse(strings.TrimSpace(l)); err != nil {
			return &model.ValidationError{Field: "languages", Value: l, Valid: SupportedLanguages()}
		}
	}
	if c.Limit < 0 {
		return &model.ValidationError{Field: "limit", Value: strconv.Itoa(c.Limit)}
	}
	if c.MinRelevanceScore < 0 {
		return &model.ValidationError{Field: "min_relevance_score", Value: strconv.Itoa(c.MinRelevanceScore)}
	}
	return nil
}

func validSentiment(s model.Sentiment) bool {
	for _, v := range model.AllSentiments() {
		if v == s {
			return true
		}
	}
	return false
}

// Filter runs the steps in a fixed order: category, keyword, language, source, age,
// sentiment, region, location re-rank, score, threshold, sort, limit.
// The input slice is not modified.
func (f *RelevanceFilter) Filter(articles []model.Article, c model.FilterCriteria) []model.Article {
	now := f.now()

	out := make([]model.Article, 0, len(articles))
	out = append(out, articles...)

	out = filterByCategory(out, c.Categories)
	out = filterByKeywords(out, c.Keywords, c.ExcludeKeywords)
	out = filterByLanguage(out, c.Languages)
	out = filterBySource(out, c.Sources, c.ExcludeSources)
	out = filterByAge(out, c.MaxAgeHours, now)
	out = filterBySentiment(out, c.Sentiment)
	out = filterByRegion(out, c.Regions)

	if c.UserLocation != nil {
		opts := LocationOptions{}
		if p := c.UserPreferences; p != nil {
			opts.PrioritizeLocal = p.PrioritizeLocal
			opts.MinRelevance = p.MinLocationRelevance
		}
		out = FilterByLocation(out, *c.UserLocation, opts)
	}

	s := newScorer(c, now)
	for i := range out {
		out[i].RelevanceScore = s.score(out[i])
	}

	if c.MinRelevanceScore > 0 {
		out = keep(out, func(a model.Article) bool { return a.RelevanceScore >= c.MinRelevanceScore })
	}

	sortArticles(out, c.SortBy, now)

	if c.Limit > 0 && len(out) > c.Limit {
		out = out[:c.Limit]
	}
	return out
}

func keep(articles []model.Article, pred func(model.Article) bool) []model.Article {
	out := articles[:0]
	for _, a := range articles {
		if pred(a) {
			out = append(out, a)
		}
	}
	return out
}

func filterByCategory(articles []model.Article, categories []string) []model.Article {
	if len(categories) == 0 {
		return articles
	}
	keys := make([]string, 0, len(categories))
	for _, c := range categories {
		if k := strings.ToLower(strings.TrimSpace(c)); k != "" {
			keys = append(keys, k)
		}
	}
	return keep(articles, func(a model.Article) bool {
		text := strings.ToLower(a.Text())
		for _, key := range keys {
			if strings.EqualFold(a.Category, key) {
				return true
			}
			if set, ok := filterCategories[key]; ok && set.any(text) {
				return true
			}
		}
		return false
	})
}

func filterByKeywords(articles []model.Article, include, exclude []string) []model.Article {
	inc := newKeywordSet(include...)
	exc := newKeywordSet(exclude...)
	if len(inc) == 0 && len(exc) == 0 {
		return articles
	}
	return keep(articles, func(a model.Article) bool {
		text := strings.ToLower(a.Text())
		if len(inc) > 0 && !inc.any(text) {
			return false
		}
		return !exc.any(text)
	})
}

func languageBase(tag string) string {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(tag)), "-")
	base, _, _ = strings.Cut(base, "_")
	return base
}

func filterByLanguage(articles []model.Article, languages []string) []model.Article {
	if len(languages) == 0 {
		return articles
	}
	allowed := make(map[string]bool, len(languages))
	for _, l := range languages {
		allowed[languageBase(l)] = true
	}
	return keep(articles, func(a model.Article) bool {
		return a.Language == "" || allowed[languageBase(a.Language)]
	})
}

func filterBySource(articles []model.Article, include, exclude []string) []model.Article {
	if len(include) == 0 && len(exclude) == 0 {
		return articles
	}
	matches := func(a model.Article, names []string) bool {
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			if containsFold(a.SourceName, n) || containsFold(a.SourceID, n) {
				return true
			}
		}
		return false
	}
	return keep(articles, func(a model.Article) bool {
		if matches(a, exclude) {
			return false
		}
		return len(include) == 0 || matches(a, include)
	})
}

func filterByAge(articles []model.Article, maxAgeHours float64, now time.Time) []model.Article {
	if maxAgeHours <= 0 {
		return articles
	}
	cutoff := now.Add(-time.Duration(maxAgeHours * float64(time.Hour)))
	return keep(articles, func(a model.Article) bool {
		return !a.PublishedAt.Before(cutoff)
	})
}

// articleSentiment falls back to the keyword vote for articles that were never enriched.
func articleSentiment(a model.Article) model.Sentiment {
	if a.Sentiment != "" {
		return a.Sentiment
	}
	return SentimentOf(a.Title, a.Description)
}

func filterBySentiment(articles []model.Article, target model.Sentiment) []model.Article {
	if target == "" {
		return articles
	}
	return keep(articles, func(a model.Article) bool {
		return articleSentiment(a) == target
	})
}

func filterByRegion(articles []model.Article, regions []string) []model.Article {
	if len(regions) == 0 {
		return articles
	}
	var sets []keywordSet
	for _, r := range regions {
		region := model.NewsRegion(strings.ToLower(strings.TrimSpace(r)))
		if p, ok := regionProfiles[region]; ok {
			sets = append(sets, newWordSet(p.keywords...))
		}
	}
	return keep(articles, func(a model.Article) bool {
		text := strings.ToLower(a.Text())
		for _, set := range sets {
			if set.any(text) {
				return true
			}
		}
		return false
	})
}

func sortArticles(articles []model.Article, by model.SortBy, now time.Time) {
	switch by {
	case model.SortByDate:
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		})
	case model.SortByPopularity:
		sort.SliceStable(articles, func(i, j int) bool {
			return PopularityScore(articles[i], now) > PopularityScore(articles[j], now)
		})
	default:
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].RelevanceScore > articles[j].RelevanceScore
		})
	}
}

// Paginate slices a ranked result. Pages are 1-based; perPage defaults to 20 and is
// capped at 100.
func Paginate(articles []model.Article, page, perPage int) model.NewsPage {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}
	total := len(articles)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	items := make([]model.Article, end-start)
	copy(items, articles[start:end])

	return model.NewsPage{
		Articles:   items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}
