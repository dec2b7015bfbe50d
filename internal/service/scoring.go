package service

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go-newspulse/internal/model"
)

const (
	categoryHitPoints  = 10
	keywordHitPoints   = 20
	titleHitPoints     = 15
	qualitySourceBonus = 25
	breakingBonus      = 50
	breakingWindow     = 2 * time.Hour
)

// Filter category keys and their keyword sets.
var filterCategories = map[string]keywordSet{
	"ai-technology": newKeywordSet(
		"ai", "artificial intelligence", "machine learning", "deep learning", "neural network",
		"chatgpt", "openai", "llm", "generative ai", "gpt", "deepmind", "computer vision", "robotics",
	),
	"technology": newKeywordSet(
		"technology", "tech", "software", "hardware", "smartphone", "computer", "internet",
		"startup", "app", "cyber", "gadget", "semiconductor", "cloud computing", "developer", "ai",
	),
	"cryptocurrency": newKeywordSet(
		"bitcoin", "ethereum", "crypto", "blockchain", "nft", "defi", "stablecoin", "btc", "web3",
	),
	"business": newKeywordSet(
		"business", "market", "stock", "economy", "company", "earnings", "revenue", "investor",
		"finance", "bank", "inflation", "ceo", "merger", "ipo", "wall street",
	),
	"politics": newKeywordSet(
		"election", "president", "government", "senate", "congress", "parliament", "minister",
		"vote", "policy", "political", "campaign", "legislation",
	),
	"health": newKeywordSet(
		"health", "medical", "hospital", "disease", "vaccine", "virus", "cancer", "doctor",
		"patient", "pandemic", "mental health", "treatment",
	),
	"science": newKeywordSet(
		"science", "scientist", "research", "study", "space", "nasa", "physics", "biology",
		"discovery", "astronomy", "telescope",
	),
	"environment": newKeywordSet(
		"climate", "environment", "emissions", "carbon", "renewable", "wildfire", "pollution",
		"sustainability", "global warming", "biodiversity",
	),
	"sports": newKeywordSet(
		"sport", "football", "soccer", "basketball", "baseball", "tennis", "golf", "cricket",
		"olympic", "championship", "tournament", "league", "team", "coach", "nba", "nfl",
	),
	"entertainment": newKeywordSet(
		"movie", "film", "music", "celebrity", "hollywood", "actor", "album", "concert",
		"netflix", "oscar", "box office", "tv show",
	),
	"general": newKeywordSet("news", "report", "update"),
}

var categoryBoosts = map[string]float64{
	"ai-technology":  2.0,
	"cryptocurrency": 1.6,
	"technology":     1.5,
	"business":       1.3,
	"science":        1.2,
	"health":         1.2,
	"politics":       1.1,
	"environment":    1.1,
	"entertainment":  1.0,
	"sports":         1.0,
	"general":        1.0,
}

var qualitySources = newWordSet(
	"reuters", "associated press", "ap news", "bbc", "the guardian", "new york times",
	"washington post", "wall street journal", "financial times", "bloomberg", "the economist",
	"npr", "techcrunch", "the verge", "wired", "ars technica", "nature", "al jazeera",
)

var breakingTitleKeywords = newKeywordSet("breaking", "just in", "urgent", "developing story", "alert")

// FilterCategories lists the recognized category keys in sorted order.
func FilterCategories() []string {
	keys := make([]string, 0, len(filterCategories))
	for k := range filterCategories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func categoryBoost(key string) float64 {
	if b, ok := categoryBoosts[key]; ok {
		return b
	}
	return 1.0
}

// IsQualitySource reports whether the article's source is on the high-quality allowlist.
func IsQualitySource(a model.Article) bool {
	return qualitySources.any(strings.ToLower(a.SourceName + " " + a.SourceID))
}

// IsBreaking reports a breaking-style title or publication within the last two hours.
func IsBreaking(a model.Article, now time.Time) bool {
	if breakingTitleKeywords.any(strings.ToLower(a.Title)) {
		return true
	}
	return now.Sub(a.PublishedAt) < breakingWindow
}

// scorer holds the keyword sets one Filter call scores against.
type scorer struct {
	now        time.Time
	categories []string
	keywords   keywordSet
	titleWords keywordSet
}

func newScorer(c model.FilterCriteria, now time.Time) scorer {
	s := scorer{now: now}
	cats := append([]string(nil), c.Categories...)
	words := append([]string(nil), c.Keywords...)
	if p := c.UserPreferences; p != nil {
		cats = append(cats, p.Categories...)
		words = append(words, p.Keywords...)
	}

	var title []string
	seen := make(map[string]bool)
	for _, cat := range cats {
		key := strings.ToLower(strings.TrimSpace(cat))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		s.categories = append(s.categories, key)
		if set, ok := filterCategories[key]; ok {
			title = append(title, set.words()...)
		}
	}
	s.keywords = newKeywordSet(words...)
	s.titleWords = newKeywordSet(append(title, s.keywords.words()...)...)
	return s
}

// score is the composite relevance: recency, category and keyword hits, source quality,
// location relevance, title hits and the breaking bonus.
func (s scorer) score(a model.Article) int {
	text := strings.ToLower(a.Text())

	total := math.Max(0, 100-a.HoursOld(s.now))
	for _, key := range s.categories {
		hits := filterCategories[key].count(text)
		total += float64(categoryHitPoints*hits) * categoryBoost(key)
	}
	total += float64(keywordHitPoints * s.keywords.count(text))
	if IsQualitySource(a) {
		total += qualitySourceBonus
	}
	total += float64(a.LocationRelevance)
	total += float64(titleHitPoints * s.titleWords.count(strings.ToLower(a.Title)))
	if IsBreaking(a, s.now) {
		total += breakingBonus
	}
	return int(math.Round(total))
}

// PopularityScore is the simpler rank used by sort_by=popularity.
func PopularityScore(a model.Article, now time.Time) int {
	score := 0
	if IsQualitySource(a) {
		score += 30
	}
	if IsBreaking(a, now) {
		score += 20
	}
	if n := utf8.RuneCountInString(a.Title); n >= 10 && n <= 100 {
		score += 10
	}
	return score
}
