package model

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentUrgent   Sentiment = "urgent"
)

// AllSentiments lists sentiment values in canonical order.
func AllSentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral, SentimentUrgent}
}

type AICategory string

const (
	CategoryTechnology     AICategory = "Technology"
	CategoryBusiness       AICategory = "Business"
	CategoryPolitics       AICategory = "Politics"
	CategoryHealth         AICategory = "Health"
	CategorySports         AICategory = "Sports"
	CategoryEntertainment  AICategory = "Entertainment"
	CategoryScience        AICategory = "Science"
	CategoryCryptocurrency AICategory = "Cryptocurrency"
	CategoryEnvironment    AICategory = "Environment"
	CategoryGeneral        AICategory = "General"
)

// AllAICategories returns the enrichment taxonomy.
func AllAICategories() []AICategory {
	return []AICategory{
		CategoryTechnology, CategoryBusiness, CategoryPolitics, CategoryHealth,
		CategorySports, CategoryEntertainment, CategoryScience,
		CategoryCryptocurrency, CategoryEnvironment, CategoryGeneral,
	}
}

// ParseAICategory matches a taxonomy name case-insensitively.
func ParseAICategory(s string) (AICategory, bool) {
	for _, c := range AllAICategories() {
		if equalFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Article is the normalized shape every feed item is converted into.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Author      string    `json:"author,omitempty"`
	SourceID    string    `json:"source_id"`
	SourceName  string    `json:"source_name"`
	Category    string    `json:"category"`
	Language    string    `json:"language,omitempty"`
	PublishedAt time.Time `json:"published_at"`

	// Enrichment
	AICategory    AICategory `json:"ai_category"`
	Sentiment     Sentiment  `json:"sentiment"`
	TrendingScore int        `json:"trending_score"`
	Summary       string     `json:"summary,omitempty"`
	EnrichedBy    string     `json:"enriched_by,omitempty"`

	// Request scoped, never cached
	RelevanceScore    int `json:"relevance_score,omitempty"`
	LocationRelevance int `json:"location_relevance,omitempty"`

	TranslatedTitle       string `json:"translated_title,omitempty"`
	TranslatedDescription string `json:"translated_description,omitempty"`
	OriginalLanguage      string `json:"original_language,omitempty"`
	TargetLanguage        string `json:"target_language,omitempty"`
}

// Text is the haystack keyword matching runs against.
func (a Article) Text() string {
	return a.Title + " " + a.Description + " " + a.Content
}

// HoursOld returns the article age in hours; future timestamps count as zero.
func (a Article) HoursOld(now time.Time) float64 {
	h := now.Sub(a.PublishedAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		x, y := a[i], b[i]
		if 'A' <= x && x <= 'Z' {
			x += 'a' - 'A'
		}
		if 'A' <= y && y <= 'Z' {
			y += 'a' - 'A'
		}
		if x != y {
			return false
		}
	}
	return true
}
