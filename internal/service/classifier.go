package service

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"go-newspulse/internal/model"
)

// Classification is what a Classifier derives from an article's text.
type Classification struct {
	Category  model.AICategory `json:"category"`
	Sentiment model.Sentiment  `json:"sentiment"`
	Summary   string           `json:"summary,omitempty"`
}

// Classifier assigns a taxonomy category and sentiment to an article.
type Classifier interface {
	Name() string
	Available() bool
	Classify(ctx context.Context, a model.Article) (Classification, error)
}

type categoryRule struct {
	category model.AICategory
	keywords keywordSet
}

// First match wins, so more specific categories come first.
var categoryRules = []categoryRule{
	{model.CategoryCryptocurrency, newKeywordSet(
		"bitcoin", "ethereum", "crypto", "cryptocurrency", "blockchain", "nft", "defi",
		"stablecoin", "binance", "coinbase", "btc", "web3", "altcoin", "token sale",
	)},
	{model.CategoryTechnology, newKeywordSet(
		"technology", "tech", "ai", "artificial intelligence", "machine learning", "software",
		"hardware", "smartphone", "iphone", "android", "microsoft", "startup", "app", "cyber",
		"robot", "semiconductor", "gadget", "internet", "computer", "openai", "chatgpt",
		"algorithm", "data breach", "silicon valley",
	)},
	{model.CategoryBusiness, newKeywordSet(
		"business", "market", "stock", "economy", "economic", "company", "earnings", "revenue",
		"profit", "investor", "shares", "finance", "bank", "inflation", "ceo", "merger",
		"acquisition", "ipo", "wall street", "gdp", "trade deal",
	)},
	{model.CategoryPolitics, newKeywordSet(
		"election", "president", "government", "senate", "congress", "parliament", "minister",
		"vote", "policy", "political", "campaign", "law", "legislation", "democrat",
		"republican", "diplomat", "sanctions",
	)},
	{model.CategoryHealth, newKeywordSet(
		"health", "medical", "hospital", "disease", "vaccine", "virus", "covid", "cancer",
		"doctor", "patient", "drug", "mental health", "treatment", "pandemic", "outbreak", "fda",
	)},
	{model.CategoryScience, newKeywordSet(
		"science", "scientist", "research", "study", "space", "nasa", "planet", "physics",
		"biology", "discovery", "experiment", "astronomy", "telescope", "species",
	)},
	{model.CategoryEnvironment, newKeywordSet(
		"climate", "environment", "emissions", "carbon", "renewable", "solar", "wildfire",
		"pollution", "sustainability", "global warming", "biodiversity", "deforestation",
		"flood", "drought",
	)},
	{model.CategorySports, newKeywordSet(
		"sport", "football", "soccer", "basketball", "baseball", "tennis", "golf", "cricket",
		"olympic", "championship", "tournament", "league", "match", "player", "coach", "team",
		"nba", "nfl", "fifa", "world cup",
	)},
	{model.CategoryEntertainment, newKeywordSet(
		"movie", "film", "music", "celebrity", "hollywood", "actor", "actress", "album",
		"concert", "tv show", "netflix", "oscar", "grammy", "box office", "festival",
	)},
}

var (
	positiveKeywords = newKeywordSet(
		"breakthrough", "success", "win", "wins", "won", "victory", "growth", "record high",
		"improve", "celebrate", "surge", "boost", "gains", "soar", "hope", "innovative",
		"achievement", "award", "recover", "champion", "milestone", "thrive",
	)
	negativeKeywords = newKeywordSet(
		"crash", "crisis", "decline", "loss", "death", "dead", "killed", "war", "attack",
		"fear", "concern", "plunge", "scandal", "fraud", "layoffs", "disaster", "recession",
		"collapse", "conflict", "violence", "threat", "failure", "lawsuit", "slump",
	)
	urgentKeywords = newKeywordSet("breaking", "urgent", "emergency", "alert", "evacuat", "just in")
)

var trendingBonuses = []struct {
	re     *regexp.Regexp
	points int
}{
	{regexp.MustCompile(`\bbreaking\b`), 20},
	{regexp.MustCompile(`\burgent\b`), 15},
	{regexp.MustCompile(`\blive\b`), 10},
}

// KeywordClassifier is the deterministic, always available classifier.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

func (*KeywordClassifier) Name() string    { return "keyword" }
func (*KeywordClassifier) Available() bool { return true }

func (*KeywordClassifier) Classify(_ context.Context, a model.Article) (Classification, error) {
	return Classification{
		Category:  CategorizeText(a.Title + " " + a.Description),
		Sentiment: SentimentOf(a.Title, a.Description),
	}, nil
}

// CategorizeText returns the first taxonomy category whose keywords appear in text.
func CategorizeText(text string) model.AICategory {
	text = strings.ToLower(text)
	for _, rule := range categoryRules {
		if rule.keywords.any(text) {
			return rule.category
		}
	}
	return model.CategoryGeneral
}

// SentimentOf votes positive against negative keyword hits. Urgent markers in the title
// take precedence; ties and zero hits are neutral.
func SentimentOf(title, description string) model.Sentiment {
	lowerTitle := strings.ToLower(title)
	if urgentKeywords.any(lowerTitle) {
		return model.SentimentUrgent
	}
	text := lowerTitle + " " + strings.ToLower(description)
	pos := positiveKeywords.count(text)
	neg := negativeKeywords.count(text)
	switch {
	case pos > neg:
		return model.SentimentPositive
	case neg > pos:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// TrendingScore is max(0, 100-2*hoursOld) plus title keyword bonuses, capped to 0..100.
func TrendingScore(title string, publishedAt, now time.Time) int {
	hours := now.Sub(publishedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	recency := math.Max(0, 100-2*hours)

	lower := strings.ToLower(title)
	bonus := 0
	for _, b := range trendingBonuses {
		if b.re.MatchString(lower) {
			bonus += b.points
		}
	}

	score := int(math.Round(recency)) + bonus
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
