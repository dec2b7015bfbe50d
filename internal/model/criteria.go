package model

type SortBy string

const (
	SortByRelevance  SortBy = "relevance"
	SortByDate       SortBy = "date"
	SortByPopularity SortBy = "popularity"
)

// UserPreferences comes from the preferences store owned by the caller.
type UserPreferences struct {
	PrioritizeLocal      bool     `json:"prioritize_local" form:"prioritize_local"`
	MinLocationRelevance int      `json:"min_location_relevance" form:"min_location_relevance" binding:"gte=0"`
	Categories           []string `json:"categories,omitempty" form:"-"`
	Keywords             []string `json:"keywords,omitempty" form:"-"`
}

// FilterCriteria is the option set accepted by the relevance filter.
// Zero values disable the corresponding step.
type FilterCriteria struct {
	Categories        []string         `json:"categories,omitempty" form:"categories"`
	Keywords          []string         `json:"keywords,omitempty" form:"keywords"`
	ExcludeKeywords   []string         `json:"exclude_keywords,omitempty" form:"exclude_keywords"`
	Languages         []string         `json:"languages,omitempty" form:"languages"`
	Sources           []string         `json:"sources,omitempty" form:"sources"`
	ExcludeSources    []string         `json:"exclude_sources,omitempty" form:"exclude_sources"`
	MaxAgeHours       float64          `json:"max_age_hours,omitempty" form:"max_age_hours" binding:"gte=0"`
	Sentiment         Sentiment        `json:"sentiment,omitempty" form:"sentiment"`
	Regions           []string         `json:"regions,omitempty" form:"regions"`
	UserLocation      *Location        `json:"user_location,omitempty" form:"-"`
	UserPreferences   *UserPreferences `json:"user_preferences,omitempty" form:"-"`
	MinRelevanceScore int              `json:"min_relevance_score,omitempty" form:"min_relevance_score"`
	SortBy            SortBy           `json:"sort_by,omitempty" form:"sort_by"`
	Limit             int              `json:"limit,omitempty" form:"limit" binding:"gte=0"`
}

// NewsRequest is one article collection request.
type NewsRequest struct {
	Criteria       FilterCriteria `json:"criteria"`
	Page           int            `json:"page" form:"page"`
	PerPage        int            `json:"per_page" form:"per_page"`
	IP             string         `json:"-" form:"-"`
	Timezone       string         `json:"timezone,omitempty" form:"tz"`
	Personalize    bool           `json:"personalize" form:"personalize"`
	TargetLanguage string         `json:"lang,omitempty" form:"lang"`
}

// NewsPage is the paginated response.
type NewsPage struct {
	Articles   []Article `json:"articles"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
	Location   *Location `json:"location,omitempty"`
}
