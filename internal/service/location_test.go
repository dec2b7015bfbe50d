package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-newspulse/internal/model"
)

func berlinLocation() model.Location {
	return buildLocation(model.RegionEurope, "DE", "Germany", "Berlin", "Europe/Berlin", "ip-api")
}

func TestLocationRelevance(t *testing.T) {
	loc := berlinLocation()

	tests := []struct {
		title string
		want  int
	}{
		{"Berlin startup raises funds", 60},    // city + keyword "berlin"
		{"EU leaders meet in Brussels", 20},    // keywords "eu" + "brussels"
		{"Germany weighs new energy plan", 40}, // country
		{"Tokyo markets rally", 0},
		{"Museum reopens after renovation", 0}, // "eu" inside a word does not count
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, LocationRelevance(model.Article{Title: tt.title}, loc))
		})
	}
}

func TestLocationRelevance_GlobalSkipsRegionTerms(t *testing.T) {
	loc := DefaultLocation()
	a := model.Article{Title: "Global markets react to world news"}
	assert.Zero(t, LocationRelevance(a, loc))
}

func TestLocationRelevance_FallsBackToCountryCode(t *testing.T) {
	loc := model.Location{CountryCode: "JP", NewsRegion: model.RegionAsia}
	assert.Equal(t, 50, LocationRelevance(model.Article{Title: "Japan unveils budget"}, loc))
}

func TestFilterByLocation(t *testing.T) {
	now := testNow
	articles := []model.Article{
		{ID: "tokyo", Title: "Tokyo markets rally", PublishedAt: now.Add(-1 * time.Hour)},
		{ID: "eu-old", Title: "EU leaders meet in Brussels", PublishedAt: now.Add(-6 * time.Hour)},
		{ID: "berlin", Title: "Berlin startup raises funds", PublishedAt: now.Add(-5 * time.Hour)},
		{ID: "eu-new", Title: "Brussels and EU agree budget", PublishedAt: now.Add(-2 * time.Hour)},
	}
	input := append([]model.Article(nil), articles...)

	t.Run("prioritize local", func(t *testing.T) {
		got := FilterByLocation(articles, berlinLocation(), LocationOptions{PrioritizeLocal: true})
		require.Len(t, got, 4)
		assert.Equal(t, []string{"berlin", "eu-new", "eu-old", "tokyo"}, articleIDs(got))
		assert.Equal(t, 60, got[0].LocationRelevance)
		assert.Equal(t, 20, got[1].LocationRelevance)
		assert.Equal(t, 0, got[3].LocationRelevance)
	})

	t.Run("keeps order without prioritizing", func(t *testing.T) {
		got := FilterByLocation(articles, berlinLocation(), LocationOptions{})
		assert.Equal(t, []string{"tokyo", "eu-old", "berlin", "eu-new"}, articleIDs(got))
	})

	t.Run("min relevance", func(t *testing.T) {
		got := FilterByLocation(articles, berlinLocation(), LocationOptions{PrioritizeLocal: true, MinRelevance: 30})
		assert.Equal(t, []string{"berlin"}, articleIDs(got))
	})

	assert.Equal(t, input, articles, "input must not be mutated")
}

func articleIDs(articles []model.Article) []string {
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	return ids
}

func TestLocationRelevance_WholeWordsOnly(t *testing.T) {
	oman := buildLocation(model.RegionMiddleEast, "OM", "Oman", "", "", "ip-api")
	india := buildLocation(model.RegionAsia, "IN", "India", "", "", "ip-api")
	paris := buildLocation(model.RegionEurope, "FR", "France", "Paris", "", "ip-api")

	tests := []struct {
		name  string
		title string
		loc   model.Location
		want  int
	}{
		{"country inside word", "Woman wins award for painting", oman, 0},
		{"country mentioned", "Oman signs trade deal", oman, 40},
		{"country prefix of word", "Indiana Jones sequel announced", india, 0},
		{"country and keyword", "India wins the series", india, 50},
		{"city inside word", "Price comparison sites grow", paris, 0},
		{"city with punctuation", "Strikes in Paris, again", paris, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocationRelevance(model.Article{Title: tt.title}, tt.loc))
		})
	}
}
