package service

import (
	"errors"
	"sort"
	"strings"

	"go-newspulse/internal/model"
)

var errNoCountry = errors.New("provider returned no country")

const (
	cityMentionPoints    = 50
	countryMentionPoints = 40
	regionMentionPoints  = 25
	regionKeywordPoints  = 10
)

type LocationOptions struct {
	PrioritizeLocal bool
	// MinRelevance drops articles scoring below it; zero keeps everything.
	MinRelevance int
}

type locationMatcher struct {
	city, country, region, keywords keywordSet
}

func newLocationMatcher(loc model.Location) locationMatcher {
	country := loc.Country
	if strings.TrimSpace(country) == "" && loc.CountryCode != "" {
		country = countryName(loc.CountryCode)
	}
	m := locationMatcher{
		city:    newWordSet(loc.City),
		country: newWordSet(country),
	}
	if loc.NewsRegion != model.RegionGlobal && loc.NewsRegion.Valid() {
		m.region = newWordSet(RegionDisplayName(loc.NewsRegion))
		kw := loc.Keywords
		if len(kw) == 0 {
			kw = profileFor(loc.NewsRegion).keywords
		}
		m.keywords = newWordSet(kw...)
	}
	return m
}

func (m locationMatcher) score(a model.Article) int {
	text := strings.ToLower(a.Text())
	score := 0
	if m.city.any(text) {
		score += cityMentionPoints
	}
	if m.country.any(text) {
		score += countryMentionPoints
	}
	if m.region.any(text) {
		score += regionMentionPoints
	}
	score += regionKeywordPoints * m.keywords.count(text)
	return score
}

// LocationRelevance scores how strongly an article mentions the location.
func LocationRelevance(a model.Article, loc model.Location) int {
	return newLocationMatcher(loc).score(a)
}

// FilterByLocation sets LocationRelevance on copies of the articles. It re-ranks when
// PrioritizeLocal is set and only drops articles when MinRelevance is positive.
func FilterByLocation(articles []model.Article, loc model.Location, opts LocationOptions) []model.Article {
	m := newLocationMatcher(loc)
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		a.LocationRelevance = m.score(a)
		if opts.MinRelevance > 0 && a.LocationRelevance < opts.MinRelevance {
			continue
		}
		out = append(out, a)
	}
	if opts.PrioritizeLocal {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].LocationRelevance != out[j].LocationRelevance {
				return out[i].LocationRelevance > out[j].LocationRelevance
			}
			return out[i].PublishedAt.After(out[j].PublishedAt)
		})
	}
	return out
}
