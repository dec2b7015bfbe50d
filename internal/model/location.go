package model

type NewsRegion string

const (
	RegionNorthAmerica NewsRegion = "north-america"
	RegionEurope       NewsRegion = "europe"
	RegionAsia         NewsRegion = "asia"
	RegionMiddleEast   NewsRegion = "middle-east"
	RegionAfrica       NewsRegion = "africa"
	RegionSouthAmerica NewsRegion = "south-america"
	RegionOceania      NewsRegion = "oceania"
	RegionGlobal       NewsRegion = "global"
)

// AllRegions returns the seven regions followed by global.
func AllRegions() []NewsRegion {
	return []NewsRegion{
		RegionNorthAmerica, RegionEurope, RegionAsia, RegionMiddleEast,
		RegionAfrica, RegionSouthAmerica, RegionOceania, RegionGlobal,
	}
}

// Valid reports whether r is one of AllRegions.
func (r NewsRegion) Valid() bool {
	for _, v := range AllRegions() {
		if v == r {
			return true
		}
	}
	return false
}

// Location is the personalization context resolved for a caller.
type Location struct {
	CountryCode         string     `json:"country_code,omitempty"`
	Country             string     `json:"country,omitempty"`
	City                string     `json:"city,omitempty"`
	Timezone            string     `json:"timezone,omitempty"`
	NewsRegion          NewsRegion `json:"news_region"`
	PreferredCategories []string   `json:"preferred_categories"`
	Keywords            []string   `json:"keywords,omitempty"`
	PreferredSources    []string   `json:"preferred_sources,omitempty"`
	ResolvedBy          string     `json:"resolved_by"`
}

// GeoResult is the raw answer of an IP lookup provider.
type GeoResult struct {
	CountryCode string
	Country     string
	City        string
	Timezone    string
}
