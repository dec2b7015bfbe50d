package service

import (
	"strings"

	"go-newspulse/internal/model"
)

type countryInfo struct {
	name   string
	region model.NewsRegion
}

var countries = map[string]countryInfo{
	// North America
	"US": {"United States", model.RegionNorthAmerica},
	"CA": {"Canada", model.RegionNorthAmerica},
	"MX": {"Mexico", model.RegionNorthAmerica},
	"CU": {"Cuba", model.RegionNorthAmerica},
	"JM": {"Jamaica", model.RegionNorthAmerica},
	"GT": {"Guatemala", model.RegionNorthAmerica},
	"PA": {"Panama", model.RegionNorthAmerica},
	"CR": {"Costa Rica", model.RegionNorthAmerica},
	"DO": {"Dominican Republic", model.RegionNorthAmerica},
	// Europe
	"GB": {"United Kingdom", model.RegionEurope},
	"IE": {"Ireland", model.RegionEurope},
	"FR": {"France", model.RegionEurope},
	"DE": {"Germany", model.RegionEurope},
	"ES": {"Spain", model.RegionEurope},
	"PT": {"Portugal", model.RegionEurope},
	"IT": {"Italy", model.RegionEurope},
	"NL": {"Netherlands", model.RegionEurope},
	"BE": {"Belgium", model.RegionEurope},
	"CH": {"Switzerland", model.RegionEurope},
	"AT": {"Austria", model.RegionEurope},
	"SE": {"Sweden", model.RegionEurope},
	"NO": {"Norway", model.RegionEurope},
	"DK": {"Denmark", model.RegionEurope},
	"FI": {"Finland", model.RegionEurope},
	"PL": {"Poland", model.RegionEurope},
	"CZ": {"Czech Republic", model.RegionEurope},
	"HU": {"Hungary", model.RegionEurope},
	"RO": {"Romania", model.RegionEurope},
	"GR": {"Greece", model.RegionEurope},
	"UA": {"Ukraine", model.RegionEurope},
	"RU": {"Russia", model.RegionEurope},
	// Asia
	"CN": {"China", model.RegionAsia},
	"JP": {"Japan", model.RegionAsia},
	"KR": {"South Korea", model.RegionAsia},
	"IN": {"India", model.RegionAsia},
	"PK": {"Pakistan", model.RegionAsia},
	"BD": {"Bangladesh", model.RegionAsia},
	"ID": {"Indonesia", model.RegionAsia},
	"MY": {"Malaysia", model.RegionAsia},
	"SG": {"Singapore", model.RegionAsia},
	"TH": {"Thailand", model.RegionAsia},
	"VN": {"Vietnam", model.RegionAsia},
	"PH": {"Philippines", model.RegionAsia},
	"TW": {"Taiwan", model.RegionAsia},
	"HK": {"Hong Kong", model.RegionAsia},
	// Middle East
	"AE": {"United Arab Emirates", model.RegionMiddleEast},
	"SA": {"Saudi Arabia", model.RegionMiddleEast},
	"IL": {"Israel", model.RegionMiddleEast},
	"TR": {"Turkey", model.RegionMiddleEast},
	"IR": {"Iran", model.RegionMiddleEast},
	"IQ": {"Iraq", model.RegionMiddleEast},
	"QA": {"Qatar", model.RegionMiddleEast},
	"KW": {"Kuwait", model.RegionMiddleEast},
	"JO": {"Jordan", model.RegionMiddleEast},
	"LB": {"Lebanon", model.RegionMiddleEast},
	"OM": {"Oman", model.RegionMiddleEast},
	// Africa
	"EG": {"Egypt", model.RegionAfrica},
	"NG": {"Nigeria", model.RegionAfrica},
	"ZA": {"South Africa", model.RegionAfrica},
	"KE": {"Kenya", model.RegionAfrica},
	"ET": {"Ethiopia", model.RegionAfrica},
	"GH": {"Ghana", model.RegionAfrica},
	"MA": {"Morocco", model.RegionAfrica},
	"DZ": {"Algeria", model.RegionAfrica},
	"TN": {"Tunisia", model.RegionAfrica},
	"TZ": {"Tanzania", model.RegionAfrica},
	"UG": {"Uganda", model.RegionAfrica},
	"SN": {"Senegal", model.RegionAfrica},
	// South America
	"BR": {"Brazil", model.RegionSouthAmerica},
	"AR": {"Argentina", model.RegionSouthAmerica},
	"CL": {"Chile", model.RegionSouthAmerica},
	"CO": {"Colombia", model.RegionSouthAmerica},
	"PE": {"Peru", model.RegionSouthAmerica},
	"VE": {"Venezuela", model.RegionSouthAmerica},
	"EC": {"Ecuador", model.RegionSouthAmerica},
	"UY": {"Uruguay", model.RegionSouthAmerica},
	"PY": {"Paraguay", model.RegionSouthAmerica},
	"BO": {"Bolivia", model.RegionSouthAmerica},
	// Oceania
	"AU": {"Australia", model.RegionOceania},
	"NZ": {"New Zealand", model.RegionOceania},
	"FJ": {"Fiji", model.RegionOceania},
	"PG": {"Papua New Guinea", model.RegionOceania},
}

type regionProfile struct {
	displayName string
	categories  []string
	keywords    []string
	sources     []string
}

var regionProfiles = map[model.NewsRegion]regionProfile{
	model.RegionNorthAmerica: {
		displayName: "North America",
		categories:  []string{"technology", "business", "politics"},
		keywords:    []string{"america", "united states", "usa", "canada", "mexico", "washington", "wall street", "silicon valley", "congress"},
		sources:     []string{"techcrunch", "the verge", "wired", "cnn"},
	},
	model.RegionEurope: {
		displayName: "Europe",
		categories:  []string{"politics", "business", "environment"},
		keywords:    []string{"europe", "european", "eu", "brexit", "euro", "brussels", "london", "berlin", "paris"},
		sources:     []string{"bbc", "the guardian", "reuters", "dw"},
	},
	model.RegionAsia: {
		displayName: "Asia",
		categories:  []string{"technology", "business"},
		keywords:    []string{"asia", "asian", "china", "japan", "india", "korea", "beijing", "tokyo", "asean"},
		sources:     []string{"nikkei", "scmp", "the hindu"},
	},
	model.RegionMiddleEast: {
		displayName: "Middle East",
		categories:  []string{"politics", "business"},
		keywords:    []string{"middle east", "gulf", "arab", "dubai", "riyadh", "tehran", "israel", "opec"},
		sources:     []string{"al jazeera", "gulf news"},
	},
	model.RegionAfrica: {
		displayName: "Africa",
		categories:  []string{"politics", "business", "health"},
		keywords:    []string{"africa", "african", "nigeria", "kenya", "nairobi", "lagos", "johannesburg", "cairo"},
		sources:     []string{"allafrica", "mail & guardian"},
	},
	model.RegionSouthAmerica: {
		displayName: "South America",
		categories:  []string{"politics", "sports", "environment"},
		keywords:    []string{"south america", "latin america", "brazil", "argentina", "chile", "amazon rainforest", "mercosur"},
		sources:     []string{"mercopress", "folha"},
	},
	model.RegionOceania: {
		displayName: "Oceania",
		categories:  []string{"environment", "sports"},
		keywords:    []string{"oceania", "australia", "new zealand", "sydney", "melbourne", "pacific islands"},
		sources:     []string{"abc news", "nz herald"},
	},
	model.RegionGlobal: {
		displayName: "Global",
		categories:  []string{"technology", "business", "science"},
		keywords:    []string{"global", "world", "international"},
		sources:     nil,
	},
}

// Leading timezone segment to region, checked after cityTimezones.
var timezoneAreas = map[string]model.NewsRegion{
	"America":   model.RegionNorthAmerica,
	"US":        model.RegionNorthAmerica,
	"Canada":    model.RegionNorthAmerica,
	"Europe":    model.RegionEurope,
	"Asia":      model.RegionAsia,
	"Africa":    model.RegionAfrica,
	"Australia": model.RegionOceania,
	"Pacific":   model.RegionOceania,
}

type timezoneCity struct {
	region  model.NewsRegion
	country string
}

var cityTimezones = map[string]timezoneCity{
	"America/Sao_Paulo":              {model.RegionSouthAmerica, "BR"},
	"America/Argentina/Buenos_Aires": {model.RegionSouthAmerica, "AR"},
	"America/Buenos_Aires":           {model.RegionSouthAmerica, "AR"},
	"America/Santiago":               {model.RegionSouthAmerica, "CL"},
	"America/Bogota":                 {model.RegionSouthAmerica, "CO"},
	"America/Lima":                   {model.RegionSouthAmerica, "PE"},
	"America/Caracas":                {model.RegionSouthAmerica, "VE"},
	"America/Montevideo":             {model.RegionSouthAmerica, "UY"},
	"America/New_York":               {model.RegionNorthAmerica, "US"},
	"America/Chicago":                {model.RegionNorthAmerica, "US"},
	"America/Denver":                 {model.RegionNorthAmerica, "US"},
	"America/Los_Angeles":            {model.RegionNorthAmerica, "US"},
	"America/Toronto":                {model.RegionNorthAmerica, "CA"},
	"America/Vancouver":              {model.RegionNorthAmerica, "CA"},
	"America/Mexico_City":            {model.RegionNorthAmerica, "MX"},
	"Europe/London":                  {model.RegionEurope, "GB"},
	"Europe/Paris":                   {model.RegionEurope, "FR"},
	"Europe/Berlin":                  {model.RegionEurope, "DE"},
	"Europe/Madrid":                  {model.RegionEurope, "ES"},
	"Europe/Istanbul":                {model.RegionMiddleEast, "TR"},
	"Asia/Dubai":                     {model.RegionMiddleEast, "AE"},
	"Asia/Riyadh":                    {model.RegionMiddleEast, "SA"},
	"Asia/Jerusalem":                 {model.RegionMiddleEast, "IL"},
	"Asia/Tel_Aviv":                  {model.RegionMiddleEast, "IL"},
	"Asia/Tehran":                    {model.RegionMiddleEast, "IR"},
	"Asia/Baghdad":                   {model.RegionMiddleEast, "IQ"},
	"Asia/Qatar":                     {model.RegionMiddleEast, "QA"},
	"Asia/Kuwait":                    {model.RegionMiddleEast, "KW"},
	"Asia/Amman":                     {model.RegionMiddleEast, "JO"},
	"Asia/Beirut":                    {model.RegionMiddleEast, "LB"},
	"Asia/Tokyo":                     {model.RegionAsia, "JP"},
	"Asia/Shanghai":                  {model.RegionAsia, "CN"},
	"Asia/Kolkata":                   {model.RegionAsia, "IN"},
	"Asia/Singapore":                 {model.RegionAsia, "SG"},
	"Asia/Seoul":                     {model.RegionAsia, "KR"},
	"Africa/Cairo":                   {model.RegionAfrica, "EG"},
	"Africa/Lagos":                   {model.RegionAfrica, "NG"},
	"Africa/Johannesburg":            {model.RegionAfrica, "ZA"},
	"Africa/Nairobi":                 {model.RegionAfrica, "KE"},
	"Australia/Sydney":               {model.RegionOceania, "AU"},
	"Pacific/Auckland":               {model.RegionOceania, "NZ"},
}

// RegionForCountry maps an ISO 3166-1 alpha-2 code to its news region; unknown codes are global.
func RegionForCountry(code string) model.NewsRegion {
	if c, ok := countries[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return c.region
	}
	return model.RegionGlobal
}

func countryName(code string) string {
	return countries[strings.ToUpper(code)].name
}

// RegionForTimezone resolves an IANA zone name. ok is false when nothing matched.
func RegionForTimezone(tz string) (region model.NewsRegion, country string, ok bool) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return "", "", false
	}
	if c, found := cityTimezones[tz]; found {
		return c.region, c.country, true
	}
	area, _, _ := strings.Cut(tz, "/")
	if r, found := timezoneAreas[area]; found {
		return r, "", true
	}
	return "", "", false
}

// RegionDisplayName returns the human name of a region, e.g. "Middle East".
func RegionDisplayName(r model.NewsRegion) string {
	if p, ok := regionProfiles[r]; ok {
		return p.displayName
	}
	return string(r)
}

func profileFor(r model.NewsRegion) regionProfile {
	if p, ok := regionProfiles[r]; ok {
		return p
	}
	return regionProfiles[model.RegionGlobal]
}
