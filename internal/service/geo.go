package service

import (
	"context"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"go-newspulse/internal/metrics"
	"go-newspulse/internal/model"
)

type GeoOptions struct {
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// GeoResolver turns a caller IP and timezone hint into a Location.
type GeoResolver struct {
	providers []GeoProvider
	timeout   time.Duration
	cache     *expirable.LRU[string, model.GeoResult]
}

func NewGeoResolver(providers []GeoProvider, opts GeoOptions) *GeoResolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &GeoResolver{
		providers: providers,
		timeout:   opts.Timeout,
		cache:     expirable.NewLRU[string, model.GeoResult](opts.CacheSize, nil, opts.CacheTTL),
	}
}

// Resolve never fails: IP providers first, then the timezone table, then global.
func (r *GeoResolver) Resolve(ctx context.Context, ip, timezone string) model.Location {
	if res, provider, ok := r.lookupIP(ctx, ip); ok {
		region := RegionForCountry(res.CountryCode)
		tz := res.Timezone
		if tz == "" {
			tz = timezone
		}
		country := res.Country
		if country == "" {
			country = countryName(res.CountryCode)
		}
		return buildLocation(region, res.CountryCode, country, res.City, tz, provider)
	}

	if region, code, ok := RegionForTimezone(timezone); ok {
		return buildLocation(region, code, countryName(code), "", timezone, "timezone")
	}

	return DefaultLocation()
}

// DefaultLocation is the global fallback.
func DefaultLocation() model.Location {
	return buildLocation(model.RegionGlobal, "", "", "", "", "default")
}

func buildLocation(region model.NewsRegion, code, country, city, tz, resolvedBy string) model.Location {
	p := profileFor(region)
	return model.Location{
		CountryCode:         code,
		Country:             country,
		City:                city,
		Timezone:            tz,
		NewsRegion:          region,
		PreferredCategories: append([]string(nil), p.categories...),
		Keywords:            append([]string(nil), p.keywords...),
		PreferredSources:    append([]string(nil), p.sources...),
		ResolvedBy:          resolvedBy,
	}
}

func (r *GeoResolver) lookupIP(ctx context.Context, ip string) (model.GeoResult, string, bool) {
	ip = strings.TrimSpace(ip)
	if !isPublicIP(ip) {
		return model.GeoResult{}, "", false
	}
	if cached, ok := r.cache.Get(ip); ok {
		return cached, "cache", true
	}

	for _, p := range r.providers {
		res, err := r.lookupOne(ctx, p, ip)
		if err != nil {
			metrics.GeoLookups.WithLabelValues(p.Name(), "error").Inc()
			slog.Debug("geo provider failed", "provider", p.Name(), "ip", ip, "error", err)
			continue
		}
		metrics.GeoLookups.WithLabelValues(p.Name(), "ok").Inc()
		r.cache.Add(ip, *res)
		return *res, p.Name(), true
	}
	if len(r.providers) > 0 {
		slog.Warn("all geo providers failed", "ip", ip)
	}
	return model.GeoResult{}, "", false
}

func (r *GeoResolver) lookupOne(ctx context.Context, p GeoProvider, ip string) (*model.GeoResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	res, err := p.Lookup(ctx, ip)
	if err != nil {
		return nil, err
	}
	if res == nil || res.CountryCode == "" {
		return nil, errNoCountry
	}
	return res, nil
}

func isPublicIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return !(addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsMulticast())
}
