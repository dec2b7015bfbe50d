package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-newspulse/internal/model"
)

//go:generate mockgen -source=geo_provider.go -destination=mocks/mock_geo_provider.go -package=mocks

// GeoProvider resolves a public IP address to a country.
type GeoProvider interface {
	Name() string
	Lookup(ctx context.Context, ip string) (*model.GeoResult, error)
}

// httpGeoProvider calls a JSON lookup API at baseURL with the IP substituted into path.
type httpGeoProvider struct {
	name    string
	baseURL string
	path    string
	client  *http.Client
	decode  func([]byte) (*model.GeoResult, error)
}

func (p *httpGeoProvider) Name() string { return p.name }

func (p *httpGeoProvider) Lookup(ctx context.Context, ip string) (*model.GeoResult, error) {
	endpoint := strings.TrimRight(p.baseURL, "/") + strings.ReplaceAll(p.path, "{ip}", url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s lookup: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s lookup: unexpected status %d", p.name, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("%s lookup: reading body: %w", p.name, err)
	}
	res, err := p.decode(body)
	if err != nil {
		return nil, fmt.Errorf("%s lookup: %w", p.name, err)
	}
	if res.CountryCode == "" {
		return nil, fmt.Errorf("%s lookup: no country for %s", p.name, ip)
	}
	res.CountryCode = strings.ToUpper(res.CountryCode)
	return res, nil
}

// NewIPAPIProvider queries ip-api.com.
func NewIPAPIProvider(baseURL string, client *http.Client) GeoProvider {
	if baseURL == "" {
		baseURL = "http://ip-api.com"
	}
	return &httpGeoProvider{
		name:    "ip-api",
		baseURL: baseURL,
		path:    "/json/{ip}?fields=status,message,country,countryCode,city,timezone",
		client:  client,
		decode: func(body []byte) (*model.GeoResult, error) {
			var r struct {
				Status      string `json:"status"`
				Message     string `json:"message"`
				Country     string `json:"country"`
				CountryCode string `json:"countryCode"`
				City        string `json:"city"`
				Timezone    string `json:"timezone"`
			}
			if err := json.Unmarshal(body, &r); err != nil {
				return nil, err
			}
			if r.Status != "success" {
				return nil, fmt.Errorf("status %q: %s", r.Status, r.Message)
			}
			return &model.GeoResult{CountryCode: r.CountryCode, Country: r.Country, City: r.City, Timezone: r.Timezone}, nil
		},
	}
}

// NewIPAPICoProvider queries ipapi.co.
func NewIPAPICoProvider(baseURL string, client *http.Client) GeoProvider {
	if baseURL == "" {
		baseURL = "https://ipapi.co"
	}
	return &httpGeoProvider{
		name:    "ipapi",
		baseURL: baseURL,
		path:    "/{ip}/json/",
		client:  client,
		decode: func(body []byte) (*model.GeoResult, error) {
			var r struct {
				Error       bool   `json:"error"`
				Reason      string `json:"reason"`
				CountryCode string `json:"country_code"`
				CountryName string `json:"country_name"`
				City        string `json:"city"`
				Timezone    string `json:"timezone"`
			}
			if err := json.Unmarshal(body, &r); err != nil {
				return nil, err
			}
			if r.Error {
				return nil, fmt.Errorf("error: %s", r.Reason)
			}
			return &model.GeoResult{CountryCode: r.CountryCode, Country: r.CountryName, City: r.City, Timezone: r.Timezone}, nil
		},
	}
}

// NewIPWhoisProvider queries ipwho.is.
func NewIPWhoisProvider(baseURL string, client *http.Client) GeoProvider {
	if baseURL == "" {
		baseURL = "https://ipwho.is"
	}
	return &httpGeoProvider{
		name:    "ipwhois",
		baseURL: baseURL,
		path:    "/{ip}",
		client:  client,
		decode: func(body []byte) (*model.GeoResult, error) {
			var r struct {
				Success     bool   `json:"success"`
				Message     string `json:"message"`
				Country     string `json:"country"`
				CountryCode string `json:"country_code"`
				City        string `json:"city"`
				Timezone    struct {
					ID string `json:"id"`
				} `json:"timezone"`
			}
			if err := json.Unmarshal(body, &r); err != nil {
				return nil, err
			}
			if !r.Success {
				return nil, fmt.Errorf("error: %s", r.Message)
			}
			return &model.GeoResult{CountryCode: r.CountryCode, Country: r.Country, City: r.City, Timezone: r.Timezone.ID}, nil
		},
	}
}

// NewGeoProviders builds the named providers in order. Unknown names are skipped.
func NewGeoProviders(names []string, timeout time.Duration) []GeoProvider {
	client := &http.Client{Timeout: timeout}
	var providers []GeoProvider
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ip-api":
			providers = append(providers, NewIPAPIProvider("", client))
		case "ipapi":
			providers = append(providers, NewIPAPICoProvider("", client))
		case "ipwhois":
			providers = append(providers, NewIPWhoisProvider("", client))
		default:
			slog.Warn("unknown geo provider, skipping", "provider", name)
		}
	}
	return providers
}
