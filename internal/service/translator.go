package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"go-newspulse/internal/model"
)

// TranslationProvider is the external service that actually translates text.
type TranslationProvider interface {
	Name() string
	Translate(ctx context.Context, text, from, to string) (string, error)
}

var supportedLanguages = map[string]bool{
	"ar": true, "de": true, "en": true, "es": true, "fr": true, "hi": true, "it": true,
	"ja": true, "ko": true, "nl": true, "pl": true, "pt": true, "ru": true, "sv": true,
	"tr": true, "uk": true, "zh": true,
}

// SupportedLanguages lists accepted target language codes in sorted order.
func SupportedLanguages() []string {
	out := make([]string, 0, len(supportedLanguages))
	for l := range supportedLanguages {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// ValidateLanguage parses a BCP 47 tag and returns its base code when supported.
func ValidateLanguage(code string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", &model.ValidationError{Field: "lang", Value: code, Valid: SupportedLanguages()}
	}
	base, _ := tag.Base()
	if !supportedLanguages[base.String()] {
		return "", &model.ValidationError{Field: "lang", Value: code, Valid: SupportedLanguages()}
	}
	return base.String(), nil
}

// GoogleTranslateProvider calls the public translate_a/single endpoint.
type GoogleTranslateProvider struct {
	endpoint string
	client   *http.Client
}

func NewGoogleTranslateProvider(endpoint string, timeout time.Duration) *GoogleTranslateProvider {
	if endpoint == "" {
		endpoint = "https://translate.googleapis.com/translate_a/single"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoogleTranslateProvider{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

func (p *GoogleTranslateProvider) Name() string { return "google" }

func (p *GoogleTranslateProvider) Translate(ctx context.Context, text, from, to string) (string, error) {
	if from == "" {
		from = "auto"
	}
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", to)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google translate returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading translate response: %w", err)
	}
	return parseGoogleTranslate(body)
}

// parseGoogleTranslate joins the segments of [[["translated","source",...],...],...].
func parseGoogleTranslate(body []byte) (string, error) {
	var response []any
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("decoding translate response: %w", err)
	}
	if len(response) == 0 {
		return "", errors.New("empty translate response")
	}
	segments, ok := response[0].([]any)
	if !ok {
		return "", errors.New("unexpected translate response format")
	}
	var sb strings.Builder
	for _, seg := range segments {
		if parts, ok := seg.([]any); ok && len(parts) > 0 {
			if s, ok := parts[0].(string); ok {
				sb.WriteString(s)
			}
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("translate response has no text")
	}
	return sb.String(), nil
}

type TranslatorOptions struct {
	SnippetTTL time.Duration
	ArticleTTL time.Duration
}

// Translator consults the translation cache before calling the provider.
type Translator struct {
	provider   TranslationProvider
	cache      *TranslationCache
	snippetTTL time.Duration
	articleTTL time.Duration
}

func NewTranslator(provider TranslationProvider, cache *TranslationCache, opts TranslatorOptions) *Translator {
	if opts.SnippetTTL <= 0 {
		opts.SnippetTTL = 24 * time.Hour
	}
	if opts.ArticleTTL <= 0 {
		opts.ArticleTTL = 7 * 24 * time.Hour
	}
	return &Translator{
		provider:   provider,
		cache:      cache,
		snippetTTL: opts.SnippetTTL,
		articleTTL: opts.ArticleTTL,
	}
}

// Translate translates a snippet. An unsupported target language is a ValidationError.
func (t *Translator) Translate(ctx context.Context, text, from, to string) (*model.TranslationRecord, error) {
	target, err := ValidateLanguage(to)
	if err != nil {
		return nil, err
	}
	return t.translate(ctx, text, normalizeSourceLang(from), target, t.snippetTTL)
}

func normalizeSourceLang(from string) string {
	from = strings.TrimSpace(from)
	if from == "" || strings.EqualFold(from, "auto") {
		return "auto"
	}
	if tag, err := language.Parse(from); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	return "auto"
}

func (t *Translator) translate(ctx context.Context, text, from, to string, ttl time.Duration) (*model.TranslationRecord, error) {
	if strings.TrimSpace(text) == "" || from == to {
		return &model.TranslationRecord{SourceText: text, TranslatedText: text, SourceLang: from, TargetLang: to}, nil
	}

	if rec, ok, err := t.cache.Get(ctx, text, from, to); err != nil {
		slog.Warn("translation cache read failed", "error", err)
	} else if ok {
		return rec, nil
	}

	translated, err := t.provider.Translate(ctx, text, from, to)
	if err != nil {
		return nil, err
	}

	rec, err := t.cache.Put(ctx, text, translated, from, to, t.provider.Name(), ttl)
	if err != nil {
		slog.Warn("translation cache write failed", "error", err)
		return &model.TranslationRecord{
			SourceText: text, TranslatedText: translated,
			SourceLang: from, TargetLang: to, Provider: t.provider.Name(),
		}, nil
	}
	return rec, nil
}

// TranslateArticle fills the translated fields. Provider failures leave the article as is.
func (t *Translator) TranslateArticle(ctx context.Context, a model.Article, to string) (model.Article, error) {
	target, err := ValidateLanguage(to)
	if err != nil {
		return a, err
	}
	from := normalizeSourceLang(a.Language)

	title, err := t.translate(ctx, a.Title, from, target, t.articleTTL)
	if err != nil {
		slog.Warn("article translation failed", "article", a.ID, "lang", target, "error", err)
		return a, nil
	}
	a.TranslatedTitle = title.TranslatedText
	if a.Description != "" {
		if desc, err := t.translate(ctx, a.Description, from, target, t.articleTTL); err == nil {
			a.TranslatedDescription = desc.TranslatedText
		} else {
			slog.Warn("description translation failed", "article", a.ID, "lang", target, "error", err)
		}
	}
	a.OriginalLanguage = a.Language
	a.TargetLanguage = target
	return a, nil
}

// TranslateArticles translates a page of articles with bounded concurrency.
func (t *Translator) TranslateArticles(ctx context.Context, articles []model.Article, to string) ([]model.Article, error) {
	if _, err := ValidateLanguage(to); err != nil {
		return nil, err
	}
	out := make([]model.Article, len(articles))
	var g errgroup.Group
	g.SetLimit(4)
	for i, a := range articles {
		g.Go(func() error {
			out[i], _ = t.TranslateArticle(ctx, a, to)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}
